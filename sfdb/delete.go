package sfdb

import (
	"context"

	"go.uber.org/zap"
)

// DefaultDeleteLimit caps DeleteRecords when no limit is given, so a broad where clause can
// only remove a handful of records
const DefaultDeleteLimit = 10

type DeleteOutcome struct {
	SuccessCount int
	FailureCount int
	FailedIds    []string
}

// DeleteRecords deletes at most limit records of object matching where and returns the ids
// that could not be deleted. A limit <= 0 means DefaultDeleteLimit.
// Failing to delete some records is not an error.
func (c *Client) DeleteRecords(ctx context.Context, object, where string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = DefaultDeleteLimit
	}
	log := c.log.With(zap.String("object", object), zap.String("where", where), zap.Int("limit", limit))

	res, err := c.GetRecords(ctx, Select{Object: object, Fields: []string{"Id"}, Where: where, Limit: limit}, true)
	if err != nil {
		return nil, err
	}
	if res.Count <= 0 {
		log.Info("no matching records, nothing to delete")
		return []string{}, nil
	}

	ids := make([]string, 0, len(res.Records))
	for _, r := range res.Records {
		ids = append(ids, r.Id())
	}
	if res.Count >= limit {
		log.Info("deleting first records", zap.Int("count", res.Count))
	} else {
		log.Info("deleting all records", zap.Int("count", res.Count))
	}

	out, err := c.Delete(ctx, ids)
	if err != nil {
		return nil, err
	}
	return out.FailedIds, nil
}

// Delete deletes the records with the given ids in a single call
func (c *Client) Delete(ctx context.Context, ids []string) (DeleteOutcome, error) {
	if len(ids) == 0 {
		return DeleteOutcome{}, ErrNoIds
	}
	conn, err := c.Connection(ctx)
	if err != nil {
		return DeleteOutcome{}, err
	}
	results, err := conn.Delete(ctx, ids)
	if err != nil {
		return DeleteOutcome{}, err
	}

	out := DeleteOutcome{FailedIds: []string{}}
	for i, r := range results {
		if r.Success {
			out.SuccessCount++
			continue
		}
		out.FailureCount++
		id := r.Id
		if len(id) == 0 && i < len(ids) {
			id = ids[i]
		}
		out.FailedIds = append(out.FailedIds, id)
		for _, e := range r.Errors {
			c.log.Debug("record not deleted", zap.String("id", id), zap.String("statusCode", e.StatusCode), zap.String("message", e.Message))
		}
	}
	c.log.Info("delete done", zap.Int("successes", out.SuccessCount), zap.Int("failures", out.FailureCount))
	return out, nil
}
