package sfdb

import (
	"context"

	"github.com/ellogroup/ello-golang-sfdb/salesforce"
	"go.uber.org/zap"
)

// CreatedDateField orders the records of GetLatest
const CreatedDateField = "CreatedDate"

type QueryResult struct {
	Count   int
	Records []salesforce.Record
}

// ExecuteQuery runs a SOQL query.
//
// Without fetchAll only the first page is returned, Count still reports the size of the whole
// result. With fetchAll, pages are requested until salesforce reports the query done and Count
// is the size reported by the last page.
func (c *Client) ExecuteQuery(ctx context.Context, soql string, fetchAll bool) (*QueryResult, error) {
	conn, err := c.Connection(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := conn.Query(ctx, soql)
	if err != nil {
		return nil, err
	}
	if resp.TotalSize == 0 {
		return &QueryResult{Count: 0, Records: []salesforce.Record{}}, nil
	}

	records := resp.Records
	if !fetchAll {
		return &QueryResult{Count: resp.TotalSize, Records: records}, nil
	}
	pages := 1
	for !resp.Done {
		if len(resp.NextRecordsUrl) == 0 {
			return nil, salesforce.ErrMissingLocator
		}
		resp, err = conn.QueryMore(ctx, resp.NextRecordsUrl)
		if err != nil {
			return nil, err
		}
		records = append(records, resp.Records...)
		pages++
	}
	c.log.Debug("query fetched", zap.String("query", soql), zap.Int("pages", pages), zap.Int("records", len(records)))
	return &QueryResult{Count: resp.TotalSize, Records: records}, nil
}

// GetRecords queries the records described by s
func (c *Client) GetRecords(ctx context.Context, s Select, fetchAll bool) (*QueryResult, error) {
	q, err := s.ToSOQL()
	if err != nil {
		return nil, err
	}
	return c.ExecuteQuery(ctx, q, fetchAll)
}

// GetLatest returns the most recently created record of object matching where, if any
func (c *Client) GetLatest(ctx context.Context, object string, fields []string, where string) (*QueryResult, error) {
	return c.GetRecords(ctx, Select{
		Object:  object,
		Fields:  fields,
		Where:   where,
		OrderBy: []string{CreatedDateField + " DESC"},
		Limit:   1,
	}, false)
}

func (c *Client) RecordExists(ctx context.Context, object, where string) (bool, error) {
	res, err := c.GetRecords(ctx, Select{Object: object, Fields: []string{"Id"}, Where: where, Limit: 1}, false)
	if err != nil {
		return false, err
	}
	return res.Count > 0, nil
}

func (c *Client) RecordExistsWithName(ctx context.Context, object, name string) (bool, error) {
	return c.RecordExists(ctx, object, "Name = "+QuoteString(name))
}

// CountRecords counts the records of object matching where, an empty where counts them all
func (c *Client) CountRecords(ctx context.Context, object, where string) (int, error) {
	res, err := c.GetRecords(ctx, Select{Object: object, Fields: []string{"COUNT()"}, Where: where}, false)
	if err != nil {
		return 0, err
	}
	return res.Count, nil
}
