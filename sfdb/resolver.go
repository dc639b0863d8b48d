package sfdb

import (
	"context"
	"errors"

	"github.com/ellogroup/ello-golang-sfdb/salesforce"
	"go.uber.org/zap"
)

const idPrefixLen = 3

// TypeResolution holds the sobject types of a list of ids.
// Type is set only when every id resolved to the same type.
type TypeResolution struct {
	Type  string
	Types []string
}

// TypedRecord is a record tagged with the sobject type it was retrieved as
type TypedRecord struct {
	salesforce.Record
	RecordType string
}

// prefixMap returns the key prefix to sobject name table, describing the org on first use
func (c *Client) prefixMap(ctx context.Context) (map[string]string, error) {
	if c.prefixes != nil {
		return c.prefixes, nil
	}
	conn, err := c.Connection(ctx)
	if err != nil {
		return nil, err
	}
	res, err := conn.DescribeGlobal(ctx)
	if err != nil {
		return nil, err
	}

	prefixes := make(map[string]string, len(res.SObjects))
	for _, o := range res.SObjects {
		if len(o.KeyPrefix) == 0 {
			continue
		}
		prefixes[o.KeyPrefix] = o.Name
	}
	c.log.Debug("sobject prefixes described", zap.Int("count", len(prefixes)))
	c.prefixes = prefixes
	return prefixes, nil
}

// ResolveType infers the sobject type of each id from its first three characters.
//
// Every id is looked up. Ids that match no type leave an empty entry in Types and add an
// *InvalidIdError to the returned error, so callers can decide whether to use the rest.
func (c *Client) ResolveType(ctx context.Context, ids []string) (TypeResolution, error) {
	if len(ids) == 0 {
		return TypeResolution{}, ErrNoIds
	}
	prefixes, err := c.prefixMap(ctx)
	if err != nil {
		return TypeResolution{}, err
	}

	types := make([]string, len(ids))
	var errs []error
	for i, id := range ids {
		prefix := id
		if len(prefix) > idPrefixLen {
			prefix = prefix[:idPrefixLen]
		}
		t, ok := prefixes[prefix]
		if !ok {
			errs = append(errs, &InvalidIdError{Id: id, Prefix: prefix})
			continue
		}
		types[i] = t
	}

	res := TypeResolution{Types: types}
	if len(errs) == 0 && allEqual(types) {
		res.Type = types[0]
	}
	return res, errors.Join(errs...)
}

func allEqual(s []string) bool {
	for _, v := range s[1:] {
		if v != s[0] {
			return false
		}
	}
	return true
}

// GetById retrieves fields of the records with the given ids and tags them with their type.
//
// When sobjectType is empty it is inferred from the first id only, and used for all of them.
// Ids of mixed types need an explicit sobjectType of their own, one call per type.
// Ids that do not exist are left out of the result.
func (c *Client) GetById(ctx context.Context, ids []string, fields []string, sobjectType string) ([]TypedRecord, error) {
	if len(ids) == 0 {
		return nil, ErrNoIds
	}
	if len(fields) == 0 {
		fields = DefaultFields
	}
	if len(sobjectType) == 0 {
		res, err := c.ResolveType(ctx, ids[:1])
		if err != nil {
			return nil, err
		}
		sobjectType = res.Type
	}

	conn, err := c.Connection(ctx)
	if err != nil {
		return nil, err
	}
	records, err := conn.Retrieve(ctx, sobjectType, fields, ids)
	if err != nil {
		return nil, err
	}

	typed := make([]TypedRecord, 0, len(records))
	for _, r := range records {
		if r == nil {
			continue
		}
		typed = append(typed, TypedRecord{Record: r, RecordType: sobjectType})
	}
	if len(typed) < len(ids) {
		c.log.Debug("some ids not found", zap.String("type", sobjectType), zap.Int("requested", len(ids)), zap.Int("found", len(typed)))
	}
	return typed, nil
}
