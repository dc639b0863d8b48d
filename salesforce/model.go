package salesforce

import "strings"

// QueryResponse is a single page of a SOQL query result.
// When Done is false, NextRecordsUrl locates the next page and can be passed to QueryMore.
type QueryResponse[E any] struct {
	TotalSize      int    `json:"totalSize"`
	Done           bool   `json:"done"`
	NextRecordsUrl string `json:"nextRecordsUrl,omitempty"`
	Records        []E    `json:"records"`
}

// Record is an untyped salesforce record, field name to value
type Record map[string]any

// Id returns the record id, matching the field name case-insensitively
func (r Record) Id() string {
	if v, ok := r["Id"].(string); ok {
		return v
	}
	for k, v := range r {
		if strings.EqualFold(k, "id") {
			s, _ := v.(string)
			return s
		}
	}
	return ""
}

// Type returns the sobject type from the record attributes, if present
func (r Record) Type() string {
	attrs, ok := r["attributes"].(map[string]any)
	if !ok {
		return ""
	}
	t, _ := attrs["type"].(string)
	return t
}

// SaveResult is the per-record result of a composite delete
type SaveResult struct {
	Id      string      `json:"id"`
	Success bool        `json:"success"`
	Errors  []SaveError `json:"errors"`
}

type SaveError struct {
	StatusCode string   `json:"statusCode"`
	Message    string   `json:"message"`
	Fields     []string `json:"fields"`
}

// Attributes to be added, optionally, to concrete types of E for QueryResponse[E]
type Attributes struct {
	Type string `json:"type"`
	Url  string `json:"url"`
}

// DescribeGlobalResponse lists every sobject available to the session
type DescribeGlobalResponse struct {
	Encoding     string            `json:"encoding"`
	MaxBatchSize int               `json:"maxBatchSize"`
	SObjects     []SObjectDescribe `json:"sobjects"`
}

type SObjectDescribe struct {
	Name      string `json:"name"`
	Label     string `json:"label"`
	KeyPrefix string `json:"keyPrefix"`
	Queryable bool   `json:"queryable"`
	Deletable bool   `json:"deletable"`
	Custom    bool   `json:"custom"`
}

// ApiError is an entry of the error list salesforce returns with non-2xx responses
type ApiError struct {
	ErrorCode string `json:"errorCode"`
	Message   string `json:"message"`
}
