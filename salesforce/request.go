package salesforce

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

var ErrMissingLocator = errors.New("salesforce query is not done but no locator was returned")

type TokenGetter interface {
	Get(ctx context.Context) (string, error)
}

type HttpClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// RequestHelper a helper struct for sending session-authenticated requests to the salesforce REST API
type RequestHelper struct {
	tokenGetter TokenGetter
	client      HttpClient
	baseUrl     string
	apiVersion  int
}

func NewRequestHelper(client HttpClient, tg TokenGetter, baseUrl string, apiVersion int) (*RequestHelper, error) {
	if len(baseUrl) == 0 {
		return nil, fmt.Errorf("baseUrl needs to be provided")
	}
	if apiVersion <= 0 {
		return nil, fmt.Errorf("salesfore apiVersion needs to be provided")
	}
	if tg == nil {
		return nil, fmt.Errorf("tokenGetter needs to be provided")
	}
	return &RequestHelper{
		tokenGetter: tg,
		client:      client,
		baseUrl:     strings.TrimRight(baseUrl, "/"),
		apiVersion:  apiVersion,
	}, nil
}

type QueryError struct {
	queryUsed  string
	statusCode int
}

func (q QueryError) Error() string {
	return fmt.Sprintf("error querying salesforce - status code: %v, query: %v", q.statusCode, q.queryUsed)
}

// RequestError is returned for non-2xx responses to requests other than the initial query
type RequestError struct {
	Operation  string
	StatusCode int
	Errors     []ApiError
}

func (r RequestError) Error() string {
	msg := fmt.Sprintf("error calling salesforce %s - status code: %d", r.Operation, r.StatusCode)
	for _, e := range r.Errors {
		msg += fmt.Sprintf(", %s: %s", e.ErrorCode, e.Message)
	}
	return msg
}

func (h *RequestHelper) dataUrl(path string) string {
	return fmt.Sprintf("%s/services/data/v%d.0/%s", h.baseUrl, h.apiVersion, path)
}

// send issues an authenticated request and returns the response body of a 2xx response.
// Non-2xx responses are returned as a RequestError.
func send(ctx context.Context, h *RequestHelper, method, reqUrl, op string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, reqUrl, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to create salesforce request: %w", err)
	}

	token, err := h.tokenGetter.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to get salesforce session: %w", err)
	}
	req.Header = http.Header{
		"Content-Type":  {"application/json"},
		"Authorization": {"Bearer " + token},
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unable to send request to salesforce: %w", err)
	}
	defer resp.Body.Close()

	resBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		reqErr := RequestError{Operation: op, StatusCode: resp.StatusCode}
		// body is a list of errors for most failures, ignore it otherwise
		_ = json.Unmarshal(resBody, &reqErr.Errors)
		return nil, reqErr
	}
	return resBody, nil
}

func decode[T any](body []byte, op string) (T, error) {
	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		return v, fmt.Errorf("unable to parse salesforce %s response: %w", op, err)
	}
	return v, nil
}

// Query salesforce in a generic way
// - uses the baseUrl, tokenGetter and http client on RequestHelper to query salesforce
// - QueryError returned if status code != 200 with status code of response
// - only the first page is returned, see QueryMore
func Query[E any](ctx context.Context, h *RequestHelper, q string) (*QueryResponse[E], error) {
	body, err := send(ctx, h, http.MethodGet, h.dataUrl("query?q="+url.QueryEscape(q)), "query")
	if err != nil {
		var reqErr RequestError
		if errors.As(err, &reqErr) {
			return nil, QueryError{statusCode: reqErr.StatusCode, queryUsed: q}
		}
		return nil, err
	}
	return decode[*QueryResponse[E]](body, "query")
}

// QueryMore fetches the page located by the NextRecordsUrl of a previous page.
// A bare query locator is accepted too.
func QueryMore[E any](ctx context.Context, h *RequestHelper, locator string) (*QueryResponse[E], error) {
	if len(locator) == 0 {
		return nil, ErrMissingLocator
	}
	reqUrl := h.baseUrl + locator
	if !strings.HasPrefix(locator, "/") {
		reqUrl = h.dataUrl("query/" + url.PathEscape(locator))
	}
	body, err := send(ctx, h, http.MethodGet, reqUrl, "queryMore")
	if err != nil {
		return nil, err
	}
	return decode[*QueryResponse[E]](body, "queryMore")
}

// Retrieve fetches the given fields of the records with the given ids, all of type name.
// Ids that do not exist are returned as zero values of E.
func Retrieve[E any](ctx context.Context, h *RequestHelper, name string, fields, ids []string) ([]E, error) {
	params := url.Values{}
	params.Set("ids", strings.Join(ids, ","))
	params.Set("fields", strings.Join(fields, ","))
	reqUrl := h.dataUrl("composite/sobjects/" + url.PathEscape(name) + "?" + params.Encode())

	body, err := send(ctx, h, http.MethodGet, reqUrl, "retrieve")
	if err != nil {
		return nil, err
	}
	return decode[[]E](body, "retrieve")
}

// DescribeGlobal lists the sobjects available to the session, including their key prefixes
func DescribeGlobal(ctx context.Context, h *RequestHelper) (*DescribeGlobalResponse, error) {
	body, err := send(ctx, h, http.MethodGet, h.dataUrl("sobjects"), "describeGlobal")
	if err != nil {
		return nil, err
	}
	return decode[*DescribeGlobalResponse](body, "describeGlobal")
}

// Delete sends a single composite delete for ids.
// - allOrNone=false lets salesforce delete what it can, each id gets its own SaveResult
// - results are in the same order as ids
func Delete(ctx context.Context, h *RequestHelper, ids []string, allOrNone bool) ([]SaveResult, error) {
	params := url.Values{}
	params.Set("ids", strings.Join(ids, ","))
	params.Set("allOrNone", fmt.Sprintf("%t", allOrNone))

	body, err := send(ctx, h, http.MethodDelete, h.dataUrl("composite/sobjects?"+params.Encode()), "delete")
	if err != nil {
		return nil, err
	}
	return decode[[]SaveResult](body, "delete")
}

// The methods below bind the generic calls to Record so a RequestHelper can serve as a
// session connection.

func (h *RequestHelper) Query(ctx context.Context, q string) (*QueryResponse[Record], error) {
	return Query[Record](ctx, h, q)
}

func (h *RequestHelper) QueryMore(ctx context.Context, locator string) (*QueryResponse[Record], error) {
	return QueryMore[Record](ctx, h, locator)
}

func (h *RequestHelper) Retrieve(ctx context.Context, name string, fields, ids []string) ([]Record, error) {
	return Retrieve[Record](ctx, h, name, fields, ids)
}

func (h *RequestHelper) DescribeGlobal(ctx context.Context) (*DescribeGlobalResponse, error) {
	return DescribeGlobal(ctx, h)
}

func (h *RequestHelper) Delete(ctx context.Context, ids []string) ([]SaveResult, error) {
	return Delete(ctx, h, ids, false)
}
