package sfdb

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/ellogroup/ello-golang-sfdb/salesforce"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestClient_ExecuteQuery(t *testing.T) {
	const q = "SELECT Id FROM Account"
	tests := []struct {
		name     string
		fetchAll bool
		conn     func() *ConnectionMock
		want     *QueryResult
		wantErr  assert.ErrorAssertionFunc
	}{
		{
			name:     "no records  empty result without more calls",
			fetchAll: true,
			conn: func() *ConnectionMock {
				m := new(ConnectionMock)
				m.On("Query", mock.Anything, q).Return(&page{TotalSize: 0, Done: true}, nil)
				return m
			},
			want:    &QueryResult{Count: 0, Records: []salesforce.Record{}},
			wantErr: assert.NoError,
		},
		{
			name:     "more pages without fetchAll  first page returned",
			fetchAll: false,
			conn: func() *ConnectionMock {
				m := new(ConnectionMock)
				m.On("Query", mock.Anything, q).Return(&page{TotalSize: 4, NextRecordsUrl: "/query/01g-2", Records: records("001A", "001B")}, nil)
				return m
			},
			want:    &QueryResult{Count: 4, Records: records("001A", "001B")},
			wantErr: assert.NoError,
		},
		{
			name:     "more pages with fetchAll  pages concatenated in order",
			fetchAll: true,
			conn: func() *ConnectionMock {
				m := new(ConnectionMock)
				m.On("Query", mock.Anything, q).Return(&page{TotalSize: 5, NextRecordsUrl: "/query/01g-2", Records: records("001A", "001B")}, nil)
				m.On("QueryMore", mock.Anything, "/query/01g-2").Return(&page{TotalSize: 5, NextRecordsUrl: "/query/01g-4", Records: records("001C", "001D")}, nil)
				m.On("QueryMore", mock.Anything, "/query/01g-4").Return(&page{TotalSize: 5, Done: true, Records: records("001E")}, nil)
				return m
			},
			want:    &QueryResult{Count: 5, Records: records("001A", "001B", "001C", "001D", "001E")},
			wantErr: assert.NoError,
		},
		{
			name:     "count taken from last page",
			fetchAll: true,
			conn: func() *ConnectionMock {
				m := new(ConnectionMock)
				m.On("Query", mock.Anything, q).Return(&page{TotalSize: 3, NextRecordsUrl: "/query/01g-2", Records: records("001A")}, nil)
				m.On("QueryMore", mock.Anything, "/query/01g-2").Return(&page{TotalSize: 2, Done: true, Records: records("001B")}, nil)
				return m
			},
			want:    &QueryResult{Count: 2, Records: records("001A", "001B")},
			wantErr: assert.NoError,
		},
		{
			name:     "not done without locator  ErrMissingLocator returned",
			fetchAll: true,
			conn: func() *ConnectionMock {
				m := new(ConnectionMock)
				m.On("Query", mock.Anything, q).Return(&page{TotalSize: 3, Records: records("001A")}, nil)
				return m
			},
			wantErr: func(t assert.TestingT, err error, i ...interface{}) bool {
				return assert.ErrorIs(t, err, salesforce.ErrMissingLocator, i...)
			},
		},
		{
			name:     "query fails  error returned",
			fetchAll: true,
			conn: func() *ConnectionMock {
				m := new(ConnectionMock)
				m.On("Query", mock.Anything, q).Return(nil, errors.New("MALFORMED_QUERY"))
				return m
			},
			wantErr: assert.Error,
		},
		{
			name:     "query more fails  error returned",
			fetchAll: true,
			conn: func() *ConnectionMock {
				m := new(ConnectionMock)
				m.On("Query", mock.Anything, q).Return(&page{TotalSize: 3, NextRecordsUrl: "/query/01g-2", Records: records("001A")}, nil)
				m.On("QueryMore", mock.Anything, "/query/01g-2").Return(nil, errors.New("INVALID_QUERY_LOCATOR"))
				return m
			},
			wantErr: assert.Error,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := tt.conn()
			c, _ := newTestClient(t, conn)

			got, err := c.ExecuteQuery(context.Background(), q, tt.fetchAll)

			if !tt.wantErr(t, err, fmt.Sprintf("ExecuteQuery(<context>, %v, %v)", q, tt.fetchAll)) {
				return
			}
			assert.Equal(t, tt.want, got)
			conn.AssertExpectations(t)
		})
	}
}

func TestClient_ExecuteQueryEmptyMakesNoFollowUp(t *testing.T) {
	conn := new(ConnectionMock)
	conn.On("Query", mock.Anything, mock.Anything).Return(&page{TotalSize: 0, Done: false, NextRecordsUrl: "/query/01g-2"}, nil)
	c, _ := newTestClient(t, conn)

	got, err := c.ExecuteQuery(context.Background(), "SELECT Id FROM Account", true)

	assert.NoError(t, err)
	assert.Equal(t, 0, got.Count)
	assert.Empty(t, got.Records)
	conn.AssertNotCalled(t, "QueryMore", mock.Anything, mock.Anything)
}

func TestClient_ExecuteQueryConnectionError(t *testing.T) {
	c, err := NewClient(ClientParams{Credentials: testCredentials, Dialer: newDialerMock(nil, errors.New("INVALID_LOGIN"))})
	assert.NoError(t, err)

	_, err = c.ExecuteQuery(context.Background(), "SELECT Id FROM Account", false)

	var connErr *ConnectionError
	assert.ErrorAs(t, err, &connErr)
}

func TestSelect_ToSOQL(t *testing.T) {
	tests := []struct {
		name    string
		s       Select
		want    string
		wantErr assert.ErrorAssertionFunc
	}{
		{
			name:    "no fields  id and name selected",
			s:       Select{Object: "Account"},
			want:    "SELECT Id, Name FROM Account",
			wantErr: assert.NoError,
		},
		{
			name:    "fields where and limit",
			s:       Select{Object: "Contact", Fields: []string{"Id", "Email"}, Where: "LastName = 'Smith'", Limit: 10},
			want:    "SELECT Id, Email FROM Contact WHERE LastName = 'Smith' LIMIT 10",
			wantErr: assert.NoError,
		},
		{
			name:    "order by",
			s:       Select{Object: "Case", Fields: []string{"Id"}, OrderBy: []string{"CreatedDate DESC"}, Limit: 1},
			want:    "SELECT Id FROM Case ORDER BY CreatedDate DESC LIMIT 1",
			wantErr: assert.NoError,
		},
		{
			name:    "no object  error returned",
			s:       Select{Fields: []string{"Id"}},
			wantErr: assert.Error,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.s.ToSOQL()

			if !tt.wantErr(t, err, fmt.Sprintf("ToSOQL(%v)", tt.s)) {
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQuoteString(t *testing.T) {
	assert.Equal(t, "'Acme'", QuoteString("Acme"))
	assert.Equal(t, `'O\'Brien \\ Sons'`, QuoteString(`O'Brien \ Sons`))
}

func TestClient_Builders(t *testing.T) {
	tests := []struct {
		name  string
		query string
		call  func(c *Client) (any, error)
		page  *page
		want  any
	}{
		{
			name:  "GetRecords",
			query: "SELECT Id, Name FROM Account WHERE Industry = 'Tech' LIMIT 5",
			call: func(c *Client) (any, error) {
				return c.GetRecords(context.Background(), Select{Object: "Account", Where: "Industry = 'Tech'", Limit: 5}, false)
			},
			page: &page{TotalSize: 1, Done: true, Records: records("001A")},
			want: &QueryResult{Count: 1, Records: records("001A")},
		},
		{
			name:  "GetLatest",
			query: "SELECT Id, Name FROM Account WHERE Name = 'Acme' ORDER BY CreatedDate DESC LIMIT 1",
			call: func(c *Client) (any, error) {
				return c.GetLatest(context.Background(), "Account", nil, "Name = 'Acme'")
			},
			page: &page{TotalSize: 1, Done: true, Records: records("001A")},
			want: &QueryResult{Count: 1, Records: records("001A")},
		},
		{
			name:  "RecordExists",
			query: "SELECT Id FROM Account WHERE Industry = 'Tech' LIMIT 1",
			call: func(c *Client) (any, error) {
				return c.RecordExists(context.Background(), "Account", "Industry = 'Tech'")
			},
			page: &page{TotalSize: 1, Done: true, Records: records("001A")},
			want: true,
		},
		{
			name:  "RecordExistsWithName not found",
			query: `SELECT Id FROM Account WHERE Name = 'O\'Brien' LIMIT 1`,
			call: func(c *Client) (any, error) {
				return c.RecordExistsWithName(context.Background(), "Account", "O'Brien")
			},
			page: &page{TotalSize: 0, Done: true},
			want: false,
		},
		{
			name:  "CountRecords",
			query: "SELECT COUNT() FROM Contact WHERE AccountId = '001A'",
			call: func(c *Client) (any, error) {
				return c.CountRecords(context.Background(), "Contact", "AccountId = '001A'")
			},
			page: &page{TotalSize: 42, Done: true},
			want: 42,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := new(ConnectionMock)
			conn.On("Query", mock.Anything, tt.query).Return(tt.page, nil).Once()
			c, _ := newTestClient(t, conn)

			got, err := tt.call(c)

			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
			conn.AssertExpectations(t)
			conn.AssertNotCalled(t, "QueryMore", mock.Anything, mock.Anything)
		})
	}
}
