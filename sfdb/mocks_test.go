package sfdb

import (
	"context"
	"net/http"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/ellogroup/ello-golang-sfdb/salesforce"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type page = salesforce.QueryResponse[salesforce.Record]

type ConnectionMock struct {
	mock.Mock
}

func (m *ConnectionMock) Query(ctx context.Context, q string) (*page, error) {
	args := m.Called(ctx, q)
	r, _ := args.Get(0).(*page)
	return r, args.Error(1)
}

func (m *ConnectionMock) QueryMore(ctx context.Context, locator string) (*page, error) {
	args := m.Called(ctx, locator)
	r, _ := args.Get(0).(*page)
	return r, args.Error(1)
}

func (m *ConnectionMock) Retrieve(ctx context.Context, name string, fields, ids []string) ([]salesforce.Record, error) {
	args := m.Called(ctx, name, fields, ids)
	r, _ := args.Get(0).([]salesforce.Record)
	return r, args.Error(1)
}

func (m *ConnectionMock) DescribeGlobal(ctx context.Context) (*salesforce.DescribeGlobalResponse, error) {
	args := m.Called(ctx)
	r, _ := args.Get(0).(*salesforce.DescribeGlobalResponse)
	return r, args.Error(1)
}

func (m *ConnectionMock) Delete(ctx context.Context, ids []string) ([]salesforce.SaveResult, error) {
	args := m.Called(ctx, ids)
	r, _ := args.Get(0).([]salesforce.SaveResult)
	return r, args.Error(1)
}

type DialerMock struct {
	mock.Mock
}

func (m *DialerMock) Dial(ctx context.Context, c Credentials) (Connection, error) {
	args := m.Called(ctx, c)
	r, _ := args.Get(0).(Connection)
	return r, args.Error(1)
}

func newDialerMock(conn Connection, err error) *DialerMock {
	m := new(DialerMock)
	m.On("Dial", mock.Anything, mock.Anything).Return(conn, err)
	return m
}

type HttpClientMock struct {
	mock.Mock
}

func (m *HttpClientMock) Do(req *http.Request) (*http.Response, error) {
	args := m.Called(req)
	r, _ := args.Get(0).(*http.Response)
	return r, args.Error(1)
}

type SecretsGetterMock struct {
	mock.Mock
}

func (m *SecretsGetterMock) GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	args := m.Called(ctx, params)
	r, _ := args.Get(0).(*secretsmanager.GetSecretValueOutput)
	return r, args.Error(1)
}

var testCredentials = Credentials{
	Username:      "user@acme.com",
	Password:      "pw",
	SecurityToken: "TOKEN",
	WsdlPath:      "enterprise.wsdl",
}

// newTestClient returns a client whose session is conn, and the logs it writes
func newTestClient(t *testing.T, conn Connection) (*Client, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	c, err := NewClient(ClientParams{
		Credentials: testCredentials,
		Dialer:      newDialerMock(conn, nil),
		Logger:      zap.New(core),
	})
	assert.NoError(t, err)
	return c, logs
}

func records(ids ...string) []salesforce.Record {
	r := make([]salesforce.Record, 0, len(ids))
	for _, id := range ids {
		r = append(r, salesforce.Record{"Id": id})
	}
	return r
}
