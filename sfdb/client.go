package sfdb

import (
	"context"
	"net/http"

	"github.com/cenkalti/backoff/v4"
	"github.com/ellogroup/ello-golang-sfdb/salesforce"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultApiVersion of the REST API used once logged in
const DefaultApiVersion = 59

// Connection is an authenticated salesforce session. *salesforce.RequestHelper implements it.
type Connection interface {
	Query(ctx context.Context, q string) (*salesforce.QueryResponse[salesforce.Record], error)
	QueryMore(ctx context.Context, locator string) (*salesforce.QueryResponse[salesforce.Record], error)
	Retrieve(ctx context.Context, name string, fields, ids []string) ([]salesforce.Record, error)
	DescribeGlobal(ctx context.Context) (*salesforce.DescribeGlobalResponse, error)
	Delete(ctx context.Context, ids []string) ([]salesforce.SaveResult, error)
}

// Dialer establishes a Connection for a set of Credentials
type Dialer interface {
	Dial(ctx context.Context, c Credentials) (Connection, error)
}

type ClientParams struct {
	Credentials Credentials
	// HttpClient defaults to http.DefaultClient
	HttpClient salesforce.HttpClient
	// ApiVersion defaults to DefaultApiVersion
	ApiVersion int `validate:"gte=0"`
	// Logger defaults to a no-op logger
	Logger *zap.Logger
	// LoginBackoff defaults to a single login attempt
	LoginBackoff backoff.BackOff
	// Dialer defaults to a SOAP login against Credentials.Endpoint
	Dialer Dialer
}

// Client gives access to the records of a salesforce org.
//
// The session is established on first use and kept for the lifetime of the Client, so is the
// sobject key prefix table. A Client is not safe for concurrent use.
type Client struct {
	creds  Credentials
	dialer Dialer
	log    *zap.Logger

	conn     Connection
	prefixes map[string]string
}

func NewClient(p ClientParams) (*Client, error) {
	p.Credentials = p.Credentials.withDefaults()
	if err := validator.New().Struct(p); err != nil {
		return nil, err
	}

	hc := p.HttpClient
	if hc == nil {
		hc = http.DefaultClient
	}
	v := p.ApiVersion
	if v == 0 {
		v = DefaultApiVersion
	}
	d := p.Dialer
	if d == nil {
		d = soapDialer{httpClient: hc, apiVersion: v, backoff: p.LoginBackoff}
	}
	log := p.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Client{
		creds:  p.Credentials,
		dialer: d,
		log: log.Named("SalesforceDatabase").With(
			zap.String("clientId", uuid.NewString()),
			zap.String("username", p.Credentials.Username),
		),
	}, nil
}
