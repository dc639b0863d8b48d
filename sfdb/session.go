package sfdb

import (
	"context"
	"fmt"

	"github.com/cenkalti/backoff/v4"
	"github.com/ellogroup/ello-golang-sfdb/salesforce"
	"go.uber.org/zap"
)

// Connection returns the session of the client, logging in on the first call only.
// A failed login is returned as a *ConnectionError and leaves the client without a session.
func (c *Client) Connection(ctx context.Context) (Connection, error) {
	if c.conn != nil {
		return c.conn, nil
	}
	conn, err := c.dialer.Dial(ctx, c.creds)
	if err != nil {
		c.log.Warn("salesforce login failed", zap.Error(err))
		return nil, &ConnectionError{Cause: err}
	}
	c.log.Debug("logged in to salesforce", zap.String("endpoint", c.creds.Endpoint))
	c.conn = conn
	return conn, nil
}

type soapDialer struct {
	httpClient salesforce.HttpClient
	apiVersion int
	backoff    backoff.BackOff
}

// Dial binds the WSDL, sets the endpoint and logs in with the password followed by the
// security token
func (d soapDialer) Dial(ctx context.Context, c Credentials) (Connection, error) {
	desc, err := salesforce.LoadDescriptor(c.WsdlPath)
	if err != nil {
		return nil, err
	}
	sc, err := salesforce.NewSoapClient(salesforce.SoapParams{
		HttpClient: d.httpClient,
		Descriptor: desc,
		Backoff:    d.backoff,
	})
	if err != nil {
		return nil, err
	}
	if err := sc.SetEndpoint(c.Endpoint); err != nil {
		return nil, err
	}

	session, err := sc.Login(ctx, c.Username, c.Password+c.SecurityToken)
	if err != nil {
		return nil, err
	}
	if session.PasswordExpired {
		return nil, fmt.Errorf("password of %s has expired", c.Username)
	}
	return salesforce.NewSessionRequestHelper(d.httpClient, session, d.apiVersion)
}
