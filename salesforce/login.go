package salesforce

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-playground/validator/v10"
)

const soapEnvelopeNs = "http://schemas.xmlsoap.org/soap/envelope/"

type SoapParams struct {
	HttpClient HttpClient  `validate:"required"`
	Descriptor *Descriptor `validate:"required"`
	// Backoff applied to login attempts, defaults to a single attempt
	Backoff backoff.BackOff
}

// SoapClient logs in to salesforce through the SOAP API described by a Descriptor
type SoapClient struct {
	httpClient HttpClient
	namespace  string
	endpoint   string
	backoff    backoff.BackOff
}

func NewSoapClient(p SoapParams) (*SoapClient, error) {
	if err := validator.New().Struct(p); err != nil {
		return nil, err
	}
	b := p.Backoff
	if b == nil {
		b = &backoff.StopBackOff{}
	}
	return &SoapClient{
		httpClient: p.HttpClient,
		namespace:  p.Descriptor.TargetNamespace,
		endpoint:   p.Descriptor.Location,
		backoff:    b,
	}, nil
}

// SetEndpoint overrides the service address of the descriptor. An empty endpoint keeps it.
func (c *SoapClient) SetEndpoint(endpoint string) error {
	if len(endpoint) == 0 {
		return nil
	}
	u, err := url.ParseRequestURI(endpoint)
	if err != nil {
		return fmt.Errorf("invalid salesforce endpoint: %w", err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("invalid salesforce endpoint scheme %q", u.Scheme)
	}
	c.endpoint = endpoint
	return nil
}

func (c *SoapClient) Endpoint() string {
	return c.endpoint
}

// LoginResult is the session returned by a successful login.
// It satisfies TokenGetter so it can authenticate a RequestHelper.
type LoginResult struct {
	MetadataServerUrl string `xml:"metadataServerUrl"`
	PasswordExpired   bool   `xml:"passwordExpired"`
	Sandbox           bool   `xml:"sandbox"`
	ServerUrl         string `xml:"serverUrl"`
	SessionId         string `xml:"sessionId"`
	UserId            string `xml:"userId"`
}

func (l *LoginResult) Get(_ context.Context) (string, error) {
	return l.SessionId, nil
}

type SoapFault struct {
	Code   string `xml:"faultcode"`
	String string `xml:"faultstring"`
}

func (f *SoapFault) Error() string {
	return fmt.Sprintf("salesforce soap fault %s: %s", f.Code, f.String)
}

type loginEnvelope struct {
	XMLName xml.Name `xml:"soapenv:Envelope"`
	SoapNs  string   `xml:"xmlns:soapenv,attr"`
	UrnNs   string   `xml:"xmlns:urn,attr"`
	Login   struct {
		Username string `xml:"urn:username"`
		Password string `xml:"urn:password"`
	} `xml:"soapenv:Body>urn:login"`
}

type loginResponseEnvelope struct {
	Body struct {
		Result *LoginResult `xml:"loginResponse>result"`
		Fault  *SoapFault   `xml:"Fault"`
	} `xml:"Body"`
}

// Login authenticates username with secret (password followed by security token).
// SOAP faults are not retried whatever the backoff.
func (c *SoapClient) Login(ctx context.Context, username, secret string) (*LoginResult, error) {
	if len(c.endpoint) == 0 {
		return nil, fmt.Errorf("salesforce endpoint needs to be provided")
	}
	return backoff.RetryWithData[*LoginResult](func() (*LoginResult, error) {
		res, err := c.login(ctx, username, secret)
		var fault *SoapFault
		if errors.As(err, &fault) {
			return nil, backoff.Permanent(err)
		}
		return res, err
	}, backoff.WithContext(c.backoff, ctx))
}

func (c *SoapClient) login(ctx context.Context, username, secret string) (*LoginResult, error) {
	env := loginEnvelope{SoapNs: soapEnvelopeNs, UrnNs: c.namespace}
	env.Login.Username = username
	env.Login.Password = secret
	reqBody, err := xml.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("unable to create salesforce login payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint,
		bytes.NewReader(append([]byte(xml.Header), reqBody...)))
	if err != nil {
		return nil, fmt.Errorf("unable to create salesforce login request: %w", err)
	}
	req.Header = http.Header{
		"Content-Type": {"text/xml; charset=UTF-8"},
		"SOAPAction":   {"login"},
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unable to send login request to salesforce: %w", err)
	}
	defer resp.Body.Close()

	resBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var parsed loginResponseEnvelope
	if err = xml.Unmarshal(resBody, &parsed); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, fmt.Errorf("unexpected salesforce login response code: %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("unable to parse salesforce login response: %w", err)
	}
	if parsed.Body.Fault != nil {
		return nil, parsed.Body.Fault
	}
	if parsed.Body.Result == nil || len(parsed.Body.Result.SessionId) == 0 {
		return nil, fmt.Errorf("salesforce login response has no session, status code: %d", resp.StatusCode)
	}
	return parsed.Body.Result, nil
}

// NewSessionRequestHelper builds a RequestHelper authenticated by a login session,
// targeting the instance of the session's server url.
func NewSessionRequestHelper(client HttpClient, session *LoginResult, apiVersion int) (*RequestHelper, error) {
	u, err := url.Parse(session.ServerUrl)
	if err != nil || len(u.Host) == 0 {
		return nil, fmt.Errorf("invalid salesforce server url %q", session.ServerUrl)
	}
	return NewRequestHelper(client, session, u.Scheme+"://"+u.Host, apiVersion)
}
