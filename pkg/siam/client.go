package siam

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Result codes used by the a-select protocol.
const (
	ResultOK                 = "0000"
	ResultInvalidCredentials = "0007"
)

// Protocol request names.
const (
	RequestAuthenticate      = "authenticate"
	RequestVerifyCredentials = "verify_credentials"
	RequestUpgradeTGT        = "upgrade_tgt"
	RequestKillTGT           = "kill_tgt"
)

// Identity is how this application is known to one IdP.
type Identity struct {
	BaseURL       string
	AppID         string
	AselectServer string
	SharedSecret  string
}

// Attributes are the verified user attributes. Protocol bookkeeping such as
// result_code and tgt_exp_time is never exposed.
type Attributes struct {
	UID string `json:"uid"`
}

// Client speaks the SIAM/a-select protocol over a Transport.
type Client struct {
	identity  Identity
	transport Transport
	timeout   Timeout
	metrics   *Metrics
	now       func() time.Time
}

func NewClient(identity Identity, transport Transport) *Client {
	return &Client{
		identity:  identity,
		transport: transport,
		timeout:   DefaultTimeout,
		now:       time.Now,
	}
}

// WithTimeout returns a copy of c using timeout for every request.
func (c *Client) WithTimeout(timeout Timeout) *Client {
	cp := *c
	cp.timeout = timeout.orDefault()
	return &cp
}

// WithMetrics returns a copy of c that counts IdP result codes.
func (c *Client) WithMetrics(m *Metrics) *Client {
	cp := *c
	cp.metrics = m
	return &cp
}

// WithClock returns a copy of c that checks ticket expiry against now.
func (c *Client) WithClock(now func() time.Time) *Client {
	cp := *c
	cp.now = now
	return &cp
}

func (c *Client) Identity() Identity { return c.identity }
func (c *Client) Timeout() Timeout   { return c.timeout }

// AuthnRedirect asks the IdP where to send the user to log in. The returned
// URL is as_url with a-select-server and rid added to whatever query it
// already carries.
func (c *Client) AuthnRedirect(ctx context.Context, passive bool, callbackURL string) (string, error) {
	values, err := c.send(ctx, RequestAuthenticate, url.Values{
		"forced_logon":    {"false"},
		"app_id":          {c.identity.AppID},
		"app_url":         {callbackURL},
		"a-select-server": {c.identity.AselectServer},
		"shared_secret":   {c.identity.SharedSecret},
		"forced_passive":  {strconv.FormatBool(passive)},
	})
	if err != nil {
		return "", err
	}

	fields, missing := pick(values, "result_code", "as_url", "a-select-server", "rid")
	if len(missing) > 0 {
		return "", raise(ctx, ErrResponse, RequestAuthenticate, "missing "+strings.Join(missing, ", "), nil)
	}
	if fields["result_code"] != ResultOK {
		return "", raise(ctx, ErrResponse, RequestAuthenticate, "result_code "+fields["result_code"], nil)
	}

	u, err := url.Parse(fields["as_url"])
	if err != nil || !u.IsAbs() {
		return "", raise(ctx, ErrResponse, RequestAuthenticate, "as_url is not an absolute URL", err)
	}
	q := u.Query()
	q.Set("a-select-server", fields["a-select-server"])
	q.Set("rid", fields["rid"])
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// UserAttributes verifies the credentials the IdP handed to the user after
// login. Invalid credentials yield ErrBadCredentials; every other failure is
// the IdP's.
func (c *Client) UserAttributes(ctx context.Context, credentials, rid string) (Attributes, error) {
	values, err := c.send(ctx, RequestVerifyCredentials, url.Values{
		"a-select-server":     {c.identity.AselectServer},
		"shared_secret":       {c.identity.SharedSecret},
		"aselect_credentials": {credentials},
		"rid":                 {rid},
	})
	if err != nil {
		return Attributes{}, err
	}

	code := values.Get("result_code")
	switch {
	case !values.Has("result_code"):
		return Attributes{}, raise(ctx, ErrResponse, RequestVerifyCredentials, "missing result_code", nil)
	case code == ResultInvalidCredentials:
		return Attributes{}, raise(ctx, ErrBadCredentials, RequestVerifyCredentials, "", nil)
	case code != ResultOK:
		return Attributes{}, raise(ctx, ErrRequest, RequestVerifyCredentials, "result_code "+code, nil)
	}

	fields, missing := pick(values, "tgt_exp_time", "uid")
	if len(missing) > 0 {
		return Attributes{}, raise(ctx, ErrResponse, RequestVerifyCredentials, "missing "+strings.Join(missing, ", "), nil)
	}

	expMillis, err := strconv.ParseInt(fields["tgt_exp_time"], 10, 64)
	if err != nil {
		return Attributes{}, raise(ctx, ErrResponse, RequestVerifyCredentials, "tgt_exp_time is not an integer", err)
	}
	if expMillis <= c.now().UnixMilli() {
		return Attributes{}, raise(ctx, ErrResponse, RequestVerifyCredentials, "ticket expired", nil)
	}

	return Attributes{UID: fields["uid"]}, nil
}

// RenewSession extends the IdP session (ticket granting ticket).
func (c *Client) RenewSession(ctx context.Context, credentials string) (bool, error) {
	values, err := c.send(ctx, RequestUpgradeTGT, url.Values{
		"a-select-server":     {c.identity.AselectServer},
		"crypted_credentials": {credentials},
	})
	if err != nil {
		return false, err
	}
	if !values.Has("result_code") {
		return false, raise(ctx, ErrResponse, RequestUpgradeTGT, "missing result_code", nil)
	}
	return values.Get("result_code") == ResultOK, nil
}

// EndSession kills the IdP session. Best effort: the HTTP status is returned
// and the body ignored.
func (c *Client) EndSession(ctx context.Context, credentials string) (int, error) {
	resp, err := c.transport.Send(ctx, url.Values{
		"request":         {RequestKillTGT},
		"a-select-server": {c.identity.AselectServer},
		"tgt_blob":        {credentials},
	}, c.timeout)
	if err != nil {
		return 0, err
	}
	return resp.StatusCode, nil
}

func (c *Client) send(ctx context.Context, request string, params url.Values) (url.Values, error) {
	params.Set("request", request)
	resp, err := c.transport.Send(ctx, params, c.timeout)
	if err != nil {
		return nil, err
	}
	if resp.Values.Has("result_code") {
		c.metrics.observeResult(request, resultLabel(resp.Values.Get("result_code")))
	}
	return resp.Values, nil
}

// pick returns the first value of each key and the keys that were absent.
func pick(values url.Values, keys ...string) (map[string]string, []string) {
	fields := make(map[string]string, len(keys))
	var missing []string
	for _, k := range keys {
		if !values.Has(k) {
			missing = append(missing, k)
			continue
		}
		fields[k] = values.Get(k)
	}
	return fields, missing
}

// resultLabel keeps metric cardinality bounded whatever the IdP sends.
func resultLabel(code string) string {
	if len(code) != 4 {
		return "other"
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return "other"
		}
	}
	return code
}
