package siam

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// maxBodyBytes caps how much of an IdP response is read.
const maxBodyBytes = 64 << 10

// Timeout bounds one exchange with the IdP.
type Timeout struct {
	Connect time.Duration // establishing the TCP (and TLS) connection
	Read    time.Duration // waiting for the response once the request is written
}

// DefaultTimeout fails fast: the IdP is an external dependency and a slow
// one must not hold request handlers open.
var DefaultTimeout = Timeout{Connect: 3050 * time.Millisecond, Read: time.Second}

// SingleTimeout uses d for both phases.
func SingleTimeout(d time.Duration) Timeout {
	return Timeout{Connect: d, Read: d}
}

func (t Timeout) orDefault() Timeout {
	if t.Connect <= 0 {
		t.Connect = DefaultTimeout.Connect
	}
	if t.Read <= 0 {
		t.Read = DefaultTimeout.Read
	}
	return t
}

// Response is a successfully parsed IdP reply.
type Response struct {
	StatusCode int
	Values     url.Values
}

// Transport performs a single request/response exchange with the IdP.
type Transport interface {
	Send(ctx context.Context, params url.Values, timeout Timeout) (*Response, error)
}

// HTTPTransport sends protocol requests as HTTP GETs with the parameters in
// the query string and parses form-encoded replies.
type HTTPTransport struct {
	endpoint *url.URL
	metrics  *Metrics
	base     *http.Transport

	mu      sync.Mutex
	clients map[Timeout]*http.Client
}

type TransportOption func(*HTTPTransport)

// WithMetrics records request counts and latencies.
func WithMetrics(m *Metrics) TransportOption {
	return func(t *HTTPTransport) { t.metrics = m }
}

// WithBaseTransport uses rt (cloned) for connection settings such as TLS.
func WithBaseTransport(rt *http.Transport) TransportOption {
	return func(t *HTTPTransport) { t.base = rt }
}

func NewHTTPTransport(endpoint string, opts ...TransportOption) (*HTTPTransport, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("siam: invalid endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("siam: invalid endpoint %q: scheme must be http or https", endpoint)
	}

	t := &HTTPTransport{
		endpoint: u,
		clients:  make(map[Timeout]*http.Client),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.base == nil {
		t.base = http.DefaultTransport.(*http.Transport)
	}
	return t, nil
}

// Send performs the exchange. Any failure is returned as an *Error, already
// logged.
func (t *HTTPTransport) Send(ctx context.Context, params url.Values, timeout Timeout) (*Response, error) {
	request := params.Get("request")
	start := time.Now()

	resp, err := t.send(ctx, request, params, timeout.orDefault())

	t.metrics.observeRequest(request, KindOf(err), time.Since(start))
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (t *HTTPTransport) send(ctx context.Context, request string, params url.Values, timeout Timeout) (*Response, error) {
	u := *t.endpoint
	q := u.Query()
	for k, vs := range params {
		q[k] = vs
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, raise(ctx, ErrRequest, request, "build request", err)
	}

	resp, err := t.clientFor(timeout).Do(req)
	if err != nil {
		// url.Error includes the full URL, shared secret and all.
		return nil, raise(ctx, classify(err), request, "GET "+t.endpoint.Redacted(), unwrapURLError(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, raise(ctx, classify(err), request, "read body", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, raise(ctx, ErrRequest, request, fmt.Sprintf("HTTP %d from %s", resp.StatusCode, t.endpoint.Redacted()), nil)
	}

	values, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, raise(ctx, ErrResponse, request, "body is not form encoded", err)
	}

	return &Response{StatusCode: resp.StatusCode, Values: values}, nil
}

// clientFor returns a client whose dialer and header wait honour timeout.
// Clients are cached per distinct timeout; in practice there are one or two.
func (t *HTTPTransport) clientFor(timeout Timeout) *http.Client {
	t.mu.Lock()
	defer t.mu.Unlock()

	if c, ok := t.clients[timeout]; ok {
		return c
	}

	rt := t.base.Clone()
	rt.DialContext = (&net.Dialer{Timeout: timeout.Connect, KeepAlive: 30 * time.Second}).DialContext
	rt.TLSHandshakeTimeout = timeout.Connect
	rt.ResponseHeaderTimeout = timeout.Read

	c := &http.Client{
		Transport: rt,
		Timeout:   timeout.Connect + timeout.Read,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	t.clients[timeout] = c
	return c
}

func unwrapURLError(err error) error {
	if uerr, ok := err.(*url.Error); ok {
		return uerr.Err
	}
	return err
}
