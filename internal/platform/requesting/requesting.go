// Package requesting builds the outgoing HTTP clients used by the rider
// session to reach the rider API.
package requesting

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// DefaultTimeout bounds every outgoing request unless overridden.
const DefaultTimeout = 5 * time.Second

// TransportMiddleware wraps a RoundTripper.
type TransportMiddleware func(http.RoundTripper) http.RoundTripper

// InterceptorTransport applies middlewares around a base transport.
type InterceptorTransport struct {
	Transport   http.RoundTripper
	Middlewares []TransportMiddleware
}

func (t *InterceptorTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	transport := t.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	for _, middleware := range t.Middlewares {
		transport = middleware(transport)
	}
	return transport.RoundTrip(req)
}

type loggingTransport struct {
	next http.RoundTripper
	log  *zap.Logger
}

// NewLoggingTransportMiddleware logs method, url, status and duration of each
// outgoing request at debug level.
func NewLoggingTransportMiddleware(log *zap.Logger) TransportMiddleware {
	return func(rt http.RoundTripper) http.RoundTripper {
		return &loggingTransport{next: rt, log: log}
	}
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	fields := []zap.Field{
		zap.String("label", "outgoing-request"),
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
	}

	resp, err := t.next.RoundTrip(req)
	fields = append(fields, zap.Duration("duration", time.Since(start)))
	if err != nil {
		t.log.Debug("request failed", append(fields, zap.Error(err))...)
		return nil, err
	}

	t.log.Debug("request done", append(fields, zap.Int("code", resp.StatusCode))...)
	return resp, nil
}

// NewClient returns an *http.Client with a timeout and request logging.
// A zero timeout selects DefaultTimeout.
func NewClient(log *zap.Logger, timeout time.Duration) *http.Client {
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &InterceptorTransport{
			Transport:   http.DefaultTransport,
			Middlewares: []TransportMiddleware{NewLoggingTransportMiddleware(log)},
		},
	}
}
