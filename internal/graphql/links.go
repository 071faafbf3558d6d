package graphql

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/courtside/platform/internal/auth"
)

// The request pipeline mirrors an Apollo link chain as nested RoundTrippers:
// error observer -> retry -> auth header injection -> HTTP transport.

const (
	retryAttempts = 2
	retryDelay    = 300 * time.Millisecond
)

// TransportError is a non-2xx upstream response surfaced as an error, keeping
// the HTTP status for the retry policy and the handler layer.
type TransportError struct {
	Status int
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("upstream responded with status %d", e.Status)
}

// NewPipeline assembles the full link chain around the base transport.
func NewPipeline(anonKey string, logger *slog.Logger) *http.Client {
	var rt http.RoundTripper = http.DefaultTransport
	rt = &authLink{next: rt, anonKey: anonKey}
	rt = &retryLink{next: rt}
	rt = &errorLink{next: rt, logger: logger}
	return &http.Client{Transport: rt}
}

// authLink attaches the session's bearer token from the request context, or
// the anonymous key when no session is present.
type authLink struct {
	next    http.RoundTripper
	anonKey string
}

func (l *authLink) RoundTrip(req *http.Request) (*http.Response, error) {
	token := l.anonKey
	if s := auth.SessionFromContext(req.Context()); s != nil && s.Token != "" {
		token = s.Token
	}
	req = req.Clone(req.Context())
	req.Header.Set("apikey", l.anonKey)
	req.Header.Set("Authorization", "Bearer "+token)
	return l.next.RoundTrip(req)
}

// retryLink re-issues the operation up to retryAttempts extra times with a
// fixed delay. Any failure that carries a transport status code is retried;
// connection-level errors have no status and are not.
type retryLink struct {
	next http.RoundTripper
}

func (l *retryLink) RoundTrip(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		var err error
		body, err = io.ReadAll(req.Body)
		req.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("buffer request body: %w", err)
		}
	}

	var resp *http.Response
	backoff := retry.WithMaxRetries(retryAttempts, retry.NewConstant(retryDelay))
	err := retry.Do(req.Context(), backoff, func(ctx context.Context) error {
		attempt := req.Clone(ctx)
		if body != nil {
			attempt.Body = io.NopCloser(bytes.NewReader(body))
		}

		var rtErr error
		resp, rtErr = l.next.RoundTrip(attempt)
		if rtErr != nil {
			return rtErr
		}
		if resp.StatusCode >= http.StatusBadRequest {
			resp.Body.Close()
			return retry.RetryableError(&TransportError{Status: resp.StatusCode})
		}
		return nil
	})
	if err != nil {
		var te *TransportError
		if errors.As(err, &te) {
			return nil, te
		}
		return nil, err
	}
	return resp, nil
}

// errorLink observes transport failures without altering the outcome.
// GraphQL-level errors are observed after decoding, in the client.
type errorLink struct {
	next   http.RoundTripper
	logger *slog.Logger
}

func (l *errorLink) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := l.next.RoundTrip(req)
	if err != nil {
		l.logger.Error("graphql transport error", "url", req.URL.String(), "error", err)
	}
	return resp, err
}
