// Package hasura talks to the Hasura admin GraphQL endpoint. It is the
// alternative data path used when the service has no direct Postgres access.
package hasura

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/chirpy-dev/chirpy-backend/pkg/config"
	pkgerrors "github.com/chirpy-dev/chirpy-backend/pkg/errors"
)

const (
	adminSecretHeader = "x-hasura-admin-secret"
	defaultTimeout    = 10 * time.Second
	maxRetries        = 2
	retryBase         = 100 * time.Millisecond
)

type httpDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client issues admin GraphQL requests.
type Client struct {
	endpoint    string
	adminSecret string
	http        httpDoer
	backoff     func() retry.Backoff
}

type Option func(*Client)

// WithHTTPClient overrides the transport, mainly for tests.
func WithHTTPClient(doer httpDoer) Option {
	return func(c *Client) { c.http = doer }
}

// WithoutRetry disables retrying transient failures.
func WithoutRetry() Option {
	return func(c *Client) {
		c.backoff = func() retry.Backoff { return retry.WithMaxRetries(0, retry.NewConstant(time.Millisecond)) }
	}
}

func NewClient(cfg config.HasuraConfig, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.HTTPOrigin) == "" {
		return nil, errors.New("hasura http origin is required")
	}
	if strings.TrimSpace(cfg.AdminSecret) == "" {
		return nil, errors.New("hasura admin secret is required")
	}
	timeout := cfg.RequestLimit
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	c := &Client{
		endpoint:    cfg.GraphQLEndpoint(),
		adminSecret: cfg.AdminSecret,
		http:        &http.Client{Timeout: timeout},
		backoff: func() retry.Backoff {
			return retry.WithMaxRetries(maxRetries, retry.NewExponential(retryBase))
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type graphQLRequest struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
}

type graphQLError struct {
	Message    string         `json:"message"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

// Do runs one operation and decodes its data into out. GraphQL-level errors
// are not retried; transport failures and 5xx responses are.
func (c *Client) Do(ctx context.Context, operation, query string, variables map[string]any, out any) error {
	body, err := json.Marshal(graphQLRequest{Query: query, OperationName: operation, Variables: variables})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode graphql request")
	}

	var resp graphQLResponse
	err = retry.Do(ctx, c.backoff(), func(ctx context.Context) error {
		resp = graphQLResponse{}
		return c.post(ctx, body, &resp)
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("hasura %s", operation))
	}
	if len(resp.Errors) > 0 {
		msgs := make([]string, 0, len(resp.Errors))
		for _, e := range resp.Errors {
			msgs = append(msgs, e.Message)
		}
		return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("hasura %s: %s", operation, strings.Join(msgs, "; "))).
			WithDetails(map[string]any{"operation": operation, "errors": msgs})
	}
	if out == nil || len(resp.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("decode hasura %s response", operation))
	}
	return nil
}

func (c *Client) post(ctx context.Context, body []byte, out *graphQLResponse) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(adminSecretHeader, c.adminSecret)

	res, err := c.http.Do(req)
	if err != nil {
		return retry.RetryableError(err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 4<<20))
	if err != nil {
		return retry.RetryableError(fmt.Errorf("read response: %w", err))
	}
	if res.StatusCode >= http.StatusInternalServerError {
		return retry.RetryableError(fmt.Errorf("unexpected status %d", res.StatusCode))
	}
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d: %s", res.StatusCode, truncate(raw, 256))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
