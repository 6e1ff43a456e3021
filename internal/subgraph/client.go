package subgraph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"feeScope/internal/metrics"
)

// Config holds transport settings.
type Config struct {
	Endpoint     string
	Timeout      time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
}

// Client posts GraphQL queries to a subgraph endpoint.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *zap.Logger
}

// NewClient builds a Client. A nil httpClient gets one with cfg.Timeout.
func NewClient(cfg Config, httpClient *http.Client, logger *zap.Logger) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("subgraph endpoint is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{cfg: cfg, http: httpClient, logger: logger}, nil
}

// Endpoint returns the URL queries are sent to.
func (c *Client) Endpoint() string { return c.cfg.Endpoint }

type request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type response struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors"`
}

// GraphQLError is one entry of a response `errors` array.
type GraphQLError struct {
	Message string `json:"message"`
}

// QueryError is returned when the subgraph rejects a query.
type QueryError struct {
	Operation string
	Errors    []GraphQLError
}

func (e *QueryError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, item := range e.Errors {
		msgs = append(msgs, item.Message)
	}
	return fmt.Sprintf("subgraph error (%s): %s", e.Operation, strings.Join(msgs, "; "))
}

// StatusError is returned on a non-200 HTTP response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("subgraph status %d: %s", e.StatusCode, e.Body)
}

// Query runs a GraphQL query and decodes its data object into out.
// Transient failures are retried up to MaxRetries times.
func (c *Client) Query(ctx context.Context, query string, vars map[string]any, out any) error {
	op := operationName(query)
	start := time.Now()

	var data json.RawMessage
	err := withRetry(ctx, c.cfg.MaxRetries, c.cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		data, err = c.do(ctx, op, query, vars)
		if err != nil {
			c.logger.Warn("subgraph query failed", zap.String("operation", op), zap.Error(err))
		}
		return err
	})
	metrics.QueryDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.QueryTotal.WithLabelValues(op, "error").Inc()
		return err
	}
	metrics.QueryTotal.WithLabelValues(op, "ok").Inc()

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s data: %w", op, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, op string, query string, vars map[string]any) (json.RawMessage, error) {
	body, err := json.Marshal(request{Query: query, Variables: vars})
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", op, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: truncate(string(payload), 256)}
	}

	var envelope response
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(envelope.Errors) > 0 {
		return nil, &QueryError{Operation: op, Errors: envelope.Errors}
	}
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return nil, fmt.Errorf("empty data in %s response", op)
	}
	return envelope.Data, nil
}

// operationName extracts the name after the leading `query` keyword.
func operationName(query string) string {
	fields := strings.Fields(strings.TrimSpace(query))
	if len(fields) < 2 || fields[0] != "query" {
		return "anonymous"
	}
	name := fields[1]
	if idx := strings.IndexAny(name, "({"); idx >= 0 {
		name = name[:idx]
	}
	if name == "" {
		return "anonymous"
	}
	return name
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
