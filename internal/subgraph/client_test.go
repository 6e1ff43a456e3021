package subgraph

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"feeScope/internal/model"
)

func newTestClient(t *testing.T, url string, retries int) *Client {
	t.Helper()
	client, err := NewClient(Config{
		Endpoint:     url,
		Timeout:      5 * time.Second,
		MaxRetries:   retries,
		RetryBackoff: time.Millisecond,
	}, nil, nil)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	return client
}

func TestQueryDecodesData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if got, _ := req.Variables["first"].(float64); got != 1000 {
			t.Errorf("first = %v, want 1000", req.Variables["first"])
		}
		w.Write([]byte(`{"data":{"gauges":[{"id":"g1"},{"id":"g2"}]}}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, 0)

	var out struct {
		Gauges []model.Gauge `json:"gauges"`
	}
	err := client.Query(context.Background(), "query gauges($first: Int!) { gauges(first: $first) { id } }", map[string]any{"first": 1000}, &out)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(out.Gauges) != 2 || out.Gauges[1].ID != "g2" {
		t.Fatalf("gauges mismatch: %+v", out.Gauges)
	}
}

func TestQueryErrorIsFinal(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"errors":[{"message":"Type Query has no field foo"}]}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, 3)
	err := client.Query(context.Background(), "query foo { foo { id } }", nil, nil)

	var qerr *QueryError
	if !errors.As(err, &qerr) {
		t.Fatalf("expected QueryError, got %v", err)
	}
	if qerr.Operation != "foo" {
		t.Fatalf("operation = %q, want foo", qerr.Operation)
	}
	if calls.Load() != 1 {
		t.Fatalf("query errors should not be retried, got %d calls", calls.Load())
	}
}

func TestQueryRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"data":{"tokens":[]}}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, 3)
	if err := client.Query(context.Background(), "query tokens { tokens { id } }", nil, nil); err != nil {
		t.Fatalf("query: %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 calls, got %d", calls.Load())
	}
}

func TestQueryGivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, 2)
	err := client.Query(context.Background(), "query tokens { tokens { id } }", nil, nil)

	var serr *StatusError
	if !errors.As(err, &serr) || serr.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 StatusError, got %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 calls, got %d", calls.Load())
	}
}

func TestQueryClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, 3)
	if err := client.Query(context.Background(), "query x { x }", nil, nil); err == nil {
		t.Fatalf("expected error")
	}
	if calls.Load() != 1 {
		t.Fatalf("expected 1 call, got %d", calls.Load())
	}
}

func TestQueryMalformedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, 0)
	if err := client.Query(context.Background(), "query x { x }", nil, nil); err == nil {
		t.Fatalf("expected error for malformed payload")
	}
}

func TestOperationName(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"query bribes($from: Int!) { voteBribes { id } }", "bribes"},
		{"\n  query poolDayData{ x }", "poolDayData"},
		{"{ clProtocolDayDatas { id } }", "anonymous"},
	}
	for _, tt := range tests {
		if got := operationName(tt.query); got != tt.want {
			t.Errorf("operationName(%q) = %q, want %q", tt.query, got, tt.want)
		}
	}
}

func TestDeploymentFor(t *testing.T) {
	d, err := DeploymentFor(model.ChainSonic)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Endpoint == "" || d.Start != 1735129946 {
		t.Fatalf("deployment mismatch: %+v", d)
	}
	if _, err := DeploymentFor(model.Chain("base")); !errors.Is(err, model.ErrUnsupportedChain) {
		t.Fatalf("expected ErrUnsupportedChain, got %v", err)
	}
}
