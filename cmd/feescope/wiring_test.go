package main

import (
	"context"
	"errors"
	"testing"

	"feeScope/internal/config"
	"feeScope/internal/model"
	"feeScope/internal/subgraph"
)

func baseConfig() config.Common {
	return config.Common{Chain: "sonic", ReportPoolType: "cl", PageSize: 1000}
}

func TestNewAppFixedBlock(t *testing.T) {
	cfg := baseConfig()
	cfg.Block = 777
	cfg.Endpoint = "http://localhost:8000/subgraphs/name/test"

	a, err := newApp(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	defer a.Close()

	block, err := a.resolve(1738368000)(context.Background())
	if err != nil || block != 777 {
		t.Fatalf("resolver = %d, %v", block, err)
	}
	if a.deployment.Endpoint != cfg.Endpoint || a.reportFor != model.PoolTypeCL || len(a.sinks) != 0 {
		t.Fatalf("app mismatch: %+v", a)
	}
}

func TestNewAppErrors(t *testing.T) {
	cfg := baseConfig()
	if _, err := newApp(context.Background(), cfg, nil); err == nil {
		t.Fatalf("expected error without rpc or block")
	}

	cfg = baseConfig()
	cfg.Block = 1
	cfg.Chain = "base"
	if _, err := newApp(context.Background(), cfg, nil); !errors.Is(err, model.ErrUnsupportedChain) {
		t.Fatalf("expected ErrUnsupportedChain, got %v", err)
	}

	cfg = baseConfig()
	cfg.Block = 1
	cfg.ReportPoolType = "stable"
	if _, err := newApp(context.Background(), cfg, nil); err == nil {
		t.Fatalf("expected error for unknown pool type")
	}
}

func TestEarliestDay(t *testing.T) {
	d, err := subgraph.DeploymentFor(model.ChainSonic)
	if err != nil {
		t.Fatalf("deployment: %v", err)
	}
	if got := earliestDay(d); got != 1735084800 {
		t.Fatalf("earliestDay = %d", got)
	}
	if redactDSN("postgres://u:p@h/db") != "***" || redactDSN("") != "" {
		t.Fatalf("redactDSN leaked")
	}
}
