package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"feeScope/internal/chain"
	"feeScope/internal/config"
	"feeScope/internal/fetch"
	"feeScope/internal/model"
	"feeScope/internal/paginate"
	"feeScope/internal/stats"
	"feeScope/internal/storage"
	"feeScope/internal/storage/postgres"
	"feeScope/internal/subgraph"
)

// app holds the components shared by run and backfill.
type app struct {
	chain      model.Chain
	deployment subgraph.Deployment
	reportFor  model.PoolType
	service    *stats.Service
	resolve    func(startOfDay int64) model.BlockResolver
	sinks      storage.MultiSink
	store      *postgres.Store
	closers    []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func newApp(ctx context.Context, cfg config.Common, logger *zap.Logger) (*app, error) {
	chainName, err := model.ParseChain(cfg.Chain)
	if err != nil {
		return nil, err
	}
	reportFor, err := model.ParsePoolType(cfg.ReportPoolType)
	if err != nil {
		return nil, err
	}
	deployment, err := subgraph.DeploymentFor(chainName)
	if err != nil {
		return nil, err
	}
	if cfg.Endpoint != "" {
		deployment.Endpoint = cfg.Endpoint
	}

	a := &app{chain: chainName, deployment: deployment, reportFor: reportFor}

	client, err := subgraph.NewClient(subgraph.Config{
		Endpoint:     deployment.Endpoint,
		Timeout:      cfg.Timeout,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
	}, nil, logger)
	if err != nil {
		return nil, err
	}

	pager := paginate.Config{PageSize: cfg.PageSize, Delay: cfg.PageDelay}
	a.service = stats.NewService(logger)
	a.service.Register(chainName, fetch.NewFetcher(client, pager, logger))

	if err := a.buildResolver(ctx, cfg, logger); err != nil {
		a.Close()
		return nil, err
	}
	if err := a.buildSinks(ctx, cfg); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) buildResolver(ctx context.Context, cfg config.Common, logger *zap.Logger) error {
	if cfg.Block > 0 {
		block := cfg.Block
		a.resolve = func(int64) model.BlockResolver { return chain.FixedBlock(block) }
		return nil
	}
	if cfg.RPCURL == "" {
		return fmt.Errorf("rpc url is required unless --block is set")
	}

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	a.closers = append(a.closers, chainClient.Close)

	if want := a.deployment.ChainID; want != 0 {
		id, err := chainClient.GetChainID(ctx)
		if err != nil {
			return fmt.Errorf("get chain id: %w", err)
		}
		if !id.IsUint64() || id.Uint64() != want {
			return fmt.Errorf("rpc chain id %s does not match %s (%d)", id, a.chain, want)
		}
	}

	finder := chain.NewBlockFinder(chainClient, logger)
	a.resolve = finder.Resolver
	return nil
}

func (a *app) buildSinks(ctx context.Context, cfg config.Common) error {
	if cfg.Out != "" {
		a.sinks = append(a.sinks, storage.NewJsonlStorage(cfg.Out))
	}
	if cfg.PGDSN == "" {
		return nil
	}

	store, err := postgres.NewStore(ctx, cfg.PGDSN)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	a.closers = append(a.closers, store.Close)
	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate postgres: %w", err)
	}
	a.store = store
	a.sinks = append(a.sinks, store)
	return nil
}

// earliestDay is the first day the deployment has data for.
func earliestDay(d subgraph.Deployment) int64 {
	return model.StartOfDay(d.Start)
}

func redactDSN(dsn string) string {
	if dsn == "" {
		return dsn
	}
	return "***"
}
