package chain

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"feeScope/internal/model"
)

// HeaderSource is the subset of Client used to locate blocks by time.
type HeaderSource interface {
	LatestBlockNumber(ctx context.Context) (uint64, error)
	BlockTimestamp(ctx context.Context, number uint64) (uint64, error)
}

// BlockFinder maps timestamps to block numbers.
type BlockFinder struct {
	headers HeaderSource
	logger  *zap.Logger
}

func NewBlockFinder(headers HeaderSource, logger *zap.Logger) *BlockFinder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BlockFinder{headers: headers, logger: logger}
}

// BlockAtTimestamp returns the first block whose timestamp is >= ts.
func (f *BlockFinder) BlockAtTimestamp(ctx context.Context, ts uint64) (uint64, error) {
	if f.headers == nil {
		return 0, fmt.Errorf("header source is nil")
	}

	latest, err := f.headers.LatestBlockNumber(ctx)
	if err != nil {
		return 0, fmt.Errorf("get latest block: %w", err)
	}
	latestTs, err := f.headers.BlockTimestamp(ctx, latest)
	if err != nil {
		return 0, fmt.Errorf("block timestamp %d: %w", latest, err)
	}
	if latestTs < ts {
		return 0, fmt.Errorf("timestamp %d is after latest block %d (%d)", ts, latest, latestTs)
	}

	lo, hi := uint64(0), latest
	var lookups int
	for lo < hi {
		mid := lo + (hi-lo)/2
		midTs, err := f.headers.BlockTimestamp(ctx, mid)
		if err != nil {
			return 0, fmt.Errorf("block timestamp %d: %w", mid, err)
		}
		lookups++
		if midTs < ts {
			lo = mid + 1
		} else {
			hi = mid
		}
	}

	f.logger.Debug("block resolved", zap.Uint64("timestamp", ts), zap.Uint64("block", lo), zap.Int("lookups", lookups))
	return lo, nil
}

// Resolver returns a resolver for the block at ts. The lookup runs at most
// once; later calls return the same block or error.
func (f *BlockFinder) Resolver(ts int64) model.BlockResolver {
	var (
		once  sync.Once
		block uint64
		err   error
	)
	return func(ctx context.Context) (uint64, error) {
		once.Do(func() {
			if ts < 0 {
				err = fmt.Errorf("negative timestamp: %d", ts)
				return
			}
			block, err = f.BlockAtTimestamp(ctx, uint64(ts))
		})
		return block, err
	}
}

// FixedBlock returns a resolver that always yields block.
func FixedBlock(block uint64) model.BlockResolver {
	return func(context.Context) (uint64, error) {
		return block, nil
	}
}
