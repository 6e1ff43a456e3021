package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedChain is returned for chains without a known deployment.
var ErrUnsupportedChain = errors.New("unsupported chain")

// Chain identifies a network the exchange is deployed on.
type Chain string

const (
	ChainSonic Chain = "sonic"
)

// ParseChain validates a chain name against the supported set.
func ParseChain(input string) (Chain, error) {
	chain := Chain(strings.ToLower(strings.TrimSpace(input)))
	switch chain {
	case ChainSonic:
		return chain, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedChain, input)
	}
}
