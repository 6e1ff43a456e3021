package model

import (
	"fmt"
	"strings"
)

// PoolType distinguishes the two pool families of the exchange.
type PoolType string

const (
	PoolTypeLegacy PoolType = "legacy"
	PoolTypeCL     PoolType = "cl"
)

// PoolTypes lists every pool type in a stable order.
var PoolTypes = []PoolType{PoolTypeLegacy, PoolTypeCL}

// ParsePoolType validates a pool type name.
func ParsePoolType(input string) (PoolType, error) {
	pt := PoolType(strings.ToLower(strings.TrimSpace(input)))
	switch pt {
	case PoolTypeLegacy, PoolTypeCL:
		return pt, nil
	default:
		return "", fmt.Errorf("unknown pool type: %q", input)
	}
}
