package subgraph

import (
	"fmt"

	"feeScope/internal/model"
)

// Deployment describes where and since when a chain is indexed.
type Deployment struct {
	Endpoint string
	// Start is the unix time of the first indexed swap.
	Start int64
	// ChainID is the EVM chain id the RPC must report.
	ChainID uint64
}

var deployments = map[model.Chain]Deployment{
	model.ChainSonic: {
		Endpoint: "https://sonicv2.kingdomsubgraph.com/subgraphs/name/core-full",
		Start:    1735129946,
		ChainID:  146,
	},
}

// DeploymentFor looks up the deployment of a chain.
func DeploymentFor(chain model.Chain) (Deployment, error) {
	d, ok := deployments[chain]
	if !ok {
		return Deployment{}, fmt.Errorf("%w: %q", model.ErrUnsupportedChain, chain)
	}
	return d, nil
}
