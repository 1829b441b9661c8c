package services

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/sirupsen/logrus"
	"github.com/starixlabs/starix-core/internal/infrastructures"
)

// Default public RPC endpoints per EVM network, tried in order. Overridable
// through RPC_URLS_<NETWORK> env configuration.
var defaultRPCEndpoints = map[string][]string{
	"ethereum": {
		"https://eth.llamarpc.com",
		"https://rpc.ankr.com/eth",
		"https://ethereum-rpc.publicnode.com",
	},
	"bsc": {
		"https://bsc-dataseed.binance.org",
		"https://bsc-dataseed1.defibit.io",
		"https://bsc-rpc.publicnode.com",
	},
	"polygon": {
		"https://polygon-rpc.com",
		"https://polygon-bor-rpc.publicnode.com",
	},
	"arbitrum": {
		"https://arb1.arbitrum.io/rpc",
		"https://arbitrum-one-rpc.publicnode.com",
	},
	"avax": {
		"https://api.avax.network/ext/bc/C/rpc",
		"https://avalanche-c-chain-rpc.publicnode.com",
	},
}

const rpcDialTimeout = 5 * time.Second

// ChainPoolService selects a working RPC connection per network. Failover is
// stateless: every call walks the endpoint list from the front, which is
// acceptable at this call volume and keeps no health bookkeeping to go stale.
type ChainPoolService struct {
	endpoints map[string][]string
}

func NewChainPoolService() *ChainPoolService {
	endpoints := make(map[string][]string, len(defaultRPCEndpoints))
	for network, urls := range defaultRPCEndpoints {
		endpoints[network] = urls
	}
	if infrastructures.Config != nil {
		for network, urls := range infrastructures.Config.RPCEndpoints {
			endpoints[network] = urls
		}
	}
	return &ChainPoolService{endpoints: endpoints}
}

// GetClient returns the first reachable RPC client for the network, or nil
// when every endpoint is down. Callers must treat nil as "network
// unavailable", a retryable condition. The caller owns closing the client.
func (s *ChainPoolService) GetClient(ctx context.Context, network string) *ethclient.Client {
	chain, ok := LookupChain(network)
	if !ok || !chain.EVM {
		return nil
	}

	for _, url := range s.endpoints[chain.Network] {
		client, err := ethclient.DialContext(ctx, url)
		if err != nil {
			logrus.Warnf("rpc dial failed for %s endpoint %s: %v", network, url, err)
			continue
		}

		// Liveness probe: a dial alone does not prove the endpoint serves
		// requests.
		probeCtx, cancel := context.WithTimeout(ctx, rpcDialTimeout)
		_, err = client.BlockNumber(probeCtx)
		cancel()
		if err != nil {
			logrus.Warnf("rpc liveness check failed for %s endpoint %s: %v", network, url, err)
			client.Close()
			continue
		}

		return client
	}

	logrus.Errorf("all rpc endpoints unreachable for network %s", network)
	return nil
}

// IsEVMNetwork reports whether the network supports balance introspection and
// programmatic sends.
func (s *ChainPoolService) IsEVMNetwork(network string) bool {
	chain, ok := LookupChain(network)
	return ok && chain.EVM
}
