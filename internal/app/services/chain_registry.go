package services

import (
	"strings"

	"github.com/starixlabs/starix-core/internal/app/models"
)

// Static registry of supported networks. Non-EVM entries exist so the rest of
// the system can name them in errors and admin tooling, but they can never be
// auto-sent from the treasury.
var chainRegistry = map[string]models.ChainInfo{
	"ethereum": {Network: "ethereum", ChainID: 1, NativeSymbol: "eth", EVM: true},
	"bsc":      {Network: "bsc", ChainID: 56, NativeSymbol: "bnb", EVM: true},
	"polygon":  {Network: "polygon", ChainID: 137, NativeSymbol: "pol", EVM: true},
	"arbitrum": {Network: "arbitrum", ChainID: 42161, NativeSymbol: "eth", EVM: true},
	"avax":     {Network: "avax", ChainID: 43114, NativeSymbol: "avax", EVM: true},
	"bitcoin":  {Network: "bitcoin", NativeSymbol: "btc"},
	"litecoin": {Network: "litecoin", NativeSymbol: "ltc"},
	"monero":   {Network: "monero", NativeSymbol: "xmr"},
	"tron":     {Network: "tron", NativeSymbol: "trx"},
}

// Known fungible token contracts per EVM network.
var tokenRegistry = map[string]map[string]models.TokenInfo{
	"ethereum": {
		"usdt": {Symbol: "usdt", Network: "ethereum", Contract: "0xdAC17F958D2ee523a2206206994597C13D831ec7", Decimals: 6, Stable: true},
		"usdc": {Symbol: "usdc", Network: "ethereum", Contract: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", Decimals: 6, Stable: true},
		"dai":  {Symbol: "dai", Network: "ethereum", Contract: "0x6B175474E89094C44Da98b954EedeAC495271d0F", Decimals: 18, Stable: true},
	},
	"bsc": {
		"usdt": {Symbol: "usdt", Network: "bsc", Contract: "0x55d398326f99059fF775485246999027B3197955", Decimals: 18, Stable: true},
		"usdc": {Symbol: "usdc", Network: "bsc", Contract: "0x8AC76a51cc950d9822D68b83fE1Ad97B32Cd580d", Decimals: 18, Stable: true},
		"busd": {Symbol: "busd", Network: "bsc", Contract: "0xe9e7CEA3DedcA5984780Bafc599bD69ADd087D56", Decimals: 18, Stable: true},
	},
	"polygon": {
		"usdt": {Symbol: "usdt", Network: "polygon", Contract: "0xc2132D05D31c914a87C6611C10748AEb04B58e8F", Decimals: 6, Stable: true},
		"usdc": {Symbol: "usdc", Network: "polygon", Contract: "0x3c499c542cEF5E3811e1192ce70d8cC03d5c3359", Decimals: 6, Stable: true},
	},
	"arbitrum": {
		"usdt": {Symbol: "usdt", Network: "arbitrum", Contract: "0xFd086bC7CD5C481DCC9C85ebE478A1C0b69FCbb9", Decimals: 6, Stable: true},
		"usdc": {Symbol: "usdc", Network: "arbitrum", Contract: "0xaf88d065e77c8cC2239327C5EDb3A432268e5831", Decimals: 6, Stable: true},
	},
	"avax": {
		"usdt": {Symbol: "usdt", Network: "avax", Contract: "0x9702230A8Ea53601f5cD2dc00fDBc13d4dF4A8c7", Decimals: 6, Stable: true},
		"usdc": {Symbol: "usdc", Network: "avax", Contract: "0xB97EF9Ef8734C71904D8002F8b6Bc66Dd9c48a6E", Decimals: 6, Stable: true},
	},
}

var stablecoins = map[string]bool{
	"usdt": true,
	"usdc": true,
	"busd": true,
	"dai":  true,
}

// LookupChain resolves a network identifier to its chain info.
func LookupChain(network string) (models.ChainInfo, bool) {
	chain, ok := chainRegistry[strings.ToLower(network)]
	return chain, ok
}

// LookupToken resolves an asset symbol to a token contract on a network.
// A miss means the asset is either the network's native coin or unsupported.
func LookupToken(network, symbol string) (models.TokenInfo, bool) {
	tokens, ok := tokenRegistry[strings.ToLower(network)]
	if !ok {
		return models.TokenInfo{}, false
	}
	token, ok := tokens[strings.ToLower(symbol)]
	return token, ok
}

// IsStablecoin reports whether the asset is assumed pegged at $1.
func IsStablecoin(symbol string) bool {
	return stablecoins[strings.ToLower(symbol)]
}
