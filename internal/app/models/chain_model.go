package models

// ChainInfo describes one supported blockchain network. EVM networks carry a
// chain id and can be auto-sent from the treasury; non-EVM networks are
// registry entries only and always require manual processing.
type ChainInfo struct {
	Network      string
	ChainID      int64
	NativeSymbol string
	EVM          bool
}

// TokenInfo describes a fungible token contract known on a given network.
type TokenInfo struct {
	Symbol   string
	Network  string
	Contract string
	Decimals int32
	Stable   bool
}
