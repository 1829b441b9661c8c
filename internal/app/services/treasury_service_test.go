package services

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/shopspring/decimal"
	"github.com/starixlabs/starix-core/internal/infrastructures"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePool answers EVM membership from the registry but never yields a
// client, standing in for a network where every endpoint is down.
type fakePool struct {
	getClientCalls int
}

func (f *fakePool) GetClient(ctx context.Context, network string) *ethclient.Client {
	f.getClientCalls++
	return nil
}

func (f *fakePool) IsEVMNetwork(network string) bool {
	chain, ok := LookupChain(network)
	return ok && chain.EVM
}

type staticOracle struct {
	price *decimal.Decimal
}

func (o *staticOracle) GetUsdPrice(ctx context.Context, symbol string) *decimal.Decimal {
	return o.price
}

func newTestTreasuryService(t *testing.T, withSigner bool) (*TreasuryService, *fakePool) {
	t.Helper()
	pool := &fakePool{}
	s := &TreasuryService{
		validator: infrastructures.NewValidator(),
		pool:      pool,
		oracle:    &staticOracle{},
	}
	if withSigner {
		signer, err := crypto.GenerateKey()
		require.NoError(t, err)
		s.signer = signer
		s.signerAddress = crypto.PubkeyToAddress(signer.PublicKey)
	}
	return s, pool
}

func TestCanAutoSend(t *testing.T) {
	s, _ := newTestTreasuryService(t, true)

	assert.True(t, s.CanAutoSend("ethereum"))
	assert.True(t, s.CanAutoSend("bsc"))
	assert.True(t, s.CanAutoSend("polygon"))

	assert.False(t, s.CanAutoSend("bitcoin"))
	assert.False(t, s.CanAutoSend("monero"))
	assert.False(t, s.CanAutoSend("unknown"))
}

func TestSendFromTreasury_InvalidInput(t *testing.T) {
	s, pool := newTestTreasuryService(t, true)

	result := s.SendFromTreasury(context.Background(), "", "bsc", "0x1", decimal.NewFromInt(1))
	require.NotNil(t, result)
	assert.False(t, result.Success)

	result = s.SendFromTreasury(context.Background(), "usdt", "bsc", "0x2222222222222222222222222222222222222222", decimal.Zero)
	assert.False(t, result.Success)

	assert.Equal(t, 0, pool.getClientCalls)
}

func TestSendFromTreasury_NoSigner(t *testing.T) {
	s, pool := newTestTreasuryService(t, false)

	result := s.SendFromTreasury(context.Background(), "usdt", "bsc", "0x2222222222222222222222222222222222222222", decimal.NewFromInt(1))
	require.NotNil(t, result)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "signing key")
	assert.Equal(t, 0, pool.getClientCalls)
}

func TestSendFromTreasury_NonEVMNetwork(t *testing.T) {
	s, pool := newTestTreasuryService(t, true)

	result := s.SendFromTreasury(context.Background(), "btc", "bitcoin", "bc1qdest", decimal.NewFromInt(1))
	require.NotNil(t, result)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "manual processing")

	// Rejected before any RPC work.
	assert.Equal(t, 0, pool.getClientCalls)
}

func TestSendFromTreasury_InvalidDestination(t *testing.T) {
	s, pool := newTestTreasuryService(t, true)

	result := s.SendFromTreasury(context.Background(), "usdt", "bsc", "not-an-address", decimal.NewFromInt(1))
	require.NotNil(t, result)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "invalid destination")
	assert.Equal(t, 0, pool.getClientCalls)
}

func TestSendFromTreasury_NoReachableRPC(t *testing.T) {
	s, pool := newTestTreasuryService(t, true)

	result := s.SendFromTreasury(context.Background(), "usdt", "bsc", "0x2222222222222222222222222222222222222222", decimal.NewFromInt(1))
	require.NotNil(t, result)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "no reachable RPC endpoint")
	assert.Equal(t, 1, pool.getClientCalls)
}

func TestGetBalance_UnsupportedNetwork(t *testing.T) {
	s, _ := newTestTreasuryService(t, true)

	_, err := s.GetBalance(context.Background(), "0x1", "btc", "bitcoin")
	require.Error(t, err)

	_, err = s.GetBalance(context.Background(), "0x1", "usdt", "unknown")
	require.Error(t, err)
}

func TestGetBalance_NoReachableRPC(t *testing.T) {
	s, _ := newTestTreasuryService(t, true)

	_, err := s.GetBalance(context.Background(), "0x2222222222222222222222222222222222222222", "usdt", "bsc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No reachable RPC endpoint")
}

func TestLookupChain(t *testing.T) {
	chain, ok := LookupChain("ETHEREUM")
	require.True(t, ok)
	assert.Equal(t, int64(1), chain.ChainID)
	assert.True(t, chain.EVM)

	chain, ok = LookupChain("bitcoin")
	require.True(t, ok)
	assert.False(t, chain.EVM)

	_, ok = LookupChain("dogecoin")
	assert.False(t, ok)
}

func TestLookupToken(t *testing.T) {
	token, ok := LookupToken("ethereum", "USDT")
	require.True(t, ok)
	assert.Equal(t, int32(6), token.Decimals)
	assert.True(t, token.Stable)

	token, ok = LookupToken("bsc", "usdt")
	require.True(t, ok)
	assert.Equal(t, int32(18), token.Decimals)

	// Native coins and unknown assets miss the token registry.
	_, ok = LookupToken("ethereum", "eth")
	assert.False(t, ok)
	_, ok = LookupToken("bitcoin", "usdt")
	assert.False(t, ok)
}

func TestIsStablecoin(t *testing.T) {
	assert.True(t, IsStablecoin("usdt"))
	assert.True(t, IsStablecoin("USDC"))
	assert.True(t, IsStablecoin("dai"))
	assert.False(t, IsStablecoin("eth"))
	assert.False(t, IsStablecoin(""))
}
