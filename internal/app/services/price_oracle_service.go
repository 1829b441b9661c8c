package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/starixlabs/starix-core/internal/infrastructures"
)

// Symbol to CoinGecko asset id mapping for assets listed on the public API.
var coingeckoIDs = map[string]string{
	"btc":  "bitcoin",
	"eth":  "ethereum",
	"bnb":  "binancecoin",
	"pol":  "polygon-ecosystem-token",
	"avax": "avalanche-2",
	"ltc":  "litecoin",
	"xmr":  "monero",
	"trx":  "tron",
	"usdt": "tether",
	"usdc": "usd-coin",
	"dai":  "dai",
}

// Static USD prices for assets the public API does not list, and the last
// line of defense during API outages.
var fallbackPrices = map[string]decimal.Decimal{
	"usdt": decimal.NewFromInt(1),
	"usdc": decimal.NewFromInt(1),
	"busd": decimal.NewFromInt(1),
	"dai":  decimal.NewFromInt(1),
}

const priceCacheTTL = 5 * time.Minute

type priceEntry struct {
	price   decimal.Decimal
	fetched time.Time
}

// PriceCache is an explicit in-memory TTL cache, constructed once at process
// start and shared by reference. The clock is injectable for tests.
type PriceCache struct {
	mu      sync.RWMutex
	entries map[string]priceEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewPriceCache() *PriceCache {
	return &PriceCache{
		entries: make(map[string]priceEntry),
		ttl:     priceCacheTTL,
		now:     time.Now,
	}
}

func (c *PriceCache) get(symbol string) (decimal.Decimal, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[symbol]
	if !ok || c.now().Sub(entry.fetched) > c.ttl {
		return decimal.Zero, false
	}
	return entry.price, true
}

func (c *PriceCache) set(symbol string, price decimal.Decimal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[symbol] = priceEntry{price: price, fetched: c.now()}
}

type PriceOracleService struct {
	client *infrastructures.CoinGeckoClient
	cache  *PriceCache
}

func NewPriceOracleService(client *infrastructures.CoinGeckoClient, cache *PriceCache) *PriceOracleService {
	return &PriceOracleService{
		client: client,
		cache:  cache,
	}
}

// GetUsdPrice returns the USD spot price for a coin symbol, or nil when no
// valuation is available. It never returns an error: every failure path
// degrades to the static fallback table and then to nil. Callers must treat
// nil as "valuation unavailable", not as zero.
func (s *PriceOracleService) GetUsdPrice(ctx context.Context, symbol string) *decimal.Decimal {
	symbol = strings.ToLower(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil
	}

	if price, ok := s.cache.get(symbol); ok {
		return &price
	}

	assetID, ok := coingeckoIDs[symbol]
	if !ok {
		return s.fallback(symbol)
	}

	price, err := s.fetchPrice(ctx, assetID)
	if err != nil {
		logrus.Warnf("price lookup failed for %s: %v", symbol, err)
		return s.fallback(symbol)
	}

	s.cache.set(symbol, *price)
	return price
}

func (s *PriceOracleService) fallback(symbol string) *decimal.Decimal {
	price, ok := fallbackPrices[symbol]
	if !ok {
		return nil
	}
	s.cache.set(symbol, price)
	return &price
}

func (s *PriceOracleService) fetchPrice(ctx context.Context, assetID string) (*decimal.Decimal, error) {
	url := s.client.GetFullURL(fmt.Sprintf("/simple/price?ids=%s&vs_currencies=usd", assetID))
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.client.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("price API error: status %d, body: %s", resp.StatusCode, string(body))
	}

	var payload map[string]map[string]decimal.Decimal
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	price, ok := payload[assetID]["usd"]
	if !ok {
		return nil, fmt.Errorf("price missing from payload for %s", assetID)
	}

	return &price, nil
}
