package infrastructures

import (
	"fmt"
	"net/http"
	"time"
)

// CoinGeckoClient is the HTTP client for the public price API. No auth is
// required for the simple-price endpoint.
type CoinGeckoClient struct {
	HTTPClient *http.Client
	BaseURL    string
}

// NewCoinGeckoClient creates a new CoinGecko HTTP client with configuration
func NewCoinGeckoClient() *CoinGeckoClient {
	return &CoinGeckoClient{
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		BaseURL: Config.COINGECKO_BASE_URL,
	}
}

// GetFullURL constructs the full URL for an endpoint
func (c *CoinGeckoClient) GetFullURL(endpoint string) string {
	return fmt.Sprintf("%s%s", c.BaseURL, endpoint)
}
