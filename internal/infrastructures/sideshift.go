package infrastructures

import (
	"fmt"
	"net/http"
	"time"
)

// SideShiftClient holds the HTTP client and credentials for the conversion
// exchange API. Requests are authenticated with the account secret header;
// the affiliate id is attached to quote and shift bodies by the service.
type SideShiftClient struct {
	HTTPClient  *http.Client
	BaseURL     string
	Secret      string
	AffiliateID string
}

// NewSideShiftClient creates a new SideShift HTTP client with configuration
func NewSideShiftClient() *SideShiftClient {
	cfg := Config.SideShiftConfig

	return &SideShiftClient{
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		BaseURL:     cfg.BaseURL,
		Secret:      cfg.Secret,
		AffiliateID: cfg.AffiliateID,
	}
}

// GetFullURL constructs the full URL for an endpoint
func (c *SideShiftClient) GetFullURL(endpoint string) string {
	return fmt.Sprintf("%s%s", c.BaseURL, endpoint)
}

// SetAuthHeaders sets the authentication headers on an outgoing request.
// clientIP is forwarded so the exchange applies the end user's jurisdiction
// rules rather than the platform server's.
func (c *SideShiftClient) SetAuthHeaders(req *http.Request, clientIP string) {
	req.Header.Set("Content-Type", "application/json")
	if c.Secret != "" {
		req.Header.Set("x-sideshift-secret", c.Secret)
	}
	if clientIP != "" {
		req.Header.Set("x-user-ip", clientIP)
	}
}
