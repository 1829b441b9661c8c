package infrastructures

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type SideShiftConfig struct {
	BaseURL     string
	Secret      string
	AffiliateID string
}

type AppConfig struct {
	DATABASE_URL   string
	REDIS_ADDRESS  string
	REDIS_PASSWORD string

	// Hex-encoded secp256k1 key for the custodial treasury wallet. Kept only
	// in the environment; never written to the database.
	TREASURY_PRIVATE_KEY string

	ADMIN_API_KEY string

	SideShiftConfig    SideShiftConfig
	COINGECKO_BASE_URL string

	// Ordered RPC endpoint lists per EVM network, overriding the built-in
	// defaults. Env format: RPC_URLS_BSC=https://a,https://b
	RPCEndpoints map[string][]string

	ADMIN_WEBHOOK_URL string
	USER_WEBHOOK_URL  string
}

var Config *AppConfig

var rpcNetworks = []string{"ethereum", "bsc", "polygon", "arbitrum", "avax"}

func LoadConfig() *AppConfig {
	godotenv.Load()

	Config = &AppConfig{
		DATABASE_URL:         os.Getenv("DATABASE_URL"),
		REDIS_ADDRESS:        os.Getenv("REDIS_ADDRESS"),
		REDIS_PASSWORD:       os.Getenv("REDIS_PASSWORD"),
		TREASURY_PRIVATE_KEY: os.Getenv("TREASURY_PRIVATE_KEY"),
		ADMIN_API_KEY:        os.Getenv("ADMIN_API_KEY"),
		SideShiftConfig: SideShiftConfig{
			BaseURL:     getEnvDefault("SIDESHIFT_BASE_URL", "https://sideshift.ai/api/v2"),
			Secret:      os.Getenv("SIDESHIFT_SECRET"),
			AffiliateID: os.Getenv("SIDESHIFT_AFFILIATE_ID"),
		},
		COINGECKO_BASE_URL: getEnvDefault("COINGECKO_BASE_URL", "https://api.coingecko.com/api/v3"),
		RPCEndpoints:       loadRPCEndpoints(),
		ADMIN_WEBHOOK_URL:  os.Getenv("ADMIN_WEBHOOK_URL"),
		USER_WEBHOOK_URL:   os.Getenv("USER_WEBHOOK_URL"),
	}

	return Config
}

func getEnvDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func loadRPCEndpoints() map[string][]string {
	endpoints := map[string][]string{}
	for _, network := range rpcNetworks {
		envKey := "RPC_URLS_" + strings.ToUpper(network)
		raw := os.Getenv(envKey)
		if raw == "" {
			continue
		}
		var urls []string
		for _, u := range strings.Split(raw, ",") {
			if trimmed := strings.TrimSpace(u); trimmed != "" {
				urls = append(urls, trimmed)
			}
		}
		if len(urls) > 0 {
			endpoints[network] = urls
		}
	}
	return endpoints
}
