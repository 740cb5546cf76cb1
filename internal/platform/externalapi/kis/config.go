// Package kis provides a client for the Korea Investment & Securities (KIS) Open API.
package kis

import (
	"os"
	"time"
)

// DefaultBaseURL is the production endpoint of the KIS Open API.
const DefaultBaseURL = "https://openapi.koreainvestment.com:9443"

// Config holds configuration for the KIS API client.
type Config struct {
	AppKey    string        // Application key issued by KIS
	AppSecret string        // Application secret issued by KIS
	BaseURL   string        // Base URL for the API (e.g., "https://openapi.koreainvestment.com:9443")
	Timeout   time.Duration // HTTP request timeout
}

// LoadConfig loads KIS configuration from environment variables.
func LoadConfig() Config {
	baseURL := os.Getenv("KIS_BASE_URL")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return Config{
		AppKey:    os.Getenv("KIS_APP_KEY"),
		AppSecret: os.Getenv("KIS_APP_SECRET"),
		BaseURL:   baseURL,
		Timeout:   10 * time.Second,
	}
}
