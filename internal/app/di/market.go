// Package di provides dependency injection factories for creating application components.
package di

import (
	redisv9 "github.com/redis/go-redis/v9"

	"stock_dashboard/internal/platform/externalapi/kis"
	infrahttp "stock_dashboard/internal/platform/http"
)

// NewMarket creates a fully configured KISMarket. The access token is cached in rdb when it is non-nil.
func NewMarket(rdb *redisv9.Client) *kis.KISMarket {
	cfg := kis.LoadConfig()
	httpClient := infrahttp.NewHTTPClient(cfg.Timeout)
	tokens := kis.NewTokenManager(cfg, httpClient, rdb)
	return kis.NewKISMarket(cfg, httpClient, tokens)
}
