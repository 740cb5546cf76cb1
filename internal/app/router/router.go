// Package router wires the HTTP handlers into a gin engine.
package router

import (
	"github.com/gin-gonic/gin"

	analysishandler "stock_dashboard/internal/feature/analysis/transport/handler"
	charthandler "stock_dashboard/internal/feature/chart/transport/handler"
	instrumenthandler "stock_dashboard/internal/feature/instrument/transport/handler"
	priceshandler "stock_dashboard/internal/feature/prices/transport/handler"
	"stock_dashboard/internal/platform/http/handler"
	jwtmw "stock_dashboard/internal/platform/jwt"
	"stock_dashboard/internal/platform/metrics"
)

// Handlers groups every feature handler served by the API.
type Handlers struct {
	Instruments *instrumenthandler.InstrumentHandler
	Prices      *priceshandler.PricesHandler
	Chart       *charthandler.ChartHandler
	Analysis    *analysishandler.AnalysisHandler
	// Ready is served on /readyz when set.
	Ready gin.HandlerFunc
}

// NewRouter builds the engine. m may be nil, in which case no metrics are recorded or exposed.
func NewRouter(h Handlers, m *metrics.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if m != nil {
		r.Use(m.Middleware())
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}

	// 認証不要
	r.GET("/healthz", handler.Health)
	r.HEAD("/healthz", handler.Health)
	if h.Ready != nil {
		r.GET("/readyz", h.Ready)
	}

	r.GET("/instruments", h.Instruments.List)
	r.GET("/instruments/:code", h.Instruments.Get)
	r.GET("/instruments/:code/prices", h.Prices.GetPrices)
	r.GET("/instruments/:code/chart", h.Chart.GetChart)
	r.GET("/instruments/:code/analysis", h.Analysis.GetAnalysis)
	r.GET("/instruments/:code/analyses", h.Analysis.ListHistory)
	r.POST("/charts", h.Chart.BuildChart)

	// 外部APIを呼び出す操作は管理者トークンが必要
	admin := r.Group("/admin")
	admin.Use(jwtmw.AuthRequired(), jwtmw.RequireRole(jwtmw.RoleAdmin))
	{
		admin.POST("/instruments/:code/prices/sync", h.Prices.SyncPrices)
		admin.POST("/instruments/:code/prices/sync/recent", h.Prices.SyncRecentPrices)
		admin.POST("/batch/daily-analysis", h.Analysis.StartDailyBatch)
	}

	return r
}
