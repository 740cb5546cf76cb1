package di

import (
	"context"
	"fmt"
	"log/slog"

	"stock_dashboard/internal/feature/analysis/adapters/gemini"
	"stock_dashboard/internal/feature/analysis/usecase"
	"stock_dashboard/internal/platform/config"
	"stock_dashboard/internal/platform/externalapi/aiworker"
	infrahttp "stock_dashboard/internal/platform/http"
)

// NewAnalyzer returns the analyzer selected by cfg.AnalyzerKind.
// A nil analyzer (kind "none", or an AI worker without a base URL) makes analysis requests fail with 503.
func NewAnalyzer(ctx context.Context, cfg *config.Config) (usecase.Analyzer, error) {
	switch cfg.AnalyzerKind {
	case config.AnalyzerGemini:
		a, err := gemini.NewGeminiAnalyzer(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, fmt.Errorf("create gemini analyzer: %w", err)
		}
		return a, nil
	case config.AnalyzerAIWorker:
		wc := aiworker.LoadConfig()
		if wc.BaseURL == "" {
			slog.Warn("AI_WORKER_BASE_URL is not set, analysis is disabled")
			return nil, nil
		}
		return aiworker.NewWorkerAnalyzer(wc, infrahttp.NewHTTPClient(wc.Timeout)), nil
	default:
		return nil, nil
	}
}
