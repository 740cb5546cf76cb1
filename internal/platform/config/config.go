// Package config はサーバー全体の設定を環境変数から読み込みます。
// 各外部クライアント（KIS、AIワーカー、DB）の設定はそれぞれのパッケージのLoadConfigが担当します。
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
)

// Analyzer kinds.
const (
	AnalyzerAIWorker = "aiworker"
	AnalyzerGemini   = "gemini"
	AnalyzerNone     = "none"
)

// Config はAPIサーバーとスケジューラの設定です。
type Config struct {
	Port            string        `default:"8080" validate:"required,numeric"`
	LogLevel        string        `default:"info" validate:"oneof=debug info warn error"`
	ShutdownTimeout time.Duration `default:"10s" validate:"gt=0"`

	BatchEnabled  bool   `default:"true"`
	BatchCron     string `default:"0 0 16 * * MON-FRI" validate:"required"`
	BatchTimezone string `default:"Asia/Seoul" validate:"required"`

	// AnalyzerKind は分析の委譲先です。noneの場合、分析APIは503を返します。
	AnalyzerKind string `default:"aiworker" validate:"oneof=aiworker gemini none"`
	GeminiAPIKey string
	GeminiModel  string `default:"gemini-2.5-flash" validate:"required"`

	JWTSecret string

	// RateLimitPerMinute はKISへのリクエスト数の上限（1分あたり）です。
	RateLimitPerMinute int `default:"60" validate:"gt=0"`

	// PriceCacheTTL が0の場合、キャッシュは次の引け（16:00 KST）まで有効です。
	PriceCacheTTL time.Duration `validate:"gte=0"`

	RunMigrations bool
	SeedFile      string
}

var validate = validator.New()

// Load はデフォルト値を設定した後、環境変数で上書きし、検証します。
func Load() (*Config, error) {
	return load(os.LookupEnv)
}

func load(lookup func(string) (string, bool)) (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("config: set defaults: %w", err)
	}

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	var errs []error
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(key); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	duration := func(key string, dst *time.Duration) {
		if v, ok := lookup(key); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}

	str("PORT", &cfg.Port)
	str("LOG_LEVEL", &cfg.LogLevel)
	duration("SHUTDOWN_TIMEOUT", &cfg.ShutdownTimeout)
	boolean("BATCH_ENABLED", &cfg.BatchEnabled)
	str("BATCH_CRON", &cfg.BatchCron)
	str("BATCH_TIMEZONE", &cfg.BatchTimezone)
	str("ANALYZER", &cfg.AnalyzerKind)
	str("GEMINI_API_KEY", &cfg.GeminiAPIKey)
	str("GEMINI_MODEL", &cfg.GeminiModel)
	str("JWT_SECRET", &cfg.JWTSecret)
	integer("KIS_RATE_LIMIT_PER_MINUTE", &cfg.RateLimitPerMinute)
	duration("PRICE_CACHE_TTL", &cfg.PriceCacheTTL)
	boolean("RUN_MIGRATIONS", &cfg.RunMigrations)
	str("SEED_FILE", &cfg.SeedFile)

	if len(errs) > 0 {
		return nil, fmt.Errorf("config: %w", errs[0])
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if _, err := time.LoadLocation(cfg.BatchTimezone); err != nil {
		return nil, fmt.Errorf("config: BATCH_TIMEZONE: %w", err)
	}
	return cfg, nil
}

// Addr はgin.Engine.Runに渡すリッスンアドレスを返します。
func (c *Config) Addr() string {
	return ":" + c.Port
}
