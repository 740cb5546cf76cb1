// Package aiworker provides a client for the Python analysis worker.
package aiworker

import (
	"os"
	"strconv"
	"time"
)

// Config holds configuration for the analysis worker client.
type Config struct {
	BaseURL      string        // e.g. "http://localhost:8000"
	LookbackDays int           // Number of daily bars the worker should look at
	Timeout      time.Duration // HTTP request timeout; the worker calls an LLM, so this is generous
}

// LoadConfig loads analysis worker configuration from environment variables.
func LoadConfig() Config {
	lookback := 120
	if v, err := strconv.Atoi(os.Getenv("AI_WORKER_LOOKBACK_DAYS")); err == nil && v > 0 {
		lookback = v
	}
	return Config{
		BaseURL:      os.Getenv("AI_WORKER_BASE_URL"),
		LookbackDays: lookback,
		Timeout:      60 * time.Second,
	}
}
