// Package config holds every recognized option. Values come from the
// environment with the PILOT_ prefix; a .env file is loaded first when
// present.
package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"neuropilot/internal/domain/entity"
)

// Config is parsed once at startup and passed down read-only.
type Config struct {
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"console"`

	// Classifier
	GeminiAPIKey    string  `envconfig:"GEMINI_API_KEY"`
	ClassifierModel string  `envconfig:"CLASSIFIER_MODEL" default:"gemini-2.5-flash"`
	EmbeddingModel  string  `envconfig:"EMBEDDING_MODEL" default:"text-embedding-004"`
	MaxMessageLen   int     `envconfig:"MAX_MESSAGE_LEN" default:"1000"`
	SanitizerMaxLen int     `envconfig:"SANITIZER_MAX_LEN" default:"500"`
	Temperature     float32 `envconfig:"CLASSIFIER_TEMPERATURE" default:"0.3"`
	MaxOutputTokens int     `envconfig:"CLASSIFIER_MAX_OUTPUT_TOKENS" default:"500"`

	// Guardrails
	RateLimitMax    int `envconfig:"RATE_LIMIT_MAX" default:"10"`
	RateLimitWindow int `envconfig:"RATE_LIMIT_WINDOW_SECONDS" default:"60"`
	FreeQuota       int `envconfig:"FREE_MONTHLY_QUOTA" default:"100"`
	ProQuota        int `envconfig:"PRO_MONTHLY_QUOTA" default:"2000"`

	// Pricing
	MinMarginPct float64 `envconfig:"MIN_MARGIN_PCT" default:"15"`

	// Scheduler
	IntervalMinutes int `envconfig:"SCHEDULER_INTERVAL_MINUTES" default:"30"`

	// Stores
	SQLitePath       string `envconfig:"SQLITE_PATH" default:"neuropilot.db"`
	RedisAddr        string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	QdrantHost       string `envconfig:"QDRANT_HOST"`
	QdrantPort       int    `envconfig:"QDRANT_PORT" default:"6334"`
	QdrantCollection string `envconfig:"QDRANT_COLLECTION" default:"psych_cache"`

	// Scraper
	Headless     bool `envconfig:"SCRAPER_HEADLESS" default:"true"`
	PagePoolSize int  `envconfig:"SCRAPER_PAGE_POOL" default:"4"`
	FetchTimeout int  `envconfig:"SCRAPER_TIMEOUT_SECONDS" default:"30"`

	// HTTP surface
	Port string `envconfig:"PORT" default:"8080"`
}

// Load reads .env (best effort) then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("pilot", &cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return &cfg, nil
}

// QuotaFor maps a plan tier to its monthly classifier ceiling. Enterprise
// is handled upstream and never reaches this table.
func (c *Config) QuotaFor(plan entity.Plan) int {
	switch plan {
	case entity.PlanPro:
		return c.ProQuota
	default:
		return c.FreeQuota
	}
}

// ModelPrice is USD per token. Unknown models are billed at the most
// expensive known rate so cost estimates err high.
var modelPrices = map[string]float64{
	"gemini-2.5-pro":   0.005 / 1000,
	"gemini-2.5-flash": 0.0003 / 1000,
	"gemini-2.0-flash": 0.00015 / 1000,
}

// CostFor estimates the spend of a call.
func CostFor(model string, tokens int) float64 {
	price, ok := modelPrices[model]
	if !ok {
		price = 0
		for _, p := range modelPrices {
			if p > price {
				price = p
			}
		}
	}
	return float64(tokens) * price
}
