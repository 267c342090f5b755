// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes application settings
// such as server timeouts, logging, reasoning backends, fetch limits, cache
// paths, rate limiting, and observability.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/erislabs/go-debate-backend/internal/domain"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "go-debate-backend")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// ReasoningConfig selects and tunes the LLM backend used for analysis.
type ReasoningConfig struct {
	Backend     string        // REASONING_BACKEND: anthropic|openai
	BaseURL     string        // REASONING_BASE_URL (openai-compatible endpoints)
	APIKey      string        // REASONING_API_KEY
	Model       string        // REASONING_MODEL
	MaxTokens   int           // REASONING_MAX_TOKENS
	Temperature float64       // REASONING_TEMPERATURE
	MaxRetries  int           // REASONING_MAX_RETRIES (429 only)
	BaseBackoff time.Duration // REASONING_BASE_BACKOFF
	Timeout     time.Duration // REASONING_TIMEOUT per request
}

// FetchConfig tunes Reddit history retrieval.
type FetchConfig struct {
	UserAgent   string        // REDDIT_USER_AGENT
	BaseURL     string        // REDDIT_BASE_URL
	MaxComments int           // MAX_COMMENTS per analysis run
	MaxThreads  int           // MAX_THREADS to reconstruct
	RPS         float64       // REDDIT_RPS polite request pacing
	Timeout     time.Duration // REDDIT_TIMEOUT per request
}

// AnalysisConfig tunes the debate analyzers.
type AnalysisConfig struct {
	IdentifyBatchSize  int            // IDENTIFY_BATCH_SIZE threads per classification call
	MinDebateComments  int            // MIN_DEBATE_COMMENTS quick-filter floor
	MinDebateWords     int            // MIN_DEBATE_WORDS quick-filter floor
	FallacyConfFloor   float64        // FALLACY_CONFIDENCE_FLOOR
	QualityWeights     domain.Weights // QUALITY_WEIGHT_* overrides
	TopArgumentsMaxIn  int            // highest-quality debates offered to the ranker
	TopArgumentsMaxOut int            // arguments kept in the profile
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool   // pretty console logs in dev
	SwaggerEnabled bool   // enable Swagger UI route
	APIBasePath    string // base path for API routes

	// Cache
	CachePath string        // SQLite path for the profile cache
	CacheTTL  time.Duration // profile freshness window

	// Pipeline stacks
	Reasoning ReasoningConfig
	Fetch     FetchConfig
	Analysis  AnalysisConfig

	// Rate limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging / Docs
		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      getbool("LOG_PRETTY", false),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(getenv("API_BASE_PATH", "/api/v1")),

		// Cache
		CachePath: getenv("CACHE_PATH", "profiles.db"),
		CacheTTL:  getdur("CACHE_TTL", 24*time.Hour),

		Reasoning: ReasoningConfig{
			Backend:     strings.ToLower(getenv("REASONING_BACKEND", "anthropic")),
			BaseURL:     getenv("REASONING_BASE_URL", ""),
			APIKey:      getenv("REASONING_API_KEY", ""),
			Model:       getenv("REASONING_MODEL", "claude-sonnet-4-20250514"),
			MaxTokens:   getint("REASONING_MAX_TOKENS", 4096),
			Temperature: getfloat("REASONING_TEMPERATURE", 0.3),
			MaxRetries:  getint("REASONING_MAX_RETRIES", 3),
			BaseBackoff: getdur("REASONING_BASE_BACKOFF", 2*time.Second),
			Timeout:     getdur("REASONING_TIMEOUT", 120*time.Second),
		},

		Fetch: FetchConfig{
			UserAgent:   getenv("REDDIT_USER_AGENT", "go-debate-backend/1.0"),
			BaseURL:     getenv("REDDIT_BASE_URL", "https://www.reddit.com"),
			MaxComments: getint("MAX_COMMENTS", 500),
			MaxThreads:  getint("MAX_THREADS", 100),
			RPS:         getfloat("REDDIT_RPS", 1.0),
			Timeout:     getdur("REDDIT_TIMEOUT", 30*time.Second),
		},

		Analysis: AnalysisConfig{
			IdentifyBatchSize: getint("IDENTIFY_BATCH_SIZE", 10),
			MinDebateComments: getint("MIN_DEBATE_COMMENTS", 2),
			MinDebateWords:    getint("MIN_DEBATE_WORDS", 50),
			FallacyConfFloor:  getfloat("FALLACY_CONFIDENCE_FLOOR", 0.75),
			QualityWeights: domain.Weights{
				Structure:       getfloat("QUALITY_WEIGHT_STRUCTURE", domain.DefaultWeights.Structure),
				Evidence:        getfloat("QUALITY_WEIGHT_EVIDENCE", domain.DefaultWeights.Evidence),
				Counterargument: getfloat("QUALITY_WEIGHT_COUNTERARGUMENT", domain.DefaultWeights.Counterargument),
				Persuasiveness:  getfloat("QUALITY_WEIGHT_PERSUASIVENESS", domain.DefaultWeights.Persuasiveness),
				Civility:        getfloat("QUALITY_WEIGHT_CIVILITY", domain.DefaultWeights.Civility),
			},
			TopArgumentsMaxIn:  getint("TOP_ARGUMENTS_MAX_IN", 20),
			TopArgumentsMaxOut: getint("TOP_ARGUMENTS_MAX_OUT", 10),
		},

		// Rate limiting
		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "go-debate-backend"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	if strings.TrimSpace(cfg.CachePath) == "" {
		return cfg, errors.New("CACHE_PATH must not be empty")
	}
	if cfg.CacheTTL <= 0 {
		return cfg, errors.New("CACHE_TTL must be > 0")
	}
	switch cfg.Reasoning.Backend {
	case "anthropic", "openai":
	default:
		return cfg, errors.New("REASONING_BACKEND must be anthropic or openai")
	}
	if strings.TrimSpace(cfg.Reasoning.Model) == "" {
		return cfg, errors.New("REASONING_MODEL must not be empty")
	}
	if cfg.Reasoning.MaxTokens <= 0 {
		return cfg, errors.New("REASONING_MAX_TOKENS must be > 0")
	}
	if cfg.Reasoning.Temperature < 0 || cfg.Reasoning.Temperature > 2 {
		return cfg, errors.New("REASONING_TEMPERATURE must be in [0,2]")
	}
	if cfg.Reasoning.MaxRetries < 1 {
		return cfg, errors.New("REASONING_MAX_RETRIES must be >= 1")
	}
	if cfg.Reasoning.BaseBackoff <= 0 {
		return cfg, errors.New("REASONING_BASE_BACKOFF must be > 0")
	}
	if cfg.Fetch.MaxComments < 1 {
		return cfg, errors.New("MAX_COMMENTS must be >= 1")
	}
	if cfg.Fetch.MaxThreads < 1 {
		return cfg, errors.New("MAX_THREADS must be >= 1")
	}
	if cfg.Fetch.RPS <= 0 {
		return cfg, errors.New("REDDIT_RPS must be > 0")
	}
	if cfg.Analysis.IdentifyBatchSize < 1 {
		return cfg, errors.New("IDENTIFY_BATCH_SIZE must be >= 1")
	}
	if cfg.Analysis.MinDebateComments < 1 {
		return cfg, errors.New("MIN_DEBATE_COMMENTS must be >= 1")
	}
	if cfg.Analysis.MinDebateWords < 1 {
		return cfg, errors.New("MIN_DEBATE_WORDS must be >= 1")
	}
	if cfg.Analysis.FallacyConfFloor < 0 || cfg.Analysis.FallacyConfFloor > 1 {
		return cfg, errors.New("FALLACY_CONFIDENCE_FLOOR must be in [0,1]")
	}
	if !cfg.Analysis.QualityWeights.Valid() {
		return cfg, fmt.Errorf("quality weights must sum to 1.0, got %v", round3(cfg.Analysis.QualityWeights.Sum()))
	}
	if cfg.Analysis.TopArgumentsMaxIn < 1 || cfg.Analysis.TopArgumentsMaxOut < 1 {
		return cfg, errors.New("top-argument limits must be >= 1")
	}
	if cfg.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}

// normalizeBasePath ensures leading '/' and strips trailing '/' (except root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	return p
}
