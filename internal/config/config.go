package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// insecureAPIKey is the development key older deployments shipped with.
// It is public, so it is rejected like an empty key.
const insecureAPIKey = "mera-secret-key"

type Config struct {
	Server    ServerConfig
	API       APIConfig
	Extractor ExtractorConfig
	RateLimit RateLimitConfig
	Redis     RedisConfig
	Log       LogConfig
	CORS      CORSConfig
}

type ServerConfig struct {
	Port            string
	Host            string
	Debug           bool
	ShutdownTimeout time.Duration
}

type APIConfig struct {
	APIKey string
}

type ExtractorConfig struct {
	Backend     string
	YtDlpPath   string
	Timeout     time.Duration
	HTTPTimeout time.Duration
}

type RateLimitConfig struct {
	Enabled  bool
	Global   Rate
	Download Rate
	Info     Rate
	Home     Rate
	// Process-wide token bucket, disabled when GlobalRPS is 0.
	GlobalRPS   float64
	GlobalBurst int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type LogConfig struct {
	Level string
	File  string
}

type CORSConfig struct {
	Enabled          bool
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

const (
	BackendYtDlp   = "ytdlp"
	BackendYouTube = "youtube"
)

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "Warning: .env file not found, using environment variables")
	}

	cfg := &Config{}

	// Server configuration
	cfg.Server.Port = getEnv("PORT", "8000")
	cfg.Server.Host = getEnv("HOST", "0.0.0.0")
	cfg.Server.Debug = getEnv("APP_ENV", "") == "development" || getEnvBool("DEBUG", false)
	shutdownTimeout, err := time.ParseDuration(getEnv("SHUTDOWN_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}
	cfg.Server.ShutdownTimeout = shutdownTimeout

	// API configuration
	cfg.API.APIKey = os.Getenv("API_KEY")

	// Extractor configuration
	cfg.Extractor.Backend = strings.ToLower(getEnv("EXTRACTOR_BACKEND", BackendYtDlp))
	cfg.Extractor.YtDlpPath = getEnv("YTDLP_PATH", "yt-dlp")
	extractionTimeout, err := time.ParseDuration(getEnv("EXTRACTION_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid EXTRACTION_TIMEOUT: %w", err)
	}
	cfg.Extractor.Timeout = extractionTimeout
	httpTimeout, err := time.ParseDuration(getEnv("EXTRACTOR_HTTP_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid EXTRACTOR_HTTP_TIMEOUT: %w", err)
	}
	cfg.Extractor.HTTPTimeout = httpTimeout

	// Rate limit configuration
	cfg.RateLimit.Enabled = getEnvBool("RATE_LIMIT_ENABLED", true)
	rates := []struct {
		key   string
		def   string
		field *Rate
	}{
		{"RATE_LIMIT_GLOBAL", "100/day", &cfg.RateLimit.Global},
		{"RATE_LIMIT_DOWNLOAD", "10/minute", &cfg.RateLimit.Download},
		{"RATE_LIMIT_INFO", "20/minute", &cfg.RateLimit.Info},
		{"RATE_LIMIT_HOME", "10/minute", &cfg.RateLimit.Home},
	}
	for _, r := range rates {
		parsed, err := ParseRate(getEnv(r.key, r.def))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", r.key, err)
		}
		*r.field = parsed
	}
	cfg.RateLimit.GlobalRPS = getEnvFloat("RATE_LIMIT_GLOBAL_RPS", 0)
	cfg.RateLimit.GlobalBurst = getEnvInt("RATE_LIMIT_GLOBAL_BURST", 0)

	// Redis configuration (optional, shared rate limit counters)
	cfg.Redis.Addr = getEnv("REDIS_ADDR", "")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)

	// Logging configuration
	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.File = os.Getenv("LOG_FILE")
	if _, set := os.LookupEnv("LOG_FILE"); !set {
		cfg.Log.File = "app.log"
	}

	// CORS configuration
	cfg.CORS = loadCORSConfig()

	return cfg, nil
}

// Validate checks settings shared by every command.
func (c *Config) Validate() error {
	if port, err := strconv.Atoi(c.Server.Port); err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid PORT %q", c.Server.Port)
	}

	switch c.Extractor.Backend {
	case BackendYtDlp, BackendYouTube:
	default:
		return fmt.Errorf("unsupported EXTRACTOR_BACKEND %q (valid: %s, %s)", c.Extractor.Backend, BackendYtDlp, BackendYouTube)
	}

	if c.Extractor.Backend == BackendYtDlp && c.Extractor.YtDlpPath == "" {
		return errors.New("YTDLP_PATH cannot be empty")
	}

	if c.Extractor.Timeout <= 0 {
		return errors.New("EXTRACTION_TIMEOUT must be positive")
	}

	if c.RateLimit.GlobalRPS < 0 || c.RateLimit.GlobalBurst < 0 {
		return errors.New("RATE_LIMIT_GLOBAL_RPS and RATE_LIMIT_GLOBAL_BURST cannot be negative")
	}

	if c.CORS.Enabled {
		for _, origin := range c.CORS.AllowedOrigins {
			if origin != "*" && !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
				return fmt.Errorf("invalid CORS_ALLOWED_ORIGINS entry %q: use \"*\" or an http(s):// origin", origin)
			}
		}
	}

	return nil
}

// RequireAPIKey fails when the shared secret is missing or is the
// well-known development value.
func (c *Config) RequireAPIKey() error {
	switch c.API.APIKey {
	case "":
		return errors.New("required environment variable API_KEY is not set")
	case insecureAPIKey:
		return errors.New("API_KEY is set to the public development key; choose a private secret")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(strings.TrimSpace(value), ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}

// loadCORSConfig allows every origin unless narrowed through CORS_* variables.
func loadCORSConfig() CORSConfig {
	return CORSConfig{
		Enabled:        getEnvBool("CORS_ENABLED", true),
		AllowedOrigins: getEnvStringSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
		AllowedMethods: getEnvStringSlice("CORS_ALLOWED_METHODS", []string{
			"GET", "POST", "OPTIONS",
		}),
		AllowedHeaders: getEnvStringSlice("CORS_ALLOWED_HEADERS", []string{
			"Origin", "Content-Type", "Accept", "X-API-Key", "X-Correlation-ID",
		}),
		ExposedHeaders: getEnvStringSlice("CORS_EXPOSED_HEADERS", []string{
			"X-Request-ID", "X-Correlation-ID", "Retry-After",
		}),
		AllowCredentials: getEnvBool("CORS_ALLOW_CREDENTIALS", false),
		MaxAge:           getEnvInt("CORS_MAX_AGE", 3600),
	}
}
