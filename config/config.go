package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	apperrors "sjsage522/promowatch/pkg/errors"
)

const (
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/115.0.0.0 Safari/537.36"
	defaultAccept    = "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8"
)

// Config represents the application configuration. It is built once at
// startup and only read afterwards.
type Config struct {
	// Target page
	TargetURL    string            `validate:"required,http_url"`
	Headers      map[string]string `validate:"required"`
	FetchTimeout time.Duration     `validate:"gt=0"`

	// Persisted state
	DataDir      string `validate:"required"`
	DBFile       string `validate:"required"`
	ErrorLogFile string

	// Bark push
	BarkURLs      []string `validate:"dive,http_url"`
	BarkIcon      string   `validate:"omitempty,http_url"`
	CampaignLabel string   `validate:"required"`
	NotifyGroup   string
	NotifyTimeout time.Duration `validate:"gt=0"`

	// Extraction
	SelectorsFile string

	// Memcache rate limit guard
	MemcacheAddr   string
	RateLimitBlock time.Duration `validate:"gte=0"`

	// Redis stream mirror
	RedisAddr         string
	RedisDB           int `validate:"gte=0"`
	RedisStream       string
	RedisStreamMaxLen int `validate:"gte=0"`

	// Worker
	RunInterval time.Duration `validate:"gte=0"`

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() *Config {
	dataDir := getEnv("DATA_DIR", "/mnt/mec-special")

	return &Config{
		TargetURL: getEnv("TARGET_URL", "https://www.mec.ca/en/p/featured"),
		Headers: map[string]string{
			"User-Agent": getEnv("USER_AGENT", defaultUserAgent),
			"Accept":     getEnv("ACCEPT", defaultAccept),
		},
		FetchTimeout: getSeconds("FETCH_TIMEOUT_SECONDS", 30),

		DataDir:      dataDir,
		DBFile:       getEnv("DB_FILE", filepath.Join(dataDir, "promotions_db.json")),
		ErrorLogFile: getEnv("ERROR_LOG_FILE", filepath.Join(dataDir, "error.log")),

		BarkURLs:      getList("BARK_URLS"),
		BarkIcon:      getEnv("BARK_ICON", "https://www.mec.ca/favicons/apple-touch-icon.png"),
		CampaignLabel: getEnv("CAMPAIGN_LABEL", "MEC New Promo"),
		NotifyGroup:   getEnv("NOTIFY_GROUP", "MEC Monitor"),
		NotifyTimeout: getSeconds("NOTIFY_TIMEOUT_SECONDS", 5),

		SelectorsFile: getEnv("SELECTORS_FILE", ""),

		MemcacheAddr:   getEnv("MEMCACHE_ADDR", ""),
		RateLimitBlock: getSeconds("RATE_LIMIT_BLOCK_SECONDS", 600),

		RedisAddr:         getEnv("REDIS_ADDR", ""),
		RedisDB:           getInt("REDIS_DB", 0),
		RedisStream:       getEnv("REDIS_STREAM", "promotions"),
		RedisStreamMaxLen: getInt("REDIS_STREAM_MAX_LEN", 1000),

		RunInterval: getSeconds("RUN_INTERVAL_SECONDS", 0),

		Environment: getEnv("PROMOWATCH_ENVIRONMENT", "development"),
	}
}

// Validate checks the configuration values
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return apperrors.NewConfiguration("invalid configuration", err)
	}
	return nil
}

// IsProduction reports whether the job runs in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getInt parses an integer variable. Unparsable values fall back to the default.
func getInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(getEnv(key, strconv.Itoa(defaultValue)))
	if err != nil {
		return defaultValue
	}
	return v
}

func getSeconds(key string, defaultSeconds int) time.Duration {
	return time.Duration(getInt(key, defaultSeconds)) * time.Second
}

// getList splits a comma separated variable, dropping blanks
func getList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
