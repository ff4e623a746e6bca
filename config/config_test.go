package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	apperrors "sjsage522/promowatch/pkg/errors"
)

func TestLoadConfig(t *testing.T) {
	// Test with default values
	config := LoadConfig()
	assert.Equal(t, "https://www.mec.ca/en/p/featured", config.TargetURL)
	assert.Equal(t, "/mnt/mec-special", config.DataDir)
	assert.Equal(t, "/mnt/mec-special/promotions_db.json", config.DBFile)
	assert.Equal(t, 30*time.Second, config.FetchTimeout)
	assert.Equal(t, 5*time.Second, config.NotifyTimeout)
	assert.Equal(t, time.Duration(0), config.RunInterval)
	assert.Empty(t, config.BarkURLs)
	assert.Contains(t, config.Headers["User-Agent"], "Mozilla/5.0")
	assert.Contains(t, config.Headers["Accept"], "text/html")
	assert.NoError(t, config.Validate())

	// Test with environment variables
	t.Setenv("TARGET_URL", "https://example.com/deals")
	t.Setenv("DATA_DIR", "/tmp/promos")
	t.Setenv("BARK_URLS", "https://api.day.app/a/, https://api.day.app/b ,")
	t.Setenv("FETCH_TIMEOUT_SECONDS", "12")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("RUN_INTERVAL_SECONDS", "900")

	config = LoadConfig()
	assert.Equal(t, "https://example.com/deals", config.TargetURL)
	assert.Equal(t, "/tmp/promos/promotions_db.json", config.DBFile)
	assert.Equal(t, "/tmp/promos/error.log", config.ErrorLogFile)
	assert.Equal(t, []string{"https://api.day.app/a/", "https://api.day.app/b"}, config.BarkURLs)
	assert.Equal(t, 12*time.Second, config.FetchTimeout)
	assert.Equal(t, 2, config.RedisDB)
	assert.Equal(t, 15*time.Minute, config.RunInterval)
	assert.NoError(t, config.Validate())
}

func TestLoadConfigInvalidNumbersFallBack(t *testing.T) {
	t.Setenv("FETCH_TIMEOUT_SECONDS", "soon")
	t.Setenv("REDIS_DB", "x")

	config := LoadConfig()
	assert.Equal(t, 30*time.Second, config.FetchTimeout)
	assert.Equal(t, 0, config.RedisDB)
}

func TestValidate(t *testing.T) {
	config := LoadConfig()
	config.TargetURL = "not a url"
	err := config.Validate()
	assert.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConfiguration))

	config = LoadConfig()
	config.BarkURLs = []string{"ftp://nope"}
	assert.Error(t, config.Validate())

	config = LoadConfig()
	config.FetchTimeout = 0
	assert.Error(t, config.Validate())
}

func TestIsProduction(t *testing.T) {
	t.Setenv("PROMOWATCH_ENVIRONMENT", "production")
	assert.True(t, LoadConfig().IsProduction())

	t.Setenv("PROMOWATCH_ENVIRONMENT", "")
	assert.False(t, LoadConfig().IsProduction())
}
