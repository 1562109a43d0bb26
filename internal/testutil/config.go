package testutil

import (
	"testing"
	"time"

	"github.com/lepinkainen/bookbot/internal/config"
	"github.com/spf13/viper"
)

// ConfigState holds the state of the config package variables.
type ConfigState struct {
	TelegramToken       string
	GoogleBooksAPIKey   string
	OpenLibraryURL      string
	GoogleBooksURL      string
	CatalogTimeout      time.Duration
	FallbackTimeout     time.Duration
	TelegramWorkers     int
	TelegramPollTimeout int
	CacheEnabled        bool
	MetricsAddr         string
}

// SaveConfigState captures the current state of config package variables.
func SaveConfigState() ConfigState {
	return ConfigState{
		TelegramToken:       config.TelegramToken,
		GoogleBooksAPIKey:   config.GoogleBooksAPIKey,
		OpenLibraryURL:      config.OpenLibraryURL,
		GoogleBooksURL:      config.GoogleBooksURL,
		CatalogTimeout:      config.CatalogTimeout,
		FallbackTimeout:     config.FallbackTimeout,
		TelegramWorkers:     config.TelegramWorkers,
		TelegramPollTimeout: config.TelegramPollTimeout,
		CacheEnabled:        config.CacheEnabled,
		MetricsAddr:         config.MetricsAddr,
	}
}

// RestoreConfigState restores the config package variables to a saved state.
func RestoreConfigState(state ConfigState) {
	config.TelegramToken = state.TelegramToken
	config.GoogleBooksAPIKey = state.GoogleBooksAPIKey
	config.OpenLibraryURL = state.OpenLibraryURL
	config.GoogleBooksURL = state.GoogleBooksURL
	config.CatalogTimeout = state.CatalogTimeout
	config.FallbackTimeout = state.FallbackTimeout
	config.TelegramWorkers = state.TelegramWorkers
	config.TelegramPollTimeout = state.TelegramPollTimeout
	config.CacheEnabled = state.CacheEnabled
	config.MetricsAddr = state.MetricsAddr
}

// ResetConfig saves the current config state and schedules restoration
// when the test completes. It also resets viper.
func ResetConfig(t *testing.T) {
	t.Helper()

	state := SaveConfigState()
	viper.Reset()

	t.Cleanup(func() {
		RestoreConfigState(state)
		viper.Reset()
	})
}

// SetViperValue sets a viper configuration value and schedules cleanup.
func SetViperValue(t *testing.T, key string, value any) {
	t.Helper()

	oldValue := viper.Get(key)
	hadValue := viper.IsSet(key)

	viper.Set(key, value)

	t.Cleanup(func() {
		if hadValue {
			viper.Set(key, oldValue)
		}
		// viper has no Unset, so a previously unset key stays set.
	})
}

// SetupTestCache configures viper so the response cache lives inside env.
// Callers reset the global cache themselves so it picks the new path up.
func SetupTestCache(t *testing.T, env *TestEnv) string {
	t.Helper()

	dbPath := env.Path("cache", "test-cache.db")
	env.MkdirAll("cache")

	SetViperValue(t, "cache.dbfile", dbPath)
	SetViperValue(t, "cache.ttl", "24h")

	return dbPath
}
