package config

import (
	"log/slog"
	"time"

	"github.com/spf13/viper"
)

// Global configuration variables
var (
	// TelegramToken is the bot token issued by @BotFather
	TelegramToken string
	// GoogleBooksAPIKey is an optional Google Books API key
	GoogleBooksAPIKey string

	// OpenLibraryURL is the Open Library host
	OpenLibraryURL string
	// GoogleBooksURL is the Google Books API root
	GoogleBooksURL string
	// CatalogTimeout bounds regular catalog requests
	CatalogTimeout time.Duration
	// FallbackTimeout bounds the last-resort author search
	FallbackTimeout time.Duration

	// TelegramWorkers limits how many updates are handled at once
	TelegramWorkers int
	// TelegramPollTimeout is the long-polling timeout in seconds
	TelegramPollTimeout int

	// CacheEnabled controls whether catalog responses are cached
	CacheEnabled bool
	// MetricsAddr is the listen address for /metrics; empty disables it
	MetricsAddr string
)

// SetDefaults registers the default value of every configuration key.
func SetDefaults() {
	viper.SetDefault("openlibrary.baseurl", "https://openlibrary.org")
	viper.SetDefault("googlebooks.baseurl", "https://www.googleapis.com/books/v1")
	viper.SetDefault("catalog.timeout", "10s")
	viper.SetDefault("catalog.fallback_timeout", "5s")

	viper.SetDefault("telegram.workers", 4)
	viper.SetDefault("telegram.poll_timeout", 60)

	viper.SetDefault("cache.enabled", true)
	viper.SetDefault("cache.dbfile", ":memory:")
	viper.SetDefault("cache.ttl", "1h")

	viper.SetDefault("metrics.addr", "")
}

// InitConfig initializes the global configuration
func InitConfig() {
	SetDefaults()

	TelegramToken = viper.GetString("telegram.token")
	GoogleBooksAPIKey = viper.GetString("googlebooks.apikey")

	OpenLibraryURL = viper.GetString("openlibrary.baseurl")
	GoogleBooksURL = viper.GetString("googlebooks.baseurl")
	CatalogTimeout = durationOr("catalog.timeout", 10*time.Second)
	FallbackTimeout = durationOr("catalog.fallback_timeout", 5*time.Second)

	TelegramWorkers = viper.GetInt("telegram.workers")
	if TelegramWorkers < 1 {
		TelegramWorkers = 1
	}
	TelegramPollTimeout = viper.GetInt("telegram.poll_timeout")

	CacheEnabled = viper.GetBool("cache.enabled")
	MetricsAddr = viper.GetString("metrics.addr")
}

// SetCacheEnabled sets the CacheEnabled flag
func SetCacheEnabled(enabled bool) {
	CacheEnabled = enabled
}

func durationOr(key string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(viper.GetString(key))
	if err != nil || d <= 0 {
		slog.Warn("Invalid duration in config, using default", "key", key, "value", viper.GetString(key), "default", def)
		return def
	}
	return d
}
