// file: internal/config/config.go
// version: 1.1.0
// guid: 8b4c5d6e-7f8a-9b0c-1d2e-3f4a5b6c7d8e

package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	StorePath    string
	StoreType    string // "pebble" (default) or "sqlite"
	EnableSQLite bool   // Must be true to use SQLite (safety flag)

	DebounceDelay time.Duration // suggestion coalescing window

	SearchCacheTTL     time.Duration
	SuggestCacheTTL    time.Duration
	ComparisonCacheTTL time.Duration

	StoreTimeout time.Duration // per-call catalog deadline

	RateLimitPerMinute int
	RateLimitBurst     int
}

var AppConfig Config

// InitConfig initializes the application configuration
func InitConfig() {
	// Set defaults
	viper.SetDefault("store_type", "pebble")
	viper.SetDefault("enable_sqlite3_i_know_the_risks", false)
	viper.SetDefault("debounce_delay", "300ms")
	viper.SetDefault("search_cache_ttl", "30m")
	viper.SetDefault("suggest_cache_ttl", "1h")
	viper.SetDefault("comparison_cache_ttl", "1h")
	viper.SetDefault("store_timeout", "500ms")
	viper.SetDefault("rate_limit_per_minute", 600)
	viper.SetDefault("rate_limit_burst", 20)

	AppConfig = Config{
		StorePath:          viper.GetString("store_path"),
		StoreType:          viper.GetString("store_type"),
		EnableSQLite:       viper.GetBool("enable_sqlite3_i_know_the_risks"),
		DebounceDelay:      viper.GetDuration("debounce_delay"),
		SearchCacheTTL:     viper.GetDuration("search_cache_ttl"),
		SuggestCacheTTL:    viper.GetDuration("suggest_cache_ttl"),
		ComparisonCacheTTL: viper.GetDuration("comparison_cache_ttl"),
		StoreTimeout:       viper.GetDuration("store_timeout"),
		RateLimitPerMinute: viper.GetInt("rate_limit_per_minute"),
		RateLimitBurst:     viper.GetInt("rate_limit_burst"),
	}

	// Normalize store type
	if AppConfig.StoreType == "sqlite3" {
		AppConfig.StoreType = "sqlite"
	}
	if AppConfig.StoreType == "" {
		AppConfig.StoreType = "pebble"
	}
}
