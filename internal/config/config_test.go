// file: internal/config/config_test.go
// version: 1.0.0
// guid: 9c5d6e7f-8a9b-0c1d-2e3f-4a5b6c7d8e9f

package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestInitConfigDefaults(t *testing.T) {
	viper.Reset()
	InitConfig()

	if AppConfig.StoreType != "pebble" {
		t.Errorf("expected pebble default, got %q", AppConfig.StoreType)
	}
	if AppConfig.EnableSQLite {
		t.Error("sqlite must be opt-in")
	}
	if AppConfig.DebounceDelay != 300*time.Millisecond {
		t.Errorf("unexpected debounce delay %v", AppConfig.DebounceDelay)
	}
	if AppConfig.SearchCacheTTL != 30*time.Minute {
		t.Errorf("unexpected search TTL %v", AppConfig.SearchCacheTTL)
	}
	if AppConfig.SuggestCacheTTL != time.Hour {
		t.Errorf("unexpected suggest TTL %v", AppConfig.SuggestCacheTTL)
	}
	if AppConfig.StoreTimeout != 500*time.Millisecond {
		t.Errorf("unexpected store timeout %v", AppConfig.StoreTimeout)
	}
}

func TestInitConfigNormalizesStoreType(t *testing.T) {
	viper.Reset()
	viper.Set("store_type", "sqlite3")
	InitConfig()
	if AppConfig.StoreType != "sqlite" {
		t.Errorf("expected sqlite3 to normalize to sqlite, got %q", AppConfig.StoreType)
	}
	viper.Reset()
}
