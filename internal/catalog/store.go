// file: internal/catalog/store.go
// version: 1.3.0
// guid: 2b9c0d1e-3f4a-5b6c-7d8e-9f0a1b2c3d4e

package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jdfalk/fund-discovery/internal/models"
)

// ErrNotFound is returned when a requested fund does not exist.
var ErrNotFound = errors.New("fund not found")

// Store defines read/write access to the fund catalog. The search and
// comparison engines only use the read side; writes exist for seeding.
// This abstraction allows us to support both PebbleDB (default) and
// SQLite3 (opt-in).
type Store interface {
	// Lifecycle
	Close() error

	// Funds
	GetFundByID(ctx context.Context, fundID string) (*models.Fund, error)
	GetFundsByIDs(ctx context.Context, fundIDs []string, activeOnly bool) ([]models.Fund, error)
	GetAllActiveFunds(ctx context.Context) ([]models.Fund, error)
	GetFundsByTags(ctx context.Context, tags []string, limit int) ([]models.Fund, error)
	UpsertFund(ctx context.Context, fund *models.Fund) error
	CountFunds(ctx context.Context) (int, error)

	// NAV history
	GetNavHistory(ctx context.Context, fundID string, from, to time.Time) ([]models.NavPoint, error)
	PutNavHistory(ctx context.Context, fundID string, points []models.NavPoint) error
}

// GlobalStore is the process-wide catalog store
var GlobalStore Store

// InitializeStore initializes the catalog store based on configuration
func InitializeStore(storeType, path string, enableSQLite bool) error {
	var err error

	switch storeType {
	case "sqlite", "sqlite3":
		if !enableSQLite {
			return fmt.Errorf("SQLite backend requires the enable-sqlite3-i-know-the-risks flag")
		}
		GlobalStore, err = NewSQLiteStore(path)
	case "pebble", "":
		GlobalStore, err = NewPebbleStore(path)
	default:
		return fmt.Errorf("unknown store type: %s", storeType)
	}

	if err != nil {
		return fmt.Errorf("failed to open %s store at %s: %w", storeType, path, err)
	}
	return nil
}

// CloseStore closes the global store
func CloseStore() error {
	if GlobalStore != nil {
		err := GlobalStore.Close()
		GlobalStore = nil
		return err
	}
	return nil
}
