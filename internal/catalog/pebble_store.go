// file: internal/catalog/pebble_store.go
// version: 1.2.0
// guid: 4d0e1f2a-3b4c-5d6e-7f8a-9b0c1d2e3f4a

package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/pebble/v2"

	"github.com/jdfalk/fund-discovery/internal/models"
)

// PebbleStore implements the Store interface using PebbleDB (LSM key-value store)
//
// Key Schema:
// - fund:<fundId>              -> Fund JSON
// - nav:<fundId>:<yyyy-mm-dd>  -> NAV value (stringified float)
//
// Fund IDs never contain ':' so prefix iteration stays unambiguous.

type PebbleStore struct {
	db *pebble.DB
}

// NewPebbleStore creates a new PebbleDB catalog store
func NewPebbleStore(path string) (*PebbleStore, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open PebbleDB: %w", err)
	}
	return &PebbleStore{db: db}, nil
}

// Close closes the database
func (p *PebbleStore) Close() error {
	return p.db.Close()
}

func fundKey(fundID string) []byte {
	return []byte("fund:" + fundID)
}

func navKey(fundID string, date time.Time) []byte {
	return []byte("nav:" + fundID + ":" + date.Format("2006-01-02"))
}

func (p *PebbleStore) GetFundByID(ctx context.Context, fundID string) (*models.Fund, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	value, closer, err := p.db.Get(fundKey(fundID))
	if err == pebble.ErrNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	var fund models.Fund
	if err := json.Unmarshal(value, &fund); err != nil {
		return nil, err
	}
	return &fund, nil
}

func (p *PebbleStore) GetFundsByIDs(ctx context.Context, fundIDs []string, activeOnly bool) ([]models.Fund, error) {
	funds := make([]models.Fund, 0, len(fundIDs))
	for _, id := range fundIDs {
		fund, err := p.GetFundByID(ctx, id)
		if err == ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		if activeOnly && !fund.IsActive {
			continue
		}
		funds = append(funds, *fund)
	}
	return funds, nil
}

func (p *PebbleStore) GetAllActiveFunds(ctx context.Context) ([]models.Fund, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	iter, err := p.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte("fund:"),
		UpperBound: []byte("fund:\xff"),
	})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var funds []models.Fund
	for iter.First(); iter.Valid(); iter.Next() {
		var fund models.Fund
		if err := json.Unmarshal(iter.Value(), &fund); err != nil {
			return nil, err
		}
		if fund.IsActive {
			funds = append(funds, fund)
		}
	}
	return funds, iter.Error()
}

func (p *PebbleStore) GetFundsByTags(ctx context.Context, tags []string, limit int) ([]models.Fund, error) {
	funds, err := p.GetAllActiveFunds(ctx)
	if err != nil {
		return nil, err
	}

	wanted := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		wanted[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
	}

	var matched []models.Fund
	for _, fund := range funds {
		for _, tag := range fund.Tags {
			if _, ok := wanted[strings.ToLower(tag)]; ok {
				matched = append(matched, fund)
				break
			}
		}
	}

	sortByPopularity(matched)
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (p *PebbleStore) UpsertFund(ctx context.Context, fund *models.Fund) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if fund.FundID == "" {
		return fmt.Errorf("fund ID is required")
	}
	data, err := json.Marshal(fund)
	if err != nil {
		return err
	}
	return p.db.Set(fundKey(fund.FundID), data, pebble.Sync)
}

func (p *PebbleStore) CountFunds(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	iter, err := p.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte("fund:"),
		UpperBound: []byte("fund:\xff"),
	})
	if err != nil {
		return 0, err
	}
	defer iter.Close()

	count := 0
	for iter.First(); iter.Valid(); iter.Next() {
		count++
	}
	return count, iter.Error()
}

func (p *PebbleStore) GetNavHistory(ctx context.Context, fundID string, from, to time.Time) ([]models.NavPoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	iter, err := p.db.NewIter(&pebble.IterOptions{
		LowerBound: navKey(fundID, from),
		UpperBound: append(navKey(fundID, to), 0xff),
	})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var points []models.NavPoint
	for iter.First(); iter.Valid(); iter.Next() {
		key := string(iter.Key())
		dateStr := key[strings.LastIndex(key, ":")+1:]
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return nil, fmt.Errorf("malformed nav key %q: %w", key, err)
		}
		var nav float64
		if err := json.Unmarshal(iter.Value(), &nav); err != nil {
			return nil, err
		}
		points = append(points, models.NavPoint{Date: date, Nav: nav})
	}
	return points, iter.Error()
}

func (p *PebbleStore) PutNavHistory(ctx context.Context, fundID string, points []models.NavPoint) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	batch := p.db.NewBatch()
	defer batch.Close()

	for _, pt := range points {
		value, err := json.Marshal(pt.Nav)
		if err != nil {
			return err
		}
		if err := batch.Set(navKey(fundID, pt.Date), value, nil); err != nil {
			return err
		}
	}
	return batch.Commit(pebble.Sync)
}
