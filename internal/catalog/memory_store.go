// file: internal/catalog/memory_store.go
// version: 1.1.0
// guid: 6f2a3b4c-5d6e-7f8a-9b0c-1d2e3f4a5b6c

package catalog

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jdfalk/fund-discovery/internal/models"
)

// MemoryStore is an in-memory Store used by tests and as a fixture sandbox.
// ReadErr, when set, is returned by every read method to simulate an
// unavailable catalog.
type MemoryStore struct {
	mu      sync.RWMutex
	funds   map[string]models.Fund
	nav     map[string][]models.NavPoint
	ReadErr error
}

// NewMemoryStore creates an empty in-memory catalog store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		funds: make(map[string]models.Fund),
		nav:   make(map[string][]models.NavPoint),
	}
}

func (m *MemoryStore) Close() error { return nil }

func (m *MemoryStore) GetFundByID(ctx context.Context, fundID string) (*models.Fund, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	fund, ok := m.funds[fundID]
	if !ok {
		return nil, ErrNotFound
	}
	copied := fund
	return &copied, nil
}

func (m *MemoryStore) GetFundsByIDs(ctx context.Context, fundIDs []string, activeOnly bool) ([]models.Fund, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	funds := make([]models.Fund, 0, len(fundIDs))
	for _, id := range fundIDs {
		fund, ok := m.funds[id]
		if !ok {
			continue
		}
		if activeOnly && !fund.IsActive {
			continue
		}
		funds = append(funds, fund)
	}
	return funds, nil
}

func (m *MemoryStore) GetAllActiveFunds(ctx context.Context) ([]models.Fund, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	var funds []models.Fund
	for _, fund := range m.funds {
		if fund.IsActive {
			funds = append(funds, fund)
		}
	}
	// Deterministic order for tests
	sort.Slice(funds, func(i, j int) bool { return funds[i].FundID < funds[j].FundID })
	return funds, nil
}

func (m *MemoryStore) GetFundsByTags(ctx context.Context, tags []string, limit int) ([]models.Fund, error) {
	funds, err := m.GetAllActiveFunds(ctx)
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

func (m *MemoryStore) UpsertFund(ctx context.Context, fund *models.Fund) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.funds[fund.FundID] = *fund
	return nil
}

func (m *MemoryStore) CountFunds(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.ReadErr != nil {
		return 0, m.ReadErr
	}
	return len(m.funds), nil
}

func (m *MemoryStore) GetNavHistory(ctx context.Context, fundID string, from, to time.Time) ([]models.NavPoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	var points []models.NavPoint
	for _, pt := range m.nav[fundID] {
		if pt.Date.Before(from) || pt.Date.After(to) {
			continue
		}
		points = append(points, pt)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	return points, nil
}

func (m *MemoryStore) PutNavHistory(ctx context.Context, fundID string, points []models.NavPoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nav[fundID] = append(m.nav[fundID], points...)
	return nil
}

// sortByPopularity orders funds by popularity then AUM, both descending.
func sortByPopularity(funds []models.Fund) {
	sort.Slice(funds, func(i, j int) bool {
		if funds[i].Popularity != funds[j].Popularity {
			return funds[i].Popularity > funds[j].Popularity
		}
		return funds[i].AUM > funds[j].AUM
	})
}
