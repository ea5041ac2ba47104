// file: internal/catalog/sqlite_store.go
// version: 1.1.0
// guid: 5e1f2a3b-4c5d-6e7f-8a9b-0c1d2e3f4a5b

package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/jdfalk/fund-discovery/internal/models"
)

// SQLiteStore implements the Store interface using SQLite3. Structured
// sub-documents (tags, holdings, sector allocations) are stored as JSON
// columns; the catalog is read-heavy and never queries inside them.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite catalog store
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.createTables(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS funds (
		fund_id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		fund_house TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		sub_category TEXT NOT NULL DEFAULT '',
		fund_type TEXT NOT NULL DEFAULT '',
		tags TEXT NOT NULL DEFAULT '[]',
		search_terms TEXT NOT NULL DEFAULT '[]',
		current_nav REAL NOT NULL DEFAULT 0,
		aum REAL NOT NULL DEFAULT 0,
		popularity REAL NOT NULL DEFAULT 0,
		is_active INTEGER NOT NULL DEFAULT 1,
		holdings TEXT NOT NULL DEFAULT '[]',
		sector_allocation TEXT NOT NULL DEFAULT '[]'
	);
	CREATE TABLE IF NOT EXISTS nav_history (
		fund_id TEXT NOT NULL,
		date TEXT NOT NULL,
		nav REAL NOT NULL,
		PRIMARY KEY (fund_id, date)
	);
	CREATE INDEX IF NOT EXISTS idx_funds_active ON funds(is_active);
	`
	_, err := s.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const fundColumns = `fund_id, name, fund_house, category, sub_category, fund_type,
	tags, search_terms, current_nav, aum, popularity, is_active, holdings, sector_allocation`

func scanFund(row interface{ Scan(...any) error }) (*models.Fund, error) {
	var fund models.Fund
	var tags, searchTerms, holdings, sectors string
	var active int

	err := row.Scan(&fund.FundID, &fund.Name, &fund.FundHouse, &fund.Category,
		&fund.SubCategory, &fund.FundType, &tags, &searchTerms,
		&fund.CurrentNav, &fund.AUM, &fund.Popularity, &active, &holdings, &sectors)
	if err != nil {
		return nil, err
	}

	fund.IsActive = active != 0
	if err := json.Unmarshal([]byte(tags), &fund.Tags); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(searchTerms), &fund.SearchTerms); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(holdings), &fund.Holdings); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(sectors), &fund.SectorAllocation); err != nil {
		return nil, err
	}
	return &fund, nil
}

func (s *SQLiteStore) GetFundByID(ctx context.Context, fundID string) (*models.Fund, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+fundColumns+" FROM funds WHERE fund_id = ?", fundID)
	fund, err := scanFund(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return fund, nil
}

func (s *SQLiteStore) GetFundsByIDs(ctx context.Context, fundIDs []string, activeOnly bool) ([]models.Fund, error) {
	if len(fundIDs) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(fundIDs))
	placeholders = placeholders[:len(placeholders)-1]
	query := "SELECT " + fundColumns + " FROM funds WHERE fund_id IN (" + placeholders + ")"
	if activeOnly {
		query += " AND is_active = 1"
	}

	args := make([]any, len(fundIDs))
	for i, id := range fundIDs {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var funds []models.Fund
	for rows.Next() {
		fund, err := scanFund(rows)
		if err != nil {
			return nil, err
		}
		funds = append(funds, *fund)
	}
	return funds, rows.Err()
}

func (s *SQLiteStore) GetAllActiveFunds(ctx context.Context) ([]models.Fund, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+fundColumns+" FROM funds WHERE is_active = 1")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var funds []models.Fund
	for rows.Next() {
		fund, err := scanFund(rows)
		if err != nil {
			return nil, err
		}
		funds = append(funds, *fund)
	}
	return funds, rows.Err()
}

func (s *SQLiteStore) GetFundsByTags(ctx context.Context, tags []string, limit int) ([]models.Fund, error) {
	// Tags live in a JSON column, so filter in memory like the pebble store.
	funds, err := s.GetAllActiveFunds(ctx)
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

func (s *SQLiteStore) UpsertFund(ctx context.Context, fund *models.Fund) error {
	if fund.FundID == "" {
		return fmt.Errorf("fund ID is required")
	}

	marshal := func(v any) (string, error) {
		if v == nil {
			return "[]", nil
		}
		data, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	tags, err := marshal(fund.Tags)
	if err != nil {
		return err
	}
	searchTerms, err := marshal(fund.SearchTerms)
	if err != nil {
		return err
	}
	holdings, err := marshal(fund.Holdings)
	if err != nil {
		return err
	}
	sectors, err := marshal(fund.SectorAllocation)
	if err != nil {
		return err
	}

	active := 0
	if fund.IsActive {
		active = 1
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO funds (`+fundColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(fund_id) DO UPDATE SET
			name=excluded.name, fund_house=excluded.fund_house,
			category=excluded.category, sub_category=excluded.sub_category,
			fund_type=excluded.fund_type, tags=excluded.tags,
			search_terms=excluded.search_terms, current_nav=excluded.current_nav,
			aum=excluded.aum, popularity=excluded.popularity,
			is_active=excluded.is_active, holdings=excluded.holdings,
			sector_allocation=excluded.sector_allocation`,
		fund.FundID, fund.Name, fund.FundHouse, fund.Category, fund.SubCategory,
		fund.FundType, tags, searchTerms, fund.CurrentNav, fund.AUM,
		fund.Popularity, active, holdings, sectors)
	return err
}

func (s *SQLiteStore) CountFunds(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM funds").Scan(&count)
	return count, err
}

func (s *SQLiteStore) GetNavHistory(ctx context.Context, fundID string, from, to time.Time) ([]models.NavPoint, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, nav FROM nav_history
		WHERE fund_id = ? AND date >= ? AND date <= ?
		ORDER BY date ASC`,
		fundID, from.Format("2006-01-02"), to.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []models.NavPoint
	for rows.Next() {
		var dateStr string
		var nav float64
		if err := rows.Scan(&dateStr, &nav); err != nil {
			return nil, err
		}
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return nil, err
		}
		points = append(points, models.NavPoint{Date: date, Nav: nav})
	}
	return points, rows.Err()
}

func (s *SQLiteStore) PutNavHistory(ctx context.Context, fundID string, points []models.NavPoint) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO nav_history (fund_id, date, nav) VALUES (?, ?, ?)
		ON CONFLICT(fund_id, date) DO UPDATE SET nav=excluded.nav`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, pt := range points {
		if _, err := stmt.Exec(fundID, pt.Date.Format("2006-01-02"), pt.Nav); err != nil {
			return err
		}
	}
	return tx.Commit()
}
