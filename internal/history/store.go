// Package history persists comparison results so users can revisit them.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/RobinCoderZhao/pdfcompare/internal/compare"
	"github.com/RobinCoderZhao/pdfcompare/pkg/storage"
)

// Store provides persistence for comparison history.
type Store struct {
	db *storage.DB
}

// NewStore creates a new history store.
func NewStore(db *storage.DB) *Store {
	return &Store{db: db}
}

// Entry is one saved comparison.
type Entry struct {
	ID          int                `json:"id"`
	UserID      int                `json:"-"`
	NameA       string             `json:"name_a"`
	NameB       string             `json:"name_b"`
	Severity    string             `json:"severity"`
	ChangeRatio float64            `json:"change_ratio"`
	Stats       compare.Statistics `json:"stats"`
	ReportMD    string             `json:"report_md,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
}

// Save records a finished comparison for a user and returns its id.
func (s *Store) Save(ctx context.Context, userID int, nameA, nameB string, stats compare.Statistics, reportMD string) (int, error) {
	statsJSON, err := json.Marshal(stats)
	if err != nil {
		return 0, fmt.Errorf("marshal stats: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO comparisons (user_id, name_a, name_b, severity, change_ratio, stats_json, report_md)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		userID, nameA, nameB, string(stats.Severity()), stats.ChangeRatio, string(statsJSON), reportMD)
	if err != nil {
		return 0, fmt.Errorf("save comparison: %w", err)
	}
	id, _ := res.LastInsertId()
	return int(id), nil
}

// List returns a user's comparisons, newest first, without report bodies.
func (s *Store) List(ctx context.Context, userID, limit int) ([]Entry, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, name_a, name_b, severity, change_ratio, stats_json, created_at
		 FROM comparisons WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list comparisons: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows.Scan, false)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// Get returns a single comparison including its report, or nil when the id
// does not exist or belongs to another user.
func (s *Store) Get(ctx context.Context, userID, id int) (*Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, name_a, name_b, severity, change_ratio, stats_json, report_md, created_at
		 FROM comparisons WHERE id = ? AND user_id = ?`, id, userID)
	e, err := scanEntry(row.Scan, true)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return e, err
}

func scanEntry(scan func(...any) error, withReport bool) (*Entry, error) {
	var (
		e         Entry
		statsJSON string
	)
	dest := []any{&e.ID, &e.UserID, &e.NameA, &e.NameB, &e.Severity, &e.ChangeRatio, &statsJSON}
	if withReport {
		dest = append(dest, &e.ReportMD)
	}
	dest = append(dest, &e.CreatedAt)
	if err := scan(dest...); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(statsJSON), &e.Stats); err != nil {
		return nil, fmt.Errorf("decode stats: %w", err)
	}
	return &e, nil
}
