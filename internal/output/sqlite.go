package output

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ppiankov/wikisift/internal/model"
)

// SQLiteStore keeps accepted items in a SQLite table keyed by entity id.
type SQLiteStore struct {
	db    *sql.DB
	runID string
}

// OpenSQLite opens (or creates) the database at path with WAL mode enabled.
func OpenSQLite(ctx context.Context, path string, runID string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	if err := initSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db, runID: runID}, nil
}

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS items (
	id TEXT PRIMARY KEY,
	run_id TEXT NOT NULL,
	label TEXT NOT NULL,
	description TEXT NOT NULL,
	wikipedia_title TEXT NOT NULL,
	date_prop_id TEXT NOT NULL,
	year INTEGER NOT NULL,
	instance_of TEXT NOT NULL,
	occupations TEXT,
	page_views INTEGER NOT NULL,
	image TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_items_run ON items(run_id);
CREATE INDEX IF NOT EXISTS idx_items_year ON items(year);
`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// Write upserts item.
func (s *SQLiteStore) Write(ctx context.Context, item *model.Item) error {
	types, err := json.Marshal(item.InstanceOf)
	if err != nil {
		return fmt.Errorf("marshal types: %w", err)
	}
	var occupations sql.NullString
	if len(item.Occupations) > 0 {
		data, err := json.Marshal(item.Occupations)
		if err != nil {
			return fmt.Errorf("marshal occupations: %w", err)
		}
		occupations = sql.NullString{String: string(data), Valid: true}
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO items (id, run_id, label, description, wikipedia_title, date_prop_id, year, instance_of, occupations, page_views, image, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	run_id = excluded.run_id,
	label = excluded.label,
	description = excluded.description,
	wikipedia_title = excluded.wikipedia_title,
	date_prop_id = excluded.date_prop_id,
	year = excluded.year,
	instance_of = excluded.instance_of,
	occupations = excluded.occupations,
	page_views = excluded.page_views,
	image = excluded.image,
	updated_at = excluded.updated_at`,
		item.ID, s.runID, item.Label, item.Description, item.WikipediaTitle,
		item.DatePropID, item.Year, string(types), occupations, item.PageViews,
		item.Image, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("upsert item %s: %w", item.ID, err)
	}
	return nil
}

// Items returns stored items ordered by year.
func (s *SQLiteStore) Items(ctx context.Context) ([]model.Item, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, label, description, wikipedia_title, date_prop_id, year, instance_of, occupations, page_views, image
FROM items ORDER BY year, id`)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		var (
			item        model.Item
			types       string
			occupations sql.NullString
		)
		if err := rows.Scan(&item.ID, &item.Label, &item.Description, &item.WikipediaTitle,
			&item.DatePropID, &item.Year, &types, &occupations, &item.PageViews, &item.Image); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		if err := json.Unmarshal([]byte(types), &item.InstanceOf); err != nil {
			return nil, fmt.Errorf("decode types of %s: %w", item.ID, err)
		}
		if occupations.Valid {
			if err := json.Unmarshal([]byte(occupations.String), &item.Occupations); err != nil {
				return nil, fmt.Errorf("decode occupations of %s: %w", item.ID, err)
			}
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
