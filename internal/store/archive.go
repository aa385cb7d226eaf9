package store

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/elonfeng/mppilot/pkg/collect"
)

// ArchiveListOpts controls archive listing.
type ArchiveListOpts struct {
	Source collect.SourceType
	Since  time.Time
	Limit  int
}

// Archive keeps every collected item across runs in SQLite. The JSON
// snapshot stays the run contract; the archive is additive history for
// the HTTP API and source stats.
type Archive struct {
	db *sqlx.DB
}

// OpenArchive opens the SQLite archive and runs migrations.
func OpenArchive(path string) (*Archive, error) {
	db, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Archive{db: db}, nil
}

func (a *Archive) Close() error {
	return a.db.Close()
}

// UpsertItems records a batch of collected items, refreshing score and
// relevance on conflict.
func (a *Archive) UpsertItems(ctx context.Context, items []collect.Item) error {
	for i := range items {
		item := &items[i]
		_, err := a.db.ExecContext(ctx, `
			INSERT INTO items (id, source, title, url, score, time, content, author, relevance, collected_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				score = excluded.score,
				relevance = excluded.relevance,
				collected_at = excluded.collected_at
		`, item.ID, item.Source, item.Title, item.URL, item.Score,
			item.Time, item.Content, item.Author, item.Relevance, item.CollectedAt)
		if err != nil {
			return fmt.Errorf("upsert item %s: %w", item.ID, err)
		}
	}
	return nil
}

// ListItems returns archived items, newest first.
func (a *Archive) ListItems(ctx context.Context, opts ArchiveListOpts) ([]collect.Item, error) {
	q := sq.Select("*").From("items").OrderBy("collected_at DESC")
	if opts.Source != "" {
		q = q.Where(sq.Eq{"source": opts.Source})
	}
	if !opts.Since.IsZero() {
		q = q.Where(sq.GtOrEq{"collected_at": opts.Since})
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}
	q = q.Limit(uint64(limit))

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	var items []collect.Item
	if err := a.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

// CountBySource returns archived item counts grouped by source.
func (a *Archive) CountBySource(ctx context.Context) (map[collect.SourceType]int, error) {
	rows, err := a.db.QueryxContext(ctx, "SELECT source, COUNT(*) AS cnt FROM items GROUP BY source")
	if err != nil {
		return nil, fmt.Errorf("count items by source: %w", err)
	}
	defer rows.Close()

	counts := make(map[collect.SourceType]int)
	for rows.Next() {
		var src string
		var cnt int
		if err := rows.Scan(&src, &cnt); err != nil {
			return nil, err
		}
		counts[collect.SourceType(src)] = cnt
	}
	return counts, rows.Err()
}
