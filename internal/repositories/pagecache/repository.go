// Package pagecache persists fetched pages and API payloads in a local
// sqlite database so repeated pipeline runs skip the network.
package pagecache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/huandu/go-sqlbuilder"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/Ramsey-B/spielplan/pkg/tracing"
)

const schema = `
CREATE TABLE IF NOT EXISTS pages (
	key        TEXT PRIMARY KEY,
	payload    TEXT NOT NULL,
	fetched_at TEXT NOT NULL
);
`

// Repository is a key/payload store with TTL-based expiry.
type Repository struct {
	db     *sqlx.DB
	logger ectologger.Logger
	ttl    time.Duration
}

// Open opens (and creates if needed) the cache database at path.
func Open(path string, ttl time.Duration, logger ectologger.Logger) (*Repository, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create cache schema: %w", err)
	}

	return &Repository{db: db, logger: logger, ttl: ttl}, nil
}

// row matches the pages table. fetched_at is stored as RFC 3339 text; sqlite
// has no native timestamp type.
type row struct {
	Payload   string `db:"payload"`
	FetchedAt string `db:"fetched_at"`
}

// Get returns the cached payload for key. Stale entries are deleted and
// reported as a miss.
func (r *Repository) Get(ctx context.Context, key string) (string, bool, error) {
	ctx, span := tracing.StartSpan(ctx, "pagecache.Repository.Get")
	defer span.End()

	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select("payload", "fetched_at")
	sb.From("pages")
	sb.Where(sb.Equal("key", key))

	query, args := sb.Build()
	var entry row
	if err := r.db.GetContext(ctx, &entry, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to read page cache")
		return "", false, fmt.Errorf("failed to read page cache: %w", err)
	}

	fetchedAt, err := time.Parse(time.RFC3339, entry.FetchedAt)
	if err != nil || time.Since(fetchedAt) > r.ttl {
		if err := r.Delete(ctx, key); err != nil {
			r.logger.WithContext(ctx).WithError(err).Warn("Failed to evict stale cache entry")
		}
		return "", false, nil
	}

	return entry.Payload, true, nil
}

// Put stores a payload under key, replacing any previous entry.
func (r *Repository) Put(ctx context.Context, key string, payload string) error {
	ctx, span := tracing.StartSpan(ctx, "pagecache.Repository.Put")
	defer span.End()

	sb := sqlbuilder.SQLite.NewInsertBuilder()
	sb.ReplaceInto("pages")
	sb.Cols("key", "payload", "fetched_at")
	sb.Values(key, payload, time.Now().UTC().Format(time.RFC3339))

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to write page cache")
		return fmt.Errorf("failed to write page cache: %w", err)
	}

	return nil
}

// Delete removes one entry.
func (r *Repository) Delete(ctx context.Context, key string) error {
	ctx, span := tracing.StartSpan(ctx, "pagecache.Repository.Delete")
	defer span.End()

	sb := sqlbuilder.SQLite.NewDeleteBuilder()
	sb.DeleteFrom("pages")
	sb.Where(sb.Equal("key", key))

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// Purge removes every entry older than the TTL and returns how many went.
func (r *Repository) Purge(ctx context.Context) (int64, error) {
	ctx, span := tracing.StartSpan(ctx, "pagecache.Repository.Purge")
	defer span.End()

	cutoff := time.Now().UTC().Add(-r.ttl).Format(time.RFC3339)

	sb := sqlbuilder.SQLite.NewDeleteBuilder()
	sb.DeleteFrom("pages")
	sb.Where(sb.LessThan("fetched_at", cutoff))

	query, args := sb.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to purge page cache")
		return 0, fmt.Errorf("failed to purge page cache: %w", err)
	}

	purged, _ := result.RowsAffected()
	if purged > 0 {
		r.logger.WithContext(ctx).WithFields(map[string]any{"purged": purged}).Info("Purged stale cache entries")
	}
	return purged, nil
}

// Ping checks the database connection, for health reporting.
func (r *Repository) Ping() error {
	return r.db.Ping()
}

// Close closes the database.
func (r *Repository) Close() error {
	return r.db.Close()
}
