//go:build !sqlite_fts5

package store

import (
	"context"
	"database/sql"

	"github.com/starford/tebiki/internal/models"
)

func initFTS(_ *sql.DB) error {
	// FTS5 not available; search uses LIKE over the manuals table.
	return nil
}

func ftsUpsert(_ context.Context, _ *sql.Tx, _ *models.Manual) error { return nil }

func ftsDelete(_ context.Context, _ *sql.Tx, _ string) error { return nil }

// SearchPublished performs a LIKE-based search (fallback when FTS5 is not compiled in).
func (db *DB) SearchPublished(ctx context.Context, q string, limit int) ([]models.Manual, error) {
	q, limit = normalizeSearch(q, limit)
	if q == "" {
		return []models.Manual{}, nil
	}
	return db.searchLike(ctx, q, limit)
}
