package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/starford/tebiki/internal/models"
)

// DefaultSearchLimit caps search results when the caller passes no limit.
const DefaultSearchLimit = 50

// searchLike matches published manuals whose title, main category or
// subcategory contains q, or whose tags contain q exactly.
func (db *DB) searchLike(ctx context.Context, q string, limit int) ([]models.Manual, error) {
	like := likePattern(q)
	rows, err := db.conn.QueryContext(ctx, `
		SELECT `+manualColumns+`
		FROM manuals
		WHERE is_published = 1 AND (
			title LIKE ? ESCAPE '\'
			OR main_category LIKE ? ESCAPE '\'
			OR sub_category LIKE ? ESCAPE '\'
			OR EXISTS (SELECT 1 FROM json_each(manuals.tags) WHERE value = ?)
		)
		ORDER BY order_index ASC, rowid ASC
		LIMIT ?
	`, like, like, like, q, limit)
	if err != nil {
		return nil, fmt.Errorf("store: search: %w", err)
	}
	return scanManuals(rows)
}

func normalizeSearch(q string, limit int) (string, int) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	return strings.TrimSpace(q), limit
}
