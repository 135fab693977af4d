//go:build sqlite_fts5

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/starford/tebiki/internal/models"
)

// The trigram tokenizer cannot match anything shorter than three characters.
const minTrigramRunes = 3

func initFTS(conn *sql.DB) error {
	if _, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS manuals_fts USING fts5(
			id UNINDEXED,
			title,
			main_category,
			sub_category,
			tokenize = 'trigram'
		);
	`); err != nil {
		return err
	}
	// Backfill rows written by a build without FTS5.
	_, err := conn.Exec(`
		INSERT INTO manuals_fts (id, title, main_category, sub_category)
		SELECT id, title, main_category, coalesce(sub_category, '')
		FROM manuals
		WHERE id NOT IN (SELECT id FROM manuals_fts)
	`)
	return err
}

func ftsUpsert(ctx context.Context, tx *sql.Tx, m *models.Manual) error {
	if err := ftsDelete(ctx, tx, m.ID); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx, `INSERT INTO manuals_fts (id, title, main_category, sub_category) VALUES (?, ?, ?, ?)`,
		m.ID, m.Title, m.MainCategory, m.SubCategory)
	if err != nil {
		return fmt.Errorf("store: upsert fts: %w", err)
	}
	return nil
}

func ftsDelete(ctx context.Context, tx *sql.Tx, id string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM manuals_fts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("store: delete fts: %w", err)
	}
	return nil
}

// SearchPublished performs a trigram FTS5 search, falling back to LIKE for
// queries too short for the tokenizer.
func (db *DB) SearchPublished(ctx context.Context, q string, limit int) ([]models.Manual, error) {
	q, limit = normalizeSearch(q, limit)
	if q == "" {
		return []models.Manual{}, nil
	}
	if utf8.RuneCountInString(q) < minTrigramRunes {
		return db.searchLike(ctx, q, limit)
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT `+manualColumns+`
		FROM manuals
		WHERE is_published = 1 AND (
			id IN (SELECT id FROM manuals_fts WHERE manuals_fts MATCH ?)
			OR EXISTS (SELECT 1 FROM json_each(manuals.tags) WHERE value = ?)
		)
		ORDER BY order_index ASC, rowid ASC
		LIMIT ?
	`, phrase(q), q, limit)
	if err != nil {
		return nil, fmt.Errorf("store: search: %w", err)
	}
	return scanManuals(rows)
}

// phrase quotes q as a single FTS5 string so operators in user input are literal.
func phrase(q string) string {
	return `"` + strings.ReplaceAll(q, `"`, `""`) + `"`
}
