package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"github.com/starford/tebiki/internal/apperr"
	"github.com/starford/tebiki/internal/models"
)

const manualColumns = `id, title, url, main_category, sub_category, tags, reference_links,
	is_published, order_index, created_at, updated_at`

// Manual sort keys accepted by ListManuals.
const (
	SortOrderIndex = "order_index"
	SortCreatedAt  = "created_at"
	SortUpdatedAt  = "updated_at"
)

// ManualFilter narrows the admin manual listing. Zero values do not filter.
type ManualFilter struct {
	Category    string
	SubCategory string
	Tag         string
	Published   *bool
	// Query matches title, main_category or sub_category as a substring.
	Query  string
	Sort   string
	Limit  int
	Offset int
}

// ListPublishedByCategory returns the published manuals of one main category
// ordered by order_index, insertion order breaking ties.
func (db *DB) ListPublishedByCategory(ctx context.Context, mainCategory string) ([]models.Manual, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT `+manualColumns+`
		FROM manuals
		WHERE is_published = 1 AND main_category = ?
		ORDER BY order_index ASC, rowid ASC
	`, mainCategory)
	if err != nil {
		return nil, fmt.Errorf("store: list published: %w", err)
	}
	return scanManuals(rows)
}

// CountPublishedByCategory returns the number of published manuals per main category.
func (db *DB) CountPublishedByCategory(ctx context.Context) (map[string]int, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT main_category, count(*)
		FROM manuals
		WHERE is_published = 1
		GROUP BY main_category
	`)
	if err != nil {
		return nil, fmt.Errorf("store: count published: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var cat string
		var n int
		if err := rows.Scan(&cat, &n); err != nil {
			return nil, err
		}
		out[cat] = n
	}
	return out, rows.Err()
}

// GetManual returns a manual by id regardless of its published state.
func (db *DB) GetManual(ctx context.Context, id string) (*models.Manual, error) {
	row := db.conn.QueryRowContext(ctx, `SELECT `+manualColumns+` FROM manuals WHERE id = ?`, id)
	m, err := scanManual(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get manual: %w", err)
	}
	return m, nil
}

// ListManuals returns one page of manuals matching f plus the total match count.
// A zero Limit returns every match.
func (db *DB) ListManuals(ctx context.Context, f ManualFilter) ([]models.Manual, int, error) {
	var where []string
	var args []any
	if f.Category != "" {
		where = append(where, "main_category = ?")
		args = append(args, f.Category)
	}
	if f.SubCategory != "" {
		where = append(where, "sub_category = ?")
		args = append(args, f.SubCategory)
	}
	if f.Tag != "" {
		where = append(where, "EXISTS (SELECT 1 FROM json_each(manuals.tags) WHERE value = ?)")
		args = append(args, f.Tag)
	}
	if f.Published != nil {
		where = append(where, "is_published = ?")
		args = append(args, *f.Published)
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		like := likePattern(q)
		where = append(where, `(title LIKE ? ESCAPE '\' OR main_category LIKE ? ESCAPE '\' OR sub_category LIKE ? ESCAPE '\')`)
		args = append(args, like, like, like)
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := db.conn.QueryRowContext(ctx, `SELECT count(*) FROM manuals`+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("store: count manuals: %w", err)
	}

	query := `SELECT ` + manualColumns + ` FROM manuals` + clause + ` ORDER BY ` + orderBy(f.Sort)
	if f.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, f.Limit, max(f.Offset, 0))
	}
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("store: list manuals: %w", err)
	}
	out, err := scanManuals(rows)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func orderBy(sort string) string {
	switch sort {
	case SortCreatedAt:
		return "created_at DESC, rowid DESC"
	case SortUpdatedAt:
		return "updated_at DESC, rowid DESC"
	default:
		return "order_index ASC, rowid ASC"
	}
}

// CreateManual inserts m, assigning an id and timestamps. m is updated in place.
func (db *DB) CreateManual(ctx context.Context, m *models.Manual) error {
	now := time.Now().UTC()
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	m.CreatedAt, m.UpdatedAt = now, now

	tags, links, err := encodeLists(m)
	if err != nil {
		return err
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.ExecContext(ctx, `
		INSERT INTO manuals (`+manualColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, m.ID, m.Title, m.URL, m.MainCategory, nullString(m.SubCategory), tags, links,
		m.IsPublished, m.OrderIndex, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.ErrAlreadyExists
		}
		return fmt.Errorf("store: insert manual: %w", err)
	}
	if err := ftsUpsert(ctx, tx, m); err != nil {
		return err
	}
	return tx.Commit()
}

// UpdateManual overwrites the editable fields of an existing manual and bumps
// updated_at. CreatedAt on m is refreshed from the stored row.
func (db *DB) UpdateManual(ctx context.Context, m *models.Manual) error {
	m.UpdatedAt = time.Now().UTC()

	tags, links, err := encodeLists(m)
	if err != nil {
		return err
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx, `
		UPDATE manuals SET
			title           = ?,
			url             = ?,
			main_category   = ?,
			sub_category    = ?,
			tags            = ?,
			reference_links = ?,
			is_published    = ?,
			order_index     = ?,
			updated_at      = ?
		WHERE id = ?
	`, m.Title, m.URL, m.MainCategory, nullString(m.SubCategory), tags, links,
		m.IsPublished, m.OrderIndex, m.UpdatedAt, m.ID)
	if err != nil {
		return fmt.Errorf("store: update manual: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	if err := tx.QueryRowContext(ctx, `SELECT created_at FROM manuals WHERE id = ?`, m.ID).Scan(&m.CreatedAt); err != nil {
		return fmt.Errorf("store: reload manual: %w", err)
	}
	if err := ftsUpsert(ctx, tx, m); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteManual removes a manual and its search entry.
func (db *DB) DeleteManual(ctx context.Context, id string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx, `DELETE FROM manuals WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete manual: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	if err := ftsDelete(ctx, tx, id); err != nil {
		return err
	}
	return tx.Commit()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanManual(s scanner) (*models.Manual, error) {
	var (
		m     models.Manual
		sub   sql.NullString
		tags  string
		links string
	)
	if err := s.Scan(&m.ID, &m.Title, &m.URL, &m.MainCategory, &sub, &tags, &links,
		&m.IsPublished, &m.OrderIndex, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	m.SubCategory = sub.String
	if err := json.Unmarshal([]byte(tags), &m.Tags); err != nil {
		return nil, fmt.Errorf("store: decode tags of %s: %w", m.ID, err)
	}
	if err := json.Unmarshal([]byte(links), &m.ReferenceLinks); err != nil {
		return nil, fmt.Errorf("store: decode reference links of %s: %w", m.ID, err)
	}
	if m.Tags == nil {
		m.Tags = []string{}
	}
	if m.ReferenceLinks == nil {
		m.ReferenceLinks = []models.ReferenceLink{}
	}
	return &m, nil
}

func scanManuals(rows *sql.Rows) ([]models.Manual, error) {
	defer rows.Close()
	out := make([]models.Manual, 0)
	for rows.Next() {
		m, err := scanManual(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

func encodeLists(m *models.Manual) (string, string, error) {
	if m.Tags == nil {
		m.Tags = []string{}
	}
	if m.ReferenceLinks == nil {
		m.ReferenceLinks = []models.ReferenceLink{}
	}
	tags, err := json.Marshal(m.Tags)
	if err != nil {
		return "", "", fmt.Errorf("store: encode tags: %w", err)
	}
	links, err := json.Marshal(m.ReferenceLinks)
	if err != nil {
		return "", "", fmt.Errorf("store: encode reference links: %w", err)
	}
	return string(tags), string(links), nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(q string) string {
	return "%" + likeEscaper.Replace(q) + "%"
}

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.ExtendedCode == sqlite3.ErrConstraintUnique || se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}
