package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/starford/tebiki/internal/apperr"
	"github.com/starford/tebiki/internal/models"
)

const requestColumns = `id, requester_name, requester_email, department, manual_title,
	manual_description, urgency, use_case, expected_users, additional_notes, status,
	admin_notes, manual_id, created_at, updated_at, completed_at`

// CreateRequest inserts r, assigning an id and timestamps. An empty status is
// stored as pending.
func (db *DB) CreateRequest(ctx context.Context, r *models.ManualRequest) error {
	now := time.Now().UTC()
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Status == "" {
		r.Status = models.StatusPending
	}
	if r.Urgency == "" {
		r.Urgency = models.UrgencyMedium
	}
	r.CreatedAt, r.UpdatedAt = now, now

	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO manual_requests (`+requestColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.RequesterName, r.RequesterEmail, nullString(r.Department), r.ManualTitle,
		r.ManualDescription, r.Urgency, nullString(r.UseCase), nullString(r.ExpectedUsers),
		nullString(r.AdditionalNotes), r.Status, nullString(r.AdminNotes), nullString(r.ManualID),
		r.CreatedAt, r.UpdatedAt, nullTime(r.CompletedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.ErrAlreadyExists
		}
		return fmt.Errorf("store: insert request: %w", err)
	}
	return nil
}

// ListRequests returns requests newest first. An empty status lists all.
func (db *DB) ListRequests(ctx context.Context, status models.RequestStatus) ([]models.ManualRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM manual_requests`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC, rowid DESC`

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list requests: %w", err)
	}
	defer rows.Close()

	out := make([]models.ManualRequest, 0)
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

// GetRequest returns one request by id.
func (db *DB) GetRequest(ctx context.Context, id string) (*models.ManualRequest, error) {
	row := db.conn.QueryRowContext(ctx, `SELECT `+requestColumns+` FROM manual_requests WHERE id = ?`, id)
	r, err := scanRequest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get request: %w", err)
	}
	return r, nil
}

// UpdateRequest persists the triage fields of r (status, admin notes, linked
// manual, completed_at) and bumps updated_at.
func (db *DB) UpdateRequest(ctx context.Context, r *models.ManualRequest) error {
	r.UpdatedAt = time.Now().UTC()
	res, err := db.conn.ExecContext(ctx, `
		UPDATE manual_requests SET
			status       = ?,
			admin_notes  = ?,
			manual_id    = ?,
			completed_at = ?,
			updated_at   = ?
		WHERE id = ?
	`, r.Status, nullString(r.AdminNotes), nullString(r.ManualID), nullTime(r.CompletedAt), r.UpdatedAt, r.ID)
	if err != nil {
		return fmt.Errorf("store: update request: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func scanRequest(s scanner) (*models.ManualRequest, error) {
	var (
		r                                      models.ManualRequest
		dept, useCase, users, notes, adminNote sql.NullString
		manualID                               sql.NullString
		completed                              sql.NullTime
	)
	if err := s.Scan(&r.ID, &r.RequesterName, &r.RequesterEmail, &dept, &r.ManualTitle,
		&r.ManualDescription, &r.Urgency, &useCase, &users, &notes, &r.Status,
		&adminNote, &manualID, &r.CreatedAt, &r.UpdatedAt, &completed); err != nil {
		return nil, err
	}
	r.Department = dept.String
	r.UseCase = useCase.String
	r.ExpectedUsers = users.String
	r.AdditionalNotes = notes.String
	r.AdminNotes = adminNote.String
	r.ManualID = manualID.String
	if completed.Valid {
		t := completed.Time
		r.CompletedAt = &t
	}
	return &r, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
