package store

import (
	"context"

	"github.com/starford/tebiki/internal/models"
)

// ManualRepository is the persistence surface used by the manual service.
type ManualRepository interface {
	ListPublishedByCategory(ctx context.Context, mainCategory string) ([]models.Manual, error)
	CountPublishedByCategory(ctx context.Context) (map[string]int, error)
	GetManual(ctx context.Context, id string) (*models.Manual, error)
	ListManuals(ctx context.Context, f ManualFilter) ([]models.Manual, int, error)
	CreateManual(ctx context.Context, m *models.Manual) error
	UpdateManual(ctx context.Context, m *models.Manual) error
	DeleteManual(ctx context.Context, id string) error
	SearchPublished(ctx context.Context, q string, limit int) ([]models.Manual, error)
}

// RequestRepository is the persistence surface used by the request service.
type RequestRepository interface {
	CreateRequest(ctx context.Context, r *models.ManualRequest) error
	ListRequests(ctx context.Context, status models.RequestStatus) ([]models.ManualRequest, error)
	GetRequest(ctx context.Context, id string) (*models.ManualRequest, error)
	UpdateRequest(ctx context.Context, r *models.ManualRequest) error
}

// Verify *DB satisfies both repositories at compile time.
var (
	_ ManualRepository  = (*DB)(nil)
	_ RequestRepository = (*DB)(nil)
)
