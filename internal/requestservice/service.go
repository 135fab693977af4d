// Package requestservice handles the manual request intake form and the admin
// triage of submitted requests.
package requestservice

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/starford/tebiki/internal/apperr"
	"github.com/starford/tebiki/internal/metrics"
	"github.com/starford/tebiki/internal/models"
	"github.com/starford/tebiki/internal/notify"
	"github.com/starford/tebiki/internal/sse"
	"github.com/starford/tebiki/internal/store"
)

// Input is what a requester fills in.
type Input struct {
	RequesterName     string `json:"requester_name"`
	RequesterEmail    string `json:"requester_email"`
	Department        string `json:"department"`
	ManualTitle       string `json:"manual_title"`
	ManualDescription string `json:"manual_description"`
	Urgency           string `json:"urgency"`
	UseCase           string `json:"use_case"`
	ExpectedUsers     string `json:"expected_users"`
	AdditionalNotes   string `json:"additional_notes"`
}

// Validate checks required fields and formats. Urgency may be empty.
func (in Input) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.RequesterName, validation.Required, validation.RuneLength(1, 100)),
		validation.Field(&in.RequesterEmail, validation.Required, is.EmailFormat),
		validation.Field(&in.Department, validation.RuneLength(0, 100)),
		validation.Field(&in.ManualTitle, validation.Required, validation.RuneLength(1, 200)),
		validation.Field(&in.ManualDescription, validation.Required, validation.RuneLength(1, 5000)),
		validation.Field(&in.Urgency, validation.In(string(models.UrgencyLow), string(models.UrgencyMedium), string(models.UrgencyHigh))),
	)
}

// Update is an admin triage change. Nil fields are left untouched.
type Update struct {
	Status     *string `json:"status"`
	AdminNotes *string `json:"admin_notes"`
	ManualID   *string `json:"manual_id"`
}

// ManualLookup confirms that a linked manual exists.
type ManualLookup interface {
	GetManual(ctx context.Context, id string) (*models.Manual, error)
}

// Publisher receives request.updated changes.
type Publisher interface {
	PublishChange(resource, kind string, c sse.Change)
}

// Service stores requests and fans out notifications.
type Service struct {
	repo     store.RequestRepository
	manuals  ManualLookup
	notifier notify.Notifier
	events   Publisher
	metrics  *metrics.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates a request service. notifier, events and m may be nil.
func NewService(repo store.RequestRepository, manuals ManualLookup, notifier notify.Notifier, events Publisher, m *metrics.Metrics, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:     repo,
		manuals:  manuals,
		notifier: notifier,
		events:   events,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
	}
}

// Submit validates and stores a new request, then notifies. A failed
// notification is logged; the request is already accepted.
func (s *Service) Submit(ctx context.Context, in Input) (*models.ManualRequest, error) {
	in = trim(in)
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrInvalidInput, err)
	}
	r := &models.ManualRequest{
		RequesterName:     in.RequesterName,
		RequesterEmail:    in.RequesterEmail,
		Department:        in.Department,
		ManualTitle:       in.ManualTitle,
		ManualDescription: in.ManualDescription,
		Urgency:           models.Urgency(in.Urgency),
		UseCase:           in.UseCase,
		ExpectedUsers:     in.ExpectedUsers,
		AdditionalNotes:   in.AdditionalNotes,
		Status:            models.StatusPending,
	}
	if r.Urgency == "" {
		r.Urgency = models.UrgencyMedium
	}
	if err := s.repo.CreateRequest(ctx, r); err != nil {
		return nil, err
	}
	s.metrics.RequestSubmitted(string(r.Urgency))

	if s.notifier != nil {
		if err := s.notifier.RequestSubmitted(ctx, r); err != nil {
			s.logger.Error("request notification failed",
				slog.String("request_id", r.ID),
				slog.String("error", err.Error()),
			)
		}
	}
	return r, nil
}

// List returns requests newest first, optionally narrowed to one status.
func (s *Service) List(ctx context.Context, status string) ([]models.ManualRequest, error) {
	if status != "" && !validStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", apperr.ErrInvalidInput, status)
	}
	return s.repo.ListRequests(ctx, models.RequestStatus(status))
}

// Get returns one request.
func (s *Service) Get(ctx context.Context, id string) (*models.ManualRequest, error) {
	return s.repo.GetRequest(ctx, id)
}

// Update applies an admin triage change. Moving to completed stamps
// completed_at; moving away from it clears the stamp.
func (s *Service) Update(ctx context.Context, id string, u Update) (*models.ManualRequest, error) {
	r, err := s.repo.GetRequest(ctx, id)
	if err != nil {
		return nil, err
	}

	if u.Status != nil {
		st := strings.TrimSpace(*u.Status)
		if !validStatus(st) {
			return nil, fmt.Errorf("%w: %w", apperr.ErrInvalidInput, validation.Errors{"status": fmt.Errorf("unknown status %q", st)})
		}
		next := models.RequestStatus(st)
		switch {
		case next == models.StatusCompleted && r.Status != models.StatusCompleted:
			t := s.now().UTC()
			r.CompletedAt = &t
		case next != models.StatusCompleted:
			r.CompletedAt = nil
		}
		r.Status = next
	}
	if u.AdminNotes != nil {
		r.AdminNotes = strings.TrimSpace(*u.AdminNotes)
	}
	if u.ManualID != nil {
		mid := strings.TrimSpace(*u.ManualID)
		if mid != "" && s.manuals != nil {
			if _, err := s.manuals.GetManual(ctx, mid); err != nil {
				return nil, fmt.Errorf("%w: %w", apperr.ErrInvalidInput, validation.Errors{"manual_id": err})
			}
		}
		r.ManualID = mid
	}

	if err := s.repo.UpdateRequest(ctx, r); err != nil {
		return nil, err
	}
	if s.events != nil {
		s.events.PublishChange(sse.ResourceRequest, sse.KindUpdated, sse.Change{ID: r.ID})
	}
	return r, nil
}

func validStatus(s string) bool {
	switch models.RequestStatus(s) {
	case models.StatusPending, models.StatusInProgress, models.StatusCompleted, models.StatusRejected:
		return true
	}
	return false
}

func trim(in Input) Input {
	in.RequesterName = strings.TrimSpace(in.RequesterName)
	in.RequesterEmail = strings.TrimSpace(in.RequesterEmail)
	in.Department = strings.TrimSpace(in.Department)
	in.ManualTitle = strings.TrimSpace(in.ManualTitle)
	in.ManualDescription = strings.TrimSpace(in.ManualDescription)
	in.Urgency = strings.TrimSpace(in.Urgency)
	in.UseCase = strings.TrimSpace(in.UseCase)
	in.ExpectedUsers = strings.TrimSpace(in.ExpectedUsers)
	in.AdditionalNotes = strings.TrimSpace(in.AdditionalNotes)
	return in
}
