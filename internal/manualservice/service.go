// Package manualservice serves the public catalog (category pages, manual
// detail, search) and the admin manual CRUD on top of the store.
package manualservice

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/starford/tebiki/internal/apperr"
	"github.com/starford/tebiki/internal/browse"
	"github.com/starford/tebiki/internal/checksum"
	"github.com/starford/tebiki/internal/metrics"
	"github.com/starford/tebiki/internal/models"
	"github.com/starford/tebiki/internal/sse"
	"github.com/starford/tebiki/internal/store"
	"github.com/starford/tebiki/internal/taxonomy"
)

// EmptyMessage is shown for categories without published manuals.
const EmptyMessage = "コンテンツは準備中です"

// SortTitle orders the admin listing by title using Japanese collation.
const SortTitle = "title"

// Publisher receives change notifications for connected dashboards.
type Publisher interface {
	PublishChange(resource, kind string, c sse.Change)
}

// CategorySummary is one entry on the home page.
type CategorySummary struct {
	taxonomy.Category
	Count   int    `json:"count"`
	Step    bool   `json:"step"`
	Empty   bool   `json:"empty"`
	Message string `json:"message,omitempty"`
}

// ManualDetail is a manual with the checksum used for If-Match.
type ManualDetail struct {
	models.Manual
	Checksum string `json:"checksum"`
}

// ListQuery is the admin listing request.
type ListQuery struct {
	Category    string
	SubCategory string
	Tag         string
	// Status is "published", "draft" or empty for both.
	Status string
	Query  string
	Sort   string
	Limit  int
	Offset int
}

// Page is one page of the admin listing.
type Page struct {
	Items []models.Manual `json:"items"`
	Total int             `json:"total"`
}

// Service coordinates the taxonomy, the browse engines and the store.
type Service struct {
	repo    store.ManualRepository
	tax     *taxonomy.Taxonomy
	steps   *taxonomy.StepTable
	events  Publisher
	metrics *metrics.Metrics
}

// NewService creates a manual service. events and m may be nil.
func NewService(repo store.ManualRepository, tax *taxonomy.Taxonomy, steps *taxonomy.StepTable, events Publisher, m *metrics.Metrics) *Service {
	return &Service{repo: repo, tax: tax, steps: steps, events: events, metrics: m}
}

// Taxonomy returns the category table the service browses.
func (s *Service) Taxonomy() *taxonomy.Taxonomy { return s.tax }

// Steps returns the step inference table.
func (s *Service) Steps() *taxonomy.StepTable { return s.steps }

// Categories lists every category in taxonomy order with its published count.
func (s *Service) Categories(ctx context.Context) ([]CategorySummary, error) {
	counts, err := s.repo.CountPublishedByCategory(ctx)
	if err != nil {
		return nil, err
	}
	cats := s.tax.Categories()
	out := make([]CategorySummary, len(cats))
	for i, c := range cats {
		n := counts[c.Name]
		out[i] = CategorySummary{
			Category: c,
			Count:    n,
			Step:     s.steps.Has(c.Name),
			Empty:    n == 0,
		}
		if n == 0 {
			out[i].Message = EmptyMessage
		}
	}
	return out, nil
}

// ValidateFilters rejects facet values the portal does not offer.
func ValidateFilters(f browse.Filters) error {
	if f.Audience != "" && !slices.Contains(browse.AudienceValues(), f.Audience) {
		return fmt.Errorf("%w: unknown audience %q", apperr.ErrInvalidInput, f.Audience)
	}
	if f.Plan != "" && !slices.Contains(browse.PlanValues(), f.Plan) {
		return fmt.Errorf("%w: unknown plan %q", apperr.ErrInvalidInput, f.Plan)
	}
	return nil
}

// CategoryView composes the page for the category at slug.
func (s *Service) CategoryView(ctx context.Context, slug string, f browse.Filters) (*browse.CategoryView, error) {
	cat, ok := s.tax.BySlug(slug)
	if !ok {
		return nil, apperr.ErrNotFound
	}
	if err := ValidateFilters(f); err != nil {
		return nil, err
	}
	manuals, err := s.repo.ListPublishedByCategory(ctx, cat.Name)
	if err != nil {
		return nil, err
	}
	s.metrics.CategoryViewed(cat.Slug, f.Active())
	return browse.Compose(cat, s.steps, manuals, f), nil
}

// GetPublished returns a published manual. Drafts look missing.
func (s *Service) GetPublished(ctx context.Context, id string) (*models.Manual, error) {
	m, err := s.repo.GetManual(ctx, id)
	if err != nil {
		return nil, err
	}
	if !m.IsPublished {
		return nil, apperr.ErrNotFound
	}
	return m, nil
}

// Search finds published manuals by title, category, subcategory or exact tag.
func (s *Service) Search(ctx context.Context, q string, limit int) ([]models.Manual, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []models.Manual{}, nil
	}
	out, err := s.repo.SearchPublished(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	s.metrics.Searched(len(out))
	return out, nil
}

// List returns one page of manuals for the admin screen.
func (s *Service) List(ctx context.Context, q ListQuery) (*Page, error) {
	f := store.ManualFilter{
		Category:    q.Category,
		SubCategory: q.SubCategory,
		Tag:         q.Tag,
		Query:       q.Query,
		Sort:        q.Sort,
		Limit:       q.Limit,
		Offset:      q.Offset,
	}
	switch q.Status {
	case "published":
		f.Published = ptr(true)
	case "draft":
		f.Published = ptr(false)
	case "":
	default:
		return nil, fmt.Errorf("%w: unknown status %q", apperr.ErrInvalidInput, q.Status)
	}
	switch q.Sort {
	case "", store.SortOrderIndex, store.SortCreatedAt, store.SortUpdatedAt:
	case SortTitle:
		// The store cannot collate Japanese; sort the full set here and page after.
		f.Sort, f.Limit, f.Offset = "", 0, 0
	default:
		return nil, fmt.Errorf("%w: unknown sort %q", apperr.ErrInvalidInput, q.Sort)
	}

	items, total, err := s.repo.ListManuals(ctx, f)
	if err != nil {
		return nil, err
	}
	if q.Sort == SortTitle {
		SortByTitle(items)
		items = paginate(items, q.Limit, q.Offset)
	}
	return &Page{Items: items, Total: total}, nil
}

// SortByTitle orders manuals by title in Japanese collation order.
func SortByTitle(ms []models.Manual) {
	c := collate.New(language.Japanese)
	slices.SortStableFunc(ms, func(a, b models.Manual) int {
		return c.CompareString(a.Title, b.Title)
	})
}

func paginate(ms []models.Manual, limit, offset int) []models.Manual {
	offset = max(offset, 0)
	if offset >= len(ms) {
		return []models.Manual{}
	}
	ms = ms[offset:]
	if limit > 0 && limit < len(ms) {
		ms = ms[:limit]
	}
	return ms
}

// Get returns any manual, published or not.
func (s *Service) Get(ctx context.Context, id string) (*ManualDetail, error) {
	m, err := s.repo.GetManual(ctx, id)
	if err != nil {
		return nil, err
	}
	return detail(m)
}

// Create validates in and stores a new manual.
func (s *Service) Create(ctx context.Context, in ManualInput) (*ManualDetail, error) {
	in.normalize()
	if err := in.validate(s.tax.Names()); err != nil {
		return nil, err
	}
	var m models.Manual
	in.apply(&m)
	if err := s.repo.CreateManual(ctx, &m); err != nil {
		return nil, err
	}
	s.changed(sse.KindCreated, &m)
	return detail(&m)
}

// Update replaces the editable fields of a manual. A non-empty ifMatch must
// match the current checksum.
func (s *Service) Update(ctx context.Context, id string, in ManualInput, ifMatch string) (*ManualDetail, error) {
	existing, err := s.repo.GetManual(ctx, id)
	if err != nil {
		return nil, err
	}
	current, err := detail(existing)
	if err != nil {
		return nil, err
	}
	if !checksum.Match(ifMatch, current.Checksum) {
		return nil, apperr.ErrConflict
	}

	in.normalize()
	if err := in.validate(s.tax.Names()); err != nil {
		return nil, err
	}
	in.apply(existing)
	if err := s.repo.UpdateManual(ctx, existing); err != nil {
		return nil, err
	}
	s.changed(sse.KindUpdated, existing)
	return detail(existing)
}

// Delete removes a manual.
func (s *Service) Delete(ctx context.Context, id string) error {
	m, err := s.repo.GetManual(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteManual(ctx, id); err != nil {
		return err
	}
	s.changed(sse.KindDeleted, m)
	return nil
}

func (s *Service) changed(kind string, m *models.Manual) {
	s.metrics.ManualWritten(kind)
	if s.events != nil {
		s.events.PublishChange(sse.ResourceManual, kind, sse.Change{ID: m.ID, Category: m.MainCategory})
	}
}

func detail(m *models.Manual) (*ManualDetail, error) {
	cs, err := checksum.Of(m)
	if err != nil {
		return nil, err
	}
	return &ManualDetail{Manual: *m, Checksum: cs}, nil
}

func ptr[T any](v T) *T { return &v }
