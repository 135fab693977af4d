package api

import (
	"time"

	"github.com/starford/tebiki/internal/browse"
	"github.com/starford/tebiki/internal/manualservice"
	"github.com/starford/tebiki/internal/models"
	"github.com/starford/tebiki/internal/taxonomy"
)

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Password string `json:"password" example:"shared-secret" validate:"required"`
}

// AdminLoginRequest is the body of POST /api/admin/login.
type AdminLoginRequest struct {
	Email    string `json:"email" example:"admin@example.com" validate:"required"`
	Password string `json:"password" example:"secret" validate:"required"`
}

// SessionResponse is returned by the admin login.
type SessionResponse struct {
	Token     string    `json:"token" validate:"required"`
	ExpiresAt time.Time `json:"expires_at" validate:"required"`
}

// SuccessResponse acknowledges an action without payload.
type SuccessResponse struct {
	Success bool `json:"success" example:"true"`
}

// CategoriesResponse wraps the home page category list.
type CategoriesResponse struct {
	Categories []manualservice.CategorySummary `json:"categories" validate:"required"`
}

// GroupDTO is one group on a category page.
type GroupDTO struct {
	Key       string          `json:"key" example:"STEP2 給与情報の設定" validate:"required"`
	Anchor    string          `json:"anchor" example:"group-STEP2-給与情報の設定" validate:"required"`
	SortOrder int             `json:"sort_order" example:"2"`
	IsStep    bool            `json:"is_step"`
	Count     int             `json:"count" example:"3"`
	Manuals   []models.Manual `json:"manuals" validate:"required"`
}

// CategoryViewResponse is the grouped, filtered category page.
type CategoryViewResponse struct {
	Category taxonomy.Category `json:"category" validate:"required"`
	Mode     browse.Mode       `json:"mode" example:"step" validate:"required"`
	Groups   []GroupDTO        `json:"groups" validate:"required"`
	Filters  browse.Filters    `json:"filters"`
	Facets   browse.Facets     `json:"facets"`
	Total    int               `json:"total" example:"12"`
	Filtered int               `json:"filtered" example:"5"`
}

func newCategoryViewResponse(v *browse.CategoryView) CategoryViewResponse {
	groups := make([]GroupDTO, len(v.Groups))
	for i, g := range v.Groups {
		groups[i] = GroupDTO{
			Key:       g.Key,
			Anchor:    browse.Anchor(g.Key),
			SortOrder: g.SortOrder,
			IsStep:    g.IsStep,
			Count:     len(g.Manuals),
			Manuals:   g.Manuals,
		}
	}
	return CategoryViewResponse{
		Category: v.Category,
		Mode:     v.Mode,
		Groups:   groups,
		Filters:  v.Filters,
		Facets:   v.Facets,
		Total:    v.Total,
		Filtered: v.Filtered,
	}
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Query   string          `json:"query" example:"給与" validate:"required"`
	Results []models.Manual `json:"results" validate:"required"`
}

// ManualListResponse wraps the paginated admin manual listing.
type ManualListResponse struct {
	Manuals []models.Manual `json:"manuals" validate:"required"`
	Total   int             `json:"total" example:"42" validate:"required"`
}

// RequestDTO is a manual request with display labels.
type RequestDTO struct {
	models.ManualRequest
	UrgencyLabel string `json:"urgency_label" example:"高"`
	StatusLabel  string `json:"status_label" example:"未対応"`
}

func newRequestDTO(r *models.ManualRequest) RequestDTO {
	return RequestDTO{
		ManualRequest: *r,
		UrgencyLabel:  r.Urgency.Label(),
		StatusLabel:   r.Status.Label(),
	}
}

// RequestListResponse wraps the admin request listing.
type RequestListResponse struct {
	Requests []RequestDTO `json:"requests" validate:"required"`
}

// TaxonomyResponse exposes the category table and step rules.
type TaxonomyResponse struct {
	Categories []taxonomy.Category            `json:"categories" validate:"required"`
	Steps      map[string][]taxonomy.StepRule `json:"steps" validate:"required"`
	Audience   []string                       `json:"audience"`
	Plans      []string                       `json:"plans"`
}

func newTaxonomyResponse(tax *taxonomy.Taxonomy, steps *taxonomy.StepTable) TaxonomyResponse {
	rules := make(map[string][]taxonomy.StepRule)
	for _, name := range tax.Names() {
		if steps.Has(name) {
			rules[name] = steps.Rules(name)
		}
	}
	return TaxonomyResponse{
		Categories: tax.Categories(),
		Steps:      rules,
		Audience:   browse.AudienceValues(),
		Plans:      browse.PlanValues(),
	}
}
