package browse

import (
	"regexp"

	"github.com/starford/tebiki/internal/models"
	"github.com/starford/tebiki/internal/taxonomy"
)

// FacetOption is one filter chip.
type FacetOption struct {
	Value  string `json:"value"`
	Active bool   `json:"active"`
	// Toggle is the selection that results from clicking this chip.
	Toggle Filters `json:"toggle"`
}

// Facets lists the chips for both filter dimensions.
type Facets struct {
	Audience []FacetOption `json:"audience"`
	Plan     []FacetOption `json:"plan"`
}

// CategoryView is the fully composed model for one category page.
type CategoryView struct {
	Category taxonomy.Category `json:"category"`
	Mode     Mode              `json:"mode"`
	Groups   []Group           `json:"groups"`
	Filters  Filters           `json:"filters"`
	Facets   Facets            `json:"facets"`
	Total    int               `json:"total"`
	Filtered int               `json:"filtered"`
}

// Compose filters manuals, groups the survivors and attaches facet chips for
// the current selection. manuals must already be restricted to the category's
// published entries and ordered by order_index.
func Compose(category taxonomy.Category, steps *taxonomy.StepTable, manuals []models.Manual, f Filters) *CategoryView {
	filtered := ApplyFilters(manuals, f)
	groups, mode := GroupManuals(filtered, category, steps)
	return &CategoryView{
		Category: category,
		Mode:     mode,
		Groups:   groups,
		Filters:  f,
		Facets:   FacetsFor(f),
		Total:    len(manuals),
		Filtered: len(filtered),
	}
}

// FacetsFor builds the chip set for the selection f.
func FacetsFor(f Filters) Facets {
	fs := Facets{
		Audience: make([]FacetOption, 0, len(audienceValues)),
		Plan:     make([]FacetOption, 0, len(planValues)),
	}
	for _, v := range audienceValues {
		fs.Audience = append(fs.Audience, FacetOption{Value: v, Active: f.Audience == v, Toggle: f.ToggleAudience(v)})
	}
	for _, v := range planValues {
		fs.Plan = append(fs.Plan, FacetOption{Value: v, Active: f.Plan == v, Toggle: f.TogglePlan(v)})
	}
	return fs
}

// StepGroups returns the groups that correspond to an inferred step, in order.
func (v *CategoryView) StepGroups() []Group {
	var out []Group
	for _, g := range v.Groups {
		if g.IsStep {
			out = append(out, g)
		}
	}
	return out
}

// Covers the ideographic space used in several subcategory names.
var whitespaceRe = regexp.MustCompile(`[\s\p{Z}]+`)

// Anchor returns the in-page anchor id for a group key.
func Anchor(key string) string {
	return "group-" + whitespaceRe.ReplaceAllString(key, "-")
}
