// Package browse turns a flat list of published manuals into the grouped,
// filtered structure rendered on a category page.
//
// Everything here is a pure function of its inputs: no I/O, no shared state.
package browse

import "github.com/starford/tebiki/internal/models"

// Audience tags.
const (
	AudienceAdmin    = "管理者向け"
	AudienceEmployee = "従業員向け"
)

// Plan tags, in the order the plan chips are shown.
const (
	PlanMinimum      = "ミニマム"
	PlanStarter      = "スターター"
	PlanStandard     = "スタンダード"
	PlanProfessional = "プロフェッショナル"
	PlanAdvance      = "アドバンス"
)

var (
	audienceValues = []string{AudienceAdmin, AudienceEmployee}
	planValues     = []string{PlanMinimum, PlanStarter, PlanStandard, PlanProfessional, PlanAdvance}
)

// AudienceValues returns the recognised audience tags.
func AudienceValues() []string { return append([]string(nil), audienceValues...) }

// PlanValues returns the recognised plan tags.
func PlanValues() []string { return append([]string(nil), planValues...) }

// Filters is the active facet selection. An empty field means "not filtering".
type Filters struct {
	Audience string `json:"audience"`
	Plan     string `json:"plan"`
}

// Active reports whether any facet is selected.
func (f Filters) Active() bool {
	return f.Audience != "" || f.Plan != ""
}

// Count returns the number of selected facets.
func (f Filters) Count() int {
	n := 0
	if f.Audience != "" {
		n++
	}
	if f.Plan != "" {
		n++
	}
	return n
}

// ToggleAudience selects v, or clears the audience facet if v is already selected.
func (f Filters) ToggleAudience(v string) Filters {
	f.Audience = toggle(f.Audience, v)
	return f
}

// TogglePlan selects v, or clears the plan facet if v is already selected.
func (f Filters) TogglePlan(v string) Filters {
	f.Plan = toggle(f.Plan, v)
	return f
}

func toggle(current, v string) string {
	if current == v {
		return ""
	}
	return v
}

// ApplyFilters keeps manuals carrying both the selected audience tag and the
// selected plan tag. Tag matching is exact. Input order is preserved and the
// input slice is not modified.
func ApplyFilters(manuals []models.Manual, f Filters) []models.Manual {
	out := make([]models.Manual, 0, len(manuals))
	for _, m := range manuals {
		if f.Audience != "" && !m.HasTag(f.Audience) {
			continue
		}
		if f.Plan != "" && !m.HasTag(f.Plan) {
			continue
		}
		out = append(out, m)
	}
	return out
}
