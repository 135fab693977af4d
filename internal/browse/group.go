package browse

import (
	"slices"

	"github.com/starford/tebiki/internal/models"
	"github.com/starford/tebiki/internal/taxonomy"
)

// OtherGroupKey is the bucket for manuals that match no step or subcategory.
const OtherGroupKey = "その他"

// OtherSortOrder forces the "Other" bucket and unknown subcategories last.
const OtherSortOrder = 999

// Mode selects how a category's manuals are grouped.
type Mode string

const (
	ModeStep        Mode = "step"
	ModeSubcategory Mode = "subcategory"
)

// Group is a derived bucket of manuals sharing a step or subcategory.
type Group struct {
	Key       string          `json:"key"`
	SortOrder int             `json:"sort_order"`
	IsStep    bool            `json:"is_step"`
	Manuals   []models.Manual `json:"manuals"`
}

// ModeFor reports the grouping mode used for category.
func ModeFor(category taxonomy.Category, steps *taxonomy.StepTable) Mode {
	if steps != nil && steps.Has(category.Name) {
		return ModeStep
	}
	return ModeSubcategory
}

// GroupManuals partitions manuals into ordered groups for category.
//
// Categories present in the step table are grouped by inferred step, everything
// else by subcategory. Manuals are visited once; within a group they keep input
// order, which the caller supplies sorted by order_index. Groups are then sorted
// by SortOrder, ties keeping first-seen order. Groups are only created when a
// manual lands in them, so empty groups never appear.
func GroupManuals(manuals []models.Manual, category taxonomy.Category, steps *taxonomy.StepTable) ([]Group, Mode) {
	mode := ModeFor(category, steps)

	groups := make([]Group, 0)
	index := make(map[string]int)
	for _, m := range manuals {
		var key string
		var order int
		var isStep bool
		if mode == ModeStep {
			key, order, isStep = stepKey(category, steps, m)
		} else {
			key, order = subcategoryKey(category, m)
		}

		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{Key: key, SortOrder: order, IsStep: isStep})
		}
		groups[i].Manuals = append(groups[i].Manuals, m)
	}

	slices.SortStableFunc(groups, func(a, b Group) int {
		return a.SortOrder - b.SortOrder
	})
	return groups, mode
}

func stepKey(category taxonomy.Category, steps *taxonomy.StepTable, m models.Manual) (string, int, bool) {
	s, ok := steps.Infer(category.Name, m.SubCategory)
	if !ok {
		return OtherGroupKey, OtherSortOrder, false
	}
	return s.Label(), s.Number, true
}

func subcategoryKey(category taxonomy.Category, m models.Manual) (string, int) {
	if m.SubCategory == "" || m.SubCategory == OtherGroupKey {
		return OtherGroupKey, OtherSortOrder
	}
	if i := category.SubcategoryIndex(m.SubCategory); i >= 0 {
		return m.SubCategory, i
	}
	return m.SubCategory, OtherSortOrder
}
