// Package taxonomy holds the hand-authored category tree of the portal and the
// step tables used to lay out onboarding-style categories.
//
// Both tables are built once at package initialisation and never mutated; every
// accessor hands out copies so callers cannot alter the canonical data.
package taxonomy

import "slices"

// Category is a top-level bucket of manuals.
type Category struct {
	Key           string   `json:"key"`
	Name          string   `json:"name"`
	Label         string   `json:"label"`
	Slug          string   `json:"slug"`
	Subcategories []string `json:"subcategories"`
}

func (c Category) clone() Category {
	c.Subcategories = slices.Clone(c.Subcategories)
	if c.Subcategories == nil {
		c.Subcategories = []string{}
	}
	return c
}

// SubcategoryIndex returns the declared position of sub, or -1 when the category
// does not list it.
func (c Category) SubcategoryIndex(sub string) int {
	return slices.Index(c.Subcategories, sub)
}

// Taxonomy is an ordered, immutable set of categories with name and slug indexes.
type Taxonomy struct {
	categories []Category
	byKey      map[string]int
	byName     map[string]int
	bySlug     map[string]int
}

// New builds a Taxonomy from categories in display order. Later duplicates of a
// key, name or slug never shadow the first declaration.
func New(categories []Category) *Taxonomy {
	t := &Taxonomy{
		categories: make([]Category, len(categories)),
		byKey:      make(map[string]int, len(categories)),
		byName:     make(map[string]int, len(categories)),
		bySlug:     make(map[string]int, len(categories)),
	}
	for i, c := range categories {
		t.categories[i] = c.clone()
		if _, ok := t.byKey[c.Key]; !ok {
			t.byKey[c.Key] = i
		}
		if _, ok := t.byName[c.Name]; !ok {
			t.byName[c.Name] = i
		}
		if _, ok := t.bySlug[c.Slug]; !ok {
			t.bySlug[c.Slug] = i
		}
	}
	return t
}

// Categories returns every category in display order.
func (t *Taxonomy) Categories() []Category {
	out := make([]Category, len(t.categories))
	for i, c := range t.categories {
		out[i] = c.clone()
	}
	return out
}

// Len reports the number of categories.
func (t *Taxonomy) Len() int { return len(t.categories) }

// BySlug looks a category up by its URL slug.
func (t *Taxonomy) BySlug(slug string) (Category, bool) {
	return t.lookup(t.bySlug, slug)
}

// ByName looks a category up by its canonical name. Matching is exact; no
// trimming or normalisation is applied.
func (t *Taxonomy) ByName(name string) (Category, bool) {
	return t.lookup(t.byName, name)
}

// ByKey looks a category up by its internal key.
func (t *Taxonomy) ByKey(key string) (Category, bool) {
	return t.lookup(t.byKey, key)
}

// SubCategories returns a copy of the ordered subcategory list for key, or nil
// when the key is unknown.
func (t *Taxonomy) SubCategories(key string) []string {
	c, ok := t.ByKey(key)
	if !ok {
		return nil
	}
	return c.Subcategories
}

// Names returns the canonical names of all categories in display order.
func (t *Taxonomy) Names() []string {
	out := make([]string, len(t.categories))
	for i, c := range t.categories {
		out[i] = c.Name
	}
	return out
}

// Pair is a (main category, subcategory) combination declared in the taxonomy.
type Pair struct {
	MainCategory string `json:"main_category"`
	SubCategory  string `json:"sub_category"`
}

// Pairs lists every declared (main, sub) combination in display order.
// Categories without subcategories contribute nothing.
func (t *Taxonomy) Pairs() []Pair {
	var out []Pair
	for _, c := range t.categories {
		for _, s := range c.Subcategories {
			out = append(out, Pair{MainCategory: c.Name, SubCategory: s})
		}
	}
	return out
}

func (t *Taxonomy) lookup(idx map[string]int, k string) (Category, bool) {
	i, ok := idx[k]
	if !ok {
		return Category{}, false
	}
	return t.categories[i].clone(), true
}

var defaultTaxonomy = New(builtinCategories)

// Default returns the compiled-in portal taxonomy.
func Default() *Taxonomy { return defaultTaxonomy }
