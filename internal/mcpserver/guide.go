package mcpserver

import (
	"fmt"
	"strings"

	"github.com/starford/tebiki/internal/browse"
	"github.com/starford/tebiki/internal/taxonomy"
)

// TaxonomyGuide renders the category tree, step rules and filter values as
// Markdown for LLM consumers.
func TaxonomyGuide(tax *taxonomy.Taxonomy, steps *taxonomy.StepTable) string {
	var b strings.Builder
	b.WriteString("# Tebiki Category Taxonomy\n\n")
	b.WriteString("Manuals belong to exactly one category. Categories with step rules are shown\n")
	b.WriteString("as numbered steps; the others are grouped by subcategory in the order below.\n")
	b.WriteString("Anything that matches neither is listed under \"" + browse.OtherGroupKey + "\" at the end.\n")

	b.WriteString("\n## Categories\n")
	for _, c := range tax.Categories() {
		fmt.Fprintf(&b, "\n### %s (`%s`)\n", c.Name, c.Slug)
		if steps.Has(c.Name) {
			b.WriteString("\nSteps:\n")
			seen := map[int]bool{}
			for _, r := range steps.Rules(c.Name) {
				if seen[r.Step.Number] {
					continue
				}
				seen[r.Step.Number] = true
				fmt.Fprintf(&b, "- %s\n", r.Step.Label())
			}
			continue
		}
		if len(c.Subcategories) == 0 {
			continue
		}
		b.WriteString("\nSubcategories:\n")
		for _, sub := range c.Subcategories {
			fmt.Fprintf(&b, "- %s\n", sub)
		}
	}

	b.WriteString("\n## Filters\n\n")
	b.WriteString("Filters match tags exactly. At most one value per dimension is active.\n\n")
	fmt.Fprintf(&b, "- audience: %s\n", strings.Join(browse.AudienceValues(), ", "))
	fmt.Fprintf(&b, "- plan: %s\n", strings.Join(browse.PlanValues(), ", "))
	return b.String()
}
