package taxonomy

import (
	"fmt"
	"strings"
)

// Step is an ordinal stage inside a step-mode category.
type Step struct {
	Number int    `json:"number"`
	Name   string `json:"name"`
}

// Label renders the step as "STEP{n} {name}".
func (s Step) Label() string {
	return fmt.Sprintf("STEP%d %s", s.Number, s.Name)
}

// StepRule maps a subcategory phrasing (or fragment of one) to a step.
type StepRule struct {
	Match string `json:"match"`
	Step  Step   `json:"step"`
}

// StepTable holds, per main category, the rules used to infer a step from the
// author-entered subcategory. Several rules may point at the same step.
type StepTable struct {
	rules map[string][]StepRule
	exact map[string]map[string]Step
}

// NewStepTable builds a table from per-category rule lists. Rule order is kept:
// partial matching walks the rules as declared and stops at the first hit.
func NewStepTable(rules map[string][]StepRule) *StepTable {
	t := &StepTable{
		rules: make(map[string][]StepRule, len(rules)),
		exact: make(map[string]map[string]Step, len(rules)),
	}
	for cat, rs := range rules {
		cp := make([]StepRule, len(rs))
		copy(cp, rs)
		t.rules[cat] = cp

		ex := make(map[string]Step, len(rs))
		for _, r := range rs {
			if _, dup := ex[r.Match]; !dup {
				ex[r.Match] = r.Step
			}
		}
		t.exact[cat] = ex
	}
	return t
}

// Has reports whether mainCategory is laid out by steps.
func (t *StepTable) Has(mainCategory string) bool {
	_, ok := t.rules[mainCategory]
	return ok
}

// Rules returns a copy of the ordered rules for mainCategory.
func (t *StepTable) Rules(mainCategory string) []StepRule {
	rs, ok := t.rules[mainCategory]
	if !ok {
		return nil
	}
	out := make([]StepRule, len(rs))
	copy(out, rs)
	return out
}

// Infer resolves the step for a manual's subcategory.
//
// The trimmed subcategory is first matched exactly against the rule keys. Failing
// that, rules are scanned in declared order and the first one where either string
// contains the other wins. The substring pass is deliberately loose so that
// prefixes like "（STEP2）" or trailing notes do not break grouping; it will produce
// false positives if a short key is a fragment of an unrelated subcategory.
func (t *StepTable) Infer(mainCategory, subCategory string) (Step, bool) {
	sub := strings.TrimSpace(subCategory)
	if sub == "" {
		return Step{}, false
	}
	main := strings.TrimSpace(mainCategory)
	rs, ok := t.rules[main]
	if !ok {
		return Step{}, false
	}
	if s, ok := t.exact[main][sub]; ok {
		return s, true
	}
	for _, r := range rs {
		if strings.Contains(sub, r.Match) || strings.Contains(r.Match, sub) {
			return r.Step, true
		}
	}
	return Step{}, false
}

var defaultSteps = NewStepTable(map[string][]StepRule{
	OnboardingRegistration: {
		{Match: "本人に情報を登録してもらう場合", Step: Step{1, "本人に本人情報を登録してもらう場合"}},
		{Match: "管理者が情報を登録する場合", Step: Step{1, "本人に本人情報を登録してもらう場合"}},
		{Match: "給与情報の設定", Step: Step{2, "給与情報の設定"}},
		{Match: "通勤手当の設定", Step: Step{3, "通勤手当の設定"}},
		{Match: "税金関係", Step: Step{4, "税金関係"}},
		{Match: "保険関係", Step: Step{5, "保険関係"}},
		{Match: "マイナンバー", Step: Step{6, "マイナンバー"}},
	},
	OnboardingAfter: {
		{Match: "住民税を特別徴収に切り替えましょう", Step: Step{1, "住民税を特別徴収に切り替えましょう"}},
		{Match: "（STEP2）住民税の通知書の内容をfreeeに登録しましょう", Step: Step{2, "住民税の通知書の内容をfreeeに登録しましょう"}},
		{Match: "社会保険の情報を反映する方法　※手続き完了したら設定しましょう！", Step: Step{3, "社会保険の情報を反映する方法　※手続き完了したら設定しましょう！"}},
		{Match: "雇用保険の情報を反映する方法　※手続き完了したら設定しましょう！", Step: Step{4, "雇用保険の情報を反映する方法　※手続き完了したら設定しましょう！"}},
	},
})

// DefaultSteps returns the compiled-in step table.
func DefaultSteps() *StepTable { return defaultSteps }
