package taxonomy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Lookups(t *testing.T) {
	tx := Default()
	require.Equal(t, 15, tx.Len())

	c, ok := tx.BySlug("onboarding-registration")
	require.True(t, ok)
	assert.Equal(t, OnboardingRegistration, c.Name)
	assert.Equal(t, "onboarding_registration", c.Key)

	c, ok = tx.ByName("退職")
	require.True(t, ok)
	assert.Equal(t, "resignation", c.Slug)

	_, ok = tx.BySlug("no-such-slug")
	assert.False(t, ok)
	_, ok = tx.ByName("退職 ")
	assert.False(t, ok, "name lookup must not normalise")
}

func TestDefault_SlugsAndNamesUnique(t *testing.T) {
	slugs := map[string]bool{}
	names := map[string]bool{}
	for _, c := range Default().Categories() {
		assert.False(t, slugs[c.Slug], "duplicate slug %q", c.Slug)
		assert.False(t, names[c.Name], "duplicate name %q", c.Name)
		slugs[c.Slug] = true
		names[c.Name] = true
	}
}

func TestSubCategories_ReturnsCopy(t *testing.T) {
	tx := Default()
	subs := tx.SubCategories("leave")
	require.Equal(t, []string{"正社員の有給休暇", "パートの有給休暇", "特別休暇"}, subs)

	subs[0] = "changed"
	assert.Equal(t, "正社員の有給休暇", tx.SubCategories("leave")[0])

	c, _ := tx.ByKey("leave")
	c.Subcategories[1] = "changed too"
	assert.Equal(t, "パートの有給休暇", tx.SubCategories("leave")[1])

	assert.Nil(t, tx.SubCategories("missing"))
	assert.Empty(t, tx.SubCategories("flex"))
}

func TestNew_FirstDeclarationWins(t *testing.T) {
	tx := New([]Category{
		{Key: "a", Name: "A", Slug: "a", Subcategories: []string{"x"}},
		{Key: "b", Name: "A", Slug: "b"},
	})
	c, ok := tx.ByName("A")
	require.True(t, ok)
	assert.Equal(t, "a", c.Key)
}

func TestPairs(t *testing.T) {
	tx := New([]Category{
		{Key: "a", Name: "A", Slug: "a", Subcategories: []string{"x", "y"}},
		{Key: "b", Name: "B", Slug: "b"},
	})
	assert.Equal(t, []Pair{{"A", "x"}, {"A", "y"}}, tx.Pairs())
}

func TestSubcategoryIndex(t *testing.T) {
	c, _ := Default().ByKey("resignation")
	assert.Equal(t, 1, c.SubcategoryIndex("退職日以降の対応するべきこと"))
	assert.Equal(t, -1, c.SubcategoryIndex("unknown"))
}

func TestInfer(t *testing.T) {
	steps := DefaultSteps()

	tests := []struct {
		name     string
		main     string
		sub      string
		wantOK   bool
		wantStep Step
	}{
		{"exact", OnboardingRegistration, "給与情報の設定", true, Step{2, "給与情報の設定"}},
		{"exact trimmed", OnboardingRegistration, "  マイナンバー ", true, Step{6, "マイナンバー"}},
		{"many to one", OnboardingRegistration, "管理者が情報を登録する場合", true, Step{1, "本人に本人情報を登録してもらう場合"}},
		{"sub contains key", OnboardingRegistration, "【必須】税金関係の設定", true, Step{4, "税金関係"}},
		{"key contains sub", OnboardingAfter, "住民税の通知書の内容をfreeeに登録しましょう", true, Step{2, "住民税の通知書の内容をfreeeに登録しましょう"}},
		{"key contains sub with note", OnboardingAfter, "雇用保険の情報を反映する方法", true, Step{4, "雇用保険の情報を反映する方法　※手続き完了したら設定しましょう！"}},
		{"no match", OnboardingRegistration, "存在しないサブカテゴリ", false, Step{}},
		{"empty sub", OnboardingRegistration, "", false, Step{}},
		{"blank sub", OnboardingRegistration, "   ", false, Step{}},
		{"category without steps", Bonus, "賞与", false, Step{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := steps.Infer(tt.main, tt.sub)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantStep, got)
		})
	}
}

func TestInfer_FirstPartialMatchWins(t *testing.T) {
	steps := NewStepTable(map[string][]StepRule{
		"cat": {
			{Match: "保険", Step: Step{1, "first"}},
			{Match: "社会保険", Step: Step{2, "second"}},
		},
	})
	got, ok := steps.Infer("cat", "社会保険の手続き")
	require.True(t, ok)
	assert.Equal(t, 1, got.Number)

	got, ok = steps.Infer("cat", "社会保険")
	require.True(t, ok)
	assert.Equal(t, 2, got.Number, "exact match takes priority over earlier partial match")
}

func TestStepLabel(t *testing.T) {
	assert.Equal(t, "STEP2 給与情報の設定", Step{2, "給与情報の設定"}.Label())
}

func TestStepTable_RulesCopy(t *testing.T) {
	steps := DefaultSteps()
	rs := steps.Rules(OnboardingAfter)
	require.Len(t, rs, 4)
	rs[0].Match = "x"
	assert.NotEqual(t, "x", steps.Rules(OnboardingAfter)[0].Match)
	assert.True(t, steps.Has(OnboardingAfter))
	assert.False(t, steps.Has(Bonus))
}
