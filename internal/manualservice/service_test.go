package manualservice

import (
	"context"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/tebiki/internal/apperr"
	"github.com/starford/tebiki/internal/browse"
	"github.com/starford/tebiki/internal/models"
	"github.com/starford/tebiki/internal/sse"
	"github.com/starford/tebiki/internal/store"
	"github.com/starford/tebiki/internal/taxonomy"
	"github.com/starford/tebiki/internal/testutil"
)

type recorder struct {
	events []string
}

func (r *recorder) PublishChange(resource, kind string, c sse.Change) {
	r.events = append(r.events, resource+"."+kind+":"+c.Category)
}

func testService(t *testing.T) (*Service, *store.DB, *recorder) {
	t.Helper()
	db := testutil.TestDB(t)
	rec := &recorder{}
	return NewService(db, taxonomy.Default(), taxonomy.DefaultSteps(), rec, nil), db, rec
}

func validInput() ManualInput {
	return ManualInput{
		Title:        "賞与明細を発行する",
		URL:          "https://support.freee.co.jp/hc/ja/articles/2",
		MainCategory: taxonomy.Bonus,
		Tags:         []string{"管理者向け"},
	}
}

func TestCategories(t *testing.T) {
	svc, db, _ := testService(t)
	testutil.SeedOnboarding(t, db)

	cats, err := svc.Categories(context.Background())
	require.NoError(t, err)
	require.Len(t, cats, taxonomy.Default().Len())

	first := cats[0]
	assert.Equal(t, taxonomy.OnboardingRegistration, first.Name)
	assert.Equal(t, 4, first.Count, "drafts are not counted")
	assert.True(t, first.Step)
	assert.False(t, first.Empty)

	last := cats[len(cats)-1]
	assert.True(t, last.Empty)
	assert.Equal(t, EmptyMessage, last.Message)
	assert.False(t, last.Step)
}

func TestCategoryView(t *testing.T) {
	svc, db, _ := testService(t)
	testutil.SeedOnboarding(t, db)
	ctx := context.Background()

	v, err := svc.CategoryView(ctx, "onboarding-registration", browse.Filters{})
	require.NoError(t, err)
	assert.Equal(t, browse.ModeStep, v.Mode)
	assert.Equal(t, 4, v.Total)
	require.Len(t, v.Groups, 3)
	assert.Equal(t, "STEP1 本人に本人情報を登録してもらう場合", v.Groups[0].Key)
	assert.Len(t, v.Groups[0].Manuals, 2)
	assert.Equal(t, "STEP2 給与情報の設定", v.Groups[1].Key)
	assert.Equal(t, browse.OtherGroupKey, v.Groups[2].Key)

	v, err = svc.CategoryView(ctx, "onboarding-registration", browse.Filters{Audience: browse.AudienceAdmin})
	require.NoError(t, err)
	assert.Equal(t, 2, v.Filtered)
	require.Len(t, v.Groups, 2)
	assert.Equal(t, "従業員を招待する", v.Groups[0].Manuals[0].Title)

	v, err = svc.CategoryView(ctx, "bonus", browse.Filters{})
	require.NoError(t, err)
	assert.Equal(t, browse.ModeSubcategory, v.Mode)
	assert.Empty(t, v.Groups)
}

func TestCategoryView_Errors(t *testing.T) {
	svc, _, _ := testService(t)
	ctx := context.Background()

	_, err := svc.CategoryView(ctx, "nope", browse.Filters{})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.CategoryView(ctx, "bonus", browse.Filters{Plan: "エンタープライズ"})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
	_, err = svc.CategoryView(ctx, "bonus", browse.Filters{Audience: "全員"})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestGetPublished(t *testing.T) {
	svc, db, _ := testService(t)
	seeded := testutil.SeedOnboarding(t, db)
	ctx := context.Background()

	m, err := svc.GetPublished(ctx, seeded[0].ID)
	require.NoError(t, err)
	assert.Equal(t, seeded[0].Title, m.Title)

	_, err = svc.GetPublished(ctx, seeded[4].ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound, "drafts are hidden")
	_, err = svc.GetPublished(ctx, "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestSearch(t *testing.T) {
	svc, db, _ := testService(t)
	testutil.SeedOnboarding(t, db)
	ctx := context.Background()

	got, err := svc.Search(ctx, "給与", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "給与の支給方法を設定する", got[0].Title)

	got, err = svc.Search(ctx, "従業員向け", 10)
	require.NoError(t, err)
	require.Len(t, got, 1, "exact tag match")

	got, err = svc.Search(ctx, "   ", 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCreate(t *testing.T) {
	svc, _, rec := testService(t)
	ctx := context.Background()

	in := validInput()
	in.Tags = []string{" 管理者向け ", "管理者向け", ""}
	in.ReferenceLinks = []models.ReferenceLink{
		{URL: "https://support.freee.co.jp/hc/ja/articles/360000-%E8%B3%9E%E4%B8%8E"},
		{URL: "https://support.freee.co.jp/hc/ja/articles/360000-%E8%B3%9E%E4%B8%8E"},
		{URL: "https://example.com/doc"},
	}

	d, err := svc.Create(ctx, in)
	require.NoError(t, err)
	assert.NotEmpty(t, d.ID)
	assert.NotEmpty(t, d.Checksum)
	assert.True(t, d.IsPublished, "published by default")
	assert.Equal(t, []string{"管理者向け"}, d.Tags)
	require.Len(t, d.ReferenceLinks, 2)
	assert.Equal(t, "賞与", d.ReferenceLinks[0].Title)
	assert.Equal(t, "参考リンク", d.ReferenceLinks[1].Title)
	assert.Equal(t, []string{"manual.created:賞与"}, rec.events)

	got, err := svc.Get(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, d.Checksum, got.Checksum, "checksum is stable across reads")
}

func TestCreate_Validation(t *testing.T) {
	svc, _, _ := testService(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		edit  func(*ManualInput)
		field string
	}{
		{"missing title", func(in *ManualInput) { in.Title = "  " }, "title"},
		{"unknown category", func(in *ManualInput) { in.MainCategory = "存在しない" }, "main_category"},
		{"bad url", func(in *ManualInput) { in.URL = "ftp://example.com" }, "url"},
		{"negative order", func(in *ManualInput) { in.OrderIndex = -1 }, "order_index"},
		{"bad reference link", func(in *ManualInput) {
			in.ReferenceLinks = []models.ReferenceLink{{URL: "not a url"}}
		}, "reference_links"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.edit(&in)
			_, err := svc.Create(ctx, in)
			require.ErrorIs(t, err, apperr.ErrInvalidInput)
			var verrs validation.Errors
			require.ErrorAs(t, err, &verrs)
			assert.Contains(t, verrs, tt.field)
		})
	}
}

func TestCreate_PlaceholderURL(t *testing.T) {
	svc, _, _ := testService(t)
	in := validInput()
	in.URL = models.UnavailableURL
	d, err := svc.Create(context.Background(), in)
	require.NoError(t, err)
	assert.False(t, d.Available())
}

func TestUpdate(t *testing.T) {
	svc, _, rec := testService(t)
	ctx := context.Background()
	created, err := svc.Create(ctx, validInput())
	require.NoError(t, err)

	in := validInput()
	in.Title = "賞与明細を再発行する"
	in.IsPublished = ptr(false)

	_, err = svc.Update(ctx, created.ID, in, `"stale"`)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	updated, err := svc.Update(ctx, created.ID, in, `"`+created.Checksum+`"`)
	require.NoError(t, err)
	assert.Equal(t, "賞与明細を再発行する", updated.Title)
	assert.False(t, updated.IsPublished)
	assert.NotEqual(t, created.Checksum, updated.Checksum)
	assert.Equal(t, created.CreatedAt.Unix(), updated.CreatedAt.Unix())

	_, err = svc.Update(ctx, created.ID, in, "")
	require.NoError(t, err, "If-Match is optional")

	_, err = svc.Update(ctx, "missing", in, "")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	assert.Equal(t, []string{"manual.created:賞与", "manual.updated:賞与", "manual.updated:賞与"}, rec.events)
}

func TestDelete(t *testing.T) {
	svc, _, rec := testService(t)
	ctx := context.Background()
	created, err := svc.Create(ctx, validInput())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))
	assert.ErrorIs(t, svc.Delete(ctx, created.ID), apperr.ErrNotFound)
	assert.Equal(t, "manual.deleted:賞与", rec.events[len(rec.events)-1])
}

func TestList(t *testing.T) {
	svc, db, _ := testService(t)
	ctx := context.Background()
	for i, title := range []string{"さくら", "あさひ", "かえで"} {
		testutil.SeedManual(t, db, models.Manual{Title: title, MainCategory: "書類", IsPublished: i != 1, OrderIndex: i})
	}

	page, err := svc.List(ctx, ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, "さくら", page.Items[0].Title)

	page, err = svc.List(ctx, ListQuery{Sort: SortTitle})
	require.NoError(t, err)
	assert.Equal(t, []string{"あさひ", "かえで", "さくら"}, titles(page.Items))

	page, err = svc.List(ctx, ListQuery{Sort: SortTitle, Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, []string{"かえで"}, titles(page.Items))

	page, err = svc.List(ctx, ListQuery{Status: "draft"})
	require.NoError(t, err)
	assert.Equal(t, []string{"あさひ"}, titles(page.Items))

	_, err = svc.List(ctx, ListQuery{Sort: "random"})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
	_, err = svc.List(ctx, ListQuery{Status: "archived"})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func titles(ms []models.Manual) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.Title
	}
	return out
}
