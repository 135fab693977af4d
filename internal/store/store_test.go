package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/tebiki/internal/apperr"
	"github.com/starford/tebiki/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "tebiki-test-*.db")
	require.NoError(t, err)
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	require.NoError(t, err, "Open")
	t.Cleanup(func() { db.Close() })
	return db
}

func seed(t *testing.T, db *DB, m models.Manual) models.Manual {
	t.Helper()
	require.NoError(t, db.CreateManual(context.Background(), &m))
	return m
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	require.NoError(t, db.conn.QueryRow(`SELECT count(*) FROM manuals`).Scan(&count))
	require.NoError(t, db.conn.QueryRow(`SELECT count(*) FROM manual_requests`).Scan(&count))
	require.NoError(t, db.Ping(context.Background()))
}

func TestOpen_Reopen(t *testing.T) {
	f, err := os.CreateTemp("", "tebiki-test-*.db")
	require.NoError(t, err)
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	require.NoError(t, err)
	m := models.Manual{Title: "kept", URL: "#", MainCategory: "退職", IsPublished: true}
	require.NoError(t, db.CreateManual(context.Background(), &m))
	require.NoError(t, db.Close())

	db, err = Open(f.Name())
	require.NoError(t, err, "migrations must be idempotent")
	defer db.Close()
	got, err := db.GetManual(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Equal(t, "kept", got.Title)
}

func TestCreateAndGetManual(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	m := seed(t, db, models.Manual{
		Title:          "給与情報を設定する",
		URL:            "https://support.freee.co.jp/hc/ja/articles/1",
		MainCategory:   "入社（入社日までに登録）",
		SubCategory:    "給与情報の設定",
		Tags:           []string{"管理者向け", "ミニマム"},
		ReferenceLinks: []models.ReferenceLink{{Title: "参考リンク", URL: "https://example.com"}},
		IsPublished:    true,
		OrderIndex:     3,
	})
	require.NotEmpty(t, m.ID)
	assert.False(t, m.CreatedAt.IsZero())

	got, err := db.GetManual(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, m.Title, got.Title)
	assert.Equal(t, m.SubCategory, got.SubCategory)
	assert.Equal(t, []string{"管理者向け", "ミニマム"}, got.Tags)
	assert.Equal(t, m.ReferenceLinks, got.ReferenceLinks)
	assert.True(t, got.IsPublished)
	assert.Equal(t, 3, got.OrderIndex)
	assert.WithinDuration(t, m.CreatedAt, got.CreatedAt, time.Second)
}

func TestCreateManual_EmptyListsAndSubcategory(t *testing.T) {
	db := testDB(t)
	m := seed(t, db, models.Manual{Title: "賞与の計算", URL: "#", MainCategory: "賞与"})

	got, err := db.GetManual(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Empty(t, got.SubCategory)
	assert.NotNil(t, got.Tags)
	assert.NotNil(t, got.ReferenceLinks)
	assert.False(t, got.Available())
}

func TestCreateManual_DuplicateID(t *testing.T) {
	db := testDB(t)
	seed(t, db, models.Manual{ID: "fixed", Title: "a", URL: "#", MainCategory: "賞与"})
	err := db.CreateManual(context.Background(), &models.Manual{ID: "fixed", Title: "b", URL: "#", MainCategory: "賞与"})
	assert.ErrorIs(t, err, apperr.ErrAlreadyExists)
}

func TestGetManual_NotFound(t *testing.T) {
	db := testDB(t)
	_, err := db.GetManual(context.Background(), "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestListPublishedByCategory(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	second := seed(t, db, models.Manual{Title: "b", URL: "#", MainCategory: "退職", IsPublished: true, OrderIndex: 2})
	first := seed(t, db, models.Manual{Title: "a", URL: "#", MainCategory: "退職", IsPublished: true, OrderIndex: 1})
	tie := seed(t, db, models.Manual{Title: "c", URL: "#", MainCategory: "退職", IsPublished: true, OrderIndex: 2})
	seed(t, db, models.Manual{Title: "draft", URL: "#", MainCategory: "退職", IsPublished: false})
	seed(t, db, models.Manual{Title: "other", URL: "#", MainCategory: "賞与", IsPublished: true})

	got, err := db.ListPublishedByCategory(ctx, "退職")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{first.ID, second.ID, tie.ID}, []string{got[0].ID, got[1].ID, got[2].ID})

	none, err := db.ListPublishedByCategory(ctx, "存在しない")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestCountPublishedByCategory(t *testing.T) {
	db := testDB(t)
	seed(t, db, models.Manual{Title: "a", URL: "#", MainCategory: "退職", IsPublished: true})
	seed(t, db, models.Manual{Title: "b", URL: "#", MainCategory: "退職", IsPublished: true})
	seed(t, db, models.Manual{Title: "c", URL: "#", MainCategory: "退職", IsPublished: false})
	seed(t, db, models.Manual{Title: "d", URL: "#", MainCategory: "賞与", IsPublished: true})

	counts, err := db.CountPublishedByCategory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"退職": 2, "賞与": 1}, counts)
}

func TestListManuals_Filters(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	seed(t, db, models.Manual{Title: "有給の付与", URL: "#", MainCategory: "有休・休暇", SubCategory: "正社員の有給休暇", Tags: []string{"管理者向け"}, IsPublished: true, OrderIndex: 1})
	seed(t, db, models.Manual{Title: "特別休暇の設定", URL: "#", MainCategory: "有休・休暇", SubCategory: "特別休暇", Tags: []string{"従業員向け"}, IsPublished: false, OrderIndex: 2})
	seed(t, db, models.Manual{Title: "100%_done", URL: "#", MainCategory: "その他", IsPublished: true, OrderIndex: 3})

	all, total, err := db.ListManuals(ctx, ManualFilter{})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, all, 3)

	got, total, err := db.ListManuals(ctx, ManualFilter{Category: "有休・休暇", SubCategory: "特別休暇"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "特別休暇の設定", got[0].Title)

	got, _, err = db.ListManuals(ctx, ManualFilter{Tag: "管理者向け"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "有給の付与", got[0].Title)

	unpublished := false
	got, _, err = db.ListManuals(ctx, ManualFilter{Published: &unpublished})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.False(t, got[0].IsPublished)

	got, _, err = db.ListManuals(ctx, ManualFilter{Query: "休暇"})
	require.NoError(t, err)
	assert.Len(t, got, 2, "matches title and main category")

	got, _, err = db.ListManuals(ctx, ManualFilter{Query: "%_"})
	require.NoError(t, err)
	require.Len(t, got, 1, "wildcards are literal")
	assert.Equal(t, "100%_done", got[0].Title)
}

func TestListManuals_PaginationAndSort(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	for i, title := range []string{"a", "b", "c", "d"} {
		seed(t, db, models.Manual{Title: title, URL: "#", MainCategory: "書類", OrderIndex: 10 - i})
	}

	page, total, err := db.ListManuals(ctx, ManualFilter{Limit: 2, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	require.Len(t, page, 2)
	assert.Equal(t, "c", page[0].Title)
	assert.Equal(t, "b", page[1].Title)

	newest, _, err := db.ListManuals(ctx, ManualFilter{Sort: SortCreatedAt, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, "d", newest[0].Title)
}

func TestUpdateManual(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	m := seed(t, db, models.Manual{Title: "old", URL: "#", MainCategory: "書類", SubCategory: "書類のダウンロード", IsPublished: true})
	created := m.CreatedAt

	m.Title = "new"
	m.SubCategory = ""
	m.Tags = []string{"アドバンス"}
	m.IsPublished = false
	m.CreatedAt = time.Time{}
	require.NoError(t, db.UpdateManual(ctx, &m))
	assert.WithinDuration(t, created, m.CreatedAt, time.Second)

	got, err := db.GetManual(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", got.Title)
	assert.Empty(t, got.SubCategory)
	assert.Equal(t, []string{"アドバンス"}, got.Tags)
	assert.False(t, got.IsPublished)
	assert.False(t, got.UpdatedAt.Before(got.CreatedAt))
}

func TestUpdateManual_NotFound(t *testing.T) {
	db := testDB(t)
	err := db.UpdateManual(context.Background(), &models.Manual{ID: "missing", Title: "x", URL: "#", MainCategory: "書類"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDeleteManual(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	m := seed(t, db, models.Manual{Title: "gone", URL: "#", MainCategory: "書類", IsPublished: true})

	require.NoError(t, db.DeleteManual(ctx, m.ID))
	_, err := db.GetManual(ctx, m.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.ErrorIs(t, db.DeleteManual(ctx, m.ID), apperr.ErrNotFound)

	results, err := db.SearchPublished(ctx, "gone", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchPublished(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	byTitle := seed(t, db, models.Manual{Title: "Payroll setup", URL: "#", MainCategory: "給与控除の設定", IsPublished: true, OrderIndex: 2})
	byTag := seed(t, db, models.Manual{Title: "控除額", URL: "#", MainCategory: "給与控除の設定", Tags: []string{"payroll"}, IsPublished: true, OrderIndex: 1})
	seed(t, db, models.Manual{Title: "Payroll draft", URL: "#", MainCategory: "給与控除の設定", IsPublished: false})
	seed(t, db, models.Manual{Title: "unrelated", URL: "#", MainCategory: "書類", Tags: []string{"payroll-extra"}, IsPublished: true})

	got, err := db.SearchPublished(ctx, "payroll", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, byTag.ID, got[0].ID, "ordered by order_index")
	assert.Equal(t, byTitle.ID, got[1].ID)

	got, err = db.SearchPublished(ctx, "給与控除", 10)
	require.NoError(t, err)
	assert.Len(t, got, 2, "main category matches")

	got, err = db.SearchPublished(ctx, "  ", 10)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = db.SearchPublished(ctx, "payroll", 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestSearchPublished_ShortQueryAndSubcategory(t *testing.T) {
	db := testDB(t)
	m := seed(t, db, models.Manual{Title: "休日出勤", URL: "#", MainCategory: "勤怠", SubCategory: "休日", IsPublished: true})

	got, err := db.SearchPublished(context.Background(), "休日", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, m.ID, got[0].ID)
}

func TestRequests_CreateGetList(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	first := &models.ManualRequest{
		RequesterName:     "山田",
		RequesterEmail:    "yamada@example.com",
		ManualTitle:       "残業申請",
		ManualDescription: "手順が知りたい",
		Urgency:           models.UrgencyHigh,
		Department:        "人事",
	}
	require.NoError(t, db.CreateRequest(ctx, first))
	assert.Equal(t, models.StatusPending, first.Status)

	second := &models.ManualRequest{
		RequesterName:     "佐藤",
		RequesterEmail:    "sato@example.com",
		ManualTitle:       "育休",
		ManualDescription: "育休の登録",
	}
	require.NoError(t, db.CreateRequest(ctx, second))
	assert.Equal(t, models.UrgencyMedium, second.Urgency)

	got, err := db.GetRequest(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "人事", got.Department)
	assert.Equal(t, models.UrgencyHigh, got.Urgency)
	assert.Nil(t, got.CompletedAt)

	all, err := db.ListRequests(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID, "newest first")

	pending, err := db.ListRequests(ctx, models.StatusCompleted)
	require.NoError(t, err)
	assert.Empty(t, pending)

	_, err = db.GetRequest(ctx, "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestRequests_Update(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	m := seed(t, db, models.Manual{Title: "残業申請", URL: "#", MainCategory: "勤怠", IsPublished: true})

	r := &models.ManualRequest{RequesterName: "a", RequesterEmail: "a@example.com", ManualTitle: "t", ManualDescription: "d"}
	require.NoError(t, db.CreateRequest(ctx, r))

	now := time.Now()
	r.Status = models.StatusCompleted
	r.AdminNotes = "作成済み"
	r.ManualID = m.ID
	r.CompletedAt = &now
	require.NoError(t, db.UpdateRequest(ctx, r))

	got, err := db.GetRequest(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, got.Status)
	assert.Equal(t, "作成済み", got.AdminNotes)
	assert.Equal(t, m.ID, got.ManualID)
	require.NotNil(t, got.CompletedAt)
	assert.WithinDuration(t, now, *got.CompletedAt, time.Second)

	completed, err := db.ListRequests(ctx, models.StatusCompleted)
	require.NoError(t, err)
	assert.Len(t, completed, 1)

	assert.ErrorIs(t, db.UpdateRequest(ctx, &models.ManualRequest{ID: "missing", Status: models.StatusPending}), apperr.ErrNotFound)
}

func TestRequests_InvalidStatusRejected(t *testing.T) {
	db := testDB(t)
	r := &models.ManualRequest{RequesterName: "a", RequesterEmail: "a@example.com", ManualTitle: "t", ManualDescription: "d", Status: "bogus"}
	assert.Error(t, db.CreateRequest(context.Background(), r))
}
