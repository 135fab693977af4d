// Package testutil provides shared test helpers for databases and seeded manuals.
package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/starford/tebiki/internal/models"
	"github.com/starford/tebiki/internal/store"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *store.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "tebiki-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := store.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// SeedManual stores m and returns it with its id and timestamps filled in.
func SeedManual(t *testing.T, db *store.DB, m models.Manual) models.Manual {
	t.Helper()
	if m.URL == "" {
		m.URL = models.UnavailableURL
	}
	if err := db.CreateManual(context.Background(), &m); err != nil {
		t.Fatalf("seed manual %q: %v", m.Title, err)
	}
	return m
}

// SeedOnboarding stores a small published catalog for the
// "入社（入社日までに登録）" category, spread over two steps and the Other
// bucket, plus one draft.
func SeedOnboarding(t *testing.T, db *store.DB) []models.Manual {
	t.Helper()
	const cat = "入社（入社日までに登録）"
	return []models.Manual{
		SeedManual(t, db, models.Manual{Title: "従業員を招待する", MainCategory: cat, SubCategory: "本人に情報を登録してもらう場合", Tags: []string{"管理者向け", "ミニマム"}, IsPublished: true, OrderIndex: 1}),
		SeedManual(t, db, models.Manual{Title: "給与の支給方法を設定する", URL: "https://support.freee.co.jp/hc/ja/articles/1", MainCategory: cat, SubCategory: "給与情報の設定", Tags: []string{"管理者向け"}, IsPublished: true, OrderIndex: 2}),
		SeedManual(t, db, models.Manual{Title: "自分の口座を登録する", MainCategory: cat, SubCategory: "本人に情報を登録してもらう場合", Tags: []string{"従業員向け"}, IsPublished: true, OrderIndex: 3}),
		SeedManual(t, db, models.Manual{Title: "よくある質問", MainCategory: cat, IsPublished: true, OrderIndex: 4}),
		SeedManual(t, db, models.Manual{Title: "下書き", MainCategory: cat, SubCategory: "給与情報の設定", IsPublished: false, OrderIndex: 5}),
	}
}
