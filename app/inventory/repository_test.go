package inventory

import (
	"errors"
	"testing"
	"time"

	"github.com/newkimjiwon/freshbox/app/database"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()

	db, err := database.NewConnection(":memory:")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, _, err := database.RunMigrations(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return NewRepository(database.NewFoodRepository(db), database.NewCategoryRepository(db))
}

func TestRepository_SaveItemInsertAndUpdate(t *testing.T) {
	repo := newTestRepository(t)

	var pushed [][]database.FoodItem
	repo.OnItemsChanged(func(items []database.FoodItem) {
		pushed = append(pushed, items)
	})

	saved, err := repo.SaveItem(database.FoodItem{
		Name:       "  Milk  ",
		ExpiryDate: time.Now().AddDate(0, 0, 2).UnixMilli(),
		Tags:       []string{" breakfast ", "", "drink"},
	})
	if err != nil {
		t.Fatalf("Expected save to succeed, got %v", err)
	}
	if saved.ID == 0 {
		t.Fatal("Expected inserted item to receive an id")
	}
	if saved.Name != "Milk" {
		t.Fatalf("Expected trimmed name, got %q", saved.Name)
	}
	if len(saved.Tags) != 2 || saved.Tags[0] != "breakfast" || saved.Tags[1] != "drink" {
		t.Fatalf("Expected normalized tags, got %v", saved.Tags)
	}
	if saved.Quantity != "1" {
		t.Fatalf("Expected default quantity, got %q", saved.Quantity)
	}

	saved.Memo = "half left"
	if _, err := repo.SaveItem(saved); err != nil {
		t.Fatalf("Expected update to succeed, got %v", err)
	}

	got, err := repo.GetItem(saved.ID)
	if err != nil {
		t.Fatalf("Expected get to succeed, got %v", err)
	}
	if got.Memo != "half left" {
		t.Fatalf("Expected updated memo, got %q", got.Memo)
	}

	if len(pushed) != 2 {
		t.Fatalf("Expected 2 item stream pushes, got %d", len(pushed))
	}
	if len(pushed[1]) != 1 {
		t.Fatalf("Expected 1 item in last push, got %d", len(pushed[1]))
	}
}

func TestRepository_SaveItemValidation(t *testing.T) {
	repo := newTestRepository(t)

	if _, err := repo.SaveItem(database.FoodItem{Name: "   "}); !errors.Is(err, ErrBlankItemName) {
		t.Fatalf("Expected ErrBlankItemName, got %v", err)
	}

	missing := database.FoodItem{ID: 99, Name: "Ghost", ExpiryDate: time.Now().UnixMilli()}
	if _, err := repo.SaveItem(missing); !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("Expected ErrItemNotFound, got %v", err)
	}
}

func TestRepository_SaveEventConsumedOnce(t *testing.T) {
	repo := newTestRepository(t)

	if _, err := repo.SaveItem(database.FoodItem{Name: "Milk", ExpiryDate: time.Now().UnixMilli()}); err != nil {
		t.Fatalf("Expected save to succeed, got %v", err)
	}

	msg, ok := repo.SaveEvents.Consume()
	if !ok {
		t.Fatal("Expected a pending save event")
	}
	if msg != `"Milk" saved` {
		t.Fatalf("Expected save message, got %q", msg)
	}
	if _, ok := repo.SaveEvents.Consume(); ok {
		t.Fatal("Expected save event to be consumed exactly once")
	}
}

func TestRepository_AddCategory(t *testing.T) {
	repo := newTestRepository(t)

	category, err := repo.AddCategory(" Dairy ")
	if err != nil {
		t.Fatalf("Expected add to succeed, got %v", err)
	}
	if category.Name != "Dairy" || !category.IsCustom || category.ID == 0 {
		t.Fatalf("Unexpected category: %+v", category)
	}

	if _, err := repo.AddCategory("dairy"); !errors.Is(err, ErrDuplicateCategory) {
		t.Fatalf("Expected ErrDuplicateCategory for case-insensitive duplicate, got %v", err)
	}
	if _, err := repo.AddCategory("  "); !errors.Is(err, ErrBlankCategoryName) {
		t.Fatalf("Expected ErrBlankCategoryName, got %v", err)
	}

	if msg, ok := repo.CategoryEvents.Consume(); !ok || msg != `category "Dairy" added` {
		t.Fatalf("Expected category event, got %q, %v", msg, ok)
	}
}

func TestRepository_DeleteCategoryAndUncategorizeItems(t *testing.T) {
	repo := newTestRepository(t)

	category, err := repo.AddCategory("Dairy")
	if err != nil {
		t.Fatalf("Expected add to succeed, got %v", err)
	}

	item, err := repo.SaveItem(database.FoodItem{
		Name:       "Milk",
		ExpiryDate: time.Now().AddDate(0, 0, 2).UnixMilli(),
		CategoryID: &category.ID,
	})
	if err != nil {
		t.Fatalf("Expected save to succeed, got %v", err)
	}

	var lastItems []database.FoodItem
	var lastCategories []database.Category
	repo.OnItemsChanged(func(items []database.FoodItem) { lastItems = items })
	repo.OnCategoriesChanged(func(categories []database.Category) { lastCategories = categories })

	if err := repo.DeleteCategoryAndUncategorizeItems(category.ID); err != nil {
		t.Fatalf("Expected delete to succeed, got %v", err)
	}

	got, err := repo.GetItem(item.ID)
	if err != nil {
		t.Fatalf("Expected get to succeed, got %v", err)
	}
	if got == nil {
		t.Fatal("Expected item to survive category deletion")
	}
	if got.CategoryID != nil {
		t.Fatalf("Expected item uncategorized, got category %d", *got.CategoryID)
	}

	if len(lastItems) != 1 {
		t.Fatalf("Expected item stream pushed after delete, got %d items", len(lastItems))
	}
	if len(lastCategories) != 0 {
		t.Fatalf("Expected empty category stream after delete, got %d", len(lastCategories))
	}

	if err := repo.DeleteCategoryAndUncategorizeItems(category.ID); !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("Expected ErrCategoryNotFound, got %v", err)
	}
}

func TestRepository_SeedCategoriesIdempotent(t *testing.T) {
	repo := newTestRepository(t)

	inserted, err := repo.SeedCategories(DefaultCategories)
	if err != nil {
		t.Fatalf("Expected seed to succeed, got %v", err)
	}
	if inserted != len(DefaultCategories) {
		t.Fatalf("Expected %d inserts, got %d", len(DefaultCategories), inserted)
	}

	inserted, err = repo.SeedCategories(DefaultCategories)
	if err != nil {
		t.Fatalf("Expected reseed to succeed, got %v", err)
	}
	if inserted != 0 {
		t.Fatalf("Expected reseed to insert nothing, got %d", inserted)
	}

	count, err := repo.CategoryCount()
	if err != nil {
		t.Fatalf("Expected count to succeed, got %v", err)
	}
	if count != len(DefaultCategories) {
		t.Fatalf("Expected %d categories, got %d", len(DefaultCategories), count)
	}
}

func TestRepository_ActiveAndExpiredSplit(t *testing.T) {
	repo := newTestRepository(t)
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	repo.SetClock(func() time.Time { return now })

	if _, err := repo.SaveItem(database.FoodItem{Name: "Fresh", ExpiryDate: now.AddDate(0, 0, 5).UnixMilli()}); err != nil {
		t.Fatalf("Expected save to succeed, got %v", err)
	}
	if _, err := repo.SaveItem(database.FoodItem{Name: "Stale", ExpiryDate: now.AddDate(0, 0, -5).UnixMilli()}); err != nil {
		t.Fatalf("Expected save to succeed, got %v", err)
	}

	active, err := repo.ActiveItems()
	if err != nil {
		t.Fatalf("Expected active query to succeed, got %v", err)
	}
	if len(active) != 1 || active[0].Name != "Fresh" {
		t.Fatalf("Expected only the fresh item active, got %v", active)
	}

	expired, err := repo.ExpiredItems()
	if err != nil {
		t.Fatalf("Expected expired query to succeed, got %v", err)
	}
	if len(expired) != 1 || expired[0].Name != "Stale" {
		t.Fatalf("Expected only the stale item expired, got %v", expired)
	}
}
