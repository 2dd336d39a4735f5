package inventory

import (
	"testing"
	"time"

	"github.com/newkimjiwon/freshbox/app/database"
)

var filterNow = time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)

func daysFromNow(days int) int64 {
	return filterNow.AddDate(0, 0, days).UnixMilli()
}

func ptrInt64(v int64) *int64 {
	return &v
}

func testCategories() []database.Category {
	return []database.Category{
		{ID: 1, Name: "Dairy"},
		{ID: 2, Name: "Bakery", IsCustom: true},
	}
}

func testItems() []database.FoodItem {
	return []database.FoodItem{
		{ID: 1, Name: "Milk", ExpiryDate: daysFromNow(2), CategoryID: ptrInt64(1), Tags: []string{"breakfast"}},
		{ID: 2, Name: "Bread", ExpiryDate: daysFromNow(1), CategoryID: ptrInt64(2)},
		{ID: 3, Name: "Old Cheese", ExpiryDate: daysFromNow(-3), CategoryID: ptrInt64(1)},
		{ID: 4, Name: "Rice", ExpiryDate: daysFromNow(60)},
	}
}

func filteredIDs(items []database.FoodItem) []int64 {
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	return ids
}

func assertIDs(t *testing.T, got []database.FoodItem, want ...int64) {
	t.Helper()
	gotIDs := filteredIDs(got)
	if len(gotIDs) != len(want) {
		t.Fatalf("Expected ids %v, got %v", want, gotIDs)
	}
	for i := range want {
		if gotIDs[i] != want[i] {
			t.Fatalf("Expected ids %v, got %v", want, gotIDs)
		}
	}
}

func TestApplyFilter_Intersection(t *testing.T) {
	items := testItems()
	categories := testCategories()

	// Category and keyword both active; only items passing both survive.
	got := ApplyFilter(items, categories, Filter{
		CategoryID: ptrInt64(1),
		Keyword:    "milk",
		Type:       FilterAll,
	}, filterNow, 3)
	assertIDs(t, got, 1)

	// Same keyword without the category filter still matches only Milk.
	got = ApplyFilter(items, categories, Filter{Keyword: "milk", Type: FilterAll}, filterNow, 3)
	assertIDs(t, got, 1)

	// Category alone keeps every Dairy item regardless of state.
	got = ApplyFilter(items, categories, Filter{CategoryID: ptrInt64(1), Type: FilterAll}, filterNow, 3)
	assertIDs(t, got, 1, 3)
}

func TestApplyFilter_Types(t *testing.T) {
	items := testItems()
	categories := testCategories()

	tests := []struct {
		name string
		f    FilterType
		want []int64
	}{
		{"all", FilterAll, []int64{1, 2, 3, 4}},
		{"active", FilterActive, []int64{1, 2, 4}},
		{"expired", FilterExpired, []int64{3}},
		{"expiring soon", FilterExpiringSoon, []int64{1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyFilter(items, categories, Filter{Type: tt.f}, filterNow, 3)
			assertIDs(t, got, tt.want...)
		})
	}
}

func TestApplyFilter_KeywordMatchesTagsAndCategoryName(t *testing.T) {
	items := testItems()
	categories := testCategories()

	// Tag match.
	got := ApplyFilter(items, categories, Filter{Keyword: "breakfast", Type: FilterAll}, filterNow, 3)
	assertIDs(t, got, 1)

	// Resolved category name match, case-insensitive.
	got = ApplyFilter(items, categories, Filter{Keyword: "DAIRY", Type: FilterAll}, filterNow, 3)
	assertIDs(t, got, 1, 3)

	// Keyword referencing no item yields an empty, non-nil list.
	got = ApplyFilter(items, categories, Filter{Keyword: "caviar", Type: FilterAll}, filterNow, 3)
	if got == nil || len(got) != 0 {
		t.Fatalf("Expected empty list, got %v", got)
	}
}

func TestParseFilterType(t *testing.T) {
	if ft, err := ParseFilterType(""); err != nil || ft != FilterAll {
		t.Fatalf("Expected blank to parse as all, got %q, %v", ft, err)
	}
	if ft, err := ParseFilterType("expiring_soon"); err != nil || ft != FilterExpiringSoon {
		t.Fatalf("Expected expiring_soon, got %q, %v", ft, err)
	}
	if _, err := ParseFilterType("fresh"); err == nil {
		t.Fatal("Expected error for unknown filter type")
	}
}
