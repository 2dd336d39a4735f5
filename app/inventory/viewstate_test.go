package inventory

import (
	"fmt"
	"testing"
	"time"

	"github.com/newkimjiwon/freshbox/app/database"
)

// stubFoods serves the calendar query from memory. The embedded interface
// panics on anything else, which keeps the stub honest about what the
// view-state actually touches.
type stubFoods struct {
	database.FoodRepository
	expiring         []database.FoodItem
	gotStart, gotEnd int64
}

func (s *stubFoods) ExpiringBetween(start, end int64) ([]database.FoodItem, error) {
	s.gotStart, s.gotEnd = start, end
	return s.expiring, nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestListViewState_RecomputesOnEveryInput(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	v := NewListViewState("all", &stubFoods{}, 3)
	v.SetClock(fixedClock(now))

	dairy := int64(1)
	v.SetCategories([]database.Category{{ID: dairy, Name: "Dairy"}})
	v.SetItems([]database.FoodItem{
		{ID: 1, Name: "Milk", ExpiryDate: now.AddDate(0, 0, 2).UnixMilli(), CategoryID: &dairy},
		{ID: 2, Name: "Bread", ExpiryDate: now.AddDate(0, 0, 30).UnixMilli()},
		{ID: 3, Name: "Cheese", ExpiryDate: now.AddDate(0, 0, -1).UnixMilli(), CategoryID: &dairy},
	})

	assertIDs(t, v.FilteredItems(), 1, 2, 3)
	assertIDs(t, v.HomeExpiringSoon(), 1)
	assertIDs(t, v.HomeExpired(), 3)

	// Narrowing the category narrows the filtered list but the home lists
	// follow the same category selection too.
	v.SetCategoryFilter(&dairy)
	assertIDs(t, v.FilteredItems(), 1, 3)
	assertIDs(t, v.HomeExpired(), 3)

	// The type filter applies only to the filtered list.
	v.SetFilterType(FilterExpired)
	assertIDs(t, v.FilteredItems(), 3)
	assertIDs(t, v.HomeExpiringSoon(), 1)

	v.SetFilterType(FilterAll)
	v.SetCategoryFilter(nil)
	v.SetSearchKeyword("bread")
	assertIDs(t, v.FilteredItems(), 2)
}

func TestListViewState_HomeListsCappedAtTen(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	v := NewListViewState("home", &stubFoods{}, 3)
	v.SetClock(fixedClock(now))

	items := make([]database.FoodItem, 0, 12)
	for i := 0; i < 12; i++ {
		items = append(items, database.FoodItem{
			ID:         int64(i + 1),
			Name:       fmt.Sprintf("Leftover %d", i+1),
			ExpiryDate: now.AddDate(0, 0, -1).UnixMilli(),
		})
	}
	v.SetItems(items)

	if got := len(v.HomeExpired()); got != 10 {
		t.Fatalf("Expected home expired list capped at 10, got %d", got)
	}
	if got := len(v.FilteredItems()); got != 12 {
		t.Fatalf("Expected filtered list uncapped, got %d", got)
	}
}

func TestListViewState_ClockAdvanceMovesItemBetweenLists(t *testing.T) {
	expiry := time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)
	v := NewListViewState("home", &stubFoods{}, 3)
	v.SetClock(fixedClock(expiry.AddDate(0, 0, -1)))
	v.SetItems([]database.FoodItem{
		{ID: 1, Name: "Yogurt", ExpiryDate: expiry.UnixMilli()},
	})

	assertIDs(t, v.HomeExpiringSoon(), 1)
	if len(v.HomeExpired()) != 0 {
		t.Fatal("Expected no expired items the day before expiry")
	}

	v.SetClock(fixedClock(expiry.AddDate(0, 0, 1)))

	assertIDs(t, v.HomeExpired(), 1)
	if len(v.HomeExpiringSoon()) != 0 {
		t.Fatal("Expected no expiring soon items after expiry")
	}
}

func TestListViewState_SubscribeDeliversLatestValue(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	v := NewListViewState("all", &stubFoods{}, 3)
	v.SetClock(fixedClock(now))

	ch := v.Subscribe(OutputFiltered)

	// Two recomputations without a read in between; the subscriber must
	// see only the newest list.
	v.SetItems([]database.FoodItem{{ID: 1, Name: "Milk", ExpiryDate: now.UnixMilli()}})
	v.SetItems([]database.FoodItem{
		{ID: 1, Name: "Milk", ExpiryDate: now.UnixMilli()},
		{ID: 2, Name: "Bread", ExpiryDate: now.UnixMilli()},
	})

	select {
	case got := <-ch:
		assertIDs(t, got, 1, 2)
	default:
		t.Fatal("Expected a pending value on the subscriber channel")
	}
}

func TestListViewState_LoadItemsExpiringOn(t *testing.T) {
	date := time.Date(2025, 3, 15, 18, 30, 0, 0, time.UTC)
	foods := &stubFoods{expiring: []database.FoodItem{
		{ID: 7, Name: "Salmon", ExpiryDate: date.UnixMilli()},
	}}
	v := NewListViewState("calendar", foods, 3)

	ch := v.Subscribe(OutputCalendar)

	got, err := v.LoadItemsExpiringOn(date)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	assertIDs(t, got, 7)
	assertIDs(t, v.CalendarItems(), 7)

	wantStart, wantEnd := database.DayRange(date)
	if foods.gotStart != wantStart || foods.gotEnd != wantEnd {
		t.Fatalf("Expected query window [%d, %d], got [%d, %d]", wantStart, wantEnd, foods.gotStart, foods.gotEnd)
	}

	select {
	case published := <-ch:
		assertIDs(t, published, 7)
	default:
		t.Fatal("Expected calendar output published to subscriber")
	}
}
