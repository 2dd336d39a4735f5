package inventory

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/newkimjiwon/freshbox/app/database"
)

// Output names one derived list published by a ListViewState.
type Output string

const (
	OutputHomeExpiringSoon Output = "home_expiring_soon"
	OutputHomeExpired      Output = "home_expired"
	OutputFiltered         Output = "filtered"
	OutputCalendar         Output = "calendar"
)

// The home carousels show at most this many entries.
const homeListCap = 10

// ListViewState holds the filter selections of one screen scope and
// recombines them with the item and category streams into derived lists.
// Every input change triggers a full recomputation from a snapshot of all
// inputs; there is no incremental state between recomputations. Each
// screen owns its own instance, so sibling screens never share filters.
type ListViewState struct {
	scope         string
	thresholdDays int
	now           func() time.Time
	foods         database.FoodRepository

	mu               sync.Mutex
	items            []database.FoodItem
	categories       []database.Category
	selectedCategory *int64
	keyword          string
	filterType       FilterType

	homeExpiringSoon []database.FoodItem
	homeExpired      []database.FoodItem
	filtered         []database.FoodItem
	calendarItems    []database.FoodItem

	subscribers map[Output][]chan []database.FoodItem
}

func NewListViewState(scope string, foods database.FoodRepository, thresholdDays int) *ListViewState {
	return &ListViewState{
		scope:         scope,
		thresholdDays: thresholdDays,
		now:           time.Now,
		foods:         foods,
		filterType:    FilterAll,
		subscribers:   make(map[Output][]chan []database.FoodItem),
	}
}

func (v *ListViewState) Scope() string {
	return v.scope
}

// SetClock replaces the wall clock. Tests use it to control "today".
func (v *ListViewState) SetClock(now func() time.Time) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.now = now
	v.recompute()
}

// SetItems replaces the item stream snapshot, usually pushed by the
// repository after a mutation. The list is expected sorted by expiry.
func (v *ListViewState) SetItems(items []database.FoodItem) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.items = items
	v.recompute()
}

func (v *ListViewState) SetCategories(categories []database.Category) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.categories = categories
	v.recompute()
}

func (v *ListViewState) SetCategoryFilter(categoryID *int64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if equalCategoryID(v.selectedCategory, categoryID) {
		return
	}
	v.selectedCategory = categoryID
	v.recompute()
}

func (v *ListViewState) SetSearchKeyword(keyword string) {
	keyword = strings.TrimSpace(keyword)
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.keyword == keyword {
		return
	}
	v.keyword = keyword
	v.recompute()
}

func (v *ListViewState) SetFilterType(filterType FilterType) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.filterType == filterType {
		return
	}
	v.filterType = filterType
	v.recompute()
}

func (v *ListViewState) HomeExpiringSoon() []database.FoodItem {
	v.mu.Lock()
	defer v.mu.Unlock()
	return copyItems(v.homeExpiringSoon)
}

func (v *ListViewState) HomeExpired() []database.FoodItem {
	v.mu.Lock()
	defer v.mu.Unlock()
	return copyItems(v.homeExpired)
}

func (v *ListViewState) FilteredItems() []database.FoodItem {
	v.mu.Lock()
	defer v.mu.Unlock()
	return copyItems(v.filtered)
}

func (v *ListViewState) CalendarItems() []database.FoodItem {
	v.mu.Lock()
	defer v.mu.Unlock()
	return copyItems(v.calendarItems)
}

// Subscribe returns a channel carrying the named output's list after each
// recomputation. Delivery is latest-value: a slow consumer finds the
// newest list in the buffer, never a backlog of stale ones.
func (v *ListViewState) Subscribe(output Output) <-chan []database.FoodItem {
	v.mu.Lock()
	defer v.mu.Unlock()
	ch := make(chan []database.FoodItem, 1)
	v.subscribers[output] = append(v.subscribers[output], ch)
	return ch
}

// LoadItemsExpiringOn queries the store for items expiring within the
// given date's local midnight-to-midnight window and publishes them on the
// calendar output. Category and keyword filters deliberately do not apply
// to the calendar list.
func (v *ListViewState) LoadItemsExpiringOn(date time.Time) ([]database.FoodItem, error) {
	start, end := database.DayRange(date)
	items, err := v.foods.ExpiringBetween(start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load items expiring on %s: %w", date.Format("2006-01-02"), err)
	}

	v.mu.Lock()
	v.calendarItems = items
	v.publish(OutputCalendar, items)
	v.mu.Unlock()

	return copyItems(items), nil
}

// recompute rebuilds every derived list from the current input snapshot.
// Callers hold v.mu.
func (v *ListViewState) recompute() {
	now := v.now()

	base := ApplyFilter(v.items, v.categories, Filter{
		CategoryID: v.selectedCategory,
		Keyword:    v.keyword,
		Type:       FilterAll,
	}, now, v.thresholdDays)

	expired := make([]database.FoodItem, 0, homeListCap)
	expiringSoon := make([]database.FoodItem, 0, homeListCap)
	for _, item := range base {
		if item.IsExpired(now) {
			if len(expired) < homeListCap {
				expired = append(expired, item)
			}
		} else if item.IsExpiringSoon(now, v.thresholdDays) {
			if len(expiringSoon) < homeListCap {
				expiringSoon = append(expiringSoon, item)
			}
		}
	}
	v.homeExpired = expired
	v.homeExpiringSoon = expiringSoon

	v.filtered = ApplyFilter(v.items, v.categories, Filter{
		CategoryID: v.selectedCategory,
		Keyword:    v.keyword,
		Type:       v.filterType,
	}, now, v.thresholdDays)

	v.publish(OutputHomeExpired, v.homeExpired)
	v.publish(OutputHomeExpiringSoon, v.homeExpiringSoon)
	v.publish(OutputFiltered, v.filtered)
}

// publish pushes the list to each subscriber, replacing any undelivered
// previous value. Callers hold v.mu.
func (v *ListViewState) publish(output Output, items []database.FoodItem) {
	for _, ch := range v.subscribers[output] {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- copyItems(items):
		default:
		}
	}
}

func equalCategoryID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func copyItems(items []database.FoodItem) []database.FoodItem {
	copied := make([]database.FoodItem, len(items))
	copy(copied, items)
	return copied
}
