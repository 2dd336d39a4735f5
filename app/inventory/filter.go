package inventory

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/newkimjiwon/freshbox/app/database"
)

// FilterType selects the base subset for the all-items list.
type FilterType string

const (
	FilterAll          FilterType = "all"
	FilterActive       FilterType = "active"
	FilterExpired      FilterType = "expired"
	FilterExpiringSoon FilterType = "expiring_soon"
)

func ParseFilterType(s string) (FilterType, error) {
	switch FilterType(s) {
	case FilterAll, FilterActive, FilterExpired, FilterExpiringSoon:
		return FilterType(s), nil
	case "":
		return FilterAll, nil
	}
	return "", fmt.Errorf("unknown filter type: %q", s)
}

// Filter holds the current selections applied on top of a base item list.
// A nil CategoryID passes every category; a blank Keyword passes everything.
type Filter struct {
	CategoryID *int64
	Keyword    string
	Type       FilterType
}

// fold case-folds for matching; Unicode folding rather than ASCII lowering
// so that non-Latin category names compare the way users expect.
func fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// categoryNames builds the id -> folded-name lookup used by keyword matching.
func categoryNames(categories []database.Category) map[int64]string {
	names := make(map[int64]string, len(categories))
	for _, c := range categories {
		names[c.ID] = fold(c.Name)
	}
	return names
}

func matchesCategory(item database.FoodItem, categoryID *int64) bool {
	if categoryID == nil {
		return true
	}
	return item.CategoryID != nil && *item.CategoryID == *categoryID
}

func matchesKeyword(item database.FoodItem, keyword string, names map[int64]string) bool {
	if keyword == "" {
		return true
	}
	if strings.Contains(fold(item.Name), keyword) {
		return true
	}
	for _, tag := range item.Tags {
		if strings.Contains(fold(tag), keyword) {
			return true
		}
	}
	if item.CategoryID != nil {
		if name, ok := names[*item.CategoryID]; ok && strings.Contains(name, keyword) {
			return true
		}
	}
	return false
}

func matchesType(item database.FoodItem, filterType FilterType, now time.Time, thresholdDays int) bool {
	switch filterType {
	case FilterActive:
		return !item.IsExpired(now)
	case FilterExpired:
		return item.IsExpired(now)
	case FilterExpiringSoon:
		return !item.IsExpired(now) && item.IsExpiringSoon(now, thresholdDays)
	default:
		return true
	}
}

// ApplyFilter keeps the items passing all three of the type, category and
// keyword conditions; the result is the intersection, never a union.
func ApplyFilter(items []database.FoodItem, categories []database.Category, f Filter, now time.Time, thresholdDays int) []database.FoodItem {
	names := categoryNames(categories)
	keyword := fold(f.Keyword)

	filtered := make([]database.FoodItem, 0, len(items))
	for _, item := range items {
		if !matchesType(item, f.Type, now, thresholdDays) {
			continue
		}
		if !matchesCategory(item, f.CategoryID) {
			continue
		}
		if !matchesKeyword(item, keyword, names) {
			continue
		}
		filtered = append(filtered, item)
	}
	return filtered
}
