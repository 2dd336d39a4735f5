package database

import (
	"strings"
	"time"
)

type FoodItem struct {
	ID              int64
	Name            string
	PurchaseDate    *int64 // epoch millis, nil when unknown
	ExpiryDate      int64  // epoch millis, always set
	Quantity        string
	CategoryID      *int64 // nil means uncategorized
	StorageLocation string
	Memo            string
	IsFrozen        bool
	Tags            []string
	ImagePath       string
}

type Category struct {
	ID       int64
	Name     string
	IsCustom bool
}

// IsExpired compares at midnight granularity in now's location; the
// time-of-day of both the clock and the stored expiry is ignored.
func (f FoodItem) IsExpired(now time.Time) bool {
	expiry := time.UnixMilli(f.ExpiryDate).In(now.Location())
	return startOfDay(now).After(startOfDay(expiry))
}

// IsExpiringSoon reports whether the item is not yet expired and today is
// strictly after (expiry - thresholdDays). On the threshold day itself it
// is false, the day after it is true.
func (f FoodItem) IsExpiringSoon(now time.Time, thresholdDays int) bool {
	if f.IsExpired(now) {
		return false
	}
	expiry := time.UnixMilli(f.ExpiryDate).In(now.Location())
	cutoff := startOfDay(expiry).AddDate(0, 0, -thresholdDays)
	return startOfDay(now).After(cutoff)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DayRange returns the millisecond timestamps for t's local
// midnight-to-midnight window, inclusive on both ends.
func DayRange(t time.Time) (int64, int64) {
	start := startOfDay(t)
	end := start.AddDate(0, 0, 1).Add(-time.Millisecond)
	return start.UnixMilli(), end.UnixMilli()
}

// Tags persist as a single comma-joined string. The encoding is lossy for
// tags that themselves contain a comma; DecodeTags splits such a tag into
// pieces. Kept deliberately, see DESIGN.md.

func EncodeTags(tags []string) string {
	return strings.Join(NormalizeTags(tags), ",")
}

func DecodeTags(s string) []string {
	return NormalizeTags(strings.Split(s, ","))
}

// NormalizeTags trims each tag and drops empty results.
func NormalizeTags(tags []string) []string {
	normalized := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			normalized = append(normalized, tag)
		}
	}
	return normalized
}
