package api

import (
	"time"

	"github.com/newkimjiwon/freshbox/app/database"
	"github.com/newkimjiwon/freshbox/app/inventory"
	"github.com/newkimjiwon/freshbox/app/prefs"
	"github.com/newkimjiwon/freshbox/app/tasks"
)

// DateLayout is the wire format for all dates. Storage keeps epoch
// milliseconds, the API never exposes them.
const DateLayout = "2006-01-02"

type Handler struct {
	repo          *inventory.Repository
	home          *inventory.ListViewState
	all           *inventory.ListViewState
	prefsStore    *prefs.Store
	scheduler     tasks.TaskSchedulerInterface
	thresholdDays int
	startedAt     time.Time
}

type FoodItemRequest struct {
	Name            string   `json:"name" binding:"required"`
	ExpiryDate      string   `json:"expiry_date" binding:"required,fooddate"`
	PurchaseDate    string   `json:"purchase_date" binding:"omitempty,fooddate"`
	Quantity        string   `json:"quantity"`
	CategoryID      *int64   `json:"category_id"`
	StorageLocation string   `json:"storage_location"`
	Memo            string   `json:"memo"`
	IsFrozen        bool     `json:"is_frozen"`
	Tags            []string `json:"tags"`
	ImagePath       string   `json:"image_path"`
}

type CategoryRequest struct {
	Name string `json:"name" binding:"required"`
}

type FilterRequest struct {
	Scope      string `json:"scope" binding:"required,oneof=home all"`
	CategoryID *int64 `json:"category_id"`
	Keyword    string `json:"keyword"`
	Type       string `json:"type"`
}

type ThemeRequest struct {
	Theme string `json:"theme" binding:"required,oneof=light dark system"`
}

type FoodItemResponse struct {
	ID              int64    `json:"id"`
	Name            string   `json:"name"`
	ExpiryDate      string   `json:"expiry_date"`
	PurchaseDate    string   `json:"purchase_date,omitempty"`
	Quantity        string   `json:"quantity"`
	CategoryID      *int64   `json:"category_id"`
	StorageLocation string   `json:"storage_location,omitempty"`
	Memo            string   `json:"memo,omitempty"`
	IsFrozen        bool     `json:"is_frozen"`
	Tags            []string `json:"tags"`
	ImagePath       string   `json:"image_path,omitempty"`
	IsExpired       bool     `json:"is_expired"`
	IsExpiringSoon  bool     `json:"is_expiring_soon"`
}

type CategoryResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	IsCustom bool   `json:"is_custom"`
}

// CalendarMarker summarizes one day of a month for the calendar grid.
type CalendarMarker struct {
	Date          string `json:"date"`
	ExpiryCount   int    `json:"expiry_count"`
	PurchaseCount int    `json:"purchase_count"`
}

func newFoodItemResponse(item database.FoodItem, now time.Time, thresholdDays int) FoodItemResponse {
	resp := FoodItemResponse{
		ID:              item.ID,
		Name:            item.Name,
		ExpiryDate:      formatDate(item.ExpiryDate),
		Quantity:        item.Quantity,
		CategoryID:      item.CategoryID,
		StorageLocation: item.StorageLocation,
		Memo:            item.Memo,
		IsFrozen:        item.IsFrozen,
		Tags:            item.Tags,
		ImagePath:       item.ImagePath,
		IsExpired:       item.IsExpired(now),
		IsExpiringSoon:  item.IsExpiringSoon(now, thresholdDays),
	}
	if resp.Tags == nil {
		resp.Tags = []string{}
	}
	if item.PurchaseDate != nil {
		resp.PurchaseDate = formatDate(*item.PurchaseDate)
	}
	return resp
}

func newFoodItemResponses(items []database.FoodItem, now time.Time, thresholdDays int) []FoodItemResponse {
	responses := make([]FoodItemResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, newFoodItemResponse(item, now, thresholdDays))
	}
	return responses
}

func newCategoryResponse(category database.Category) CategoryResponse {
	return CategoryResponse{
		ID:       category.ID,
		Name:     category.Name,
		IsCustom: category.IsCustom,
	}
}

// toFoodItem converts the request into a storage item. Date fields were
// already validated by the fooddate binding rule.
func (r FoodItemRequest) toFoodItem(id int64) database.FoodItem {
	item := database.FoodItem{
		ID:              id,
		Name:            r.Name,
		Quantity:        r.Quantity,
		CategoryID:      r.CategoryID,
		StorageLocation: r.StorageLocation,
		Memo:            r.Memo,
		IsFrozen:        r.IsFrozen,
		Tags:            r.Tags,
		ImagePath:       r.ImagePath,
	}
	if t, err := parseDate(r.ExpiryDate); err == nil {
		item.ExpiryDate = t.UnixMilli()
	}
	if r.PurchaseDate != "" {
		if t, err := parseDate(r.PurchaseDate); err == nil {
			millis := t.UnixMilli()
			item.PurchaseDate = &millis
		}
	}
	return item
}

func parseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.Local)
}

func formatDate(millis int64) string {
	return time.UnixMilli(millis).In(time.Local).Format(DateLayout)
}
