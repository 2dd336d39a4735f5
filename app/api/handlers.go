package api

import (
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/newkimjiwon/freshbox/app/cfg"
	"github.com/newkimjiwon/freshbox/app/database"
	"github.com/newkimjiwon/freshbox/app/inventory"
	"github.com/newkimjiwon/freshbox/app/prefs"
	"github.com/newkimjiwon/freshbox/app/tasks"
)

func NewHandler(repo *inventory.Repository, home *inventory.ListViewState, all *inventory.ListViewState,
	prefsStore *prefs.Store, scheduler tasks.TaskSchedulerInterface, thresholdDays int) *Handler {
	return &Handler{
		repo:          repo,
		home:          home,
		all:           all,
		prefsStore:    prefsStore,
		scheduler:     scheduler,
		thresholdDays: thresholdDays,
		startedAt:     time.Now(),
	}
}

func (h *Handler) GetHome(c *gin.Context) {
	now := time.Now()

	c.JSON(http.StatusOK, gin.H{
		"expiring_soon":  newFoodItemResponses(h.home.HomeExpiringSoon(), now, h.thresholdDays),
		"expired":        newFoodItemResponses(h.home.HomeExpired(), now, h.thresholdDays),
		"threshold_days": h.thresholdDays,
	})
}

func (h *Handler) ListItems(c *gin.Context) {
	// Without query parameters the list reflects the screen's stored
	// filters; with them the stored filters are bypassed for this one
	// response.
	_, hasType := c.GetQuery("type")
	_, hasCategory := c.GetQuery("category")
	_, hasKeyword := c.GetQuery("q")

	var items []database.FoodItem
	if !hasType && !hasCategory && !hasKeyword {
		items = h.all.FilteredItems()
	} else {
		filterType, err := inventory.ParseFilterType(c.Query("type"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid filter type"})
			return
		}

		filter := inventory.Filter{Keyword: c.Query("q"), Type: filterType}
		if raw := c.Query("category"); raw != "" {
			categoryID, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category id"})
				return
			}
			filter.CategoryID = &categoryID
		}

		all, err := h.repo.AllItemsSortedByExpiry()
		if err != nil {
			slog.Error("Database error", "operation", "list_items", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		categories, err := h.repo.Categories()
		if err != nil {
			slog.Error("Database error", "operation", "list_items", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}

		items = inventory.ApplyFilter(all, categories, filter, time.Now(), h.thresholdDays)
	}

	c.JSON(http.StatusOK, gin.H{
		"items": newFoodItemResponses(items, time.Now(), h.thresholdDays),
		"total": len(items),
	})
}

func (h *Handler) CreateItem(c *gin.Context) {
	var req FoodItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item payload", "details": err.Error()})
		return
	}

	saved, err := h.repo.SaveItem(req.toFoodItem(0))
	if errors.Is(err, inventory.ErrBlankItemName) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Item name must not be blank"})
		return
	}
	if err != nil {
		slog.Error("Database error", "operation", "create_item", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusCreated, newFoodItemResponse(saved, time.Now(), h.thresholdDays))
}

func (h *Handler) GetItem(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item id"})
		return
	}

	item, err := h.repo.GetItem(id)
	if err != nil {
		slog.Error("Database error", "operation", "get_item", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if item == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
		return
	}

	c.JSON(http.StatusOK, newFoodItemResponse(*item, time.Now(), h.thresholdDays))
}

func (h *Handler) UpdateItem(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item id"})
		return
	}

	var req FoodItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item payload", "details": err.Error()})
		return
	}

	saved, err := h.repo.SaveItem(req.toFoodItem(id))
	if errors.Is(err, inventory.ErrItemNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
		return
	}
	if errors.Is(err, inventory.ErrBlankItemName) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Item name must not be blank"})
		return
	}
	if err != nil {
		slog.Error("Database error", "operation", "update_item", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, newFoodItemResponse(saved, time.Now(), h.thresholdDays))
}

func (h *Handler) DeleteItem(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item id"})
		return
	}

	err = h.repo.DeleteItem(id)
	if errors.Is(err, inventory.ErrItemNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
		return
	}
	if err != nil {
		slog.Error("Database error", "operation", "delete_item", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) GetCalendarDay(c *gin.Context) {
	date, err := parseDate(c.Param("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, expected YYYY-MM-DD"})
		return
	}

	items, err := h.all.LoadItemsExpiringOn(date)
	if err != nil {
		slog.Error("Database error", "operation", "calendar_day", "date", c.Param("date"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date":  date.Format(DateLayout),
		"items": newFoodItemResponses(items, time.Now(), h.thresholdDays),
	})
}

func (h *Handler) GetCalendarMonth(c *gin.Context) {
	month, err := time.ParseInLocation("2006-01", c.Query("month"), time.Local)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid month, expected YYYY-MM"})
		return
	}

	start := month.UnixMilli()
	end := month.AddDate(0, 1, 0).Add(-time.Millisecond).UnixMilli()

	expiring, err := h.repo.ItemsExpiringBetween(start, end)
	if err != nil {
		slog.Error("Database error", "operation", "calendar_month", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	purchased, err := h.repo.ItemsPurchasedBetween(start, end)
	if err != nil {
		slog.Error("Database error", "operation", "calendar_month", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	byDate := make(map[string]*CalendarMarker)
	marker := func(date string) *CalendarMarker {
		if m, ok := byDate[date]; ok {
			return m
		}
		m := &CalendarMarker{Date: date}
		byDate[date] = m
		return m
	}
	for _, item := range expiring {
		marker(formatDate(item.ExpiryDate)).ExpiryCount++
	}
	for _, item := range purchased {
		if item.PurchaseDate != nil {
			marker(formatDate(*item.PurchaseDate)).PurchaseCount++
		}
	}

	markers := make([]CalendarMarker, 0, len(byDate))
	for _, m := range byDate {
		markers = append(markers, *m)
	}
	sort.Slice(markers, func(i, j int) bool { return markers[i].Date < markers[j].Date })

	c.JSON(http.StatusOK, gin.H{
		"month":   month.Format("2006-01"),
		"markers": markers,
	})
}

func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.repo.Categories()
	if err != nil {
		slog.Error("Database error", "operation", "list_categories", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	responses := make([]CategoryResponse, 0, len(categories))
	for _, category := range categories {
		responses = append(responses, newCategoryResponse(category))
	}

	c.JSON(http.StatusOK, gin.H{
		"categories": responses,
		"total":      len(responses),
	})
}

func (h *Handler) CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category payload", "details": err.Error()})
		return
	}

	category, err := h.repo.AddCategory(req.Name)
	if errors.Is(err, inventory.ErrBlankCategoryName) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Category name must not be blank"})
		return
	}
	if errors.Is(err, inventory.ErrDuplicateCategory) {
		c.JSON(http.StatusConflict, gin.H{"error": "Category already exists"})
		return
	}
	if err != nil {
		slog.Error("Database error", "operation", "create_category", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusCreated, newCategoryResponse(category))
}

func (h *Handler) DeleteCategory(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category id"})
		return
	}

	err = h.repo.DeleteCategoryAndUncategorizeItems(id)
	if errors.Is(err, inventory.ErrCategoryNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}
	if err != nil {
		slog.Error("Database error", "operation", "delete_category", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) UpdateFilters(c *gin.Context) {
	var req FilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid filter payload", "details": err.Error()})
		return
	}

	filterType, err := inventory.ParseFilterType(req.Type)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid filter type"})
		return
	}

	// Each screen scope owns its own filter state, updating one never
	// touches the other.
	v := h.all
	if req.Scope == "home" {
		v = h.home
	}

	v.SetCategoryFilter(req.CategoryID)
	v.SetSearchKeyword(req.Keyword)
	v.SetFilterType(filterType)

	items := v.FilteredItems()

	c.JSON(http.StatusOK, gin.H{
		"scope": req.Scope,
		"items": newFoodItemResponses(items, time.Now(), h.thresholdDays),
		"total": len(items),
	})
}

func (h *Handler) GetTheme(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"theme": h.prefsStore.Theme()})
}

func (h *Handler) UpdateTheme(c *gin.Context) {
	var req ThemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid theme payload", "details": err.Error()})
		return
	}

	if err := h.prefsStore.SetTheme(prefs.Theme(req.Theme)); err != nil {
		slog.Error("Failed to persist theme", "theme", req.Theme, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to persist theme"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"theme": h.prefsStore.Theme()})
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"uptime":    time.Since(h.startedAt).String(),
	}

	if itemCount, err := h.repo.ItemCount(); err == nil {
		health["items"] = itemCount
	}
	if categoryCount, err := h.repo.CategoryCount(); err == nil {
		health["categories"] = categoryCount
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats := map[string]interface{}{
		"version":        cfg.GetVersion(),
		"threshold_days": h.thresholdDays,
	}

	if total, err := h.repo.ItemCount(); err == nil {
		stats["items_total"] = total
	}
	if active, err := h.repo.ActiveItems(); err == nil {
		stats["items_active"] = len(active)
	}
	if expired, err := h.repo.ExpiredItems(); err == nil {
		stats["items_expired"] = len(expired)
	}
	if categoryCount, err := h.repo.CategoryCount(); err == nil {
		stats["categories_total"] = categoryCount
	}

	c.JSON(http.StatusOK, stats)
}

// APIGetEvents drains the pending one-shot events. Reading consumes, a
// second call returns nothing new.
func (h *Handler) APIGetEvents(c *gin.Context) {
	events := make([]gin.H, 0, 2)

	if msg, ok := h.repo.SaveEvents.Consume(); ok {
		events = append(events, gin.H{"type": "item_saved", "message": msg})
	}
	if msg, ok := h.repo.CategoryEvents.Consume(); ok {
		events = append(events, gin.H{"type": "category_added", "message": msg})
	}

	c.JSON(http.StatusOK, gin.H{
		"events": events,
		"total":  len(events),
	})
}

func (h *Handler) APIRunExpiryCheck(c *gin.Context) {
	if err := h.scheduler.RunNow("expiry_check"); err != nil {
		slog.Error("Error enqueueing expiry check", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to enqueue expiry check",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Expiry check enqueued",
	})
}
