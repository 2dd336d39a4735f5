package inventory

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/newkimjiwon/freshbox/app/database"
)

// Repository fronts the store for the rest of the application. Reads pass
// straight through; mutations additionally re-read the affected stream and
// push it to registered listeners, which is how view-state instances learn
// about changes. The composite category deletion and the one-shot save and
// category-added events also live here.
type Repository struct {
	foods      database.FoodRepository
	categories database.CategoryRepository
	now        func() time.Time

	mu                sync.Mutex
	itemListeners     []func([]database.FoodItem)
	categoryListeners []func([]database.Category)

	SaveEvents     OneShotEvent[string]
	CategoryEvents OneShotEvent[string]
}

func NewRepository(foods database.FoodRepository, categories database.CategoryRepository) *Repository {
	return &Repository{
		foods:      foods,
		categories: categories,
		now:        time.Now,
	}
}

// SetClock replaces the wall clock used for the active/expired split.
func (r *Repository) SetClock(now func() time.Time) {
	r.now = now
}

// OnItemsChanged registers a listener for the item stream. Listeners are
// invoked after every successful item mutation with the full list sorted
// by expiry.
func (r *Repository) OnItemsChanged(fn func([]database.FoodItem)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.itemListeners = append(r.itemListeners, fn)
}

// OnCategoriesChanged registers a listener for the category stream.
func (r *Repository) OnCategoriesChanged(fn func([]database.Category)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.categoryListeners = append(r.categoryListeners, fn)
}

// Refresh pushes the current streams to all listeners. Called once at
// startup so freshly wired view-state instances start from live data.
func (r *Repository) Refresh() {
	r.emitItems()
	r.emitCategories()
}

// SaveItem inserts a new item (ID zero) or updates an existing one. Tags
// are normalized before storage; the item's name must not be blank.
func (r *Repository) SaveItem(item database.FoodItem) (database.FoodItem, error) {
	item.Name = strings.TrimSpace(item.Name)
	if item.Name == "" {
		return database.FoodItem{}, ErrBlankItemName
	}
	if item.Quantity == "" {
		item.Quantity = "1"
	}
	item.Tags = database.NormalizeTags(item.Tags)

	if item.ID == 0 {
		id, err := r.foods.Insert(item)
		if err != nil {
			return database.FoodItem{}, err
		}
		item.ID = id
	} else {
		err := r.foods.Update(item)
		if errors.Is(err, sql.ErrNoRows) {
			return database.FoodItem{}, ErrItemNotFound
		}
		if err != nil {
			return database.FoodItem{}, err
		}
	}

	r.emitItems()
	r.SaveEvents.Set(fmt.Sprintf("%q saved", item.Name))

	return item, nil
}

func (r *Repository) DeleteItem(id int64) error {
	item, err := r.foods.GetByID(id)
	if err != nil {
		return err
	}
	if item == nil {
		return ErrItemNotFound
	}
	if err := r.foods.Delete(id); err != nil {
		return err
	}
	r.emitItems()
	return nil
}

func (r *Repository) GetItem(id int64) (*database.FoodItem, error) {
	return r.foods.GetByID(id)
}

func (r *Repository) AllItemsSortedByExpiry() ([]database.FoodItem, error) {
	return r.foods.AllSortedByExpiry()
}

func (r *Repository) ActiveItems() ([]database.FoodItem, error) {
	todayStart, _ := database.DayRange(r.now())
	return r.foods.Active(todayStart)
}

func (r *Repository) ExpiredItems() ([]database.FoodItem, error) {
	todayStart, _ := database.DayRange(r.now())
	return r.foods.Expired(todayStart)
}

func (r *Repository) ItemsExpiringBetween(start, end int64) ([]database.FoodItem, error) {
	return r.foods.ExpiringBetween(start, end)
}

func (r *Repository) ItemsPurchasedBetween(start, end int64) ([]database.FoodItem, error) {
	return r.foods.PurchasedBetween(start, end)
}

func (r *Repository) ItemCount() (int, error) {
	return r.foods.Count()
}

func (r *Repository) Categories() ([]database.Category, error) {
	return r.categories.All()
}

func (r *Repository) CustomCategories() ([]database.Category, error) {
	all, err := r.categories.All()
	if err != nil {
		return nil, err
	}
	custom := make([]database.Category, 0, len(all))
	for _, c := range all {
		if c.IsCustom {
			custom = append(custom, c)
		}
	}
	return custom, nil
}

func (r *Repository) GetCategory(id int64) (*database.Category, error) {
	return r.categories.GetByID(id)
}

func (r *Repository) CategoryCount() (int, error) {
	return r.categories.Count()
}

// AddCategory creates a user-defined category. Blank names and
// case-insensitive duplicates are rejected before any write happens.
func (r *Repository) AddCategory(name string) (database.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return database.Category{}, ErrBlankCategoryName
	}

	existing, err := r.categories.GetByName(name)
	if err != nil {
		return database.Category{}, err
	}
	if existing != nil {
		return database.Category{}, fmt.Errorf("%w: %s", ErrDuplicateCategory, existing.Name)
	}

	id, created, err := r.categories.InsertIfAbsent(database.Category{Name: name, IsCustom: true})
	if err != nil {
		return database.Category{}, err
	}
	if !created {
		return database.Category{}, fmt.Errorf("%w: %s", ErrDuplicateCategory, name)
	}

	r.emitCategories()
	r.CategoryEvents.Set(fmt.Sprintf("category %q added", name))

	return database.Category{ID: id, Name: name, IsCustom: true}, nil
}

// SeedCategories inserts the given categories with insert-if-absent
// semantics, so startup seeding stays idempotent across restarts.
func (r *Repository) SeedCategories(categories []database.Category) (int, error) {
	inserted, err := r.categories.BulkInsertIfAbsent(categories)
	if err != nil {
		return inserted, err
	}
	if inserted > 0 {
		r.emitCategories()
	}
	return inserted, nil
}

// DeleteCategoryAndUncategorizeItems nulls the category reference on every
// item pointing at the category before removing the category itself, in
// one store transaction.
func (r *Repository) DeleteCategoryAndUncategorizeItems(id int64) error {
	category, err := r.categories.GetByID(id)
	if err != nil {
		return err
	}
	if category == nil {
		return ErrCategoryNotFound
	}

	if err := r.categories.DeleteAndUncategorizeItems(id); err != nil {
		return err
	}

	r.emitItems()
	r.emitCategories()
	return nil
}

func (r *Repository) emitItems() {
	items, err := r.foods.AllSortedByExpiry()
	if err != nil {
		slog.Error("Failed to reload item stream", "error", err)
		return
	}

	r.mu.Lock()
	listeners := make([]func([]database.FoodItem), len(r.itemListeners))
	copy(listeners, r.itemListeners)
	r.mu.Unlock()

	for _, fn := range listeners {
		fn(items)
	}
}

func (r *Repository) emitCategories() {
	categories, err := r.categories.All()
	if err != nil {
		slog.Error("Failed to reload category stream", "error", err)
		return
	}

	r.mu.Lock()
	listeners := make([]func([]database.Category), len(r.categoryListeners))
	copy(listeners, r.categoryListeners)
	r.mu.Unlock()

	for _, fn := range listeners {
		fn(categories)
	}
}
