package database

type FoodRepository interface {
	Insert(item FoodItem) (int64, error)
	Update(item FoodItem) error
	Delete(id int64) error

	GetByID(id int64) (*FoodItem, error)
	AllSortedByExpiry() ([]FoodItem, error)
	Active(todayStart int64) ([]FoodItem, error)
	Expired(todayStart int64) ([]FoodItem, error)
	ByCategory(categoryID int64) ([]FoodItem, error)
	WithTag(tag string) ([]FoodItem, error)
	Uncategorized() ([]FoodItem, error)
	ExpiringBetween(start, end int64) ([]FoodItem, error)
	PurchasedBetween(start, end int64) ([]FoodItem, error)
	Count() (int, error)
}

type CategoryRepository interface {
	InsertIfAbsent(category Category) (int64, bool, error)
	BulkInsertIfAbsent(categories []Category) (int, error)
	Update(category Category) error
	DeleteAndUncategorizeItems(id int64) error

	All() ([]Category, error)
	GetByID(id int64) (*Category, error)
	GetByName(name string) (*Category, error)
	Count() (int, error)
}

var _ FoodRepository = (*SQLFoodRepository)(nil)
var _ CategoryRepository = (*SQLCategoryRepository)(nil)
