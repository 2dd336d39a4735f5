package database

import (
	"database/sql"
	"fmt"
)

const foodColumns = `id, name, purchaseDate, expiryDate, quantity, categoryId,
	COALESCE(storageLocation, ''), COALESCE(memo, ''), isFrozen, tags, COALESCE(imagePath, '')`

// SQLFoodRepository handles database operations for food items
type SQLFoodRepository struct {
	db *DB
}

// NewFoodRepository creates a new food item repository
func NewFoodRepository(db *DB) *SQLFoodRepository {
	return &SQLFoodRepository{db: db}
}

func (r *SQLFoodRepository) Insert(item FoodItem) (int64, error) {
	result, err := r.db.Exec(`
		INSERT INTO food_items (name, purchaseDate, expiryDate, quantity, categoryId,
			storageLocation, memo, isFrozen, tags, imagePath)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, item.Name, nullInt64(item.PurchaseDate), item.ExpiryDate, item.Quantity,
		nullInt64(item.CategoryID), nullString(item.StorageLocation), nullString(item.Memo),
		item.IsFrozen, EncodeTags(item.Tags), nullString(item.ImagePath))
	if err != nil {
		return 0, fmt.Errorf("failed to insert food item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get inserted food item id: %w", err)
	}

	return id, nil
}

func (r *SQLFoodRepository) Update(item FoodItem) error {
	result, err := r.db.Exec(`
		UPDATE food_items
		SET name = ?, purchaseDate = ?, expiryDate = ?, quantity = ?, categoryId = ?,
			storageLocation = ?, memo = ?, isFrozen = ?, tags = ?, imagePath = ?
		WHERE id = ?
	`, item.Name, nullInt64(item.PurchaseDate), item.ExpiryDate, item.Quantity,
		nullInt64(item.CategoryID), nullString(item.StorageLocation), nullString(item.Memo),
		item.IsFrozen, EncodeTags(item.Tags), nullString(item.ImagePath), item.ID)
	if err != nil {
		return fmt.Errorf("failed to update food item: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check updated rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func (r *SQLFoodRepository) Delete(id int64) error {
	_, err := r.db.Exec(`DELETE FROM food_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete food item: %w", err)
	}
	return nil
}

func (r *SQLFoodRepository) GetByID(id int64) (*FoodItem, error) {
	row := r.db.QueryRow(`SELECT `+foodColumns+` FROM food_items WHERE id = ?`, id)

	item, err := scanFoodItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get food item: %w", err)
	}

	return &item, nil
}

func (r *SQLFoodRepository) AllSortedByExpiry() ([]FoodItem, error) {
	return r.queryItems(`SELECT ` + foodColumns + ` FROM food_items ORDER BY expiryDate ASC`)
}

// Active returns items whose expiry has not passed today's midnight, soonest first.
func (r *SQLFoodRepository) Active(todayStart int64) ([]FoodItem, error) {
	return r.queryItems(`SELECT `+foodColumns+` FROM food_items WHERE expiryDate >= ? ORDER BY expiryDate ASC`, todayStart)
}

// Expired returns items whose expiry lies before today's midnight, most recent first.
func (r *SQLFoodRepository) Expired(todayStart int64) ([]FoodItem, error) {
	return r.queryItems(`SELECT `+foodColumns+` FROM food_items WHERE expiryDate < ? ORDER BY expiryDate DESC`, todayStart)
}

func (r *SQLFoodRepository) ByCategory(categoryID int64) ([]FoodItem, error) {
	return r.queryItems(`SELECT `+foodColumns+` FROM food_items WHERE categoryId = ? ORDER BY expiryDate ASC`, categoryID)
}

// WithTag matches against the comma-joined tag column, so the match is a
// substring match over the whole encoded list.
func (r *SQLFoodRepository) WithTag(tag string) ([]FoodItem, error) {
	return r.queryItems(`SELECT `+foodColumns+` FROM food_items WHERE tags LIKE '%' || ? || '%' ORDER BY expiryDate ASC`, tag)
}

func (r *SQLFoodRepository) Uncategorized() ([]FoodItem, error) {
	return r.queryItems(`SELECT ` + foodColumns + ` FROM food_items WHERE categoryId IS NULL ORDER BY expiryDate ASC`)
}

func (r *SQLFoodRepository) ExpiringBetween(start, end int64) ([]FoodItem, error) {
	return r.queryItems(`SELECT `+foodColumns+` FROM food_items WHERE expiryDate >= ? AND expiryDate <= ? ORDER BY expiryDate ASC`, start, end)
}

func (r *SQLFoodRepository) PurchasedBetween(start, end int64) ([]FoodItem, error) {
	return r.queryItems(`SELECT `+foodColumns+` FROM food_items WHERE purchaseDate IS NOT NULL AND purchaseDate >= ? AND purchaseDate <= ? ORDER BY purchaseDate ASC`, start, end)
}

func (r *SQLFoodRepository) Count() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM food_items`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count food items: %w", err)
	}
	return count, nil
}

func (r *SQLFoodRepository) queryItems(query string, args ...interface{}) ([]FoodItem, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query food items: %w", err)
	}
	defer rows.Close()

	var items []FoodItem
	for rows.Next() {
		item, err := scanFoodItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan food item row: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating food item rows: %w", err)
	}

	return items, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanFoodItem(row rowScanner) (FoodItem, error) {
	var item FoodItem
	var purchaseDate, categoryID sql.NullInt64
	var tags string

	err := row.Scan(&item.ID, &item.Name, &purchaseDate, &item.ExpiryDate, &item.Quantity,
		&categoryID, &item.StorageLocation, &item.Memo, &item.IsFrozen, &tags, &item.ImagePath)
	if err != nil {
		return FoodItem{}, err
	}

	if purchaseDate.Valid {
		item.PurchaseDate = &purchaseDate.Int64
	}
	if categoryID.Valid {
		item.CategoryID = &categoryID.Int64
	}
	item.Tags = DecodeTags(tags)

	return item, nil
}

func nullInt64(v *int64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
