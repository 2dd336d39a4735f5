package database

import (
	"database/sql"
	"fmt"
)

// SQLCategoryRepository handles database operations for categories
type SQLCategoryRepository struct {
	db *DB
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *DB) *SQLCategoryRepository {
	return &SQLCategoryRepository{db: db}
}

// InsertIfAbsent inserts a category unless one with the same name (case
// insensitive, via the NOCASE unique index) already exists. It returns the
// id of the stored category and whether a new row was created.
func (r *SQLCategoryRepository) InsertIfAbsent(category Category) (int64, bool, error) {
	result, err := r.db.Exec(`
		INSERT OR IGNORE INTO categories (name, isCustom) VALUES (?, ?)
	`, category.Name, category.IsCustom)
	if err != nil {
		return 0, false, fmt.Errorf("failed to insert category: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, false, fmt.Errorf("failed to check inserted rows: %w", err)
	}

	if affected == 0 {
		existing, err := r.GetByName(category.Name)
		if err != nil {
			return 0, false, err
		}
		if existing == nil {
			return 0, false, fmt.Errorf("category %q neither inserted nor found", category.Name)
		}
		return existing.ID, false, nil
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, false, fmt.Errorf("failed to get inserted category id: %w", err)
	}

	return id, true, nil
}

// BulkInsertIfAbsent inserts the given categories with insert-if-absent
// semantics and returns how many rows were actually created.
func (r *SQLCategoryRepository) BulkInsertIfAbsent(categories []Category) (int, error) {
	inserted := 0
	for _, category := range categories {
		_, created, err := r.InsertIfAbsent(category)
		if err != nil {
			return inserted, err
		}
		if created {
			inserted++
		}
	}
	return inserted, nil
}

func (r *SQLCategoryRepository) Update(category Category) error {
	_, err := r.db.Exec(`
		UPDATE categories SET name = ?, isCustom = ? WHERE id = ?
	`, category.Name, category.IsCustom, category.ID)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	return nil
}

// DeleteAndUncategorizeItems nulls the category reference on every food
// item pointing at the category, then deletes the category row. Both
// statements run in one transaction; the order matters, so no item is
// ever left referencing a deleted category.
func (r *SQLCategoryRepository) DeleteAndUncategorizeItems(id int64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`UPDATE food_items SET categoryId = NULL WHERE categoryId = ?`, id); err != nil {
		return fmt.Errorf("failed to uncategorize items: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM categories WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit category deletion: %w", err)
	}

	return nil
}

func (r *SQLCategoryRepository) All() ([]Category, error) {
	rows, err := r.db.Query(`SELECT id, name, isCustom FROM categories ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		var category Category
		if err := rows.Scan(&category.ID, &category.Name, &category.IsCustom); err != nil {
			return nil, fmt.Errorf("failed to scan category row: %w", err)
		}
		categories = append(categories, category)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category rows: %w", err)
	}

	return categories, nil
}

func (r *SQLCategoryRepository) GetByID(id int64) (*Category, error) {
	var category Category
	err := r.db.QueryRow(`SELECT id, name, isCustom FROM categories WHERE id = ?`, id).
		Scan(&category.ID, &category.Name, &category.IsCustom)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &category, nil
}

// GetByName looks a category up case-insensitively, used for duplicate detection.
func (r *SQLCategoryRepository) GetByName(name string) (*Category, error) {
	var category Category
	err := r.db.QueryRow(`SELECT id, name, isCustom FROM categories WHERE name = ? COLLATE NOCASE LIMIT 1`, name).
		Scan(&category.ID, &category.Name, &category.IsCustom)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category by name: %w", err)
	}
	return &category, nil
}

func (r *SQLCategoryRepository) Count() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM categories`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count categories: %w", err)
	}
	return count, nil
}
