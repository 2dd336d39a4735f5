package inventory

import "errors"

var (
	ErrBlankCategoryName = errors.New("category name must not be blank")
	ErrDuplicateCategory = errors.New("category already exists")
	ErrCategoryNotFound  = errors.New("category not found")
	ErrItemNotFound      = errors.New("food item not found")
	ErrBlankItemName     = errors.New("food item name must not be blank")
)
