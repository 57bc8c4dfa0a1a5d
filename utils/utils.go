package utils

import (
	"gorm.io/gorm"
)

// Pagination is returned next to every paged list.
type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

// Paginate is a gorm scope applying page/limit as offset/limit. Values below
// 1 fall back to the first page of 10.
func Paginate(page, limit int) func(db *gorm.DB) *gorm.DB {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset((page - 1) * limit).Limit(limit)
	}
}
