package models

import "time"

// BaseModel holds the columns every table carries
type BaseModel struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PageResult is the list envelope returned by paginated endpoints
type PageResult struct {
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	TotalPages int64       `json:"total_pages"`
	Data       interface{} `json:"data"`
}

// NewPageResult builds a PageResult, computing total pages
func NewPageResult(data interface{}, total int64, page, pageSize int) PageResult {
	var pages int64
	if pageSize > 0 {
		pages = (total + int64(pageSize) - 1) / int64(pageSize)
	}
	return PageResult{
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: pages,
		Data:       data,
	}
}

// Pagination is a normalized page/page_size pair
type Pagination struct {
	Page     int
	PageSize int
}

// NewPagination clamps page to >= 1 and page size to 1..100 (default 10)
func NewPagination(page, pageSize int) Pagination {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}
	return Pagination{Page: page, PageSize: pageSize}
}

// Offset returns the row offset for the page
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}
