package repository

import "gorm.io/gorm"

// 分页默认值与上限，事件流单页最多100条
const (
	defaultPageSize = 50
	maxPageSize     = 100
)

// Pagination 分页参数，Total由查询方回填
type Pagination struct {
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
}

// NewPagination 创建分页参数，越界值回落到默认与上限
func NewPagination(page, pageSize int) *Pagination {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return &Pagination{Page: page, PageSize: pageSize}
}

// Scope 应用分页窗口的GORM作用域
func (p *Pagination) Scope(db *gorm.DB) *gorm.DB {
	return db.Offset((p.Page - 1) * p.PageSize).Limit(p.PageSize)
}
