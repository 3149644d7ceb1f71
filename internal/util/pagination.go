package util

import (
	"math"
	"strconv"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

func ParseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

// Calculate normalises page and size and returns the row offset. page is
// capped so the offset always fits in an int.
func Calculate(page, size int) (p, offset, limit int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	if maxPage := math.MaxInt / size; page > maxPage {
		page = maxPage
	}
	return page, (page - 1) * size, size
}

// Pages is ceil(total/limit).
func Pages(total int64, limit int) int64 {
	if limit <= 0 {
		return 0
	}
	return (total + int64(limit) - 1) / int64(limit)
}

type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

func NewPagination(page, limit int, total int64) Pagination {
	return Pagination{Page: page, Limit: limit, Total: total, Pages: Pages(total, limit)}
}
