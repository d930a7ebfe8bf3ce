package services

import (
	"math"

	"github.com/anonto42/quillpress/backend/internal/models"
)

// Paginate turns a 1-based page into a skip/limit window. deletedDocCount is
// the number of rows the client removed since it computed its previous page;
// subtracting it keeps later pages aligned without server-side cursors. It
// cannot see deletions made by other clients.
func Paginate(page, pageSize, deletedDocCount int) models.Window {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}
	// saturate so a huge page lands past the data instead of wrapping to page 1
	skip := math.MaxInt
	if page-1 <= math.MaxInt/pageSize {
		skip = (page - 1) * pageSize
	}
	return window(skip, deletedDocCount, pageSize, pageSize)
}

// window clamps a raw skip/limit pair and applies the client's deletion count.
func window(skip, deletedDocCount, limit, maxLimit int) models.Window {
	if deletedDocCount > 0 {
		skip -= deletedDocCount
	}
	if skip < 0 {
		skip = 0
	}
	if limit < 1 || limit > maxLimit {
		limit = maxLimit
	}
	return models.Window{Skip: int64(skip), Limit: int64(limit)}
}
