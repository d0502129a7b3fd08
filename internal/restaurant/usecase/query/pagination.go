package query

import (
	"fmt"

	"github.com/tair/restaurant-discovery/internal/restaurant/domain"
)

// PageSize is the number of items on one page of every listing
const PageSize = 10

// PageInfo describes where a page sits in the full result set
type PageInfo struct {
	Page        int   `json:"page"`
	PageSize    int   `json:"page_size"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"total_pages"`
	HasNext     bool  `json:"has_next"`
	HasPrevious bool  `json:"has_previous"`
}

func offsetFor(page int) (int, error) {
	if page == 0 {
		page = 1
	}
	if page < 1 {
		return 0, fmt.Errorf("%w: page %d is less than 1", domain.ErrNotFound, page)
	}
	return (page - 1) * PageSize, nil
}

// newPageInfo fails for a page past the end; an empty first page is valid.
func newPageInfo(page int, total int64) (PageInfo, error) {
	if page == 0 {
		page = 1
	}
	pages := int((total + PageSize - 1) / PageSize)
	if total > 0 && page > pages {
		return PageInfo{}, fmt.Errorf("%w: page %d contains no results", domain.ErrNotFound, page)
	}
	if total == 0 && page > 1 {
		return PageInfo{}, fmt.Errorf("%w: page %d contains no results", domain.ErrNotFound, page)
	}
	return PageInfo{
		Page:        page,
		PageSize:    PageSize,
		Total:       total,
		TotalPages:  pages,
		HasNext:     page < pages,
		HasPrevious: page > 1,
	}, nil
}
