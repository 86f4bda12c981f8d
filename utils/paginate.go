package utils

import "strconv"

// PageSize is the fixed number of posts per page.
const PageSize = 10

// Page is one slice of an ordered result set.
type Page[T any] struct {
	Items       []T   `json:"items"`
	Number      int   `json:"number"`
	NumPages    int   `json:"num_pages"`
	PageSize    int   `json:"page_size"`
	Total       int64 `json:"total"`
	HasNext     bool  `json:"has_next"`
	HasPrevious bool  `json:"has_previous"`
}

// PageWindow resolves a raw ?page= value against total items.
// A value that is not a number selects the first page; a number outside
// [1, numPages] selects the last page. An empty set still has one (empty) page.
func PageWindow(raw string, total int64, size int) (number, numPages, offset int) {
	if size <= 0 {
		size = PageSize
	}
	numPages = int((total + int64(size) - 1) / int64(size))
	if numPages < 1 {
		numPages = 1
	}
	number = 1
	if raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			number = n
			if n < 1 || n > numPages {
				number = numPages
			}
		}
	}
	return number, numPages, (number - 1) * size
}

// NewPage assembles a Page from a resolved window and its items.
func NewPage[T any](items []T, number, numPages, size int, total int64) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:       items,
		Number:      number,
		NumPages:    numPages,
		PageSize:    size,
		Total:       total,
		HasNext:     number < numPages,
		HasPrevious: number > 1,
	}
}
