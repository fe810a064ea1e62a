// Package pagination resolves page/limit parameters into a window over a
// result set and derives the metadata returned with every listing.
package pagination

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

var ErrInvalidPagination = errors.New("page and limit must be positive integers")

// Window is a validated (page, size) pair. Page is 1-based.
type Window struct {
	Page int
	Size int
}

// Offset returns the number of records to skip before the window starts.
func (w Window) Offset() uint64 {
	return uint64(w.Page-1) * uint64(w.Size)
}

func (w Window) Limit() uint64 {
	return uint64(w.Size)
}

// Resolve parses raw page and limit values. Both must be integers greater
// than zero. No upper bound is applied.
func Resolve(page, limit string) (Window, error) {
	pageNumber, err := strconv.Atoi(page)
	if err != nil {
		return Window{}, fmt.Errorf("failed to parse page %q: %w", page, ErrInvalidPagination)
	}

	pageSize, err := strconv.Atoi(limit)
	if err != nil {
		return Window{}, fmt.Errorf("failed to parse limit %q: %w", limit, ErrInvalidPagination)
	}

	return NewWindow(pageNumber, pageSize)
}

// NewWindow validates already parsed values.
func NewWindow(page, size int) (Window, error) {
	if page <= 0 || size <= 0 {
		return Window{}, ErrInvalidPagination
	}

	// The offset must fit the signed 64-bit range of SQL OFFSET.
	if uint64(page-1) > math.MaxInt64/uint64(size) {
		return Window{}, ErrInvalidPagination
	}

	return Window{Page: page, Size: size}, nil
}

// Result is the pagination metadata of a single listing response.
type Result struct {
	Total    int
	Page     int
	PageSize int
	NextPage *int
}

// NewResult derives the metadata for window w over total records.
func NewResult(w Window, total int) Result {
	res := Result{
		Total:    total,
		Page:     w.Page,
		PageSize: w.Size,
	}

	if w.Page < res.TotalPages() {
		next := w.Page + 1
		res.NextPage = &next
	}

	return res
}

// TotalPages is ceil(Total / PageSize).
func (res Result) TotalPages() int {
	if res.PageSize <= 0 {
		return 0
	}

	pages := res.Total / res.PageSize
	if res.Total%res.PageSize != 0 {
		pages++
	}

	return pages
}
