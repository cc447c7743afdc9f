// Package pagination splits ordered sequences into fixed-size pages.
//
// Page requests are lenient: a missing or non-numeric page selects the first
// page, and an out-of-range number selects the last one. A request never fails.
package pagination

import (
	"errors"
	"strconv"
	"strings"
)

// Page is one window of an ordered sequence plus its navigation metadata.
type Page[T any] struct {
	Items       []T  `json:"results"`
	Number      int  `json:"page"`
	NumPages    int  `json:"num_pages"`
	Count       int  `json:"count"`
	PerPage     int  `json:"per_page"`
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
	StartIndex  int  `json:"start_index"`
	EndIndex    int  `json:"end_index"`
}

// Window describes which slice of a sequence a page covers.
// Offset and Limit map directly onto SQL OFFSET/LIMIT.
type Window struct {
	Number   int
	NumPages int
	Count    int
	PerPage  int
	Offset   int
	Limit    int
}

// NumPages returns the page count for count items at perPage per page.
// An empty sequence still has one (empty) page.
func NumPages(count, perPage int) int {
	if perPage <= 0 {
		perPage = 1
	}
	if count <= 0 {
		return 1
	}
	return (count + perPage - 1) / perPage
}

// ResolvePage maps a raw page request to a valid 1-based page number.
// Empty or non-integer input yields 1; integers outside [1, numPages] yield
// numPages, including integers too large to represent.
func ResolvePage(raw string, numPages int) int {
	if numPages < 1 {
		numPages = 1
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if errors.Is(err, strconv.ErrRange) {
		return numPages
	}
	if err != nil {
		return 1
	}
	if n < 1 || n > numPages {
		return numPages
	}
	return n
}

// CacheToken canonicalizes a raw page request for use in cache keys.
// Every input that resolves to page 1 regardless of sequence length shares
// the token "1"; other integers keep their decimal form. Integers too large
// to represent share "0", which also resolves to the last page.
func CacheToken(raw string) string {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if errors.Is(err, strconv.ErrRange) {
		return "0"
	}
	if err != nil || n == 1 {
		return "1"
	}
	return strconv.Itoa(n)
}

// Resolve computes the window selected by raw over count items.
func Resolve(count, perPage int, raw string) Window {
	if perPage <= 0 {
		perPage = 1
	}
	if count < 0 {
		count = 0
	}
	numPages := NumPages(count, perPage)
	number := ResolvePage(raw, numPages)

	offset := (number - 1) * perPage
	limit := perPage
	if offset+limit > count {
		limit = count - offset
	}
	if limit < 0 {
		limit = 0
	}

	return Window{
		Number:   number,
		NumPages: numPages,
		Count:    count,
		PerPage:  perPage,
		Offset:   offset,
		Limit:    limit,
	}
}

// NewPage assembles a page from a resolved window and the items it selected.
func NewPage[T any](w Window, items []T) Page[T] {
	if items == nil {
		items = []T{}
	}
	p := Page[T]{
		Items:       items,
		Number:      w.Number,
		NumPages:    w.NumPages,
		Count:       w.Count,
		PerPage:     w.PerPage,
		HasNext:     w.Number < w.NumPages,
		HasPrevious: w.Number > 1,
	}
	if w.Count > 0 {
		p.StartIndex = w.Offset + 1
		p.EndIndex = w.Offset + len(items)
	}
	return p
}

// Paginate returns the requested page of items. The input slice is not modified.
func Paginate[T any](items []T, perPage int, raw string) Page[T] {
	w := Resolve(len(items), perPage, raw)
	window := make([]T, w.Limit)
	copy(window, items[w.Offset:w.Offset+w.Limit])
	return NewPage(w, window)
}

// Map converts the items of a page while keeping its metadata.
func Map[T, U any](p Page[T], fn func(T) U) Page[U] {
	out := make([]U, len(p.Items))
	for i, item := range p.Items {
		out[i] = fn(item)
	}
	return Page[U]{
		Items:       out,
		Number:      p.Number,
		NumPages:    p.NumPages,
		Count:       p.Count,
		PerPage:     p.PerPage,
		HasNext:     p.HasNext,
		HasPrevious: p.HasPrevious,
		StartIndex:  p.StartIndex,
		EndIndex:    p.EndIndex,
	}
}
