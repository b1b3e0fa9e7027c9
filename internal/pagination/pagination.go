// Package pagination computes question-menu pages. It is pure: the cursor is
// derived from the full list and the requested index on every call, never
// stored.
package pagination

import "faq-agent/internal/domain"

const (
	// PageSize is the number of questions shown per page once paging kicks in.
	PageSize = 24
	// MenuLimit is the largest question count rendered as a single flat menu.
	MenuLimit = 25
)

// Page is one slice of a topic's question list plus navigation affordances.
type Page struct {
	Items      []domain.Question
	Index      int
	TotalPages int
	HasNext    bool
	HasPrev    bool
}

// Needed reports whether a question list of length n requires paging.
func Needed(n int) bool {
	return n > MenuLimit
}

// Paginate returns the page at pageIndex. An out-of-range index (a stale or
// tampered identifier) is clamped into [0, TotalPages-1] rather than yielding
// an empty page.
func Paginate(items []domain.Question, pageIndex int) Page {
	totalPages := (len(items) + PageSize - 1) / PageSize
	if totalPages < 1 {
		totalPages = 1
	}
	if pageIndex < 0 {
		pageIndex = 0
	}
	if pageIndex > totalPages-1 {
		pageIndex = totalPages - 1
	}

	start := pageIndex * PageSize
	end := start + PageSize
	if start > len(items) {
		start = len(items)
	}
	if end > len(items) {
		end = len(items)
	}

	return Page{
		Items:      items[start:end],
		Index:      pageIndex,
		TotalPages: totalPages,
		HasNext:    pageIndex < totalPages-1,
		HasPrev:    pageIndex > 0,
	}
}
