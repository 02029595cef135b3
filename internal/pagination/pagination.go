// Package pagination computes page windows for long result lists.
//
// Everything here is pure arithmetic over (total items, page size, current
// page, button budget) with no I/O and no hidden state. The button budget is
// derived from the viewport width so narrow screens get fewer page buttons.
package pagination

// ButtonWidth is the assumed pixel width of a single page button.
const ButtonWidth = 42

// DefaultPageSize is the number of items shown per page.
const DefaultPageSize = 10

// DefaultMaxButtons is the button budget used when no viewport width is known.
const DefaultMaxButtons = 10

// Window describes the visible slice of an ordered result set and the
// contiguous range of page-indicator buttons to render.
//
// The item slice is [SliceLow, SliceHigh) into the full ordered set. Page
// buttons run StartPage..EndPage inclusive; when the set is empty,
// EndPage < StartPage and no buttons are rendered.
type Window struct {
	TotalPages int  `json:"totalPages"`
	Page       int  `json:"page"`
	SliceLow   int  `json:"sliceLow"`
	SliceHigh  int  `json:"sliceHigh"`
	StartPage  int  `json:"startPage"`
	EndPage    int  `json:"endPage"`
	HasPrev    bool `json:"hasPrev"`
	HasNext    bool `json:"hasNext"`
}

// MaxButtons derives the page-button budget from a viewport width in pixels.
// Always at least 1.
func MaxButtons(viewportWidth int) int {
	n := viewportWidth / ButtonWidth
	if n < 1 {
		n = 1
	}
	return n
}

// Compute returns the window for a result set of total items with the given
// page size, 1-based current page and button budget. The page is clamped to
// [1, totalPages]; pageSize and maxButtons are clamped to at least 1.
//
// Button selection: if every page fits in the budget, show them all.
// Near the start show the first maxButtons pages, near the end the last
// maxButtons, otherwise a window of width maxButtons centered on the
// current page.
func Compute(total, page, pageSize, maxButtons int) Window {
	if pageSize < 1 {
		pageSize = 1
	}
	if maxButtons < 1 {
		maxButtons = 1
	}

	totalPages := (total + pageSize - 1) / pageSize
	page = clamp(page, 1, max(totalPages, 1))

	low := (page - 1) * pageSize
	if low > total {
		low = total
	}
	high := min(page*pageSize, total)

	half := maxButtons / 2
	var start, end int
	switch {
	case totalPages <= maxButtons:
		start, end = 1, totalPages
	case page <= half:
		start, end = 1, maxButtons
	case page+half >= totalPages:
		start, end = totalPages-maxButtons+1, totalPages
	default:
		start = page - half
		end = start + maxButtons - 1
	}

	return Window{
		TotalPages: totalPages,
		Page:       page,
		SliceLow:   low,
		SliceHigh:  high,
		StartPage:  start,
		EndPage:    end,
		HasPrev:    page > 1,
		HasNext:    page < totalPages,
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
