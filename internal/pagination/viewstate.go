package pagination

// ViewState is the explicit, immutable state behind a paged job list:
// current page, active location filter and viewport width. State changes go
// through Next, a pure reducer, with no component-local mutable globals.
type ViewState struct {
	Page          int
	Filter        string
	ViewportWidth int
}

// Event is a state transition request applied by Next.
type Event interface{ isEvent() }

// SetPage navigates to a page. Out-of-range requests are clamped to
// [1, totalPages].
type SetPage struct{ Page int }

// SetFilter changes the location filter and resets to the first page.
type SetFilter struct{ Filter string }

// Resize records a new viewport width, shrinking or growing the button budget.
type Resize struct{ ViewportWidth int }

func (SetPage) isEvent()   {}
func (SetFilter) isEvent() {}
func (Resize) isEvent()    {}

// Next returns the state after applying an event. totalPages bounds page
// clamping and refers to the result set under the state's filter.
func Next(s ViewState, e Event, totalPages int) ViewState {
	switch e := e.(type) {
	case SetPage:
		s.Page = clamp(e.Page, 1, max(totalPages, 1))
	case SetFilter:
		s.Filter = e.Filter
		s.Page = 1
	case Resize:
		s.ViewportWidth = e.ViewportWidth
	}
	return s
}

// WindowFor computes the window for a state over a result set of total items.
func WindowFor(s ViewState, total int) Window {
	buttons := DefaultMaxButtons
	if s.ViewportWidth > 0 {
		buttons = MaxButtons(s.ViewportWidth)
	}
	return Compute(total, s.Page, DefaultPageSize, buttons)
}
