package domain

// MaxPageButtons is the widest page-number window shown by pagination controls.
const MaxPageButtons = 5

// PageSizes are the page sizes offered by the search view.
var PageSizes = []int{5, 10, 20, 50}

// Page is one page of a paginated listing plus its metadata.
type Page[T any] struct {
	Data        []T `json:"data"`
	Total       int `json:"total"`
	CurrentPage int `json:"currentPage"`
	Limit       int `json:"limit"`
	TotalPages  int `json:"totalPages"`
}

// TripPage is a page of trip search results.
type TripPage = Page[Trip]

// HasPrev reports whether first/previous controls are enabled.
func (p Page[T]) HasPrev() bool {
	return p.CurrentPage > 1
}

// HasNext reports whether next/last controls are enabled.
func (p Page[T]) HasNext() bool {
	return p.CurrentPage < p.TotalPages
}

// Window returns the page numbers to render as buttons.
func (p Page[T]) Window() []int {
	return PageWindow(p.CurrentPage, p.TotalPages)
}

// PageWindow returns at most MaxPageButtons page numbers centered on current
// and clamped to [1, total].
func PageWindow(current, total int) []int {
	if total <= 0 {
		return nil
	}
	n := min(MaxPageButtons, total)
	var start int
	switch {
	case total <= MaxPageButtons:
		start = 1
	case current <= 3:
		start = 1
	case current >= total-2:
		start = total - MaxPageButtons + 1
	default:
		start = current - 2
	}
	pages := make([]int, n)
	for i := range pages {
		pages[i] = start + i
	}
	return pages
}
