package listing

import "strings"

// SortOrder selects the ordering of a derived view.
type SortOrder string

const (
	// SortNone keeps insertion order.
	SortNone SortOrder = ""
	// SortAscending orders by the sort key, A to Z.
	SortAscending SortOrder = "asc"
	// SortDescending orders by the sort key, Z to A.
	SortDescending SortOrder = "desc"
)

// ParseSortOrder converts a query value into a SortOrder.
func ParseSortOrder(value string) (SortOrder, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "none":
		return SortNone, true
	case "asc", "ascending":
		return SortAscending, true
	case "desc", "descending":
		return SortDescending, true
	}
	return SortNone, false
}

// Valid reports whether o is one of the known orders.
func (o SortOrder) Valid() bool {
	switch o {
	case SortNone, SortAscending, SortDescending:
		return true
	}
	return false
}

// View is one page of a controller's filtered, sorted collection.
type View[T any] struct {
	Items       []T
	TotalItems  int
	TotalPages  int
	CurrentPage int
	PageSize    int
	// Pages is the window of page numbers around CurrentPage.
	Pages       []int
	HasPrevious bool
	HasNext     bool
	SearchTerm  string
	SortOrder   SortOrder
}

// Offset returns the 1-based row number of the first item on the page.
func (v View[T]) Offset() int {
	if v.CurrentPage < 1 {
		return 1
	}
	return (v.CurrentPage-1)*v.PageSize + 1
}
