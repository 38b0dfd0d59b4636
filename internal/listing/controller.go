package listing

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

const (
	// DefaultPageSize is the number of records shown per page.
	DefaultPageSize = 10
	// DefaultPagesPerView is the width of the page number window.
	DefaultPagesPerView = 5
)

var (
	// ErrNotFound is returned when no record carries the requested identifier.
	ErrNotFound = errors.New("listing: record not found")
	// ErrNotConfirmed is returned when a deletion was declined.
	ErrNotConfirmed = errors.New("listing: deletion not confirmed")
	// ErrSortUnsupported is returned by SetSortOrder for lists without a sort key.
	ErrSortUnsupported = errors.New("listing: sorting not supported")
)

// Record is implemented by every type a Controller can manage.
type Record[T any] interface {
	RecordID() int
	WithID(id int) T
}

// Source loads the initial collection.
type Source[T any] interface {
	Fetch(ctx context.Context) ([]T, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc[T any] func(ctx context.Context) ([]T, error)

// Fetch calls f.
func (f SourceFunc[T]) Fetch(ctx context.Context) ([]T, error) {
	return f(ctx)
}

// Confirmer is the yes/no gate consulted before a record is deleted.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmFunc adapts a function to the Confirmer interface.
type ConfirmFunc func(ctx context.Context, prompt string) bool

// Confirm calls f.
func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool {
	if f == nil {
		return false
	}
	return f(ctx, prompt)
}

// Options configures a Controller.
type Options[T any] struct {
	Name         string
	PageSize     int
	PagesPerView int
	// SearchFields returns the text matched by the search term.
	SearchFields func(T) []string
	// SortKey enables SetSortOrder when non-nil.
	SortKey func(T) string
	Locale  language.Tag
	Source  Source[T]
}

// Controller owns an in-memory collection together with its search, sort and
// pagination state. All methods are safe for concurrent use; each call is
// applied atomically so callers observe one event at a time.
type Controller[T Record[T]] struct {
	mu sync.Mutex

	name         string
	pageSize     int
	pagesPerView int
	searchFields func(T) []string
	sortKey      func(T) string
	source       Source[T]
	collator     *collate.Collator
	folder       cases.Caser

	items   []T
	nextID  int
	loadErr error

	searchTerm  string
	sortOrder   SortOrder
	currentPage int
}

// NewController builds a controller from opts.
func NewController[T Record[T]](opts Options[T]) *Controller[T] {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.PagesPerView <= 0 {
		opts.PagesPerView = DefaultPagesPerView
	}
	if opts.SearchFields == nil {
		opts.SearchFields = func(item T) []string { return []string{strconv.Itoa(item.RecordID())} }
	}
	if opts.Locale == language.Und {
		opts.Locale = language.Indonesian
	}
	return &Controller[T]{
		name:         opts.Name,
		pageSize:     opts.PageSize,
		pagesPerView: opts.PagesPerView,
		searchFields: opts.SearchFields,
		sortKey:      opts.SortKey,
		source:       opts.Source,
		collator:     collate.New(opts.Locale, collate.IgnoreCase),
		folder:       cases.Fold(),
		nextID:       1,
		currentPage:  1,
	}
}

// Name returns the resource name the controller was configured with.
func (c *Controller[T]) Name() string {
	return c.name
}

// Load replaces the collection with the records returned by the source. On
// failure the collection is emptied and the error is both returned and kept
// for LoadError.
func (c *Controller[T]) Load(ctx context.Context) ([]T, error) {
	var (
		records []T
		err     error
	)
	if c.source == nil {
		err = fmt.Errorf("listing: %s has no source configured", c.name)
	} else {
		records, err = c.source.Fetch(ctx)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.items = nil
		c.loadErr = err
		c.currentPage = 1
		return nil, err
	}

	c.items = slices.Clone(records)
	c.loadErr = nil
	for _, item := range c.items {
		if id := item.RecordID(); id >= c.nextID {
			c.nextID = id + 1
		}
	}
	c.clampLocked()
	return slices.Clone(c.items), nil
}

// LoadError reports the error of the most recent Load, if any.
func (c *Controller[T]) LoadError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadErr
}

// SetSearchTerm updates the filter and returns to the first page.
func (c *Controller[T]) SetSearchTerm(term string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.searchTerm = term
	c.currentPage = 1
}

// SetSortOrder changes the ordering of the derived view.
func (c *Controller[T]) SetSortOrder(order SortOrder) error {
	if !order.Valid() {
		return fmt.Errorf("listing: unknown sort order %q", order)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sortKey == nil && order != SortNone {
		return ErrSortUnsupported
	}
	c.sortOrder = order
	return nil
}

// Sortable reports whether the controller was configured with a sort key.
func (c *Controller[T]) Sortable() bool {
	return c.sortKey != nil
}

// GoToPage moves to page n. Requests outside [1, TotalPages] are ignored and
// reported as false.
func (c *Controller[T]) GoToPage(n int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := totalPages(len(c.filteredLocked()), c.pageSize)
	if n < 1 || n > total {
		return false
	}
	c.currentPage = n
	return true
}

// View derives the current page of the filtered and sorted collection.
func (c *Controller[T]) View() View[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	filtered := c.filteredLocked()
	total := totalPages(len(filtered), c.pageSize)
	current := c.currentPage
	if current > total {
		current = max(total, 1)
	}

	start := min((current-1)*c.pageSize, len(filtered))
	end := min(current*c.pageSize, len(filtered))

	return View[T]{
		Items:       slices.Clone(filtered[start:end]),
		TotalItems:  len(filtered),
		TotalPages:  total,
		CurrentPage: current,
		PageSize:    c.pageSize,
		Pages:       pageWindow(current, total, c.pagesPerView),
		HasPrevious: current > 1,
		HasNext:     current < total,
		SearchTerm:  c.searchTerm,
		SortOrder:   c.sortOrder,
	}
}

// Add stores candidate under a freshly assigned identifier and returns the
// stored record.
func (c *Controller[T]) Add(candidate T) T {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, item := range c.items {
		if id := item.RecordID(); id >= c.nextID {
			c.nextID = id + 1
		}
	}
	stored := candidate.WithID(c.nextID)
	c.nextID++
	c.items = append(c.items, stored)
	c.clampLocked()
	return stored
}

// Update replaces the record sharing record's identifier.
func (c *Controller[T]) Update(record T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := c.indexLocked(record.RecordID())
	if idx < 0 {
		return fmt.Errorf("%w: %s %d", ErrNotFound, c.name, record.RecordID())
	}
	c.items[idx] = record
	c.clampLocked()
	return nil
}

// Delete removes the record with the given identifier after confirm approves.
func (c *Controller[T]) Delete(ctx context.Context, id int, confirm Confirmer) error {
	c.mu.Lock()
	exists := c.indexLocked(id) >= 0
	c.mu.Unlock()
	if !exists {
		return fmt.Errorf("%w: %s %d", ErrNotFound, c.name, id)
	}

	prompt := fmt.Sprintf("Delete %s %d?", c.name, id)
	if confirm == nil || !confirm.Confirm(ctx, prompt) {
		return ErrNotConfirmed
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	idx := c.indexLocked(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s %d", ErrNotFound, c.name, id)
	}
	c.items = slices.Delete(c.items, idx, idx+1)
	c.clampLocked()
	return nil
}

// Get returns the record with the given identifier.
func (c *Controller[T]) Get(id int) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx := c.indexLocked(id)
	if idx < 0 {
		var zero T
		return zero, false
	}
	return c.items[idx], true
}

// Items returns a copy of the whole collection in insertion order.
func (c *Controller[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.items)
}

// Len returns the size of the whole collection.
func (c *Controller[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *Controller[T]) indexLocked(id int) int {
	return slices.IndexFunc(c.items, func(item T) bool { return item.RecordID() == id })
}

func (c *Controller[T]) filteredLocked() []T {
	var out []T
	if c.searchTerm == "" {
		out = slices.Clone(c.items)
	} else {
		needle := c.folder.String(c.searchTerm)
		out = make([]T, 0, len(c.items))
		for _, item := range c.items {
			if c.matchesLocked(item, needle) {
				out = append(out, item)
			}
		}
	}

	if c.sortKey != nil && c.sortOrder != SortNone {
		slices.SortStableFunc(out, func(a, b T) int {
			cmp := c.collator.CompareString(c.sortKey(a), c.sortKey(b))
			if c.sortOrder == SortDescending {
				return -cmp
			}
			return cmp
		})
	}
	return out
}

func (c *Controller[T]) matchesLocked(item T, needle string) bool {
	for _, field := range c.searchFields(item) {
		if strings.Contains(c.folder.String(field), needle) {
			return true
		}
	}
	return false
}

// clampLocked keeps currentPage inside [1, totalPages].
func (c *Controller[T]) clampLocked() {
	total := totalPages(len(c.filteredLocked()), c.pageSize)
	if c.currentPage > total {
		c.currentPage = total
	}
	if c.currentPage < 1 {
		c.currentPage = 1
	}
}

func totalPages(count, pageSize int) int {
	if count <= 0 || pageSize <= 0 {
		return 0
	}
	return (count + pageSize - 1) / pageSize
}

func pageWindow(current, total, width int) []int {
	if total == 0 {
		return nil
	}
	start := ((current-1)/width)*width + 1
	end := min(start+width-1, total)
	pages := make([]int, 0, end-start+1)
	for p := start; p <= end; p++ {
		pages = append(pages, p)
	}
	return pages
}
