package application

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/example/booking-admin/internal/form"
	"github.com/example/booking-admin/internal/listing"
)

// CatalogOptions configures a Catalog.
type CatalogOptions[T listing.Record[T]] struct {
	Listing listing.Options[T]
	Bind    form.Binder[T]
	Encode  form.Encoder[T]
	// RemoteCreate, when set, sends new records to the remote API instead of
	// adding them locally. The collection is reloaded after it succeeds.
	RemoteCreate func(ctx context.Context, record T) (T, error)
	Logger       *slog.Logger
}

// Catalog ties a list controller to its add/edit modal for one resource.
type Catalog[T listing.Record[T]] struct {
	name         string
	list         *listing.Controller[T]
	modal        *form.Modal[T]
	encode       form.Encoder[T]
	remoteCreate func(ctx context.Context, record T) (T, error)
	logger       *slog.Logger

	// viewMu makes a List call's search, sort and page changes one event.
	viewMu sync.Mutex
	// formMu guards the modal; a busy modal rejects new work instead of queueing.
	formMu sync.Mutex
}

// NewCatalog builds a Catalog. The collection stays empty until Reload.
func NewCatalog[T listing.Record[T]](opts CatalogOptions[T]) *Catalog[T] {
	c := &Catalog[T]{
		name:         opts.Listing.Name,
		list:         listing.NewController(opts.Listing),
		encode:       opts.Encode,
		remoteCreate: opts.RemoteCreate,
		logger:       defaultLogger(opts.Logger),
	}
	c.modal = form.New(opts.Bind, c.submit, opts.Encode)
	return c
}

// Name returns the resource name.
func (c *Catalog[T]) Name() string {
	return c.name
}

// Sortable reports whether List accepts a sort order.
func (c *Catalog[T]) Sortable() bool {
	return c.list.Sortable()
}

// Submitting reports whether a create or update is being saved, so clients
// can disable their Save action.
func (c *Catalog[T]) Submitting() bool {
	return c.modal.Pending()
}

// Reload replaces the collection from its source. A failure empties the
// collection and is kept as LoadError.
func (c *Catalog[T]) Reload(ctx context.Context) error {
	logger := serviceLogger(ctx, c.logger, "Catalog", "Reload", "resource", c.name)

	records, err := c.list.Load(ctx)
	if err != nil {
		logger.Warn("load failed", "error", err, "error_kind", ErrorKind(err))
		return fmt.Errorf("load %s: %w", c.name, err)
	}
	logger.Info("loaded", "count", len(records))
	return nil
}

// LoadError reports the failure of the most recent Reload, if any.
func (c *Catalog[T]) LoadError() error {
	return c.list.LoadError()
}

// List applies q to the view state and returns the resulting page. Nil
// Search and Sort keep the current values; a page outside the valid range is
// ignored.
func (c *Catalog[T]) List(ctx context.Context, q ViewQuery) (listing.View[T], error) {
	c.viewMu.Lock()
	defer c.viewMu.Unlock()

	if q.Sort != nil {
		order, ok := listing.ParseSortOrder(*q.Sort)
		if !ok {
			vErr := &ValidationError{}
			vErr.add("sort", fmt.Sprintf("sort must be asc, desc or none, got %q", *q.Sort))
			return listing.View[T]{}, vErr
		}
		if err := c.list.SetSortOrder(order); err != nil {
			serviceLogger(ctx, c.logger, "Catalog", "List", "resource", c.name).
				Info("sort rejected", "sort", string(order), "error_kind", ErrorKind(err))
			return listing.View[T]{}, fmt.Errorf("%s: %w", c.name, err)
		}
	}
	if q.Search != nil {
		c.list.SetSearchTerm(*q.Search)
	}
	if q.Page > 0 {
		c.list.GoToPage(q.Page)
	}
	return c.list.View(), nil
}

// Get returns the record with the given identifier.
func (c *Catalog[T]) Get(id int) (T, error) {
	record, ok := c.list.Get(id)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %s %d", ErrNotFound, c.name, id)
	}
	return record, nil
}

// Items returns a copy of the whole collection.
func (c *Catalog[T]) Items() []T {
	return c.list.Items()
}

// Len returns the size of the whole collection.
func (c *Catalog[T]) Len() int {
	return c.list.Len()
}

// FormValues returns the edit form prefill for the record with id.
func (c *Catalog[T]) FormValues(id int) (form.Values, error) {
	record, err := c.Get(id)
	if err != nil {
		return nil, err
	}
	if c.encode == nil {
		return form.Values{}, nil
	}
	return c.encode(record), nil
}

// Create validates values and stores a new record.
func (c *Catalog[T]) Create(ctx context.Context, values form.Values) (T, error) {
	logger := serviceLogger(ctx, c.logger, "Catalog", "Create", "resource", c.name)
	var zero T

	if !c.formMu.TryLock() {
		logger.Info("create rejected", "error_kind", ErrorKind(ErrSubmissionInProgress))
		return zero, ErrSubmissionInProgress
	}
	defer c.formMu.Unlock()

	if err := c.modal.Open(nil); err != nil {
		return zero, err
	}
	stored, err := c.modal.Submit(ctx, values)
	if err != nil {
		c.modal.Cancel()
		c.logFailure(logger, "create failed", err)
		return zero, err
	}

	logger.Info("record created", "id", stored.RecordID())
	return stored, nil
}

// Update applies values to the record with id. Fields missing from values
// keep their current content.
func (c *Catalog[T]) Update(ctx context.Context, id int, values form.Values) (T, error) {
	logger := serviceLogger(ctx, c.logger, "Catalog", "Update", "resource", c.name, "id", id)
	var zero T

	if !c.formMu.TryLock() {
		logger.Info("update rejected", "error_kind", ErrorKind(ErrSubmissionInProgress))
		return zero, ErrSubmissionInProgress
	}
	defer c.formMu.Unlock()

	current, err := c.Get(id)
	if err != nil {
		logger.Info("update failed", "error_kind", ErrorKind(err))
		return zero, err
	}
	if c.encode != nil {
		values = mergeValues(c.encode(current), values)
	}

	if err := c.modal.Open(&current); err != nil {
		return zero, err
	}
	stored, err := c.modal.Submit(ctx, values)
	if err != nil {
		c.modal.Cancel()
		c.logFailure(logger, "update failed", err)
		return zero, err
	}

	logger.Info("record updated")
	return stored, nil
}

// Delete removes the record with id once confirm approves.
func (c *Catalog[T]) Delete(ctx context.Context, id int, confirm listing.Confirmer) error {
	logger := serviceLogger(ctx, c.logger, "Catalog", "Delete", "resource", c.name, "id", id)

	if err := c.list.Delete(ctx, id, confirm); err != nil {
		logger.Info("delete failed", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	logger.Info("record deleted")
	return nil
}

// submit is the modal's submitter: it hands the bound record to the
// controller, or to the remote API for remote-backed resources.
func (c *Catalog[T]) submit(ctx context.Context, record T, mode form.Mode) (T, error) {
	switch mode {
	case form.ModeAdd:
		if c.remoteCreate == nil {
			return c.list.Add(record), nil
		}
		created, err := c.remoteCreate(ctx, record)
		if err != nil {
			var zero T
			return zero, err
		}
		if err := c.Reload(ctx); err != nil {
			serviceLogger(ctx, c.logger, "Catalog", "Create", "resource", c.name).
				Warn("reload after remote create failed", "error", err)
		}
		return created, nil
	case form.ModeEdit:
		if err := c.list.Update(record); err != nil {
			var zero T
			return zero, err
		}
		return record, nil
	}
	var zero T
	return zero, form.ErrClosed
}

func (c *Catalog[T]) logFailure(logger *slog.Logger, msg string, err error) {
	kind := ErrorKind(err)
	if kind == "validation" {
		logger.Info(msg, "error_kind", kind)
		return
	}
	logger.Warn(msg, "error", err, "error_kind", kind)
}
