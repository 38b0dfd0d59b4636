package http

import (
	"context"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/julienschmidt/httprouter"

	"github.com/example/booking-admin/internal/application"
	"github.com/example/booking-admin/internal/form"
	"github.com/example/booking-admin/internal/listing"
)

// maxFormBytes caps request bodies for record forms.
const maxFormBytes = 1 << 20

type catalogService[T any] interface {
	Name() string
	Sortable() bool
	Submitting() bool
	List(ctx context.Context, q application.ViewQuery) (listing.View[T], error)
	Get(id int) (T, error)
	FormValues(id int) (form.Values, error)
	Create(ctx context.Context, values form.Values) (T, error)
	Update(ctx context.Context, id int, values form.Values) (T, error)
	Delete(ctx context.Context, id int, confirm listing.Confirmer) error
	Reload(ctx context.Context) error
	LoadError() error
}

// CatalogHandler serves the list, form and delete endpoints of one resource.
type CatalogHandler[T any] struct {
	service   catalogService[T]
	responder responder
	logger    *slog.Logger
}

// NewCatalogHandler constructs a handler for service.
func NewCatalogHandler[T any](service catalogService[T], logger *slog.Logger) *CatalogHandler[T] {
	base := defaultLogger(logger)
	return &CatalogHandler[T]{service: service, responder: newResponder(base), logger: base}
}

func (h *CatalogHandler[T]) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "CatalogHandler", operation, append([]any{"resource", h.service.Name()}, attrs...)...)
}

// List answers GET /<resource>.
func (h *CatalogHandler[T]) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := r.Context()
	query := r.URL.Query()

	if reload, _ := strconv.ParseBool(query.Get("reload")); reload {
		if err := h.service.Reload(ctx); err != nil {
			h.log(ctx, "List").WarnContext(ctx, "reload failed", "error", err, "error_kind", application.ErrorKind(err))
		}
	}

	view, err := h.service.List(ctx, viewQuery(query))
	if err != nil {
		h.log(ctx, "List", "error_kind", application.ErrorKind(err)).InfoContext(ctx, "list rejected", "error", err)
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	resp := toListResponse(view, h.service.LoadError())
	resp.Sortable = h.service.Sortable()
	resp.Submitting = h.service.Submitting()
	h.responder.writeJSON(ctx, w, http.StatusOK, resp)
}

// Get answers GET /<resource>/:id with the record and its edit form prefill.
func (h *CatalogHandler[T]) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := r.Context()
	id, ok := recordID(ps)
	if !ok {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errInvalidRecordID)
		return
	}

	record, err := h.service.Get(id)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	values, err := h.service.FormValues(id)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	h.responder.writeJSON(ctx, w, http.StatusOK, recordResponse[T]{Data: record, Form: values})
}

// Create answers POST /<resource>.
func (h *CatalogHandler[T]) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := r.Context()

	values, err := decodeValues(w, r)
	if err != nil {
		h.log(ctx, "Create", "error_kind", "bad_request").WarnContext(ctx, "failed to decode form", "error", err)
		h.responder.writeError(ctx, w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	record, err := h.service.Create(ctx, values)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	h.responder.writeJSON(ctx, w, http.StatusCreated, recordResponse[T]{Data: record})
}

// Update answers PUT /<resource>/:id. Fields left out of the body keep their
// current values.
func (h *CatalogHandler[T]) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := r.Context()
	id, ok := recordID(ps)
	if !ok {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errInvalidRecordID)
		return
	}

	values, err := decodeValues(w, r)
	if err != nil {
		h.log(ctx, "Update", "id", id, "error_kind", "bad_request").WarnContext(ctx, "failed to decode form", "error", err)
		h.responder.writeError(ctx, w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	record, err := h.service.Update(ctx, id, values)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	h.responder.writeJSON(ctx, w, http.StatusOK, recordResponse[T]{Data: record})
}

// Delete answers DELETE /<resource>/:id. The request must carry confirm=true
// or X-Confirm: yes.
func (h *CatalogHandler[T]) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := r.Context()
	id, ok := recordID(ps)
	if !ok {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errInvalidRecordID)
		return
	}

	confirmed := deleteConfirmed(r)
	confirm := listing.ConfirmFunc(func(ctx context.Context, prompt string) bool {
		h.log(ctx, "Delete", "id", id).DebugContext(ctx, "confirmation requested", "prompt", prompt, "confirmed", confirmed)
		return confirmed
	})

	if err := h.service.Delete(ctx, id, confirm); err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	h.responder.writeJSON(ctx, w, http.StatusNoContent, nil)
}

func viewQuery(query url.Values) application.ViewQuery {
	var q application.ViewQuery
	if query.Has("search") {
		search := query.Get("search")
		q.Search = &search
	}
	if query.Has("sort") {
		sort := query.Get("sort")
		q.Sort = &sort
	}
	if page, err := strconv.Atoi(query.Get("page")); err == nil {
		q.Page = page
	}
	return q
}

func recordID(ps httprouter.Params) (int, bool) {
	id, err := strconv.Atoi(ps.ByName("id"))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func deleteConfirmed(r *http.Request) bool {
	if confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm")); confirmed {
		return true
	}
	switch strings.ToLower(strings.TrimSpace(r.Header.Get("X-Confirm"))) {
	case "yes", "true", "1":
		return true
	}
	return false
}

// decodeValues reads a urlencoded form or a flat JSON object.
func decodeValues(w http.ResponseWriter, r *http.Request) (form.Values, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxFormBytes))
	if err != nil {
		return nil, err
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" {
		parsed, err := url.ParseQuery(string(data))
		if err != nil {
			return nil, err
		}
		return form.ValuesFromForm(parsed), nil
	}
	return form.ValuesFromJSON(data)
}

type recordResponse[T any] struct {
	Data T           `json:"data"`
	Form form.Values `json:"form,omitempty"`
}

type listResponse[T any] struct {
	Data        []T    `json:"data"`
	TotalItems  int    `json:"total_items"`
	TotalPages  int    `json:"total_pages"`
	CurrentPage int    `json:"current_page"`
	PageSize    int    `json:"page_size"`
	Offset      int    `json:"offset"`
	Pages       []int  `json:"pages"`
	HasPrevious bool   `json:"has_previous"`
	HasNext     bool   `json:"has_next"`
	Search      string `json:"search"`
	Sort        string `json:"sort"`
	Sortable    bool   `json:"sortable"`
	Submitting  bool   `json:"submitting"`
	LoadError   string `json:"load_error,omitempty"`
}

func toListResponse[T any](view listing.View[T], loadErr error) listResponse[T] {
	items := view.Items
	if items == nil {
		items = []T{}
	}
	pages := view.Pages
	if pages == nil {
		pages = []int{}
	}
	resp := listResponse[T]{
		Data:        items,
		TotalItems:  view.TotalItems,
		TotalPages:  view.TotalPages,
		CurrentPage: view.CurrentPage,
		PageSize:    view.PageSize,
		Offset:      view.Offset(),
		Pages:       pages,
		HasPrevious: view.HasPrevious,
		HasNext:     view.HasNext,
		Search:      view.SearchTerm,
		Sort:        string(view.SortOrder),
	}
	if loadErr != nil {
		resp.LoadError = loadErr.Error()
	}
	return resp
}
