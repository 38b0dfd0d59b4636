package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/example/booking-admin/internal/application"
)

// AppName is shown on the landing payload.
const AppName = "Booking Admin"

type dashboardService interface {
	Metrics(ctx context.Context) application.Metrics
}

// DashboardHandler serves the landing page, navigation and metrics.
type DashboardHandler struct {
	service   dashboardService
	session   SessionChecker
	responder responder
	logger    *slog.Logger
}

func NewDashboardHandler(service dashboardService, session SessionChecker, logger *slog.Logger) *DashboardHandler {
	base := defaultLogger(logger)
	return &DashboardHandler{service: service, session: session, responder: newResponder(base), logger: base}
}

func (h *DashboardHandler) authenticated() bool {
	return h.session != nil && h.session.IsAuthenticated()
}

func (h *DashboardHandler) Landing(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	authenticated := h.authenticated()
	h.responder.writeJSON(r.Context(), w, http.StatusOK, landingResponse{
		App:           AppName,
		Authenticated: authenticated,
		Navigation:    application.Navigation(authenticated),
	})
}

func (h *DashboardHandler) Navigation(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.responder.writeJSON(r.Context(), w, http.StatusOK, navigationResponse{Links: application.Navigation(h.authenticated())})
}

func (h *DashboardHandler) Metrics(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	metrics := h.service.Metrics(r.Context())
	if len(metrics.Failures) > 0 {
		handlerLogger(r.Context(), h.logger, "DashboardHandler", "Metrics").
			WarnContext(r.Context(), "metrics computed from partial data", "failures", len(metrics.Failures))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, metrics)
}

type landingResponse struct {
	App           string             `json:"app"`
	Authenticated bool               `json:"authenticated"`
	Navigation    []application.Link `json:"navigation"`
}

type navigationResponse struct {
	Links []application.Link `json:"links"`
}
