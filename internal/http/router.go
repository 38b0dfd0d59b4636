package http

import (
	"log/slog"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/example/booking-admin/internal/application"
)

type RouterConfig struct {
	Auth         *AuthHandler
	Users        *CatalogHandler[application.User]
	Rooms        *CatalogHandler[application.Room]
	Bookings     *CatalogHandler[application.Booking]
	Dashboard    *DashboardHandler
	Events       *SessionEvents
	Session      SessionChecker
	LoginLimiter *LoginLimiter
	Logger       *slog.Logger
	Middleware   []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	router := httprouter.New()
	logger := defaultLogger(cfg.Logger)
	responder := newResponder(logger)
	gate := RequireSession(cfg.Session, logger)

	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		responder.writeJSON(r.Context(), w, http.StatusNotFound, errorResponse{Message: statusMessage(http.StatusNotFound)})
	})
	router.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		responder.writeJSON(r.Context(), w, http.StatusMethodNotAllowed, errorResponse{Message: statusMessage(http.StatusMethodNotAllowed)})
	})

	if cfg.Dashboard != nil {
		router.GET("/", cfg.Dashboard.Landing)
		router.GET("/navigation", cfg.Dashboard.Navigation)
		router.GET("/dashboard", gate(cfg.Dashboard.Metrics))
	}

	if cfg.Auth != nil {
		login := cfg.Auth.Login
		if cfg.LoginLimiter != nil {
			login = cfg.LoginLimiter.Limit(login, logger)
		}
		router.POST("/login", login)
		router.POST("/logout", cfg.Auth.Logout)
		router.POST("/register", cfg.Auth.Register)
		router.GET("/session", cfg.Auth.Session)
	}

	if cfg.Events != nil {
		router.GET("/session/events", cfg.Events.Stream)
	}

	if cfg.Users != nil {
		registerCatalog(router, "/users", cfg.Users, gate)
	}
	if cfg.Rooms != nil {
		registerCatalog(router, "/rooms", cfg.Rooms, gate)
	}
	if cfg.Bookings != nil {
		registerCatalog(router, "/bookings", cfg.Bookings, gate)
	}

	var handler http.Handler = router
	if len(cfg.Middleware) > 0 {
		for i := len(cfg.Middleware) - 1; i >= 0; i-- {
			if cfg.Middleware[i] != nil {
				handler = cfg.Middleware[i](handler)
			}
		}
	}

	return handler
}

func registerCatalog[T any](router *httprouter.Router, path string, h *CatalogHandler[T], gate func(httprouter.Handle) httprouter.Handle) {
	router.GET(path, gate(h.List))
	router.POST(path, gate(h.Create))
	router.GET(path+"/:id", gate(h.Get))
	router.PUT(path+"/:id", gate(h.Update))
	router.DELETE(path+"/:id", gate(h.Delete))
}
