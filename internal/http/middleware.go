package http

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"github.com/example/booking-admin/internal/application"
)

// SessionChecker reports whether an operator session is held.
type SessionChecker interface {
	IsAuthenticated() bool
}

// RequireSession rejects requests with 401 while no session is held.
func RequireSession(checker SessionChecker, logger *slog.Logger) func(httprouter.Handle) httprouter.Handle {
	responder := newResponder(logger)

	return func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			if checker == nil || !checker.IsAuthenticated() {
				handlerLogger(r.Context(), responder.logger, "RequireSession", "").
					InfoContext(r.Context(), "request without session", "error_kind", application.ErrorKind(application.ErrUnauthenticated))
				responder.handleServiceError(r.Context(), w, application.ErrUnauthenticated)
				return
			}
			next(w, r, ps)
		}
	}
}

// RequestLogger attaches a logger carrying the request id to every request. A
// uuid X-Request-ID sent by the caller is kept; otherwise a new one is minted.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get("X-Request-ID")
			if _, err := uuid.Parse(id); err != nil {
				id = uuid.NewString()
			}
			w.Header().Set("X-Request-ID", id)

			logger := base.With(
				"request_id", id,
				"method", r.Method,
				"path", r.URL.Path,
			)

			ctx := ContextWithRequestID(ContextWithLogger(r.Context(), logger), id)
			start := time.Now()
			logger.InfoContext(ctx, "request started")
			next.ServeHTTP(w, r.WithContext(ctx))
			logger.InfoContext(ctx, "request completed", "duration", time.Since(start))
		})
	}
}

// Recover turns panics into 500 responses and logs them.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	recoveryLogger := panicLogger{logger: defaultLogger(logger)}
	return handlers.RecoveryHandler(handlers.RecoveryLogger(recoveryLogger))
}

type panicLogger struct {
	logger *slog.Logger
}

func (p panicLogger) Println(values ...interface{}) {
	p.logger.Error("panic recovered", "panic", fmt.Sprint(values...))
}

// CORS allows the listed browser origins to call the API with credentials.
// An empty list allows no cross-origin requests.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "X-Confirm", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
	})
	return c.Handler
}

// LoginLimiter throttles login attempts per client address.
type LoginLimiter struct {
	limit rate.Limit
	burst int
	now   func() time.Time

	mu       sync.Mutex
	visitors map[string]*visitor
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// visitorTTL is how long an idle client keeps its limiter.
const visitorTTL = 10 * time.Minute

// NewLoginLimiter allows perMinute attempts per client per minute, all of
// which may be spent at once.
func NewLoginLimiter(perMinute int) *LoginLimiter {
	if perMinute <= 0 {
		perMinute = 5
	}
	return &LoginLimiter{
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    perMinute,
		now:      time.Now,
		visitors: make(map[string]*visitor),
	}
}

func (l *LoginLimiter) allow(addr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for key, v := range l.visitors {
		if now.Sub(v.lastSeen) > visitorTTL {
			delete(l.visitors, key)
		}
	}

	v, ok := l.visitors[addr]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[addr] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// Limit wraps next so that clients over their budget get 429.
func (l *LoginLimiter) Limit(next httprouter.Handle, logger *slog.Logger) httprouter.Handle {
	responder := newResponder(logger)
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		addr := clientAddress(r)
		if !l.allow(addr) {
			w.Header().Set("Retry-After", "60")
			responder.writeJSON(r.Context(), w, http.StatusTooManyRequests, errorResponse{
				ErrorCode: "RATE_LIMITED",
				Message:   errTooManyRequests.Error(),
			})
			return
		}
		next(w, r, ps)
	}
}

func clientAddress(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
