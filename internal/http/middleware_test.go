package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSession bool

func (s staticSession) IsAuthenticated() bool { return bool(s) }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRequireSession(t *testing.T) {
	t.Parallel()

	t.Run("rejects requests without a session", func(t *testing.T) {
		t.Parallel()

		handle := RequireSession(staticSession(false), quietLogger())(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
			t.Fatal("next handler should not be called without a session")
		})

		recorder := httptest.NewRecorder()
		handle(recorder, httptest.NewRequest(http.MethodGet, "/users", nil), nil)

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		var body errorResponse
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
		assert.Equal(t, "AUTH_REQUIRED", body.ErrorCode)
		assert.Equal(t, errNotAuthenticated.Error(), body.Message)
	})

	t.Run("passes through when a session is held", func(t *testing.T) {
		t.Parallel()

		called := false
		handle := RequireSession(staticSession(true), quietLogger())(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
			called = true
			w.WriteHeader(http.StatusOK)
		})

		recorder := httptest.NewRecorder()
		handle(recorder, httptest.NewRequest(http.MethodGet, "/users", nil), nil)

		assert.True(t, called)
		assert.Equal(t, http.StatusOK, recorder.Code)
	})
}

func TestRequestLogger(t *testing.T) {
	t.Parallel()

	var seen string
	handler := RequestLogger(quietLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := RequestIDFromContext(r.Context())
		require.True(t, ok)
		seen = id
		assert.NotNil(t, LoggerFromContext(r.Context()))
	}))

	t.Run("assigns a fresh id", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

		_, err := uuid.Parse(seen)
		require.NoError(t, err)
		assert.Equal(t, seen, recorder.Header().Get("X-Request-ID"))
	})

	t.Run("keeps a caller supplied uuid", func(t *testing.T) {
		id := uuid.NewString()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", id)

		handler.ServeHTTP(httptest.NewRecorder(), req)
		assert.Equal(t, id, seen)
	})
}

func TestRecover(t *testing.T) {
	t.Parallel()

	handler := Recover(quietLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
}

func TestCORS(t *testing.T) {
	t.Parallel()

	handler := CORS([]string{"http://console.test"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://console.test")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)
	assert.Equal(t, "http://console.test", recorder.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://elsewhere.test")
	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)
	assert.Empty(t, recorder.Header().Get("Access-Control-Allow-Origin"))
}

func TestLoginLimiter(t *testing.T) {
	t.Parallel()

	limiter := NewLoginLimiter(2)
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	handle := limiter.Limit(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.WriteHeader(http.StatusOK)
	}, quietLogger())

	attempt := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = addr
		recorder := httptest.NewRecorder()
		handle(recorder, req, nil)
		return recorder.Code
	}

	assert.Equal(t, http.StatusOK, attempt("10.0.0.1:5000"))
	assert.Equal(t, http.StatusOK, attempt("10.0.0.1:5001"))
	assert.Equal(t, http.StatusTooManyRequests, attempt("10.0.0.1:5002"), "same host, new port")
	assert.Equal(t, http.StatusOK, attempt("10.0.0.2:5000"), "other clients have their own budget")

	now = now.Add(30 * time.Second)
	assert.Equal(t, http.StatusOK, attempt("10.0.0.1:5003"), "one attempt refills every 30s")

	now = now.Add(visitorTTL + time.Minute)
	attempt("10.0.0.3:5000")
	limiter.mu.Lock()
	_, kept := limiter.visitors["10.0.0.1"]
	limiter.mu.Unlock()
	assert.False(t, kept, "idle clients are forgotten")
}
