// Package session holds the operator's authentication state and persists the
// bearer token across restarts.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/example/booking-admin/internal/persistence"
)

// TokenKey is the storage key the bearer token is kept under.
const TokenKey = "token"

// ErrEmptyToken is returned by Login when no token is supplied.
var ErrEmptyToken = errors.New("session: token must not be empty")

// State is the observable session state.
type State struct {
	Authenticated bool      `json:"authenticated"`
	Token         string    `json:"-"`
	User          *Identity `json:"user,omitempty"`
}

// Holder is the single owner of the session. Authenticated is true exactly
// when a non-empty token is held.
type Holder struct {
	store  persistence.KeyValueStore
	logger *slog.Logger

	// transition serializes state changes so observers see them in order.
	transition sync.Mutex

	mu        sync.RWMutex
	token     string
	observers map[int]func(State)
	nextObs   int
}

// NewHolder creates an unauthenticated holder backed by store.
func NewHolder(store persistence.KeyValueStore, logger *slog.Logger) *Holder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Holder{
		store:     store,
		logger:    logger.With("component", "session"),
		observers: make(map[int]func(State)),
	}
}

// Restore reads the persisted token once. A present token is trusted as is.
// A store failure leaves the session unauthenticated and is returned.
func (h *Holder) Restore(ctx context.Context) error {
	h.transition.Lock()
	defer h.transition.Unlock()

	token, err := h.store.Get(ctx, TokenKey)
	switch {
	case errors.Is(err, persistence.ErrNotFound):
		token = ""
	case err != nil:
		h.set("")
		h.logger.WarnContext(ctx, "session restore failed", "error", err)
		return fmt.Errorf("session: restore: %w", err)
	}

	h.set(strings.TrimSpace(token))
	h.logger.InfoContext(ctx, "session restored", "authenticated", h.IsAuthenticated())
	return nil
}

// Login persists token and marks the session authenticated. Observers are
// notified before Login returns.
func (h *Holder) Login(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrEmptyToken
	}

	h.transition.Lock()
	defer h.transition.Unlock()

	if err := h.store.Set(ctx, TokenKey, token); err != nil {
		h.logger.ErrorContext(ctx, "session login failed", "error", err)
		return fmt.Errorf("session: persist token: %w", err)
	}
	h.set(token)
	h.logger.InfoContext(ctx, "session authenticated")
	return nil
}

// Logout removes the persisted token and clears the session. It is safe to
// call when already logged out. The in-memory state is cleared even when the
// store fails; the store error is returned.
func (h *Holder) Logout(ctx context.Context) error {
	return h.clear(ctx, "logout")
}

// Invalidate ends a session the remote API no longer accepts.
func (h *Holder) Invalidate(ctx context.Context) error {
	return h.clear(ctx, "invalidated")
}

func (h *Holder) clear(ctx context.Context, reason string) error {
	h.transition.Lock()
	defer h.transition.Unlock()

	err := h.store.Delete(ctx, TokenKey)
	was := h.IsAuthenticated()
	h.set("")

	if err != nil {
		h.logger.ErrorContext(ctx, "session token removal failed", "reason", reason, "error", err)
		return fmt.Errorf("session: remove token: %w", err)
	}
	if was {
		h.logger.InfoContext(ctx, "session ended", "reason", reason)
	}
	return nil
}

// IsAuthenticated reports whether a token is held.
func (h *Holder) IsAuthenticated() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token != ""
}

// Token returns the held bearer token.
func (h *Holder) Token() (string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token, h.token != ""
}

// State returns a snapshot of the session.
func (h *Holder) State() State {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return stateFor(h.token)
}

// Identity returns the display identity carried by the token, if any.
func (h *Holder) Identity() (Identity, bool) {
	token, ok := h.Token()
	if !ok {
		return Identity{}, false
	}
	return ParseIdentity(token)
}

// Subscribe registers fn to receive every state change. The returned function
// removes the subscription.
func (h *Holder) Subscribe(fn func(State)) (unsubscribe func()) {
	h.mu.Lock()
	id := h.nextObs
	h.nextObs++
	h.observers[id] = fn
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.observers, id)
			h.mu.Unlock()
		})
	}
}

// set stores token and notifies observers outside the state lock. Callers
// hold h.transition.
func (h *Holder) set(token string) {
	h.mu.Lock()
	h.token = token
	state := stateFor(token)
	observers := make([]func(State), 0, len(h.observers))
	for _, fn := range h.observers {
		observers = append(observers, fn)
	}
	h.mu.Unlock()

	for _, fn := range observers {
		fn(state)
	}
}

func stateFor(token string) State {
	state := State{Authenticated: token != "", Token: token}
	if identity, ok := ParseIdentity(token); ok {
		state.User = &identity
	}
	return state
}
