package http

import (
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"

	"github.com/example/booking-admin/internal/session"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// SessionSource is the observable session the event stream follows.
type SessionSource interface {
	State() session.State
	Subscribe(fn func(session.State)) (unsubscribe func())
}

// SessionEvents streams session state changes over a WebSocket. The current
// state is sent on connect; a slow client only ever receives the latest state.
type SessionEvents struct {
	source   SessionSource
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewSessionEvents accepts upgrades from the allowed origins and from clients
// that send no Origin header.
func NewSessionEvents(source SessionSource, allowedOrigins []string, logger *slog.Logger) *SessionEvents {
	return &SessionEvents{
		source: source,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				return slices.Contains(allowedOrigins, "*") || slices.Contains(allowedOrigins, origin)
			},
		},
		logger: defaultLogger(logger),
	}
}

func (e *SessionEvents) Stream(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	logger := handlerLogger(r.Context(), e.logger, "SessionEvents", "Stream")

	conn, err := e.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.WarnContext(r.Context(), "websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	updates := make(chan session.State, 1)
	unsubscribe := e.source.Subscribe(func(state session.State) {
		for {
			select {
			case updates <- state:
				return
			default:
			}
			select {
			case <-updates:
			default:
			}
		}
	})
	defer unsubscribe()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(maxMessageSize)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error { return conn.SetReadDeadline(time.Now().Add(pongWait)) })
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	logger.InfoContext(r.Context(), "session stream opened")
	defer logger.InfoContext(r.Context(), "session stream closed")

	if !e.send(conn, e.source.State(), logger) {
		return
	}
	for {
		select {
		case state := <-updates:
			if !e.send(conn, state, logger) {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			return
		}
	}
}

func (e *SessionEvents) send(conn *websocket.Conn, state session.State, logger *slog.Logger) bool {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(sessionEvent{Type: "session", State: state}); err != nil {
		logger.Debug("session stream write failed", "error", err)
		return false
	}
	return true
}

type sessionEvent struct {
	Type string `json:"type"`
	session.State
}
