package api

import (
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/Roma7-7-7/readyword/internal/context"
	"github.com/Roma7-7-7/readyword/internal/play"
)

const (
	streamWriteWait  = 10 * time.Second
	streamPongWait   = 60 * time.Second
	streamPingPeriod = streamPongWait * 9 / 10
)

// StreamHandler pushes game snapshots over a websocket after every
// transition, including countdown ticks.
type StreamHandler struct {
	manager  *play.Manager
	upgrader websocket.Upgrader
	log      *slog.Logger
}

func NewStreamHandler(manager *play.Manager, allowOrigins []string, log *slog.Logger) *StreamHandler {
	return &StreamHandler{
		manager: manager,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || slices.Contains(allowOrigins, "*") || slices.Contains(allowOrigins, origin)
			},
		},
		log: log,
	}
}

func (h *StreamHandler) Stream(c echo.Context) error {
	ctx := c.Request().Context()
	userID := context.MustUserIDFromContext(ctx)

	snapshots, unsubscribe, err := h.manager.Subscribe(userID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, play.ErrSessionNotFound):
			return c.JSON(http.StatusNotFound, ErrorResponse{"Game not found"})
		case errors.Is(err, play.ErrForbidden):
			return c.JSON(http.StatusForbidden, ForbiddenError)
		default:
			h.log.ErrorContext(ctx, "failed to subscribe to game", "error", err)
			return c.JSON(http.StatusInternalServerError, InternalServerError)
		}
	}
	defer unsubscribe()

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.log.DebugContext(ctx, "failed to upgrade connection", "error", err)
		return nil
	}
	defer conn.Close()

	// the client never sends data; reading detects a closed connection
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(streamPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(streamPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(streamPingPeriod)
	defer ping.Stop()

	for {
		select {
		case snapshot, ok := <-snapshots:
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "game over"))
				return nil
			}
			if err := conn.WriteJSON(snapshot); err != nil {
				h.log.DebugContext(ctx, "failed to write snapshot", "error", err)
				return nil
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return nil
			}
		case <-closed:
			return nil
		}
	}
}
