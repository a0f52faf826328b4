package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/quarkfin/platform-go/internal/domain"
	"github.com/quarkfin/platform-go/internal/service"
	"github.com/quarkfin/platform-go/internal/view"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// ============================================================
// Polling streams (WebSocket)
// ============================================================

const streamWriteWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

// Stream message types.
const (
	msgSnapshot = "snapshot"
	msgDone     = "done"
	msgError    = "error"
)

// streamMessage is one frame sent to the browser.
type streamMessage struct {
	Type      string           `json:"type"`
	Data      any              `json:"data,omitempty"`
	Error     *domain.APIError `json:"error,omitempty"`
	Timestamp int64            `json:"timestamp"`
}

func streamAssessmentHandler(svc *service.PlatformService, poll domain.PollOptions, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseAssessmentID(chi.URLParam(r, "id"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		serveStream(w, r, logger, func(notify func(*domain.Assessment)) *view.Poller[*domain.Assessment] {
			return view.AssessmentPolling(svc.API(), id, poll, notify)
		})
	}
}

func streamBusinessRiskHandler(svc *service.PlatformService, poll domain.PollOptions, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		serveStream(w, r, logger, func(notify func(*domain.BusinessRiskAssessment)) *view.Poller[*domain.BusinessRiskAssessment] {
			return view.BusinessRiskPolling(svc.API(), id, poll, notify)
		})
	}
}

// serveStream upgrades the request and relays every accepted snapshot until
// the poll settles. Closing the socket stops the poll.
func serveStream[T any](w http.ResponseWriter, r *http.Request, logger *zap.Logger, build func(notify func(T)) *view.Poller[T]) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", zap.String("path", r.URL.Path), zap.Error(err))
		return
	}
	defer conn.Close()
	// Drop the server's request read deadline; the stream outlives it.
	conn.SetReadDeadline(time.Time{})

	// The request context carries the caller's token for backend calls.
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	poller := build(func(snap T) {
		if err := send(conn, streamMessage{Type: msgSnapshot, Data: snap}); err != nil {
			logger.Debug("stream write failed", zap.Error(err))
			cancel()
		}
	})
	poller.Start(ctx)
	stop := context.AfterFunc(ctx, poller.Stop)
	defer stop()

	poller.Wait()
	if ctx.Err() != nil {
		logger.Debug("stream closed by client", zap.String("path", r.URL.Path))
		return
	}

	final := poller.State()
	if final.Err != nil {
		send(conn, streamMessage{Type: msgError, Error: final.Err})
	} else {
		send(conn, streamMessage{Type: msgDone, Data: final.Data})
	}
	conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func send(conn *websocket.Conn, msg streamMessage) error {
	msg.Timestamp = time.Now().Unix()
	conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
	return conn.WriteJSON(msg)
}
