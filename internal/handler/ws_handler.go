package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/uzmath/mathtest-backend/internal/config"
	"github.com/uzmath/mathtest-backend/internal/countdown"
	"github.com/uzmath/mathtest-backend/internal/middleware"
	"github.com/uzmath/mathtest-backend/internal/model"
	"github.com/uzmath/mathtest-backend/internal/service"
	ws "github.com/uzmath/mathtest-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allow list permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// timeWarnings are the marks at which the stream pushes a warning.
var timeWarnings = []time.Duration{5 * time.Minute, time.Minute}

const timeSyncInterval = 30 * time.Second

// WSHandler handles the live test session stream: per-answer autosave,
// focus-loss reporting and the authoritative countdown.
type WSHandler struct {
	rdb            *redis.Client
	sessionService *service.SessionService
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(rdb *redis.Client, sessionService *service.SessionService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		rdb:            rdb,
		sessionService: sessionService,
		log:            log.With().Str("component", "ws_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// streamConn serializes countdown access and connection writes between
// the reader loop and the ticker goroutine.
type streamConn struct {
	mu    sync.Mutex
	conn  *websocket.Conn
	clock *countdown.Countdown
}

func (sc *streamConn) write(v interface{}) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return ws.WriteTyped(sc.conn, v)
}

// SessionStream godoc
// WS /ws/v1/tests/:id/stream
// Upgrades to WebSocket for autosave, focus events and countdown sync.
func (h *WSHandler) SessionStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session ID"})
		return
	}

	session, err := h.sessionService.Detail(c.Request.Context(), claims.UserID, claims.Role, sessionID)
	if err != nil || session.Session.Status != model.SessionStatusInProgress {
		c.JSON(http.StatusConflict, gin.H{"error": "no active session"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	remaining := time.Until(session.Session.Deadline())
	if remaining <= 0 {
		ws.WriteError(conn, "session time is already up")
		return
	}

	sc := &streamConn{
		conn:  conn,
		clock: countdown.New(remaining, timeWarnings...),
	}

	wsLog := h.log.With().
		Str("user_id", claims.UserID.String()).
		Str("session_id", sessionID.String()).
		Logger()
	wsLog.Info().Msg("Session stream connected")

	done := make(chan struct{})
	defer close(done)
	go h.runClock(sc, done, wsLog)

	canPause := session.Session.Type != model.SessionTypeMock

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		var envelope ws.RequestEnvelope
		if err := json.Unmarshal(raw, &envelope); err != nil {
			ws.WriteError(conn, "malformed message")
			continue
		}

		switch envelope.Action {
		case ws.ActionAutosave:
			h.handleAutosave(sc, claims.UserID, sessionID, raw, wsLog)
		case ws.ActionFocusLoss:
			h.handleFocusLoss(sc, claims.UserID, sessionID, raw, wsLog)
		case ws.ActionPing:
			sc.write(ws.PongResponse{Event: ws.EventPong})
		case ws.ActionPause:
			h.handlePause(sc, canPause, true)
		case ws.ActionResume:
			h.handlePause(sc, canPause, false)
		default:
			wsLog.Warn().Str("action", string(envelope.Action)).Msg("Unknown action")
			sc.write(ws.ErrorResponse{Event: ws.EventError, Error: "unknown action: " + string(envelope.Action)})
		}
	}
}

// runClock drives the connection's countdown: one tick per second,
// periodic sync frames, warning frames when thresholds cross and a
// final time_up frame. The session itself is expired by submit or the
// reaper, never from here.
func (h *WSHandler) runClock(sc *streamConn, done <-chan struct{}, wsLog zerolog.Logger) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	lastSync := time.Now()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
		}

		sc.mu.Lock()
		events := sc.clock.Tick(time.Second)
		remain := int(sc.clock.Remaining() / time.Second)
		paused := sc.clock.Paused()
		expired := sc.clock.Expired()
		sc.mu.Unlock()

		for _, ev := range events {
			switch ev.Kind {
			case countdown.EventWarning:
				sc.write(ws.TimeWarningResponse{Event: ws.EventTimeWarning, RemainSec: int(ev.Remaining / time.Second)})
			case countdown.EventExpired:
				sc.write(ws.TimeUpResponse{Event: ws.EventTimeUp})
			}
		}
		if expired {
			wsLog.Debug().Msg("Countdown expired")
			return
		}

		if time.Since(lastSync) >= timeSyncInterval {
			lastSync = time.Now()
			sc.write(ws.TimeSyncResponse{Event: ws.EventTimeSync, RemainSec: remain, Paused: paused})
		}
	}
}

// handleAutosave saves a single answer through the write-behind queue.
func (h *WSHandler) handleAutosave(sc *streamConn, userID, sessionID uuid.UUID, raw []byte, wsLog zerolog.Logger) {
	var msg ws.AutosaveRequest
	if err := json.Unmarshal(raw, &msg); err != nil || msg.QID == "" || msg.Answer == "" {
		sc.write(ws.ErrorResponse{Event: ws.EventError, Error: "q_id and ans are required"})
		return
	}

	questionID, err := uuid.Parse(msg.QID)
	if err != nil {
		sc.write(ws.ErrorResponse{Event: ws.EventError, Error: "invalid q_id format"})
		return
	}

	if err := h.sessionService.RecordAnswer(context.Background(), userID, sessionID, questionID, msg.Answer); err != nil {
		wsLog.Error().Err(err).Msg("Autosave failed")
		sc.write(ws.ErrorResponse{Event: ws.EventError, Error: "save failed"})
		return
	}

	sc.write(ws.SavedResponse{Event: ws.EventSaved, QID: msg.QID})
}

// handleFocusLoss queues the event for batch persistence. No ack; the
// client fires and forgets.
func (h *WSHandler) handleFocusLoss(sc *streamConn, userID, sessionID uuid.UUID, raw []byte, wsLog zerolog.Logger) {
	var msg ws.FocusLossRequest
	if err := json.Unmarshal(raw, &msg); err != nil {
		sc.write(ws.ErrorResponse{Event: ws.EventError, Error: "malformed focus event"})
		return
	}

	payload, _ := json.Marshal(map[string]interface{}{
		"session_id":  sessionID.String(),
		"user_id":     userID.String(),
		"kind":        msg.Kind,
		"duration_ms": msg.DurationMs,
		"at":          time.Now().Unix(),
	})
	if err := h.rdb.RPush(context.Background(), config.WorkerKey.PersistFocusEventsQueue, payload).Err(); err != nil {
		wsLog.Error().Err(err).Msg("Focus event enqueue failed")
	}
}

func (h *WSHandler) handlePause(sc *streamConn, canPause, pause bool) {
	if !canPause {
		sc.write(ws.ErrorResponse{Event: ws.EventError, Error: "timed sessions cannot be paused"})
		return
	}

	sc.mu.Lock()
	var changed bool
	if pause {
		changed = sc.clock.Pause()
	} else {
		changed = sc.clock.Resume()
	}
	remain := int(sc.clock.Remaining() / time.Second)
	sc.mu.Unlock()

	if !changed {
		return
	}
	event := ws.EventPaused
	if !pause {
		event = ws.EventResumed
	}
	sc.write(struct {
		Event     ws.Event `json:"event"`
		RemainSec int      `json:"remain_sec"`
	}{Event: event, RemainSec: remain})
}
