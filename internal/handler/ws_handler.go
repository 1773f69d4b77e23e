package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/sritlabs/sat-backend/internal/middleware"
	"github.com/sritlabs/sat-backend/internal/service"
	ws "github.com/sritlabs/sat-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
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

// WSHandler streams live branch notifications to admin dashboards.
type WSHandler struct {
	notifier *service.NotifyService
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(notifier *service.NotifyService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		notifier: notifier,
		log:      log.With().Str("component", "ws_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// AdminNotificationStream godoc
// WS /ws/v1/admin/notifications
// Upgrades to WebSocket and relays the admin's branch events as they happen.
func (h *WSHandler) AdminNotificationStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	raw, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	conn := ws.Wrap(raw)
	defer conn.Close()

	wsLog := h.log.With().
		Int("admin_id", claims.UserID).
		Str("branch", claims.Branch).
		Logger()
	wsLog.Info().Msg("Admin connected")

	sub := h.notifier.Subscribe(c.Request.Context(), claims.Branch)
	defer sub.Close()

	// Reader goroutine: answers pings and detects the peer going away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var msg ws.RequestEnvelope
			if err := conn.ReadJSON(&msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					wsLog.Warn().Err(err).Msg("Unexpected close")
				} else {
					wsLog.Debug().Msg("Connection closed")
				}
				return
			}
			if msg.Action == ws.ActionPing {
				_ = conn.WriteTyped(ws.PongResponse{Event: ws.EventPong})
			}
		}
	}()

	ch := sub.Channel()
	for {
		select {
		case <-done:
			return
		case <-c.Request.Context().Done():
			return
		case redisMsg, ok := <-ch:
			if !ok {
				return
			}

			var event service.BranchEvent
			if err := json.Unmarshal([]byte(redisMsg.Payload), &event); err != nil {
				wsLog.Warn().Err(err).Msg("Malformed branch event")
				continue
			}

			notif := ws.NotificationResponse{
				Event:   ws.EventNotification,
				Name:    event.Event,
				Payload: event.Payload,
				SentAt:  event.SentAt.Format(time.RFC3339),
			}
			if err := conn.WriteTyped(notif); err != nil {
				wsLog.Debug().Err(err).Msg("Write failed, dropping connection")
				return
			}
		}
	}
}
