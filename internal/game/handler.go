package game

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	httperrors "trivia-arena/pkg/http/errors"
	ws "trivia-arena/pkg/http/ws"
)

// WSUpgrader handles WebSocket upgrades. Production deployments should pin
// CheckOrigin to the frontend origin.
var WSUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Handler bridges WebSocket connections to the game loop: it upgrades
// connections, routes inbound messages and forwards disconnects.
type Handler struct {
	game   *Game
	hub    *ws.Hub
	logger zerolog.Logger
}

// NewHandler creates the game WebSocket handler.
func NewHandler(game *Game, hub *ws.Hub, logger zerolog.Logger) *Handler {
	return &Handler{
		game:   game,
		hub:    hub,
		logger: logger.With().Str("component", "game_ws").Logger(),
	}
}

// HandleWebSocket upgrades the HTTP connection and services it until close.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := WSUpgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	connID := uuid.New()
	wsConn := ws.NewConnection(conn, h.logger)
	h.hub.Register(connID, wsConn)

	go wsConn.WritePump()

	wsConn.ReadPump(func(msg ws.Message) error {
		return h.handleMessage(connID, msg)
	})

	// Socket closed: registry removal happens synchronously with hub
	// removal so counts stay consistent with live connections.
	h.hub.Unregister(connID)
	h.game.Disconnect(connID)
}

func (h *Handler) handleMessage(connID uuid.UUID, msg ws.Message) error {
	switch msg.Type {
	case ws.TypeJoin:
		var req ws.JoinPayload
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			return h.sendError(connID, httperrors.ErrCodeInvalidPayload, "Invalid join payload")
		}
		h.game.Join(connID, req.Name)
		return nil
	case ws.TypeAnswer:
		var req ws.AnswerPayload
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			return h.sendError(connID, httperrors.ErrCodeInvalidPayload, "Invalid answer payload")
		}
		h.game.Answer(connID, req.SelectedOption)
		return nil
	default:
		return h.sendError(connID, httperrors.ErrCodeUnknownMessageType, fmt.Sprintf("Unknown message type: %s", msg.Type))
	}
}

func (h *Handler) sendError(connID uuid.UUID, code, message string) error {
	return h.hub.Unicast(connID, ws.NewMessage(ws.TypeError, ws.ErrorPayload{
		Code:    code,
		Message: message,
	}))
}
