package v1

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/promosign/spin-api/internal/api/handler/v1/response"
	"github.com/promosign/spin-api/internal/service"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Adjust this for production!
	},
}

type CompletionReporter interface {
	ReportCompletion(ctx context.Context, sessionID string)
}

type DisplayRegistry interface {
	Register(displayID string, conn service.DisplayConn)
	Unregister(displayID string, conn service.DisplayConn)
}

type DisplaySocketHandler struct {
	displays DisplayService
	games    CompletionReporter
	registry DisplayRegistry
}

func NewDisplaySocketHandler(displays DisplayService, games CompletionReporter, registry DisplayRegistry) *DisplaySocketHandler {
	return &DisplaySocketHandler{
		displays: displays,
		games:    games,
		registry: registry,
	}
}

// wsConn serializes writes; gorilla connections do not support concurrent
// writers.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.conn.WriteJSON(v)
}

type inboundMessage struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
}

// HandleDisplaySocket godoc
// @Summary      Establish the realtime channel for a display
// @Description  The display receives game lifecycle events and reports animation completion.
// @Tags         display
// @Produce      json
// @Param        displayID path string true "display ID"
// @Success      101 {string} string "Switching Protocols to WebSocket"
// @Failure      404 {object} response.Err
// @Router       /ws/display/{displayID} [get]
func (h *DisplaySocketHandler) HandleDisplaySocket(ctx *gin.Context) {
	displayID := ctx.Param("displayID")

	display, err := h.displays.Get(ctx.Request.Context(), displayID)
	if err != nil {
		if errors.Is(err, service.ErrDisplayNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("display", "id", displayID))

			return
		}

		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		zap.L().Warn("websocket upgrade failed",
			zap.String("displayID", displayID),
			zap.Error(err))

		return
	}

	client := &wsConn{conn: conn}
	h.registry.Register(displayID, client)

	_ = client.WriteJSON(service.DisplayMessage{
		Type:             service.MsgConnected,
		DisplayID:        displayID,
		BackgroundConfig: display.BackgroundConfig,
	})

	go h.readLoop(displayID, client)
}

func (h *DisplaySocketHandler) readLoop(displayID string, client *wsConn) {
	defer func() {
		h.registry.Unregister(displayID, client)
		client.conn.Close()
	}()

	for {
		var msg inboundMessage
		if err := client.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				zap.L().Warn("display connection closed unexpectedly",
					zap.String("displayID", displayID),
					zap.Error(err))
			}

			return
		}

		switch msg.Type {
		case service.MsgGameComplete:
			if msg.SessionID == "" {
				continue
			}
			h.games.ReportCompletion(context.Background(), msg.SessionID)

		case service.MsgPing:
			_ = client.WriteJSON(service.DisplayMessage{
				Type:      service.MsgPong,
				DisplayID: displayID,
			})

		default:
			zap.L().Debug("ignoring unknown display message",
				zap.String("displayID", displayID),
				zap.String("type", msg.Type))
		}
	}
}
