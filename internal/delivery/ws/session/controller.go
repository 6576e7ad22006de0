package ws_session

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	http_common "github.com/humanbelnik/watchlist/internal/delivery/http/common"
	"github.com/humanbelnik/watchlist/internal/model"
	"github.com/humanbelnik/watchlist/internal/service/gesture"
	usecase_session "github.com/humanbelnik/watchlist/internal/usecase/session"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type FrameType string

const (
	FrameDown    FrameType = "down"
	FrameMove    FrameType = "move"
	FrameUp      FrameType = "up"
	FrameCancel  FrameType = "cancel"
	FrameSettled FrameType = "settled"
)

// Frame is one pointer event from the card screen. Settled tells the server the
// exit animation finished.
type Frame struct {
	Type      FrameType         `json:"type"`
	PointerID gesture.PointerID `json:"pointer_id"`
	X         float64           `json:"x"`
	Y         float64           `json:"y"`
}

type Controller struct {
	uc        *usecase_session.Usecase
	hub       *Hub
	threshold float64

	logger *slog.Logger
}

type ControllerOption func(*Controller)

func WithLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

func WithThreshold(threshold float64) ControllerOption {
	return func(c *Controller) {
		c.threshold = threshold
	}
}

func NewController(uc *usecase_session.Usecase, hub *Hub, opts ...ControllerOption) *Controller {
	c := &Controller{
		uc:        uc,
		hub:       hub,
		threshold: gesture.DefaultThreshold,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/ws/sessions/:session_id", c.sessionWS)
}

func (c *Controller) sessionWS(ctx *gin.Context) {
	sessionID, err := uuid.Parse(ctx.Param("session_id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{Message: "invalid session id"})
		return
	}

	if _, err := c.uc.Get(sessionID); err != nil {
		if errors.Is(err, usecase_session.ErrSessionNotFound) {
			ctx.JSON(http.StatusNotFound, http_common.ErrorResponse{Message: "not found"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{Message: "internal error"})
		return
	}

	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		c.logger.Error("failed to upgrade connection", slog.String("error", err.Error()))
		return
	}

	client := NewClient(conn, sessionID, c.threshold)
	c.hub.RegisterClient(client)

	// Snapshot after registering: anything newer reaches this client through
	// the hub, anything older is dropped by version.
	view, err := c.uc.Get(sessionID)
	if err != nil {
		c.hub.RemoveClient(client)
		conn.Close()
		return
	}
	c.hub.SessionChanged(view)

	go c.writePump(client)
	c.readPump(client)
}

func (c *Controller) readPump(client *Client) {
	defer func() {
		c.hub.RemoveClient(client)
		client.Conn.Close()
	}()

	for {
		_, raw, err := client.Conn.ReadMessage()
		if err != nil {
			break
		}

		var frame Frame
		if err := json.Unmarshal(raw, &frame); err != nil {
			c.hub.SendTo(client, Event{Type: EventError, Payload: "malformed frame"})
			continue
		}
		if err := c.handleFrame(client, frame); err != nil {
			if errors.Is(err, usecase_session.ErrSessionNotFound) {
				c.hub.SendTo(client, Event{Type: EventError, Payload: "session closed"})
				break
			}
			c.logger.Error("failed to handle frame",
				slog.String("session_id", client.SessionID.String()),
				slog.String("error", err.Error()))
		}
	}
}

func (c *Controller) writePump(client *Client) {
	defer client.Conn.Close()

	for message := range client.Send {
		if err := client.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			break
		}
	}
}

// handleFrame drives the client's tracker. A release past the threshold goes
// through the same commit path as the decision buttons.
func (c *Controller) handleFrame(client *Client, frame Frame) error {
	client.mu.Lock()
	var (
		decision model.Decision
		commit   bool
		drag     *DragPayload
	)
	switch frame.Type {
	case FrameDown:
		if client.tracker.Begin(frame.PointerID, frame.X, frame.Y) {
			drag = &DragPayload{Active: true}
		}
	case FrameMove:
		if offset, ok := client.tracker.Move(frame.PointerID, frame.X, frame.Y); ok {
			drag = &DragPayload{Active: true, Offset: offset}
		}
	case FrameUp:
		active := client.tracker.Active()
		decision, commit = client.tracker.Release(frame.PointerID)
		if active && !client.tracker.Active() {
			drag = &DragPayload{}
		}
	case FrameCancel:
		if client.tracker.Active() {
			client.tracker.Cancel(frame.PointerID)
			if !client.tracker.Active() {
				drag = &DragPayload{}
			}
		}
	}
	client.mu.Unlock()

	if drag != nil {
		c.hub.BroadcastToSession(client.SessionID, Event{Type: EventDrag, Payload: drag})
	}

	switch {
	case commit:
		_, err := c.uc.Commit(client.SessionID, decision)
		return err
	case frame.Type == FrameSettled:
		_, err := c.uc.Settle(client.SessionID)
		return err
	}
	return nil
}
