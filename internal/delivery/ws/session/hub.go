package ws_session

import (
	"log/slog"
	"sync"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	delivery_session "github.com/humanbelnik/watchlist/internal/delivery/session"
	"github.com/humanbelnik/watchlist/internal/metrics"
	"github.com/humanbelnik/watchlist/internal/service/gesture"
	usecase_session "github.com/humanbelnik/watchlist/internal/usecase/session"
)

type EventType string

const (
	EventState EventType = "state"
	EventDrag  EventType = "drag"
	EventError EventType = "error"
)

type Event struct {
	Type    EventType `json:"type"`
	Payload any       `json:"payload"`
}

type DragPayload struct {
	Active bool           `json:"active"`
	Offset gesture.Offset `json:"offset"`
}

type Client struct {
	Conn      *websocket.Conn
	Send      chan []byte
	SessionID uuid.UUID

	mu      sync.Mutex
	tracker *gesture.Tracker
}

func NewClient(conn *websocket.Conn, sessionID uuid.UUID, threshold float64) *Client {
	return &Client{
		Conn:      conn,
		Send:      make(chan []byte, 16),
		SessionID: sessionID,
		tracker:   gesture.NewTracker(threshold),
	}
}

// Hub fans session changes out to every screen watching the session.
type Hub struct {
	mu sync.Mutex

	sessions map[uuid.UUID]map[*Client]bool
	// Last state version sent per watched session.
	versions map[uuid.UUID]uint64

	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		sessions: make(map[uuid.UUID]map[*Client]bool),
		versions: make(map[uuid.UUID]uint64),
		logger:   logger,
	}
}

func (h *Hub) RegisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.sessions[client.SessionID]; !ok {
		h.sessions[client.SessionID] = make(map[*Client]bool)
	}
	h.sessions[client.SessionID][client] = true
	metrics.WSConnections.Inc()

	h.logger.Info("client registered", slog.String("session_id", client.SessionID.String()))
}

func (h *Hub) RemoveClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.dropLocked(client) {
		h.logger.Info("client unregistered", slog.String("session_id", client.SessionID.String()))
	}
}

// dropLocked reports whether the client was still registered. Send is closed
// exactly once, here.
func (h *Hub) dropLocked(client *Client) bool {
	clients, ok := h.sessions[client.SessionID]
	if !ok || !clients[client] {
		return false
	}
	delete(clients, client)
	if len(clients) == 0 {
		delete(h.sessions, client.SessionID)
		delete(h.versions, client.SessionID)
	}
	close(client.Send)
	metrics.WSConnections.Dec()
	return true
}

func (h *Hub) Clients(sessionID uuid.UUID) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions[sessionID])
}

// SessionChanged pushes the new state to the session's screens and arms or
// disarms their drag trackers. Views older than the last one sent are dropped,
// so a slow notifier cannot roll the screens back.
func (h *Hub) SessionChanged(v usecase_session.View) {
	message, err := json.Marshal(Event{
		Type:    EventState,
		Payload: delivery_session.ConvertFromView(v),
	})
	if err != nil {
		h.logger.Error("failed to marshal event", slog.String("error", err.Error()))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.sessions[v.ID]) == 0 || v.Version <= h.versions[v.ID] {
		return
	}
	h.versions[v.ID] = v.Version

	for c := range h.sessions[v.ID] {
		c.setEnabled(v.CanDecide)
	}
	h.broadcastLocked(v.ID, message)
}

func (h *Hub) BroadcastToSession(sessionID uuid.UUID, event Event) {
	message, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("failed to marshal event", slog.String("error", err.Error()))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.broadcastLocked(sessionID, message)
}

func (h *Hub) broadcastLocked(sessionID uuid.UUID, message []byte) {
	for client := range h.sessions[sessionID] {
		select {
		case client.Send <- message:
		default:
			h.logger.Warn("slow client dropped", slog.String("session_id", sessionID.String()))
			h.dropLocked(client)
		}
	}
}

func (c *Client) setEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tracker.SetEnabled(enabled)
}

// SendTo delivers an event to one client if it is still registered.
func (h *Hub) SendTo(client *Client, event Event) {
	message, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("failed to marshal event", slog.String("error", err.Error()))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.sessions[client.SessionID][client] {
		return
	}
	select {
	case client.Send <- message:
	default:
		h.dropLocked(client)
	}
}
