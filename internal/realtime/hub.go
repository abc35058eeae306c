package realtime

import (
	"encoding/json"
	"sync"
	"time"
)

// Client represents a single websocket client connection.
// The network conn itself is managed in the ws handler.
type Client interface {
	Send(message []byte) bool
	Close()
}

// Event types pushed to clients.
const (
	TaskCreated   = "task_created"
	TaskUpdated   = "task_updated"
	TaskDeleted   = "task_deleted"
	ReportCreated = "report_created"
	ReportUpdated = "report_updated"
	ReportDeleted = "report_deleted"
)

// Event is the JSON payload sent over the socket.
type Event struct {
	Type     string    `json:"type"`
	EntityID string    `json:"entityId"`
	ActorID  string    `json:"actorId,omitempty"`
	At       time.Time `json:"at"`
}

// Hub maintains active user connections and fans events out to them.
type Hub struct {
	mu              sync.RWMutex
	userIDToClients map[string]map[Client]struct{}
}

var (
	hubInstance *Hub
	once        sync.Once
)

// NewHub returns an empty hub. Most callers want GetHub.
func NewHub() *Hub {
	return &Hub{userIDToClients: make(map[string]map[Client]struct{})}
}

// GetHub returns the process hub.
func GetHub() *Hub {
	once.Do(func() {
		hubInstance = NewHub()
	})
	return hubInstance
}

// Register adds a client under a user ID.
func (h *Hub) Register(userID string, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.userIDToClients[userID]; !ok {
		h.userIDToClients[userID] = make(map[Client]struct{})
	}
	h.userIDToClients[userID][client] = struct{}{}
}

// Unregister removes a client; a user with no clients left is dropped.
func (h *Hub) Unregister(userID string, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if clients, ok := h.userIDToClients[userID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.userIDToClients, userID)
		}
	}
}

// Connected returns the number of clients registered for userID.
func (h *Hub) Connected(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.userIDToClients[userID])
}

// Broadcast sends a raw message to all clients of a user.
// Failed writes are left for the ws handler to clean up.
func (h *Hub) Broadcast(userID string, message []byte) {
	for _, c := range h.clients(userID) {
		c.Send(message)
	}
}

// BroadcastAll sends a raw message to every connected client.
func (h *Hub) BroadcastAll(message []byte) {
	for _, c := range h.clients("") {
		c.Send(message)
	}
}

// clients snapshots the clients of userID, or of everyone when userID is
// empty. Sends happen after the lock is released.
func (h *Hub) clients(userID string) []Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var out []Client
	for id, set := range h.userIDToClients {
		if userID != "" && id != userID {
			continue
		}
		for c := range set {
			out = append(out, c)
		}
	}
	return out
}

// Notify sends evt to the clients of userID.
func (h *Hub) Notify(userID string, evt Event) {
	if msg, ok := encode(evt); ok {
		h.Broadcast(userID, msg)
	}
}

// NotifyAll sends evt to every connected client.
func (h *Hub) NotifyAll(evt Event) {
	if msg, ok := encode(evt); ok {
		h.BroadcastAll(msg)
	}
}

func encode(evt Event) ([]byte, bool) {
	if evt.At.IsZero() {
		evt.At = time.Now().UTC()
	}
	msg, err := json.Marshal(evt)
	if err != nil {
		return nil, false
	}
	return msg, true
}
