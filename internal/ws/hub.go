package ws

import (
	"encoding/json"
	"sync"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"monstager/internal/models"
)

// Event names mirror the mutation that produced them.
const (
	EventTaskCreated = "task.created"
	EventTaskUpdated = "task.updated"
	EventTaskDeleted = "task.deleted"
)

type Event struct {
	Event string       `json:"event"`
	Task  *models.Task `json:"task,omitempty"`
	// TaskID is set on deletes, where the full record is gone.
	TaskID string `json:"taskId,omitempty"`
}

// Client is one authenticated WebSocket connection.
type Client struct {
	AccountID string
	Conn      *websocket.Conn
	mu        sync.Mutex
}

func (c *Client) write(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Conn.WriteMessage(websocket.TextMessage, payload)
}

type delivery struct {
	accountID string
	payload   []byte
}

// Hub fans task change events out to the owning account's connections only.
// Publish never blocks a request: when the hub is backed up the event is
// dropped, a client that fails a write is unregistered.
type Hub struct {
	Register   chan *Client
	Unregister chan *Client

	deliveries chan delivery
	clients    map[string]map[*Client]struct{}
	log        *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		deliveries: make(chan delivery, 64),
		clients:    make(map[string]map[*Client]struct{}),
		log:        log,
	}
}

// Publish queues an event for all of accountID's connections.
func (h *Hub) Publish(accountID string, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.log.Error("event marshal failed", zap.Error(err))
		return
	}
	select {
	case h.deliveries <- delivery{accountID: accountID, payload: payload}:
	default:
		h.log.Warn("event dropped, hub backlog full", zap.String("account_id", accountID))
	}
}

// Run owns the client map; it is the only goroutine that touches it.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			conns, ok := h.clients[client.AccountID]
			if !ok {
				conns = make(map[*Client]struct{})
				h.clients[client.AccountID] = conns
			}
			conns[client] = struct{}{}
		case client := <-h.Unregister:
			h.drop(client)
		case d := <-h.deliveries:
			for client := range h.clients[d.accountID] {
				if err := client.write(d.payload); err != nil {
					h.drop(client)
				}
			}
		}
	}
}

func (h *Hub) drop(client *Client) {
	conns, ok := h.clients[client.AccountID]
	if !ok {
		return
	}
	if _, ok := conns[client]; !ok {
		return
	}
	delete(conns, client)
	if len(conns) == 0 {
		delete(h.clients, client.AccountID)
	}
	client.Conn.Close()
}
