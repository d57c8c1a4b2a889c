package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/sirupsen/logrus"
)

// Event is the message pushed to every connected client.
type Event struct {
	Type    string      `json:"type"`
	Action  string      `json:"action"`
	Data    interface{} `json:"data,omitempty"`
	User    *Actor      `json:"user,omitempty"`
	Message string      `json:"message,omitempty"`
}

type Actor struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Event types
const (
	TypeOrderUpdate = "order_update"
	TypeStockUpdate = "stock_update"
)

// Client is the part of a websocket connection the hub writes to.
type Client interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

const defaultWriteWait = 10 * time.Second

type Hub struct {
	Clients    map[Client]bool
	Register   chan Client
	Unregister chan Client
	Broadcast  chan []byte
	done       chan struct{}
	stopOnce   sync.Once
	mutex      sync.Mutex
	writeWait  time.Duration
	log        logrus.FieldLogger
}

func NewHub(log logrus.FieldLogger) *Hub {
	return &Hub{
		Clients:    make(map[Client]bool),
		Register:   make(chan Client),
		Unregister: make(chan Client),
		Broadcast:  make(chan []byte, 64),
		done:       make(chan struct{}),
		writeWait:  defaultWriteWait,
		log:        log,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case conn := <-h.Register:
			h.mutex.Lock()
			h.Clients[conn] = true
			h.mutex.Unlock()
			h.log.WithField("clients", h.ClientCount()).Debug("ws client connected")

		case conn := <-h.Unregister:
			h.mutex.Lock()
			if _, ok := h.Clients[conn]; ok {
				delete(h.Clients, conn)
				conn.Close()
			}
			h.mutex.Unlock()

		case message := <-h.Broadcast:
			h.broadcast(message)

		case <-h.done:
			h.mutex.Lock()
			for conn := range h.Clients {
				conn.Close()
				delete(h.Clients, conn)
			}
			h.mutex.Unlock()
			return
		}
	}
}

// broadcast writes outside the lock; a client that misses the write deadline is dropped.
func (h *Hub) broadcast(message []byte) {
	h.mutex.Lock()
	clients := make([]Client, 0, len(h.Clients))
	for conn := range h.Clients {
		clients = append(clients, conn)
	}
	h.mutex.Unlock()

	var failed []Client
	for _, conn := range clients {
		_ = conn.SetWriteDeadline(time.Now().Add(h.writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
			failed = append(failed, conn)
		}
	}
	if len(failed) == 0 {
		return
	}

	h.mutex.Lock()
	for _, conn := range failed {
		conn.Close()
		delete(h.Clients, conn)
	}
	h.mutex.Unlock()
}

// Join registers conn. It reports false once the hub is stopped.
func (h *Hub) Join(conn Client) bool {
	select {
	case h.Register <- conn:
		return true
	case <-h.done:
		return false
	}
}

// Leave unregisters conn; it returns immediately once the hub is stopped.
func (h *Hub) Leave(conn Client) {
	select {
	case h.Unregister <- conn:
	case <-h.done:
	}
}

// Publish queues ev for broadcast without blocking the caller.
func (h *Hub) Publish(ev Event) {
	msg, err := json.Marshal(ev)
	if err != nil {
		h.log.WithError(err).WithField("action", ev.Action).Error("marshal ws event")
		return
	}
	go func() {
		select {
		case h.Broadcast <- msg:
		case <-h.done:
		}
	}()
}

// Stop closes every client and ends Run.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.Clients)
}
