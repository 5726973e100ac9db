// Package websocket pushes refreshed dashboard views to connected admins.
package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/apex/log"
	"github.com/gorilla/websocket"

	"beacon-admin/metrics"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 256
)

// Message is one server push. Seq is the view's request token, so a client
// can ignore pushes older than what it already shows.
type Message struct {
	Type      string    `json:"type"`
	View      string    `json:"view"`
	Seq       uint64    `json:"seq"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// Hub manages WebSocket connections and broadcasting.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mutex      sync.RWMutex

	// last broadcast token per view
	lastSeq map[string]uint64
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, sendBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		lastSeq:    make(map[string]uint64),
	}
}

// Run is the hub loop. It closes every client when ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mutex.Lock()
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			h.mutex.Unlock()
			return

		case c := <-h.register:
			h.mutex.Lock()
			h.clients[c] = true
			total := len(h.clients)
			h.mutex.Unlock()
			metrics.BroadcastClients.Set(float64(total))
			log.WithField("user", c.userID).Infof("dashboard connected, %d clients", total)

		case c := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			total := len(h.clients)
			h.mutex.Unlock()
			metrics.BroadcastClients.Set(float64(total))
			log.WithField("user", c.userID).Infof("dashboard disconnected, %d clients", total)

		case msg := <-h.broadcast:
			h.mutex.Lock()
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// slow client
					close(c.send)
					delete(h.clients, c)
				}
			}
			h.mutex.Unlock()
		}
	}
}

// Broadcast queues msg for every connected client. It never blocks; when the
// queue is full the message is dropped and the next refresh supersedes it.
func (h *Hub) Broadcast(msg Message) {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	data, err := json.Marshal(msg)
	if err != nil {
		log.WithError(err).WithField("view", msg.View).Error("failed to marshal broadcast")
		return
	}

	select {
	case h.broadcast <- data:
		h.mutex.Lock()
		h.lastSeq[msg.View] = max(h.lastSeq[msg.View], msg.Seq)
		h.mutex.Unlock()
	default:
		log.WithField("view", msg.View).Warn("broadcast queue full, dropping message")
	}
}

// Stats returns the client count and the highest token broadcast per view.
func (h *Hub) Stats() (int, map[string]uint64) {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	seqs := make(map[string]uint64, len(h.lastSeq))
	for view, seq := range h.lastSeq {
		seqs[view] = seq
	}
	return len(h.clients), seqs
}

// Upgrader returns a websocket upgrader accepting origin, or any origin for "*".
func Upgrader(origin string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			got := r.Header.Get("Origin")
			return origin == "" || origin == "*" || got == "" || got == origin
		},
	}
}

// Serve upgrades the request and attaches the connection to the hub.
func (h *Hub) Serve(up websocket.Upgrader, w http.ResponseWriter, r *http.Request, userID string) error {
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	c := &Client{hub: h, conn: conn, send: make(chan []byte, sendBuffer), userID: userID}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return nil
	}

	go c.writePump()
	go c.readPump()
	return nil
}
