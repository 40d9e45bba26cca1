package realtime

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 50 * time.Second
)

// Client is one connected admin session.
type Client struct {
	conn *websocket.Conn
	Send chan []byte
}

// Hub fans the pending-loan count out to every connected admin session.
// Sidebar badges subscribe here instead of polling. The hub is
// constructor-injected wherever it is needed; there is no package-level
// singleton.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte

	mu        sync.Mutex
	lastCount int64
	hasCount  bool
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 8),
	}
}

// Run owns the client set; call it once in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					close(client.Send)
					delete(h.clients, client)
				}
			}
		}
	}
}

type countMessage struct {
	PendingLoans int64 `json:"pendingLoans"`
}

// PublishPendingCount pushes a new pending-request count to all sessions.
// Never blocks the caller: if the hub loop is saturated the update is
// dropped, and the next transition publishes a fresh count anyway.
func (h *Hub) PublishPendingCount(count int64) {
	h.mu.Lock()
	h.lastCount = count
	h.hasCount = true
	h.mu.Unlock()

	payload, err := json.Marshal(countMessage{PendingLoans: count})
	if err != nil {
		return
	}
	select {
	case h.broadcast <- payload:
	default:
		log.Printf("[WARN] hub: broadcast queue full, dropping count update")
	}
}

// ServeWS upgrades the request and attaches the session to the hub. The
// most recent count is sent immediately so a fresh page shows the badge
// without waiting for the next transition.
func (h *Hub) ServeWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WARN] hub: upgrade failed: %v", err)
		return
	}

	client := &Client{conn: conn, Send: make(chan []byte, 8)}
	h.register <- client

	h.mu.Lock()
	if h.hasCount {
		if payload, err := json.Marshal(countMessage{PendingLoans: h.lastCount}); err == nil {
			select {
			case client.Send <- payload:
			default:
			}
		}
	}
	h.mu.Unlock()

	go client.writePump()
	go client.readPump(h)
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards inbound frames; the badge channel is one-way. Its job
// is to notice the peer going away and unregister.
func (c *Client) readPump(h *Hub) {
	defer func() {
		h.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
