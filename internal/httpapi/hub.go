package httpapi

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"lovable-tutor/internal/session"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	sendBuffer = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type wsClient struct {
	conn *websocket.Conn
	send chan session.Event
	// Events at or below this sequence are already in the snapshot.
	after uint64
}

// Hub fans session events out to WebSocket clients. A client that falls
// sendBuffer events behind is disconnected rather than slowing the session.
type Hub struct {
	mu      sync.Mutex
	clients map[*wsClient]bool
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*wsClient]bool)}
}

// Publish is a session observer; it never blocks.
func (h *Hub) Publish(ev session.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- ev:
		default:
			log.Printf("⚠️ WebSocket client %s too slow, dropping", c.conn.RemoteAddr())
			delete(h.clients, c)
			close(c.send)
		}
	}
}

func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) remove(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[c] {
		delete(h.clients, c)
		close(c.send)
	}
}

// Serve upgrades the request and streams events until the client goes away.
// The first message is a snapshot taken after the client was registered, so
// no event is lost between the snapshot and the stream. Queued events the
// snapshot already covers are skipped, so none is delivered twice.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, snapshot func() session.View) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("❌ WebSocket upgrade failed: %v", err)
		return
	}
	c := &wsClient{conn: conn, send: make(chan session.Event, sendBuffer)}

	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()

	snap := snapshot()
	c.after = snap.Seq

	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(gin.H{"kind": "snapshot", "snapshot": snap}); err != nil {
		h.remove(c)
		_ = conn.Close()
		return
	}

	go h.writePump(c)
	h.readPump(c)
}

func (h *Hub) readPump(c *wsClient) {
	defer func() {
		h.remove(c)
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(4096)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			return
		}
	}
}

func (h *Hub) writePump(c *wsClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case ev, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if ev.Seq <= c.after {
				continue
			}
			if err := c.conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
