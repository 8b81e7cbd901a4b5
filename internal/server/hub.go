package server

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	sendQueueSize  = 64
	writeWait      = 10 * time.Second
	maxInboundSize = 64 << 10 // 64 KiB
)

// wsEnvelope is the wire format in both directions.
type wsEnvelope struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// Hub tracks connected realtime clients and fans events out to all of them.
// Delivery is best-effort: a client whose queue is full is disconnected
// rather than allowed to stall the broadcast path.
type Hub struct {
	mu      sync.Mutex
	clients map[string]*wsClient
	logger  *slog.Logger
}

var _ Broadcaster = (*Hub)(nil)

// NewHub constructs an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{clients: make(map[string]*wsClient), logger: logger}
}

// Broadcast enqueues an event for every connected client, originator
// included. Callers invoke it under their own service lock, so per-client
// queue order equals mutation order.
func (h *Hub) Broadcast(event string, data any) {
	msg := wsEnvelope{Event: event, Data: data}

	h.mu.Lock()
	defer h.mu.Unlock()
	for id, client := range h.clients {
		if !client.enqueue(msg) {
			h.logger.Warn("dropping slow realtime client", "client_id", id)
			delete(h.clients, id)
			client.close()
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// register adds the client, enqueuing its welcome messages first. Both
// happen under the hub lock, so no broadcast can reach the client ahead
// of the welcome.
func (h *Hub) register(client *wsClient, welcome ...wsEnvelope) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, msg := range welcome {
		client.enqueue(msg)
	}
	h.clients[client.id] = client
}

func (h *Hub) unregister(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client, ok := h.clients[id]; ok {
		delete(h.clients, id)
		client.close()
	}
}

// closeAll disconnects every client; used on shutdown.
func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, client := range h.clients {
		delete(h.clients, id)
		client.close()
	}
}

// wsClient is one connected realtime peer. A dedicated writer goroutine
// drains the send queue; no domain state is tied to the connection.
//
// The send channel itself is never closed: the hub's broadcast path and the
// client's own read goroutine both enqueue concurrently, so teardown is
// signalled through done instead. enqueue on a closed client is a no-op.
type wsClient struct {
	id   string
	conn *websocket.Conn
	send chan wsEnvelope
	done chan struct{}

	closeOnce sync.Once
}

func newWSClient(id string, conn *websocket.Conn) *wsClient {
	return &wsClient{
		id:   id,
		conn: conn,
		send: make(chan wsEnvelope, sendQueueSize),
		done: make(chan struct{}),
	}
}

// enqueue queues an outbound message without blocking. Returns false when
// the client is closed or its queue is full.
func (c *wsClient) enqueue(msg wsEnvelope) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// writePump drains the send queue onto the connection until close is
// signalled, then flushes whatever is still queued and says goodbye.
func (c *wsClient) writePump() {
	defer c.conn.Close()
	for {
		select {
		case msg := <-c.send:
			if !c.write(msg) {
				return
			}
		case <-c.done:
			for {
				select {
				case msg := <-c.send:
					if !c.write(msg) {
						return
					}
				default:
					_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
					_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
					return
				}
			}
		}
	}
}

func (c *wsClient) write(msg wsEnvelope) bool {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(msg) == nil
}

func (c *wsClient) close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}
