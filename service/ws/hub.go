package ws

import (
	"sync"
	"time"

	"github.com/anandbobba/Innovex-Service/logger"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const sendQueueSize = 64

// Relay mirrors broadcasts to sibling instances. room=="" means global.
type Relay interface {
	Publish(room, event string, data []byte) error
}

// Client is one WebSocket connection with its per-connection send queue and
// room memberships. Memberships are not persisted; a reconnecting client
// must rejoin its rooms.
type Client struct {
	ID    string
	conn  *websocket.Conn
	send  chan []byte
	rooms map[string]struct{}

	closeOnce sync.Once
}

func newClient(conn *websocket.Conn) *Client {
	return &Client{
		ID:    uuid.NewString(),
		conn:  conn,
		send:  make(chan []byte, sendQueueSize),
		rooms: make(map[string]struct{}),
	}
}

// enqueue is fire-and-forget: a slow client drops the event rather than
// blocking the broadcaster. It re-fetches the full list after reconnect.
func (c *Client) enqueue(data []byte) {
	select {
	case c.send <- data:
	default:
		logger.Infof("[ws] send queue full, drop event client=%s", c.ID)
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() { close(c.send) })
}

// Hub tracks connections and room memberships and fans frames out to them.
// Room names are client-supplied strings; the hub never validates that a
// joining client is entitled to a room.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	rooms   map[string]map[*Client]struct{}

	relay Relay
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		rooms:   make(map[string]map[*Client]struct{}),
	}
}

// SetRelay attaches an optional cross-instance relay. Call before serving.
func (h *Hub) SetRelay(r Relay) { h.relay = r }

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		for room := range c.rooms {
			h.leaveLocked(c, room)
		}
		c.close()
	}
	h.mu.Unlock()
}

func (h *Hub) Join(c *Client, room string) {
	if room == "" {
		return
	}
	h.mu.Lock()
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Client]struct{})
	}
	h.rooms[room][c] = struct{}{}
	c.rooms[room] = struct{}{}
	h.mu.Unlock()
	logger.Debugf("[ws] join room=%s client=%s", room, c.ID)
}

func (h *Hub) Leave(c *Client, room string) {
	h.mu.Lock()
	h.leaveLocked(c, room)
	h.mu.Unlock()
}

func (h *Hub) leaveLocked(c *Client, room string) {
	if mm := h.rooms[room]; mm != nil {
		delete(mm, c)
		if len(mm) == 0 {
			delete(h.rooms, room)
		}
	}
	delete(c.rooms, room)
}

// BroadcastAll publishes an event to every connected client.
func (h *Hub) BroadcastAll(event string, payload interface{}) {
	data, err := EncodeFrame(event, payload)
	if err != nil {
		logger.Errorf("[ws] encode event=%s: %v", event, err)
		return
	}
	h.deliverAll(data)
	h.publishRelay("", event, data)
}

// BroadcastRoom publishes an event to the members of one room.
func (h *Hub) BroadcastRoom(room, event string, payload interface{}) {
	if room == "" {
		return
	}
	data, err := EncodeFrame(event, payload)
	if err != nil {
		logger.Errorf("[ws] encode event=%s room=%s: %v", event, room, err)
		return
	}
	h.deliverRoom(room, data)
	h.publishRelay(room, event, data)
}

// DeliverLocal injects an already-encoded frame from the relay without
// republishing it, so relayed events do not loop between instances.
func (h *Hub) DeliverLocal(room string, data []byte) {
	if room == "" {
		h.deliverAll(data)
		return
	}
	h.deliverRoom(room, data)
}

func (h *Hub) deliverAll(data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		c.enqueue(data)
	}
}

func (h *Hub) deliverRoom(room string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[room] {
		c.enqueue(data)
	}
}

func (h *Hub) publishRelay(room, event string, data []byte) {
	if h.relay == nil {
		return
	}
	if err := h.relay.Publish(room, event, data); err != nil {
		logger.Errorf("[ws] relay publish event=%s room=%s: %v", event, room, err)
	}
}

// RoomSize reports current membership; used by tests and the health payload.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// writePump drains the send queue and keeps the connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				_ = c.conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(writeWait))
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, []byte("ping"),
				time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
