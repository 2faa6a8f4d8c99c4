package ui

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"oneclick/internal/console"
	"oneclick/internal/protocol"
)

const (
	// backlogSize matches the console buffer so a new browser sees what the console kept
	backlogSize = console.DefaultCapacity
	// sendBuffer is the per-client headroom for live messages on top of the backlog
	sendBuffer = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     sameOrigin,
}

// hub fans console lines and state changes out to connected browsers.
// It keeps its own copy of the console backlog so a client registered by
// the hub goroutine gets every line exactly once.
type hub struct {
	clients    map[*wsClient]bool
	clientsMu  sync.RWMutex
	broadcast  chan protocol.Message
	register   chan *wsClient
	unregister chan *wsClient
	shutdown   chan struct{}
	closeOnce  sync.Once

	backlog []string
	status  func() interface{}
}

type wsClient struct {
	hub  *hub
	conn *websocket.Conn
	send chan []byte
}

func newHub(status func() interface{}) *hub {
	return &hub{
		clients:    make(map[*wsClient]bool),
		broadcast:  make(chan protocol.Message, sendBuffer),
		register:   make(chan *wsClient),
		unregister: make(chan *wsClient),
		shutdown:   make(chan struct{}),
		status:     status,
	}
}

// seed sets the initial backlog. It must be called before run.
func (h *hub) seed(lines []string) {
	h.backlog = append([]string(nil), lines...)
	h.trimBacklog()
}

func (h *hub) run() {
	for {
		select {
		case client := <-h.register:
			h.clientsMu.Lock()
			h.clients[client] = true
			h.clientsMu.Unlock()
			h.greet(client)
			log.Printf("WS: UI client connected. Total clients: %d", h.count())

		case client := <-h.unregister:
			h.clientsMu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.clientsMu.Unlock()

		case message := <-h.broadcast:
			h.broadcastMessage(message)

		case <-h.shutdown:
			h.clientsMu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.clientsMu.Unlock()
			return
		}
	}
}

// greet queues the console backlog and the current status for a new client.
// The client's buffer holds a full backlog, so nothing here blocks.
func (h *hub) greet(client *wsClient) {
	for _, line := range h.backlog {
		h.queue(client, protocol.Message{Type: protocol.TypeConsole, Payload: protocol.ConsolePayload{Line: line}})
	}
	if h.status != nil {
		h.queue(client, protocol.Message{Type: protocol.TypeStatus, Payload: h.status()})
	}
}

func (h *hub) queue(client *wsClient, message protocol.Message) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("WS: Failed to marshal %s message: %v", message.Type, err)
		return
	}
	select {
	case client.send <- data:
	default:
		log.Printf("WS: Client buffer full, dropping %s message", message.Type)
	}
}

func (h *hub) count() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

func (h *hub) trimBacklog() {
	if over := len(h.backlog) - backlogSize; over > 0 {
		h.backlog = append([]string(nil), h.backlog[over:]...)
	}
}

func (h *hub) broadcastMessage(message protocol.Message) {
	if p, ok := message.Payload.(protocol.ConsolePayload); ok {
		h.backlog = append(h.backlog, p.Line)
		h.trimBacklog()
	}

	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("WS: Failed to marshal broadcast message: %v", err)
		return
	}

	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	for client := range h.clients {
		select {
		case client.send <- data:
		default:
			close(client.send)
			delete(h.clients, client)
		}
	}
}

// publish queues a message for every client without blocking the caller
func (h *hub) publish(message protocol.Message) {
	select {
	case h.broadcast <- message:
	case <-h.shutdown:
	default:
		log.Printf("WS: Broadcast queue full, dropping %s message", message.Type)
	}
}

func (h *hub) close() {
	h.closeOnce.Do(func() { close(h.shutdown) })
}

// handleWebSocket upgrades the connection and hands the client to the hub,
// which sends the console backlog and status before any live message
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WS: Failed to upgrade connection: %v", err)
		return
	}

	client := &wsClient{
		hub:  s.hub,
		conn: conn,
		send: make(chan []byte, backlogSize+sendBuffer),
	}

	select {
	case s.hub.register <- client:
	case <-s.hub.shutdown:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// readPump drains the connection so control frames are processed
func (c *wsClient) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.shutdown:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(60 * time.Second)); return nil })

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WS: Read error: %v", err)
			}
			return
		}
	}
}

// writePump pumps messages from the hub to the websocket connection.
func (c *wsClient) writePump() {
	ticker := time.NewTicker(50 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
