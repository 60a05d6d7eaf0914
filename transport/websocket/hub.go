package websocket

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/wricardo/mupol-patrol/game/effects"
	"github.com/wricardo/mupol-patrol/game/engine"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	// Pending broadcasts before Publish starts dropping frames
	broadcastBuffer = 256
)

// Encoding selects how a client receives messages
type Encoding string

const (
	EncodingJSON    Encoding = "json"
	EncodingMsgpack Encoding = "msgpack"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins in development
		return true
	},
}

// Message is one frame pushed to clients of a session
type Message struct {
	SessionID string              `json:"session_id"`
	Event     string              `json:"event,omitempty"`
	State     *engine.RunState    `json:"state,omitempty"`
	Effects   *effects.State      `json:"effects,omitempty"`
	Events    []engine.FrameEvent `json:"events,omitempty"`
	Data      interface{}         `json:"data,omitempty"`
}

// Command is a message sent by a client
type Command struct {
	Type      string `json:"type"`
	Direction string `json:"direction,omitempty"`
}

// SteerHandler applies a steer command received from a client
type SteerHandler func(sessionID, direction string) error

// Client represents a WebSocket client
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	sessionID string
	encoding  Encoding
}

type reply struct {
	client  *Client
	message *Message
}

type countRequest struct {
	sessionID string
	resp      chan int
}

// Hub maintains the set of active clients and broadcasts messages
type Hub struct {
	// Registered clients by session ID
	sessions map[string]map[*Client]bool

	// Outbound messages for every client of a session
	broadcast chan *Message

	// Outbound messages for a single client
	replies chan reply

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	counts chan countRequest

	onSteer SteerHandler
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		sessions:   make(map[string]map[*Client]bool),
		broadcast:  make(chan *Message, broadcastBuffer),
		replies:    make(chan reply, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		counts:     make(chan countRequest),
	}
}

// SetSteerHandler installs the callback for client steer commands. Call it
// before Run.
func (h *Hub) SetSteerHandler(handler SteerHandler) {
	h.onSteer = handler
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)

		case r := <-h.replies:
			if h.sessions[r.client.sessionID][r.client] {
				h.deliver(r.client, r.message, nil)
			}

		case req := <-h.counts:
			req.resp <- h.countClients(req.sessionID)
		}
	}
}

// ClientCount reports connected clients for a session, or for all sessions
// when sessionID is empty. It needs a running hub.
func (h *Hub) ClientCount(sessionID string) int {
	req := countRequest{sessionID: sessionID, resp: make(chan int, 1)}
	h.counts <- req
	return <-req.resp
}

func (h *Hub) countClients(sessionID string) int {
	if sessionID != "" {
		return len(h.sessions[sessionID])
	}
	total := 0
	for _, clients := range h.sessions {
		total += len(clients)
	}
	return total
}

// ServeWS handles WebSocket requests from clients
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, sessionID string) {
	encoding := EncodingJSON
	if r.URL.Query().Get("encoding") == string(EncodingMsgpack) {
		encoding = EncodingMsgpack
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := &Client{
		hub:       h,
		conn:      conn,
		send:      make(chan []byte, 256),
		sessionID: sessionID,
		encoding:  encoding,
	}

	client.hub.register <- client

	// Start client goroutines
	go client.writePump()
	go client.readPump()
}

// Publish queues a frame for every client of the session. It never blocks:
// when the hub falls behind the frame is dropped, the next one supersedes it.
func (h *Hub) Publish(sessionID string, state *engine.RunState, fx effects.State, events []engine.FrameEvent) {
	event := "state_update"
	if state != nil && state.Phase == engine.PhaseGameOver {
		event = "game_over"
	}

	h.enqueue(&Message{
		SessionID: sessionID,
		Event:     event,
		State:     state,
		Effects:   &fx,
		Events:    events,
	})
}

// BroadcastEvent sends a custom event to all clients in a session
func (h *Hub) BroadcastEvent(sessionID string, event string, data interface{}) {
	h.enqueue(&Message{
		SessionID: sessionID,
		Event:     event,
		Data:      data,
	})
}

func (h *Hub) enqueue(message *Message) {
	select {
	case h.broadcast <- message:
	default:
		log.Printf("WebSocket broadcast queue full, dropping %s for session %s", message.Event, message.SessionID)
	}
}

// registerClient adds a client to a session
func (h *Hub) registerClient(client *Client) {
	if h.sessions[client.sessionID] == nil {
		h.sessions[client.sessionID] = make(map[*Client]bool)
	}
	h.sessions[client.sessionID][client] = true

	log.Printf("Client registered for session %s (encoding: %s, total clients: %d)",
		client.sessionID, client.encoding, len(h.sessions[client.sessionID]))
}

// unregisterClient removes a client from a session
func (h *Hub) unregisterClient(client *Client) {
	if clients, ok := h.sessions[client.sessionID]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client.send)

			// Clean up empty sessions
			if len(clients) == 0 {
				delete(h.sessions, client.sessionID)
			}

			log.Printf("Client unregistered from session %s (remaining clients: %d)",
				client.sessionID, len(clients))
		}
	}
}

// broadcastMessage sends a message to all clients in a session, encoding
// it at most once per encoding
func (h *Hub) broadcastMessage(message *Message) {
	clients, ok := h.sessions[message.SessionID]
	if !ok {
		return
	}

	encoded := make(map[Encoding][]byte, 2)
	for client := range clients {
		h.deliver(client, message, encoded)
	}
}

// deliver encodes the message for the client and queues it, dropping the
// client when its buffer is full
func (h *Hub) deliver(client *Client, message *Message, cache map[Encoding][]byte) {
	data, ok := cache[client.encoding]
	if !ok {
		var err error
		data, err = encodeMessage(client.encoding, message)
		if err != nil {
			log.Printf("Failed to encode %s WebSocket message: %v", client.encoding, err)
			return
		}
		if cache != nil {
			cache[client.encoding] = data
		}
	}

	select {
	case client.send <- data:
	default:
		// Client's send channel is full, close it
		h.unregisterClient(client)
	}
}

// handleCommand runs a client command and queues any reply for that client
func (c *Client) handleCommand(cmd Command) {
	var msg *Message
	switch cmd.Type {
	case "steer":
		if c.hub.onSteer == nil {
			msg = &Message{SessionID: c.sessionID, Event: "error", Data: "steering is not available"}
			break
		}
		// The resulting state arrives through Publish
		if err := c.hub.onSteer(c.sessionID, cmd.Direction); err != nil {
			msg = &Message{SessionID: c.sessionID, Event: "error", Data: err.Error()}
		}
	default:
		msg = &Message{SessionID: c.sessionID, Event: "error", Data: "unknown command type: " + cmd.Type}
	}

	if msg != nil {
		select {
		case c.hub.replies <- reply{client: c, message: msg}:
		default:
		}
	}
}

// readPump pumps commands from the WebSocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		cmd, err := decodeCommand(messageType, data)
		if err != nil {
			log.Printf("WebSocket bad command from session %s: %v", c.sessionID, err)
			continue
		}
		c.handleCommand(cmd)
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if c.encoding == EncodingMsgpack {
				// One snapshot per binary frame
				if err := c.conn.WriteMessage(websocket.BinaryMessage, message); err != nil {
					return
				}
				continue
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current WebSocket message
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
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
