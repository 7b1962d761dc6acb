// internal/render/websocket.go
package render

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/tamzrod/inverter-monitor/internal/dashboard"
	"github.com/tamzrod/inverter-monitor/internal/mode"
	"github.com/tamzrod/inverter-monitor/internal/status"
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
		return true // dashboard is served to the local network
	},
}

// Event is one render operation as sent to browsers.
type Event struct {
	Type  string              `json:"type"`
	Field dashboard.Field     `json:"field,omitempty"`
	Value *dashboard.Quantity `json:"value,omitempty"`
	Text  *string             `json:"text,omitempty"`
	Alert string              `json:"alert,omitempty"`
	Mode  *mode.Mode          `json:"mode,omitempty"`
	Flows *dashboard.Flows    `json:"flows,omitempty"`
	State *State              `json:"state,omitempty"`
}

// Event types.
const (
	EventValue = "value"
	EventText  = "text"
	EventAlert = "alert"
	EventMode  = "mode"
	EventFlows = "flows"
	EventState = "state"
	EventFlush = "flush"
)

// Hub broadcasts render operations to connected WebSocket clients.
type Hub struct {
	clients    map[*wsClient]bool
	broadcast  chan []byte
	register   chan *wsClient
	unregister chan *wsClient
	mu         sync.RWMutex
	state      *Memory
	log        zerolog.Logger
	done       chan struct{}
	wg         sync.WaitGroup
}

type wsClient struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates a hub. state, when set, is replayed to every new client.
func NewHub(state *Memory, log zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*wsClient]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *wsClient),
		unregister: make(chan *wsClient),
		state:      state,
		log:        log,
		done:       make(chan struct{}),
	}
}

// Start runs the hub until ctx is done.
func (h *Hub) Start(ctx context.Context) {
	h.wg.Add(1)
	go h.run(ctx)
	h.log.Info().Msg("websocket hub started")
}

func (h *Hub) run(ctx context.Context) {
	defer h.wg.Done()
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			h.mu.Unlock()
			h.log.Info().Msg("websocket hub stopped")
			return

		case c := <-h.register:
			if h.state != nil {
				st := h.state.State()
				if data, err := json.Marshal(Event{Type: EventState, State: &st}); err == nil {
					c.send <- data
				}
			}
			h.mu.Lock()
			h.clients[c] = true
			n := len(h.clients)
			h.mu.Unlock()
			h.log.Debug().Int("clients", n).Msg("websocket client connected")

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			n := len(h.clients)
			h.mu.Unlock()
			h.log.Debug().Int("clients", n).Msg("websocket client disconnected")

		case data := <-h.broadcast:
			h.mu.RLock()
			for c := range h.clients {
				select {
				case c.send <- data:
				default:
					// slow client, drop this message
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Wait blocks until the hub has stopped.
func (h *Hub) Wait() {
	h.wg.Wait()
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request and attaches the client.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	c := &wsClient{
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}

	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	case <-r.Context().Done():
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

func (h *Hub) SetValue(f dashboard.Field, q dashboard.Quantity) {
	h.publish(Event{Type: EventValue, Field: f, Value: &q})
}

func (h *Hub) SetText(f dashboard.Field, text string) {
	h.publish(Event{Type: EventText, Field: f, Text: &text})
}

func (h *Hub) SetAlert(level status.Alert) {
	h.publish(Event{Type: EventAlert, Alert: level.String()})
}

func (h *Hub) SetMode(m mode.Mode) {
	h.publish(Event{Type: EventMode, Mode: &m})
}

func (h *Hub) SetFlows(f dashboard.Flows) {
	h.publish(Event{Type: EventFlows, Flows: &f})
}

// Flush tells browsers a frame is complete so they can run the update highlight.
func (h *Hub) Flush() {
	h.publish(Event{Type: EventFlush})
}

func (h *Hub) publish(e Event) {
	data, err := json.Marshal(e)
	if err != nil {
		h.log.Error().Err(err).Str("type", e.Type).Msg("websocket marshal failed")
		return
	}

	select {
	case h.broadcast <- data:
	default:
		h.log.Warn().Str("type", e.Type).Msg("websocket broadcast full, dropping event")
	}
}

func (c *wsClient) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Debug().Err(err).Msg("websocket read failed")
			}
			return
		}
	}
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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
