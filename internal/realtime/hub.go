// Package realtime keeps websocket subscribers grouped in rooms and publishes notifications to them.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/yukikurage/gestor-tarefas/internal/constants"
	"github.com/yukikurage/gestor-tarefas/internal/policy"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 4096
)

// Client events understood by the hub.
const (
	EventJoinAdminRoom = "join_admin_room"
	EventJoinSetorRoom = "join_setor_room"
	EventStatus        = "status"
)

// Message is the envelope used in both directions.
type Message struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type outbound struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type statusData struct {
	Msg string `json:"msg"`
}

type joinSetorData struct {
	Setor string `json:"setor"`
}

// Client is one websocket connection and the principal that opened it.
type Client struct {
	conn      *websocket.Conn
	principal policy.Principal

	writeMu sync.Mutex
}

func (c *Client) write(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(v)
}

// Hub tracks room membership. It is safe for concurrent use.
type Hub struct {
	upgrader websocket.Upgrader
	log      zerolog.Logger

	mu      sync.RWMutex
	clients map[*Client]map[string]struct{}
	rooms   map[string]map[*Client]struct{}
}

// NewHub creates a hub. checkOrigin may be nil to accept every origin.
func NewHub(log zerolog.Logger, checkOrigin func(r *http.Request) bool) *Hub {
	if checkOrigin == nil {
		checkOrigin = func(r *http.Request) bool { return true }
	}

	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		log:     log.With().Str("component", "realtime_hub").Logger(),
		clients: make(map[*Client]map[string]struct{}),
		rooms:   make(map[string]map[*Client]struct{}),
	}
}

// ServeWs upgrades the request and serves the connection until the peer goes away.
func (h *Hub) ServeWs(c *gin.Context, principal policy.Principal) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := &Client{conn: conn, principal: principal}
	h.register(client)

	go h.readLoop(client)
}

// Publish sends {"event": name, "data": payload} to every client in room.
// Clients whose write fails are disconnected.
func (h *Hub) Publish(ctx context.Context, room, name string, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	h.mu.RLock()
	members := make([]*Client, 0, len(h.rooms[room]))
	for client := range h.rooms[room] {
		members = append(members, client)
	}
	h.mu.RUnlock()

	msg := outbound{Event: name, Data: payload}
	var failed int
	for _, client := range members {
		if err := client.write(msg); err != nil {
			failed++
			h.log.Warn().
				Err(err).
				Uint64("user_id", client.principal.UserID).
				Str("room", room).
				Msg("websocket write failed, dropping client")
			h.unregister(client)
		}
	}

	if failed > 0 && failed == len(members) {
		return fmt.Errorf("delivery to room %s failed for all %d clients", room, failed)
	}
	return nil
}

// RoomSize returns the number of clients subscribed to room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		h.unregister(client)
	}
}

func (h *Hub) register(client *Client) {
	h.mu.Lock()
	h.clients[client] = make(map[string]struct{})
	h.mu.Unlock()

	h.log.Debug().
		Uint64("user_id", client.principal.UserID).
		Str("username", client.principal.Username).
		Msg("client connected")
}

func (h *Hub) unregister(client *Client) {
	h.mu.Lock()
	rooms, ok := h.clients[client]
	if ok {
		delete(h.clients, client)
		for room := range rooms {
			delete(h.rooms[room], client)
			if len(h.rooms[room]) == 0 {
				delete(h.rooms, room)
			}
		}
	}
	h.mu.Unlock()

	if ok {
		_ = client.conn.Close()
		h.log.Debug().
			Uint64("user_id", client.principal.UserID).
			Msg("client disconnected")
	}
}

func (h *Hub) join(client *Client, room string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	rooms, ok := h.clients[client]
	if !ok {
		return false
	}
	rooms[room] = struct{}{}
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Client]struct{})
	}
	h.rooms[room][client] = struct{}{}
	return true
}

func (h *Hub) readLoop(client *Client) {
	defer h.unregister(client)

	client.conn.SetReadLimit(maxMessageSize)
	for {
		var msg Message
		if err := client.conn.ReadJSON(&msg); err != nil {
			if isDecodeError(err) {
				_ = client.write(status("invalid message"))
				continue
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug().Err(err).Msg("websocket closed unexpectedly")
			}
			return
		}

		if err := client.write(h.handle(client, msg)); err != nil {
			return
		}
	}
}

func (h *Hub) handle(client *Client, msg Message) outbound {
	var room string
	switch msg.Event {
	case EventJoinAdminRoom:
		room = constants.AdminRoom
	case EventJoinSetorRoom:
		var data joinSetorData
		if err := json.Unmarshal(msg.Data, &data); err != nil || data.Setor == "" {
			return status("department is required")
		}
		room = policy.DepartmentRoom(data.Setor)
	default:
		return status(fmt.Sprintf("unknown event %q", msg.Event))
	}

	if !client.principal.CanJoinRoom(room) {
		return status(fmt.Sprintf("not authorized to join %s", room))
	}
	if !h.join(client, room) {
		return status("connection closed")
	}

	h.log.Debug().
		Uint64("user_id", client.principal.UserID).
		Str("room", room).
		Msg("client joined room")
	return status(fmt.Sprintf("joined %s", room))
}

// isDecodeError reports whether a frame arrived but did not decode into a Message.
func isDecodeError(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr)
}

func status(text string) outbound {
	return outbound{Event: EventStatus, Data: statusData{Msg: text}}
}

// OriginChecker accepts websocket handshakes from the listed origins. A "*" entry, or an
// empty list, accepts every origin. Requests without an Origin header are accepted.
func OriginChecker(origins []string) func(r *http.Request) bool {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		if o == "*" {
			return nil
		}
		allowed[o] = struct{}{}
	}
	if len(allowed) == 0 {
		return nil
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := allowed[origin]
		return ok
	}
}
