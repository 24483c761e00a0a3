package hub

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mentorlink/notifier/internal/presence"
	"github.com/mentorlink/notifier/internal/room"
)

// Hub owns the room membership index and fans events out to live
// connections. It keeps two mappings, one from room key to members and one
// from connection to joined room keys, so both broadcast resolution and
// disconnect cleanup stay cheap.
//
// All mutation happens inside the hub's single mutex; delivery to a client
// is a non-blocking enqueue onto that client's outbound queue, so one slow
// consumer can never stall the publisher or another recipient.
type Hub struct {
	clients map[uuid.UUID]*Client
	rooms   map[string]map[uuid.UUID]*Client
	joined  map[uuid.UUID]map[string]struct{}

	presence *presence.Registry
	logger   *zap.Logger

	mtx *sync.Mutex
}

func NewHub(registry *presence.Registry, logger *zap.Logger) *Hub {
	return &Hub{
		clients:  make(map[uuid.UUID]*Client),
		rooms:    make(map[string]map[uuid.UUID]*Client),
		joined:   make(map[uuid.UUID]map[string]struct{}),
		presence: registry,
		logger:   logger,
		mtx:      &sync.Mutex{},
	}
}

// Admit registers an authenticated connection and auto-joins it to its
// identity rooms. A connection is a member of exactly user:<id> and
// role:<role> immediately after admission.
func (h *Hub) Admit(c *Client) {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	h.clients[c.ID] = c
	h.joined[c.ID] = make(map[string]struct{})
	h.joinLocked(c, room.ForUser(c.Identity.ID))
	h.joinLocked(c, room.ForRole(c.Identity.Role))
	h.presence.Register(c.Identity, c.ID)

	h.logger.Info("connection admitted",
		zap.String("connID", c.ID.String()),
		zap.String("userID", c.Identity.ID),
		zap.String("role", string(c.Identity.Role)),
	)
}

// Subscribe opts the connection into an additional room, subject to the
// address's ownership rule. An unauthorized request changes nothing and is
// not surfaced to the client.
func (h *Hub) Subscribe(c *Client, addr room.Address) {
	if !addr.Joinable(c.Identity) {
		h.logger.Debug("join refused",
			zap.String("connID", c.ID.String()),
			zap.String("room", addr.String()),
		)
		return
	}

	h.mtx.Lock()
	defer h.mtx.Unlock()
	if _, ok := h.clients[c.ID]; !ok {
		return
	}
	h.joinLocked(c, addr)
	h.logger.Debug("room joined",
		zap.String("connID", c.ID.String()),
		zap.String("room", addr.String()),
	)
}

// Drop removes the connection from every room and from the presence
// registry, then releases its outbound queue and transport. It runs on every
// disconnect path and is safe to call more than once.
func (h *Hub) Drop(c *Client) {
	h.mtx.Lock()
	if c.closed {
		h.mtx.Unlock()
		return
	}
	c.closed = true
	h.removeLocked(c)
	h.mtx.Unlock()

	close(c.send)
	if c.conn != nil {
		_ = c.conn.Close()
	}
	h.logger.Info("connection dropped", zap.String("connID", c.ID.String()))
}

// Broadcast enqueues the payload to every connection currently joined to any
// of the target rooms. Each room is resolved independently; a connection
// joined to several of the target rooms receives one copy per room. A room
// with no members contributes nothing and is not an error.
//
// A connection whose outbound queue is full is torn down instead of being
// waited on.
func (h *Hub) Broadcast(payload []byte, rooms []room.Address) {
	var stalled []*Client

	h.mtx.Lock()
	for _, addr := range rooms {
		for _, c := range h.rooms[addr.String()] {
			if c.closed {
				continue
			}
			select {
			case c.send <- payload:
			default:
				stalled = append(stalled, c)
			}
		}
	}
	h.mtx.Unlock()

	for _, c := range stalled {
		h.logger.Warn("outbound queue full, dropping connection",
			zap.String("connID", c.ID.String()),
		)
		h.Drop(c)
	}
}

// Joined returns the wire-form room keys the connection is currently a
// member of.
func (h *Hub) Joined(connID uuid.UUID) []string {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	keys := make([]string, 0, len(h.joined[connID]))
	for key := range h.joined[connID] {
		keys = append(keys, key)
	}
	return keys
}

// MemberCount returns how many connections are currently joined to the
// room. Diagnostics only.
func (h *Hub) MemberCount(addr room.Address) int {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	return len(h.rooms[addr.String()])
}

// Stop tears down every live connection. Used on graceful shutdown.
func (h *Hub) Stop() {
	h.mtx.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mtx.Unlock()

	for _, c := range clients {
		h.Drop(c)
	}
	h.logger.Info("hub stopped", zap.Int("connections", len(clients)))
}

func (h *Hub) joinLocked(c *Client, addr room.Address) {
	key := addr.String()
	members, ok := h.rooms[key]
	if !ok {
		members = make(map[uuid.UUID]*Client)
		h.rooms[key] = members
	}
	members[c.ID] = c
	h.joined[c.ID][key] = struct{}{}
}

func (h *Hub) removeLocked(c *Client) {
	for key := range h.joined[c.ID] {
		members := h.rooms[key]
		delete(members, c.ID)
		if len(members) == 0 {
			delete(h.rooms, key)
		}
	}
	delete(h.joined, c.ID)
	delete(h.clients, c.ID)
	h.presence.Unregister(c.Identity.ID, c.ID)
}
