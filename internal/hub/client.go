package hub

import (
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/mentorlink/notifier/internal/identity"
)

const (
	// writeWait is the deadline for a single outbound write.
	writeWait = 10 * time.Second

	// pongWait is how long a connection may stay silent before it is
	// considered dead. Pings go out at pingPeriod to keep it alive.
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second

	// maxMessageSize bounds inbound frames; clients only ever send small
	// subscribe requests.
	maxMessageSize = 1024

	defaultSendBuffer = 256
)

// Client is one live WebSocket connection with its immutable identity and
// its outbound queue. The queue is drained by the client's own write pump,
// so delivery to this connection never blocks anyone else.
type Client struct {
	// ID is the unique identifier of the connection, not of the user; one
	// user may hold several clients at once.
	ID uuid.UUID

	// Identity is attached at handshake time and never changes.
	Identity identity.Identity

	conn *websocket.Conn
	send chan []byte

	// closed is guarded by the owning hub's mutex.
	closed bool

	logger *zap.Logger
}

func NewClient(conn *websocket.Conn, who identity.Identity, sendBuffer int, logger *zap.Logger) *Client {
	if sendBuffer <= 0 {
		sendBuffer = defaultSendBuffer
	}
	return &Client{
		ID:       uuid.New(),
		Identity: who,
		conn:     conn,
		send:     make(chan []byte, sendBuffer),
		logger:   logger,
	}
}

// Outbound exposes the connection's queue for reading delivered events.
func (c *Client) Outbound() <-chan []byte {
	return c.send
}

// ReadLoop reads inbound frames and passes each to handle. It blocks until
// the connection errors or closes, so the caller can defer its cleanup
// around it; that is the guaranteed-unregister path for every disconnect,
// including abrupt network loss.
func (c *Client) ReadLoop(handle func(msg []byte)) {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		mt, msg, err := c.conn.ReadMessage()
		if err != nil || mt == websocket.CloseMessage {
			c.logger.Debug("read loop finished",
				zap.String("connID", c.ID.String()),
				zap.Error(err),
			)
			return
		}
		handle(msg)
	}
}

// WritePump drains the outbound queue onto the connection and keeps it alive
// with pings. It exits when the queue is closed by the hub or when a write
// fails; a failed write only ever affects this one connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				c.logger.Debug("write failed",
					zap.String("connID", c.ID.String()),
					zap.Error(err),
				)
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
