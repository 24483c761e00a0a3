package ws

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/mentorlink/notifier/internal/auth"
	"github.com/mentorlink/notifier/internal/hub"
	"github.com/mentorlink/notifier/internal/room"
)

var ErrInvalidMessage = errors.New("invalid message")

// Handler upgrades authenticated HTTP requests into hub connections and
// drives each connection's read side.
type Handler struct {
	// upgrader is used to upgrade the HTTP connection to a WebSocket connection
	upgrader *websocket.Upgrader

	authenticator *auth.Authenticator
	hub           *hub.Hub

	// jwtHeaderName is the name of the header that carries the credential
	jwtHeaderName string

	sendBuffer int

	logger *zap.Logger
}

func NewHandler(
	authenticator *auth.Authenticator,
	h *hub.Hub,
	jwtHeaderName string,
	sendBuffer int,
	allowedOrigins []string,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		upgrader: &websocket.Upgrader{
			CheckOrigin: originChecker(allowedOrigins),
		},
		authenticator: authenticator,
		hub:           h,
		jwtHeaderName: jwtHeaderName,
		sendBuffer:    sendBuffer,
		logger:        logger,
	}
}

// Handle authenticates the handshake, admits the connection, and blocks on
// its read loop. The credential is verified before the upgrade, so a refused
// handshake never creates any connection state.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	token := auth.TokenFromRequest(r, h.jwtHeaderName)
	who, err := h.authenticator.Verify(token)
	if err != nil {
		h.logger.Debug("handshake refused", zap.Error(err))
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("failed to upgrade connection", zap.Error(err))
		return
	}

	client := hub.NewClient(conn, who, h.sendBuffer, h.logger)
	h.hub.Admit(client)
	go client.WritePump()

	// Drop runs on every exit path, including abrupt network loss.
	defer h.hub.Drop(client)

	client.ReadLoop(func(msg []byte) {
		h.handleMessage(client, msg)
	})
}

func (h *Handler) handleMessage(client *hub.Client, msg []byte) {
	addr, err := subscribeAddress(msg)
	if err != nil {
		h.logger.Debug("failed to define message",
			zap.String("connID", client.ID.String()),
			zap.Error(err),
		)
		return
	}
	h.hub.Subscribe(client, addr)
}

// subscribeAddress maps an inbound message to the room it asks to join.
func subscribeAddress(msg []byte) (room.Address, error) {
	var request SubscribeRequest
	if err := json.Unmarshal(msg, &request); err != nil {
		return room.Address{}, ErrInvalidMessage
	}
	if request.ID == "" {
		return room.Address{}, ErrInvalidMessage
	}

	switch request.Event {
	case EventSubscribeMentor:
		return room.ForMentor(request.ID), nil
	case EventSubscribeStudent:
		return room.ForStudent(request.ID), nil
	case EventSubscribeCohort:
		return room.ForCohort(request.ID), nil
	}
	return room.Address{}, ErrInvalidMessage
}

func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return func(_ *http.Request) bool {
			return true
		}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		for _, candidate := range allowed {
			if origin == candidate {
				return true
			}
		}
		return false
	}
}
