package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mentorlink/notifier/internal/auth"
	"github.com/mentorlink/notifier/internal/hub"
	"github.com/mentorlink/notifier/internal/notifier"
	"github.com/mentorlink/notifier/internal/presence"
	"github.com/mentorlink/notifier/internal/rest/ws"
	"github.com/mentorlink/notifier/internal/room"
)

type Rest struct {
	config *Config

	registry  *presence.Registry
	hub       *hub.Hub
	publisher *notifier.Publisher

	server *http.Server
}

func NewRest(config *Config) *Rest {
	return &Rest{
		config: config,
	}
}

func (rest *Rest) Start() {
	router := chi.NewRouter()

	// Define the /ping endpoint
	router.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		_, err := w.Write([]byte("pong"))
		if err != nil {
			return
		}
	})

	rest.registry = presence.NewRegistry(rest.config.Logger)
	rest.hub = hub.NewHub(rest.registry, rest.config.Logger)
	rest.publisher = notifier.NewPublisher(rest.hub, rest.config.Logger)
	authenticator := auth.NewAuthenticator(rest.config.JWTSecret, rest.config.Logger)

	// Define the /ws endpoint
	wsHandler := ws.NewHandler(
		authenticator,
		rest.hub,
		rest.config.JWTHeaderName,
		rest.config.SendBuffer,
		rest.config.AllowedOrigins,
		rest.config.Logger,
	)
	router.HandleFunc("/ws", wsHandler.Handle)

	// Define the /publish endpoint, called by the portal's REST tier after
	// a mutation has been committed.
	router.Post("/publish", rest.handlePublish)

	// Define the /presence endpoint, diagnostics only.
	router.Get("/presence/{userID}", rest.handlePresence)

	rest.server = &http.Server{
		Addr:              ":" + strconv.Itoa(rest.config.Port),
		Handler:           router,
		ReadHeaderTimeout: 0,
	}
	if err := rest.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		rest.config.Logger.Error("server error", zap.Error(err))
		return
	}
}

func (rest *Rest) Stop() {
	if rest.hub != nil {
		rest.hub.Stop()
	}
	if err := rest.server.Shutdown(context.Background()); err != nil {
		rest.config.Logger.Error("server error", zap.Error(err))
	}
}

type publishRequest struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
	Rooms   []string        `json:"rooms"`
}

func (rest *Rest) handlePublish(w http.ResponseWriter, r *http.Request) {
	if rest.config.PublishKey == "" || r.Header.Get("X-Service-Key") != rest.config.PublishKey {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	var request publishRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if request.Event == "" || len(request.Rooms) == 0 {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	addresses := make([]room.Address, 0, len(request.Rooms))
	for _, raw := range request.Rooms {
		addr, err := room.ParseAddress(raw)
		if err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		addresses = append(addresses, addr)
	}

	// Delivery itself is fire-and-forget; only a malformed request fails.
	rest.publisher.Publish(request.Event, request.Payload, addresses...)
	w.WriteHeader(http.StatusAccepted)
}

func (rest *Rest) handlePresence(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	response := map[string]interface{}{
		"userID": userID,
		"live":   rest.registry.IsLive(userID),
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		rest.config.Logger.Error("failed to encode response", zap.Error(err))
	}
}
