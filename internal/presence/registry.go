package presence

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mentorlink/notifier/internal/identity"
)

// Registry tracks which identities currently hold live connections. An
// identity may hold several simultaneous connections (multiple tabs or
// devices). All state lives in memory and is rebuilt from scratch on every
// process start.
type Registry struct {
	data   map[string]map[uuid.UUID]struct{}
	logger *zap.Logger

	mtx *sync.Mutex
}

func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		data:   make(map[string]map[uuid.UUID]struct{}),
		logger: logger,
		mtx:    &sync.Mutex{},
	}
}

// Register records a live connection for the identity. Registering the same
// connection twice is a no-op.
func (r *Registry) Register(who identity.Identity, connID uuid.UUID) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	conns, ok := r.data[who.ID]
	if !ok {
		conns = make(map[uuid.UUID]struct{})
		r.data[who.ID] = conns
	}
	conns[connID] = struct{}{}
	r.logger.Debug("connection registered",
		zap.String("userID", who.ID),
		zap.String("connID", connID.String()),
	)
}

// Unregister removes a connection from the identity's live set. Unregistering
// a connection that was never registered is a no-op, never an error.
func (r *Registry) Unregister(userID string, connID uuid.UUID) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	conns, ok := r.data[userID]
	if !ok {
		return
	}
	delete(conns, connID)
	if len(conns) == 0 {
		delete(r.data, userID)
	}
	r.logger.Debug("connection unregistered",
		zap.String("userID", userID),
		zap.String("connID", connID.String()),
	)
}

// IsLive reports whether the identity holds at least one live connection.
// Diagnostics only; publishing never consults it.
func (r *Registry) IsLive(userID string) bool {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	return len(r.data[userID]) > 0
}

// Connections returns the identity's live connection ids.
func (r *Registry) Connections(userID string) []uuid.UUID {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	ids := make([]uuid.UUID, 0, len(r.data[userID]))
	for id := range r.data[userID] {
		ids = append(ids, id)
	}
	return ids
}
