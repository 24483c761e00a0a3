package notifier

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/mentorlink/notifier/internal/hub"
	"github.com/mentorlink/notifier/internal/room"
)

// Envelope is the wire form of a pushed event.
type Envelope struct {
	Event     string      `json:"event"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// Publisher is the surface domain code calls after a mutation has been
// committed. A publish is fire-and-forget: it never fails back to the
// caller, whether the target rooms are empty, a recipient is slow, or the
// payload cannot even be serialized. The caller enumerates every room the
// event is relevant to; the publisher adds no fan-out of its own and never
// deduplicates across the given rooms.
type Publisher struct {
	hub    *hub.Hub
	logger *zap.Logger
}

func NewPublisher(h *hub.Hub, logger *zap.Logger) *Publisher {
	return &Publisher{
		hub:    h,
		logger: logger,
	}
}

// Publish stamps the event, serializes it once, and hands it to the hub for
// delivery to every live member of the target rooms.
func (p *Publisher) Publish(event string, payload interface{}, rooms ...room.Address) {
	if len(rooms) == 0 {
		return
	}

	envelope := Envelope{
		Event:     event,
		Data:      payload,
		Timestamp: time.Now().UTC(),
	}
	serialized, err := json.Marshal(envelope)
	if err != nil {
		p.logger.Error("failed to serialize event, dropping",
			zap.String("event", event),
			zap.Error(err),
		)
		return
	}

	p.hub.Broadcast(serialized, rooms)
	p.logger.Debug("event published",
		zap.String("event", event),
		zap.Int("rooms", len(rooms)),
	)
}
