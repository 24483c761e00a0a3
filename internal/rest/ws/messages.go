package ws

// Client-initiated operations. Each is a fire-and-forget request to join an
// additional room; an unauthorized request is dropped without a reply.
const (
	EventSubscribeMentor  = "subscribe-mentor"
	EventSubscribeStudent = "subscribe-student"
	EventSubscribeCohort  = "subscribe-cohort"
)

type Message struct {
	Event string `json:"event"`
}

type SubscribeRequest struct {
	Message
	ID string `json:"id"`
}
