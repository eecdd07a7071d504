package approval

import (
	"time"
)

// Standard event topics published on the service queue. Expiry is a
// settlement too; the Settlement payload carries the Expired flag.
const (
	TopicRequestCreated = "request.created"
	TopicRequestSettled = "request.settled"
)

// Event envelope delivered to any prompt surface listening on the queue.
type Event struct {
	Topic   string            // see topic constants above
	Data    interface{}       // *Request | *Settlement
	Headers map[string]string `json:"headers,omitempty"`
}

// Request represents one in-flight consent-requiring call. It is never
// mutated after registration and is removed from the registry exactly once:
// on approval, rejection or timeout, whichever occurs first.
type Request struct {
	ID        string                 `json:"id"`     // method-prefixed, globally unique
	Origin    string                 `json:"origin"` // authority of the requesting page
	Method    string                 `json:"method"`
	Params    map[string]interface{} `json:"params,omitempty"`
	CreatedAt time.Time              `json:"createdAt"` // diagnostics only - expiry uses the waiter deadline
}

// Settlement records how a request ended.
type Settlement struct {
	ID        string    `json:"id"` // same as request.ID
	Approved  bool      `json:"approved"`
	Expired   bool      `json:"expired,omitempty"`
	DecidedAt time.Time `json:"decidedAt"`
}
