// Package event carries best-effort notifications from the background broker
// to whatever UI surface happens to be listening. Publishing never fails the
// primary operation; an absent listener simply leaves events buffered.
package event

import "time"

// Event types broadcast by the broker.
const (
	TypeSessionLocked   = "session.locked"
	TypeSessionUnlocked = "session.unlocked"
	TypeRequestCreated  = "request.created"
	TypeRequestSettled  = "request.settled"
)

type Context struct {
	EventType string `json:"eventType"`
	Origin    string `json:"origin,omitempty"`
	RequestID string `json:"requestId,omitempty"`
	Method    string `json:"method,omitempty"`
}

type Event[T any] struct {
	Context   *Context               `json:"context"`
	CreatedAt time.Time              `json:"createdAt"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Data      T                      `json:"data"`
}

func NewEvent[T any](context *Context, data T) *Event[T] {
	return &Event[T]{
		Context:   context,
		CreatedAt: time.Now(),
		Metadata:  make(map[string]interface{}),
		Data:      data,
	}
}
