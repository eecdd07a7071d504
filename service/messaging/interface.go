package messaging

import (
	"context"
)

// Queue represents an abstract message queue for any payload type. The broker
// uses queues for approval and session event fan-out; delivery is at-most-once
// and nothing survives a process restart, matching the extension transport.
type Queue[T any] interface {
	// Publish adds a new message with payload to the queue
	Publish(ctx context.Context, t *T) error

	// Consume retrieves a single message from the queue
	Consume(ctx context.Context) (Message[T], error)
}

// Message represents a message retrieved from a queue
type Message[T any] interface {
	// T returns the payload of this message
	T() *T

	// Ack acknowledges successful processing of this message
	Ack() error

	// Nack indicates failure in processing this message
	Nack(err error) error
}
