package approval

import (
	"context"
	"time"

	"github.com/Namp88/hooast-web-extension/schema"
	"github.com/Namp88/hooast-web-extension/service/messaging"
)

// Service defines the approval service interface.
type Service interface {
	// Register records a pending request and creates its waiter slot. The
	// request id is generated when absent.
	Register(ctx context.Context, request *Request) error

	// Await suspends the caller until the request is settled or timeout
	// elapses. A timeout settles as a user-rejected "timed out" failure and
	// removes the registry entry; settlement and timeout are mutually
	// exclusive.
	Await(ctx context.Context, id string, timeout time.Duration) (interface{}, *schema.Error)

	// ResolveConnection settles a pending connection request. An unknown id
	// yields a not-found error: the request already timed out or was already
	// resolved, which is a legitimate race.
	ResolveConnection(ctx context.Context, id string, approved bool) error

	// ResolveTransaction settles a pending transaction request, submitting it
	// to the wallet authority on approval. The consent is single-use: an
	// authority failure is reported to the waiter, never retried.
	ResolveTransaction(ctx context.Context, id string, approved bool) error

	// ListPending returns all not-yet-decided requests.
	ListPending(ctx context.Context) ([]*Request, error)

	// Queue exposes the event fan-out consumed by prompt surfaces.
	Queue() messaging.Queue[Event]
}
