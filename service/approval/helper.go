package approval

import (
	"context"
	"time"

	"github.com/Namp88/hooast-web-extension/schema"
)

// DecisionFunc decides what to do with a pending request.
// Return true to approve, false to reject.
type DecisionFunc func(r *Request) bool

// AutoDecider starts a goroutine that polls ListPending and applies fn to
// every request, routing by method to the matching resolve operation. It
// returns stop(); call it (or cancel ctx) to exit. Intended for tests and
// headless demos standing in for a prompt surface.
func AutoDecider(ctx context.Context,
	svc Service,
	fn DecisionFunc,
	interval time.Duration) (stop func()) {

	if interval <= 0 {
		interval = 20 * time.Millisecond
	}
	done := make(chan struct{})

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case <-ticker.C:
				reqs, _ := svc.ListPending(ctx)
				for _, r := range reqs {
					approved := fn(r)
					if r.Method == schema.MethodSendTransaction {
						_ = svc.ResolveTransaction(ctx, r.ID, approved)
					} else {
						_ = svc.ResolveConnection(ctx, r.ID, approved)
					}
				}
			}
		}
	}()
	return func() { close(done) }
}

// AutoApprove automatically approves all pending requests
func AutoApprove(ctx context.Context, svc Service, interval time.Duration) func() {
	return AutoDecider(ctx, svc, func(*Request) bool { return true }, interval)
}

// AutoReject automatically rejects all pending requests
func AutoReject(ctx context.Context, svc Service, interval time.Duration) func() {
	return AutoDecider(ctx, svc, func(*Request) bool { return false }, interval)
}
