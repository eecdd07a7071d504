// Package session tracks the volatile unlock state of the signing authority.
// All privileged operations are gated on it; an inactivity timer locks the
// session after a fixed idle window. Nothing survives a process restart.
package session

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/Namp88/hooast-web-extension/internal/clock"
	"github.com/Namp88/hooast-web-extension/service/event"
	"github.com/Namp88/hooast-web-extension/service/wallet"
)

// DefaultInactivityWindow is measured from the last Unlock/Touch.
const DefaultInactivityWindow = 30 * time.Minute

// State is broadcast to listening UI surfaces on every lock/unlock.
type State struct {
	Unlocked bool `json:"unlocked"`
}

// Guard is the process-wide session singleton. At most one inactivity timer
// is live at any time; rearming cancels the prior one under the mutex.
type Guard struct {
	mu        sync.Mutex
	unlocked  bool
	timer     clock.Timer
	window    time.Duration
	authority wallet.Service
	events    *event.Publisher[State]
}

type Option func(*Guard)

// WithInactivityWindow overrides the idle window.
func WithInactivityWindow(window time.Duration) Option {
	return func(g *Guard) {
		if window > 0 {
			g.window = window
		}
	}
}

// Unlocker is implemented by authorities that can restore submission
// capability after a Lock. Optional; authorities whose unlock needs key
// material perform it out of band instead.
type Unlocker interface {
	Unlock()
}

// WithAuthority locks the wallet authority alongside the session, and unlocks
// it again when the authority implements Unlocker.
func WithAuthority(authority wallet.Service) Option {
	return func(g *Guard) { g.authority = authority }
}

// WithPublisher attaches a best-effort lock/unlock notifier; absence of a
// listener is never an error.
func WithPublisher(publisher *event.Publisher[State]) Option {
	return func(g *Guard) { g.events = publisher }
}

func New(options ...Option) *Guard {
	ret := &Guard{window: DefaultInactivityWindow}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// Unlock marks the session unlocked and (re)arms the inactivity timer.
// Idempotent.
func (g *Guard) Unlock() {
	g.mu.Lock()
	g.unlocked = true
	g.rearm()
	authority := g.authority
	g.mu.Unlock()
	if u, ok := authority.(Unlocker); ok {
		u.Unlock()
	}
	g.notify(event.TypeSessionUnlocked, State{Unlocked: true})
}

// Lock marks the session locked, cancels the timer and locks the authority.
// Locking an already locked session re-notifies listeners but is not an error.
func (g *Guard) Lock() {
	g.mu.Lock()
	g.unlocked = false
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
	authority := g.authority
	g.mu.Unlock()
	if authority != nil {
		if err := authority.Lock(context.Background()); err != nil {
			log.Printf("failed to lock wallet authority: %v", err)
		}
	}
	g.notify(event.TypeSessionLocked, State{Unlocked: false})
}

// Touch rearms the inactivity timer; a no-op while locked.
func (g *Guard) Touch() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.unlocked {
		return
	}
	g.rearm()
}

// IsUnlocked is a pure read.
func (g *Guard) IsUnlocked() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.unlocked
}

// rearm cancels the prior timer and schedules a fresh one; callers hold g.mu.
func (g *Guard) rearm() {
	if g.timer != nil {
		g.timer.Stop()
	}
	g.timer = clock.AfterFunc(g.window, g.Lock)
}

func (g *Guard) notify(eventType string, state State) {
	if g.events == nil {
		return
	}
	// Best-effort: an unavailable or full listener queue never fails the
	// lock/unlock itself.
	_ = g.events.Publish(context.Background(), event.NewEvent(&event.Context{EventType: eventType}, state))
}
