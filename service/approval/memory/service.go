package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/viant/toolbox"

	"github.com/Namp88/hooast-web-extension/internal/clock"
	"github.com/Namp88/hooast-web-extension/internal/idgen"
	"github.com/Namp88/hooast-web-extension/schema"
	"github.com/Namp88/hooast-web-extension/service/approval"
	"github.com/Namp88/hooast-web-extension/service/auth"
	"github.com/Namp88/hooast-web-extension/service/dao"
	"github.com/Namp88/hooast-web-extension/service/dao/store"
	"github.com/Namp88/hooast-web-extension/service/messaging"
	qmem "github.com/Namp88/hooast-web-extension/service/messaging/memory"
	"github.com/Namp88/hooast-web-extension/service/wallet"
)

// settlement is delivered to exactly one waiter, exactly once.
type settlement struct {
	value interface{}
	err   *schema.Error
}

// claimed is the atomically removed request/waiter pair. Whoever claims an id
// owns its settlement; everyone else observes not-found.
type claimed struct {
	request *approval.Request
	waiter  chan settlement
}

type service struct {
	requests dao.Service[string, approval.Request]

	// mu serialises all registry and waiter mutations, standing in for the
	// single-threaded event loop of the extension process.
	mu      sync.Mutex
	waiters map[string]chan settlement

	events        messaging.Queue[approval.Event]
	authService   auth.Service
	walletService wallet.Service
}

func reqKey(r *approval.Request) string { return r.ID }

type Option func(*service)

// WithEventQueue overrides the fan-out queue.
func WithEventQueue(q messaging.Queue[approval.Event]) Option {
	return func(s *service) { s.events = q }
}

// New creates an in-memory approval service. authService records origins
// approved through connection decisions; walletService receives approved
// transaction submissions.
func New(authService auth.Service, walletService wallet.Service, options ...Option) approval.Service {
	ret := &service{
		requests:      store.NewMemoryStore[string, approval.Request](reqKey),
		waiters:       make(map[string]chan settlement),
		events:        qmem.NewQueue[approval.Event](qmem.DefaultConfig()),
		authService:   authService,
		walletService: walletService,
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}

func (s *service) Register(ctx context.Context, request *approval.Request) error {
	if request == nil {
		return errors.New("invalid request")
	}
	if request.ID == "" {
		request.ID = idgen.NewPrefixed(request.Method)
	}
	if request.CreatedAt.IsZero() {
		request.CreatedAt = clock.Now()
	}
	s.mu.Lock()
	_ = s.requests.Save(ctx, request)
	// Waiter slot is created together with the entry so that a decision
	// arriving before the caller suspends is not lost.
	s.waiters[request.ID] = make(chan settlement, 1)
	s.mu.Unlock()

	_ = s.events.Publish(ctx, &approval.Event{Topic: approval.TopicRequestCreated, Data: request})
	return nil
}

func (s *service) Await(ctx context.Context, id string, timeout time.Duration) (interface{}, *schema.Error) {
	s.mu.Lock()
	ch, ok := s.waiters[id]
	s.mu.Unlock()
	if !ok {
		return nil, schema.NewNotFound(id)
	}
	// The waiter slot stays registered until this call returns, so a decision
	// that claimed the request before the caller suspended is still received.
	defer func() {
		s.mu.Lock()
		delete(s.waiters, id)
		s.mu.Unlock()
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case st := <-ch:
		return st.value, st.err
	case <-timer.C:
		if cl := s.claim(ctx, id); cl != nil {
			_ = s.events.Publish(ctx, &approval.Event{Topic: approval.TopicRequestSettled, Data: s.settled(cl, false, true)})
			return nil, schema.NewUserRejected("approval request timed out")
		}
		// A decision claimed the request first; its settlement is already in
		// flight on the buffered channel.
		st := <-ch
		return st.value, st.err
	case <-ctx.Done():
		if cl := s.claim(ctx, id); cl != nil {
			return nil, schema.NewInternal("approval wait canceled: " + ctx.Err().Error())
		}
		st := <-ch
		return st.value, st.err
	}
}

func (s *service) ResolveConnection(ctx context.Context, id string, approved bool) error {
	cl := s.claim(ctx, id)
	if cl == nil {
		return schema.NewNotFound(id)
	}
	defer s.publishSettled(ctx, cl, approved)

	if !approved {
		s.settle(cl, settlement{err: schema.NewUserRejected("user rejected connection request")})
		return nil
	}
	if err := s.authService.AddConnectedSite(ctx, cl.request.Origin); err != nil {
		s.settle(cl, settlement{err: schema.NewInternal(err.Error())})
		return nil
	}
	accounts := []string{}
	if w, _ := s.authService.CurrentWallet(ctx); w != nil && w.Address != "" {
		accounts = append(accounts, w.Address)
	}
	s.settle(cl, settlement{value: accounts})
	return nil
}

func (s *service) ResolveTransaction(ctx context.Context, id string, approved bool) error {
	cl := s.claim(ctx, id)
	if cl == nil {
		return schema.NewNotFound(id)
	}
	defer s.publishSettled(ctx, cl, approved)

	if !approved {
		s.settle(cl, settlement{err: schema.NewUserRejected("user rejected transaction request")})
		return nil
	}
	params := &wallet.TxParams{}
	if err := toolbox.DefaultConverter.AssignConverted(params, cl.request.Params); err != nil {
		s.settle(cl, settlement{err: schema.NewInternal(err.Error())})
		return nil
	}
	txID, err := s.walletService.SendTransaction(ctx, params)
	if err != nil {
		// The consent was single-use: report the authority failure, never
		// retry the submission.
		s.settle(cl, settlement{err: schema.NewDisconnected(err.Error())})
		return nil
	}
	s.settle(cl, settlement{value: txID})
	return nil
}

func (s *service) ListPending(ctx context.Context) ([]*approval.Request, error) {
	return s.requests.List(ctx)
}

func (s *service) Queue() messaging.Queue[approval.Event] { return s.events }

// claim atomically removes the request and captures its waiter. It returns nil
// when the id is unknown - the request was already settled or expired. First
// claimant wins; all later decisions and timeouts become no-ops. The waiter
// slot itself is removed by Await, never here, so a settlement buffered before
// the caller suspends is still found on lookup.
func (s *service) claim(ctx context.Context, id string) *claimed {
	s.mu.Lock()
	defer s.mu.Unlock()
	request, _ := s.requests.Load(ctx, id)
	if request == nil {
		return nil
	}
	_ = s.requests.Delete(ctx, id)
	return &claimed{request: request, waiter: s.waiters[id]}
}

// settle delivers the outcome to the suspended caller, when one exists. The
// channel is buffered and claim guarantees a single sender, so delivery never
// blocks and never doubles.
func (s *service) settle(cl *claimed, st settlement) {
	if cl.waiter != nil {
		cl.waiter <- st
	}
}

func (s *service) settled(cl *claimed, approved, expired bool) *approval.Settlement {
	return &approval.Settlement{
		ID:        cl.request.ID,
		Approved:  approved,
		Expired:   expired,
		DecidedAt: clock.Now(),
	}
}

func (s *service) publishSettled(ctx context.Context, cl *claimed, approved bool) {
	_ = s.events.Publish(ctx, &approval.Event{Topic: approval.TopicRequestSettled, Data: s.settled(cl, approved, false)})
}

var _ approval.Service = (*service)(nil)
