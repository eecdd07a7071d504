package hooast

import (
	"context"
	"log"
	"time"

	"github.com/Namp88/hooast-web-extension/policy"
	"github.com/Namp88/hooast-web-extension/service/approval"
	apmemory "github.com/Namp88/hooast-web-extension/service/approval/memory"
	"github.com/Namp88/hooast-web-extension/service/auth"
	aumemory "github.com/Namp88/hooast-web-extension/service/auth/memory"
	"github.com/Namp88/hooast-web-extension/service/broker"
	"github.com/Namp88/hooast-web-extension/service/event"
	qmemory "github.com/Namp88/hooast-web-extension/service/messaging/memory"
	"github.com/Namp88/hooast-web-extension/service/session"
	"github.com/Namp88/hooast-web-extension/service/wallet"
	wmemory "github.com/Namp88/hooast-web-extension/service/wallet/memory"
)

// Service wires the background broker together. All registries and session
// state it owns are process-lifetime singletons constructed once at startup
// and passed by handle, so tests can swap any collaborator.
type Service struct {
	config          *Config
	guard           *session.Guard
	authService     auth.Service
	walletService   wallet.Service
	approvalService approval.Service
	broker          *broker.Service
	sessionEvents   *event.Publisher[session.State]
	surface         broker.Surface
	wallet          *auth.Wallet
	consent         *policy.Policy
}

func (s *Service) init(options []Option) {
	for _, option := range options {
		option(s)
	}
	s.ensureBaseSetup()
	s.broker = broker.New(s.guard, s.authService, s.walletService, s.approvalService,
		broker.WithSurface(s.surface),
		broker.WithApprovalTimeout(time.Duration(s.config.Approval.TimeoutSeconds)*time.Second))
}

func (s *Service) ensureBaseSetup() {
	if s.config == nil {
		s.config = DefaultConfig()
	}
	if s.authService == nil {
		var options []aumemory.Option
		if s.wallet != nil {
			options = append(options, aumemory.WithWallet(s.wallet))
		}
		s.authService = aumemory.New(options...)
	}
	if s.walletService == nil {
		var options []wmemory.Option
		if s.wallet != nil {
			options = append(options, wmemory.WithAddress(s.wallet.Address))
		}
		authority := wmemory.New(options...)
		if URL := s.config.Wallet.KeySourceURL; URL != "" {
			if err := authority.LoadKeyMaterial(context.Background(), URL, s.config.Wallet.Key); err != nil {
				log.Printf("failed to load wallet key material from %s: %v", URL, err)
			}
		}
		s.walletService = authority
	}
	if s.sessionEvents == nil {
		queueConfig := qmemory.DefaultConfig()
		queueConfig.QueueBuffer = s.config.Approval.QueueBuffer
		s.sessionEvents = event.NewPublisher[session.State](qmemory.NewQueue[event.Event[session.State]](queueConfig))
	}
	if s.guard == nil {
		s.guard = session.New(
			session.WithInactivityWindow(time.Duration(s.config.Session.InactivitySeconds)*time.Second),
			session.WithAuthority(s.walletService),
			session.WithPublisher(s.sessionEvents))
	}
	if s.approvalService == nil {
		s.approvalService = apmemory.New(s.authService, s.walletService)
	}
}

// Session returns the session guard.
func (s *Service) Session() *session.Guard { return s.guard }

// Approval returns the approval service.
func (s *Service) Approval() approval.Service { return s.approvalService }

// Broker returns the request broker.
func (s *Service) Broker() *broker.Service { return s.broker }

// SessionEvents exposes the best-effort lock/unlock notification stream.
func (s *Service) SessionEvents() *event.Publisher[session.State] { return s.sessionEvents }

// New creates the background service.
func New(options ...Option) *Service {
	ret := &Service{}
	ret.init(options)
	return ret
}
