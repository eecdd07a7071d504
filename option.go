package hooast

import (
	"github.com/Namp88/hooast-web-extension/policy"
	"github.com/Namp88/hooast-web-extension/service/approval"
	"github.com/Namp88/hooast-web-extension/service/auth"
	"github.com/Namp88/hooast-web-extension/service/broker"
	"github.com/Namp88/hooast-web-extension/service/wallet"
)

// Option customises the background service wiring.
type Option func(s *Service)

// WithConfig sets the service configuration.
func WithConfig(config *Config) Option {
	return func(s *Service) { s.config = config }
}

// WithAuthService sets the authorization store.
func WithAuthService(svc auth.Service) Option {
	return func(s *Service) { s.authService = svc }
}

// WithWalletService sets the wallet authority.
func WithWalletService(svc wallet.Service) Option {
	return func(s *Service) { s.walletService = svc }
}

// WithApprovalService sets the approval service.
func WithApprovalService(svc approval.Service) Option {
	return func(s *Service) { s.approvalService = svc }
}

// WithSurface sets the prompt surface trigger.
func WithSurface(surface broker.Surface) Option {
	return func(s *Service) { s.surface = surface }
}

// WithWallet seeds the active wallet record.
func WithWallet(w *auth.Wallet) Option {
	return func(s *Service) { s.wallet = w }
}

// WithPolicy applies a consent policy to every dispatch.
func WithPolicy(p *policy.Policy) Option {
	return func(s *Service) { s.consent = p }
}
