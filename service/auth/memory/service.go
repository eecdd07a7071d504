package memory

import (
	"context"

	"github.com/Namp88/hooast-web-extension/service/auth"
	"github.com/Namp88/hooast-web-extension/service/dao"
	"github.com/Namp88/hooast-web-extension/service/dao/store"
)

// Site records one authorized origin.
type Site struct {
	Origin string `json:"origin"`
}

func siteKey(s *Site) string { return s.Origin }

type service struct {
	sites dao.Service[string, Site]

	// wallet is set at construction time and read-only afterwards.
	wallet *auth.Wallet
}

type Option func(*service)

// WithWallet seeds the active wallet.
func WithWallet(w *auth.Wallet) Option {
	return func(s *service) { s.wallet = w }
}

// New creates an in-memory authorization store. All state is volatile and
// resets on process restart.
func New(options ...Option) auth.Service {
	ret := &service{
		sites: store.NewMemoryStore[string, Site](siteKey),
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}

func (s *service) IsOriginConnected(ctx context.Context, origin string) (bool, error) {
	if origin == "" {
		return false, nil
	}
	site, err := s.sites.Load(ctx, origin)
	if err != nil {
		return false, err
	}
	return site != nil, nil
}

func (s *service) AddConnectedSite(ctx context.Context, origin string) error {
	return s.sites.Save(ctx, &Site{Origin: origin})
}

func (s *service) CurrentWallet(_ context.Context) (*auth.Wallet, error) {
	return s.wallet, nil
}

var _ auth.Service = (*service)(nil)
