// Package auth answers origin-authorization questions for the request broker.
// An origin (scheme+host+port of the calling page) is the authorization unit:
// once connected it may read accounts and submit transactions for approval.
package auth

import "context"

// Wallet identifies the active account exposed to connected origins.
type Wallet struct {
	Address string `json:"address"`
}

// Service defines the authorization store interface.
type Service interface {
	// IsOriginConnected reports whether the origin has been approved before.
	IsOriginConnected(ctx context.Context, origin string) (bool, error)

	// AddConnectedSite records the origin as authorized.
	AddConnectedSite(ctx context.Context, origin string) error

	// CurrentWallet returns the active wallet, or nil when none exists.
	CurrentWallet(ctx context.Context) (*Wallet, error)
}
