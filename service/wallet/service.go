// Package wallet defines the privileged wallet-authority interface the broker
// calls into. The authority holds unlocked key material; the broker never
// touches keys itself and only forwards user-approved submissions.
package wallet

import "context"

// TxParams describes a transaction submission. To and Amount are mandatory;
// the broker validates both before a request ever reaches the authority.
type TxParams struct {
	From   string `json:"from,omitempty"`
	To     string `json:"to"`
	Amount string `json:"amount"`
	Data   string `json:"data,omitempty"`
}

// Service defines the wallet authority interface.
type Service interface {
	// Balance returns the balance of the given address as a decimal string.
	Balance(ctx context.Context, address string) (string, error)

	// Network returns the network identity string.
	Network(ctx context.Context) (string, error)

	// SendTransaction submits params and returns the transaction identifier.
	// Submission failures carry an authority-defined error.
	SendTransaction(ctx context.Context, params *TxParams) (string, error)

	// Lock discards unlocked key material.
	Lock(ctx context.Context) error
}
