// Package policy provides a simple, optional per-origin consent layer that can
// be attached to a dispatch via context. It is deliberately decoupled from the
// rest of the broker so that using it is entirely opt-in: dispatches that do
// not embed a Policy in their context keep the default "ask" behaviour.

package policy

import (
	"context"
	"strings"
)

// Consent modes recognised by the broker.
const (
	ModeAsk  = "ask"  // prompt the user for every consent-requiring call (default)
	ModeAuto = "auto" // approve automatically without a prompt
	ModeDeny = "deny" // block consent-requiring calls outright
)

// Policy represents the consent settings applied to inbound dispatches.
//
//   - Mode controls the high-level behaviour (ask / auto / deny).
//   - AllowList, BlockList filter origins regardless of Mode.
//
// A nil *Policy means "ask the user about everything" and is therefore the
// zero-cost default.
type Policy struct {
	Mode      string   // ask / auto / deny      (default = ask)
	AllowList []string // origins approved without a prompt (empty => none)
	BlockList []string // origins blocked outright
}

// Config represents the declarative, serialisable part of a Policy.
type Config struct {
	Mode      string   `json:"mode,omitempty" yaml:"mode,omitempty"`
	AllowList []string `json:"allow,omitempty" yaml:"allow,omitempty"`
	BlockList []string `json:"block,omitempty" yaml:"block,omitempty"`
}

// ToConfig converts a runtime Policy into a persistable Config.
func ToConfig(p *Policy) *Config {
	if p == nil {
		return nil
	}
	return &Config{
		Mode:      p.Mode,
		AllowList: append([]string(nil), p.AllowList...),
		BlockList: append([]string(nil), p.BlockList...),
	}
}

// FromConfig converts a stored Config back to a runtime Policy.
func FromConfig(c *Config) *Policy {
	if c == nil {
		return nil
	}
	return &Policy{
		Mode:      c.Mode,
		AllowList: append([]string(nil), c.AllowList...),
		BlockList: append([]string(nil), c.BlockList...),
	}
}

// IsBlocked reports whether the origin is on the block list or the policy
// denies all consent-requiring calls. Matching is exact, case-insensitive.
func (p *Policy) IsBlocked(origin string) bool {
	if p == nil {
		return false
	}
	if strings.EqualFold(p.Mode, ModeDeny) {
		return true
	}
	normalized := strings.ToLower(origin)
	for _, b := range p.BlockList {
		if normalized == strings.ToLower(b) {
			return true
		}
	}
	return false
}

// IsAutoApproved reports whether consent for the origin may be granted without
// a prompt: either Mode is auto or the origin is allow-listed. BlockList has
// priority.
func (p *Policy) IsAutoApproved(origin string) bool {
	if p == nil {
		return false
	}
	if p.IsBlocked(origin) {
		return false
	}
	if strings.EqualFold(p.Mode, ModeAuto) {
		return true
	}
	normalized := strings.ToLower(origin)
	for _, a := range p.AllowList {
		if normalized == strings.ToLower(a) {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Context helpers
// ---------------------------------------------------------------------------

type ctxKeyT struct{}

var ctxKey ctxKeyT

// WithPolicy embeds policy in ctx.
func WithPolicy(ctx context.Context, p *Policy) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxKey, p)
}

// FromContext extracts (*Policy, ok).
func FromContext(ctx context.Context) *Policy {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxKey).(*Policy); ok {
		return v
	}
	return nil
}
