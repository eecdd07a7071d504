package hooast

import (
	"context"
	"fmt"

	"github.com/viant/afs"
	"gopkg.in/yaml.v3"
)

// Config is a serialisable representation of the service configuration. It
// can be populated from JSON or YAML. The zero-value is useful: all nested
// fields inherit their package defaults.

type Config struct {
	Session  SessionConfig  `json:"session" yaml:"session"`
	Approval ApprovalConfig `json:"approval" yaml:"approval"`
	Wallet   WalletConfig   `json:"wallet,omitempty" yaml:"wallet,omitempty"`
}

type SessionConfig struct {
	// InactivitySeconds is the idle window after which the session locks.
	InactivitySeconds int `json:"inactivitySeconds" yaml:"inactivitySeconds"`
}

type ApprovalConfig struct {
	// TimeoutSeconds bounds how long a caller waits for a user decision.
	TimeoutSeconds int `json:"timeoutSeconds" yaml:"timeoutSeconds"`
	// QueueBuffer sizes the notification queues.
	QueueBuffer int `json:"queueBuffer" yaml:"queueBuffer"`
}

type WalletConfig struct {
	// KeySourceURL points at a secret resource holding the wallet key
	// material; empty leaves the authority with whatever address the options
	// seeded.
	KeySourceURL string `json:"keySourceURL,omitempty" yaml:"keySourceURL,omitempty"`
	// Key names the cipher key protecting the source, e.g. "blowfish://default";
	// empty means the source is plain.
	Key string `json:"key,omitempty" yaml:"key,omitempty"`
}

// DefaultConfig returns a Config populated with the same default values the
// constructors would otherwise apply. Callers may modify the returned struct
// before passing it to New via WithConfig.
func DefaultConfig() *Config {
	return &Config{
		Session:  SessionConfig{InactivitySeconds: 1800},
		Approval: ApprovalConfig{TimeoutSeconds: 300, QueueBuffer: 100},
	}
}

// Validate returns aggregated error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	if c.Session.InactivitySeconds <= 0 {
		return fmt.Errorf("session.inactivitySeconds must be > 0")
	}
	if c.Approval.TimeoutSeconds <= 0 {
		return fmt.Errorf("approval.timeoutSeconds must be > 0")
	}
	return nil
}

// LoadConfig reads a YAML config from the supplied URL (file, mem or any
// scheme the afs service understands), applied on top of DefaultConfig.
func LoadConfig(ctx context.Context, URL string) (*Config, error) {
	fs := afs.New()
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", URL, err)
	}
	ret := DefaultConfig()
	if err = yaml.Unmarshal(data, ret); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", URL, err)
	}
	if err = ret.Validate(); err != nil {
		return nil, err
	}
	return ret, nil
}
