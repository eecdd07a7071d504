package hooast

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/afs"
)

func TestConfigValidate(t *testing.T) {
	testCases := []struct {
		description string
		config      *Config
		expectError bool
	}{
		{
			description: "nil config is valid",
		},
		{
			description: "defaults are valid",
			config:      DefaultConfig(),
		},
		{
			description: "zero inactivity window is invalid",
			config:      &Config{Approval: ApprovalConfig{TimeoutSeconds: 300}},
			expectError: true,
		},
		{
			description: "zero approval timeout is invalid",
			config:      &Config{Session: SessionConfig{InactivitySeconds: 1800}},
			expectError: true,
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			err := testCase.config.Validate()
			if testCase.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	URL := "mem://localhost/hooast/config.yaml"
	err := fs.Upload(ctx, URL, 0644, strings.NewReader("session:\n  inactivitySeconds: 60\napproval:\n  timeoutSeconds: 30\nwallet:\n  keySourceURL: mem://localhost/hooast/wallet.sec\n"))
	assert.NoError(t, err)

	config, err := LoadConfig(ctx, URL)
	assert.NoError(t, err)
	assert.Equal(t, 60, config.Session.InactivitySeconds)
	assert.Equal(t, 30, config.Approval.TimeoutSeconds)
	assert.Equal(t, "mem://localhost/hooast/wallet.sec", config.Wallet.KeySourceURL)
	// Unset fields keep their defaults.
	assert.Equal(t, 100, config.Approval.QueueBuffer)

	_, err = LoadConfig(ctx, "mem://localhost/hooast/missing.yaml")
	assert.Error(t, err)
}

func TestLoadConfigInvalid(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	URL := "mem://localhost/hooast/invalid.yaml"
	err := fs.Upload(ctx, URL, 0644, strings.NewReader("session:\n  inactivitySeconds: -5\n"))
	assert.NoError(t, err)

	_, err = LoadConfig(ctx, URL)
	assert.Error(t, err)
}
