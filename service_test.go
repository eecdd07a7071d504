package hooast

import (
	"context"
	"encoding/json"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/viant/scy"

	"github.com/Namp88/hooast-web-extension/policy"
	"github.com/Namp88/hooast-web-extension/schema"
	"github.com/Namp88/hooast-web-extension/service/approval"
	"github.com/Namp88/hooast-web-extension/service/auth"
	"github.com/Namp88/hooast-web-extension/service/event"
	wmemory "github.com/Namp88/hooast-web-extension/service/wallet/memory"
)

const testOrigin = "https://dapp.example"

var testWallet = auth.Wallet{Address: "0xabc"}

func rpcEnvelope(t *testing.T, method, params string) *schema.Envelope {
	request := &schema.RPCRequest{Method: method}
	if params != "" {
		request.Params = json.RawMessage(params)
	}
	data, err := json.Marshal(request)
	assert.NoError(t, err)
	return &schema.Envelope{Type: schema.TypeRPCRequest, Data: data}
}

func approvalEnvelope(t *testing.T, envelopeType, requestID string) *schema.Envelope {
	data, err := json.Marshal(&schema.Approval{RequestID: requestID})
	assert.NoError(t, err)
	return &schema.Envelope{Type: envelopeType, Data: data}
}

func awaitPending(t *testing.T, service *Service) *approval.Request {
	var pending *approval.Request
	assert.Eventually(t, func() bool {
		requests, _ := service.Approval().ListPending(context.Background())
		if len(requests) == 1 {
			pending = requests[0]
			return true
		}
		return false
	}, time.Second, 5*time.Millisecond)
	return pending
}

// TestConnectionFlow walks the full lifecycle: refusal while locked, unlock
// envelope, suspended connection request, user approval, settled response.
func TestConnectionFlow(t *testing.T) {
	ctx := context.Background()
	service := New(WithWallet(&testWallet))

	// Locked session refuses everything but the network query.
	response := service.HandleMessage(ctx, testOrigin, rpcEnvelope(t, schema.MethodRequestAccounts, ""))
	assert.False(t, response.Success)
	rpcErr, ok := response.Error.(*schema.Error)
	if assert.True(t, ok) {
		assert.Equal(t, schema.CodeUnauthorized, rpcErr.Code)
	}
	pending, _ := service.Approval().ListPending(ctx)
	assert.Empty(t, pending)

	response = service.HandleMessage(ctx, testOrigin, rpcEnvelope(t, schema.MethodGetNetwork, ""))
	assert.True(t, response.Success)
	assert.Equal(t, "mainnet", response.Data)

	// Unlock envelope flips the guard.
	response = service.HandleMessage(ctx, "", &schema.Envelope{Type: schema.TypeWalletUnlocked})
	assert.True(t, response.Success)
	assert.True(t, service.Session().IsUnlocked())

	// The connection request suspends until the approval envelope lands.
	results := make(chan *schema.Response, 1)
	go func() {
		results <- service.HandleMessage(ctx, testOrigin, rpcEnvelope(t, schema.MethodRequestAccounts, ""))
	}()
	request := awaitPending(t, service)
	assert.Equal(t, testOrigin, request.Origin)
	assert.Equal(t, schema.MethodRequestAccounts, request.Method)

	response = service.HandleMessage(ctx, "", approvalEnvelope(t, schema.TypeConnectionApproved, request.ID))
	assert.True(t, response.Success)

	select {
	case response = <-results:
	case <-time.After(time.Second):
		t.Fatal("suspended caller never settled")
	}
	assert.True(t, response.Success)
	assert.Equal(t, []string{testWallet.Address}, response.Data)

	// A repeat decision for the settled id is the legitimate race outcome.
	response = service.HandleMessage(ctx, "", approvalEnvelope(t, schema.TypeConnectionApproved, request.ID))
	assert.False(t, response.Success)
	rpcErr, ok = response.Error.(*schema.Error)
	if assert.True(t, ok) {
		assert.Equal(t, schema.CodeNotFound, rpcErr.Code)
	}

	// The origin is now authorized; repeats answer synchronously.
	response = service.HandleMessage(ctx, testOrigin, rpcEnvelope(t, schema.MethodRequestAccounts, ""))
	assert.True(t, response.Success)
	assert.Equal(t, []string{testWallet.Address}, response.Data)
}

func TestTransactionFlow(t *testing.T) {
	ctx := context.Background()
	service := New(WithWallet(&testWallet))
	service.Session().Unlock()
	seedConnection(t, service)

	t.Run("rejected", func(t *testing.T) {
		results := make(chan *schema.Response, 1)
		go func() {
			results <- service.HandleMessage(ctx, testOrigin, rpcEnvelope(t, schema.MethodSendTransaction, `{"to":"0xdef","amount":"100"}`))
		}()
		request := awaitPending(t, service)

		response := service.HandleMessage(ctx, "", approvalEnvelope(t, schema.TypeTransactionRejected, request.ID))
		assert.True(t, response.Success)

		response = <-results
		assert.False(t, response.Success)
		rpcErr, ok := response.Error.(*schema.Error)
		if assert.True(t, ok) {
			assert.Equal(t, schema.CodeUserRejected, rpcErr.Code)
		}
	})

	t.Run("approved without funds surfaces the authority failure", func(t *testing.T) {
		results := make(chan *schema.Response, 1)
		go func() {
			results <- service.HandleMessage(ctx, testOrigin, rpcEnvelope(t, schema.MethodSendTransaction, `{"to":"0xdef","amount":"100"}`))
		}()
		request := awaitPending(t, service)

		response := service.HandleMessage(ctx, "", approvalEnvelope(t, schema.TypeTransactionApproved, request.ID))
		assert.True(t, response.Success)

		response = <-results
		assert.False(t, response.Success)
		rpcErr, ok := response.Error.(*schema.Error)
		if assert.True(t, ok) {
			assert.Equal(t, schema.CodeDisconnected, rpcErr.Code)
		}
	})
}

// TestRelockThenUnlockTransacts covers the idle-lock round trip: an inactivity
// lock stops the authority too, and the wallet-unlocked envelope must restore
// both so an approved submission still succeeds.
func TestRelockThenUnlockTransacts(t *testing.T) {
	ctx := context.Background()
	authority := wmemory.New(
		wmemory.WithAddress(testWallet.Address),
		wmemory.WithBalance(testWallet.Address, big.NewInt(1000)),
	)
	service := New(WithWallet(&testWallet), WithWalletService(authority))
	service.HandleMessage(ctx, "", &schema.Envelope{Type: schema.TypeWalletUnlocked})
	seedConnection(t, service)

	service.Session().Lock()
	response := service.HandleMessage(ctx, "", &schema.Envelope{Type: schema.TypeWalletUnlocked})
	assert.True(t, response.Success)

	results := make(chan *schema.Response, 1)
	go func() {
		results <- service.HandleMessage(ctx, testOrigin, rpcEnvelope(t, schema.MethodSendTransaction, `{"to":"0xdef","amount":"100"}`))
	}()
	request := awaitPending(t, service)

	response = service.HandleMessage(ctx, "", approvalEnvelope(t, schema.TypeTransactionApproved, request.ID))
	assert.True(t, response.Success)

	response = <-results
	assert.True(t, response.Success)
	txID, ok := response.Data.(string)
	assert.True(t, ok)
	assert.True(t, strings.HasPrefix(txID, "0x"))
}

func TestApprovalTimeout(t *testing.T) {
	ctx := context.Background()
	config := DefaultConfig()
	config.Approval.TimeoutSeconds = 1
	service := New(WithWallet(&testWallet), WithConfig(config))
	service.Session().Unlock()

	response := service.HandleMessage(ctx, testOrigin, rpcEnvelope(t, schema.MethodRequestAccounts, ""))
	assert.False(t, response.Success)
	rpcErr, ok := response.Error.(*schema.Error)
	if assert.True(t, ok) {
		assert.Equal(t, schema.CodeUserRejected, rpcErr.Code)
		assert.Contains(t, rpcErr.Message, "timed out")
	}
	pending, _ := service.Approval().ListPending(ctx)
	assert.Empty(t, pending)
}

// TestWalletKeyMaterialFromConfig verifies a configured key source is loaded
// into the default authority: the loaded address is what submissions run
// under.
func TestWalletKeyMaterialFromConfig(t *testing.T) {
	ctx := context.Background()
	URL := "mem://localhost/hooast/root-wallet.sec"
	secret := scy.NewSecret("0xseeded", scy.NewResource(nil, URL, ""))
	assert.NoError(t, scy.New().Store(ctx, secret))

	config := DefaultConfig()
	config.Wallet.KeySourceURL = URL
	service := New(WithConfig(config), WithPolicy(&policy.Policy{Mode: policy.ModeAuto}))
	service.Session().Unlock()

	response := service.HandleMessage(ctx, testOrigin, rpcEnvelope(t, schema.MethodRequestAccounts, ""))
	assert.True(t, response.Success)

	// The submission reaches the authority under the loaded address; it holds
	// no funds, so the refusal names it.
	response = service.HandleMessage(ctx, testOrigin, rpcEnvelope(t, schema.MethodSendTransaction, `{"to":"0xdef","amount":"1"}`))
	assert.False(t, response.Success)
	rpcErr, ok := response.Error.(*schema.Error)
	if assert.True(t, ok) {
		assert.Equal(t, schema.CodeDisconnected, rpcErr.Code)
		assert.Contains(t, rpcErr.Message, "0xseeded")
	}
}

func TestHandleMessageFailures(t *testing.T) {
	ctx := context.Background()
	service := New(WithWallet(&testWallet))
	service.Session().Unlock()

	testCases := []struct {
		description string
		envelope    *schema.Envelope
		expectError string
	}{
		{
			description: "nil envelope",
			expectError: "missing message envelope",
		},
		{
			description: "unknown envelope type",
			envelope:    &schema.Envelope{Type: "telemetry"},
			expectError: "unsupported message type: telemetry",
		},
		{
			description: "malformed rpc payload",
			envelope:    &schema.Envelope{Type: schema.TypeRPCRequest, Data: json.RawMessage(`{`)},
			expectError: "malformed rpc request",
		},
		{
			description: "approval without request id",
			envelope:    &schema.Envelope{Type: schema.TypeConnectionApproved, Data: json.RawMessage(`{}`)},
			expectError: "missing requestId",
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			response := service.HandleMessage(ctx, testOrigin, testCase.envelope)
			assert.False(t, response.Success)
			message, ok := response.Error.(string)
			if assert.True(t, ok) {
				assert.Contains(t, message, testCase.expectError)
			}
		})
	}
}

func TestSessionEventStream(t *testing.T) {
	ctx := context.Background()
	service := New(WithWallet(&testWallet))

	service.HandleMessage(ctx, "", &schema.Envelope{Type: schema.TypeWalletUnlocked})
	service.Session().Lock()

	notification, err := service.SessionEvents().Consume(ctx)
	assert.NoError(t, err)
	if assert.NotNil(t, notification) {
		assert.Equal(t, event.TypeSessionUnlocked, notification.Context.EventType)
		assert.True(t, notification.Data.Unlocked)
	}
	notification, err = service.SessionEvents().Consume(ctx)
	assert.NoError(t, err)
	if assert.NotNil(t, notification) {
		assert.Equal(t, event.TypeSessionLocked, notification.Context.EventType)
		assert.False(t, notification.Data.Unlocked)
	}
}

// seedConnection authorizes testOrigin through a real approval round trip.
func seedConnection(t *testing.T, service *Service) {
	ctx := context.Background()
	results := make(chan *schema.Response, 1)
	go func() {
		results <- service.HandleMessage(ctx, testOrigin, rpcEnvelope(t, schema.MethodRequestAccounts, ""))
	}()
	request := awaitPending(t, service)
	service.HandleMessage(ctx, "", approvalEnvelope(t, schema.TypeConnectionApproved, request.ID))
	response := <-results
	assert.True(t, response.Success)
}
