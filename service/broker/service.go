// Package broker is the request-arbitration core. It accepts inbound RPC
// calls from page origins, answers read-only queries synchronously, and for
// consent-requiring calls registers a pending request, triggers the prompt
// surface and suspends the caller until a decision or deadline.
package broker

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/Namp88/hooast-web-extension/policy"
	"github.com/Namp88/hooast-web-extension/schema"
	"github.com/Namp88/hooast-web-extension/service/approval"
	"github.com/Namp88/hooast-web-extension/service/auth"
	"github.com/Namp88/hooast-web-extension/service/session"
	"github.com/Namp88/hooast-web-extension/service/wallet"
	"github.com/Namp88/hooast-web-extension/tracing"
)

// DefaultApprovalTimeout bounds how long a suspended caller waits for a user
// decision.
const DefaultApprovalTimeout = 5 * time.Minute

// Surface makes a pending request visible to the user. Opening is allowed to
// fail (surface unavailable); the pending request then simply times out.
type Surface interface {
	Open(ctx context.Context, request *approval.Request) error
}

// SurfaceFunc adapts a function to Surface.
type SurfaceFunc func(ctx context.Context, request *approval.Request) error

func (f SurfaceFunc) Open(ctx context.Context, request *approval.Request) error {
	return f(ctx, request)
}

// Service dispatches inbound calls. All registries it touches are
// process-wide singletons owned by the root service; nothing survives a
// restart.
type Service struct {
	guard           *session.Guard
	authService     auth.Service
	walletService   wallet.Service
	approvalService approval.Service
	surface         Surface
	approvalTimeout time.Duration
}

type Option func(*Service)

// WithSurface attaches the prompt surface trigger.
func WithSurface(surface Surface) Option {
	return func(s *Service) { s.surface = surface }
}

// WithApprovalTimeout overrides the pending-approval deadline.
func WithApprovalTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		if timeout > 0 {
			s.approvalTimeout = timeout
		}
	}
}

// New creates a request broker.
func New(guard *session.Guard, authService auth.Service, walletService wallet.Service, approvalService approval.Service, options ...Option) *Service {
	ret := &Service{
		guard:           guard,
		authService:     authService,
		walletService:   walletService,
		approvalService: approvalService,
		approvalTimeout: DefaultApprovalTimeout,
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// Dispatch routes one inbound call for the given page origin. Policy failures
// (locked session, unknown method, missing authorization, invalid params) are
// detected synchronously and never create a pending request.
func (s *Service) Dispatch(ctx context.Context, request *schema.RPCRequest, origin string) (interface{}, *schema.Error) {
	ctx, span := tracing.StartSpan(ctx, "broker.dispatch", "SERVER")
	span.WithAttributes(map[string]string{"rpc.method": request.Method, "rpc.origin": origin})
	result, rpcErr := s.dispatch(ctx, request, origin)
	if rpcErr != nil {
		tracing.EndSpan(span, rpcErr)
	} else {
		tracing.EndSpan(span, nil)
	}
	return result, rpcErr
}

func (s *Service) dispatch(ctx context.Context, request *schema.RPCRequest, origin string) (interface{}, *schema.Error) {
	// Requests without a usable origin fail closed.
	if origin == "" {
		return nil, schema.NewUnauthorized("request origin is missing")
	}
	if request.Method != schema.MethodGetNetwork && !s.guard.IsUnlocked() {
		return nil, schema.NewUnauthorized("wallet is locked")
	}
	s.guard.Touch()

	switch request.Method {
	case schema.MethodGetNetwork:
		return s.getNetwork(ctx)
	case schema.MethodGetBalance:
		return s.getBalance(ctx)
	case schema.MethodGetAccounts:
		return s.getAccounts(ctx, origin)
	case schema.MethodRequestAccounts:
		return s.requestAccounts(ctx, request, origin)
	case schema.MethodSendTransaction:
		return s.sendTransaction(ctx, request, origin)
	default:
		return nil, schema.NewUnsupportedMethod(request.Method)
	}
}

func (s *Service) getNetwork(ctx context.Context) (interface{}, *schema.Error) {
	network, err := s.walletService.Network(ctx)
	if err != nil {
		return nil, schema.NewDisconnected(err.Error())
	}
	return network, nil
}

func (s *Service) getBalance(ctx context.Context) (interface{}, *schema.Error) {
	address := ""
	if w, _ := s.authService.CurrentWallet(ctx); w != nil {
		address = w.Address
	}
	balance, err := s.walletService.Balance(ctx, address)
	if err != nil {
		return nil, schema.NewDisconnected(err.Error())
	}
	return balance, nil
}

func (s *Service) getAccounts(ctx context.Context, origin string) (interface{}, *schema.Error) {
	connected, err := s.authService.IsOriginConnected(ctx, origin)
	if err != nil {
		return nil, schema.NewInternal(err.Error())
	}
	if !connected {
		return []string{}, nil
	}
	return s.currentAccounts(ctx), nil
}

func (s *Service) requestAccounts(ctx context.Context, request *schema.RPCRequest, origin string) (interface{}, *schema.Error) {
	connected, err := s.authService.IsOriginConnected(ctx, origin)
	if err != nil {
		return nil, schema.NewInternal(err.Error())
	}
	if connected {
		// Already authorized: answer synchronously, no pending request.
		return s.currentAccounts(ctx), nil
	}
	p := policy.FromContext(ctx)
	if p.IsBlocked(origin) {
		return nil, schema.NewUnauthorized("origin " + origin + " is blocked by policy")
	}
	if p.IsAutoApproved(origin) {
		if err := s.authService.AddConnectedSite(ctx, origin); err != nil {
			return nil, schema.NewInternal(err.Error())
		}
		return s.currentAccounts(ctx), nil
	}
	return s.awaitConsent(ctx, request, origin)
}

func (s *Service) sendTransaction(ctx context.Context, request *schema.RPCRequest, origin string) (interface{}, *schema.Error) {
	connected, err := s.authService.IsOriginConnected(ctx, origin)
	if err != nil {
		return nil, schema.NewInternal(err.Error())
	}
	if !connected {
		return nil, schema.NewUnauthorized("origin " + origin + " is not connected")
	}
	params, rpcErr := decodeParams(request.Params)
	if rpcErr != nil {
		return nil, rpcErr
	}
	if to, _ := params["to"].(string); to == "" {
		return nil, schema.NewInvalidParams("transaction requires a destination")
	}
	if amount, ok := params["amount"]; !ok || amount == nil {
		return nil, schema.NewInvalidParams("transaction requires an amount")
	}
	p := policy.FromContext(ctx)
	if p.IsBlocked(origin) {
		return nil, schema.NewUnauthorized("origin " + origin + " is blocked by policy")
	}
	if p.IsAutoApproved(origin) {
		txParams := &wallet.TxParams{}
		if err := json.Unmarshal(request.Params, txParams); err != nil {
			return nil, schema.NewInvalidParams(err.Error())
		}
		txID, err := s.walletService.SendTransaction(ctx, txParams)
		if err != nil {
			return nil, schema.NewDisconnected(err.Error())
		}
		return txID, nil
	}
	return s.awaitConsent(ctx, request, origin)
}

// awaitConsent registers a pending request, triggers the prompt surface and
// suspends the caller until a decision or the approval deadline.
func (s *Service) awaitConsent(ctx context.Context, request *schema.RPCRequest, origin string) (interface{}, *schema.Error) {
	params, rpcErr := decodeParams(request.Params)
	if rpcErr != nil {
		return nil, rpcErr
	}
	pending := &approval.Request{
		Origin: origin,
		Method: request.Method,
		Params: params,
	}
	if err := s.approvalService.Register(ctx, pending); err != nil {
		return nil, schema.NewInternal(err.Error())
	}
	s.openSurface(ctx, pending)
	return s.approvalService.Await(ctx, pending.ID, s.approvalTimeout)
}

// openSurface is best-effort: when the surface cannot be shown the pending
// request stays registered and eventually times out.
func (s *Service) openSurface(ctx context.Context, pending *approval.Request) {
	if s.surface == nil {
		return
	}
	if err := s.surface.Open(ctx, pending); err != nil {
		log.Printf("failed to open prompt surface for %v: %v", pending.ID, err)
	}
}

func (s *Service) currentAccounts(ctx context.Context) []string {
	accounts := []string{}
	if w, _ := s.authService.CurrentWallet(ctx); w != nil && w.Address != "" {
		accounts = append(accounts, w.Address)
	}
	return accounts
}

func decodeParams(raw json.RawMessage) (map[string]interface{}, *schema.Error) {
	if len(raw) == 0 {
		return nil, nil
	}
	params := map[string]interface{}{}
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, schema.NewInvalidParams(err.Error())
	}
	return params, nil
}
