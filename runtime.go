package hooast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Namp88/hooast-web-extension/policy"
	"github.com/Namp88/hooast-web-extension/schema"
	"github.com/Namp88/hooast-web-extension/tracing"
)

// HandleMessage processes one inbound envelope and returns the response to
// send back over the transport. RPC requests block until settled, so the
// transport is expected to deliver each message on its own goroutine;
// approval and unlock envelopes arrive concurrently and settle the suspended
// callers. Handler failures never crash the process - they come back as
// {success:false, error}.
func (s *Service) HandleMessage(ctx context.Context, origin string, envelope *schema.Envelope) (response *schema.Response) {
	defer func() {
		if r := recover(); r != nil {
			response = schema.NewFailure(fmt.Sprintf("%v", r))
		}
	}()
	if envelope == nil {
		return schema.NewFailure("missing message envelope")
	}
	if s.consent != nil {
		ctx = policy.WithPolicy(ctx, s.consent)
	}
	switch envelope.Type {
	case schema.TypeRPCRequest:
		return s.handleRPCRequest(ctx, origin, envelope.Data)
	case schema.TypeWalletUnlocked:
		s.guard.Unlock()
		return schema.NewResult(true)
	case schema.TypeConnectionApproved:
		return s.handleApproval(ctx, envelope.Data, s.approvalService.ResolveConnection, true)
	case schema.TypeConnectionRejected:
		return s.handleApproval(ctx, envelope.Data, s.approvalService.ResolveConnection, false)
	case schema.TypeTransactionApproved:
		return s.handleApproval(ctx, envelope.Data, s.approvalService.ResolveTransaction, true)
	case schema.TypeTransactionRejected:
		return s.handleApproval(ctx, envelope.Data, s.approvalService.ResolveTransaction, false)
	default:
		return schema.NewFailure("unsupported message type: " + envelope.Type)
	}
}

func (s *Service) handleRPCRequest(ctx context.Context, origin string, data json.RawMessage) *schema.Response {
	request := &schema.RPCRequest{}
	if err := json.Unmarshal(data, request); err != nil {
		return schema.NewFailure("malformed rpc request: " + err.Error())
	}
	result, rpcErr := s.broker.Dispatch(ctx, request, origin)
	if rpcErr != nil {
		return schema.NewErrorResponse(rpcErr)
	}
	return schema.NewResult(result)
}

type resolveFunc func(ctx context.Context, id string, approved bool) error

func (s *Service) handleApproval(ctx context.Context, data json.RawMessage, resolve resolveFunc, approved bool) *schema.Response {
	decision := &schema.Approval{}
	if err := json.Unmarshal(data, decision); err != nil {
		return schema.NewFailure("malformed approval payload: " + err.Error())
	}
	if decision.RequestID == "" {
		return schema.NewFailure("missing requestId")
	}
	ctx, span := tracing.StartSpan(ctx, "approval.resolve", "CONSUMER")
	span.WithAttributes(map[string]string{"approval.requestId": decision.RequestID})
	if err := resolve(ctx, decision.RequestID, approved); err != nil {
		tracing.EndSpan(span, err)
		// An unknown request id is a legitimate race with timeout, reported
		// through the envelope rather than crashing anything.
		var rpcErr *schema.Error
		if errors.As(err, &rpcErr) {
			return schema.NewErrorResponse(rpcErr)
		}
		return schema.NewFailure(err.Error())
	}
	tracing.EndSpan(span, nil)
	return schema.NewResult(true)
}
