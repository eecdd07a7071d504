package schema

import "encoding/json"

// Message types delivered over the extension transport.
const (
	TypeRPCRequest          = "rpc-request"
	TypeWalletUnlocked      = "wallet-unlocked"
	TypeTransactionApproved = "transaction-approved"
	TypeTransactionRejected = "transaction-rejected"
	TypeConnectionApproved  = "connection-approved"
	TypeConnectionRejected  = "connection-rejected"
)

// Envelope is the inbound message frame. Data is decoded per Type by the
// message handler; unknown types are answered with a failure response.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Response is the outbound message frame. Error carries either an *Error for
// RPC-level failures or a plain message string for transport-level ones.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   interface{} `json:"error,omitempty"`
}

// RPCRequest is the payload of a TypeRPCRequest envelope.
type RPCRequest struct {
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

// Approval is the payload of the four approval/rejection envelopes.
type Approval struct {
	RequestID string `json:"requestId"`
}

// NewResult builds a successful response.
func NewResult(data interface{}) *Response {
	return &Response{Success: true, Data: data}
}

// NewErrorResponse builds a failure response carrying an RPC error.
func NewErrorResponse(err *Error) *Response {
	return &Response{Success: false, Error: err}
}

// NewFailure builds a failure response carrying a plain message.
func NewFailure(message string) *Response {
	return &Response{Success: false, Error: message}
}
