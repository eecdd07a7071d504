package schema

import "fmt"

// RPC error codes surfaced to callers. The 4xxx range follows the provider
// error conventions wallet pages already understand.
const (
	CodeUserRejected      = 4001
	CodeUnauthorized      = 4100
	CodeUnsupportedMethod = 4200
	CodeDisconnected      = 4900
	CodeNotFound          = -32001
	CodeInvalidParams     = -32602
	CodeInternal          = -32603
)

// Error is the RPC-level failure shape delivered back to a calling page.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (code: %d)", e.Message, e.Code)
}

// NewError creates a new error
func NewError(code int, message string) *Error {
	return &Error{Code: code, Message: message}
}

// NewUnauthorized creates a new unauthorized error
func NewUnauthorized(message string) *Error {
	return NewError(CodeUnauthorized, message)
}

// NewUnsupportedMethod creates a new unsupported method error
func NewUnsupportedMethod(method string) *Error {
	return NewError(CodeUnsupportedMethod, "unsupported method: "+method)
}

// NewUserRejected creates a new user rejected error
func NewUserRejected(message string) *Error {
	return NewError(CodeUserRejected, message)
}

// NewDisconnected wraps a wallet-authority failure
func NewDisconnected(message string) *Error {
	return NewError(CodeDisconnected, message)
}

// NewInvalidParams creates a new invalid params error
func NewInvalidParams(message string) *Error {
	return NewError(CodeInvalidParams, message)
}

// NewNotFound creates a not found error for an unknown request id
func NewNotFound(requestID string) *Error {
	return NewError(CodeNotFound, "request "+requestID+" not found")
}

// NewInternal creates a new internal error
func NewInternal(message string) *Error {
	return NewError(CodeInternal, message)
}
