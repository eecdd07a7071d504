package schema

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorConstructors(t *testing.T) {
	testCases := []struct {
		description   string
		err           *Error
		expectCode    int
		expectMessage string
	}{
		{
			description:   "user rejected",
			err:           NewUserRejected("user rejected connection request"),
			expectCode:    CodeUserRejected,
			expectMessage: "user rejected connection request",
		},
		{
			description:   "unauthorized",
			err:           NewUnauthorized("wallet is locked"),
			expectCode:    CodeUnauthorized,
			expectMessage: "wallet is locked",
		},
		{
			description:   "unsupported method includes the method name",
			err:           NewUnsupportedMethod("sign_typed_data"),
			expectCode:    CodeUnsupportedMethod,
			expectMessage: "unsupported method: sign_typed_data",
		},
		{
			description:   "not found includes the request id",
			err:           NewNotFound("request_accounts-1"),
			expectCode:    CodeNotFound,
			expectMessage: "request request_accounts-1 not found",
		},
		{
			description:   "disconnected",
			err:           NewDisconnected("insufficient funds"),
			expectCode:    CodeDisconnected,
			expectMessage: "insufficient funds",
		},
		{
			description:   "invalid params",
			err:           NewInvalidParams("transaction requires an amount"),
			expectCode:    CodeInvalidParams,
			expectMessage: "transaction requires an amount",
		},
		{
			description:   "internal",
			err:           NewInternal("boom"),
			expectCode:    CodeInternal,
			expectMessage: "boom",
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			assert.Equal(t, testCase.expectCode, testCase.err.Code)
			assert.Equal(t, testCase.expectMessage, testCase.err.Message)
			assert.Contains(t, testCase.err.Error(), testCase.expectMessage)
		})
	}
}

// TestErrorAsTarget verifies *Error survives errors.As through a plain error
// return, which the message handler relies on to classify failures.
func TestErrorAsTarget(t *testing.T) {
	var err error = NewNotFound("abc")
	var rpcErr *Error
	assert.True(t, errors.As(err, &rpcErr))
	assert.Equal(t, CodeNotFound, rpcErr.Code)
}

func TestResponseShapes(t *testing.T) {
	data, err := json.Marshal(NewResult([]string{"0xabc"}))
	assert.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"data":["0xabc"]}`, string(data))

	data, err = json.Marshal(NewErrorResponse(NewUserRejected("no")))
	assert.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"error":{"code":4001,"message":"no"}}`, string(data))

	data, err = json.Marshal(NewFailure("bad envelope"))
	assert.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"error":"bad envelope"}`, string(data))
}
