package apperror

import (
	"errors"
	"fmt"
)

// JSON-RPC error codes carried in response envelopes.
const (
	CodeRuleViolation  = -1
	CodeMethodNotFound = -32601
)

var (
	ErrGameNotFound      = errors.New("game not found")
	ErrGameAlreadyExists = errors.New("game already exists")
	ErrConflict          = errors.New("game was modified concurrently")
	ErrInvalidRecord     = errors.New("invalid game record")
)

// RPCError is a business-rule rejection. It is answered inside a normal
// response envelope instead of failing the transport request.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func NewRPCError(code int, format string, args ...any) *RPCError {
	return &RPCError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

func (that *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", that.Code, that.Message)
}

// AsRPCError reports whether err carries a business-rule rejection.
func AsRPCError(err error) (*RPCError, bool) {
	var rpcErr *RPCError
	if errors.As(err, &rpcErr) {
		return rpcErr, true
	}

	return nil, false
}
