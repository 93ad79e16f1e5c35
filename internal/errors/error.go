package errors

import "github.com/pkg/errors"

var (
	// email processing errors
	ErrEmptyMessage = errors.New("raw message is empty")

	// rpc errors
	ErrRPCNotConfigured = errors.New("rpc endpoint is not configured")
)
