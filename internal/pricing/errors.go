package pricing

import "errors"

var (
	// ErrInvalidArgument marks malformed line items or negative amounts supplied to the engine.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidConfiguration marks a pricing config that cannot produce a well-defined result.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)
