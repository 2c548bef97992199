package registry

import "errors"

var (
	ErrInvalidTarget = errors.New("invalid registry target")
	ErrUnauthorized  = errors.New("registry authorization denied")
	ErrUnreachable   = errors.New("registry endpoint unreachable")
	ErrBadToken      = errors.New("malformed authorization token")
)
