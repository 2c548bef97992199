package build

import "errors"

var (
	ErrMissingContext = errors.New("build context missing or unreadable")
	ErrLayerFailed    = errors.New("image layer construction failed")
)
