package publish

import "errors"

var (
	ErrCredentialExpired  = errors.New("registry credential expired")
	ErrNetworkInterrupted = errors.New("upload interrupted")
	ErrQuotaExceeded      = errors.New("registry quota exceeded")
	ErrBadArtifact        = errors.New("artifact layout unreadable")
)
