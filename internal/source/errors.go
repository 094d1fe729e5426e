package source

import "errors"

// Sentinel errors classifying source failures. Rate-limit and transient
// errors are retryable; unauthorized and bad-request errors are not.
var (
	ErrRateLimited  = errors.New("source rate limited")
	ErrTransient    = errors.New("source temporarily unavailable")
	ErrUnauthorized = errors.New("source authentication failed")
	ErrBadRequest   = errors.New("source rejected request")
)

// Retryable reports whether the fetch layer may retry after err.
func Retryable(err error) bool {
	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrTransient)
}
