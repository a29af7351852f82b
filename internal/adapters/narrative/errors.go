package narrative

import (
	"errors"
	"strings"
)

// Sentinel errors returned by the client.
var (
	ErrRateLimited     = errors.New("narrative source rate limited")
	ErrNoCredential    = errors.New("narrative credential not configured")
	ErrRequestFailed   = errors.New("narrative request failed")
	ErrUnexpectedCode  = errors.New("narrative source returned an error")
	ErrInvalidResponse = errors.New("narrative response invalid")
)

// IsRateLimited reports whether err means the caller should back off.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// mentionsRateLimit matches API errors that carry the 429 code in their
// text rather than in the HTTP status.
func mentionsRateLimit(parts ...string) bool {
	for _, p := range parts {
		if strings.Contains(p, "429") {
			return true
		}
	}
	return false
}
