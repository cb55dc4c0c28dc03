package feed

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrMalformed marks a payload that could not be decoded into a usable snapshot.
// It is never retried: the same index will keep returning the same bytes.
var ErrMalformed = errors.New("malformed feed payload")

// StatusError captures a non-2xx upstream response.
type StatusError struct {
	Operation  string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("feed %s: unexpected status %d", e.Operation, e.StatusCode)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Malformed wraps cause so that IsMalformed reports true.
func Malformed(cause error) error {
	if cause == nil {
		return ErrMalformed
	}
	return fmt.Errorf("%w: %w", ErrMalformed, cause)
}

// IsMalformed reports whether err came from an unusable payload.
func IsMalformed(err error) bool {
	return errors.Is(err, ErrMalformed)
}

// AsStatusError attempts to unwrap an error into a StatusError.
func AsStatusError(err error) (*StatusError, bool) {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr, true
	}
	return nil, false
}

// IsNotFound reports whether the upstream answered 404, which the feed uses for
// plays that do not exist (yet).
func IsNotFound(err error) bool {
	statusErr, ok := AsStatusError(err)
	return ok && statusErr.StatusCode == http.StatusNotFound
}
