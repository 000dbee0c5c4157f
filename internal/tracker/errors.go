package tracker

import (
	"errors"
	"fmt"
	"time"
)

// ErrRateLimited marks responses where the service throttled the caller. It
// is distinguishable from empty results and from hard failures so the
// reconciler can back off instead of giving an entry up.
var ErrRateLimited = errors.New("tracker: rate limited")

// ErrMalformedResponse marks service payloads missing required fields.
var ErrMalformedResponse = errors.New("tracker: malformed response")

// RateLimitError carries the service's suggested wait when it provided one.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("tracker: rate limited, retry after %s", e.RetryAfter)
	}
	return "tracker: rate limited"
}

func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimited
}

// StatusError reports a non-success HTTP outcome with the service message.
type StatusError struct {
	Operation  string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("tracker: %s returned %d: %s", e.Operation, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("tracker: %s returned %d", e.Operation, e.StatusCode)
}
