package reliability

import (
	"context"
	"errors"
	"net"
)

type Class string

const (
	ClassNone        Class = ""
	ClassTimeout     Class = "timeout"
	ClassCanceled    Class = "canceled"
	ClassUnavailable Class = "unavailable"
	ClassInternal    Class = "internal"
)

// Classify buckets a memory backend error for the caller. Nothing here
// retries; callers pick their own policy per class.
func Classify(err error) Class {
	if err == nil {
		return ClassNone
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ClassTimeout
	}
	if errors.Is(err, context.Canceled) {
		return ClassCanceled
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return ClassTimeout
		}
		return ClassUnavailable
	}
	return ClassInternal
}

// IsTransient reports whether a later attempt could plausibly succeed.
func IsTransient(err error) bool {
	switch Classify(err) {
	case ClassTimeout, ClassUnavailable:
		return true
	default:
		return false
	}
}
