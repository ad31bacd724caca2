// SPDX-License-Identifier: EPL-2.0

package freesound

import (
	"errors"
	"net/http"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("sounds not found")
	ErrRateLimited  = errors.New("too many requests")
	ErrService      = errors.New("failed to get sounds")
	ErrTransport    = errors.New("transport failure")

	ErrNoPreview = errors.New("sound has no mp3 preview")
)

// StatusError is returned for every failed API call. Status is 0 when no
// response was received.
type StatusError struct {
	Status int
	Detail string

	kind error
	err  error
}

func (e *StatusError) Error() string {
	var prefix string
	switch e.kind {
	case ErrUnauthorized:
		prefix = "Unauthorized"
	case ErrNotFound:
		prefix = "Sounds not found"
	case ErrRateLimited:
		prefix = "Too many requests"
	default:
		prefix = "Failed to get sounds"
	}
	return prefix + " : " + e.Detail
}

func (e *StatusError) Unwrap() []error {
	if e.err == nil {
		return []error{e.kind}
	}
	return []error{e.kind, e.err}
}

func classify(status int, detail string) *StatusError {
	var kind error
	switch status {
	case http.StatusUnauthorized:
		kind = ErrUnauthorized
	case http.StatusNotFound:
		kind = ErrNotFound
	case http.StatusTooManyRequests:
		kind = ErrRateLimited
	default:
		kind = ErrService
	}
	return &StatusError{Status: status, Detail: detail, kind: kind}
}

func transportError(err error) *StatusError {
	return &StatusError{Detail: err.Error(), kind: ErrTransport, err: err}
}
