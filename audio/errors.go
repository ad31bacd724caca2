// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	ErrInvalidDstSize = errors.New("dst size must be multiple of channels")

	// ErrDecode marks a payload that could not be turned into samples.
	ErrDecode = errors.New("decode failure")

	// ErrUnknownFormat is returned when no registered decoder claims a payload.
	ErrUnknownFormat = errors.New("unknown audio format")

	// ErrEmptyPayload is returned when there is nothing to decode.
	ErrEmptyPayload = errors.New("empty audio payload")

	// ErrInvalidLayout is returned for non-positive sample rates or channel
	// counts, or sample data that is not a whole number of frames.
	ErrInvalidLayout = errors.New("invalid sample layout")
)
