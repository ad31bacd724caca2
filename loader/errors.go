// SPDX-License-Identifier: EPL-2.0

package loader

import "errors"

var (
	// ErrTransport marks a source that could not be fetched: network errors,
	// non-2xx responses, unreadable files, timeouts and cancellation.
	ErrTransport = errors.New("transport failure")

	ErrEmptySource = errors.New("empty source")
)
