// SPDX-License-Identifier: EPL-2.0

// Package freesound is a small client for the Freesound search API.
//
// Failures come back as *StatusError values whose messages carry the
// server's detail text. Use errors.Is with ErrUnauthorized, ErrNotFound,
// ErrRateLimited, ErrService or ErrTransport to tell them apart.
package freesound
