// SPDX-License-Identifier: EPL-2.0

// Package waveform draws min/max envelopes of decoded audio.
//
// The envelope is computed once per buffer by Init and then painted as many
// times as needed, typically once per animation frame underneath the trim
// bar overlay.
package waveform
