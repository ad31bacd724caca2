// SPDX-License-Identifier: EPL-2.0

// Package vorbis provides Ogg Vorbis decoding.
//
// This package uses github.com/jfreymuth/oggvorbis, a pure Go decoder.
//
// # Supported Formats
//
// Currently supported:
//   - Vorbis I audio in an Ogg container
//   - Any channel count and sample rate
//   - All quality levels
//
// Note:
//   - Vorbis encoding is not supported (decoding only)
//   - Other Ogg codecs (Opus, FLAC) are rejected by the decoder
//
// # Detection
//
// Decoder implements audio.Matcher. Match reports true for payloads that
// start with an Ogg page ("OggS"). The registry tries it before falling
// back to the .ogg/.oga extension or an audio/ogg Content-Type.
//
// # Decoding Vorbis Files
//
//	file, _ := os.Open("pad.ogg")
//	source, err := vorbis.Decoder{}.Decode(file)
//	if err != nil {
//	    // Handle error
//	}
//
//	buf, err := audio.ReadAll(source)
//
// # Output Format
//
// Vorbis decoder output:
//   - Sample format: float32 in range [-1.0, 1.0]
//   - Channels: as stored in the identification header
//   - Sample rate: as stored in the identification header
//
// ReadSamples expects a destination that holds whole frames and returns
// audio.ErrInvalidDstSize otherwise.
package vorbis
