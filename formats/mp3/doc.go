// SPDX-License-Identifier: EPL-2.0

// Package mp3 provides MP3 (MPEG-1/2 Audio Layer III) decoding.
//
// This package uses github.com/hajimehoshi/go-mp3, a pure Go decoder.
// Freesound previews (preview-hq-mp3) and most preset samples go through
// this decoder.
//
// # Supported Formats
//
// Currently supported:
//   - MPEG-1 and MPEG-2 Layer III
//   - Constant and variable bitrate
//   - Files with or without an ID3v2 tag
//   - Mono and stereo streams
//
// # Detection
//
// Decoder implements audio.Matcher. Match reports true when the payload
// starts with an ID3v2 tag or with an MPEG frame sync (11 set bits and a
// valid layer). Headerless streams served as application/octet-stream are
// therefore still recognised.
//
// # Decoding MP3 Files
//
//	file, _ := os.Open("preview.mp3")
//	source, err := mp3.Decoder{}.Decode(file)
//	if err != nil {
//	    // Handle error
//	}
//
//	buf := make([]float32, 4096)
//	n, err := source.ReadSamples(buf)
//
// # Output Format
//
// MP3 decoder output:
//   - Sample format: float32 in range [-1.0, 1.0]
//   - Channels: always 2 (mono streams are duplicated by go-mp3)
//   - Sample rate: the stream's rate (commonly 44.1kHz)
//
// A truncated final frame ends the stream with io.EOF instead of an error,
// so partially downloaded previews still decode up to the cut.
package mp3
