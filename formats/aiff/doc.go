// SPDX-License-Identifier: EPL-2.0

// Package aiff provides AIFF (Audio Interchange File Format) decoding.
//
// This package uses github.com/go-audio/aiff to decode AIFF files. AIFF is
// Apple's uncompressed audio format and shows up in sample packs next to WAV.
//
// # Supported Formats
//
// Currently supported:
//   - AIFF and uncompressed AIFC containers
//   - PCM 8, 16, 24 and 32-bit
//   - Mono and multi-channel
//   - Any sample rate
//
// # Detection
//
// Decoder implements audio.Matcher. Match reports true for payloads that
// start with a FORM chunk of type AIFF or AIFC, so the format registry
// picks this decoder even when the URL or Content-Type says otherwise:
//
//	if (aiff.Decoder{}).Match(head) {
//	    // payload is AIFF
//	}
//
// # Decoding AIFF Files
//
//	file, _ := os.Open("kick.aif")
//	source, err := aiff.Decoder{}.Decode(file)
//	if err != nil {
//	    // Handle error
//	}
//
//	buf, err := audio.ReadAll(source)
//
// The decoder seeks between chunks. Readers that cannot seek (HTTP bodies)
// are buffered in memory first.
//
// # Output Format
//
// AIFF decoder output:
//   - Sample format: float32 in range [-1.0, 1.0]
//   - Channels: as stored in the COMM chunk
//   - Sample rate: as stored in the COMM chunk
//
// 8-bit samples are signed in AIFF and are scaled by 1/128, 16-bit by
// 1/32768 and so on.
//
// # Error Handling
//
//   - ErrNotAiffFile: the input is not a FORM/AIFF container
//   - ErrUnsupportedBitDepth: sample size other than 8, 16, 24 or 32 bits
//   - ErrUnsupportedAiffLayout: missing COMM data or an unreadable header
//
//	if errors.Is(err, aiff.ErrNotAiffFile) {
//	    fmt.Println("Not an AIFF file")
//	}
//
// # AIFF vs. WAV
//
// AIFF is similar to WAV but:
//   - Uses big-endian byte order (WAV uses little-endian)
//   - Stores sample rate as 80-bit float (WAV uses 32-bit int)
//   - Stores 8-bit samples signed (WAV stores them unsigned)
package aiff
