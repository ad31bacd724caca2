// SPDX-License-Identifier: EPL-2.0

// Package wav decodes and writes RIFF/WAVE PCM audio.
//
// Decoding is built on github.com/go-audio/wav.
//
// # Supported Formats
//
// Currently supported:
//   - Integer PCM (format tag 1)
//   - 16, 24 and 32-bit samples
//   - Mono and multi-channel
//   - Extra chunks (LIST, bext, fact ...) anywhere before the data chunk
//
// # Detection
//
// Decoder implements audio.Matcher. Match reports true for payloads that
// start with "RIFF" and carry "WAVE" at offset 8.
//
// # Decoding WAV Files
//
//	src, err := wav.Decoder{}.Decode(file)
//	if err != nil {
//	    // Handle error
//	}
//
// # Output Format
//
//   - Sample format: float32 in range [-1.0, 1.0]
//   - Channels and sample rate: as stored in the fmt chunk
//
// # Writing Clips
//
// WriteClip stores a decoded buffer, usually a trimmed region, as 16-bit PCM:
//
//	out, _ := os.Create("clip.wav")
//	defer out.Close()
//	err := wav.WriteClip(out, buf.Slice(start, end))
//
// # Error Handling
//
//   - ErrNotWavFile: the input is not a RIFF/WAVE container
//   - ErrOnlyPCMSupported: compressed or float WAV
//   - ErrUnsupportedBitDepth: sample size other than 16, 24 or 32 bits
//   - ErrUnsupportedWavLayout: missing fmt chunk or zero channels/rate
package wav
