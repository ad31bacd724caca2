// SPDX-License-Identifier: EPL-2.0

// Package audio provides the sample-level building blocks shared by the rest
// of the module:
//   - Source interface for streaming decoders
//   - Buffer, an immutable fully decoded clip
//   - MonoMixer for channel mixing
//   - Registry for format detection and decoder lookup
//
// # Source Interface
//
// Decoders stream interleaved float32 samples through Source:
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []float32) (int, error)
//	    BufSize() int
//	    Close() error
//	}
//
// # Buffers
//
// ReadAll drains a Source into a Buffer. A Buffer never changes after it is
// built; Slice, Remix and Resample all return new values:
//
//	buf, _ := audio.ReadAll(src)
//	clip := buf.Slice(0.5, 1.25)        // seconds
//	out := clip.Resample(48000).Remix(2) // ready for a stereo 48kHz sink
//
// # Format Registry
//
// The registry picks a decoder by magic bytes first, then by a hint such as a
// file name, URL or MIME type:
//
//	registry := audio.NewRegistry()
//	registry.Register("wav", wav.Decoder{})
//	buf, err := registry.DecodeBytes(payload, "https://host/kick.wav")
//
// Every DecodeBytes failure wraps ErrDecode.
//
// # Sample Format
//
// Samples are float32 in the range [-1.0, 1.0], interleaved by frame.
package audio
