// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	goaiff "github.com/go-audio/aiff"
	"github.com/ik5/wavetrim/audio"
)

// WAV16 encodes interleaved int16 samples as a canonical 44-byte-header
// PCM WAV payload.
func WAV16(sampleRate, channels int, samples []int16) []byte {
	buf := new(bytes.Buffer)

	dataSize := uint32(len(samples) * 2)
	blockAlign := uint16(channels * 2)

	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, 36+dataSize)
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16))
	binary.Write(buf, binary.LittleEndian, uint16(1))
	binary.Write(buf, binary.LittleEndian, uint16(channels))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate)*uint32(blockAlign))
	binary.Write(buf, binary.LittleEndian, blockAlign)
	binary.Write(buf, binary.LittleEndian, uint16(16))

	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, dataSize)
	binary.Write(buf, binary.LittleEndian, samples)

	return buf.Bytes()
}

// SineWAV encodes frames of a half-scale sine tone on every channel.
func SineWAV(sampleRate, channels, frames int, frequency float64) []byte {
	wave := Sine(sampleRate, frequency)
	samples := make([]int16, frames*channels)
	for f := range frames {
		v := int16(wave(f, 0) * 16384)
		for ch := range channels {
			samples[f*channels+ch] = v
		}
	}
	return WAV16(sampleRate, channels, samples)
}

// SineBuffer returns a decoded sine clip of the given length.
func SineBuffer(t testing.TB, sampleRate, channels, frames int, frequency float64) *audio.Buffer {
	t.Helper()

	buf, err := audio.ReadAll(NewSineSource(sampleRate, channels, frames, frequency))
	if err != nil {
		t.Fatalf("audiotest: read sine source: %v", err)
	}
	return buf
}

// AIFF encodes interleaved integer samples with the go-audio encoder. The
// encoder needs to seek back over its header, so the payload goes through
// a file in t.TempDir.
func AIFF(t testing.TB, sampleRate, channels, bitDepth int, samples []int) []byte {
	t.Helper()

	name := filepath.Join(t.TempDir(), "fixture.aiff")
	f, err := os.Create(name)
	if err != nil {
		t.Fatalf("audiotest: create aiff: %v", err)
	}
	defer f.Close()

	enc := goaiff.NewEncoder(f, sampleRate, bitDepth, channels)
	err = enc.Write(&goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           samples,
		SourceBitDepth: bitDepth,
	})
	if err != nil {
		t.Fatalf("audiotest: write aiff: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("audiotest: close aiff encoder: %v", err)
	}

	data, err := os.ReadFile(name)
	if err != nil {
		t.Fatalf("audiotest: read aiff: %v", err)
	}
	return data
}
