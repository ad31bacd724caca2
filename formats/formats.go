// SPDX-License-Identifier: EPL-2.0

// Package formats wires every bundled decoder into an audio.Registry.
package formats

import (
	"github.com/ik5/wavetrim/audio"
	"github.com/ik5/wavetrim/formats/aiff"
	"github.com/ik5/wavetrim/formats/mp3"
	"github.com/ik5/wavetrim/formats/vorbis"
	"github.com/ik5/wavetrim/formats/wav"
)

// NewRegistry returns a registry with the wav, mp3, ogg and aiff decoders.
func NewRegistry() *audio.Registry {
	reg := audio.NewRegistry()
	reg.Register("wav", wav.Decoder{})
	reg.Register("mp3", mp3.Decoder{})
	reg.Register("ogg", vorbis.Decoder{})
	reg.Register("aiff", aiff.Decoder{})
	return reg
}
