// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
	"github.com/ik5/wavetrim/audio"
	"github.com/ik5/wavetrim/utils"
)

// WriteClip writes buf as a 16-bit PCM WAV. The encoder patches the header
// sizes on close, hence the io.WriteSeeker.
func WriteClip(w io.WriteSeeker, buf *audio.Buffer) error {
	enc := gowav.NewEncoder(w, buf.SampleRate(), 16, buf.Channels(), formatPCM)

	samples := buf.Samples()
	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(utils.Float32ToInt16(s))
	}

	err := enc.Write(&goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: buf.Channels(), SampleRate: buf.SampleRate()},
		Data:           data,
		SourceBitDepth: 16,
	})
	if err != nil {
		return fmt.Errorf("writing wav samples: %w", err)
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("closing wav encoder: %w", err)
	}

	return nil
}
