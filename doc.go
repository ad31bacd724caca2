// SPDX-License-Identifier: EPL-2.0

// Package wavetrim loads short audio clips, draws their waveforms and lets
// a user trim and play them back.
//
// The building blocks live in sub-packages:
//   - audio: decoded buffers, sources and the format registry
//   - formats: WAV, MP3, Ogg Vorbis and AIFF decoders
//   - loader: parallel fetch and decode with progress
//   - trim: pixel/time mapping and the two trim bars
//   - waveform: min/max envelopes and their rendering
//   - sound: clips paired with their trim state
//   - playback: playing a region through an output device
//   - freesound and preset: finding clips to load
//
// Session ties them together for one editing surface:
//
//	s := wavetrim.NewSession(800, 100,
//		wavetrim.WithLoader(loader.New()),
//		wavetrim.WithEngine(playback.NewEngine(sink)),
//	)
//	job, _ := s.LoadPreset(ctx, kit, nil)
//	<-job.Done()
//
//	// pointer events from the UI
//	s.PointerMove(x)
//	s.PointerDown()
//	s.PointerUp()
//
//	if s.CanPlay() {
//		s.Play()
//	}
//
// An Animator redraws the surface with Session.Render at a fixed frame
// rate until stopped.
package wavetrim
