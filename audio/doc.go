// SPDX-License-Identifier: EPL-2.0

// Package audio provides the streaming sample sources that feed the gbd
// plugin.
//
// A Source yields interleaved float32 samples in [-1, 1]. Decoders in the
// formats packages produce Sources; Resampler and StereoMixer wrap them so
// the host pipeline always sees a two-channel stream at the rate the
// plugin was initialized with:
//
//	src, err := formats.Default().Open("input.mp3")
//	if err != nil {
//		return err
//	}
//	stream := audio.NewStereoMixer(audio.Resample(src, 44100))
//	defer stream.Close()
//
// ReadSamples returns io.EOF once the stream is exhausted. A call may
// return samples together with io.EOF.
package audio
