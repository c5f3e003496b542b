// SPDX-License-Identifier: EPL-2.0

package audio

import "fmt"

const stereo = 2

// StereoMixer presents any Source as two interleaved channels. Mono is
// duplicated to both sides. Wider layouts fold even-indexed channels
// into the left side and odd-indexed ones into the right, averaging each
// side.
type StereoMixer struct {
	src Source
	tmp []float32
}

// NewStereoMixer wraps src. A stereo src passes through untouched.
func NewStereoMixer(src Source) *StereoMixer {
	return &StereoMixer{src: src}
}

func (m *StereoMixer) SampleRate() int { return m.src.SampleRate() }
func (m *StereoMixer) Channels() int   { return stereo }

func (m *StereoMixer) Close() error {
	if err := m.src.Close(); err != nil {
		return fmt.Errorf("stereo mixer: %w", err)
	}
	return nil
}

func (m *StereoMixer) ReadSamples(dst []float32) (int, error) {
	if len(dst)%stereo != 0 {
		return 0, ErrInvalidDstSize
	}
	if len(dst) == 0 {
		return 0, nil
	}

	channels := m.src.Channels()
	switch {
	case channels <= 0:
		return 0, ErrNoChannels
	case channels == stereo:
		return m.src.ReadSamples(dst)
	}

	frames := len(dst) / stereo
	need := frames * channels
	if cap(m.tmp) < need {
		m.tmp = make([]float32, max(need, 4096))
	}
	tmp := m.tmp[:need]

	n, err := m.src.ReadSamples(tmp)
	got := n / channels
	if got == 0 {
		return 0, err
	}

	if channels == 1 {
		for f := range got {
			dst[2*f] = tmp[f]
			dst[2*f+1] = tmp[f]
		}
		return got * stereo, err
	}

	left := float32(1) / float32((channels+1)/2)
	right := float32(1) / float32(channels/2)
	for f := range got {
		var l, r float32
		frame := tmp[f*channels : (f+1)*channels]
		for c, v := range frame {
			if c%2 == 0 {
				l += v
			} else {
				r += v
			}
		}
		dst[2*f] = l * left
		dst[2*f+1] = r * right
	}

	return got * stereo, err
}
