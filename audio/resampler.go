// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/gbdclient/utils"
)

// Resample returns src converted to rate. A src already at rate is
// returned as is.
func Resample(src Source, rate int) Source {
	if src.SampleRate() == rate {
		return src
	}
	return NewResampler(src, rate)
}

// Resampler converts a Source to another sample rate with cubic
// interpolation, keeping the channel count. Downsampling runs the input
// through a one-pole low-pass first.
type Resampler struct {
	src      Source
	rate     int
	channels int
	step     float64 // source frames per output frame

	// hist holds frames t-1, t0, t+1 and t+2 around the output position.
	// live marks which of them came from src rather than edge padding.
	hist [4][]float32
	live [4]bool
	pos  float64

	in     []float32
	inPos  int
	inLen  int
	srcEOF bool
	primed bool
	done   bool

	lowpass bool
	seeded  bool
	state   []float32
}

const lowpassAlpha = 0.5

func NewResampler(src Source, rate int) *Resampler {
	channels := src.Channels()
	step := float64(src.SampleRate()) / float64(rate)

	r := &Resampler{
		src:      src,
		rate:     rate,
		channels: channels,
		step:     step,
		in:       make([]float32, max(channels, 1)*1024),
		lowpass:  step > 1,
		state:    make([]float32, channels),
	}
	for i := range r.hist {
		r.hist[i] = make([]float32, channels)
	}

	return r
}

func (r *Resampler) SampleRate() int { return r.rate }
func (r *Resampler) Channels() int   { return r.channels }

func (r *Resampler) Close() error {
	if err := r.src.Close(); err != nil {
		return fmt.Errorf("resampler: %w", err)
	}
	return nil
}

// pull copies the next source frame into frame.
func (r *Resampler) pull(frame []float32) (bool, error) {
	for r.inPos+r.channels > r.inLen {
		if r.srcEOF {
			return false, nil
		}

		n, err := r.src.ReadSamples(r.in)
		r.inPos, r.inLen = 0, n-n%r.channels
		if errors.Is(err, io.EOF) {
			r.srcEOF = true
		} else if err != nil {
			return false, fmt.Errorf("resampler: %w", err)
		}
		if n == 0 && !r.srcEOF {
			return false, io.ErrNoProgress
		}
	}

	copy(frame, r.in[r.inPos:r.inPos+r.channels])
	r.inPos += r.channels

	if r.lowpass {
		if !r.seeded {
			// Seed the filter so the first frame has no warm-up ramp.
			copy(r.state, frame)
			r.seeded = true
		}
		for c := range frame {
			frame[c] = lowpassAlpha*frame[c] + (1-lowpassAlpha)*r.state[c]
			r.state[c] = frame[c]
		}
	}

	return true, nil
}

func (r *Resampler) prime() error {
	r.primed = true

	ok, err := r.pull(r.hist[1])
	if err != nil {
		return err
	}
	if !ok {
		r.done = true
		return io.EOF
	}
	copy(r.hist[0], r.hist[1])
	r.live[0], r.live[1] = true, true

	for i := 2; i < len(r.hist); i++ {
		if err := r.fill(i); err != nil {
			return err
		}
	}
	return nil
}

// fill loads hist[i] from src, padding with hist[i-1] at end of stream.
func (r *Resampler) fill(i int) error {
	ok, err := r.pull(r.hist[i])
	if err != nil {
		return err
	}
	if !ok {
		copy(r.hist[i], r.hist[i-1])
	}
	r.live[i] = ok
	return nil
}

func (r *Resampler) advance() error {
	first := r.hist[0]
	copy(r.hist[:], r.hist[1:])
	r.hist[3] = first
	copy(r.live[:], r.live[1:])

	return r.fill(3)
}

func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if r.channels <= 0 {
		return 0, ErrNoChannels
	}
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}
	if r.done {
		return 0, io.EOF
	}
	if !r.primed {
		if err := r.prime(); err != nil {
			return 0, err
		}
	}

	n := 0
	for n < len(dst) {
		for r.pos >= 1 {
			r.pos--
			if err := r.advance(); err != nil {
				return n, err
			}
		}
		if !r.live[1] {
			r.done = true
			return n, io.EOF
		}

		x := float32(r.pos)
		h0, h1, h2, h3 := r.hist[0], r.hist[1], r.hist[2], r.hist[3]
		for c := range r.channels {
			dst[n+c] = utils.CubicInterpolate(h0[c], h1[c], h2[c], h3[c], x)
		}
		n += r.channels
		r.pos += r.step
	}

	return n, nil
}
