// SPDX-License-Identifier: EPL-2.0

// Package audiotest provides synthetic audio sources for tests.
package audiotest

import (
	"io"
	"math"
	"sync/atomic"
)

// Waveform returns the sample for one frame index and channel.
type Waveform func(frame, channel int) float32

// Source generates a fixed number of frames from a Waveform. It satisfies
// audio.Source without importing it.
type Source struct {
	rate     int
	channels int
	frames   int
	pos      int
	wave     Waveform

	// MaxRead caps the samples returned per ReadSamples call when set.
	MaxRead int
	// Err, when set, is returned once FailAt frames were produced.
	Err    error
	FailAt int

	closed atomic.Int32
}

// New returns a Source of frames frames.
func New(rate, channels, frames int, wave Waveform) *Source {
	return &Source{rate: rate, channels: channels, frames: frames, wave: wave}
}

func Silence(rate, channels, frames int) *Source {
	return New(rate, channels, frames, func(int, int) float32 { return 0 })
}

func Constant(rate, channels, frames int, v float32) *Source {
	return New(rate, channels, frames, func(int, int) float32 { return v })
}

func Sine(rate, channels, frames int, freq float64) *Source {
	return New(rate, channels, frames, func(f, _ int) float32 {
		return float32(math.Sin(2 * math.Pi * freq * float64(f) / float64(rate)))
	})
}

// Ramp encodes the frame index and channel into each sample so tests can
// check ordering: sample = (frame*channels + channel) / scale.
func Ramp(rate, channels, frames int, scale float32) *Source {
	return New(rate, channels, frames, func(f, c int) float32 {
		return float32(f*channels+c) / scale
	})
}

func (s *Source) SampleRate() int { return s.rate }
func (s *Source) Channels() int   { return s.channels }

func (s *Source) Close() error {
	s.closed.Add(1)
	return nil
}

// Closed reports how many times Close was called.
func (s *Source) Closed() int { return int(s.closed.Load()) }

// Produced returns the frames generated so far.
func (s *Source) Produced() int { return s.pos }

func (s *Source) ReadSamples(dst []float32) (int, error) {
	if s.Err != nil && s.pos >= s.FailAt {
		return 0, s.Err
	}
	if s.pos >= s.frames {
		return 0, io.EOF
	}

	if s.MaxRead > 0 && len(dst) > s.MaxRead {
		dst = dst[:s.MaxRead]
	}
	n := min(len(dst)/s.channels, s.frames-s.pos)
	if s.Err != nil {
		n = min(n, s.FailAt-s.pos)
	}

	for f := range n {
		for c := range s.channels {
			dst[f*s.channels+c] = s.wave(s.pos+f, c)
		}
	}
	s.pos += n

	if s.pos >= s.frames {
		return n * s.channels, io.EOF
	}
	return n * s.channels, nil
}
