// SPDX-License-Identifier: EPL-2.0

package client

// Plugin is the callback table an audio host drives.
//
// Init is called once with the negotiated sample rate before the first
// Transfer. Transfer is called once per period, never concurrently with
// itself, and returns the number of frames consumed. Close is called once
// when the host shuts the stream down.
type Plugin interface {
	Init(sampleRate int) error
	Transfer(dst, src []float32, frames int) int
	Close() error
}

var (
	_ Plugin = (*Session)(nil)
	_ Plugin = (*Null)(nil)
)

// Null passes audio through without a remote side.
type Null struct {
	Channels   int
	sampleRate int
}

// NewNull returns a stereo pass-through plugin.
func NewNull() *Null {
	return &Null{Channels: stereo}
}

func (n *Null) Init(sampleRate int) error {
	if sampleRate <= 0 {
		return ErrInvalidSampleRate
	}
	n.sampleRate = sampleRate

	return nil
}

// SampleRate returns the rate passed to Init.
func (n *Null) SampleRate() int { return n.sampleRate }

func (n *Null) Transfer(dst, src []float32, frames int) int {
	channels := n.Channels
	if channels <= 0 {
		channels = stereo
	}

	return passThrough(dst, src, frames, channels)
}

func (n *Null) Close() error { return nil }

// passThrough copies one block and returns the frames consumed.
func passThrough(dst, src []float32, frames, channels int) int {
	frames = clampFrames(dst, src, frames, channels)
	if frames == 0 {
		return 0
	}

	n := frames * channels
	copy(dst[:n], src[:n])

	return frames
}

func clampFrames(dst, src []float32, frames, channels int) int {
	if frames <= 0 {
		return 0
	}

	return min(frames, len(src)/channels, len(dst)/channels)
}
