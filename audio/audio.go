// SPDX-License-Identifier: EPL-2.0

package audio

import "io"

// Source is a stream of interleaved float32 PCM samples.
type Source interface {
	// SampleRate of the stream in Hz.
	SampleRate() int
	// Channels per frame.
	Channels() int
	// ReadSamples fills dst and returns the number of float32 values
	// written, not frames.
	ReadSamples(dst []float32) (n int, err error)
	// Close releases the underlying decoder and input.
	Close() error
}

// Decoder constructs a Source from an encoded input.
type Decoder interface {
	Decode(r io.Reader) (Source, error)
}

// DecoderFunc adapts a function to Decoder.
type DecoderFunc func(r io.Reader) (Source, error)

func (f DecoderFunc) Decode(r io.Reader) (Source, error) { return f(r) }
