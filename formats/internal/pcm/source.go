// SPDX-License-Identifier: EPL-2.0

// Package pcm adapts go-audio integer PCM decoders to audio.Source.
package pcm

import (
	"bytes"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"

	"github.com/ik5/gbdclient/utils"
)

// Reader is the subset of the go-audio wav and aiff decoders used here.
type Reader interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// Source streams normalized samples out of a Reader.
type Source struct {
	dec      Reader
	rate     int
	channels int
	bitDepth int
	buf      goaudio.IntBuffer
	eof      bool
}

func NewSource(dec Reader, format *goaudio.Format, bitDepth int) *Source {
	return &Source{
		dec:      dec,
		rate:     format.SampleRate,
		channels: format.NumChannels,
		bitDepth: bitDepth,
		buf:      goaudio.IntBuffer{Format: format, SourceBitDepth: bitDepth},
	}
}

func (s *Source) SampleRate() int { return s.rate }
func (s *Source) Channels() int   { return s.channels }
func (s *Source) BitDepth() int   { return s.bitDepth }
func (s *Source) Close() error    { return nil }

func (s *Source) ReadSamples(dst []float32) (int, error) {
	if s.eof {
		return 0, io.EOF
	}
	if len(dst) == 0 {
		return 0, nil
	}

	if cap(s.buf.Data) < len(dst) {
		s.buf.Data = make([]int, len(dst))
	}
	s.buf.Data = s.buf.Data[:len(dst)]

	n, err := s.dec.PCMBuffer(&s.buf)
	n = utils.IntsToFloat32(dst, s.buf.Data[:n], s.bitDepth)
	if err != nil && err != io.EOF {
		return n, fmt.Errorf("pcm: %w", err)
	}
	if err == io.EOF || n < len(dst) {
		s.eof = true
		return n, io.EOF
	}

	return n, nil
}

// ReadSeeker returns r as an io.ReadSeeker, buffering it in memory when it
// cannot seek.
func ReadSeeker(r io.Reader) (io.ReadSeeker, error) {
	if rs, ok := r.(io.ReadSeeker); ok {
		return rs, nil
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("pcm: buffer input: %w", err)
	}
	return bytes.NewReader(data), nil
}
