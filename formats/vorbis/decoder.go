// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"errors"
	"fmt"
	"io"

	"github.com/jfreymuth/oggvorbis"

	"github.com/ik5/gbdclient/audio"
)

// Extensions lists the file extensions this decoder handles.
var Extensions = []string{"ogg", "oga"}

// oggReader is the part of oggvorbis.Reader the source uses. Read fills
// p with interleaved samples and returns the number of values decoded.
type oggReader interface {
	SampleRate() int
	Channels() int
	Read(p []float32) (int, error)
}

type source struct {
	dec      oggReader
	rate     int
	channels int
	eof      bool
}

func (s *source) SampleRate() int { return s.rate }
func (s *source) Channels() int   { return s.channels }
func (s *source) Close() error    { return nil }

func (s *source) ReadSamples(dst []float32) (int, error) {
	if s.eof {
		return 0, io.EOF
	}
	if s.channels <= 0 {
		return 0, audio.ErrNoChannels
	}

	dst = dst[:len(dst)-len(dst)%s.channels]
	if len(dst) == 0 {
		return 0, nil
	}

	n, err := s.dec.Read(dst)
	switch {
	case err == nil:
		return n, nil
	case errors.Is(err, io.EOF):
		s.eof = true
		return n, io.EOF
	default:
		return n, fmt.Errorf("vorbis: %w", err)
	}
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("vorbis: %w", err)
	}

	return newSource(dec), nil
}

func newSource(dec oggReader) *source {
	return &source{dec: dec, rate: dec.SampleRate(), channels: dec.Channels()}
}
