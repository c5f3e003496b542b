// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"

	"github.com/ik5/gbdclient/audio"
	"github.com/ik5/gbdclient/utils"
)

// go-mp3 always produces interleaved stereo.
const channels = 2

// Extensions lists the file extensions this decoder handles.
var Extensions = []string{"mp3"}

// mp3Reader is the part of gomp3.Decoder the source uses.
type mp3Reader interface {
	io.Reader
	SampleRate() int
}

type source struct {
	dec  mp3Reader
	rate int
	buf  []byte
	eof  bool
}

func (s *source) SampleRate() int { return s.rate }
func (s *source) Channels() int   { return channels }
func (s *source) Close() error    { return nil }

func (s *source) ReadSamples(dst []float32) (int, error) {
	if s.eof {
		return 0, io.EOF
	}
	if len(dst) == 0 {
		return 0, nil
	}

	need := len(dst) * 2
	if cap(s.buf) < need {
		s.buf = make([]byte, need)
	}
	buf := s.buf[:need]

	n, err := io.ReadFull(s.dec, buf)
	samples := n / 2
	for i := range samples {
		dst[i] = utils.Int16ToFloat32(int16(binary.LittleEndian.Uint16(buf[2*i:])))
	}

	switch {
	case err == nil:
		return samples, nil
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		s.eof = true
		return samples, io.EOF
	default:
		return samples, fmt.Errorf("mp3: %w", err)
	}
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("mp3: %w", err)
	}

	return newSource(dec), nil
}

func newSource(dec mp3Reader) *source {
	return &source{dec: dec, rate: dec.SampleRate(), buf: make([]byte, 8192)}
}
