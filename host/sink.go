// SPDX-License-Identifier: EPL-2.0

package host

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"gopkg.in/yaml.v3"

	"github.com/ik5/gbdclient/config"
	"github.com/ik5/gbdclient/utils"
)

// Sink is the downstream playback device the plugin feeds.
type Sink interface {
	Write(buf *goaudio.Float32Buffer) error
	Close() error
}

const (
	SinkWAV  = "wav"
	SinkNull = "null"

	wavBitDepth  = 16
	wavFormatPCM = 1
)

// WAVSink records the stream as 16-bit PCM WAV.
type WAVSink struct {
	f      *os.File
	enc    *wav.Encoder
	ints   goaudio.IntBuffer
	frames atomic.Int64
	closed bool
}

func NewWAVSink(path string, rate, channels int) (*WAVSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("wav sink: %w", err)
	}

	return &WAVSink{
		f:   f,
		enc: wav.NewEncoder(f, rate, wavBitDepth, channels, wavFormatPCM),
		ints: goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: channels, SampleRate: rate},
			SourceBitDepth: wavBitDepth,
		},
	}, nil
}

func (s *WAVSink) Write(buf *goaudio.Float32Buffer) error {
	if s.closed {
		return ErrSinkClosed
	}
	if len(buf.Data) == 0 {
		return nil
	}

	if cap(s.ints.Data) < len(buf.Data) {
		s.ints.Data = make([]int, len(buf.Data))
	}
	s.ints.Data = s.ints.Data[:len(buf.Data)]
	utils.Float32ToInts(s.ints.Data, buf.Data)

	if err := s.enc.Write(&s.ints); err != nil {
		return fmt.Errorf("wav sink: %w", err)
	}
	s.frames.Add(int64(len(buf.Data) / s.ints.Format.NumChannels))

	return nil
}

// Frames returns the number of frames written so far.
func (s *WAVSink) Frames() int64 { return s.frames.Load() }

// Close finalizes the WAV header and closes the file.
func (s *WAVSink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	return errors.Join(s.enc.Close(), s.f.Close())
}

// DiscardSink drops every buffer and counts frames.
type DiscardSink struct {
	frames atomic.Int64
}

func (d *DiscardSink) Write(buf *goaudio.Float32Buffer) error {
	ch := 2
	if buf.Format != nil && buf.Format.NumChannels > 0 {
		ch = buf.Format.NumChannels
	}
	d.frames.Add(int64(len(buf.Data) / ch))

	return nil
}

func (d *DiscardSink) Frames() int64 { return d.frames.Load() }
func (d *DiscardSink) Close() error  { return nil }

// SlaveConfig is the decoded form of the plugin's slave section.
type SlaveConfig struct {
	Type string `yaml:"type"`
	Path string `yaml:"path"`
}

// ParseSlave decodes the slave node. A mapping names a type and path. A
// bare scalar is either "null" or the path of a WAV file.
func ParseSlave(node *yaml.Node) (SlaveConfig, error) {
	if node == nil || node.Kind == 0 {
		return SlaveConfig{}, config.ErrMissingSlave
	}

	var sc SlaveConfig
	switch node.Kind {
	case yaml.ScalarNode:
		v := strings.TrimSpace(node.Value)
		switch {
		case v == "" || isNull(node):
			sc.Type = SinkNull
		default:
			sc.Type, sc.Path = SinkWAV, v
		}
	case yaml.MappingNode:
		if err := node.Decode(&sc); err != nil {
			return SlaveConfig{}, fmt.Errorf("slave: %w", err)
		}
		sc.Type = strings.ToLower(sc.Type)
		if v := mappingValue(node, "type"); v != nil && isNull(v) {
			sc.Type = SinkNull
		} else if sc.Type == "" {
			sc.Type = SinkWAV
		}
	default:
		return SlaveConfig{}, fmt.Errorf("%w: slave must be a mapping or a scalar", config.ErrInvalidConfig)
	}

	switch sc.Type {
	case SinkNull:
	case SinkWAV:
		if sc.Path == "" {
			return SlaveConfig{}, ErrMissingPath
		}
	default:
		return SlaveConfig{}, fmt.Errorf("%w: %q", ErrUnknownSinkType, sc.Type)
	}

	return sc, nil
}

// isNull reports whether a scalar names the null sink. An unquoted null is
// a YAML null and decodes to the empty string, so the tag is checked too.
func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode &&
		(n.Tag == "!!null" || strings.EqualFold(strings.TrimSpace(n.Value), SinkNull))
}

// mappingValue returns the value node for key, or nil when it is absent.
func mappingValue(n *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}

// OpenSink builds the sink described by the slave node for a stereo
// stream at rate.
func OpenSink(node *yaml.Node, rate int) (Sink, error) {
	sc, err := ParseSlave(node)
	if err != nil {
		return nil, err
	}

	if sc.Type == SinkNull {
		return &DiscardSink{}, nil
	}
	return NewWAVSink(sc.Path, rate, config.StereoChannels)
}
