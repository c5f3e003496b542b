// SPDX-License-Identifier: EPL-2.0

package host

import (
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ik5/gbdclient/config"
	"github.com/ik5/gbdclient/formats/wav"
)

func slaveNode(t *testing.T, doc string) *yaml.Node {
	t.Helper()

	var root yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(doc), &root))
	require.Len(t, root.Content, 1)
	return root.Content[0]
}

func TestParseSlave(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		doc     string
		want    SlaveConfig
		wantErr error
	}{
		{"wav mapping", "{type: wav, path: out.wav}", SlaveConfig{Type: SinkWAV, Path: "out.wav"}, nil},
		{"type defaults to wav", "{path: /tmp/x.wav}", SlaveConfig{Type: SinkWAV, Path: "/tmp/x.wav"}, nil},
		{"null mapping", "{type: NULL}", SlaveConfig{Type: SinkNull}, nil},
		{"lowercase null mapping", "{type: null}", SlaveConfig{Type: SinkNull}, nil},
		{"quoted null mapping", `{type: "null"}`, SlaveConfig{Type: SinkNull}, nil},
		{"block null mapping", "type: null\n", SlaveConfig{Type: SinkNull}, nil},
		{"tilde scalar", "~", SlaveConfig{Type: SinkNull}, nil},
		{"null scalar", "null", SlaveConfig{Type: SinkNull}, nil},
		{"scalar path", "capture.wav", SlaveConfig{Type: SinkWAV, Path: "capture.wav"}, nil},
		{"missing path", "{type: wav}", SlaveConfig{}, ErrMissingPath},
		{"unknown type", "{type: hw, path: '0,0'}", SlaveConfig{}, ErrUnknownSinkType},
		{"sequence", "[a, b]", SlaveConfig{}, config.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseSlave(slaveNode(t, tt.doc))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSlave_FromConfig(t *testing.T) {
	t.Parallel()

	cfg, err := config.Parse([]byte(`
ipaddr: 127.0.0.1
port: "8888"
slave: "null"
`))
	require.NoError(t, err)

	sc, err := ParseSlave(&cfg.Slave)
	require.NoError(t, err)
	assert.Equal(t, SinkNull, sc.Type)

	_, err = ParseSlave(&yaml.Node{})
	assert.ErrorIs(t, err, config.ErrMissingSlave)
	_, err = ParseSlave(nil)
	assert.ErrorIs(t, err, config.ErrMissingSlave)
}

func TestWAVSink_RoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.wav")
	sink, err := OpenSink(slaveNode(t, "{type: wav, path: "+path+"}"), 22050)
	require.NoError(t, err)

	in := make([]float32, 2*500)
	for i := range in {
		in[i] = float32(math.Sin(float64(i) * 0.01))
	}
	format := &goaudio.Format{NumChannels: 2, SampleRate: 22050}
	require.NoError(t, sink.Write(&goaudio.Float32Buffer{Format: format, Data: in[:600]}))
	require.NoError(t, sink.Write(&goaudio.Float32Buffer{Format: format, Data: in[600:]}))
	assert.Equal(t, int64(500), sink.(*WAVSink).Frames())
	require.NoError(t, sink.Close())
	require.NoError(t, sink.Close())
	assert.ErrorIs(t, sink.Write(&goaudio.Float32Buffer{Format: format, Data: in}), ErrSinkClosed)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	src, err := wav.Decoder{}.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 22050, src.SampleRate())
	assert.Equal(t, 2, src.Channels())

	out := make([]float32, 4096)
	n, err := src.ReadSamples(out)
	if err != nil {
		require.ErrorIs(t, err, io.EOF)
	}
	require.Equal(t, len(in), n)
	for i := range in {
		if math.Abs(float64(out[i]-in[i])) > 1.0/16384 {
			t.Fatalf("sample %d = %v, want %v", i, out[i], in[i])
		}
	}
}

func TestOpenSink_Null(t *testing.T) {
	t.Parallel()

	sink, err := OpenSink(slaveNode(t, "{type: null}"), 44100)
	require.NoError(t, err)

	d, ok := sink.(*DiscardSink)
	require.True(t, ok)
	require.NoError(t, d.Write(&goaudio.Float32Buffer{Data: make([]float32, 512)}))
	assert.Equal(t, int64(256), d.Frames())
	require.NoError(t, d.Close())
}

func TestOpenSink_BadPath(t *testing.T) {
	t.Parallel()

	_, err := NewWAVSink(filepath.Join(t.TempDir(), "missing", "out.wav"), 44100, 2)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
