// SPDX-License-Identifier: EPL-2.0

package protocol

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"testing"
)

func TestCodec_EncodeDecode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		codec Codec
		msg   Message
		want  []byte
	}{
		{
			name:  "little endian beat detection",
			codec: LittleEndianCodec,
			msg:   Message{Command: BeatDetectionFunc, Payload: 256},
			want:  []byte{5, 0, 0, 0, 0, 1, 0, 0},
		},
		{
			name:  "big endian sample rate",
			codec: BigEndianCodec,
			msg:   Message{Command: SampleRate, Payload: 44100},
			want:  []byte{0, 0, 0, 3, 0, 0, 0xac, 0x44},
		},
		{
			name:  "little endian error sentinel",
			codec: LittleEndianCodec,
			msg:   Message{Command: Error, Payload: -1},
			want:  []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
		},
		{
			name:  "little endian close",
			codec: LittleEndianCodec,
			msg:   Message{Command: PluginClose},
			want:  []byte{6, 0, 0, 0, 0, 0, 0, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			buf := make([]byte, MessageSize)
			if err := tt.codec.Encode(buf, tt.msg); err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			if !bytes.Equal(buf, tt.want) {
				t.Errorf("Encode() = %v, want %v", buf, tt.want)
			}

			got, err := tt.codec.Decode(buf)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if got != tt.msg {
				t.Errorf("Decode() = %v, want %v", got, tt.msg)
			}
		})
	}
}

func TestNativeCodec_MatchesHostOrder(t *testing.T) {
	t.Parallel()

	buf := make([]byte, MessageSize)
	if err := NativeCodec.Encode(buf, Message{Command: Channels, Payload: 2}); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	if got := binary.NativeEndian.Uint32(buf[0:4]); got != 2 {
		t.Errorf("command word = %d, want 2", got)
	}
	if got := binary.NativeEndian.Uint32(buf[4:8]); got != 2 {
		t.Errorf("payload word = %d, want 2", got)
	}

	// zero value codec behaves like NativeCodec
	var zero Codec
	other := make([]byte, MessageSize)
	_ = zero.Encode(other, Message{Command: Channels, Payload: 2})
	if !bytes.Equal(buf, other) {
		t.Errorf("zero Codec encoding = %v, want %v", other, buf)
	}
}

func TestCodec_DecodeUnknownCommand(t *testing.T) {
	t.Parallel()

	for _, cmd := range []int32{-2, 7, 100, math.MaxInt32} {
		buf := make([]byte, MessageSize)
		binary.LittleEndian.PutUint32(buf, uint32(cmd))

		_, err := LittleEndianCodec.Decode(buf)
		if !errors.Is(err, ErrUnknownCommand) {
			t.Errorf("Decode(command=%d) error = %v, want ErrUnknownCommand", cmd, err)
		}
	}
}

func TestCodec_ShortBuffer(t *testing.T) {
	t.Parallel()

	if err := NativeCodec.Encode(make([]byte, 7), Message{}); !errors.Is(err, ErrShortBuffer) {
		t.Errorf("Encode() error = %v, want ErrShortBuffer", err)
	}
	if _, err := NativeCodec.Decode(make([]byte, 4)); !errors.Is(err, ErrShortBuffer) {
		t.Errorf("Decode() error = %v, want ErrShortBuffer", err)
	}
}

func TestCommand_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		cmd  Command
		want string
	}{
		{Error, "ERROR"},
		{Success, "SUCCESS"},
		{ModuleInit, "MODULE_INIT"},
		{Channels, "CHANNELS"},
		{SampleRate, "SAMPLE_RATE"},
		{PluginInit, "PLUGIN_INIT"},
		{BeatDetectionFunc, "BEAT_DETECTION_FUNC"},
		{PluginClose, "PLUGIN_CLOSE"},
		{Command(42), "Command(42)"},
	}

	for _, tt := range tests {
		if got := tt.cmd.String(); got != tt.want {
			t.Errorf("Command(%d).String() = %q, want %q", int32(tt.cmd), got, tt.want)
		}
	}
}

func TestCodec_Samples(t *testing.T) {
	t.Parallel()

	src := []float32{0, 1, -1, 0.5, -0.25, float32(math.Inf(1))}
	wire := LittleEndianCodec.AppendSamples(nil, src)

	if len(wire) != len(src)*SampleSize {
		t.Fatalf("AppendSamples() len = %d, want %d", len(wire), len(src)*SampleSize)
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(wire[4:8])); got != 1 {
		t.Errorf("sample[1] = %v, want 1", got)
	}

	dst := make([]float32, len(src))
	if n := LittleEndianCodec.DecodeSamples(dst, wire); n != len(src) {
		t.Fatalf("DecodeSamples() = %d, want %d", n, len(src))
	}
	for i := range src {
		if dst[i] != src[i] {
			t.Errorf("sample[%d] = %v, want %v", i, dst[i], src[i])
		}
	}
}

func TestCodec_AppendSamples_ZeroAllocs(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping allocation test in short mode")
	}

	src := make([]float32, 512)
	buf := make([]byte, 0, len(src)*SampleSize)

	allocs := testing.AllocsPerRun(100, func() {
		buf = NativeCodec.AppendSamples(buf[:0], src)
	})
	if allocs > 0 {
		t.Errorf("AppendSamples allocated %v times, want 0", allocs)
	}
}

func BenchmarkCodec_AppendSamples(b *testing.B) {
	// one 256 frame stereo period
	src := make([]float32, 512)
	for i := range src {
		src[i] = float32(math.Sin(float64(i) * 0.1))
	}
	buf := make([]byte, 0, len(src)*SampleSize)

	b.ReportAllocs()
	b.ResetTimer()
	for range b.N {
		buf = NativeCodec.AppendSamples(buf[:0], src)
	}
}
