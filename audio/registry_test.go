// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/ik5/gbdclient/internal/audiotest"
)

func TestRegistry_GetNormalizesNames(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	d := DecoderFunc(func(io.Reader) (Source, error) { return nil, nil })
	r.Register(d, "wav", ".WAVE")

	for _, name := range []string{"wav", ".wav", "WAV", "wave", ".Wave"} {
		if _, ok := r.Get(name); !ok {
			t.Errorf("Get(%q) not found", name)
		}
	}
	if _, ok := r.Get("mp3"); ok {
		t.Error("Get(mp3) found an unregistered decoder")
	}

	if got := r.Formats(); !slices.Equal(got, []string{"wav", "wave"}) {
		t.Errorf("Formats() = %v", got)
	}
}

func TestRegistry_Open(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "tone.raw")
	if err := os.WriteFile(path, []byte("payload"), 0o600); err != nil {
		t.Fatal(err)
	}

	mock := audiotest.Silence(8000, 1, 10)
	var seen []byte

	r := NewRegistry()
	r.Register(DecoderFunc(func(rd io.Reader) (Source, error) {
		b, err := io.ReadAll(rd)
		seen = b
		return mock, err
	}), "raw")

	src, err := r.Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if !bytes.Equal(seen, []byte("payload")) {
		t.Errorf("decoder saw %q", seen)
	}
	if src.SampleRate() != 8000 {
		t.Errorf("SampleRate() = %d", src.SampleRate())
	}
	if err := src.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if mock.Closed() != 1 {
		t.Errorf("decoder source closed %d times, want 1", mock.Closed())
	}
}

func TestRegistry_OpenErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.raw")
	if err := os.WriteFile(bad, nil, 0o600); err != nil {
		t.Fatal(err)
	}

	decodeErr := errors.New("corrupt")
	r := NewRegistry()
	r.Register(DecoderFunc(func(io.Reader) (Source, error) { return nil, decodeErr }), "raw")

	if _, err := r.Open(filepath.Join(dir, "song.flac")); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("Open(flac) error = %v, want ErrUnknownFormat", err)
	}
	if _, err := r.Open(filepath.Join(dir, "missing.raw")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Open(missing) error = %v, want ErrNotExist", err)
	}
	if _, err := r.Open(bad); !errors.Is(err, decodeErr) {
		t.Errorf("Open(bad) error = %v, want decode error", err)
	}
}
