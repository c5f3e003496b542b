// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

// Registry maps format names and file extensions to decoders.
type Registry struct {
	mu     sync.RWMutex
	codecs map[string]Decoder
}

func NewRegistry() *Registry {
	return &Registry{codecs: make(map[string]Decoder)}
}

// Register binds d to every given name. Names are matched without case
// and without a leading dot, so "wav", ".WAV" and "Wav" are the same key.
func (r *Registry) Register(d Decoder, names ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, n := range names {
		r.codecs[normalize(n)] = d
	}
}

func (r *Registry) Get(format string) (Decoder, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.codecs[normalize(format)]
	return d, ok
}

// Formats lists the registered names in sorted order.
func (r *Registry) Formats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.codecs))
	for k := range r.codecs {
		out = append(out, k)
	}
	slices.Sort(out)

	return out
}

// Open decodes the file at path with the decoder registered for its
// extension. Closing the returned Source closes the file.
func (r *Registry) Open(path string) (Source, error) {
	ext := filepath.Ext(path)
	d, ok := r.Get(ext)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	src, err := d.Decode(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	return &fileSource{Source: src, file: f}, nil
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimPrefix(name, "."))
}

type fileSource struct {
	Source
	file io.Closer
}

func (s *fileSource) Close() error {
	return errors.Join(s.Source.Close(), s.file.Close())
}
