// SPDX-License-Identifier: EPL-2.0

package formats

import (
	"github.com/ik5/gbdclient/audio"
	"github.com/ik5/gbdclient/formats/aiff"
	"github.com/ik5/gbdclient/formats/mp3"
	"github.com/ik5/gbdclient/formats/vorbis"
	"github.com/ik5/gbdclient/formats/wav"
)

// Register adds every bundled decoder to r under its file extensions.
func Register(r *audio.Registry) {
	r.Register(wav.Decoder{}, wav.Extensions...)
	r.Register(aiff.Decoder{}, aiff.Extensions...)
	r.Register(mp3.Decoder{}, mp3.Extensions...)
	r.Register(vorbis.Decoder{}, vorbis.Extensions...)
}

// Default returns a registry holding every bundled decoder.
func Default() *audio.Registry {
	r := audio.NewRegistry()
	Register(r)
	return r
}
