// SPDX-License-Identifier: EPL-2.0

package protocol

import "math"

// SampleSize is the wire size of one float32 sample.
const SampleSize = 4

// AppendSamples appends the wire form of src to dst and returns the
// extended slice. It does not allocate when dst has enough capacity.
func (c Codec) AppendSamples(dst []byte, src []float32) []byte {
	need := len(dst) + len(src)*SampleSize
	if cap(dst) < need {
		grown := make([]byte, len(dst), need)
		copy(grown, dst)
		dst = grown
	}

	o := c.order()
	off := len(dst)
	dst = dst[:need]
	for i, s := range src {
		o.PutUint32(dst[off+i*SampleSize:], math.Float32bits(s))
	}

	return dst
}

// DecodeSamples fills dst from the wire form in src and returns the number
// of samples decoded. Trailing bytes that do not form a full sample are
// ignored.
func (c Codec) DecodeSamples(dst []float32, src []byte) int {
	n := min(len(dst), len(src)/SampleSize)

	o := c.order()
	for i := range n {
		dst[i] = math.Float32frombits(o.Uint32(src[i*SampleSize:]))
	}

	return n
}
