// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MPEG-1/2 Layer III through hajimehoshi/go-mp3.
// Output is always 16-bit stereo at the stream's sample rate.
package mp3
