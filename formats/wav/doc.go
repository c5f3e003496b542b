// SPDX-License-Identifier: EPL-2.0

// Package wav decodes RIFF/WAVE integer PCM files through go-audio/wav.
//
// 8, 16, 24 and 32-bit little-endian PCM are supported. Extra chunks
// (LIST, bext, cue) before the data chunk are skipped by the underlying
// parser. IEEE float and compressed encodings are rejected.
package wav
