// SPDX-License-Identifier: EPL-2.0

// Package utils holds the per-sample helpers shared by the decoders, the
// resampler and the WAV sink.
package utils
