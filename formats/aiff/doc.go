// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes AIFF files through go-audio/aiff.
package aiff
