// SPDX-License-Identifier: EPL-2.0

// Package host drives a client.Plugin the way an audio server does: one
// fixed-size period at a time, from a decoded source into a playback
// sink. It stands in for the sound system the plugin is normally loaded
// by, so the gbd tee can run from the command line.
package host
