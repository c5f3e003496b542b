// SPDX-License-Identifier: EPL-2.0

// Package client tees an audio stream to a gbdserver.
//
// A Session sits inside a playback pipeline: the host hands it one period
// of interleaved stereo float32 samples at a time, the session forwards a
// copy to the remote beat detector and passes the original to the
// downstream sink untouched.
//
// # Lifecycle
//
//	Connected --MODULE_INIT/ack--> ModuleLoaded --CHANNELS--> ChannelsSet
//	  --SAMPLE_RATE--> RateSet --PLUGIN_INIT/ack--> Streaming
//
// New validates the configuration, connects and loads the analysis
// module. Init sends the stream parameters and starts the remote plugin.
// A failure at any step closes the connection and leaves the session in
// the Failed state; no audio is ever forwarded for it.
//
//	s, err := client.Open(ctx, cfg, 44100, client.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
//	for {
//	    frames := s.Transfer(dst, src, period)
//	    // dst now holds a copy of src
//	}
//
// # Forwarding
//
// By default Transfer writes on the calling thread and a stalled server
// stalls playback. WithQueue moves the writes to a sender goroutine
// behind a bounded queue: Transfer never waits for the network and blocks
// are dropped, whole, when the queue is full.
// WithWriteTimeout bounds each write in either mode.
//
// Remote failures while streaming are logged and counted, never returned:
// local playback always continues.
//
// # Plugin
//
// Session and Null both implement Plugin, the Init/Transfer/Close table an
// audio host drives.
package client
