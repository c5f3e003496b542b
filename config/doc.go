// SPDX-License-Identifier: EPL-2.0

// Package config loads the gbdclient configuration.
//
// The document mirrors the keys of the ALSA plugin definition the client
// replaces, plus a few runtime settings:
//
//	ipaddr: 192.168.1.20      # required, gbdserver host
//	port: "8888"              # required, service name or number
//	channels: 2               # optional, only 2 is accepted
//	slave:                    # opaque, handed to the playback sink
//	  type: wav
//	  path: out.wav
//
//	queue_depth: 32           # 0 forwards synchronously from Transfer
//	overflow: drop_oldest     # or drop_newest
//	write_timeout: 50ms       # 0 disables the per-write deadline
//	dial_timeout: 2s
//	byte_order: native        # native, little or big
//	metrics_addr: ":9108"
//	log:
//	  level: info
//	  format: console         # or json
//
// Unknown keys are rejected. GBD_IPADDR and GBD_PORT override the
// document when set.
package config
