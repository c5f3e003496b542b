// SPDX-License-Identifier: EPL-2.0

// Package beatmap reads the shared beat-count region the gbdserver
// publishes.
//
// The region is a page-sized POSIX shared memory object holding NumSlots
// contiguous 32-bit counters. The server increments a counter each time
// it detects an event of that kind. Consumers poll the region and compare
// every slot with the value they saw last time:
//
//	var prev beatmap.Snapshot
//	for {
//		var ev beatmap.Events
//		prev, ev = beatmap.Poll(region, prev)
//		if ev.Has(beatmap.Kickdrum) {
//			// flash
//		}
//	}
//
// A change is an edge, not a queue. Several increments between two polls
// are reported as one event.
package beatmap
