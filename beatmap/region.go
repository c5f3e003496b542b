// SPDX-License-Identifier: EPL-2.0

package beatmap

import (
	"context"
	"sync/atomic"
	"time"
)

// DefaultPollInterval is the polling period used when Watch is given a
// non-positive interval.
const DefaultPollInterval = 10 * time.Millisecond

// Region is a readable set of beat counters.
type Region interface {
	Load() Snapshot
}

// Memory is an in-process Region. The zero value is ready to use.
type Memory struct {
	slots [NumSlots]atomic.Int32
}

func (m *Memory) Load() Snapshot {
	var s Snapshot
	for i := range m.slots {
		s[i] = m.slots[i].Load()
	}
	return s
}

// Add increments slot by delta.
func (m *Memory) Add(slot Slot, delta int32) error {
	if !slot.Valid() {
		return ErrInvalidSlot
	}
	m.slots[slot].Add(delta)
	return nil
}

// Poll reads r and reports which slots moved since prev. The returned
// snapshot is the prev for the next call.
func Poll(r Region, prev Snapshot) (Snapshot, Events) {
	cur := r.Load()
	return cur, Diff(prev, cur)
}

// Watch polls r every interval and calls fn whenever at least one slot
// changed. The first poll compares against an all-zero snapshot. Watch
// returns when ctx is done.
func Watch(ctx context.Context, r Region, interval time.Duration, fn func(Snapshot, Events)) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	t := time.NewTicker(interval)
	defer t.Stop()

	var prev Snapshot
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}

		var ev Events
		prev, ev = Poll(r, prev)
		if ev != 0 {
			fn(prev, ev)
		}
	}
}
