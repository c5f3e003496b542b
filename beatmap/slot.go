// SPDX-License-Identifier: EPL-2.0

package beatmap

import (
	"math/bits"
	"strconv"
)

// Slot indexes one counter in the region.
type Slot int

const (
	Kickdrum Slot = iota
	Snare
	Cymbals
	AvgEnergyL
	AvgEnergyR
	Reserved0
	Reserved1
	Reserved2
	Reserved3
	Bassline

	// NumSlots is the number of counters in the region.
	NumSlots = int(Bassline) + 1
)

// RegionName is the well-known shared memory object name.
const RegionName = "gbd"

var slotNames = [NumSlots]string{
	"kickdrum", "snare", "cymbals", "avg_energy_l", "avg_energy_r",
	"reserved0", "reserved1", "reserved2", "reserved3", "bassline",
}

// Valid reports whether s is inside the region.
func (s Slot) Valid() bool { return s >= 0 && int(s) < NumSlots }

func (s Slot) String() string {
	if !s.Valid() {
		return "Slot(" + strconv.Itoa(int(s)) + ")"
	}
	return slotNames[s]
}

// Snapshot is one observation of every counter.
type Snapshot [NumSlots]int32

// Events is a set of slots that changed between two snapshots.
type Events uint16

// Has reports whether s changed.
func (e Events) Has(s Slot) bool {
	return s.Valid() && e&(1<<uint(s)) != 0
}

// Len returns the number of changed slots.
func (e Events) Len() int { return bits.OnesCount16(uint16(e)) }

// Slots lists the changed slots in index order.
func (e Events) Slots() []Slot {
	if e == 0 {
		return nil
	}

	out := make([]Slot, 0, e.Len())
	for s := range Slot(NumSlots) {
		if e.Has(s) {
			out = append(out, s)
		}
	}
	return out
}

// Diff returns the slots whose values differ between prev and cur.
func Diff(prev, cur Snapshot) Events {
	var e Events
	for i := range cur {
		if cur[i] != prev[i] {
			e |= 1 << uint(i)
		}
	}
	return e
}
