// SPDX-License-Identifier: EPL-2.0

package beatmap

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"
)

// ShmDir is where POSIX shared memory objects live on Linux.
const ShmDir = "/dev/shm"

// Mapped is a Region backed by a shared mapping of a file.
type Mapped struct {
	mu    sync.Mutex
	data  []byte
	slots *[NumSlots]int32
}

// Open maps the named shared memory object, creating it when absent.
func Open(name string) (*Mapped, error) {
	return OpenFile(filepath.Join(ShmDir, name))
}

// Create maps the named shared memory object and zeroes every counter.
func Create(name string) (*Mapped, error) {
	return CreateFile(filepath.Join(ShmDir, name))
}

// OpenFile maps path. A missing or short file is created and grown to
// one page; existing counters are kept.
func OpenFile(path string) (*Mapped, error) {
	return mapFile(path, os.O_RDWR|os.O_CREATE)
}

// CreateFile maps path after truncating it, so every counter starts at
// zero.
func CreateFile(path string) (*Mapped, error) {
	return mapFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC)
}

func mapFile(path string, flag int) (*Mapped, error) {
	f, err := os.OpenFile(path, flag, 0o666)
	if err != nil {
		return nil, fmt.Errorf("beatmap: open %s: %w", path, err)
	}
	defer f.Close()

	size := os.Getpagesize()
	if size < NumSlots*4 {
		return nil, ErrRegionTooSmall
	}

	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("beatmap: stat %s: %w", path, err)
	}
	if fi.Size() < int64(size) {
		if err := f.Truncate(int64(size)); err != nil {
			return nil, fmt.Errorf("beatmap: truncate %s: %w", path, err)
		}
	}

	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("beatmap: mmap %s: %w", path, err)
	}

	return &Mapped{
		data:  data,
		slots: (*[NumSlots]int32)(unsafe.Pointer(&data[0])),
	}, nil
}

// Load reads every counter with an atomic 32-bit load. A closed region
// reads as all zeros.
func (m *Mapped) Load() Snapshot {
	var s Snapshot

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.slots == nil {
		return s
	}
	for i := range m.slots {
		s[i] = atomic.LoadInt32(&m.slots[i])
	}
	return s
}

// Add increments slot by delta. It is the producer side of the region.
func (m *Mapped) Add(slot Slot, delta int32) error {
	if !slot.Valid() {
		return ErrInvalidSlot
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.slots == nil {
		return ErrClosed
	}
	atomic.AddInt32(&m.slots[slot], delta)
	return nil
}

// Close unmaps the region. The shared object itself is left in place.
func (m *Mapped) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.data == nil {
		return nil
	}

	err := unix.Munmap(m.data)
	m.data = nil
	m.slots = nil
	if err != nil {
		return fmt.Errorf("beatmap: munmap: %w", err)
	}
	return nil
}
