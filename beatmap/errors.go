// SPDX-License-Identifier: EPL-2.0

package beatmap

import "errors"

var (
	// ErrInvalidSlot is returned when a slot index is out of range.
	ErrInvalidSlot = errors.New("beatmap: invalid slot")

	// ErrRegionTooSmall is returned when the backing object cannot hold
	// every slot.
	ErrRegionTooSmall = errors.New("beatmap: region too small")

	// ErrClosed is returned by operations on a closed region.
	ErrClosed = errors.New("beatmap: region closed")
)
