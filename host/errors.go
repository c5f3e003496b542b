// SPDX-License-Identifier: EPL-2.0

package host

import "errors"

var (
	ErrNotStereo       = errors.New("pipeline source must be stereo")
	ErrUnknownSinkType = errors.New("unknown slave type")
	ErrMissingPath     = errors.New("slave path required")
	ErrSinkClosed      = errors.New("sink closed")
)
