// SPDX-License-Identifier: EPL-2.0

package config

import "errors"

var (
	ErrInvalidConfig       = errors.New("invalid configuration")
	ErrMissingAddress      = errors.New(`missing "ipaddr" or "port"`)
	ErrUnsupportedChannels = errors.New("only stereo streams supported")
	ErrMissingSlave        = errors.New("slave configuration required")
)
