// SPDX-License-Identifier: EPL-2.0

package protocol

import "errors"

var (
	ErrIO             = errors.New("stream i/o failure")
	ErrShortRead      = errors.New("peer closed connection mid-message")
	ErrUnknownCommand = errors.New("unknown command")
	ErrShortBuffer    = errors.New("buffer too small")
)
