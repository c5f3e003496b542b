// SPDX-License-Identifier: EPL-2.0

package client

import "errors"

var (
	ErrEstablish         = errors.New("failed to connect with gbdserver")
	ErrHandshake         = errors.New("gbdserver handshake failed")
	ErrRemoteError       = errors.New("gbdserver answered ERROR")
	ErrInvalidSampleRate = errors.New("sample rate must be positive")
	ErrInvalidState      = errors.New("operation not valid in current session state")
	ErrUnknownOverflow   = errors.New("unknown overflow policy")
)
