// SPDX-License-Identifier: EPL-2.0

package protocol

import (
	"errors"
	"fmt"
	"io"
	"syscall"
)

func interrupted(err error) bool {
	return errors.Is(err, syscall.EINTR)
}

// ReadFull reads until buf is full or the peer closes the stream.
//
// The returned count is smaller than len(buf) only on end-of-stream, which
// is not an error. Interrupted reads are retried. Any other failure wraps
// ErrIO.
func ReadFull(r io.Reader, buf []byte) (int, error) {
	count := 0
	for count < len(buf) {
		n, err := r.Read(buf[count:])
		count += n
		if err == nil {
			continue
		}
		if errors.Is(err, io.EOF) {
			return count, nil
		}
		if interrupted(err) {
			continue
		}
		return count, fmt.Errorf("%w: read: %w", ErrIO, err)
	}

	return count, nil
}

// WriteFull writes all of buf. Interrupted writes are retried; a write that
// makes no progress, or any other failure, wraps ErrIO.
func WriteFull(w io.Writer, buf []byte) (int, error) {
	count := 0
	for count < len(buf) {
		n, err := w.Write(buf[count:])
		if n > 0 {
			count += n
		}
		if err != nil {
			if interrupted(err) {
				continue
			}
			return count, fmt.Errorf("%w: write: %w", ErrIO, err)
		}
		if n <= 0 {
			return count, fmt.Errorf("%w: write: %w", ErrIO, io.ErrShortWrite)
		}
	}

	return count, nil
}

// WriteMessage encodes m and writes it in full.
func (c Codec) WriteMessage(w io.Writer, m Message) error {
	var buf [MessageSize]byte
	if err := c.Encode(buf[:], m); err != nil {
		return err
	}

	if _, err := WriteFull(w, buf[:]); err != nil {
		return fmt.Errorf("%s: %w", m.Command, err)
	}

	return nil
}

// ReadMessage reads one complete Message. A peer that closes before all
// eight bytes arrive yields ErrShortRead.
func (c Codec) ReadMessage(r io.Reader) (Message, error) {
	var buf [MessageSize]byte
	n, err := ReadFull(r, buf[:])
	if err != nil {
		return Message{}, err
	}
	if n < MessageSize {
		return Message{}, fmt.Errorf("%w: got %d of %d bytes", ErrShortRead, n, MessageSize)
	}

	return c.Decode(buf[:])
}
