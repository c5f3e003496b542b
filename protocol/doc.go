// SPDX-License-Identifier: EPL-2.0

// Package protocol implements the gbdserver command protocol.
//
// Every control unit on the wire is an 8 byte Message made of two signed
// 32-bit integers, a Command and a Payload:
//
//	+----------------+----------------+
//	| command int32  | payload int32  |
//	+----------------+----------------+
//
// There is no length prefix and no byte-order marker. Both peers are
// assumed to share integer width and endianness, so the default codec,
// NativeCodec, uses the host byte order. LittleEndianCodec and
// BigEndianCodec are available when both peers agree on a fixed order.
//
// # Commands
//
//	Error             -1  negative acknowledgment
//	Success            0  positive acknowledgment
//	ModuleInit         1  load the server-side analysis module
//	Channels           2  payload: channel count (always 2)
//	SampleRate         3  payload: sample rate in Hz
//	PluginInit         4  start the server-side plugin
//	BeatDetectionFunc  5  payload: frames in the audio block that follows
//	PluginClose        6  end of session
//
// A BeatDetectionFunc message is immediately followed by
// payload × channels × 4 bytes of interleaved IEEE-754 float32 samples.
//
// # Stream I/O
//
// ReadFull and WriteFull mask partial transfers and interrupted system
// calls:
//
//	n, err := protocol.ReadFull(conn, buf)
//	if err != nil {
//	    // I/O failure, wraps ErrIO
//	}
//	if n < len(buf) {
//	    // peer closed the connection
//	}
//
// End-of-stream is never reported as an error by ReadFull; a short count
// is the signal. WriteMessage and ReadMessage combine a Codec with the
// full-transfer primitives.
package protocol
