// SPDX-License-Identifier: EPL-2.0

// Package gbdtest provides an in-process gbdserver for tests.
package gbdtest

import (
	"errors"
	"net"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/ik5/gbdclient/protocol"
)

// Server accepts gbdclient sessions and records what they send.
type Server struct {
	ln    net.Listener
	codec protocol.Codec
	acks  map[protocol.Command]protocol.Command

	// stall blocks the reader after the handshake when set.
	stall chan struct{}

	onBlock func(frames int, samples []float32)

	mu       sync.Mutex
	msgs     []protocol.Message
	blocks   [][]float32
	replies  int
	sessions int
	ended    chan struct{}

	wg sync.WaitGroup
}

// Option configures a Server.
type Option func(*Server)

// WithAck makes the server answer cmd with ack instead of Success.
func WithAck(cmd, ack protocol.Command) Option {
	return func(s *Server) { s.acks[cmd] = ack }
}

// WithCodec sets the wire codec. NativeCodec is the default.
func WithCodec(c protocol.Codec) Option {
	return func(s *Server) { s.codec = c }
}

// WithStall stops reading after PluginInit until the channel is closed.
func WithStall(ch chan struct{}) Option {
	return func(s *Server) { s.stall = ch }
}

// WithBlockHook is called for every audio block received.
func WithBlockHook(fn func(frames int, samples []float32)) Option {
	return func(s *Server) { s.onBlock = fn }
}

func newServer(opts ...Option) *Server {
	s := &Server{
		codec: protocol.NativeCodec,
		acks:  make(map[protocol.Command]protocol.Command),
		ended: make(chan struct{}, 16),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// NewServer listens on a loopback port until the test ends.
func NewServer(tb testing.TB, opts ...Option) *Server {
	tb.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		tb.Fatalf("listen: %v", err)
	}

	s := newServer(opts...)
	s.ln = ln

	s.wg.Add(1)
	go s.accept()

	tb.Cleanup(s.Close)

	return s
}

// NewConnServer serves sessions handed to ServeConn, without a listener.
func NewConnServer(opts ...Option) *Server {
	return newServer(opts...)
}

func (s *Server) accept() {
	defer s.wg.Done()

	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.ServeConn(conn)
		}()
	}
}

// Host returns the listening host.
func (s *Server) Host() string {
	host, _, _ := net.SplitHostPort(s.ln.Addr().String())
	return host
}

// Port returns the listening port.
func (s *Server) Port() string {
	return strconv.Itoa(s.ln.Addr().(*net.TCPAddr).Port)
}

// Close stops accepting and waits for running sessions.
func (s *Server) Close() {
	if s.ln != nil {
		_ = s.ln.Close()
	}
	s.wg.Wait()
}

// ServeConn runs one session on conn until the peer closes it or sends
// PluginClose.
func (s *Server) ServeConn(conn net.Conn) {
	defer func() {
		_ = conn.Close()
		select {
		case s.ended <- struct{}{}:
		default:
		}
	}()

	s.mu.Lock()
	s.sessions++
	s.mu.Unlock()

	channels := 2
	for {
		m, err := s.codec.ReadMessage(conn)
		if err != nil {
			return
		}
		s.record(m)

		switch m.Command {
		case protocol.ModuleInit, protocol.PluginInit:
			ack := protocol.Success
			if a, ok := s.acks[m.Command]; ok {
				ack = a
			}
			if err := s.codec.WriteMessage(conn, protocol.Message{Command: ack}); err != nil {
				return
			}
			s.mu.Lock()
			s.replies++
			s.mu.Unlock()

			if m.Command == protocol.PluginInit && s.stall != nil {
				<-s.stall
			}
		case protocol.Channels:
			channels = int(m.Payload)
		case protocol.BeatDetectionFunc:
			if !s.readBlock(conn, int(m.Payload), channels) {
				return
			}
		case protocol.PluginClose:
			return
		}
	}
}

func (s *Server) readBlock(conn net.Conn, frames, channels int) bool {
	if frames <= 0 {
		return true
	}

	raw := make([]byte, frames*channels*protocol.SampleSize)
	n, err := protocol.ReadFull(conn, raw)
	if err != nil || n < len(raw) {
		return false
	}

	samples := make([]float32, frames*channels)
	s.codec.DecodeSamples(samples, raw)

	s.mu.Lock()
	s.blocks = append(s.blocks, samples)
	s.mu.Unlock()

	if s.onBlock != nil {
		s.onBlock(frames, samples)
	}

	return true
}

func (s *Server) record(m protocol.Message) {
	s.mu.Lock()
	s.msgs = append(s.msgs, m)
	s.mu.Unlock()
}

// Messages returns every control message received so far.
func (s *Server) Messages() []protocol.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]protocol.Message(nil), s.msgs...)
}

// Commands returns the command of every message received so far.
func (s *Server) Commands() []protocol.Command {
	msgs := s.Messages()
	cmds := make([]protocol.Command, len(msgs))
	for i, m := range msgs {
		cmds[i] = m.Command
	}

	return cmds
}

// Blocks returns the decoded audio blocks received so far.
func (s *Server) Blocks() [][]float32 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([][]float32(nil), s.blocks...)
}

// Replies returns how many acknowledgments were sent.
func (s *Server) Replies() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.replies
}

// Sessions returns how many sessions were served.
func (s *Server) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions
}

var errTimeout = errors.New("timed out waiting for session end")

// WaitSessionEnd blocks until one session has finished.
func (s *Server) WaitSessionEnd(timeout time.Duration) error {
	select {
	case <-s.ended:
		return nil
	case <-time.After(timeout):
		return errTimeout
	}
}
