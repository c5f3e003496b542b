// SPDX-License-Identifier: EPL-2.0

package client

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/ik5/gbdclient/config"
	"github.com/ik5/gbdclient/protocol"
)

const stereo = config.StereoChannels

// State is the lifecycle state of a Session.
type State int32

const (
	Connected State = iota
	ModuleLoaded
	ChannelsSet
	RateSet
	Streaming
	Failed
	Closed
)

func (s State) String() string {
	switch s {
	case Connected:
		return "connected"
	case ModuleLoaded:
		return "module-loaded"
	case ChannelsSet:
		return "channels-set"
	case RateSet:
		return "rate-set"
	case Streaming:
		return "streaming"
	case Failed:
		return "failed"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// Session is one connection to a gbdserver. It owns the connection for its
// whole life and is driven by a single audio thread.
type Session struct {
	conn     net.Conn
	remote   string
	codec    protocol.Codec
	channels int
	opts     options

	logger  *zap.Logger
	metrics *sessionMetrics
	sender  *sender

	state      atomic.Int32
	sampleRate int

	// scratch for synchronous forwarding
	ctrl    [protocol.MessageSize]byte
	payload []byte

	closeOnce sync.Once
}

// New validates p, connects to the gbdserver and loads the server-side
// analysis module. The session is left in the ModuleLoaded state; Init
// completes the handshake.
//
// Configuration errors are reported before any network activity. When the
// module load fails the connection is torn down.
func New(ctx context.Context, p config.Plugin, opts ...Option) (*Session, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	o := applyOptions(opts)
	remote := net.JoinHostPort(p.IPAddr, p.Port)
	logger := o.logger.With(zap.String("remote", remote))

	m, err := newSessionMetrics(o.registerer, remote)
	if err != nil {
		return nil, fmt.Errorf("registering metrics: %w", err)
	}

	conn, err := dial(ctx, p.IPAddr, p.Port, &o)
	if err != nil {
		logger.Error("failed to connect with gbdserver", zap.Error(err))
		return nil, err
	}

	s := &Session{
		conn:     conn,
		remote:   remote,
		codec:    o.codec,
		channels: p.Channels,
		opts:     o,
		logger:   logger,
		metrics:  m,
	}
	s.setState(Connected)

	if err := s.loadModule(ctx); err != nil {
		return nil, err
	}

	return s, nil
}

// Open runs New and Init with the settings of cfg.
func Open(ctx context.Context, cfg config.Config, sampleRate int, opts ...Option) (*Session, error) {
	base, err := ConfigOptions(cfg)
	if err != nil {
		return nil, err
	}

	s, err := New(ctx, cfg.Plugin, append(base, opts...)...)
	if err != nil {
		return nil, err
	}
	if err := s.Init(sampleRate); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Session) State() State { return State(s.state.Load()) }

func (s *Session) setState(st State) { s.state.Store(int32(st)) }

// Channels returns the channel count announced to the server.
func (s *Session) Channels() int { return s.channels }

// SampleRate returns the rate announced by Init.
func (s *Session) SampleRate() int { return s.sampleRate }

// RemoteAddr returns the address of the connected gbdserver.
func (s *Session) RemoteAddr() net.Addr { return s.conn.RemoteAddr() }

// Dropped returns how many blocks the send queue discarded.
func (s *Session) Dropped() uint64 {
	if s.sender == nil {
		return 0
	}
	return s.sender.dropped.Load()
}

func (s *Session) loadModule(ctx context.Context) error {
	s.beginExchange(ctx)
	defer s.endExchange()

	if err := s.request(protocol.Message{Command: protocol.ModuleInit}); err != nil {
		return s.fail("load analysis module", err)
	}
	s.setState(ModuleLoaded)

	return nil
}

// Init announces the stream parameters and starts the server-side plugin.
// Channels and SampleRate are notifications; only PluginInit is
// acknowledged. Any failure tears the session down.
func (s *Session) Init(sampleRate int) error {
	if st := s.State(); st != ModuleLoaded {
		return fmt.Errorf("%w: init in state %s", ErrInvalidState, st)
	}
	if sampleRate <= 0 {
		return s.fail("sample rate", fmt.Errorf("%w: %d", ErrInvalidSampleRate, sampleRate))
	}

	s.beginExchange(context.Background())
	defer s.endExchange()

	if err := s.codec.WriteMessage(s.conn, protocol.Message{Command: protocol.Channels, Payload: int32(s.channels)}); err != nil {
		return s.fail("channels", err)
	}
	s.setState(ChannelsSet)

	if err := s.codec.WriteMessage(s.conn, protocol.Message{Command: protocol.SampleRate, Payload: int32(sampleRate)}); err != nil {
		return s.fail("sample rate", err)
	}
	s.setState(RateSet)

	if err := s.request(protocol.Message{Command: protocol.PluginInit}); err != nil {
		return s.fail("plugin init", err)
	}

	s.sampleRate = sampleRate
	if depth := s.opts.queueDepth; depth > 0 {
		s.sender = newSender(s.conn, s.codec, depth, &s.opts, s.logger, s.metrics)
		s.sender.start()
	}
	s.setState(Streaming)

	s.logger.Info("gbd session streaming",
		zap.Int("sample_rate", sampleRate),
		zap.Int("channels", s.channels),
		zap.Int("queue_depth", s.opts.queueDepth),
		zap.Stringer("overflow", s.opts.overflow))

	return nil
}

// request sends m and waits for its acknowledgment.
func (s *Session) request(m protocol.Message) error {
	if err := s.codec.WriteMessage(s.conn, m); err != nil {
		return err
	}

	ack, err := s.codec.ReadMessage(s.conn)
	if err != nil {
		return fmt.Errorf("%s ack: %w", m.Command, err)
	}
	if ack.Command == protocol.Error {
		return fmt.Errorf("%s: %w", m.Command, ErrRemoteError)
	}

	return nil
}

func (s *Session) beginExchange(ctx context.Context) {
	var deadline time.Time
	if d := s.opts.handshakeTimeout; d > 0 {
		deadline = time.Now().Add(d)
	}
	if cd, ok := ctx.Deadline(); ok && (deadline.IsZero() || cd.Before(deadline)) {
		deadline = cd
	}
	if !deadline.IsZero() {
		_ = s.conn.SetDeadline(deadline)
	}
}

func (s *Session) endExchange() {
	_ = s.conn.SetDeadline(time.Time{})
}

// fail tears the session down after a handshake failure.
func (s *Session) fail(step string, err error) error {
	s.logger.Error("gbd handshake failed",
		zap.String("step", step),
		zap.Stringer("state", s.State()),
		zap.Error(err))

	s.closeOnce.Do(s.teardown)
	s.setState(Failed)

	return fmt.Errorf("%w: %s: %w", ErrHandshake, step, err)
}

// Transfer forwards one block to the gbdserver and copies it from src to
// dst. The copy happens whatever the fate of the remote write, and the
// full frame count is returned. Blocks of zero or negative size are
// neither forwarded nor copied.
func (s *Session) Transfer(dst, src []float32, frames int) int {
	frames = clampFrames(dst, src, frames, s.channels)
	if frames == 0 {
		return 0
	}

	n := frames * s.channels
	if s.State() == Streaming {
		if s.sender != nil {
			s.sender.submit(frames, src[:n])
		} else {
			s.forward(frames, src[:n])
		}
	}

	copy(dst[:n], src[:n])

	return frames
}

// forward writes one block on the calling thread. Failures are logged and
// the block is lost; nothing is retried.
func (s *Session) forward(frames int, samples []float32) {
	if d := s.opts.writeTimeout; d > 0 {
		_ = s.conn.SetWriteDeadline(time.Now().Add(d))
	}

	_ = s.codec.Encode(s.ctrl[:], protocol.Message{Command: protocol.BeatDetectionFunc, Payload: int32(frames)})
	if _, err := protocol.WriteFull(s.conn, s.ctrl[:]); err != nil {
		s.metrics.recordFailure()
		s.logger.Warn("gbd PCM cmd write failed", zap.Int("frames", frames), zap.Error(err))
	}

	s.payload = s.codec.AppendSamples(s.payload[:0], samples)
	if _, err := protocol.WriteFull(s.conn, s.payload); err != nil {
		s.metrics.recordFailure()
		s.logger.Warn("gbd PCM data write failed", zap.Int("frames", frames), zap.Error(err))
		return
	}

	s.metrics.recordForward(len(s.ctrl) + len(s.payload))
}

// Close notifies the server and releases the connection. It is safe to
// call more than once; teardown failures are logged, not returned.
func (s *Session) Close() error {
	s.closeOnce.Do(s.teardown)
	return nil
}

func (s *Session) teardown() {
	deadline := time.Now().Add(s.opts.closeTimeout)
	if s.sender != nil {
		s.sender.stop(deadline)
	}

	_ = s.conn.SetWriteDeadline(time.Now().Add(s.opts.closeTimeout))
	if err := s.codec.WriteMessage(s.conn, protocol.Message{Command: protocol.PluginClose}); err != nil {
		s.logger.Warn("gbd server-side PCM plugin release failed", zap.Error(err))
	}
	if err := s.conn.Close(); err != nil {
		s.logger.Warn("closing gbdserver connection", zap.Error(err))
	}

	s.setState(Closed)
	s.logger.Debug("gbd session closed")
}
