// SPDX-License-Identifier: EPL-2.0

package client

import (
	"net"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/ik5/gbdclient/protocol"
)

// sender owns all streaming writes of a queued session. Transfer hands it
// encoded blocks through a bounded channel and never waits for the
// network; when the channel is full a block is dropped according to the
// overflow policy. A block is always written or dropped whole, so the
// remote never sees a control message without its samples.
type sender struct {
	conn         net.Conn
	codec        protocol.Codec
	logger       *zap.Logger
	metrics      *sessionMetrics
	policy       Overflow
	writeTimeout time.Duration

	queue chan *[]byte
	pool  sync.Pool

	quit    chan struct{}
	done    chan struct{}
	flushBy atomic.Int64

	sent    atomic.Uint64
	dropped atomic.Uint64
}

func newSender(conn net.Conn, codec protocol.Codec, depth int, o *options, logger *zap.Logger, m *sessionMetrics) *sender {
	return &sender{
		conn:         conn,
		codec:        codec,
		logger:       logger,
		metrics:      m,
		policy:       o.overflow,
		writeTimeout: o.writeTimeout,
		queue:        make(chan *[]byte, depth),
		quit:         make(chan struct{}),
		done:         make(chan struct{}),
	}
}

func (s *sender) start() {
	go s.run()
}

func (s *sender) buffer(size int) *[]byte {
	if p, ok := s.pool.Get().(*[]byte); ok && cap(*p) >= size {
		*p = (*p)[:0]
		return p
	}

	b := make([]byte, 0, size)
	return &b
}

func (s *sender) recycle(p *[]byte) {
	s.pool.Put(p)
}

// submit encodes one block and queues it without blocking.
func (s *sender) submit(frames int, samples []float32) {
	p := s.buffer(protocol.MessageSize + len(samples)*protocol.SampleSize)

	b := (*p)[:protocol.MessageSize]
	_ = s.codec.Encode(b, protocol.Message{Command: protocol.BeatDetectionFunc, Payload: int32(frames)})
	*p = s.codec.AppendSamples(b, samples)

	s.enqueue(p)
	s.metrics.setQueue(len(s.queue))
}

func (s *sender) enqueue(p *[]byte) {
	select {
	case s.queue <- p:
		return
	default:
	}

	if s.policy == DropNewest {
		s.drop(p)
		return
	}

	select {
	case old := <-s.queue:
		s.drop(old)
	default:
	}

	select {
	case s.queue <- p:
	default:
		s.drop(p)
	}
}

func (s *sender) drop(p *[]byte) {
	s.dropped.Add(1)
	s.metrics.recordDrop()
	s.recycle(p)
}

func (s *sender) run() {
	defer close(s.done)

	for {
		select {
		case p := <-s.queue:
			s.write(p)
		case <-s.quit:
			for {
				select {
				case p := <-s.queue:
					s.write(p)
				default:
					return
				}
			}
		}
	}
}

func (s *sender) write(p *[]byte) {
	defer s.recycle(p)
	s.metrics.setQueue(len(s.queue))

	var deadline time.Time
	if s.writeTimeout > 0 {
		deadline = time.Now().Add(s.writeTimeout)
	}
	if fb := s.flushBy.Load(); fb != 0 {
		limit := time.Unix(0, fb)
		if time.Now().After(limit) {
			s.dropped.Add(1)
			s.metrics.recordDrop()
			return
		}
		if deadline.IsZero() || limit.Before(deadline) {
			deadline = limit
		}
	}
	if !deadline.IsZero() {
		_ = s.conn.SetWriteDeadline(deadline)
	}

	if _, err := protocol.WriteFull(s.conn, *p); err != nil {
		s.metrics.recordFailure()
		s.logger.Warn("gbd PCM block write failed",
			zap.Int("bytes", len(*p)),
			zap.Error(err))
		return
	}

	s.sent.Add(1)
	s.metrics.recordForward(len(*p))
}

// stop flushes what is queued until deadline and waits for the sender to
// exit. Blocks still queued at the deadline are dropped.
func (s *sender) stop(deadline time.Time) {
	s.flushBy.Store(deadline.UnixNano())
	_ = s.conn.SetWriteDeadline(deadline)
	close(s.quit)
	<-s.done
	s.metrics.setQueue(0)
}
