// SPDX-License-Identifier: EPL-2.0

package client

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/ik5/gbdclient/config"
	"github.com/ik5/gbdclient/protocol"
)

// Overflow selects what the send queue drops when it is full.
type Overflow int

const (
	// DropOldest discards the oldest queued block.
	DropOldest Overflow = iota
	// DropNewest discards the block being enqueued.
	DropNewest
)

func (o Overflow) String() string {
	switch o {
	case DropOldest:
		return config.OverflowDropOldest
	case DropNewest:
		return config.OverflowDropNewest
	default:
		return "unknown"
	}
}

// ParseOverflow maps a configuration value to an Overflow.
func ParseOverflow(s string) (Overflow, error) {
	switch s {
	case "", config.OverflowDropOldest:
		return DropOldest, nil
	case config.OverflowDropNewest:
		return DropNewest, nil
	default:
		return DropOldest, fmt.Errorf("%w: %q", ErrUnknownOverflow, s)
	}
}

// Dialer opens stream connections.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Resolver looks up candidate addresses.
type Resolver interface {
	LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error)
	LookupPort(ctx context.Context, network, service string) (int, error)
}

type options struct {
	logger     *zap.Logger
	registerer prometheus.Registerer
	codec      protocol.Codec

	queueDepth int
	overflow   Overflow

	dialTimeout      time.Duration
	handshakeTimeout time.Duration
	writeTimeout     time.Duration
	closeTimeout     time.Duration

	dialer   Dialer
	resolver Resolver
}

// Option configures Dial and New.
type Option func(*options)

func defaultOptions() options {
	return options{
		logger:       zap.NewNop(),
		codec:        protocol.NativeCodec,
		closeTimeout: time.Second,
		dialer:       &net.Dialer{},
		resolver:     net.DefaultResolver,
	}
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	return o
}

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics registers session metrics on reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *options) { o.registerer = reg }
}

// WithCodec sets the wire codec.
func WithCodec(c protocol.Codec) Option {
	return func(o *options) { o.codec = c }
}

// WithQueue moves remote writes off the Transfer path into a sender
// goroutine fed by a queue of depth blocks. Depth 0 writes synchronously.
func WithQueue(depth int, policy Overflow) Option {
	return func(o *options) {
		o.queueDepth = max(depth, 0)
		o.overflow = policy
	}
}

// WithDialTimeout bounds each connection attempt.
func WithDialTimeout(d time.Duration) Option {
	return func(o *options) { o.dialTimeout = d }
}

// WithHandshakeTimeout bounds the whole handshake exchange.
func WithHandshakeTimeout(d time.Duration) Option {
	return func(o *options) { o.handshakeTimeout = d }
}

// WithWriteTimeout bounds every streaming write. Zero blocks for as long
// as the remote side takes.
func WithWriteTimeout(d time.Duration) Option {
	return func(o *options) { o.writeTimeout = d }
}

// WithCloseTimeout bounds the queue flush and PluginClose on Close.
func WithCloseTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.closeTimeout = d
		}
	}
}

// WithDialer replaces the network dialer.
func WithDialer(d Dialer) Option {
	return func(o *options) {
		if d != nil {
			o.dialer = d
		}
	}
}

// WithResolver replaces the address resolver.
func WithResolver(r Resolver) Option {
	return func(o *options) {
		if r != nil {
			o.resolver = r
		}
	}
}

// ConfigOptions translates the runtime keys of cfg into options.
func ConfigOptions(cfg config.Config) ([]Option, error) {
	codec, err := cfg.Codec()
	if err != nil {
		return nil, err
	}

	policy, err := ParseOverflow(cfg.Overflow)
	if err != nil {
		return nil, err
	}

	return []Option{
		WithCodec(codec),
		WithQueue(cfg.QueueDepth, policy),
		WithDialTimeout(cfg.DialTimeout),
		WithWriteTimeout(cfg.WriteTimeout),
		WithHandshakeTimeout(cfg.HandshakeTimeout),
		WithCloseTimeout(cfg.CloseTimeout),
	}, nil
}
