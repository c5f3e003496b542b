// SPDX-License-Identifier: EPL-2.0

package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"

	"go.uber.org/zap"
)

// Dial resolves host and port and connects to the first candidate address
// that accepts, trying them in the order the resolver returns them. IPv4
// and IPv6 candidates are both considered. There is no retry: one call is
// one pass over the candidates.
func Dial(ctx context.Context, host, port string, opts ...Option) (net.Conn, error) {
	o := applyOptions(opts)
	return dial(ctx, host, port, &o)
}

func dial(ctx context.Context, host, port string, o *options) (net.Conn, error) {
	if host == "" || port == "" {
		return nil, fmt.Errorf("%w: empty host or port", ErrEstablish)
	}

	addrs, err := o.resolver.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve %s: %w", ErrEstablish, host, err)
	}
	pn, err := o.resolver.LookupPort(ctx, "tcp", port)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve port %s: %w", ErrEstablish, port, err)
	}
	if len(addrs) == 0 {
		return nil, fmt.Errorf("%w: no addresses for %s", ErrEstablish, host)
	}

	var errs []error
	for _, a := range addrs {
		target := net.JoinHostPort(a.String(), strconv.Itoa(pn))

		conn, err := dialOne(ctx, target, o)
		if err == nil {
			o.logger.Debug("connected to gbdserver",
				zap.String("host", host),
				zap.String("addr", target))
			return conn, nil
		}

		o.logger.Debug("connect attempt failed",
			zap.String("addr", target),
			zap.Error(err))
		errs = append(errs, err)

		if ctx.Err() != nil {
			break
		}
	}

	return nil, fmt.Errorf("%w: %s:%s: %w", ErrEstablish, host, port, errors.Join(errs...))
}

func dialOne(ctx context.Context, target string, o *options) (net.Conn, error) {
	if o.dialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.dialTimeout)
		defer cancel()
	}

	return o.dialer.DialContext(ctx, "tcp", target)
}
