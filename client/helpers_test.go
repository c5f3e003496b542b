// SPDX-License-Identifier: EPL-2.0

package client

import (
	"context"
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"syscall"
	"testing"

	"github.com/ik5/gbdclient/config"
	"github.com/ik5/gbdclient/internal/gbdtest"
)

// fakeResolver returns fixed candidates.
type fakeResolver struct {
	addrs []net.IPAddr
	err   error
	calls atomic.Int32
}

func (r *fakeResolver) LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error) {
	r.calls.Add(1)
	return r.addrs, r.err
}

func (r *fakeResolver) LookupPort(ctx context.Context, network, service string) (int, error) {
	return 8888, nil
}

func loopbackResolver() *fakeResolver {
	return &fakeResolver{addrs: []net.IPAddr{{IP: net.IPv4(127, 0, 0, 1)}}}
}

// pipeDialer hands out net.Pipe connections whose far end is served by a
// gbdtest server. Addresses listed in refuse fail to connect.
type pipeDialer struct {
	srv    *gbdtest.Server
	refuse map[string]bool

	mu       sync.Mutex
	attempts []string
	conns    []*failConn
	wg       sync.WaitGroup
}

func (d *pipeDialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.attempts = append(d.attempts, address)
	if d.refuse[address] {
		return nil, &net.OpError{Op: "dial", Net: network, Err: syscall.ECONNREFUSED}
	}

	local, remote := net.Pipe()
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.srv.ServeConn(remote)
	}()

	fc := &failConn{Conn: local}
	d.conns = append(d.conns, fc)

	return fc, nil
}

func (d *pipeDialer) Attempts() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	return append([]string(nil), d.attempts...)
}

func (d *pipeDialer) Conn(i int) *failConn {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.conns[i]
}

// failConn fails every write once broken is set.
type failConn struct {
	net.Conn
	broken atomic.Bool
}

func (c *failConn) Write(p []byte) (int, error) {
	if c.broken.Load() {
		return 0, syscall.EPIPE
	}
	return c.Conn.Write(p)
}

// countingDialer records attempts and always fails.
type countingDialer struct {
	calls atomic.Int32
}

func (d *countingDialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	d.calls.Add(1)
	return nil, errors.New("dial not expected")
}

func pluginFor(srv *gbdtest.Server) config.Plugin {
	return config.Plugin{
		IPAddr:   srv.Host(),
		Port:     srv.Port(),
		Channels: config.StereoChannels,
	}
}

func pipePlugin() config.Plugin {
	return config.Plugin{IPAddr: "gbdserver", Port: "8888", Channels: config.StereoChannels}
}

// stereoBlock returns frames of recognizable interleaved samples.
func stereoBlock(frames, seed int) []float32 {
	buf := make([]float32, frames*2)
	for i := range buf {
		buf[i] = float32((seed*131+i)%2001-1000) / 1000
	}
	return buf
}

func openPipeSession(t *testing.T, srv *gbdtest.Server, opts ...Option) (*Session, *pipeDialer) {
	t.Helper()

	d := &pipeDialer{srv: srv}
	t.Cleanup(d.wg.Wait)

	all := append([]Option{WithDialer(d), WithResolver(loopbackResolver())}, opts...)
	s, err := New(context.Background(), pipePlugin(), all...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := s.Init(44100); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	return s, d
}
