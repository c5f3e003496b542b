// SPDX-License-Identifier: EPL-2.0

package client

import (
	"context"
	"errors"
	"net"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/gbdclient/internal/gbdtest"
)

func TestDial_FirstSuccessfulCandidate(t *testing.T) {
	t.Parallel()

	resolver := &fakeResolver{addrs: []net.IPAddr{
		{IP: net.ParseIP("2001:db8::1")},
		{IP: net.ParseIP("192.0.2.1")},
		{IP: net.ParseIP("127.0.0.1")},
		{IP: net.ParseIP("127.0.0.2")},
	}}
	d := &pipeDialer{
		srv: gbdtest.NewConnServer(),
		refuse: map[string]bool{
			"[2001:db8::1]:8888": true,
			"192.0.2.1:8888":     true,
		},
	}

	conn, err := Dial(context.Background(), "gbdserver", "8888", WithDialer(d), WithResolver(resolver))
	require.NoError(t, err)
	require.NoError(t, conn.Close())
	d.wg.Wait()

	assert.Equal(t, []string{"[2001:db8::1]:8888", "192.0.2.1:8888", "127.0.0.1:8888"}, d.Attempts())
}

func TestDial_AllCandidatesFail(t *testing.T) {
	t.Parallel()

	resolver := &fakeResolver{addrs: []net.IPAddr{
		{IP: net.ParseIP("192.0.2.1")},
		{IP: net.ParseIP("192.0.2.2")},
	}}
	d := &pipeDialer{refuse: map[string]bool{
		"192.0.2.1:8888": true,
		"192.0.2.2:8888": true,
	}}

	_, err := Dial(context.Background(), "gbdserver", "8888", WithDialer(d), WithResolver(resolver))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEstablish)
	assert.ErrorIs(t, err, syscall.ECONNREFUSED)
	assert.Len(t, d.Attempts(), 2)
}

func TestDial_ResolutionFails(t *testing.T) {
	t.Parallel()

	resolver := &fakeResolver{err: errors.New("no such host")}
	d := &pipeDialer{}

	_, err := Dial(context.Background(), "nowhere.invalid", "8888", WithDialer(d), WithResolver(resolver))
	assert.ErrorIs(t, err, ErrEstablish)
	assert.Empty(t, d.Attempts())

	resolver = &fakeResolver{}
	_, err = Dial(context.Background(), "empty", "8888", WithDialer(d), WithResolver(resolver))
	assert.ErrorIs(t, err, ErrEstablish)
	assert.Empty(t, d.Attempts())
}

func TestDial_EmptyArguments(t *testing.T) {
	t.Parallel()

	resolver := loopbackResolver()
	for _, tc := range [][2]string{{"", "8888"}, {"host", ""}, {"", ""}} {
		_, err := Dial(context.Background(), tc[0], tc[1], WithResolver(resolver))
		assert.ErrorIs(t, err, ErrEstablish)
	}
	assert.Zero(t, resolver.calls.Load())
}

func TestDial_Loopback(t *testing.T) {
	t.Parallel()

	srv := gbdtest.NewServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, err := Dial(ctx, srv.Host(), srv.Port(), WithDialTimeout(time.Second))
	require.NoError(t, err)
	assert.Equal(t, "tcp", conn.RemoteAddr().Network())
	require.NoError(t, conn.Close())
}
