// SPDX-License-Identifier: EPL-2.0

package client

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// sessionMetrics holds the Prometheus collectors of one session. A nil
// *sessionMetrics records nothing.
type sessionMetrics struct {
	forwarded prometheus.Counter
	bytes     prometheus.Counter
	failures  prometheus.Counter
	dropped   prometheus.Counter
	queue     prometheus.Gauge
}

func newSessionMetrics(reg prometheus.Registerer, remote string) (*sessionMetrics, error) {
	if reg == nil {
		return nil, nil
	}

	labels := prometheus.Labels{"remote": remote}
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "gbdclient",
			Name:        name,
			Help:        help,
			ConstLabels: labels,
		})
	}

	m := &sessionMetrics{
		forwarded: counter("blocks_forwarded_total", "Audio blocks written to gbdserver"),
		bytes:     counter("bytes_forwarded_total", "Bytes written to gbdserver, control messages included"),
		failures:  counter("write_failures_total", "Failed writes on the streaming path"),
		dropped:   counter("blocks_dropped_total", "Audio blocks dropped by the send queue"),
		queue: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "gbdclient",
			Name:        "queue_depth",
			Help:        "Audio blocks waiting in the send queue",
			ConstLabels: labels,
		}),
	}

	var err error
	if m.forwarded, err = registerCounter(reg, m.forwarded); err != nil {
		return nil, err
	}
	if m.bytes, err = registerCounter(reg, m.bytes); err != nil {
		return nil, err
	}
	if m.failures, err = registerCounter(reg, m.failures); err != nil {
		return nil, err
	}
	if m.dropped, err = registerCounter(reg, m.dropped); err != nil {
		return nil, err
	}
	if err := reg.Register(m.queue); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, err
		}
		m.queue = are.ExistingCollector.(prometheus.Gauge)
	}

	return m, nil
}

// registerCounter registers c, reusing an identical collector registered
// by an earlier session to the same remote.
func registerCounter(reg prometheus.Registerer, c prometheus.Counter) (prometheus.Counter, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return are.ExistingCollector.(prometheus.Counter), nil
		}
		return nil, err
	}

	return c, nil
}

func (m *sessionMetrics) recordForward(bytes int) {
	if m == nil {
		return
	}
	m.forwarded.Inc()
	m.bytes.Add(float64(bytes))
}

func (m *sessionMetrics) recordFailure() {
	if m == nil {
		return
	}
	m.failures.Inc()
}

func (m *sessionMetrics) recordDrop() {
	if m == nil {
		return
	}
	m.dropped.Inc()
}

func (m *sessionMetrics) setQueue(n int) {
	if m == nil {
		return
	}
	m.queue.Set(float64(n))
}
