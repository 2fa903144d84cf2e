// Package metrics defines the adapter core's Prometheus counters:
// per-adapter bytes/messages in and out, and disconnects by reason. Only the
// disconnect counter is fed by internal/beadapter; nothing there calls
// ObserveCounters, so the bytes/messages series stay empty. No HTTP listener is started here — exposing the Registry on a
// /metrics endpoint is the startup collaborator's job, out of scope for
// this module.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics bundles every counter the adapter core increments, registered on
// a single prometheus.Registry.
type Metrics struct {
	Registry *prometheus.Registry

	BytesIn    *prometheus.CounterVec
	BytesOut   *prometheus.CounterVec
	MessagesIn *prometheus.CounterVec
	MessagesOut *prometheus.CounterVec

	Disconnects *prometheus.CounterVec
}

// New constructs a Metrics bundle with a fresh registry and registers every
// counter on it.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		Registry: reg,
		BytesIn: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mgmtd",
			Subsystem: "beadapter",
			Name:      "bytes_in_total",
			Help:      "Bytes read from a client-adapter connection, by adapter name.",
		}, []string{"adapter"}),
		BytesOut: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mgmtd",
			Subsystem: "beadapter",
			Name:      "bytes_out_total",
			Help:      "Bytes written to a client-adapter connection, by adapter name.",
		}, []string{"adapter"}),
		MessagesIn: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mgmtd",
			Subsystem: "beadapter",
			Name:      "messages_in_total",
			Help:      "Decoded inbound messages, by adapter name.",
		}, []string{"adapter"}),
		MessagesOut: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mgmtd",
			Subsystem: "beadapter",
			Name:      "messages_out_total",
			Help:      "Encoded outbound messages, by adapter name.",
		}, []string{"adapter"}),
		Disconnects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mgmtd",
			Subsystem: "beadapter",
			Name:      "disconnects_total",
			Help:      "Adapter disconnects, by reason.",
		}, []string{"reason"}),
	}

	reg.MustRegister(m.BytesIn, m.BytesOut, m.MessagesIn, m.MessagesOut, m.Disconnects)
	return m
}

// ObserveCounters adds the given bytes/messages deltas to adapterName's
// series, skipping any delta that is zero. internal/beadapter does not call
// it.
func (m *Metrics) ObserveCounters(adapterName string, bytesInDelta, bytesOutDelta, msgsInDelta, msgsOutDelta uint64) {
	if bytesInDelta > 0 {
		m.BytesIn.WithLabelValues(adapterName).Add(float64(bytesInDelta))
	}
	if bytesOutDelta > 0 {
		m.BytesOut.WithLabelValues(adapterName).Add(float64(bytesOutDelta))
	}
	if msgsInDelta > 0 {
		m.MessagesIn.WithLabelValues(adapterName).Add(float64(msgsInDelta))
	}
	if msgsOutDelta > 0 {
		m.MessagesOut.WithLabelValues(adapterName).Add(float64(msgsOutDelta))
	}
}

// ObserveDisconnect increments the disconnect counter for reason.
func (m *Metrics) ObserveDisconnect(reason string) {
	m.Disconnects.WithLabelValues(reason).Inc()
}
