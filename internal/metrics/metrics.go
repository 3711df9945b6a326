package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "productmanage"

// Session operations
const (
	OpIssue   = "issue"
	OpReissue = "reissue"
	OpRevoke  = "revoke"
)

// Metrics holds counters on a private registry
// Nil *Metrics is valid and records nothing
type Metrics struct {
	registry       *prometheus.Registry
	gateRejections *prometheus.CounterVec
	sessions       *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		gateRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gate_rejections_total",
			Help:      "Requests rejected by authentication or authorization gates.",
		}, []string{"code"}),
		sessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_total",
			Help:      "Session operations completed successfully.",
		}, []string{"op"}),
	}

	m.registry.MustRegister(m.gateRejections, m.sessions)

	return m
}

func (m *Metrics) GateRejected(code string) {
	if m == nil {
		return
	}
	m.gateRejections.WithLabelValues(code).Inc()
}

func (m *Metrics) SessionDone(op string) {
	if m == nil {
		return
	}
	m.sessions.WithLabelValues(op).Inc()
}

// Handler exposes the registry in Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
