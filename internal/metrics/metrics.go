// Package metrics holds the Prometheus collectors exported at /metrics.
package metrics

import (
	"errors"
	"net/http"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/koyostar/ItinaviCN-sub000/internal/ledger"
)

// Metrics bundles the collectors registered on one registry.
type Metrics struct {
	Registry *prometheus.Registry

	RPCRequests      *prometheus.CounterVec
	RPCDuration      *prometheus.HistogramVec
	SplitTransitions *prometheus.CounterVec
}

// New registers the collectors, plus Go and process collectors, on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		RPCRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "itinavi",
			Name:      "rpc_requests_total",
			Help:      "Unary RPCs handled, by procedure and result code.",
		}, []string{"procedure", "code"}),
		RPCDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "itinavi",
			Name:      "rpc_duration_seconds",
			Help:      "Unary RPC latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure"}),
		SplitTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "itinavi",
			Name:      "split_transitions_total",
			Help:      "Settle, unsettle and pair-settle attempts by outcome.",
		}, []string{"op", "outcome"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// ObserveTransition records a settlement transition. It has the shape of
// ledger.TransitionObserver.
func (m *Metrics) ObserveTransition(op string, err error) {
	m.SplitTransitions.WithLabelValues(op, transitionOutcome(err)).Inc()
}

func transitionOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ledger.ErrValidation):
		return "invalid"
	case errors.Is(err, ledger.ErrNotFound):
		return "not_found"
	case errors.Is(err, ledger.ErrPermission):
		return "denied"
	case errors.Is(err, ledger.ErrConflict):
		return "conflict"
	}
	return "error"
}

// Code is the label value for an RPC result.
func Code(err error) string {
	if err == nil {
		return "ok"
	}
	return connect.CodeOf(err).String()
}
