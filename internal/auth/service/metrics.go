package service

import (
	"github.com/aussiebroadwan/tokengate/internal/auth/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts token lifecycle events. A nil *Metrics records nothing.
type Metrics struct {
	verifications *prometheus.CounterVec
	issued        *prometheus.CounterVec
	revocations   prometheus.Counter
	collected     prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	m := &Metrics{
		verifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verifications_total",
			Help:      "Bearer token verifications by token kind and outcome.",
		}, []string{"kind", "outcome"}),
		issued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_issued_total",
			Help:      "Tokens minted by kind.",
		}, []string{"kind"}),
		revocations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "revocations_total",
			Help:      "Token ids revoked at logout.",
		}),
		collected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "revocations_collected_total",
			Help:      "Revocation records removed by housekeeping.",
		}),
	}
	reg.MustRegister(m.verifications, m.issued, m.revocations, m.collected)
	return m
}

func (m *Metrics) observeVerification(kind domain.Kind, reason Reason) {
	if m == nil {
		return
	}
	m.verifications.WithLabelValues(kind.String(), reason.String()).Inc()
}

func (m *Metrics) observeIssued(kind domain.Kind) {
	if m == nil {
		return
	}
	m.issued.WithLabelValues(kind.String()).Inc()
}

func (m *Metrics) observeRevocation() {
	if m == nil {
		return
	}
	m.revocations.Inc()
}

func (m *Metrics) observeCollected(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.collected.Add(float64(n))
}
