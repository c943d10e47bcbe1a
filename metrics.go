package nftptr

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts what a Session does on chain.
// A nil *Metrics records nothing.
type Metrics struct {
	Deployments  *prometheus.CounterVec
	Transactions *prometheus.CounterVec
	Failures     *prometheus.CounterVec
	Instances    prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg, if not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Deployments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nftptr",
			Name:      "contracts_deployed_total",
			Help:      "Contracts deployed, by kind.",
		}, []string{"kind"}),
		Transactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nftptr",
			Name:      "transactions_total",
			Help:      "Contract method transactions confirmed, by method.",
		}, []string{"method"}),
		Failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nftptr",
			Name:      "failures_total",
			Help:      "Failed session operations, by operation.",
		}, []string{"op"}),
		Instances: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "nftptr",
			Name:      "registered_instances",
			Help:      "Owner contracts currently in the instance registry.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Deployments, m.Transactions, m.Failures, m.Instances)
	}
	return m
}

func (m *Metrics) deployed(kind string) {
	if m != nil {
		m.Deployments.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) transacted(method string) {
	if m != nil {
		m.Transactions.WithLabelValues(method).Inc()
	}
}

func (m *Metrics) failed(op string) {
	if m != nil {
		m.Failures.WithLabelValues(op).Inc()
	}
}

func (m *Metrics) instances(n int) {
	if m != nil {
		m.Instances.Set(float64(n))
	}
}
