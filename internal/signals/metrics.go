package signals

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type busMetrics struct {
	published   *prometheus.CounterVec
	dropped     *prometheus.CounterVec
	subscribers *prometheus.GaugeVec
}

func newBusMetrics(reg prometheus.Registerer) *busMetrics {
	f := promauto.With(reg)
	return &busMetrics{
		published: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hireledger_signals_published_total",
			Help: "Signals published, by type",
		}, []string{"type"}),
		dropped: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hireledger_signals_dropped_total",
			Help: "Signals not delivered to a subscriber whose queue was full",
		}, []string{"type"}),
		subscribers: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "hireledger_signals_subscribers",
			Help: "Current subscribers, by type",
		}, []string{"type"}),
	}
}
