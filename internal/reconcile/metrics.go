package reconcile

import "github.com/prometheus/client_golang/prometheus"

// Metrics - показатели слоя синхронизации
type Metrics struct {
	EventsApplied *prometheus.CounterVec
	LiveFeeds     prometheus.Gauge
	PausedFeeds   prometheus.Gauge
}

// NewMetrics регистрирует метрики; при reg == nil метрики не регистрируются
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		EventsApplied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "civic_reconcile_events_total",
			Help: "Pushed change events by table, event type and outcome.",
		}, []string{"table", "type", "outcome"}),
		LiveFeeds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "civic_reconcile_live_feeds",
			Help: "Subscriptions currently delivering events.",
		}),
		PausedFeeds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "civic_reconcile_paused_feeds",
			Help: "Subscriptions that dropped or could not be established.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.EventsApplied, m.LiveFeeds, m.PausedFeeds)
	}
	return m
}
