package service

import "github.com/prometheus/client_golang/prometheus"

// Metrics - счетчики ядра координации
type Metrics struct {
	IncidentsCreated   prometheus.Counter
	StatusTransitions  *prometheus.CounterVec
	AlertsDispatched   *prometheus.CounterVec
	DispatchFailures   *prometheus.CounterVec
	AlertsAcknowledged prometheus.Counter
	NotifyFailures     prometheus.Counter
	MessagesSent       prometheus.Counter
	StoreErrors        *prometheus.CounterVec
}

// NewMetrics регистрирует метрики; при reg == nil метрики не регистрируются
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		IncidentsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "civic_incidents_created_total",
			Help: "Total incidents created through this process.",
		}),
		StatusTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "civic_incident_status_transitions_total",
			Help: "Incident status transitions by target status.",
		}, []string{"status"}),
		AlertsDispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "civic_alerts_dispatched_total",
			Help: "Alerts persisted by type and priority.",
		}, []string{"type", "priority"}),
		DispatchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "civic_dispatch_failures_total",
			Help: "Follow-up steps that failed after the primary write succeeded.",
		}, []string{"step"}),
		AlertsAcknowledged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "civic_alerts_acknowledged_total",
			Help: "Alerts acknowledged for the first time.",
		}),
		NotifyFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "civic_notify_failures_total",
			Help: "Local notifications that could not be surfaced.",
		}),
		MessagesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "civic_messages_sent_total",
			Help: "Secure messages sent.",
		}),
		StoreErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "civic_store_errors_total",
			Help: "Failed store round-trips by operation.",
		}, []string{"op"}),
	}

	if reg != nil {
		reg.MustRegister(
			m.IncidentsCreated,
			m.StatusTransitions,
			m.AlertsDispatched,
			m.DispatchFailures,
			m.AlertsAcknowledged,
			m.NotifyFailures,
			m.MessagesSent,
			m.StoreErrors,
		)
	}
	return m
}
