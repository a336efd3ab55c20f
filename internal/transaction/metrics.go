package transaction

import "github.com/prometheus/client_golang/prometheus"

type Metrics struct {
	webhookEvents *prometheus.CounterVec
	checkouts     *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		webhookEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "school",
			Name:      "payment_webhook_events_total",
			Help:      "Payment webhook deliveries by event type and outcome",
		}, []string{"event_type", "outcome"}),
		checkouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "school",
			Name:      "checkouts_total",
			Help:      "Checkout attempts by outcome",
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.webhookEvents, m.checkouts)
	return m
}

func (m *Metrics) webhook(eventType, outcome string) {
	if m == nil {
		return
	}
	m.webhookEvents.WithLabelValues(eventType, outcome).Inc()
}

func (m *Metrics) checkout(outcome string) {
	if m == nil {
		return
	}
	m.checkouts.WithLabelValues(outcome).Inc()
}
