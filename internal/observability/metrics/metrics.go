package metrics

import "github.com/prometheus/client_golang/prometheus"

// AssistantMetrics exposes counters/histograms for the conversation flow.
type AssistantMetrics struct {
	inboundTotal    *prometheus.CounterVec
	intentTotal     *prometheus.CounterVec
	finalizedTotal  *prometheus.CounterVec
	dispatchLatency *prometheus.HistogramVec
}

func NewAssistantMetrics(reg prometheus.Registerer) *AssistantMetrics {
	m := &AssistantMetrics{
		inboundTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "permit",
			Subsystem: "dispatch",
			Name:      "inbound_events_total",
			Help:      "Total inbound LINE events",
		}, []string{"event_type", "status"}),
		intentTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "permit",
			Subsystem: "intent",
			Name:      "classifications_total",
			Help:      "Total intent classifications",
		}, []string{"intent", "source"}),
		finalizedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "permit",
			Subsystem: "application",
			Name:      "finalized_total",
			Help:      "Total finalized applications",
		}, []string{"status"}),
		dispatchLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "permit",
			Subsystem: "dispatch",
			Name:      "latency_seconds",
			Help:      "Latency of inbound event dispatch",
			Buckets:   prometheus.DefBuckets,
		}, []string{"event_type"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.inboundTotal, m.intentTotal, m.finalizedTotal, m.dispatchLatency)
	return m
}

func (m *AssistantMetrics) ObserveInbound(eventType, status string) {
	if m == nil {
		return
	}
	m.inboundTotal.WithLabelValues(eventType, status).Inc()
}

func (m *AssistantMetrics) ObserveIntent(intent, source string) {
	if m == nil {
		return
	}
	m.intentTotal.WithLabelValues(intent, source).Inc()
}

func (m *AssistantMetrics) ObserveFinalized(status string) {
	if m == nil {
		return
	}
	m.finalizedTotal.WithLabelValues(status).Inc()
}

func (m *AssistantMetrics) ObserveDispatchLatency(eventType string, seconds float64) {
	if m == nil {
		return
	}
	m.dispatchLatency.WithLabelValues(eventType).Observe(seconds)
}
