package metrics

import "github.com/prometheus/client_golang/prometheus"

// RouterMetrics exposes counters/histograms for the WhatsApp routing pipeline.
// All methods are safe on a nil receiver.
type RouterMetrics struct {
	inboundTotal      *prometheus.CounterVec
	flowTotal         *prometheus.CounterVec
	outboundTotal     *prometheus.CounterVec
	sideEffectTotal   *prometheus.CounterVec
	completionTotal   *prometheus.CounterVec
	catalogTotal      *prometheus.CounterVec
	webhookLatency    *prometheus.HistogramVec
	completionLatency prometheus.Histogram
}

func NewRouterMetrics(reg prometheus.Registerer) *RouterMetrics {
	m := &RouterMetrics{
		inboundTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ares",
			Subsystem: "whatsapp",
			Name:      "inbound_webhook_total",
			Help:      "Total inbound WhatsApp webhooks by outcome",
		}, []string{"status"}),
		flowTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ares",
			Subsystem: "whatsapp",
			Name:      "flow_total",
			Help:      "Routed events by channel and flow",
		}, []string{"channel", "flow"}),
		outboundTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ares",
			Subsystem: "whatsapp",
			Name:      "outbound_total",
			Help:      "Outbound WhatsApp sends by message kind",
		}, []string{"kind", "status"}),
		sideEffectTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ares",
			Subsystem: "whatsapp",
			Name:      "side_effect_total",
			Help:      "Lead, log, event and notification writes by outcome",
		}, []string{"kind", "status"}),
		completionTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ares",
			Subsystem: "ai",
			Name:      "completion_total",
			Help:      "Catalog-grounded completions by outcome",
		}, []string{"status"}),
		catalogTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ares",
			Subsystem: "catalog",
			Name:      "lookup_total",
			Help:      "Catalog document lookups by cache result",
		}, []string{"result"}),
		webhookLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ares",
			Subsystem: "whatsapp",
			Name:      "webhook_latency_seconds",
			Help:      "Latency of WhatsApp webhook processing",
			Buckets:   prometheus.DefBuckets,
		}, []string{"status"}),
		completionLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ares",
			Subsystem: "ai",
			Name:      "completion_latency_seconds",
			Help:      "Latency of catalog-grounded completions",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(
		m.inboundTotal,
		m.flowTotal,
		m.outboundTotal,
		m.sideEffectTotal,
		m.completionTotal,
		m.catalogTotal,
		m.webhookLatency,
		m.completionLatency,
	)
	return m
}

func (m *RouterMetrics) ObserveInbound(status string) {
	if m == nil {
		return
	}
	m.inboundTotal.WithLabelValues(status).Inc()
}

func (m *RouterMetrics) ObserveFlow(channel, flow string) {
	if m == nil {
		return
	}
	m.flowTotal.WithLabelValues(channel, flow).Inc()
}

func (m *RouterMetrics) ObserveOutbound(kind string, ok bool) {
	if m == nil {
		return
	}
	m.outboundTotal.WithLabelValues(kind, statusLabel(ok)).Inc()
}

func (m *RouterMetrics) ObserveSideEffect(kind string, ok bool) {
	if m == nil {
		return
	}
	m.sideEffectTotal.WithLabelValues(kind, statusLabel(ok)).Inc()
}

func (m *RouterMetrics) ObserveCompletion(ok bool, seconds float64) {
	if m == nil {
		return
	}
	m.completionTotal.WithLabelValues(statusLabel(ok)).Inc()
	m.completionLatency.Observe(seconds)
}

func (m *RouterMetrics) ObserveCatalogLookup(result string) {
	if m == nil {
		return
	}
	m.catalogTotal.WithLabelValues(result).Inc()
}

func (m *RouterMetrics) ObserveWebhookLatency(status string, seconds float64) {
	if m == nil {
		return
	}
	m.webhookLatency.WithLabelValues(status).Observe(seconds)
}

func statusLabel(ok bool) string {
	if ok {
		return "success"
	}
	return "error"
}
