package metrics

import "github.com/prometheus/client_golang/prometheus"

// AnchorMetrics counts anchor saves and recalls by result. A nil
// *AnchorMetrics records nothing.
type AnchorMetrics struct {
	Saves   *prometheus.CounterVec
	Recalls *prometheus.CounterVec
}

func NewAnchorMetrics(reg prometheus.Registerer) *AnchorMetrics {
	m := &AnchorMetrics{
		Saves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "anchor",
			Name:      "saves_total",
			Help:      "Total number of anchor saves, by result (ok, invalid, error).",
		}, []string{"result"}),
		Recalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "anchor",
			Name:      "recalls_total",
			Help:      "Total number of anchor recalls, by result (hit, miss, error).",
		}, []string{"result"}),
	}

	reg.MustRegister(m.Saves, m.Recalls)
	return m
}

func (m *AnchorMetrics) Saved(result string) {
	if m == nil {
		return
	}
	m.Saves.WithLabelValues(result).Inc()
}

func (m *AnchorMetrics) Recalled(result string) {
	if m == nil {
		return
	}
	m.Recalls.WithLabelValues(result).Inc()
}
