package web

import "github.com/prometheus/client_golang/prometheus"

type metrics struct {
	edits   *prometheus.CounterVec
	appends prometheus.Counter
	exports *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		edits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "judgefee",
			Name:      "field_edits_total",
			Help:      "Judge field edits applied, by field.",
		}, []string{"field"}),
		appends: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "judgefee",
			Name:      "judges_appended_total",
			Help:      "Judge records added to the roster.",
		}),
		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "judgefee",
			Name:      "exports_total",
			Help:      "Reports exported, by format.",
		}, []string{"format"}),
	}
	reg.MustRegister(m.edits, m.appends, m.exports)
	return m
}
