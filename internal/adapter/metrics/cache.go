package metrics

import "github.com/prometheus/client_golang/prometheus"

// CacheMetrics holds Prometheus metrics for the question set cache.
type CacheMetrics struct {
	Hits   *prometheus.CounterVec
	Misses prometheus.Counter
}

func NewCacheMetrics(reg prometheus.Registerer) *CacheMetrics {
	m := &CacheMetrics{
		Hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "question_cache",
			Name:      "hits_total",
			Help:      "Total number of question set cache hits, by layer.",
		}, []string{"layer"}),
		Misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "question_cache",
			Name:      "misses_total",
			Help:      "Total number of question set lookups that reached the repository.",
		}),
	}

	reg.MustRegister(m.Hits, m.Misses)
	return m
}
