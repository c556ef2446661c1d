package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/T21C/tuf-backend-sub003/internal/domain"
)

// Index maintenance and search Prometheus metrics.
var (
	syncEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tufsearch",
			Name:      "sync_events_total",
			Help:      "Store write events applied to the index",
		},
		[]string{"family", "outcome"},
	)

	reindexedDocsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tufsearch",
			Name:      "reindexed_documents_total",
			Help:      "Documents written by bulk reindex runs",
		},
		[]string{"family"},
	)

	reindexRunning = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "tufsearch",
			Name:      "reindex_running",
			Help:      "Whether a bulk reindex is active for the family",
		},
		[]string{"family"},
	)

	searchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tufsearch",
			Name:      "searches_total",
			Help:      "Search requests by pagination strategy",
		},
		[]string{"family", "strategy"},
	)
)

var indexMetricsRegistered bool

// RegisterIndexMetrics registers the index metrics. Must be called once
// from main.
func RegisterIndexMetrics() {
	if indexMetricsRegistered {
		return
	}
	prometheus.MustRegister(syncEventsTotal)
	prometheus.MustRegister(reindexedDocsTotal)
	prometheus.MustRegister(reindexRunning)
	prometheus.MustRegister(searchesTotal)
	indexMetricsRegistered = true
}

// Recorder feeds the usecase instrumentation hooks into Prometheus.
type Recorder struct{}

func (Recorder) SyncHandled(family domain.Family, outcome string) {
	syncEventsTotal.WithLabelValues(string(family), outcome).Inc()
}

func (Recorder) ReindexedDocs(family domain.Family, n int) {
	reindexedDocsTotal.WithLabelValues(string(family)).Add(float64(n))
}

func (Recorder) ReindexRunning(family domain.Family, running bool) {
	v := 0.0
	if running {
		v = 1
	}
	reindexRunning.WithLabelValues(string(family)).Set(v)
}

func (Recorder) SearchServed(family domain.Family, strategy string) {
	searchesTotal.WithLabelValues(string(family), strategy).Inc()
}
