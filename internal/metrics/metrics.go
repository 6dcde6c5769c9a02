package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tablelab",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	scenariosGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tablelab",
			Name:      "scenarios_generated_total",
			Help:      "Trial scenarios generated, by display mode.",
		},
		[]string{"mode"},
	)

	availabilityQueries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "tablelab",
			Name:      "availability_queries_total",
			Help:      "Availability oracle queries served over HTTP.",
		},
	)

	resultsSaved = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "tablelab",
			Name:      "results_saved_total",
			Help:      "Experiment results appended to the store.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, scenariosGenerated, availabilityQueries, resultsSaved)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// IncScenario increments the generated-scenario counter for a display mode.
func IncScenario(mode string) {
	scenariosGenerated.WithLabelValues(mode).Inc()
}

// IncAvailabilityQuery counts one oracle query.
func IncAvailabilityQuery() {
	availabilityQueries.Inc()
}

// IncResultSaved counts one persisted experiment record.
func IncResultSaved() {
	resultsSaved.Inc()
}
