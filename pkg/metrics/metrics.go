package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	pcapQuery = "pcap_query"

	// Job metrics
	jobsSubmittedTotal = "jobs_submitted_total"
	jobsKilledTotal    = "jobs_killed_total"

	// Pdml metrics
	pdmlConversionsTotal   = "pdml_conversions_total"
	pdmlConversionDuration = "pdml_conversion_duration_seconds"

	// Labels
	resultLabel = "result"

	ResultSuccess = "success"
	ResultFailed  = "failed"
)

var resultLabels = []string{
	resultLabel,
}

/**
* Metrics definition
**/
var jobsSubmittedTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: pcapQuery,
		Name:      jobsSubmittedTotal,
		Help:      "number of pcap jobs submitted to the execution backend",
	},
	resultLabels,
)

var jobsKilledTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: pcapQuery,
		Name:      jobsKilledTotal,
		Help:      "number of pcap jobs killed",
	},
	resultLabels,
)

var pdmlConversionsTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: pcapQuery,
		Name:      pdmlConversionsTotal,
		Help:      "number of result pages converted to pdml",
	},
	resultLabels,
)

var pdmlConversionDurationMetric = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Subsystem: pcapQuery,
		Name:      pdmlConversionDuration,
		Help:      "time spent converting one result page to pdml",
		Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60},
	},
	resultLabels,
)

func IncreaseJobsSubmittedMetric(result string) {
	jobsSubmittedTotalMetric.With(prometheus.Labels{resultLabel: result}).Inc()
}

func IncreaseJobsKilledMetric(result string) {
	jobsKilledTotalMetric.With(prometheus.Labels{resultLabel: result}).Inc()
}

func ObservePdmlConversion(result string, d time.Duration) {
	labels := prometheus.Labels{
		resultLabel: result,
	}
	pdmlConversionsTotalMetric.With(labels).Inc()
	pdmlConversionDurationMetric.With(labels).Observe(d.Seconds())
}

func init() {
	registerMetrics()
}

func registerMetrics() {
	prometheus.MustRegister(jobsSubmittedTotalMetric)
	prometheus.MustRegister(jobsKilledTotalMetric)
	prometheus.MustRegister(pdmlConversionsTotalMetric)
	prometheus.MustRegister(pdmlConversionDurationMetric)
	prometheus.MustRegister(totalUniqueOwnersPerWeekMetric)
}
