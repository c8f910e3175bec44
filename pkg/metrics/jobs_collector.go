package metrics

import (
	"fmt"

	"github.com/kubev2v/pcap-query/internal/job"
	"github.com/prometheus/client_golang/prometheus"
)

type jobStatsCollector struct {
	manager      *job.Manager
	totalJobs    *prometheus.Desc
	totalOwners  *prometheus.Desc
	totalByState *prometheus.Desc
}

func newJobStatsCollector(m *job.Manager) prometheus.Collector {
	fqName := func(name string) string {
		return fmt.Sprintf("%s_%s", pcapQuery, name)
	}

	return &jobStatsCollector{
		manager: m,
		totalJobs: prometheus.NewDesc(
			fqName("jobs_tracked"),
			"Number of jobs tracked by the job manager.",
			nil,
			prometheus.Labels{},
		),
		totalOwners: prometheus.NewDesc(
			fqName("owners_tracked"),
			"Number of distinct owners with at least one job.",
			nil,
			prometheus.Labels{},
		),
		totalByState: prometheus.NewDesc(
			fqName("jobs_by_state"),
			"Tracked jobs by last observed state.",
			[]string{"state"},
			prometheus.Labels{},
		),
	}
}

func RegisterJobStatsCollector(m *job.Manager) {
	prometheus.MustRegister(newJobStatsCollector(m))
}

func (c *jobStatsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.totalJobs
	ch <- c.totalOwners
	ch <- c.totalByState
}

// Collect implements Collector. It never calls the execution backend.
func (c *jobStatsCollector) Collect(ch chan<- prometheus.Metric) {
	stats := c.manager.Stats()

	ch <- prometheus.MustNewConstMetric(c.totalJobs, prometheus.GaugeValue, float64(stats.Total))
	ch <- prometheus.MustNewConstMetric(c.totalOwners, prometheus.GaugeValue, float64(stats.Owners))

	for state, total := range stats.ByState {
		ch <- prometheus.MustNewConstMetric(c.totalByState, prometheus.GaugeValue, float64(total), state.String())
	}
}
