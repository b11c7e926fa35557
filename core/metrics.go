package core

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// substrateMetrics groups the counters and histograms exported for the
// conservation and resonance engines.
type substrateMetrics struct {
	registry *prometheus.Registry

	domainsCreated        prometheus.Counter
	domainsCommitted      prometheus.Counter
	conservationViolations prometheus.Counter
	witnessVerifyFailures prometheus.Counter
	clusterBuildSeconds   prometheus.Histogram
}

var (
	metricsOnce sync.Once
	metrics     *substrateMetrics
)

// Metrics returns the process-wide substrate metrics registry, creating it
// on first use.
func Metrics() *substrateMetrics {
	metricsOnce.Do(func() {
		reg := prometheus.NewRegistry()
		m := &substrateMetrics{
			registry: reg,
			domainsCreated: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "atlas_domains_created_total",
				Help: "Domains created via DomainCreate.",
			}),
			domainsCommitted: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "atlas_domains_committed_total",
				Help: "Domains that reached the Committed state.",
			}),
			conservationViolations: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "atlas_conservation_violations_total",
				Help: "Verify calls that failed with ConservationViolation.",
			}),
			witnessVerifyFailures: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "atlas_witness_verify_failures_total",
				Help: "WitnessVerify calls that returned false.",
			}),
			clusterBuildSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
				Name:    "atlas_cluster_build_seconds",
				Help:    "Wall time spent in ClusterByResonance.",
				Buckets: prometheus.DefBuckets,
			}),
		}
		reg.MustRegister(
			m.domainsCreated,
			m.domainsCommitted,
			m.conservationViolations,
			m.witnessVerifyFailures,
			m.clusterBuildSeconds,
		)
		metrics = m
	})
	return metrics
}

// Registry exposes the underlying prometheus.Registry for embedders that
// want to serve /metrics themselves; the substrate never opens a listener
// of its own.
func (m *substrateMetrics) Registry() *prometheus.Registry { return m.registry }
