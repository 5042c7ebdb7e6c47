// Package metric records resolution statistics in a Prometheus registry.
//
// The registry is written out in the text exposition format so the
// node_exporter textfile collector can pick it up; nothing is served over
// the network.
package metric

import (
	"fmt"
	"time"

	"github.com/neox5/yamlenc/internal/node"
	"github.com/prometheus/client_golang/prometheus"
)

// Registry collects resolution statistics. It implements node.Observer.
type Registry struct {
	registry *prometheus.Registry

	documentsLoaded prometheus.Counter
	nodesResolved   prometheus.Counter
	resolveFailures prometheus.Counter
	includeDepth    prometheus.Histogram
	resolveDuration prometheus.Histogram
	nodes           *nodeCollector
}

var _ node.Observer = (*Registry)(nil)

// New creates a registry with all resolution metrics registered.
func New() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
		documentsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: DocumentsLoadedName,
			Help: help(DocumentsLoadedName),
		}),
		nodesResolved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: NodesResolvedName,
			Help: help(NodesResolvedName),
		}),
		resolveFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: ResolveFailuresName,
			Help: help(ResolveFailuresName),
		}),
		includeDepth: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    IncludeDepthName,
			Help:    help(IncludeDepthName),
			Buckets: prometheus.LinearBuckets(0, 1, 8),
		}),
		resolveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    ResolveDurationName,
			Help:    help(ResolveDurationName),
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		nodes: newNodeCollector(),
	}

	r.registry.MustRegister(
		r.documentsLoaded,
		r.nodesResolved,
		r.resolveFailures,
		r.includeDepth,
		r.resolveDuration,
		r.nodes,
	)

	return r
}

// DocumentLoaded counts a loaded document.
func (r *Registry) DocumentLoaded(string) {
	r.documentsLoaded.Inc()
}

// NodeResolved records a successful resolution.
func (r *Registry) NodeResolved(n *node.Node, depth int, elapsed time.Duration) {
	r.nodesResolved.Inc()
	r.includeDepth.Observe(float64(depth))
	r.resolveDuration.Observe(elapsed.Seconds())
	r.nodes.record(n)
}

// NodeFailed counts a failed resolution.
func (r *Registry) NodeFailed(string, error) {
	r.resolveFailures.Inc()
}

// PrometheusRegistry returns the underlying Prometheus registry.
func (r *Registry) PrometheusRegistry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile writes all metrics to path in the text exposition format.
// The file is replaced atomically.
func (r *Registry) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}
	return nil
}
