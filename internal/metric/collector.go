package metric

import (
	"slices"

	"github.com/neox5/yamlenc/internal/node"
	"github.com/prometheus/client_golang/prometheus"
)

// nodeStats holds the per-node values reported on collection.
type nodeStats struct {
	classes    int
	parameters int
}

// nodeCollector implements prometheus.Collector for per-node gauges.
// The latest resolution of a node replaces earlier ones.
type nodeCollector struct {
	classesDesc    *prometheus.Desc
	parametersDesc *prometheus.Desc
	stats          map[string]nodeStats
}

func newNodeCollector() *nodeCollector {
	return &nodeCollector{
		classesDesc: prometheus.NewDesc(
			NodeClassesName,
			help(NodeClassesName),
			[]string{"node"},
			nil, // No constant labels
		),
		parametersDesc: prometheus.NewDesc(
			NodeParametersName,
			help(NodeParametersName),
			[]string{"node"},
			nil,
		),
		stats: make(map[string]nodeStats),
	}
}

func (c *nodeCollector) record(n *node.Node) {
	c.stats[n.Name] = nodeStats{
		classes:    len(n.Classes),
		parameters: len(n.Parameters),
	}
}

// Describe sends metric descriptors to the channel.
func (c *nodeCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.classesDesc
	ch <- c.parametersDesc
}

// Collect sends one gauge pair per resolved node, ordered by node name.
func (c *nodeCollector) Collect(ch chan<- prometheus.Metric) {
	names := make([]string, 0, len(c.stats))
	for name := range c.stats {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		s := c.stats[name]
		ch <- prometheus.MustNewConstMetric(c.classesDesc, prometheus.GaugeValue, float64(s.classes), name)
		ch <- prometheus.MustNewConstMetric(c.parametersDesc, prometheus.GaugeValue, float64(s.parameters), name)
	}
}
