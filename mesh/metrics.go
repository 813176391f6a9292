package mesh

import (
	"github.com/marcosrachid/go-neo-fullnode/metrics"
)

const namespace = "mesh"

var (
	nodesTotal = metrics.NewGauge(
		"nodes",
		namespace,
		"number of registered nodes",
		[]string{},
	).WithLabelValues()

	nodesActive = metrics.NewGauge(
		"active_nodes",
		namespace,
		"number of active nodes",
		[]string{},
	).WithLabelValues()

	probes = metrics.NewCounter(
		"probes",
		namespace,
		"number of benchmark probes",
		[]string{"outcome"},
	)
	probeSuccesses = probes.WithLabelValues("ok")
	probeFailures  = probes.WithLabelValues("fail")
)
