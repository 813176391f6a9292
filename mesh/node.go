package mesh

import (
	"time"

	"github.com/marcosrachid/go-neo-fullnode/common/types"
)

// node is the mesh's mutable record for one registered endpoint. It is owned
// by the mesh and never leaves it; callers get types.NodeInfo snapshots.
type node struct {
	endpoint  string
	height    types.Height
	latency   float64 // EWMA of probe round trips, in nanoseconds
	userAgent string
	active    bool
	pending   int
	failures  int // consecutive failed benchmarks
}

// observe records a successful benchmark probe.
func (n *node) observe(height types.Height, latency time.Duration) {
	n.height = height
	if n.latency == 0 {
		n.latency = float64(latency)
	} else {
		// 86% of the value comes from the last 19 observations
		n.latency += (float64(latency) - n.latency) / 10
	}
	n.failures = 0
	n.active = true
}

func (n *node) info() types.NodeInfo {
	return types.NodeInfo{
		Endpoint:  n.endpoint,
		Height:    n.height,
		Latency:   time.Duration(n.latency),
		UserAgent: n.userAgent,
		Active:    n.active,
		Pending:   n.pending,
	}
}

// better ranks nodes for selection: greater height wins, then lower latency,
// then the endpoint string for a deterministic order.
func (n *node) better(other *node) bool {
	if n.height != other.height {
		return n.height > other.height
	}
	if n.latency != other.latency {
		return n.latency < other.latency
	}
	return n.endpoint < other.endpoint
}
