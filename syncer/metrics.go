package syncer

import (
	"github.com/marcosrachid/go-neo-fullnode/metrics"
)

const namespace = "syncer"

var (
	blocksStored = metrics.NewCounter(
		"blocks_stored_total",
		namespace,
		"Number of block copies persisted",
		nil,
	).WithLabelValues()

	storeFailures = metrics.NewCounter(
		"store_failures_total",
		namespace,
		"Number of failed block store attempts",
		nil,
	).WithLabelValues()

	mismatches = metrics.NewCounter(
		"payload_mismatches_total",
		namespace,
		"Number of redundancy checks where two nodes disagreed on a payload",
		nil,
	).WithLabelValues()

	prunedBlocks = metrics.NewCounter(
		"blocks_pruned_total",
		namespace,
		"Number of surplus block copies deleted",
		nil,
	).WithLabelValues()

	queueDeferrals = metrics.NewCounter(
		"queue_deferrals_total",
		namespace,
		"Number of enqueue cycles cut short by a full store queue",
		nil,
	).WithLabelValues()

	stateGauge = metrics.NewGauge(
		"state",
		namespace,
		"Current sync state (0=idle 1=initializing 2=catchingUp 3=upToDate)",
		nil,
	).WithLabelValues()

	writePointerGauge = metrics.NewGauge(
		"write_pointer",
		namespace,
		"Highest contiguously stored height",
		nil,
	).WithLabelValues()

	queueLengthGauge = metrics.NewGauge(
		"store_queue_length",
		namespace,
		"Number of items waiting in the store queue",
		nil,
	).WithLabelValues()

	missingGauge = metrics.NewGauge(
		"missing_blocks",
		namespace,
		"Missing heights found by the last reconciliation scan",
		nil,
	).WithLabelValues()

	excessiveGauge = metrics.NewGauge(
		"excessive_blocks",
		namespace,
		"Over-replicated heights found by the last reconciliation scan",
		nil,
	).WithLabelValues()
)
