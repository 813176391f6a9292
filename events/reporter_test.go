package events

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadinessFiresOnce(t *testing.T) {
	reporter := NewReporter()
	before := reporter.SubscribeReadiness()
	select {
	case <-before:
		t.Fatal("readiness fired before being reported")
	default:
	}

	reporter.ReportReadiness()
	reporter.ReportReadiness()
	<-before

	// late subscribers observe the signal immediately
	<-reporter.SubscribeReadiness()
}

func TestUpToDatePerTransition(t *testing.T) {
	reporter := NewReporter()
	ch := reporter.SubscribeUpToDate(2)

	reporter.ReportUpToDate()
	reporter.ReportUpToDate()
	require.Len(t, ch, 2)
}

func TestBlockResults(t *testing.T) {
	reporter := NewReporter()
	ch := reporter.SubscribeBlockResults(4)

	reporter.ReportBlockResult(BlockResult{Height: 10, Success: true})
	reporter.ReportBlockResult(BlockResult{Height: 11, Success: false})

	require.Equal(t, BlockResult{Height: 10, Success: true}, <-ch)
	require.Equal(t, BlockResult{Height: 11, Success: false}, <-ch)
}

func TestPublishNeverBlocks(t *testing.T) {
	reporter := NewReporter()
	reporter.SubscribeBlockResults(0)
	reporter.SubscribeReconciliation(1)

	// full or zero-capacity subscriber channels must not stall the publisher
	for i := 0; i < 10; i++ {
		reporter.ReportBlockResult(BlockResult{Height: 1, Success: true})
		reporter.ReportReconciliation(ReconciliationStats{Missing: i})
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	r := NewReporter()
	results := r.SubscribeBlockResults(4)
	stats := r.SubscribeReconciliation(4)
	upToDate := r.SubscribeUpToDate(4)

	r.UnsubscribeBlockResults(results)
	r.UnsubscribeReconciliation(stats)
	r.UnsubscribeUpToDate(upToDate)

	r.ReportBlockResult(BlockResult{Height: 1, Success: true})
	r.ReportReconciliation(ReconciliationStats{Missing: 1})
	r.ReportUpToDate()

	require.Empty(t, results)
	require.Empty(t, stats)
	require.Empty(t, upToDate)
}
