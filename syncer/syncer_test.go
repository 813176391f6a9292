package syncer

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap/zaptest"

	"github.com/marcosrachid/go-neo-fullnode/common/types"
	"github.com/marcosrachid/go-neo-fullnode/events"
	"github.com/marcosrachid/go-neo-fullnode/storage"
	"github.com/marcosrachid/go-neo-fullnode/syncer/mocks"
)

const (
	nodeA = "http://a.example:10332"
	nodeB = "http://b.example:10332"
)

type testSyncer struct {
	*Syncer
	msh      *mocks.MockmeshProvider
	fetch    *mocks.Mockfetcher
	store    *storage.LevelDBStore
	reporter *events.Reporter
	clock    clockwork.FakeClock
}

func newTestSyncer(t *testing.T, cfg Config) *testSyncer {
	ctrl := gomock.NewController(t)
	ts := &testSyncer{
		msh:      mocks.NewMockmeshProvider(ctrl),
		fetch:    mocks.NewMockfetcher(ctrl),
		store:    storage.InMemory(),
		reporter: events.NewReporter(),
		clock:    clockwork.NewFakeClock(),
	}
	ts.Syncer = New(ts.msh, ts.fetch, ts.store, ts.reporter,
		WithLogger(zaptest.NewLogger(t)),
		WithConfig(cfg),
		WithClock(ts.clock),
	)
	t.Cleanup(func() { ts.store.Close() })
	return ts
}

func testConfig() Config {
	cfg := DefaultConfig()
	// keep the periodic loops quiescent unless a test advances the clock
	cfg.EnqueueInterval = time.Hour
	cfg.VerifyInterval = time.Hour
	cfg.StoreConcurrency = 2
	cfg.PruneConcurrency = 1
	return cfg
}

func closedChan() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

func waitSignal(t *testing.T, ch <-chan struct{}, msg string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(10 * time.Second):
		t.Fatal(msg)
	}
}

func TestCatchUpReachesUpToDate(t *testing.T) {
	ts := newTestSyncer(t, testConfig())
	ts.msh.EXPECT().Ready().Return(closedChan()).AnyTimes()
	ts.msh.EXPECT().Height().Return(types.Height(3)).AnyTimes()
	ts.msh.EXPECT().BestNode().Return(types.NodeInfo{Endpoint: nodeA}, true).AnyTimes()
	ts.msh.EXPECT().Acquire(nodeA).Return(nil).AnyTimes()
	ts.msh.EXPECT().Release(nodeA).AnyTimes()
	ts.fetch.EXPECT().GetBlock(gomock.Any(), nodeA, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, index uint32) ([]byte, error) {
			return []byte(fmt.Sprintf("block-%d", index)), nil
		},
	).AnyTimes()

	upToDate := ts.reporter.SubscribeUpToDate(4)
	storeReady := ts.reporter.SubscribeStoreReady()

	ts.Start(context.Background())
	defer ts.Stop()

	waitSignal(t, storeReady, "store never became ready")
	waitSignal(t, upToDate, "syncer never reached upToDate")

	require.Equal(t, StateUpToDate, ts.State())
	require.Equal(t, types.Height(3), ts.WritePointer())
	for h := types.Height(1); h <= 3; h++ {
		block, err := ts.store.GetBlock(h)
		require.NoError(t, err)
		require.Equal(t, []byte(fmt.Sprintf("block-%d", h)), block.Data)
		require.Equal(t, nodeA, block.Source)
	}
	// one signal per transition
	select {
	case <-upToDate:
		t.Fatal("upToDate fired more than once for a single transition")
	default:
	}
}

func TestRedundancyMismatchNeverStored(t *testing.T) {
	cfg := testConfig()
	cfg.MaxHeight = 1
	cfg.BlockRedundancy = 2
	cfg.CheckRedundancyBeforeStore = true
	ts := newTestSyncer(t, cfg)

	ts.msh.EXPECT().Ready().Return(closedChan()).AnyTimes()
	ts.msh.EXPECT().Height().Return(types.Height(1)).AnyTimes()
	ts.msh.EXPECT().BestNode().Return(types.NodeInfo{Endpoint: nodeA}, true).AnyTimes()
	ts.msh.EXPECT().BestNode(nodeA).Return(types.NodeInfo{Endpoint: nodeB}, true).AnyTimes()
	ts.msh.EXPECT().Acquire(gomock.Any()).Return(nil).AnyTimes()
	ts.msh.EXPECT().Release(gomock.Any()).AnyTimes()

	// the confirming node disagrees on the first round only
	var bCalls atomic.Int32
	ts.fetch.EXPECT().GetBlock(gomock.Any(), nodeA, uint32(1)).Return([]byte("payload"), nil).AnyTimes()
	ts.fetch.EXPECT().GetBlock(gomock.Any(), nodeB, uint32(1)).DoAndReturn(
		func(context.Context, string, uint32) ([]byte, error) {
			if bCalls.Add(1) == 1 {
				return []byte("tampered"), nil
			}
			return []byte("payload"), nil
		},
	).AnyTimes()

	results := ts.reporter.SubscribeBlockResults(8)
	ts.Start(context.Background())
	defer ts.Stop()

	select {
	case res := <-results:
		require.False(t, res.Success, "mismatched payloads must not count as success")
		require.Equal(t, types.Height(1), res.Height)
	case <-time.After(10 * time.Second):
		t.Fatal("no completion event for the mismatched fetch")
	}
	count, err := ts.store.BlockCount()
	require.NoError(t, err)
	require.Zero(t, count, "a mismatched payload must never reach the store")

	// two tickers plus the retry timer
	ts.clock.BlockUntil(3)
	ts.clock.Advance(cfg.RetryDelay)

	select {
	case res := <-results:
		require.True(t, res.Success)
	case <-time.After(10 * time.Second):
		t.Fatal("retry after mismatch never completed")
	}
	copies, err := ts.store.CountCopies(1)
	require.NoError(t, err)
	require.Equal(t, 2, copies, "confirmed payload should persist both copies")
}

func TestNoEligibleNodeDefersWithoutFailure(t *testing.T) {
	cfg := testConfig()
	cfg.MaxHeight = 1
	ts := newTestSyncer(t, cfg)

	ts.msh.EXPECT().Ready().Return(closedChan()).AnyTimes()
	ts.msh.EXPECT().Height().Return(types.Height(1)).AnyTimes()
	var calls atomic.Int32
	ts.msh.EXPECT().BestNode().DoAndReturn(func(...string) (types.NodeInfo, bool) {
		if calls.Add(1) == 1 {
			return types.NodeInfo{}, false
		}
		return types.NodeInfo{Endpoint: nodeA}, true
	}).AnyTimes()
	ts.msh.EXPECT().Acquire(nodeA).Return(nil).AnyTimes()
	ts.msh.EXPECT().Release(nodeA).AnyTimes()
	ts.fetch.EXPECT().GetBlock(gomock.Any(), nodeA, uint32(1)).Return([]byte("b"), nil).AnyTimes()

	results := ts.reporter.SubscribeBlockResults(8)
	ts.Start(context.Background())
	defer ts.Stop()

	// the deferral schedules a retry timer next to the two tickers
	ts.clock.BlockUntil(3)
	ts.clock.Advance(cfg.RetryDelay)

	select {
	case res := <-results:
		require.True(t, res.Success, "a deferral must not surface as a failure")
	case <-time.After(10 * time.Second):
		t.Fatal("deferred item never completed")
	}
}

func TestEnqueueBackpressure(t *testing.T) {
	cfg := testConfig()
	cfg.MaxQueueLength = 2
	ts := newTestSyncer(t, cfg)
	ts.msh.EXPECT().Height().Return(types.Height(10)).AnyTimes()

	ts.enqueueBlocks(context.Background())
	require.Equal(t, 2, ts.QueueLength(), "enqueue must stop at the queue bound")

	// drain one slot; the next cycle tops the queue back up
	it, ok := ts.storeQ.pop()
	require.True(t, ok)
	require.Equal(t, types.Height(1), it.height)
	ts.completeStoreForTest(t, it)

	ts.enqueueBlocks(context.Background())
	require.Equal(t, 2, ts.QueueLength())
	require.True(t, ts.storeQ.contains(3))
}

// completeStoreForTest persists a placeholder copy and finishes the item the
// way a worker would.
func (ts *testSyncer) completeStoreForTest(t *testing.T, it *item) {
	t.Helper()
	require.NoError(t, ts.store.SaveBlock(&types.Block{
		Height: it.height,
		Hash:   types.CalcHash([]byte("x")),
		Data:   []byte("x"),
		Source: nodeA,
	}))
	ts.completeStore(it)
}

func TestEnqueueSkipsStoredHeights(t *testing.T) {
	ts := newTestSyncer(t, testConfig())
	ts.msh.EXPECT().Height().Return(types.Height(5)).AnyTimes()
	for _, h := range []types.Height{1, 2, 4} {
		require.NoError(t, ts.store.SaveBlock(&types.Block{
			Height: h, Data: []byte("x"), Source: nodeA,
		}))
	}

	ts.enqueueBlocks(context.Background())
	require.Equal(t, 2, ts.QueueLength())
	require.True(t, ts.storeQ.contains(3))
	require.True(t, ts.storeQ.contains(5))
	require.False(t, ts.storeQ.contains(4))
}

func TestEnqueuePausesWithoutActiveNodes(t *testing.T) {
	ts := newTestSyncer(t, testConfig())
	ts.msh.EXPECT().Height().Return(types.Height(0)).AnyTimes()

	ts.enqueueBlocks(context.Background())
	require.Zero(t, ts.QueueLength(), "no work must be queued while the mesh reports no height")
}

func TestNewBlocksMoveUpToDateBackToCatchingUp(t *testing.T) {
	ts := newTestSyncer(t, testConfig())
	ts.msh.EXPECT().Height().Return(types.Height(5)).AnyTimes()
	require.NoError(t, ts.store.SaveBlock(&types.Block{Height: 1, Data: []byte("x"), Source: nodeA}))
	ts.writePointer.Store(1)
	ts.state.Store(uint32(StateUpToDate))

	ts.enqueueBlocks(context.Background())
	require.Equal(t, StateCatchingUp, ts.State())
	require.True(t, ts.storeQ.contains(2))
}

func TestReconcileFindsMissingAndExcessive(t *testing.T) {
	ts := newTestSyncer(t, testConfig())
	ts.msh.EXPECT().Height().Return(types.Height(4)).AnyTimes()
	// heights 1, 2 and 4 stored, 3 is a hole, 2 is over-replicated
	for _, h := range []types.Height{1, 2, 4} {
		require.NoError(t, ts.store.SaveBlock(&types.Block{Height: h, Data: []byte("x"), Source: nodeA}))
	}
	require.NoError(t, ts.store.SaveBlock(&types.Block{Height: 2, Data: []byte("x"), Source: nodeB}))

	stats := ts.reporter.SubscribeReconciliation(1)
	ts.reconcile(context.Background())

	require.Equal(t, 1, ts.MissingCount())
	require.Equal(t, 1, ts.ExcessiveCount())
	require.True(t, ts.storeQ.contains(3), "the hole must be queued for refetch")
	require.True(t, ts.pruneQ.contains(2), "the surplus must be queued for pruning")
	require.Equal(t, 1, ts.PruneQueueLength())
	select {
	case got := <-stats:
		require.Equal(t, events.ReconciliationStats{Missing: 1, Excessive: 1}, got)
	default:
		t.Fatal("reconciliation stats were not published")
	}
}

func TestProcessPruneKeepsRedundancyTarget(t *testing.T) {
	ts := newTestSyncer(t, testConfig())
	for i := 0; i < 3; i++ {
		require.NoError(t, ts.store.SaveBlock(&types.Block{
			Height: 7,
			Data:   []byte("x"),
			Source: fmt.Sprintf("http://n%d.example:10332", i),
		}))
	}

	ts.processPrune(context.Background(), &item{kind: pruneBlockItem, height: 7})

	copies, err := ts.store.CountCopies(7)
	require.NoError(t, err)
	require.Equal(t, 1, copies)
}

func TestProcessPruneRechecksBeforeDeleting(t *testing.T) {
	ts := newTestSyncer(t, testConfig())
	require.NoError(t, ts.store.SaveBlock(&types.Block{Height: 7, Data: []byte("x"), Source: nodeA}))

	// queued from a stale scan: the height is no longer over-replicated
	ts.processPrune(context.Background(), &item{kind: pruneBlockItem, height: 7})

	copies, err := ts.store.CountCopies(7)
	require.NoError(t, err)
	require.Equal(t, 1, copies, "prune must never drop the last copy")
}

func TestInitializeRestoresWritePointer(t *testing.T) {
	ts := newTestSyncer(t, testConfig())
	// contiguous 1..3, then a gap before 5
	for _, h := range []types.Height{1, 2, 3, 5} {
		require.NoError(t, ts.store.SaveBlock(&types.Block{Height: h, Data: []byte("x"), Source: nodeA}))
	}
	storeReady := ts.reporter.SubscribeStoreReady()

	require.NoError(t, ts.initialize(context.Background()))

	require.Equal(t, types.Height(3), ts.WritePointer(), "the pointer stops at the first gap")
	require.Equal(t, StateCatchingUp, ts.State())
	waitSignal(t, storeReady, "store readiness was not signaled")
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.MaxHeight = 5
	cfg.MinHeight = 10
	require.Error(t, cfg.Validate(), "an inverted height range is fatal")

	cfg = DefaultConfig()
	cfg.BlockRedundancy = 0
	require.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.RetryDelay = 0
	require.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.FetchTimeout = 0
	require.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.MaxPruneChunkSize = 0
	require.Error(t, cfg.Validate(), "surplus copies could never be pruned")
}
