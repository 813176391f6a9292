// Package syncer drives the local block store to match the ledger served by
// the mesh's nodes. It runs a bounded store pipeline, a prune pipeline and
// periodic reconciliation scans, each on its own timer, coordinated only
// through the work queues and the write pointer.
package syncer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/marcosrachid/go-neo-fullnode/common/types"
	"github.com/marcosrachid/go-neo-fullnode/events"
	"github.com/marcosrachid/go-neo-fullnode/storage"
)

// errPayloadMismatch marks two independent fetches that disagreed on a
// height's payload. It is transient: the item is retried, never resolved by
// picking a side.
var errPayloadMismatch = errors.New("syncer: redundant payloads mismatch")

// enqueueWindow bounds how many heights one enqueue cycle examines when the
// store queue itself is unbounded.
const enqueueWindow = 10000

type Config struct {
	// MinHeight is the lowest height to sync.
	MinHeight types.Height `mapstructure:"min-height"`
	// MaxHeight caps the synced range; 0 means follow the chain tip.
	MaxHeight types.Height `mapstructure:"max-height"`
	// BlockRedundancy is the number of stored copies a height should keep.
	BlockRedundancy int `mapstructure:"block-redundancy"`
	// CheckRedundancyBeforeStore requires a byte-identical confirmation
	// from a second distinct node before a payload is persisted.
	CheckRedundancyBeforeStore bool `mapstructure:"check-redundancy-before-store"`

	StoreConcurrency int `mapstructure:"store-concurrency"`
	PruneConcurrency int `mapstructure:"prune-concurrency"`

	// EnqueueInterval drives the incremental enqueue loop.
	EnqueueInterval time.Duration `mapstructure:"enqueue-interval"`
	// VerifyInterval drives the missing and excessive reconciliation scans.
	VerifyInterval time.Duration `mapstructure:"verify-interval"`

	// MaxQueueLength bounds the store queue; enqueues past it are deferred
	// to the next cycle. 0 means unbounded.
	MaxQueueLength int `mapstructure:"max-queue-length"`
	// RetryDelay is how long a failed or deferred item waits before it is
	// queued again.
	RetryDelay time.Duration `mapstructure:"retry-delay"`

	// Priorities; lower values are more urgent.
	StandardPriority int `mapstructure:"standard-priority"`
	MissingPriority  int `mapstructure:"missing-priority"`
	RetryPriority    int `mapstructure:"retry-priority"`
	PrunePriority    int `mapstructure:"prune-priority"`

	// MaxPruneChunkSize caps prune enqueues per reconciliation pass.
	MaxPruneChunkSize int `mapstructure:"max-prune-chunk-size"`
	// FetchTimeout bounds every single block fetch.
	FetchTimeout time.Duration `mapstructure:"fetch-timeout"`
	// RecentCacheSize sizes the recently-stored-heights cache.
	RecentCacheSize int `mapstructure:"recent-cache-size"`
}

func DefaultConfig() Config {
	return Config{
		MinHeight:                  1,
		MaxHeight:                  0,
		BlockRedundancy:            1,
		CheckRedundancyBeforeStore: false,
		StoreConcurrency:           30,
		PruneConcurrency:           10,
		EnqueueInterval:            5 * time.Second,
		VerifyInterval:             3 * time.Minute,
		MaxQueueLength:             1000,
		RetryDelay:                 5 * time.Second,
		StandardPriority:           5,
		MissingPriority:            7,
		RetryPriority:              8,
		PrunePriority:              5,
		MaxPruneChunkSize:          1000,
		FetchTimeout:               30 * time.Second,
		RecentCacheSize:            10000,
	}
}

// Validate rejects the misconfigurations that are fatal at startup.
func (c Config) Validate() error {
	if c.MaxHeight != 0 && c.MaxHeight < c.MinHeight {
		return fmt.Errorf("max height %s below min height %s", c.MaxHeight, c.MinHeight)
	}
	if c.BlockRedundancy < 1 {
		return fmt.Errorf("block redundancy must be at least 1, got %d", c.BlockRedundancy)
	}
	if c.StoreConcurrency < 1 || c.PruneConcurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got store=%d prune=%d",
			c.StoreConcurrency, c.PruneConcurrency)
	}
	if c.EnqueueInterval <= 0 || c.VerifyInterval <= 0 {
		return errors.New("intervals must be positive")
	}
	if c.RetryDelay <= 0 {
		return errors.New("retry delay must be positive")
	}
	if c.FetchTimeout <= 0 {
		return errors.New("fetch timeout must be positive")
	}
	// a non-positive chunk size would count excessive copies forever
	// without ever queueing a prune
	if c.MaxPruneChunkSize < 1 {
		return fmt.Errorf("max prune chunk size must be at least 1, got %d", c.MaxPruneChunkSize)
	}
	return nil
}

type Opt func(*Syncer)

func WithLogger(logger *zap.Logger) Opt {
	return func(s *Syncer) {
		s.logger = logger
	}
}

func WithConfig(cfg Config) Opt {
	return func(s *Syncer) {
		s.cfg = cfg
	}
}

func WithClock(clock clockwork.Clock) Opt {
	return func(s *Syncer) {
		s.clock = clock
	}
}

// Syncer owns the sync state machine. All cross-goroutine state lives in
// atomics or behind the queues' own locks; there is no syncer-wide lock.
type Syncer struct {
	logger   *zap.Logger
	cfg      Config
	clock    clockwork.Clock
	msh      meshProvider
	fetcher  fetcher
	store    storage.Store
	reporter *events.Reporter

	storeQ *queue
	pruneQ *queue
	recent *lru.Cache[types.Height, struct{}]

	state          atomic.Uint32
	writePointer   atomic.Int64 // int64(MinHeight)-1 when nothing is stored
	missingCount   atomic.Int64
	excessiveCount atomic.Int64

	// wpMu serializes write pointer advances; reads stay lock-free.
	wpMu sync.Mutex

	eg          errgroup.Group
	cancel      context.CancelFunc
	shutdownCtx context.Context
	startOnce   sync.Once
}

func New(msh meshProvider, fetcher fetcher, store storage.Store, reporter *events.Reporter, opts ...Opt) *Syncer {
	s := &Syncer{
		logger:   zap.NewNop(),
		cfg:      DefaultConfig(),
		clock:    clockwork.NewRealClock(),
		msh:      msh,
		fetcher:  fetcher,
		store:    store,
		reporter: reporter,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.reporter == nil {
		s.reporter = events.NewReporter()
	}
	s.storeQ = newQueue(s.cfg.MaxQueueLength)
	s.pruneQ = newQueue(0)
	recent, err := lru.New[types.Height, struct{}](max(s.cfg.RecentCacheSize, 1))
	if err != nil {
		panic(err)
	}
	s.recent = recent
	s.state.Store(uint32(StateIdle))
	s.writePointer.Store(int64(s.cfg.MinHeight) - 1)
	return s
}

// Start waits for mesh readiness, initializes from the store and launches
// the pipelines. It returns immediately.
func (s *Syncer) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		ctx, s.cancel = context.WithCancel(ctx)
		s.shutdownCtx = ctx
		s.setState(StateInitializing)
		s.eg.Go(func() error {
			select {
			case <-ctx.Done():
				return nil
			case <-s.msh.Ready():
			}
			if err := s.initialize(ctx); err != nil {
				s.logger.Error("store initialization failed", zap.Error(err))
				return nil
			}
			s.run(ctx)
			return nil
		})
	})
}

// Stop terminates all pipelines and waits for in-flight work to settle.
func (s *Syncer) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.eg.Wait()
}

func (s *Syncer) initialize(ctx context.Context) error {
	count, err := s.store.BlockCount()
	if err != nil {
		return fmt.Errorf("read block count: %w", err)
	}
	if err := s.initWritePointer(); err != nil {
		return err
	}
	s.logger.Info("store initialized",
		zap.Uint64("blocks", count),
		zap.Uint32("write_pointer", s.WritePointer().Uint32()),
	)
	s.reporter.ReportStoreReady()
	s.setState(StateCatchingUp)
	return nil
}

func (s *Syncer) initWritePointer() error {
	highest, ok, err := s.store.HighestHeight()
	if err != nil {
		return fmt.Errorf("read highest height: %w", err)
	}
	if !ok {
		return nil
	}
	counts, err := s.store.CopyCounts(s.cfg.MinHeight, highest)
	if err != nil {
		return fmt.Errorf("scan store: %w", err)
	}
	wp := int64(s.cfg.MinHeight) - 1
	for counts[types.Height(wp+1)] > 0 {
		wp++
	}
	s.writePointer.Store(wp)
	writePointerGauge.Set(float64(wp))
	return nil
}

func (s *Syncer) run(ctx context.Context) {
	var eg errgroup.Group
	eg.Go(func() error {
		s.runInterval(ctx, s.cfg.EnqueueInterval, s.enqueueBlocks)
		return nil
	})
	eg.Go(func() error {
		s.runInterval(ctx, s.cfg.VerifyInterval, s.reconcile)
		return nil
	})
	for i := 0; i < s.cfg.StoreConcurrency; i++ {
		eg.Go(func() error {
			s.worker(ctx, s.storeQ, s.processStore)
			return nil
		})
	}
	for i := 0; i < s.cfg.PruneConcurrency; i++ {
		eg.Go(func() error {
			s.worker(ctx, s.pruneQ, s.processPrune)
			return nil
		})
	}
	eg.Wait()
}

func (s *Syncer) runInterval(ctx context.Context, interval time.Duration, task func(context.Context)) {
	task(ctx)
	ticker := s.clock.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			task(ctx)
		}
	}
}

func (s *Syncer) worker(ctx context.Context, q *queue, process func(context.Context, *item)) {
	for {
		it, ok := q.pop()
		if !ok {
			select {
			case <-ctx.Done():
				return
			case <-q.wake:
				continue
			}
		}
		// cascade the wakeup so parked workers pick up remaining items
		if q.len() > 0 {
			q.signal()
		}
		process(ctx, it)
		if ctx.Err() != nil {
			return
		}
	}
}

// targetHeight is the upper bound of the synced range right now.
func (s *Syncer) targetHeight() types.Height {
	target := s.msh.Height()
	if s.cfg.MaxHeight != 0 && target > s.cfg.MaxHeight {
		target = s.cfg.MaxHeight
	}
	return target
}

// enqueueBlocks is the steady-state driver: it queues store work for every
// height between the write pointer and the mesh's highest known height. It
// tolerates gaps; later heights are queued without waiting for earlier ones
// to confirm.
func (s *Syncer) enqueueBlocks(ctx context.Context) {
	meshHeight := s.msh.Height()
	if meshHeight == 0 {
		// zero active nodes: pause, progress resumes when peers recover
		return
	}
	target := s.targetHeight()
	wp := s.writePointer.Load()
	from := int64(s.cfg.MinHeight)
	if wp+1 > from {
		from = wp + 1
	}
	if from > int64(target) {
		s.checkUpToDate()
		return
	}
	if s.getState() == StateUpToDate {
		s.setState(StateCatchingUp)
	}

	window := s.cfg.MaxQueueLength
	if window <= 0 {
		window = enqueueWindow
	}
	end := int64(target)
	if end > from+int64(window)-1 {
		end = from + int64(window) - 1
	}
	counts, err := s.store.CopyCounts(types.Height(from), types.Height(end))
	if err != nil {
		s.logger.Error("enqueue scan failed", zap.Error(err))
		return
	}
	for h := from; h <= end; h++ {
		height := types.Height(h)
		if s.recent.Contains(height) {
			continue
		}
		if counts[height] > 0 {
			s.recent.Add(height, struct{}{})
			continue
		}
		err := s.storeQ.enqueue(storeBlockItem, height, s.cfg.StandardPriority)
		switch {
		case errors.Is(err, errAlreadyTracked):
			continue
		case errors.Is(err, ErrQueueFull):
			// backpressure: the rest waits for the next cycle
			queueDeferrals.Inc()
			queueLengthGauge.Set(float64(s.storeQ.len()))
			return
		}
	}
	queueLengthGauge.Set(float64(s.storeQ.len()))
}

func (s *Syncer) processStore(ctx context.Context, it *item) {
	target, ok := s.msh.BestNode()
	if !ok {
		s.deferItem(it)
		return
	}
	payload, err := s.fetchFrom(ctx, target.Endpoint, it.height)
	if err != nil {
		s.failStore(it, err)
		return
	}
	confirmedBy := ""
	if s.cfg.CheckRedundancyBeforeStore {
		second, ok := s.msh.BestNode(target.Endpoint)
		if !ok {
			// confirmation needs a second distinct node; wait for one
			s.deferItem(it)
			return
		}
		confirmation, err := s.fetchFrom(ctx, second.Endpoint, it.height)
		if err != nil {
			s.failStore(it, err)
			return
		}
		if !bytes.Equal(payload, confirmation) {
			mismatches.Inc()
			s.logger.Warn("redundant payloads mismatch",
				zap.Uint32("height", it.height.Uint32()),
				zap.String("node", target.Endpoint),
				zap.String("confirming_node", second.Endpoint),
			)
			s.failStore(it, errPayloadMismatch)
			return
		}
		confirmedBy = second.Endpoint
	}

	hash := types.CalcHash(payload)
	if err := s.store.SaveBlock(&types.Block{
		Height: it.height,
		Hash:   hash,
		Data:   payload,
		Source: target.Endpoint,
	}); err != nil {
		s.failStore(it, err)
		return
	}
	if confirmedBy != "" && s.cfg.BlockRedundancy > 1 {
		// the confirmed copy counts toward the redundancy target
		if err := s.store.SaveBlock(&types.Block{
			Height: it.height,
			Hash:   hash,
			Data:   payload,
			Source: confirmedBy,
		}); err != nil {
			s.failStore(it, err)
			return
		}
	}
	s.completeStore(it)
}

// fetchFrom downloads one block, holding the node's in-flight slot for the
// duration of the call. The slot is released on every exit path.
func (s *Syncer) fetchFrom(ctx context.Context, endpoint string, height types.Height) ([]byte, error) {
	if err := s.msh.Acquire(endpoint); err != nil {
		return nil, err
	}
	defer s.msh.Release(endpoint)
	fctx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
	defer cancel()
	return s.fetcher.GetBlock(fctx, endpoint, height.Uint32())
}

func (s *Syncer) completeStore(it *item) {
	blocksStored.Inc()
	s.recent.Add(it.height, struct{}{})
	s.storeQ.done(it.height)
	queueLengthGauge.Set(float64(s.storeQ.len()))
	s.reporter.ReportBlockResult(events.BlockResult{Height: it.height, Success: true})
	s.advanceWritePointer()
	s.checkUpToDate()
}

// failStore reports the failure and retries the height after RetryDelay at
// the demoted retry priority. There is no retry ceiling: transient partitions
// are expected to resolve, and perpetual failure stays observable through the
// completion events.
func (s *Syncer) failStore(it *item, err error) {
	storeFailures.Inc()
	s.logger.Debug("store attempt failed",
		zap.Uint32("height", it.height.Uint32()),
		zap.Int("attempts", it.attempts+1),
		zap.Error(err),
	)
	s.reporter.ReportBlockResult(events.BlockResult{Height: it.height, Success: false})
	it.attempts++
	it.priority = s.cfg.RetryPriority
	s.scheduleRequeue(it, s.cfg.RetryDelay)
}

// deferItem re-queues the item unchanged after RetryDelay. Used when no node
// is currently eligible: the request is deferred, not failed.
func (s *Syncer) deferItem(it *item) {
	s.scheduleRequeue(it, s.cfg.RetryDelay)
}

func (s *Syncer) scheduleRequeue(it *item, delay time.Duration) {
	s.clock.AfterFunc(delay, func() {
		if s.shutdownCtx.Err() != nil {
			s.queueFor(it.kind).done(it.height)
			return
		}
		if err := s.queueFor(it.kind).requeue(it); err != nil {
			s.scheduleRequeue(it, delay)
		}
	})
}

func (s *Syncer) queueFor(kind itemKind) *queue {
	if kind == pruneBlockItem {
		return s.pruneQ
	}
	return s.storeQ
}

// advanceWritePointer walks the write pointer over every contiguously stored
// height. It only ever moves forward; there is no rollback signal.
func (s *Syncer) advanceWritePointer() {
	s.wpMu.Lock()
	defer s.wpMu.Unlock()
	wp := s.writePointer.Load()
	for {
		count, err := s.store.CountCopies(types.Height(wp + 1))
		if err != nil {
			s.logger.Error("write pointer scan failed", zap.Error(err))
			return
		}
		if count == 0 {
			break
		}
		wp++
	}
	s.writePointer.Store(wp)
	writePointerGauge.Set(float64(wp))
}

func (s *Syncer) getState() State {
	return State(s.state.Load())
}

func (s *Syncer) setState(newState State) {
	oldState := State(s.state.Swap(uint32(newState)))
	if oldState == newState {
		return
	}
	s.logger.Info("sync state change",
		zap.Stringer("from", oldState),
		zap.Stringer("to", newState),
		zap.Uint32("write_pointer", s.WritePointer().Uint32()),
	)
	stateGauge.Set(float64(newState))
	if newState == StateUpToDate {
		// one signal per transition, not per tick spent in the state
		s.reporter.ReportUpToDate()
	}
}

// checkUpToDate flips the state to UpToDate when the write pointer covers
// the target range and the last reconciliation pass came back clean.
func (s *Syncer) checkUpToDate() {
	if s.getState() != StateCatchingUp {
		return
	}
	target := s.targetHeight()
	if target == 0 {
		return
	}
	// the write pointer only advances over stored heights and prune never
	// drops a height's last copy, so a pointer at the target implies no
	// missing blocks below it; only surplus copies can hold the state back
	if s.writePointer.Load() >= int64(target) && s.excessiveCount.Load() == 0 {
		s.setState(StateUpToDate)
	}
}

// State returns the current synchronization state.
func (s *Syncer) State() State {
	return s.getState()
}

// WritePointer returns the highest contiguously stored height, 0 when
// nothing at or above MinHeight is stored yet.
func (s *Syncer) WritePointer() types.Height {
	wp := s.writePointer.Load()
	if wp < int64(s.cfg.MinHeight) {
		return 0
	}
	return types.Height(wp)
}

// QueueLength returns the store queue's current length.
func (s *Syncer) QueueLength() int {
	return s.storeQ.len()
}

// PruneQueueLength returns the prune queue's current length.
func (s *Syncer) PruneQueueLength() int {
	return s.pruneQ.len()
}

// MissingCount returns the missing-block count from the last reconciliation.
func (s *Syncer) MissingCount() int {
	return int(s.missingCount.Load())
}

// ExcessiveCount returns the excessive-block count from the last
// reconciliation.
func (s *Syncer) ExcessiveCount() int {
	return int(s.excessiveCount.Load())
}
