package syncer

import (
	"context"
	"errors"
	"sort"

	"go.uber.org/zap"

	"github.com/marcosrachid/go-neo-fullnode/common/types"
	"github.com/marcosrachid/go-neo-fullnode/events"
)

// reconcile scans the store for holes and for over-replicated heights.
// Both scans run against the same snapshot of copy counts, bounded by
// the highest stored height so the scan never races the ongoing catch-up.
func (s *Syncer) reconcile(ctx context.Context) {
	highest, ok, err := s.store.HighestHeight()
	if err != nil {
		s.logger.Error("reconciliation scan failed", zap.Error(err))
		return
	}
	if !ok {
		return
	}
	bound := highest
	if s.cfg.MaxHeight != 0 && bound > s.cfg.MaxHeight {
		bound = s.cfg.MaxHeight
	}
	if bound < s.cfg.MinHeight {
		return
	}
	counts, err := s.store.CopyCounts(s.cfg.MinHeight, bound)
	if err != nil {
		s.logger.Error("reconciliation scan failed", zap.Error(err))
		return
	}

	missing := s.enqueueMissing(counts, bound)
	excessive := s.enqueueExcessive(counts)

	s.missingCount.Store(int64(missing))
	s.excessiveCount.Store(int64(excessive))
	missingGauge.Set(float64(missing))
	excessiveGauge.Set(float64(excessive))
	s.reporter.ReportReconciliation(events.ReconciliationStats{
		Missing:   missing,
		Excessive: excessive,
	})
	if missing > 0 || excessive > 0 {
		s.logger.Info("reconciliation found work",
			zap.Int("missing", missing),
			zap.Int("excessive", excessive),
			zap.Uint32("bound", bound.Uint32()),
		)
		if s.getState() == StateUpToDate {
			s.setState(StateCatchingUp)
		}
	}
	s.checkUpToDate()
}

// enqueueMissing queues a store item for every height with zero copies.
// Holes are backfill, not the sync frontier, so they queue below standard
// catch-up work. It returns the number of holes found, counting the ones the
// full queue could not take.
func (s *Syncer) enqueueMissing(counts map[types.Height]int, bound types.Height) int {
	missing := 0
	full := false
	for h := s.cfg.MinHeight; h <= bound; h++ {
		if counts[h] > 0 {
			continue
		}
		missing++
		if full {
			continue
		}
		// a hole invalidates whatever the cache remembered for it
		s.recent.Remove(h)
		err := s.storeQ.enqueue(storeBlockItem, h, s.cfg.MissingPriority)
		if errors.Is(err, ErrQueueFull) {
			full = true
		}
	}
	return missing
}

// enqueueExcessive queues prune items for heights holding more copies than
// the redundancy target, chunked so one pass never floods the prune queue.
func (s *Syncer) enqueueExcessive(counts map[types.Height]int) int {
	var heights []types.Height
	for h, count := range counts {
		if count > s.cfg.BlockRedundancy {
			heights = append(heights, h)
		}
	}
	sort.Slice(heights, func(i, j int) bool { return heights[i] < heights[j] })
	queued := 0
	for _, h := range heights {
		if queued >= s.cfg.MaxPruneChunkSize {
			break
		}
		if err := s.pruneQ.enqueue(pruneBlockItem, h, s.cfg.PrunePriority); err == nil {
			queued++
		}
	}
	return len(heights)
}

// processPrune deletes surplus copies of one height. The copy set is
// re-read immediately before deleting so a prune queued from a stale scan
// never drops a height below the redundancy target, and never below one
// copy regardless of target.
func (s *Syncer) processPrune(ctx context.Context, it *item) {
	defer s.pruneQ.done(it.height)
	copies, err := s.store.Copies(it.height)
	if err != nil {
		s.logger.Error("prune re-check failed",
			zap.Uint32("height", it.height.Uint32()), zap.Error(err))
		return
	}
	for len(copies) > s.cfg.BlockRedundancy && len(copies) > 1 {
		victim := copies[len(copies)-1]
		if err := s.store.DeleteBlock(it.height, victim.Source); err != nil {
			s.logger.Error("prune delete failed",
				zap.Uint32("height", it.height.Uint32()),
				zap.String("source", victim.Source),
				zap.Error(err),
			)
			return
		}
		prunedBlocks.Inc()
		copies = copies[:len(copies)-1]
	}
}
