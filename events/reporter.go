// Package events exposes the node's observable signals as typed channel
// subscriptions. The reporter is instance based, there are no package-level
// streams, and publishing never blocks: a subscriber that stops draining its
// channel loses updates instead of stalling the syncer.
package events

import (
	"sync"

	"github.com/marcosrachid/go-neo-fullnode/common/types"
)

// BlockResult is emitted once per completed store attempt.
type BlockResult struct {
	Height  types.Height
	Success bool
}

// ReconciliationStats is emitted after every reconciliation pass.
type ReconciliationStats struct {
	Missing   int
	Excessive int
}

// Reporter fans typed events out to subscribers.
type Reporter struct {
	mu sync.Mutex

	ready      signal
	storeReady signal

	upToDate     map[chan struct{}]struct{}
	blockResults map[chan BlockResult]struct{}
	recon        map[chan ReconciliationStats]struct{}
}

// signal is a one-time broadcast. Subscribing after it fired yields an
// already-closed channel.
type signal struct {
	fired bool
	subs  []chan struct{}
}

func (s *signal) subscribe() <-chan struct{} {
	ch := make(chan struct{})
	if s.fired {
		close(ch)
		return ch
	}
	s.subs = append(s.subs, ch)
	return ch
}

func (s *signal) fire() {
	if s.fired {
		return
	}
	s.fired = true
	for _, ch := range s.subs {
		close(ch)
	}
	s.subs = nil
}

func NewReporter() *Reporter {
	return &Reporter{
		upToDate:     make(map[chan struct{}]struct{}),
		blockResults: make(map[chan BlockResult]struct{}),
		recon:        make(map[chan ReconciliationStats]struct{}),
	}
}

// SubscribeReadiness returns a channel closed once the mesh reaches its
// minimum active peer count.
func (r *Reporter) SubscribeReadiness() <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ready.subscribe()
}

// SubscribeStoreReady returns a channel closed once the syncer has read the
// store's initial state.
func (r *Reporter) SubscribeStoreReady() <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.storeReady.subscribe()
}

// SubscribeUpToDate delivers one value per transition into the up-to-date
// state, never one per tick spent in it.
func (r *Reporter) SubscribeUpToDate(bufsize int) chan struct{} {
	ch := make(chan struct{}, bufsize)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upToDate[ch] = struct{}{}
	return ch
}

// UnsubscribeUpToDate stops delivery to the channel.
func (r *Reporter) UnsubscribeUpToDate(ch chan struct{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.upToDate, ch)
}

// SubscribeBlockResults delivers per-height completion events.
func (r *Reporter) SubscribeBlockResults(bufsize int) chan BlockResult {
	ch := make(chan BlockResult, bufsize)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.blockResults[ch] = struct{}{}
	return ch
}

// UnsubscribeBlockResults stops delivery to the channel.
func (r *Reporter) UnsubscribeBlockResults(ch chan BlockResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.blockResults, ch)
}

// SubscribeReconciliation delivers missing/excessive counts per pass.
func (r *Reporter) SubscribeReconciliation(bufsize int) chan ReconciliationStats {
	ch := make(chan ReconciliationStats, bufsize)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recon[ch] = struct{}{}
	return ch
}

// UnsubscribeReconciliation stops delivery to the channel.
func (r *Reporter) UnsubscribeReconciliation(ch chan ReconciliationStats) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.recon, ch)
}

func (r *Reporter) ReportReadiness() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ready.fire()
}

func (r *Reporter) ReportStoreReady() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.storeReady.fire()
}

func (r *Reporter) ReportUpToDate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for ch := range r.upToDate {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (r *Reporter) ReportBlockResult(result BlockResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for ch := range r.blockResults {
		select {
		case ch <- result:
		default:
		}
	}
}

func (r *Reporter) ReportReconciliation(stats ReconciliationStats) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for ch := range r.recon {
		select {
		case ch <- stats:
		default:
		}
	}
}
