// Package mesh maintains a live, ranked view of the remote nodes the syncer
// can fetch blocks from. It owns all mutable per-node state and refreshes it
// on background intervals; consumers only ever see immutable snapshots.
package mesh

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/marcosrachid/go-neo-fullnode/common/types"
)

// ErrUnknownNode is returned when acquiring an endpoint that was never
// registered.
var ErrUnknownNode = errors.New("mesh: unknown node")

// probeConcurrency bounds how many probes a single refresh pass runs at once.
const probeConcurrency = 16

type Config struct {
	// BenchmarkInterval is how often every node is probed for height and
	// latency.
	BenchmarkInterval time.Duration `mapstructure:"benchmark-interval"`
	// FetchUserAgentInterval is how often nodes with a still unknown user
	// agent are probed for it.
	FetchUserAgentInterval time.Duration `mapstructure:"fetch-user-agent-interval"`
	// RefreshUserAgentInterval is how often all user agents are re-probed.
	RefreshUserAgentInterval time.Duration `mapstructure:"refresh-user-agent-interval"`
	// ProbeTimeout bounds every single probe.
	ProbeTimeout time.Duration `mapstructure:"probe-timeout"`
	// ProbesPerSecond caps the outbound probe rate across all nodes.
	ProbesPerSecond float64 `mapstructure:"probes-per-second"`
	// MaxConsecutiveFailures is how many benchmarks in a row must fail
	// before an active node is deactivated. A single timeout does not
	// flap the node.
	MaxConsecutiveFailures int `mapstructure:"max-consecutive-failures"`
	// MinActiveNodes is the number of simultaneously active nodes needed
	// for the mesh to signal readiness.
	MinActiveNodes int `mapstructure:"min-active-nodes"`
	// PendingRequestsThreshold excludes nodes with that many in-flight
	// requests from selection.
	PendingRequestsThreshold int `mapstructure:"pending-requests-threshold"`
}

func DefaultConfig() Config {
	return Config{
		BenchmarkInterval:        2 * time.Second,
		FetchUserAgentInterval:   5 * time.Second,
		RefreshUserAgentInterval: 25 * time.Second,
		ProbeTimeout:             10 * time.Second,
		ProbesPerSecond:          25,
		MaxConsecutiveFailures:   3,
		MinActiveNodes:           2,
		PendingRequestsThreshold: 5,
	}
}

// Validate rejects the misconfigurations that are fatal at startup. The
// background loops tick on these intervals, so a non-positive value would
// otherwise only surface as a panic after startup.
func (c Config) Validate() error {
	if c.BenchmarkInterval <= 0 || c.FetchUserAgentInterval <= 0 || c.RefreshUserAgentInterval <= 0 {
		return errors.New("intervals must be positive")
	}
	if c.ProbeTimeout <= 0 {
		return errors.New("probe timeout must be positive")
	}
	if c.ProbesPerSecond <= 0 {
		return fmt.Errorf("probes per second must be positive, got %v", c.ProbesPerSecond)
	}
	if c.MaxConsecutiveFailures < 1 {
		return fmt.Errorf("max consecutive failures must be at least 1, got %d", c.MaxConsecutiveFailures)
	}
	if c.MinActiveNodes < 1 {
		return fmt.Errorf("min active nodes must be at least 1, got %d", c.MinActiveNodes)
	}
	if c.PendingRequestsThreshold < 1 {
		return fmt.Errorf("pending requests threshold must be at least 1, got %d", c.PendingRequestsThreshold)
	}
	return nil
}

type Opt func(*Mesh)

func WithLogger(logger *zap.Logger) Opt {
	return func(m *Mesh) {
		m.logger = logger
	}
}

func WithConfig(cfg Config) Opt {
	return func(m *Mesh) {
		m.cfg = cfg
	}
}

func WithClock(clock clockwork.Clock) Opt {
	return func(m *Mesh) {
		m.clock = clock
	}
}

// Mesh tracks registered nodes and their health.
type Mesh struct {
	logger  *zap.Logger
	cfg     Config
	clock   clockwork.Clock
	prober  prober
	limiter *rate.Limiter

	mu    sync.Mutex
	nodes map[string]*node

	readyOnce sync.Once
	ready     chan struct{}

	eg     errgroup.Group
	cancel context.CancelFunc
}

func New(prober prober, opts ...Opt) *Mesh {
	m := &Mesh{
		logger: zap.NewNop(),
		cfg:    DefaultConfig(),
		clock:  clockwork.NewRealClock(),
		prober: prober,
		nodes:  make(map[string]*node),
		ready:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.limiter = rate.NewLimiter(rate.Limit(m.cfg.ProbesPerSecond), probeConcurrency)
	return m
}

// Register adds endpoints to the mesh. Registering a known endpoint is a
// no-op; new nodes start inactive with unknown height and user agent.
func (m *Mesh) Register(endpoints ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, endpoint := range endpoints {
		if _, exists := m.nodes[endpoint]; exists {
			continue
		}
		m.nodes[endpoint] = &node{endpoint: endpoint}
		m.logger.Debug("node registered", zap.String("endpoint", endpoint))
	}
	nodesTotal.Set(float64(len(m.nodes)))
}

// Start launches the benchmark and user agent refresh loops.
func (m *Mesh) Start(ctx context.Context) {
	ctx, m.cancel = context.WithCancel(ctx)
	m.eg.Go(func() error {
		m.runInterval(ctx, m.cfg.BenchmarkInterval, m.benchmarkAll)
		return nil
	})
	m.eg.Go(func() error {
		m.runInterval(ctx, m.cfg.FetchUserAgentInterval, func(ctx context.Context) {
			m.updateUserAgents(ctx, true)
		})
		return nil
	})
	m.eg.Go(func() error {
		m.runInterval(ctx, m.cfg.RefreshUserAgentInterval, func(ctx context.Context) {
			m.updateUserAgents(ctx, false)
		})
		return nil
	})
}

// Stop terminates the background loops and waits for them.
func (m *Mesh) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
	m.eg.Wait()
}

func (m *Mesh) runInterval(ctx context.Context, interval time.Duration, task func(context.Context)) {
	task(ctx)
	ticker := m.clock.NewTicker(interval)
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

// Ready is closed once at least MinActiveNodes nodes are simultaneously
// active. It never reopens: if peers drop below the threshold later, syncing
// continues opportunistically with whatever remains.
func (m *Mesh) Ready() <-chan struct{} {
	return m.ready
}

func (m *Mesh) endpoints(onlyMissingUserAgent bool) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	endpoints := make([]string, 0, len(m.nodes))
	for endpoint, n := range m.nodes {
		if onlyMissingUserAgent && n.userAgent != "" {
			continue
		}
		endpoints = append(endpoints, endpoint)
	}
	return endpoints
}

func (m *Mesh) benchmarkAll(ctx context.Context) {
	endpoints := m.endpoints(false)
	if len(endpoints) == 0 {
		return
	}
	var eg errgroup.Group
	eg.SetLimit(probeConcurrency)
	for _, endpoint := range endpoints {
		endpoint := endpoint
		eg.Go(func() error {
			if err := m.limiter.Wait(ctx); err != nil {
				return nil
			}
			m.benchmark(ctx, endpoint)
			return nil
		})
	}
	eg.Wait()
	m.updateGauges()
	m.checkReady()
}

func (m *Mesh) benchmark(ctx context.Context, endpoint string) {
	pctx, cancel := context.WithTimeout(ctx, m.cfg.ProbeTimeout)
	defer cancel()
	count, latency, err := m.prober.GetBlockCount(pctx, endpoint)

	m.mu.Lock()
	defer m.mu.Unlock()
	n, exists := m.nodes[endpoint]
	if !exists {
		return
	}
	if err != nil {
		probeFailures.Inc()
		n.failures++
		if n.active && n.failures >= m.cfg.MaxConsecutiveFailures {
			n.active = false
			m.logger.Info("node deactivated",
				zap.String("endpoint", endpoint),
				zap.Int("consecutive_failures", n.failures),
			)
		}
		return
	}
	probeSuccesses.Inc()
	var height types.Height
	if count > 0 {
		height = types.Height(count - 1)
	}
	wasActive := n.active
	n.observe(height, latency)
	if !wasActive {
		m.logger.Info("node activated",
			zap.String("endpoint", endpoint),
			zap.Uint32("height", height.Uint32()),
			zap.Duration("latency", latency),
		)
	}
}

func (m *Mesh) updateUserAgents(ctx context.Context, onlyMissing bool) {
	endpoints := m.endpoints(onlyMissing)
	var eg errgroup.Group
	eg.SetLimit(probeConcurrency)
	for _, endpoint := range endpoints {
		endpoint := endpoint
		eg.Go(func() error {
			if err := m.limiter.Wait(ctx); err != nil {
				return nil
			}
			pctx, cancel := context.WithTimeout(ctx, m.cfg.ProbeTimeout)
			defer cancel()
			userAgent, err := m.prober.GetVersion(pctx, endpoint)
			if err != nil {
				// best effort, the next interval retries
				m.logger.Debug("user agent probe failed",
					zap.String("endpoint", endpoint), zap.Error(err))
				return nil
			}
			m.mu.Lock()
			defer m.mu.Unlock()
			if n, exists := m.nodes[endpoint]; exists && n.userAgent != userAgent {
				n.userAgent = userAgent
				m.logger.Debug("user agent updated",
					zap.String("endpoint", endpoint),
					zap.String("user_agent", userAgent),
				)
			}
			return nil
		})
	}
	eg.Wait()
}

func (m *Mesh) checkReady() {
	if m.ActiveCount() < m.cfg.MinActiveNodes {
		return
	}
	m.readyOnce.Do(func() {
		m.logger.Info("mesh ready", zap.Int("min_active_nodes", m.cfg.MinActiveNodes))
		close(m.ready)
	})
}

func (m *Mesh) updateGauges() {
	m.mu.Lock()
	defer m.mu.Unlock()
	active := 0
	for _, n := range m.nodes {
		if n.active {
			active++
		}
	}
	nodesTotal.Set(float64(len(m.nodes)))
	nodesActive.Set(float64(active))
}

// ActiveCount returns the number of currently active nodes.
func (m *Mesh) ActiveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, n := range m.nodes {
		if n.active {
			count++
		}
	}
	return count
}

// Height returns the greatest height observed on any active node.
func (m *Mesh) Height() types.Height {
	m.mu.Lock()
	defer m.mu.Unlock()
	var height types.Height
	for _, n := range m.nodes {
		if n.active && n.height > height {
			height = n.height
		}
	}
	return height
}

// HighestNode returns the active node with the greatest height, preferring
// lower latency on ties. ok is false when no node is active.
func (m *Mesh) HighestNode() (types.NodeInfo, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var best *node
	for _, n := range m.nodes {
		if !n.active {
			continue
		}
		if best == nil || n.better(best) {
			best = n
		}
	}
	if best == nil {
		return types.NodeInfo{}, false
	}
	return best.info(), true
}

// BestNode selects the node the syncer should fetch from next: active, below
// the pending-requests threshold and not among the excluded endpoints. ok is
// false when no node qualifies; the caller defers the request rather than
// failing it.
func (m *Mesh) BestNode(except ...string) (types.NodeInfo, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var best *node
	for _, n := range m.nodes {
		if !n.active || n.pending >= m.cfg.PendingRequestsThreshold {
			continue
		}
		if excluded(n.endpoint, except) {
			continue
		}
		if best == nil || n.better(best) {
			best = n
		}
	}
	if best == nil {
		return types.NodeInfo{}, false
	}
	return best.info(), true
}

func excluded(endpoint string, except []string) bool {
	for _, e := range except {
		if e == endpoint {
			return true
		}
	}
	return false
}

// Acquire increments the endpoint's in-flight request counter. Callers must
// pair every Acquire with a Release on all exit paths.
func (m *Mesh) Acquire(endpoint string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, exists := m.nodes[endpoint]
	if !exists {
		return ErrUnknownNode
	}
	n.pending++
	return nil
}

// Release decrements the endpoint's in-flight request counter.
func (m *Mesh) Release(endpoint string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n, exists := m.nodes[endpoint]; exists && n.pending > 0 {
		n.pending--
	}
}

// Nodes returns a snapshot of all registered nodes for observers.
func (m *Mesh) Nodes() []types.NodeInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	infos := make([]types.NodeInfo, 0, len(m.nodes))
	for _, n := range m.nodes {
		infos = append(infos, n.info())
	}
	return infos
}
