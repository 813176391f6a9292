// Package node wires the fullnode together: configuration, logging, the
// block store, the peer mesh and the syncer.
package node

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/marcosrachid/go-neo-fullnode/config"
	"github.com/marcosrachid/go-neo-fullnode/events"
	"github.com/marcosrachid/go-neo-fullnode/filesystem"
	"github.com/marcosrachid/go-neo-fullnode/mesh"
	"github.com/marcosrachid/go-neo-fullnode/metrics"
	"github.com/marcosrachid/go-neo-fullnode/rpc"
	"github.com/marcosrachid/go-neo-fullnode/storage"
	"github.com/marcosrachid/go-neo-fullnode/syncer"
)

// Option to modify an App instance.
type Option func(app *App)

// WithLog enables a logger for an App.
func WithLog(logger *zap.Logger) Option {
	return func(app *App) {
		app.log = logger
	}
}

// WithConfig overwrites the default App config.
func WithConfig(conf *config.Config) Option {
	return func(app *App) {
		app.Config = conf
	}
}

// App is the fullnode singleton.
type App struct {
	Config   *config.Config
	fileLock *flock.Flock
	store    *storage.LevelDBStore
	client   *rpc.Client
	mesh     *mesh.Mesh
	syncer   *syncer.Syncer
	reporter *events.Reporter
	log      *zap.Logger
	started  chan struct{}
	eg       errgroup.Group
}

// New creates a fullnode app instance.
func New(opts ...Option) *App {
	defaultConfig := config.DefaultConfig()
	app := &App{
		Config:   &defaultConfig,
		log:      zap.NewNop(),
		reporter: events.NewReporter(),
		started:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(app)
	}
	return app
}

// Started is closed once the app has finished starting.
func (app *App) Started() <-chan struct{} {
	return app.started
}

// Lock locks the data directory for exclusive use. It returns an error if
// another instance already holds it.
func (app *App) Lock() error {
	lockPath := app.Config.LockPath()
	lockDir := filepath.Dir(lockPath)
	if _, err := os.Stat(lockDir); errors.Is(err, fs.ErrNotExist) {
		if err := filesystem.ExistOrCreate(lockDir); err != nil {
			return fmt.Errorf("creating dir %s for lock %s: %w", lockDir, lockPath, err)
		}
	}
	fl := flock.New(lockPath)
	locked, err := fl.TryLock()
	if err != nil {
		return fmt.Errorf("flock %s: %w", lockPath, err)
	} else if !locked {
		return fmt.Errorf("only one fullnode instance should be running (locking file %s)", fl.Path())
	}
	app.fileLock = fl
	return nil
}

// Unlock unlocks the data directory. It is a no-op if the app is not locked.
func (app *App) Unlock() {
	if app.fileLock == nil {
		return
	}
	if err := app.fileLock.Unlock(); err != nil {
		app.log.Error("failed to unlock file",
			zap.String("path", app.fileLock.Path()),
			zap.Error(err),
		)
	}
}

// Start brings up every component and blocks until ctx is canceled or a
// component fails to initialize.
func (app *App) Start(ctx context.Context) error {
	if err := app.Config.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := filesystem.ExistOrCreate(app.Config.DataDir()); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	if err := app.Lock(); err != nil {
		return err
	}
	defer app.Unlock()

	store, err := storage.Open(app.Config.StorePath(),
		storage.WithLogger(app.log.Named("store")))
	if err != nil {
		return fmt.Errorf("open block store: %w", err)
	}
	app.store = store
	defer app.store.Close()

	app.client = rpc.New(
		rpc.WithLogger(app.log.Named("rpc")),
		rpc.WithConfig(app.Config.RPC),
	)
	app.mesh = mesh.New(app.client,
		mesh.WithLogger(app.log.Named("mesh")),
		mesh.WithConfig(app.Config.Mesh),
	)
	app.mesh.Register(app.Config.Nodes...)
	app.syncer = syncer.New(app.mesh, app.client, app.store, app.reporter,
		syncer.WithLogger(app.log.Named("sync")),
		syncer.WithConfig(app.Config.Sync),
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if app.Config.CollectMetrics {
		metrics.StartServer(ctx, app.Config.MetricsPort, app.log.Named("metrics"))
	}

	// surface mesh readiness on the app event bus
	app.eg.Go(func() error {
		select {
		case <-ctx.Done():
		case <-app.mesh.Ready():
			app.reporter.ReportReadiness()
			app.log.Info("mesh is ready", zap.Int("active_nodes", app.mesh.ActiveCount()))
		}
		return nil
	})
	app.eg.Go(func() error {
		app.progressLoop(ctx)
		return nil
	})

	app.mesh.Start(ctx)
	app.syncer.Start(ctx)
	app.log.Info("fullnode is up",
		zap.Int("seed_nodes", len(app.Config.Nodes)),
		zap.String("data_dir", app.Config.DataDir()),
	)
	close(app.started)

	<-ctx.Done()
	app.syncer.Stop()
	app.mesh.Stop()
	app.eg.Wait()
	return nil
}

// progressLoop periodically logs a sync progress line.
func (app *App) progressLoop(ctx context.Context) {
	interval := app.Config.ProgressInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			app.log.Info("sync progress",
				zap.Stringer("state", app.syncer.State()),
				zap.Uint32("write_pointer", app.syncer.WritePointer().Uint32()),
				zap.Uint32("mesh_height", app.mesh.Height().Uint32()),
				zap.Int("queue_length", app.syncer.QueueLength()),
				zap.Int("prune_queue_length", app.syncer.PruneQueueLength()),
				zap.Int("missing", app.syncer.MissingCount()),
				zap.Int("excessive", app.syncer.ExcessiveCount()),
				zap.Int("active_nodes", app.mesh.ActiveCount()),
			)
		}
	}
}

// NewLogger builds the app logger from the logging config. Unknown levels
// and encoders fall back to info/console.
func NewLogger(cfg config.LoggerConfig) *zap.Logger {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.Encoding = "console"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if cfg.Encoder == "json" {
		zcfg.Encoding = "json"
	}
	logger, err := zcfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
