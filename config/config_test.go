package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/marcosrachid/go-neo-fullnode/common/types"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `{
		"main": {
			"nodes": ["http://seed1.example:10332", "http://seed2.example:10332"],
			"metrics": true,
			"metrics-port": 9999,
			"progress-interval": "10s"
		},
		"sync": {
			"min-height": 100,
			"block-redundancy": 2,
			"enqueue-interval": "2s"
		},
		"mesh": {
			"min-active-nodes": 3
		}
	}`)

	cfg := DefaultConfig()
	require.NoError(t, LoadConfig(&cfg, path))

	require.Equal(t, []string{"http://seed1.example:10332", "http://seed2.example:10332"}, cfg.Nodes)
	require.True(t, cfg.CollectMetrics)
	require.Equal(t, 9999, cfg.MetricsPort)
	require.Equal(t, 10*time.Second, cfg.ProgressInterval)
	require.Equal(t, types.Height(100), cfg.Sync.MinHeight)
	require.Equal(t, 2, cfg.Sync.BlockRedundancy)
	require.Equal(t, 2*time.Second, cfg.Sync.EnqueueInterval)
	require.Equal(t, 3, cfg.Mesh.MinActiveNodes)
	// untouched sections keep their defaults
	require.Equal(t, DefaultConfig().Sync.StoreConcurrency, cfg.Sync.StoreConcurrency)
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, `{"main": {"no-such-option": 1}}`)
	cfg := DefaultConfig()
	require.Error(t, LoadConfig(&cfg, path))
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg := DefaultConfig()
	require.Error(t, LoadConfig(&cfg, filepath.Join(t.TempDir(), "nope.json")))
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	require.Error(t, cfg.Validate(), "a node list is required")

	cfg.Nodes = []string{"http://seed1.example:10332"}
	require.NoError(t, cfg.Validate())

	cfg.Sync.MinHeight = 10
	cfg.Sync.MaxHeight = 5
	require.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Nodes = []string{"http://seed1.example:10332"}
	cfg.Mesh.BenchmarkInterval = 0
	require.Error(t, cfg.Validate(), "mesh misconfiguration must fail at startup, not in a background loop")

	cfg = DefaultConfig()
	cfg.Nodes = []string{"http://seed1.example:10332"}
	cfg.Sync.MaxPruneChunkSize = 0
	require.Error(t, cfg.Validate())
}

func TestDataDirPaths(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataDirParent = "/var/lib/neo-fullnode"
	require.Equal(t, "/var/lib/neo-fullnode/blocks", cfg.StorePath())
	require.Equal(t, "/var/lib/neo-fullnode/node.lock", cfg.LockPath())
}
