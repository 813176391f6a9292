// Package cmd contains the fullnode command line interface.
package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/marcosrachid/go-neo-fullnode/config"
	"github.com/marcosrachid/go-neo-fullnode/node"
)

// Version is set at build time via ldflags.
var Version = "development"

func Cmd() *cobra.Command {
	var (
		configPath string
		flagCfg    = config.DefaultConfig()
	)
	cmd := &cobra.Command{
		Use:          "neo-fullnode",
		Short:        "synchronizes a local block store with the ledger held by remote nodes",
		Version:      Version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf := config.DefaultConfig()
			if err := config.LoadConfig(&conf, configPath); err != nil {
				return err
			}
			applyFlags(cmd.Flags(), &conf, &flagCfg)

			logger := node.NewLogger(conf.LOGGING)
			defer logger.Sync()

			app := node.New(
				node.WithConfig(&conf),
				node.WithLog(logger),
			)
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return app.Start(ctx)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&configPath, "config", "c", "", "load configuration from file")
	flags.StringVarP(&flagCfg.DataDirParent, "data-folder", "d",
		flagCfg.DataDirParent, "node data directory")
	flags.StringSliceVar(&flagCfg.Nodes, "nodes",
		flagCfg.Nodes, "JSON-RPC endpoints to seed the mesh with")
	flags.BoolVar(&flagCfg.CollectMetrics, "metrics",
		flagCfg.CollectMetrics, "serve prometheus metrics")
	flags.IntVar(&flagCfg.MetricsPort, "metrics-port",
		flagCfg.MetricsPort, "metrics server port")
	flags.DurationVar(&flagCfg.ProgressInterval, "progress-interval",
		flagCfg.ProgressInterval, "interval between sync progress log lines")
	flags.StringVar(&flagCfg.LOGGING.Level, "log-level",
		flagCfg.LOGGING.Level, "minimum level to log")
	flags.StringVar(&flagCfg.LOGGING.Encoder, "log-encoder",
		flagCfg.LOGGING.Encoder, "log encoding, console or json")
	flags.Uint32Var((*uint32)(&flagCfg.Sync.MinHeight), "min-height",
		flagCfg.Sync.MinHeight.Uint32(), "lowest block height to sync")
	flags.Uint32Var((*uint32)(&flagCfg.Sync.MaxHeight), "max-height",
		flagCfg.Sync.MaxHeight.Uint32(), "highest block height to sync, 0 follows the chain tip")
	flags.IntVar(&flagCfg.Sync.BlockRedundancy, "block-redundancy",
		flagCfg.Sync.BlockRedundancy, "stored copies to keep per block height")
	flags.BoolVar(&flagCfg.Sync.CheckRedundancyBeforeStore, "check-redundancy",
		flagCfg.Sync.CheckRedundancyBeforeStore, "confirm each block against a second node before storing")
	return cmd
}

// applyFlags copies explicitly set flag values over the loaded config, so the
// precedence is defaults < config file < command line.
func applyFlags(flags *pflag.FlagSet, conf, flagCfg *config.Config) {
	flags.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "data-folder":
			conf.DataDirParent = flagCfg.DataDirParent
		case "nodes":
			conf.Nodes = flagCfg.Nodes
		case "metrics":
			conf.CollectMetrics = flagCfg.CollectMetrics
		case "metrics-port":
			conf.MetricsPort = flagCfg.MetricsPort
		case "progress-interval":
			conf.ProgressInterval = flagCfg.ProgressInterval
		case "log-level":
			conf.LOGGING.Level = flagCfg.LOGGING.Level
		case "log-encoder":
			conf.LOGGING.Encoder = flagCfg.LOGGING.Encoder
		case "min-height":
			conf.Sync.MinHeight = flagCfg.Sync.MinHeight
		case "max-height":
			conf.Sync.MaxHeight = flagCfg.Sync.MaxHeight
		case "block-redundancy":
			conf.Sync.BlockRedundancy = flagCfg.Sync.BlockRedundancy
		case "check-redundancy":
			conf.Sync.CheckRedundancyBeforeStore = flagCfg.Sync.CheckRedundancyBeforeStore
		}
	})
}
