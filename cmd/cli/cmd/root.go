package cmd

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/permcomb/pkg/config"
	"github.com/permcomb/pkg/telemetry"
	"github.com/permcomb/pkg/utils"
)

var (
	// Global flags
	verbose    bool
	configPath string

	cfg    *config.Config
	logger utils.Logger

	telemetryShutdown telemetry.ShutdownFunc
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "permcomb",
	Short: "Parallel permutation and combination enumeration",
	Long: `permcomb enumerates all permutations of a sequence, or all k-element
combinations drawn from it, in parallel across worker goroutines.

Enumeration can be sharded across independent processes (one per machine in
a cluster) via --cpu-index/--cpu-cnt; the shards cover the space exactly
once with no overlap. Shard progress can be recorded in a database and
results collected in object storage, so cluster runs are mergeable from one
place.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}

		logLevel := utils.ParseLogLevel(cfg.Log.Level)
		if verbose {
			logLevel = utils.LevelDebug
		}

		if cfg.Log.OutputPath != "" {
			logger, err = utils.NewFileLogger(logLevel, cfg.Log.OutputPath)
			if err != nil {
				return err
			}
		} else {
			logger = utils.NewDefaultLogger(logLevel, os.Stdout)
		}

		telemetryShutdown, err = telemetry.Init(cmd.Context())
		if err != nil {
			logger.Warn("failed to initialize telemetry: %v", err)
			telemetryShutdown = nil
		}

		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if telemetryShutdown != nil {
			if err := telemetryShutdown(context.Background()); err != nil {
				logger.Warn("failed to shut down telemetry: %v", err)
			}
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	binName := BinName()
	rootCmd.Example = `  # Enumerate all permutations of four elements on 4 worker threads
  ` + binName + ` perm -e 1,2,3,4 --threads 4

  # Enumerate all 2-element combinations
  ` + binName + ` comb -e a,b,c,d -k 2

  # Run shard 1 of a 2-machine cluster enumeration
  ` + binName + ` perm -e 1,2,3,4 --threads 2 --cpu-index 1 --cpu-cnt 2

  # Look up a single permutation by its lexicographic rank
  ` + binName + ` rank -e 10,20,30 --index 5`
}

// GetLogger returns the configured logger
func GetLogger() utils.Logger {
	if logger == nil {
		return &utils.NullLogger{}
	}
	return logger
}

// GetConfig returns the loaded configuration
func GetConfig() *config.Config {
	return cfg
}

// BinName returns the base name of the current executable
func BinName() string {
	return filepath.Base(os.Args[0])
}
