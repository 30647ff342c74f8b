package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/techcore/gpu3d/internal/app"
	"github.com/techcore/gpu3d/internal/config"
	"github.com/techcore/gpu3d/internal/logger"
)

var (
	cfgFile string
	flags   config.Flags
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "gpu3d",
	Short: "Interactive 3D viewer for the TechCore GPU model",
	Long: `gpu3d opens a window showing a rotating GPU model loaded from a glTF
asset. When the asset cannot be loaded a procedural placeholder card is
shown instead. Subcommands serve, probe and fetch the asset.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(*cobra.Command, []string) { logger.Sync() },
	RunE:              runView,
}

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Open the viewer window (default)",
	RunE:  runView,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file path (default: search standard locations)")
	flags.Register(pf)

	rootCmd.AddCommand(viewCmd)
}

// setup loads the configuration and initializes logging for every command.
func setup(cmd *cobra.Command, _ []string) error {
	var err error
	cfg, err = config.Load(cfgFile, &flags)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.FileConfig()); err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	return nil
}

func runView(cmd *cobra.Command, _ []string) error {
	logger.Info("=== TechCore GPU 3D ===", zap.String("version", Version))
	logger.Debug("configuration", zap.Any("config", cfg))

	a, err := app.New(cfg, Version)
	if err != nil {
		return fmt.Errorf("starting viewer: %w", err)
	}

	runErr := a.Run()
	if err := a.Close(); err != nil {
		logger.Warn("errors while closing", zap.Error(err))
	}
	if runErr != nil {
		return runErr
	}
	logger.Info("viewer closed normally")
	return nil
}
