package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"artconnect/internal/app"
	"artconnect/internal/config"
	"artconnect/internal/logging"
)

// Version is set at build time.
var Version = "dev"

// NewRootCmd returns the root command of the artconnect CLI.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "artconnect",
		Short:         "Score social comments for commercial opportunity and log reply decisions",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       Version,
	}

	rootCmd.AddCommand(newGenerateCmd())
	rootCmd.AddCommand(newScoreCmd())
	rootCmd.AddCommand(newSuggestCmd())
	rootCmd.AddCommand(newDecideCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newServeCmd())

	return rootCmd
}

func loadConfig() (*config.Config, *zap.Logger, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// withApp builds the application, loads the sample batch and runs fn.
func withApp(fn func(a *app.App) error) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	a, err := app.New(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil {
			logger.Warn("⚠️ Failed to close decision log", zap.Error(cerr))
		}
	}()
	if err := a.LoadSamples(); err != nil {
		return fmt.Errorf("%w (run 'artconnect generate' to create sample data)", err)
	}
	return fn(a)
}
