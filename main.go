package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/regland/regland/logger"
	"github.com/regland/regland/pkg/config"
)

// Set at build time.
var VERSION = "0.1.0"

var (
	configPath string
	logLevel   string

	cfg *config.Config
	vip *viper.Viper
)

func main() {
	defer logger.Sync() // Make sure that the buffered is flushed.

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "regland",
		Short:         "RegLand regulatory landscape API",
		Version:       VERSION,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup()
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ./regland.yaml or $REGLAND_DATA/regland.yaml)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log.level")

	root.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newLoadExpressionCmd(),
		newQualityCmd(),
		newSnapshotCmd(),
		newConfigCmd(),
	)
	return root
}

// setup loads .env, the config and the logger, in that order.
func setup() error {
	// Try load env
	dotenvErr := godotenv.Load()

	var err error
	cfg, vip, err = config.Load(configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	if err := logger.InitLogger(logger.ParseLevel(cfg.Log.Level)); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if dotenvErr != nil {
		logger.Debug("No .env found, using local environment")
	}
	if os.Getenv(config.DataEnv) == "" {
		logger.Debug("No local environment (REGLAND_DATA), using default value", zap.String("dir", config.DefaultDataDir))
	}
	if f := vip.ConfigFileUsed(); f != "" {
		logger.Debug("Loaded config", zap.String("file", f))
	}
	return nil
}
