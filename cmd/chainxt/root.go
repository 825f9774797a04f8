package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/blockberries/chainxt/config"
	chainxtgrpc "github.com/blockberries/chainxt/grpc"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:          "chainxt",
	Short:        "Build, submit and watch calls and events of a runtime node",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "path to a YAML config file")
	rootCmd.PersistentFlags().String("endpoint", "", "node gRPC endpoint, overrides the config")
	rootCmd.PersistentFlags().String("log-level", "", "log level, overrides the config")
}

// loadConfig reads the config file and applies command line overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(mustGetString(cmd, "config"))
	if err != nil {
		return nil, err
	}
	if ep := mustGetString(cmd, "endpoint"); ep != "" {
		cfg.Endpoint = ep
	}
	if lvl := mustGetString(cmd, "log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}
	return cfg, nil
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = level
	return zc.Build()
}

func dialNode(cfg *config.Config, log *zap.Logger) (*chainxtgrpc.Client, error) {
	opts := []chainxtgrpc.Option{
		chainxtgrpc.WithLogger(log.Named("grpc")),
		chainxtgrpc.WithDialOptions(grpc.WithTransportCredentials(insecure.NewCredentials())),
	}
	if cfg.RateLimit.RPS > 0 {
		opts = append(opts, chainxtgrpc.WithRateLimit(rate.Limit(cfg.RateLimit.RPS), cfg.RateLimit.Burst))
	}
	return chainxtgrpc.Dial(cfg.Endpoint, opts...)
}

func mustGetString(cmd *cobra.Command, flagName string) string {
	val, err := cmd.Flags().GetString(flagName)
	if err != nil {
		panic(fmt.Sprintf("flags: couldn't find flag %q", flagName))
	}
	return val
}

func mustGetUint32(cmd *cobra.Command, flagName string) uint32 {
	val, err := cmd.Flags().GetUint32(flagName)
	if err != nil {
		panic(fmt.Sprintf("flags: couldn't find flag %q", flagName))
	}
	return val
}
