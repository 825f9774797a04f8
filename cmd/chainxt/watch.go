package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/blockberries/chainxt/checkpoint"
	"github.com/blockberries/chainxt/config"
	"github.com/blockberries/chainxt/event"
	"github.com/blockberries/chainxt/modules/balances"
	"github.com/blockberries/chainxt/modules/contracts"
	"github.com/blockberries/chainxt/modules/system"
	"github.com/blockberries/chainxt/poller"
	"github.com/blockberries/chainxt/sink"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll the node block by block and deliver decoded events",
	Long: `Poll the node block by block and deliver decoded events.

Every System, Balances and Contracts event is logged and, when a NATS
URL is configured, published. The cursor is checkpointed after each
block, in Redis when configured, so a restarted watch resumes where the
last one stopped.`,
	Args:         cobra.NoArgs,
	RunE:         runWatch,
	SilenceUsage: true,
}

func init() {
	watchFlags(watchCmd)
	rootCmd.AddCommand(watchCmd)
}

func watchFlags(cmd *cobra.Command) {
	cmd.Flags().Uint32("start", 0, "first block index, overrides the checkpoint and config when set")
	cmd.Flags().Uint32("limit", 0, "stop before this block index, overrides the config when set")
}

// applyWatchFlags copies explicitly set --start and --limit into cfg and
// validates the result. It reports whether --start was given, in which
// case the checkpoint is ignored.
func applyWatchFlags(cmd *cobra.Command, cfg *config.Config) (startSet bool, err error) {
	if cmd.Flags().Changed("start") {
		cfg.Poller.Start = mustGetUint32(cmd, "start")
		startSet = true
	}
	if cmd.Flags().Changed("limit") {
		cfg.Poller.Limit = mustGetUint32(cmd, "limit")
	}
	return startSet, cfg.Validate()
}

func runWatch(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	startSet, err := applyWatchFlags(cmd, cfg)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := cfg.Runtime.Runtime()
	if err != nil {
		return err
	}
	filter := event.NewFilter(rt).
		MustRegister(system.Events()...).
		MustRegister(balances.Events()...).
		MustRegister(contracts.Events()...)

	node, err := dialNode(cfg, log)
	if err != nil {
		return err
	}
	defer node.Close()

	store, closeStore := newCheckpointStore(cfg.Checkpoint, log)
	defer closeStore()

	start := cfg.Poller.Start
	if !startSet {
		if start, err = checkpoint.Resume(ctx, store, cfg.Checkpoint.Key, start); err != nil {
			return err
		}
	}

	handlers := []poller.Handler{sink.Log(log.Named("events"))}
	if cfg.Sink.NatsURL != "" {
		ns, err := sink.Connect(cfg.Sink.NatsURL, cfg.Sink.Subject, log.Named("sink"))
		if err != nil {
			return err
		}
		defer ns.Close()
		handlers = append(handlers, ns.Handle)
	}
	handler := checkpoint.Handler(store, cfg.Checkpoint.Key, sink.Chain(handlers...))

	opts := []poller.Option{
		poller.WithBackoff(cfg.Poller.Backoff),
		poller.WithLogger(log.Named("poller")),
	}
	if cfg.Metrics.Listen != "" {
		reg := prometheus.NewRegistry()
		opts = append(opts, poller.WithMetrics(poller.NewMetrics(reg)))
		srv := serveMetrics(cfg.Metrics.Listen, reg, log)
		defer shutdown(srv)
	}

	p := poller.New(node, filter, opts...)
	cursor, err := p.Run(ctx, start, cfg.Poller.Limit, handler)
	if errors.Is(err, context.Canceled) {
		log.Info("watch interrupted", zap.Stringer("cursor", cursor))
		return nil
	}
	if err != nil {
		return fmt.Errorf("watch stopped at %s: %w", cursor, err)
	}
	log.Info("watch done", zap.Stringer("cursor", cursor))
	return nil
}

func newCheckpointStore(cfg config.CheckpointConfig, log *zap.Logger) (checkpoint.Store, func()) {
	if cfg.RedisURL == "" {
		log.Warn("no checkpoint redis configured, cursor is kept in memory")
		return checkpoint.NewMemoryStore(), func() {}
	}
	store, client := checkpoint.NewRedisStoreFromURL(cfg.RedisURL, cfg.Prefix)
	return store, func() { client.Close() }
}

func serveMetrics(addr string, reg *prometheus.Registry, log *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server failed", zap.Error(err))
		}
	}()
	log.Info("serving metrics", zap.String("addr", addr))
	return srv
}

func shutdown(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}
