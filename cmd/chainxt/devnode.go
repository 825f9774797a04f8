package main

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	chainxtgrpc "github.com/blockberries/chainxt/grpc"
	"github.com/blockberries/chainxt/local"
)

var devnodeCmd = &cobra.Command{
	Use:   "devnode",
	Short: "Serve an in-memory chain over gRPC for local development",
	Long: `Serve an in-memory chain over gRPC for local development.

A block is produced every --block-time. Submitted payloads are included
in the next block, each followed by a System.ExtrinsicSuccess event.`,
	Args:         cobra.NoArgs,
	RunE:         runDevnode,
	SilenceUsage: true,
}

func init() {
	devnodeCmd.Flags().String("listen", "127.0.0.1:9944", "gRPC listen address")
	devnodeCmd.Flags().Duration("block-time", 6*time.Second, "interval between produced blocks")
	rootCmd.AddCommand(devnodeCmd)
}

func runDevnode(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer log.Sync()

	blockTime, err := cmd.Flags().GetDuration("block-time")
	if err != nil {
		return err
	}
	lis, err := net.Listen("tcp", mustGetString(cmd, "listen"))
	if err != nil {
		return fmt.Errorf("devnode: %w", err)
	}

	chain := local.New()
	defer chain.Close()
	gs := grpc.NewServer()
	chainxtgrpc.NewServer(chain, log.Named("grpc")).Register(gs)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	go produceBlocks(ctx, chain, blockTime, log)

	go func() {
		<-ctx.Done()
		gs.GracefulStop()
	}()
	log.Info("devnode serving", zap.Stringer("addr", lis.Addr()), zap.Duration("block_time", blockTime))
	return gs.Serve(lis)
}

func produceBlocks(ctx context.Context, chain *local.Chain, every time.Duration, log *zap.Logger) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			pending := len(chain.Pending())
			index, hash := chain.Produce()
			log.Debug("produced block",
				zap.Uint32("index", index),
				zap.Stringer("hash", hash),
				zap.Int("extrinsics", pending),
			)
		}
	}
}
