package main

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/blockberries/chainxt/calls"
	"github.com/blockberries/chainxt/types"
)

var submitCmd = &cobra.Command{
	Use:   "submit <module> <function> [args...] | submit --raw <hex>",
	Short: "Build a call, or take an encoded payload, and submit it to the node",
	Long: `Build a call, or take an encoded payload, and submit it to the node.

Calls take the same arguments as "chainxt build". The payload is sent
as is: signing happens outside this tool.`,
	RunE:         runSubmit,
	SilenceUsage: true,
}

func init() {
	submitCmd.Flags().String("raw", "", "hex encoded payload to submit instead of building a call")
	rootCmd.AddCommand(submitCmd)
}

func runSubmit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer log.Sync()

	var payload types.EncodedPayload
	if raw := mustGetString(cmd, "raw"); raw != "" {
		if payload, err = hex.DecodeString(strings.TrimPrefix(raw, "0x")); err != nil {
			return fmt.Errorf("--raw: %w", err)
		}
	} else {
		if len(args) < 2 {
			return fmt.Errorf("submit needs <module> <function> or --raw")
		}
		rt, err := cfg.Runtime.Runtime()
		if err != nil {
			return err
		}
		call, err := buildCall(calls.NewBuilder(rt), args[0], args[1], args[2:])
		if err != nil {
			return err
		}
		payload = call.Encode()
	}

	node, err := dialNode(cfg, log)
	if err != nil {
		return err
	}
	defer node.Close()

	res, err := node.Submit(cmd.Context(), payload)
	if err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	log.Info("submitted", zap.Stringer("hash", res.Hash), zap.Int("bytes", len(payload)))
	fmt.Fprintln(cmd.OutOrStdout(), res.Hash)
	return nil
}
