package main

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/holiman/uint256"
	"github.com/spf13/cobra"

	"github.com/blockberries/chainxt/calls"
	"github.com/blockberries/chainxt/modules/balances"
	"github.com/blockberries/chainxt/modules/contracts"
	"github.com/blockberries/chainxt/modules/system"
	"github.com/blockberries/chainxt/types"
)

var buildCmd = &cobra.Command{
	Use:   "build <module> <function> [args...]",
	Short: "Encode a call and print its payload as hex",
	Long: `Encode a call and print its payload as hex.

Supported calls:
  system remark <data>
  balances transfer <dest> <value>
  contracts put_code <gas_limit> <code>
  contracts create <endowment> <gas_limit> <code_hash> <data>
  contracts call <dest> <value> <gas_limit> <data>

Accounts and hashes are 32-byte hex, values are decimal, data and code
are hex (an empty string is allowed).`,
	Args:         cobra.MinimumNArgs(2),
	RunE:         runBuild,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	rt, err := cfg.Runtime.Runtime()
	if err != nil {
		return err
	}
	call, err := buildCall(calls.NewBuilder(rt), args[0], args[1], args[2:])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), call.Encode().Hex())
	return nil
}

// buildCall maps command line arguments onto the module call families.
func buildCall(b *calls.Builder, module, function string, args []string) (types.Call, error) {
	p := argParser{args: args}
	var (
		call types.Call
		err  error
	)
	switch strings.ToLower(module) + "." + function {
	case "system.remark":
		call, err = system.New(b).Remark(p.hex())
	case "balances.transfer":
		call, err = balances.New(b).Transfer(p.account(), p.balance())
	case "contracts.put_code":
		call, err = contracts.New(b).StoreCode(p.gas(), p.hex())
	case "contracts.create":
		call, err = contracts.New(b).Create(p.balance(), p.gas(), p.hash(), p.hex())
	case "contracts.call":
		call, err = contracts.New(b).Invoke(p.account(), p.balance(), p.gas(), p.hex())
	default:
		return types.Call{}, fmt.Errorf("unknown call %s.%s", module, function)
	}
	if perr := p.done(); perr != nil {
		return types.Call{}, fmt.Errorf("%s.%s: %w", module, function, perr)
	}
	return call, err
}

// argParser consumes positional arguments in order and keeps the first
// error.
type argParser struct {
	args []string
	next int
	err  error
}

func (p *argParser) take(what string) string {
	if p.err != nil {
		return ""
	}
	if p.next >= len(p.args) {
		p.err = fmt.Errorf("missing argument %d (%s)", p.next+1, what)
		return ""
	}
	s := p.args[p.next]
	p.next++
	return s
}

func (p *argParser) fail(what string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("argument %d (%s): %w", p.next, what, err)
	}
}

func (p *argParser) hex() []byte {
	s := p.take("hex data")
	b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		p.fail("hex data", err)
	}
	return b
}

func (p *argParser) account() types.AccountID {
	s := p.take("account")
	if p.err != nil {
		return types.AccountID{}
	}
	a, err := types.AccountIDFromHex(s)
	if err != nil {
		p.fail("account", err)
	}
	return a
}

func (p *argParser) hash() types.Hash {
	s := p.take("hash")
	if p.err != nil {
		return types.Hash{}
	}
	h, err := types.HashFromHex(s)
	if err != nil {
		p.fail("hash", err)
	}
	return h
}

func (p *argParser) balance() *uint256.Int {
	s := p.take("value")
	if p.err != nil {
		return nil
	}
	v, err := types.ParseBalance(s)
	if err != nil {
		p.fail("value", err)
	}
	return v
}

func (p *argParser) gas() contracts.Gas {
	s := p.take("gas limit")
	if p.err != nil {
		return 0
	}
	g, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		p.fail("gas limit", err)
	}
	return g
}

func (p *argParser) done() error {
	if p.err == nil && p.next < len(p.args) {
		p.err = fmt.Errorf("%d unexpected arguments", len(p.args)-p.next)
	}
	return p.err
}
