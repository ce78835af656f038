// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"os"

	"gopkg.in/urfave/cli.v1"

	"github.com/worbli/rescore/builtin/system"
	"github.com/worbli/rescore/builtin/system/limits"
	"github.com/worbli/rescore/cmd/rescore/httpserver"
	"github.com/worbli/rescore/log"
	"github.com/worbli/rescore/metrics"
	"github.com/worbli/rescore/sys"
)

var (
	version   string
	gitCommit string
)

func fullVersion() string {
	return fmt.Sprintf("%s-%s", version, gitCommit)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "rescore",
		Usage:     "resource economics engine: bandwidth staking, ram market and refunds",
		Copyright: "2025 The VeChainThor developers",
		Flags: []cli.Flag{
			dataDirFlag,
			cacheFlag,
			verbosityFlag,
			jsonLogsFlag,
			timeFlag,
			authFlag,
			enableMetricsFlag,
			metricsAddrFlag,
		},
		Before: func(ctx *cli.Context) error {
			initLogger(ctx)
			if ctx.Bool(enableMetricsFlag.Name) {
				metrics.InitializePrometheusMetrics()
			}
			return nil
		},
		Commands: []cli.Command{
			{Name: "init", Usage: "write the genesis state", Flags: []cli.Flag{genesisFlag}, Action: initAction},
			{Name: "stake", Usage: "delegate bandwidth", ArgsUsage: "<from> <receiver> <net> <cpu>", Flags: []cli.Flag{transferFlag}, Action: stakeAction},
			{Name: "unstake", Usage: "undelegate bandwidth", ArgsUsage: "<from> <receiver> <net> <cpu>", Action: unstakeAction},
			{Name: "refund", Usage: "claim a matured refund", ArgsUsage: "<owner>", Action: refundAction},
			{Name: "buyram", Usage: "buy ram for a quantity of tokens", ArgsUsage: "<payer> <receiver> <quantity>", Action: buyRamAction},
			{Name: "buyrambytes", Usage: "buy a number of ram bytes", ArgsUsage: "<payer> <receiver> <bytes>", Action: buyRamBytesAction},
			{Name: "sellram", Usage: "sell ram bytes", ArgsUsage: "<account> <bytes>", Action: sellRamAction},
			{Name: "grantram", Usage: "grant ram from a privileged account", ArgsUsage: "<grantor> <receiver> <quantity>", Action: grantRamAction},
			{Name: "revokeram", Usage: "revoke granted ram", ArgsUsage: "<grantor> <receiver> <bytes>", Action: revokeRamAction},
			{Name: "transfer", Usage: "transfer core tokens", ArgsUsage: "<from> <to> <quantity> [memo]", Action: transferAction},
			{Name: "setflags", Usage: "set the managed limit flags of an account", ArgsUsage: "<account>", Flags: []cli.Flag{ramManagedFlag, netManagedFlag, cpuManagedFlag}, Action: setFlagsAction},
			{Name: "setlimits", Usage: "set the limits of an account", ArgsUsage: "<account> <ram> <net> <cpu>", Action: setLimitsAction},
			{Name: "setparam", Usage: "override a governance param", ArgsUsage: "<key> <value>", Action: setParamAction},
			{Name: "show", Usage: "dump the resources of an account", ArgsUsage: "<account>", Action: showAction},
			{Name: "dispatch", Usage: "claim every due refund once", Action: dispatchAction},
			{Name: "serve", Usage: "dispatch due refunds continuously", Flags: []cli.Flag{intervalFlag}, Action: serveAction},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fatal(err)
	}
}

func initAction(ctx *cli.Context) error {
	gene := DefaultGenesis()
	if path := ctx.String(genesisFlag.Name); path != "" {
		var err error
		if gene, err = LoadGenesis(path); err != nil {
			return err
		}
	}
	stater, closeDB, err := openStater(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	st := stater.NewState()
	if err := gene.Apply(st, invocationTime(ctx)); err != nil {
		return err
	}
	stage := st.Stage()
	if err := stage.Commit(); err != nil {
		return err
	}
	log.Info("genesis written", "hash", stage.Hash(), "rows", stage.Len())
	return nil
}

func stakeAction(ctx *cli.Context) error {
	a := &args{ctx: ctx}
	from, receiver := a.name(0, "from"), a.name(1, "receiver")
	net, cpu := a.asset(2, "net"), a.asset(3, "cpu")
	if a.err != nil {
		return a.err
	}
	env, err := newEnv(ctx, from)
	if err != nil {
		return err
	}
	return withSystem(ctx, func(s *system.System) error {
		return s.StakeBandwidth(env, from, receiver, net, cpu, ctx.Bool(transferFlag.Name))
	})
}

func unstakeAction(ctx *cli.Context) error {
	a := &args{ctx: ctx}
	from, receiver := a.name(0, "from"), a.name(1, "receiver")
	net, cpu := a.asset(2, "net"), a.asset(3, "cpu")
	if a.err != nil {
		return a.err
	}
	env, err := newEnv(ctx, from)
	if err != nil {
		return err
	}
	return withSystem(ctx, func(s *system.System) error {
		return s.UnstakeBandwidth(env, from, receiver, net, cpu)
	})
}

func refundAction(ctx *cli.Context) error {
	a := &args{ctx: ctx}
	owner := a.name(0, "owner")
	if a.err != nil {
		return a.err
	}
	env, err := newEnv(ctx, owner)
	if err != nil {
		return err
	}
	return withSystem(ctx, func(s *system.System) error {
		paid, err := s.ClaimRefund(env, owner)
		if err == nil {
			fmt.Println("refunded", paid)
		}
		return err
	})
}

func buyRamAction(ctx *cli.Context) error {
	a := &args{ctx: ctx}
	payer, receiver := a.name(0, "payer"), a.name(1, "receiver")
	quantity := a.asset(2, "quantity")
	if a.err != nil {
		return a.err
	}
	env, err := newEnv(ctx, payer)
	if err != nil {
		return err
	}
	return withSystem(ctx, func(s *system.System) error {
		bytes, err := s.BuyRam(env, payer, receiver, quantity)
		if err == nil {
			fmt.Println("bought", bytes, "bytes")
		}
		return err
	})
}

func buyRamBytesAction(ctx *cli.Context) error {
	a := &args{ctx: ctx}
	payer, receiver := a.name(0, "payer"), a.name(1, "receiver")
	bytes := a.uint(2, "bytes")
	if a.err != nil {
		return a.err
	}
	env, err := newEnv(ctx, payer)
	if err != nil {
		return err
	}
	return withSystem(ctx, func(s *system.System) error {
		bought, err := s.BuyRamBytes(env, payer, receiver, bytes)
		if err == nil {
			fmt.Println("bought", bought, "bytes")
		}
		return err
	})
}

func sellRamAction(ctx *cli.Context) error {
	a := &args{ctx: ctx}
	account := a.name(0, "account")
	bytes := a.int(1, "bytes")
	if a.err != nil {
		return a.err
	}
	env, err := newEnv(ctx, account)
	if err != nil {
		return err
	}
	return withSystem(ctx, func(s *system.System) error {
		tokens, err := s.SellRam(env, account, bytes)
		if err == nil {
			fmt.Println("sold for", tokens, "tokens, refundable after the cooldown")
		}
		return err
	})
}

func grantRamAction(ctx *cli.Context) error {
	a := &args{ctx: ctx}
	grantor, receiver := a.name(0, "grantor"), a.name(1, "receiver")
	quantity := a.asset(2, "quantity")
	if a.err != nil {
		return a.err
	}
	env, err := newEnv(ctx, grantor)
	if err != nil {
		return err
	}
	return withSystem(ctx, func(s *system.System) error {
		bytes, err := s.GrantRam(env, grantor, receiver, quantity)
		if err == nil {
			fmt.Println("granted", bytes, "bytes")
		}
		return err
	})
}

func revokeRamAction(ctx *cli.Context) error {
	a := &args{ctx: ctx}
	grantor, receiver := a.name(0, "grantor"), a.name(1, "receiver")
	bytes := a.uint(2, "bytes")
	if a.err != nil {
		return a.err
	}
	env, err := newEnv(ctx, grantor)
	if err != nil {
		return err
	}
	return withSystem(ctx, func(s *system.System) error {
		tokens, err := s.RevokeRam(env, grantor, receiver, bytes)
		if err == nil {
			fmt.Println("revoked, released", tokens, "tokens")
		}
		return err
	})
}

func transferAction(ctx *cli.Context) error {
	a := &args{ctx: ctx}
	from, to := a.name(0, "from"), a.name(1, "to")
	quantity := a.asset(2, "quantity")
	if a.err != nil {
		return a.err
	}
	env, err := newEnv(ctx, from)
	if err != nil {
		return err
	}
	return withSystem(ctx, func(s *system.System) error {
		return s.Transfer(env, from, to, quantity, ctx.Args().Get(3))
	})
}

func setFlagsAction(ctx *cli.Context) error {
	a := &args{ctx: ctx}
	account := a.name(0, "account")
	if a.err != nil {
		return a.err
	}
	env, err := newEnv(ctx, sys.SystemAccount)
	if err != nil {
		return err
	}
	flags := limits.Flags{
		RAMManaged: ctx.Bool(ramManagedFlag.Name),
		NetManaged: ctx.Bool(netManagedFlag.Name),
		CPUManaged: ctx.Bool(cpuManagedFlag.Name),
	}
	return withSystem(ctx, func(s *system.System) error {
		return s.SetManagedFlags(env, account, flags)
	})
}

func setLimitsAction(ctx *cli.Context) error {
	a := &args{ctx: ctx}
	account := a.name(0, "account")
	l := limits.Limits{RAM: a.int(1, "ram"), Net: a.int(2, "net"), CPU: a.int(3, "cpu")}
	if a.err != nil {
		return a.err
	}
	env, err := newEnv(ctx, sys.SystemAccount)
	if err != nil {
		return err
	}
	return withSystem(ctx, func(s *system.System) error {
		return s.SetLimits(env, account, l)
	})
}

func setParamAction(ctx *cli.Context) error {
	a := &args{ctx: ctx}
	key := a.get(0, "key")
	value := a.uint(1, "value")
	if a.err != nil {
		return a.err
	}
	env, err := newEnv(ctx, sys.SystemAccount)
	if err != nil {
		return err
	}
	return withSystem(ctx, func(s *system.System) error {
		return s.SetParam(env, key, value)
	})
}

func dispatchAction(ctx *cli.Context) error {
	stater, closeDB, err := openStater(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	claimed, err := dispatchDue(stater, invocationTime(ctx))
	if err != nil {
		return err
	}
	fmt.Println("claimed", claimed, "refunds")
	return nil
}

func serveAction(ctx *cli.Context) error {
	exitSignal := handleExitSignal()

	stater, closeDB, err := openStater(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	if ctx.GlobalBool(enableMetricsFlag.Name) {
		url, closeFunc, err := httpserver.StartMetricsServer(ctx.GlobalString(metricsAddrFlag.Name))
		if err != nil {
			return err
		}
		defer closeFunc()
		log.Info("metrics server started", "url", url)
	}

	log.Info("dispatching due refunds", "interval", ctx.Duration(intervalFlag.Name))
	serveDispatch(exitSignal, stater, ctx.Duration(intervalFlag.Name), func() uint64 {
		return invocationTime(ctx)
	})
	return nil
}
