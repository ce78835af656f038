// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"gopkg.in/urfave/cli.v1"

	"github.com/worbli/rescore/builtin/system"
	"github.com/worbli/rescore/log"
	"github.com/worbli/rescore/lvldb"
	"github.com/worbli/rescore/state"
	"github.com/worbli/rescore/sys"
)

func fatal(args ...any) {
	var w io.Writer
	if runtime.GOOS == "windows" {
		// The SameFile check below doesn't work on Windows.
		w = os.Stdout
	} else {
		outf, _ := os.Stdout.Stat()
		errf, _ := os.Stderr.Stat()
		if outf != nil && errf != nil && os.SameFile(outf, errf) {
			w = os.Stderr
		} else {
			w = io.MultiWriter(os.Stdout, os.Stderr)
		}
	}
	fmt.Fprint(w, "Fatal: ")
	fmt.Fprintln(w, args...)
	os.Exit(1)
}

func initLogger(ctx *cli.Context) {
	var level slog.LevelVar
	level.Set(log.FromLegacyLevel(int(ctx.Uint64(verbosityFlag.Name))))

	var handler slog.Handler
	if ctx.Bool(jsonLogsFlag.Name) {
		handler = log.JSONHandlerWithLevel(os.Stderr, &level)
	} else {
		fd := os.Stderr.Fd()
		useColor := (isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)) && os.Getenv("TERM") != "dumb"
		handler = log.NewTerminalHandlerWithLevel(os.Stderr, &level, useColor)
	}
	log.SetDefault(log.NewLogger(handler))
}

func handleExitSignal() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		exitSignalCh := make(chan os.Signal, 1)
		signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)

		sig := <-exitSignalCh
		log.Info("exit signal received", "signal", sig)
		cancel()
	}()
	return ctx
}

func openStater(ctx *cli.Context) (*state.Stater, func(), error) {
	dir := ctx.GlobalString(dataDirFlag.Name)
	if dir == "" {
		return nil, nil, errors.New("data dir required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, nil, errors.Wrap(err, "create data dir")
	}
	db, err := lvldb.New(dir, lvldb.Options{CacheSize: 64})
	if err != nil {
		return nil, nil, err
	}
	return state.NewStater(db, ctx.GlobalInt(cacheFlag.Name)), func() {
		if err := db.Close(); err != nil {
			log.Warn("failed to close db", "err", err)
		}
	}, nil
}

// commit runs fn over a fresh system and writes its changes when fn succeeds.
func commit(stater *state.Stater, fn func(s *system.System) error) error {
	st := stater.NewState()
	gate, err := system.ComplianceGate(st)
	if err != nil {
		return err
	}
	if err := fn(system.New(st, gate)); err != nil {
		return err
	}
	stage := st.Stage()
	if err := stage.Commit(); err != nil {
		return errors.Wrap(err, "commit state")
	}
	log.Debug("state committed", "changes", stage.Len(), "hash", stage.Hash())
	return nil
}

func withSystem(ctx *cli.Context, fn func(s *system.System) error) error {
	stater, closeDB, err := openStater(ctx)
	if err != nil {
		return err
	}
	defer closeDB()
	return commit(stater, fn)
}

func invocationTime(ctx *cli.Context) uint64 {
	if ctx.GlobalIsSet(timeFlag.Name) {
		return ctx.GlobalUint64(timeFlag.Name)
	}
	return uint64(time.Now().Unix())
}

// newEnv builds the env of a command, authorized by --auth or else by the acting account.
func newEnv(ctx *cli.Context, actor sys.Name) (*system.Env, error) {
	auths := ctx.GlobalStringSlice(authFlag.Name)
	if len(auths) == 0 {
		return system.NewEnv(invocationTime(ctx), actor), nil
	}
	names := make([]sys.Name, 0, len(auths))
	for _, a := range auths {
		n, err := sys.ParseName(a)
		if err != nil {
			return nil, errors.Wrapf(err, "auth %q", a)
		}
		names = append(names, n)
	}
	return system.NewEnv(invocationTime(ctx), names...), nil
}

// args parses positional arguments, keeping the first error.
type args struct {
	ctx *cli.Context
	err error
}

func (a *args) get(i int, what string) string {
	if a.err != nil {
		return ""
	}
	if i >= a.ctx.NArg() {
		a.err = errors.Errorf("missing argument <%s>, usage: %s %s", what, a.ctx.Command.Name, a.ctx.Command.ArgsUsage)
		return ""
	}
	return a.ctx.Args().Get(i)
}

func (a *args) name(i int, what string) sys.Name {
	s := a.get(i, what)
	if a.err != nil {
		return 0
	}
	n, err := sys.ParseName(s)
	if err != nil {
		a.err = errors.Wrapf(err, "<%s>", what)
	}
	return n
}

func (a *args) asset(i int, what string) sys.Asset {
	s := a.get(i, what)
	if a.err != nil {
		return sys.Asset{}
	}
	v, err := sys.ParseAsset(s)
	if err != nil {
		a.err = errors.Wrapf(err, "<%s>", what)
	}
	return v
}

func (a *args) int(i int, what string) int64 {
	s := a.get(i, what)
	if a.err != nil {
		return 0
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		a.err = errors.Wrapf(err, "<%s>", what)
	}
	return v
}

func (a *args) uint(i int, what string) uint64 {
	s := a.get(i, what)
	if a.err != nil {
		return 0
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		a.err = errors.Wrapf(err, "<%s>", what)
	}
	return v
}
