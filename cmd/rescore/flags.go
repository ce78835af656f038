// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"time"

	"gopkg.in/urfave/cli.v1"

	"github.com/worbli/rescore/log"
)

var (
	dataDirFlag = cli.StringFlag{
		Name:   "data-dir",
		Value:  "rescore-data",
		Usage:  "directory for the resource state",
		EnvVar: "RESCORE_DATA_DIR",
	}
	cacheFlag = cli.IntFlag{
		Name:   "cache",
		Value:  4096,
		Usage:  "number of state rows kept in the read cache",
		EnvVar: "RESCORE_CACHE",
	}
	verbosityFlag = cli.Uint64Flag{
		Name:   "verbosity",
		Value:  uint64(log.LegacyLevelInfo),
		Usage:  "log verbosity (0-5)",
		EnvVar: "RESCORE_VERBOSITY",
	}
	jsonLogsFlag = cli.BoolFlag{
		Name:   "json-logs",
		Usage:  "output logs in JSON format",
		EnvVar: "RESCORE_JSON_LOGS",
	}
	timeFlag = cli.Uint64Flag{
		Name:   "time",
		Usage:  "invocation time in unix seconds (defaults to the wall clock)",
		EnvVar: "RESCORE_TIME",
	}
	authFlag = cli.StringSliceFlag{
		Name:  "auth",
		Usage: "accounts authorizing the invocation (defaults to the acting account)",
	}
	enableMetricsFlag = cli.BoolFlag{
		Name:   "enable-metrics",
		Usage:  "enables metrics collection",
		EnvVar: "RESCORE_ENABLE_METRICS",
	}
	metricsAddrFlag = cli.StringFlag{
		Name:   "metrics-addr",
		Value:  "localhost:2112",
		Usage:  "metrics service listening address",
		EnvVar: "RESCORE_METRICS_ADDR",
	}

	genesisFlag = cli.StringFlag{
		Name:   "genesis",
		Usage:  "path to the genesis yaml file",
		EnvVar: "RESCORE_GENESIS",
	}
	transferFlag = cli.BoolFlag{
		Name:  "transfer",
		Usage: "give the staked tokens to the receiver",
	}
	ramManagedFlag = cli.BoolFlag{
		Name:  "ram",
		Usage: "ram limit is managed externally",
	}
	netManagedFlag = cli.BoolFlag{
		Name:  "net",
		Usage: "net limit is managed externally",
	}
	cpuManagedFlag = cli.BoolFlag{
		Name:  "cpu",
		Usage: "cpu limit is managed externally",
	}
	intervalFlag = cli.DurationFlag{
		Name:   "interval",
		Value:  time.Second,
		Usage:  "how often due refunds are dispatched",
		EnvVar: "RESCORE_INTERVAL",
	}
)
