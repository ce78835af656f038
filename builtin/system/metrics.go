// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package system

import "github.com/worbli/rescore/metrics"

var (
	metricActionCount    = metrics.LazyLoadCounterVec("action_count", []string{"action", "outcome"})
	metricActionDuration = metrics.LazyLoadHistogram("action_duration_ms", metrics.BucketActionMs)
	metricRefundSettled  = metrics.LazyLoadCounter("refund_settled_amount")
	metricRAMReserved    = metrics.LazyLoadGauge("ram_reserved_bytes")
	metricRAMStake       = metrics.LazyLoadGauge("ram_stake_amount")
)
