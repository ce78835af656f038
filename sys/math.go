// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package sys

import "math"

// AddDelta applies a signed delta to an unsigned quantity.
// ok is false if the result would be negative or overflow.
func AddDelta(v uint64, delta int64) (result uint64, ok bool) {
	if delta >= 0 {
		d := uint64(delta)
		if v > math.MaxUint64-d {
			return 0, false
		}
		return v + d, true
	}
	d := uint64(-(delta + 1)) + 1 // safe for math.MinInt64
	if d > v {
		return 0, false
	}
	return v - d, true
}
