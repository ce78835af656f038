// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package datagen

import (
	mathrand "math/rand"
)

// RandIntN returns a random int in [0, n).
func RandIntN(n int) int {
	return mathrand.Intn(n) //#nosec G404
}

// RandAmount returns a random amount in [1, n).
func RandAmount(n int64) int64 {
	return mathrand.Int63n(n-1) + 1 //#nosec G404
}
