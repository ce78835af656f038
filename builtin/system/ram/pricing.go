// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ram

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

var errPriceOverflow = errors.New("ram price overflow")

func mulDiv(a, b, d uint64) (uint64, error) {
	if d == 0 {
		return 0, errors.New("ram price: division by zero")
	}
	x := new(uint256.Int).Mul(uint256.NewInt(a), uint256.NewInt(b))
	x.Div(x, uint256.NewInt(d))
	if !x.IsUint64() {
		return 0, errPriceOverflow
	}
	return x.Uint64(), nil
}

// BytesPerToken returns floor(maxRAMSize·unit / supply), the RAM bytes bought
// by one whole token.
func BytesPerToken(maxRAMSize, supply, unit uint64) (uint64, error) {
	if supply == 0 {
		return 0, errors.New("ram price: token has no supply")
	}
	return mulDiv(maxRAMSize, unit, supply)
}

// BytesOut returns floor(bytesPerToken·quantity / unit).
func BytesOut(bytesPerToken, quantity, unit uint64) (uint64, error) {
	return mulDiv(bytesPerToken, quantity, unit)
}

// TokensForBytes returns the smallest quantity buying at least bytes,
// ceil(bytes·unit / bytesPerToken).
func TokensForBytes(bytesPerToken, bytes, unit uint64) (uint64, error) {
	if bytesPerToken == 0 {
		return 0, errors.New("ram price: no bytes per token")
	}
	x := new(uint256.Int).Mul(uint256.NewInt(bytes), uint256.NewInt(unit))
	d := uint256.NewInt(bytesPerToken)
	x.Add(x, d).SubUint64(x, 1).Div(x, d)
	if !x.IsUint64() {
		return 0, errPriceOverflow
	}
	return x.Uint64(), nil
}

// SaleProceeds returns floor(ramStake·bytes / ramBytes), the share of the cost
// basis released by selling bytes.
func SaleProceeds(ramStake, ramBytes, bytes uint64) (uint64, error) {
	return mulDiv(ramStake, bytes, ramBytes)
}
