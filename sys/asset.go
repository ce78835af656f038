// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package sys

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MaxAssetAmount is the largest amount an asset may carry.
const MaxAssetAmount = int64(1<<62 - 1)

// Symbol describes a token by its code and decimal precision.
type Symbol struct {
	Precision uint8
	Code      string
}

// String implements the stringer interface.
func (s Symbol) String() string {
	return fmt.Sprintf("%d,%s", s.Precision, s.Code)
}

// Unit returns 10^precision.
func (s Symbol) Unit() int64 {
	unit := int64(1)
	for i := uint8(0); i < s.Precision; i++ {
		unit *= 10
	}
	return unit
}

// Asset is an amount of a token in its smallest unit.
type Asset struct {
	Amount int64
	Symbol Symbol
}

// NewAsset creates an asset of the core symbol.
func NewAsset(amount int64) Asset {
	return Asset{Amount: amount, Symbol: CoreSymbol}
}

// IsValid reports whether the amount is within the supported range.
func (a Asset) IsValid() bool {
	return a.Amount >= -MaxAssetAmount && a.Amount <= MaxAssetAmount && a.Symbol.Code != ""
}

// String renders the asset like `10.0000 WBI`.
func (a Asset) String() string {
	unit := a.Symbol.Unit()
	sign := ""
	amount := a.Amount
	if amount < 0 {
		sign = "-"
		if amount == math.MinInt64 {
			return "invalid"
		}
		amount = -amount
	}
	if a.Symbol.Precision == 0 {
		return fmt.Sprintf("%s%d %s", sign, amount, a.Symbol.Code)
	}
	return fmt.Sprintf("%s%d.%0*d %s", sign, amount/unit, int(a.Symbol.Precision), amount%unit, a.Symbol.Code)
}

// ParseAsset parses `10.0000 WBI`. The number of decimals must match the symbol precision
// given by the string, the resulting symbol is built from it.
func ParseAsset(s string) (Asset, error) {
	fields := strings.Fields(strings.TrimSpace(s))
	if len(fields) != 2 {
		return Asset{}, errors.New("asset must be in form `amount SYMBOL`")
	}
	num, code := fields[0], fields[1]
	if code == "" || len(code) > 7 || strings.ToUpper(code) != code {
		return Asset{}, errors.New("invalid symbol code")
	}

	neg := strings.HasPrefix(num, "-")
	num = strings.TrimPrefix(num, "-")

	intPart, fracPart, hasDot := strings.Cut(num, ".")
	if hasDot && fracPart == "" {
		return Asset{}, errors.New("missing decimals")
	}
	if len(fracPart) > 18 {
		return Asset{}, errors.New("precision too high")
	}
	symbol := Symbol{Precision: uint8(len(fracPart)), Code: code}

	whole, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return Asset{}, fmt.Errorf("invalid amount: %w", err)
	}
	var frac int64
	if fracPart != "" {
		if frac, err = strconv.ParseInt(fracPart, 10, 64); err != nil {
			return Asset{}, fmt.Errorf("invalid amount: %w", err)
		}
	}

	unit := symbol.Unit()
	if whole > MaxAssetAmount/unit {
		return Asset{}, errors.New("amount out of range")
	}
	amount := whole*unit + frac
	if neg {
		amount = -amount
	}
	return Asset{Amount: amount, Symbol: symbol}, nil
}

// MustParseAsset parses asset, it panics on error.
func MustParseAsset(s string) Asset {
	a, err := ParseAsset(s)
	if err != nil {
		panic(err)
	}
	return a
}
