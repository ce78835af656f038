// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package limits

import (
	"github.com/worbli/rescore/builtin/table"
	"github.com/worbli/rescore/sys"
)

// Unlimited marks a dimension without a ceiling.
const Unlimited int64 = -1

var (
	tableLimits = sys.MustParseName("reslimits")
	tableUsage  = sys.MustParseName("resusage")
)

// Limits are the ceilings of an account. RAM is in bytes, Net and CPU are stake weights.
type Limits struct {
	RAM int64
	Net int64
	CPU int64
}

// stored values are the two's complement of the signed limits, so Unlimited survives rlp.
type limitsRow struct {
	RAM uint64
	Net uint64
	CPU uint64
}

type usageRow struct {
	RAMBytes uint64
}

// Governor is the resource governor owned by the host. It keeps the limits
// and the storage usage of every account.
type Governor struct {
	limits *table.Table[limitsRow]
	usage  *table.Table[usageRow]
	payer  sys.Name

	lowered func(account sys.Name)
}

// NewGovernor creates a governor. Its own rows are billed to nobody, so the
// context should not carry a bill func.
func NewGovernor(ctx *table.Context) *Governor {
	return &Governor{
		limits: table.New[limitsRow](ctx, tableLimits),
		usage:  table.New[usageRow](ctx, tableUsage),
		payer:  ctx.Code(),
	}
}

// Limits returns the limits of the account. Accounts never set are unlimited.
func (g *Governor) Limits(account sys.Name) (Limits, error) {
	row, err := g.limits.Get(account, account)
	if err != nil {
		return Limits{}, err
	}
	if row == nil {
		return Limits{Unlimited, Unlimited, Unlimited}, nil
	}
	return Limits{int64(row.RAM), int64(row.Net), int64(row.CPU)}, nil
}

// OnRAMLimitLowered registers fn to be called whenever SetLimits tightens the
// RAM ceiling of an account, so its usage can be checked against the new one.
func (g *Governor) OnRAMLimitLowered(fn func(account sys.Name)) {
	g.lowered = fn
}

// SetLimits sets all limits of the account.
func (g *Governor) SetLimits(account sys.Name, l Limits) error {
	cur, err := g.Limits(account)
	if err != nil {
		return err
	}
	row := &limitsRow{uint64(l.RAM), uint64(l.Net), uint64(l.CPU)}
	exists, err := g.limits.Exists(account, account)
	if err != nil {
		return err
	}
	if exists {
		err = g.limits.Update(account, account, row, 0)
	} else {
		err = g.limits.Insert(account, account, row, g.payer)
	}
	if err != nil {
		return err
	}
	if g.lowered != nil && ramLowered(cur.RAM, l.RAM) {
		g.lowered(account)
	}
	return nil
}

// ramLowered reports whether moving the RAM ceiling from cur to next tightens it.
func ramLowered(cur, next int64) bool {
	if next < 0 {
		return false
	}
	return cur < 0 || next < cur
}

// RAMUsage returns the storage bytes billed to the account.
func (g *Governor) RAMUsage(account sys.Name) (uint64, error) {
	row, err := g.usage.Get(account, account)
	if err != nil || row == nil {
		return 0, err
	}
	return row.RAMBytes, nil
}

// AddRAMUsage adjusts the storage bytes billed to the account, flooring at zero.
func (g *Governor) AddRAMUsage(account sys.Name, delta int64) error {
	row, err := g.usage.Get(account, account)
	if err != nil {
		return err
	}
	if row == nil {
		if delta <= 0 {
			return nil
		}
		return g.usage.Insert(account, account, &usageRow{uint64(delta)}, g.payer)
	}
	v, ok := sys.AddDelta(row.RAMBytes, delta)
	if !ok {
		v = 0
	}
	if v == 0 {
		return g.usage.Erase(account, account)
	}
	row.RAMBytes = v
	return g.usage.Update(account, account, row, 0)
}
