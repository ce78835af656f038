// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package resources keeps the per-account resource totals and the global RAM accounting.
package resources

import (
	"github.com/worbli/rescore/builtin/reverts"
	"github.com/worbli/rescore/builtin/table"
	"github.com/worbli/rescore/sys"
)

var (
	tableTotals = sys.MustParseName("userres")
	tableGlobal = sys.MustParseName("global")
)

// Totals is what an account holds: bandwidth weights staked to it by anyone,
// and the RAM it bought together with its cost basis.
type Totals struct {
	Owner     sys.Name
	NetWeight uint64
	CPUWeight uint64
	RAMStake  uint64
	RAMBytes  uint64
}

// IsEmpty returns whether every quantity is zero.
func (t *Totals) IsEmpty() bool {
	return t.NetWeight == 0 && t.CPUWeight == 0 && t.RAMStake == 0 && t.RAMBytes == 0
}

// GlobalRam is the market wide RAM accounting.
type GlobalRam struct {
	MaxRAMSize            uint64
	TotalRAMBytesReserved uint64
	TotalRAMStake         uint64
}

// Service reads and writes totals and the global RAM state.
type Service struct {
	totals *table.Table[Totals]
	global *table.Singleton[GlobalRam]
}

func New(ctx *table.Context) *Service {
	return &Service{
		totals: table.New[Totals](ctx, tableTotals),
		global: table.NewSingleton[GlobalRam](ctx, tableGlobal),
	}
}

// Totals returns the totals of the owner, nil if none.
func (s *Service) Totals(owner sys.Name) (*Totals, error) {
	return s.totals.Get(owner, owner)
}

// ApplyBandwidth adds weight deltas to the totals of the owner and returns the
// resulting totals. A new row is billed to payer. Emptied totals are erased.
func (s *Service) ApplyBandwidth(owner, payer sys.Name, netDelta, cpuDelta int64) (*Totals, error) {
	return s.apply(owner, payer, func(t *Totals) error {
		var ok bool
		t.NetWeight, ok = sys.AddDelta(t.NetWeight, netDelta)
		if err := reverts.Require(ok, "insufficient staked total net bandwidth"); err != nil {
			return err
		}
		t.CPUWeight, ok = sys.AddDelta(t.CPUWeight, cpuDelta)
		return reverts.Require(ok, "insufficient staked total cpu bandwidth")
	})
}

// ApplyRAM adds RAM byte and stake deltas to the totals of the owner.
func (s *Service) ApplyRAM(owner, payer sys.Name, bytesDelta, stakeDelta int64) (*Totals, error) {
	return s.apply(owner, payer, func(t *Totals) error {
		var ok bool
		t.RAMBytes, ok = sys.AddDelta(t.RAMBytes, bytesDelta)
		if err := reverts.Require(ok, "insufficient ram bytes"); err != nil {
			return err
		}
		t.RAMStake, ok = sys.AddDelta(t.RAMStake, stakeDelta)
		return reverts.Require(ok, "insufficient ram stake")
	})
}

// apply creates or updates the row of owner. An existing row moves to payer
// when payer is not zero.
func (s *Service) apply(owner, payer sys.Name, fn func(*Totals) error) (*Totals, error) {
	cur, err := s.Totals(owner)
	if err != nil {
		return nil, err
	}
	exists := cur != nil
	if !exists {
		cur = &Totals{Owner: owner}
	}
	if err := fn(cur); err != nil {
		return nil, err
	}
	switch {
	case cur.IsEmpty() && exists:
		err = s.totals.Erase(owner, owner)
	case cur.IsEmpty():
	case exists:
		err = s.totals.Update(owner, owner, cur, payer)
	default:
		err = s.totals.Insert(owner, owner, cur, payer)
	}
	if err != nil {
		return nil, err
	}
	return cur, nil
}

// Global returns the global RAM state. MaxRAMSize defaults to the initial size.
func (s *Service) Global() (*GlobalRam, error) {
	g, err := s.global.Get()
	if err != nil {
		return nil, err
	}
	if g == nil {
		g = &GlobalRam{MaxRAMSize: sys.InitialMaxRAMSize}
	}
	return g, nil
}

func (s *Service) SetGlobal(g *GlobalRam) error {
	return s.global.Set(g)
}
