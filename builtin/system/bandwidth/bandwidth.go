// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package bandwidth implements staking of net and cpu bandwidth between accounts.
package bandwidth

import (
	"github.com/worbli/rescore/builtin/reverts"
	"github.com/worbli/rescore/builtin/system/limits"
	"github.com/worbli/rescore/builtin/system/refund"
	"github.com/worbli/rescore/builtin/system/resources"
	"github.com/worbli/rescore/builtin/table"
	"github.com/worbli/rescore/kv"
	"github.com/worbli/rescore/log"
	"github.com/worbli/rescore/sys"
)

var (
	logger       = log.WithContext("pkg", "bandwidth")
	tableDelBand = sys.MustParseName("delband")
)

// Delegation is the stake one account put up for the bandwidth of another.
type Delegation struct {
	From      sys.Name
	To        sys.Name
	NetWeight uint64
	CPUWeight uint64
}

// IsEmpty returns whether both weights are zero.
func (d *Delegation) IsEmpty() bool {
	return d.NetWeight == 0 && d.CPUWeight == 0
}

// Transferer moves core tokens between accounts.
type Transferer interface {
	Transfer(from, to sys.Name, quantity sys.Asset, memo string) error
}

// Ledger keeps delegations and drives the totals, limits and refunds they affect.
type Ledger struct {
	delegations *table.Table[Delegation]
	totals      *resources.Service
	bridge      *limits.Bridge
	refunds     *refund.Queue
	tokens      Transferer
}

func New(
	ctx *table.Context,
	totals *resources.Service,
	bridge *limits.Bridge,
	refunds *refund.Queue,
	tokens Transferer,
) *Ledger {
	return &Ledger{
		delegations: table.New[Delegation](ctx, tableDelBand),
		totals:      totals,
		bridge:      bridge,
		refunds:     refunds,
		tokens:      tokens,
	}
}

// Delegation returns the stake from one account to another, nil if none.
func (l *Ledger) Delegation(from, to sys.Name) (*Delegation, error) {
	return l.delegations.Get(from, to)
}

// ListFrom lists the committed delegations of an account, in receiver order.
func ListFrom(store kv.Store, code, from sys.Name) ([]Delegation, error) {
	var list []Delegation
	err := table.Scan(store, code, tableDelBand, from, func(_, _ sys.Name, d *Delegation) bool {
		list = append(list, *d)
		return true
	})
	return list, err
}

// Stake delegates net and cpu stake from one account to a receiver. With transfer
// the stake is attributed to the receiver, the tokens still come from the staker.
func (l *Ledger) Stake(from, receiver sys.Name, net, cpu sys.Asset, transfer bool, now uint64) error {
	for _, q := range []sys.Asset{net, cpu} {
		if err := checkQuantity(q, "must stake a positive amount"); err != nil {
			return err
		}
	}
	if err := reverts.Require(net.Amount+cpu.Amount > 0, "must stake a positive amount"); err != nil {
		return err
	}
	if err := reverts.Require(!transfer || from != receiver, "cannot use transfer flag if delegating to self"); err != nil {
		return err
	}
	return l.Change(from, receiver, net.Amount, cpu.Amount, transfer, now)
}

// Unstake withdraws net and cpu stake, the tokens wait in the refund queue.
func (l *Ledger) Unstake(from, receiver sys.Name, net, cpu sys.Asset, now uint64) error {
	for _, q := range []sys.Asset{net, cpu} {
		if err := checkQuantity(q, "must unstake a positive amount"); err != nil {
			return err
		}
	}
	if err := reverts.Require(net.Amount+cpu.Amount > 0, "must unstake a positive amount"); err != nil {
		return err
	}
	return l.Change(from, receiver, -net.Amount, -cpu.Amount, false, now)
}

func checkQuantity(q sys.Asset, msg string) error {
	if err := reverts.Require(q.Symbol == sys.CoreSymbol, "must use core token"); err != nil {
		return err
	}
	return reverts.Require(q.IsValid() && q.Amount >= 0, "%s", msg)
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// Change applies signed stake deltas from one account to a receiver.
func (l *Ledger) Change(from, receiver sys.Name, netDelta, cpuDelta int64, transfer bool, now uint64) error {
	if err := reverts.Require(netDelta != 0 || cpuDelta != 0, "should stake non-zero amount"); err != nil {
		return err
	}
	if err := reverts.Require(abs(netDelta+cpuDelta) >= max(abs(netDelta), abs(cpuDelta)),
		"net and cpu deltas cannot be opposite signs"); err != nil {
		return err
	}

	source := from
	if transfer {
		from = receiver
	}

	if err := l.applyDelegation(from, receiver, netDelta, cpuDelta); err != nil {
		return err
	}

	var payer sys.Name
	if exists, err := l.totalsExist(receiver); err != nil {
		return err
	} else if !exists || from == receiver {
		payer = from
	}
	tot, err := l.totals.ApplyBandwidth(receiver, payer, netDelta, cpuDelta)
	if err != nil {
		return err
	}
	if err := l.bridge.PushBandwidth(receiver, tot.RAMBytes, tot.NetWeight, tot.CPUWeight); err != nil {
		return err
	}

	// the custody account moves nothing and owes no refund to itself
	if source == sys.StakeAccount {
		return nil
	}

	var pay uint64
	if netDelta+cpuDelta < 0 || (!transfer && from == receiver) {
		if pay, err = l.refunds.FoldBandwidth(from, netDelta, cpuDelta, now); err != nil {
			return err
		}
	} else {
		pay = uint64(netDelta) + uint64(cpuDelta)
	}
	logger.Debug("bandwidth changed", "from", from, "receiver", receiver, "net", netDelta, "cpu", cpuDelta, "pay", pay)
	if pay == 0 {
		return nil
	}
	return l.tokens.Transfer(source, sys.StakeAccount, sys.NewAsset(int64(pay)), "stake bandwidth")
}

func (l *Ledger) totalsExist(owner sys.Name) (bool, error) {
	tot, err := l.totals.Totals(owner)
	return tot != nil, err
}

func (l *Ledger) applyDelegation(from, to sys.Name, netDelta, cpuDelta int64) error {
	del, err := l.delegations.Get(from, to)
	if err != nil {
		return err
	}
	exists := del != nil
	if !exists {
		del = &Delegation{From: from, To: to}
	}
	var ok bool
	del.NetWeight, ok = sys.AddDelta(del.NetWeight, netDelta)
	if err := reverts.Require(ok, "insufficient staked net bandwidth"); err != nil {
		return err
	}
	del.CPUWeight, ok = sys.AddDelta(del.CPUWeight, cpuDelta)
	if err := reverts.Require(ok, "insufficient staked cpu bandwidth"); err != nil {
		return err
	}
	switch {
	case del.IsEmpty() && exists:
		return l.delegations.Erase(from, to)
	case del.IsEmpty():
		return nil
	case exists:
		return l.delegations.Update(from, to, del, 0)
	default:
		return l.delegations.Insert(from, to, del, from)
	}
}
