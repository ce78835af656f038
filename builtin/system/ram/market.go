// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package ram implements the RAM market: pricing, purchases, sales and grants.
package ram

import (
	"github.com/worbli/rescore/builtin/reverts"
	"github.com/worbli/rescore/builtin/system/compliance"
	"github.com/worbli/rescore/builtin/system/limits"
	"github.com/worbli/rescore/builtin/system/refund"
	"github.com/worbli/rescore/builtin/system/resources"
	"github.com/worbli/rescore/builtin/table"
	"github.com/worbli/rescore/log"
	"github.com/worbli/rescore/sys"
)

var logger = log.WithContext("pkg", "ram")

// Tokens is the token ledger as seen by the market.
type Tokens interface {
	Supply() (sys.Asset, error)
	Transfer(from, to sys.Name, quantity sys.Asset, memo string) error
}

// Market prices and executes RAM purchases and sales.
type Market struct {
	totals      *resources.Service
	delegations *Delegations
	bridge      *limits.Bridge
	refunds     *refund.Queue
	tokens      Tokens
	gate        compliance.Gate
}

// New creates the market. A nil gate means no compliance account exists and
// purchases are not checked.
func New(
	ctx *table.Context,
	totals *resources.Service,
	bridge *limits.Bridge,
	refunds *refund.Queue,
	tokens Tokens,
	gate compliance.Gate,
) *Market {
	return &Market{
		totals:      totals,
		delegations: NewDelegations(ctx),
		bridge:      bridge,
		refunds:     refunds,
		tokens:      tokens,
		gate:        gate,
	}
}

// Delegations returns the RAM grants table.
func (m *Market) Delegations() *Delegations {
	return m.delegations
}

// BytesPerToken returns the current price as bytes bought by one whole token.
func (m *Market) BytesPerToken() (uint64, error) {
	g, err := m.totals.Global()
	if err != nil {
		return 0, err
	}
	supply, err := m.tokens.Supply()
	if err != nil {
		return 0, err
	}
	return BytesPerToken(g.MaxRAMSize, uint64(supply.Amount), uint64(supply.Symbol.Unit()))
}

func (m *Market) checkIdentity(payer sys.Name) error {
	if payer == sys.AdminAccount || payer == sys.SystemAccount || m.gate == nil {
		return nil
	}
	failed, err := m.gate.Validate(sys.ComplianceAccount, payer, []compliance.Condition{compliance.Identity})
	if err != nil {
		return err
	}
	return reverts.Require(len(failed) == 0, "RAM purchase denied. %v failed identity check", payer)
}

// quote returns the bytes a purchase of quantity yields.
func (m *Market) quote(quantity sys.Asset) (uint64, error) {
	if err := reverts.Require(quantity.Symbol == sys.CoreSymbol, "must buy ram with core token"); err != nil {
		return 0, err
	}
	if err := reverts.Require(quantity.IsValid() && quantity.Amount > 0, "must purchase a positive amount"); err != nil {
		return 0, err
	}
	bpt, err := m.BytesPerToken()
	if err != nil {
		return 0, err
	}
	bytes, err := BytesOut(bpt, uint64(quantity.Amount), uint64(quantity.Symbol.Unit()))
	if err != nil {
		return 0, err
	}
	return bytes, reverts.Require(bytes > 0, "ram purchase too small")
}

// reserve books bytes and stake into the global counters and the receiver's totals.
func (m *Market) reserve(receiver, payer sys.Name, bytes, stake uint64) (*resources.Totals, error) {
	g, err := m.totals.Global()
	if err != nil {
		return nil, err
	}
	g.TotalRAMBytesReserved += bytes
	g.TotalRAMStake += stake
	if err := m.totals.SetGlobal(g); err != nil {
		return nil, err
	}
	tot, err := m.totals.ApplyRAM(receiver, payer, int64(bytes), int64(stake))
	if err != nil {
		return nil, err
	}
	return tot, m.bridge.PushRAM(receiver, tot.RAMBytes)
}

// release takes bytes and stake out of the global counters and the owner's totals.
func (m *Market) release(owner, payer sys.Name, bytes, stake uint64) error {
	g, err := m.totals.Global()
	if err != nil {
		return err
	}
	if err := reverts.Require(g.TotalRAMBytesReserved >= bytes, "error, attempt to release more ram than reserved"); err != nil {
		return err
	}
	if err := reverts.Require(g.TotalRAMStake >= stake, "error, attempt to unstake more tokens than previously staked"); err != nil {
		return err
	}
	g.TotalRAMBytesReserved -= bytes
	g.TotalRAMStake -= stake
	if err := m.totals.SetGlobal(g); err != nil {
		return err
	}
	tot, err := m.totals.ApplyRAM(owner, payer, -int64(bytes), -int64(stake))
	if err != nil {
		return err
	}
	return m.bridge.PushRAM(owner, tot.RAMBytes)
}

// Buy buys RAM for the receiver at the current price, paid by payer.
// A pending RAM refund of the receiver is consumed before any tokens move.
func (m *Market) Buy(payer, receiver sys.Name, quantity sys.Asset, now uint64) (uint64, error) {
	if err := m.checkIdentity(payer); err != nil {
		return 0, err
	}
	bytes, err := m.quote(quantity)
	if err != nil {
		return 0, err
	}
	if _, err := m.reserve(receiver, receiver, bytes, uint64(quantity.Amount)); err != nil {
		return 0, err
	}

	pay := uint64(quantity.Amount)
	if receiver != sys.StakeAccount {
		if pay, err = m.refunds.NetRAMPurchase(receiver, pay, bytes, now); err != nil {
			return 0, err
		}
	}
	logger.Debug("ram bought", "payer", payer, "receiver", receiver, "quantity", quantity, "bytes", bytes, "pay", pay)
	if pay == 0 || payer == sys.StakeAccount {
		return bytes, nil
	}
	return bytes, m.tokens.Transfer(payer, sys.StakeAccount, sys.NewAsset(int64(pay)), "stake ram")
}

// BuyBytes buys at least bytes of RAM for the receiver.
func (m *Market) BuyBytes(payer, receiver sys.Name, bytes uint64, now uint64) (uint64, error) {
	if err := reverts.Require(bytes > 0, "must purchase a positive amount"); err != nil {
		return 0, err
	}
	bpt, err := m.BytesPerToken()
	if err != nil {
		return 0, err
	}
	cost, err := TokensForBytes(bpt, bytes, uint64(sys.CoreSymbol.Unit()))
	if err != nil {
		return 0, err
	}
	if err := reverts.Require(cost <= uint64(sys.MaxAssetAmount), "must purchase a positive amount"); err != nil {
		return 0, err
	}
	return m.Buy(payer, receiver, sys.NewAsset(int64(cost)), now)
}

// Sell sells bytes of the account's own RAM. The proceeds wait in its refund queue.
func (m *Market) Sell(account sys.Name, bytes int64, now uint64) (uint64, error) {
	if err := reverts.Require(bytes > 0, "cannot sell negative byte"); err != nil {
		return 0, err
	}
	excluded, err := m.delegations.Excluded(account)
	if err != nil {
		return 0, err
	}
	tot, err := m.totals.Totals(account)
	if err != nil {
		return 0, err
	}
	if err := reverts.Require(tot != nil, "no resource row"); err != nil {
		return 0, err
	}
	if err := reverts.Require(tot.RAMBytes >= excluded && tot.RAMBytes-excluded >= uint64(bytes), "insufficient quota"); err != nil {
		return 0, err
	}
	tokens, err := SaleProceeds(tot.RAMStake, tot.RAMBytes, uint64(bytes))
	if err != nil {
		return 0, err
	}
	if err := reverts.Require(tokens > 1, "token amount received from selling ram is too low"); err != nil {
		return 0, err
	}
	if err := m.release(account, account, uint64(bytes), tokens); err != nil {
		return 0, err
	}
	logger.Debug("ram sold", "account", account, "bytes", bytes, "tokens", tokens)
	if account == sys.StakeAccount {
		return tokens, nil
	}
	return tokens, m.refunds.CreditRAMSale(account, tokens, uint64(bytes), now)
}

// Grant buys RAM for the receiver on behalf of a privileged grantor. The granted
// bytes count toward the receiver's RAM but cannot be sold by it.
func (m *Market) Grant(grantor, receiver sys.Name, quantity sys.Asset) (uint64, error) {
	if err := reverts.Require(IsGrantor(grantor), "only privileged accounts may grant ram"); err != nil {
		return 0, err
	}
	if err := reverts.Require(grantor != receiver, "cannot grant ram to self"); err != nil {
		return 0, err
	}
	bytes, err := m.quote(quantity)
	if err != nil {
		return 0, err
	}
	var payer sys.Name
	if tot, err := m.totals.Totals(receiver); err != nil {
		return 0, err
	} else if tot == nil {
		payer = grantor
	}
	if _, err := m.reserve(receiver, payer, bytes, uint64(quantity.Amount)); err != nil {
		return 0, err
	}
	if err := m.delegations.Add(grantor, receiver, uint64(quantity.Amount), bytes); err != nil {
		return 0, err
	}
	logger.Debug("ram granted", "grantor", grantor, "receiver", receiver, "quantity", quantity, "bytes", bytes)
	return bytes, m.tokens.Transfer(grantor, sys.StakeAccount, quantity, "stake ram")
}

// Revoke takes back granted bytes. The grantor receives the released stake
// through its refund queue.
func (m *Market) Revoke(grantor, receiver sys.Name, bytes uint64, now uint64) (uint64, error) {
	if err := reverts.Require(IsGrantor(grantor), "only privileged accounts may revoke ram"); err != nil {
		return 0, err
	}
	if err := reverts.Require(bytes > 0, "cannot revoke negative byte"); err != nil {
		return 0, err
	}
	row, err := m.delegations.Get(grantor, receiver)
	if err != nil {
		return 0, err
	}
	if err := reverts.Require(row != nil, "no delegated ram"); err != nil {
		return 0, err
	}
	if err := reverts.Require(bytes <= row.RAMBytes, "insufficient delegated ram"); err != nil {
		return 0, err
	}
	tokens, err := SaleProceeds(row.RAMStake, row.RAMBytes, bytes)
	if err != nil {
		return 0, err
	}
	if bytes == row.RAMBytes {
		tokens = row.RAMStake
	}
	tot, err := m.totals.Totals(receiver)
	if err != nil {
		return 0, err
	}
	if err := reverts.Require(tot != nil && tot.RAMBytes >= bytes, "insufficient quota"); err != nil {
		return 0, err
	}
	// own sales of the receiver may have released part of the granted stake
	released := min(tokens, tot.RAMStake)
	if err := m.release(receiver, 0, bytes, released); err != nil {
		return 0, err
	}
	if err := m.delegations.Sub(grantor, receiver, tokens, bytes); err != nil {
		return 0, err
	}
	logger.Debug("ram revoked", "grantor", grantor, "receiver", receiver, "bytes", bytes, "tokens", released)
	return released, m.refunds.CreditRAMSale(grantor, released, bytes, now)
}
