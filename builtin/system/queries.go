// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package system

import (
	"github.com/worbli/rescore/builtin/system/bandwidth"
	"github.com/worbli/rescore/builtin/system/deferred"
	"github.com/worbli/rescore/builtin/system/limits"
	"github.com/worbli/rescore/builtin/system/ram"
	"github.com/worbli/rescore/builtin/system/refund"
	"github.com/worbli/rescore/builtin/system/resources"
	"github.com/worbli/rescore/sys"
)

// Delegation returns the bandwidth stake from one account to another, nil if none.
func (s *System) Delegation(from, to sys.Name) (*bandwidth.Delegation, error) {
	svc, err := s.services()
	if err != nil {
		return nil, err
	}
	return svc.bandwidth.Delegation(from, to)
}

// Totals returns the resources held by the owner, nil if none.
func (s *System) Totals(owner sys.Name) (*resources.Totals, error) {
	return s.totals.Totals(owner)
}

// RefundRequest returns the pending refund of the owner, nil if none.
func (s *System) RefundRequest(owner sys.Name) (*refund.Request, error) {
	svc, err := s.services()
	if err != nil {
		return nil, err
	}
	return svc.refunds.Get(owner)
}

// RefundDelay returns the cooldown in seconds.
func (s *System) RefundDelay() (uint64, error) {
	svc, err := s.services()
	if err != nil {
		return 0, err
	}
	return svc.refunds.Delay(), nil
}

// PendingTrigger returns the deferred refund trigger of the owner, nil if none.
func (s *System) PendingTrigger(owner sys.Name) (*deferred.Trigger, error) {
	return deferred.New(s.sysCtx).Get(owner)
}

// GlobalRam returns the market wide RAM accounting.
func (s *System) GlobalRam() (*resources.GlobalRam, error) {
	return s.totals.Global()
}

// RamPrice returns the bytes one whole core token currently buys.
func (s *System) RamPrice() (uint64, error) {
	svc, err := s.services()
	if err != nil {
		return 0, err
	}
	return svc.market.BytesPerToken()
}

// DelegatedRam returns the RAM granted from one account to another, nil if none.
func (s *System) DelegatedRam(from, to sys.Name) (*ram.DelegatedRam, error) {
	return ram.NewDelegations(s.sysCtx).Get(from, to)
}

// Limits returns the limits the governor holds for the account.
func (s *System) Limits(account sys.Name) (limits.Limits, error) {
	return s.gov.Limits(account)
}

// RAMUsage returns the storage bytes billed to the account.
func (s *System) RAMUsage(account sys.Name) (uint64, error) {
	return s.gov.RAMUsage(account)
}

// ManagedFlags returns the managed flags of the account.
func (s *System) ManagedFlags(account sys.Name) (limits.Flags, error) {
	return s.flags.Get(account)
}

// Balance returns the core token balance of the account.
func (s *System) Balance(owner sys.Name) (sys.Asset, error) {
	return s.tokens.Balance(owner)
}

// Supply returns the core token supply.
func (s *System) Supply() (sys.Asset, error) {
	return s.tokens.Supply()
}
