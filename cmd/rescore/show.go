// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"gopkg.in/urfave/cli.v1"

	"github.com/worbli/rescore/builtin/system"
	"github.com/worbli/rescore/builtin/system/bandwidth"
	"github.com/worbli/rescore/builtin/system/deferred"
	"github.com/worbli/rescore/builtin/system/limits"
	"github.com/worbli/rescore/builtin/system/refund"
	"github.com/worbli/rescore/builtin/system/resources"
	"github.com/worbli/rescore/state"
	"github.com/worbli/rescore/sys"
)

var dumper = spew.ConfigState{Indent: "  ", SortKeys: true, DisablePointerAddresses: true}

// accountView is everything the resource system keeps about an account.
type accountView struct {
	Account     sys.Name
	Balance     sys.Asset
	Totals      *resources.Totals
	Delegations []bandwidth.Delegation
	Refund      *refund.Request
	Trigger     *deferred.Trigger
	Limits      limits.Limits
	RAMUsage    uint64
	Managed     limits.Flags
	Global      *resources.GlobalRam
	RAMPrice    uint64 // bytes per token, zero before any issue
}

func loadAccountView(stater *state.Stater, account sys.Name) (*accountView, error) {
	st := stater.NewState()
	gate, err := system.ComplianceGate(st)
	if err != nil {
		return nil, err
	}
	s := system.New(st, gate)

	v := &accountView{Account: account}
	if v.Balance, err = s.Balance(account); err != nil {
		return nil, err
	}
	if v.Totals, err = s.Totals(account); err != nil {
		return nil, err
	}
	if v.Delegations, err = bandwidth.ListFrom(stater.Store(), sys.SystemAccount, account); err != nil {
		return nil, err
	}
	if v.Refund, err = s.RefundRequest(account); err != nil {
		return nil, err
	}
	if v.Trigger, err = s.PendingTrigger(account); err != nil {
		return nil, err
	}
	if v.Limits, err = s.Limits(account); err != nil {
		return nil, err
	}
	if v.RAMUsage, err = s.RAMUsage(account); err != nil {
		return nil, err
	}
	if v.Managed, err = s.ManagedFlags(account); err != nil {
		return nil, err
	}
	if v.Global, err = s.GlobalRam(); err != nil {
		return nil, err
	}
	supply, err := s.Supply()
	if err != nil {
		return nil, err
	}
	if supply.Amount > 0 {
		if v.RAMPrice, err = s.RamPrice(); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func showAction(ctx *cli.Context) error {
	a := &args{ctx: ctx}
	account := a.name(0, "account")
	if a.err != nil {
		return a.err
	}
	stater, closeDB, err := openStater(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	v, err := loadAccountView(stater, account)
	if err != nil {
		return err
	}
	fmt.Print(dumper.Sdump(v))
	return nil
}
