// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ram

import (
	"math"
	"slices"

	"github.com/pkg/errors"

	"github.com/worbli/rescore/builtin/table"
	"github.com/worbli/rescore/sys"
)

var tableDelRam = sys.MustParseName("delram")

// DelegatedRam is RAM a privileged grantor bought for a recipient.
// The recipient holds it but may not sell it.
type DelegatedRam struct {
	From     sys.Name
	To       sys.Name
	RAMStake uint64
	RAMBytes uint64
}

// grantors are the accounts whose grants are excluded from sales.
func grantors() []sys.Name {
	return []sys.Name{sys.AdminAccount, sys.SystemAccount}
}

// IsGrantor returns whether the account may grant RAM.
func IsGrantor(account sys.Name) bool {
	return slices.Contains(grantors(), account)
}

// Delegations is the table of RAM grants, scoped by grantor.
type Delegations struct {
	tbl *table.Table[DelegatedRam]
}

func NewDelegations(ctx *table.Context) *Delegations {
	return &Delegations{table.New[DelegatedRam](ctx, tableDelRam)}
}

// Get returns the grant from one account to another, nil if none.
func (d *Delegations) Get(from, to sys.Name) (*DelegatedRam, error) {
	return d.tbl.Get(from, to)
}

// Excluded returns the RAM bytes granted to the account, which it cannot sell.
func (d *Delegations) Excluded(account sys.Name) (uint64, error) {
	var sum uint64
	for _, g := range grantors() {
		row, err := d.Get(g, account)
		if err != nil {
			return 0, err
		}
		if row != nil {
			sum += row.RAMBytes
		}
	}
	return sum, nil
}

// Add increases the grant from one account to another. A new grant is billed to the grantor.
func (d *Delegations) Add(from, to sys.Name, stake, bytes uint64) error {
	row, err := d.Get(from, to)
	if err != nil {
		return err
	}
	if row == nil {
		return d.tbl.Insert(from, to, &DelegatedRam{from, to, stake, bytes}, from)
	}
	if row.RAMStake > math.MaxUint64-stake || row.RAMBytes > math.MaxUint64-bytes {
		return errors.New("delegated ram overflow")
	}
	row.RAMStake += stake
	row.RAMBytes += bytes
	return d.tbl.Update(from, to, row, 0)
}

// Sub decreases the grant from one account to another. A grant left without bytes is erased.
func (d *Delegations) Sub(from, to sys.Name, stake, bytes uint64) error {
	row, err := d.Get(from, to)
	if err != nil {
		return err
	}
	if row == nil {
		return errors.Wrapf(table.ErrRowNotFound, "delegated ram %v/%v", from, to)
	}
	if row.RAMStake < stake || row.RAMBytes < bytes {
		return errors.New("delegated ram underflow")
	}
	row.RAMStake -= stake
	row.RAMBytes -= bytes
	if row.RAMBytes == 0 {
		return d.tbl.Erase(from, to)
	}
	return d.tbl.Update(from, to, row, 0)
}
