// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package limits

import (
	"github.com/worbli/rescore/builtin/table"
	"github.com/worbli/rescore/sys"
)

var tableManaged = sys.MustParseName("managed")

const (
	flagRAMManaged uint8 = 1 << iota
	flagNetManaged
	flagCPUManaged
)

// Flags tell which limit dimensions of an account are set by an external delegate.
type Flags struct {
	RAMManaged bool
	NetManaged bool
	CPUManaged bool
}

func (f Flags) bits() uint8 {
	var b uint8
	if f.RAMManaged {
		b |= flagRAMManaged
	}
	if f.NetManaged {
		b |= flagNetManaged
	}
	if f.CPUManaged {
		b |= flagCPUManaged
	}
	return b
}

func flagsFromBits(b uint8) Flags {
	return Flags{
		RAMManaged: b&flagRAMManaged != 0,
		NetManaged: b&flagNetManaged != 0,
		CPUManaged: b&flagCPUManaged != 0,
	}
}

type flagsRow struct {
	Bits uint8
}

// FlagStore keeps the managed flags per account.
type FlagStore struct {
	tbl   *table.Table[flagsRow]
	payer sys.Name
}

func NewFlagStore(ctx *table.Context) *FlagStore {
	return &FlagStore{table.New[flagsRow](ctx, tableManaged), ctx.Code()}
}

// Get returns the flags of the account, all unset if never written.
func (s *FlagStore) Get(account sys.Name) (Flags, error) {
	row, err := s.tbl.Get(account, account)
	if err != nil || row == nil {
		return Flags{}, err
	}
	return flagsFromBits(row.Bits), nil
}

// Set writes the flags of the account. Clearing every flag removes the row.
func (s *FlagStore) Set(account sys.Name, f Flags) error {
	exists, err := s.tbl.Exists(account, account)
	if err != nil {
		return err
	}
	bits := f.bits()
	switch {
	case bits == 0 && exists:
		return s.tbl.Erase(account, account)
	case bits == 0:
		return nil
	case exists:
		return s.tbl.Update(account, account, &flagsRow{bits}, 0)
	default:
		return s.tbl.Insert(account, account, &flagsRow{bits}, s.payer)
	}
}
