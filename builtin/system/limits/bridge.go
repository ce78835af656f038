// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package limits

import (
	"github.com/pkg/errors"

	"github.com/worbli/rescore/log"
	"github.com/worbli/rescore/sys"
)

var logger = log.WithContext("pkg", "limits")

// Bridge pushes ceilings derived from staked resources to the governor.
// Dimensions flagged as managed are left as the governor has them.
type Bridge struct {
	gov       *Governor
	flags     *FlagStore
	giftBytes int64
}

func NewBridge(gov *Governor, flags *FlagStore, giftBytes uint64) *Bridge {
	return &Bridge{gov, flags, int64(giftBytes)}
}

// PushBandwidth updates the limits after a bandwidth stake change.
// Nothing happens when both net and cpu are managed. The RAM ceiling never shrinks here.
func (b *Bridge) PushBandwidth(account sys.Name, ramBytes, net, cpu uint64) error {
	flags, err := b.flags.Get(account)
	if err != nil {
		return err
	}
	if flags.NetManaged && flags.CPUManaged {
		return nil
	}
	cur, err := b.gov.Limits(account)
	if err != nil {
		return err
	}
	next := cur
	if !flags.RAMManaged {
		next.RAM = max(int64(ramBytes)+b.giftBytes, cur.RAM)
	}
	if !flags.NetManaged {
		next.Net = int64(net)
	}
	if !flags.CPUManaged {
		next.CPU = int64(cpu)
	}
	return b.set(account, cur, next)
}

// PushRAM updates the RAM ceiling after a purchase or sale, unless RAM is managed.
func (b *Bridge) PushRAM(account sys.Name, ramBytes uint64) error {
	flags, err := b.flags.Get(account)
	if err != nil {
		return err
	}
	if flags.RAMManaged {
		return nil
	}
	cur, err := b.gov.Limits(account)
	if err != nil {
		return err
	}
	next := cur
	next.RAM = int64(ramBytes) + b.giftBytes
	return b.set(account, cur, next)
}

func (b *Bridge) set(account sys.Name, cur, next Limits) error {
	if cur == next {
		return nil
	}
	if err := b.gov.SetLimits(account, next); err != nil {
		return errors.Wrap(err, "set resource limits")
	}
	logger.Debug("limits updated", "account", account, "ram", next.RAM, "net", next.Net, "cpu", next.CPU)
	return nil
}
