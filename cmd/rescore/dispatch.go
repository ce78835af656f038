// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"time"

	"github.com/pborman/uuid"

	"github.com/worbli/rescore/builtin/reverts"
	"github.com/worbli/rescore/builtin/system"
	"github.com/worbli/rescore/co"
	"github.com/worbli/rescore/log"
	"github.com/worbli/rescore/state"
)

// dispatchDue claims every refund whose trigger is due at now, in one commit.
// A claim that reverts leaves its trigger in place for the next round.
func dispatchDue(stater *state.Stater, now uint64) (claimed int, err error) {
	due, err := system.DueTriggers(stater, now)
	if err != nil {
		return 0, err
	}
	if len(due) == 0 {
		return 0, nil
	}

	round := log.WithContext("round", uuid.NewRandom().String())
	round.Debug("dispatching due refunds", "count", len(due), "time", now)

	err = commit(stater, func(s *system.System) error {
		for _, trigger := range due {
			paid, err := s.ClaimRefund(system.NewEnv(now, trigger.Owner), trigger.Owner)
			if err != nil {
				if !reverts.IsRevertErr(err) {
					return err
				}
				round.Warn("refund claim reverted", "owner", trigger.Owner, "err", err)
				continue
			}
			claimed++
			round.Info("refund claimed", "owner", trigger.Owner, "paid", paid)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return claimed, nil
}

// serveDispatch dispatches due refunds on every tick until ctx is done.
func serveDispatch(ctx context.Context, stater *state.Stater, interval time.Duration, now func() uint64) {
	co.Tick(ctx, interval, func() {
		if _, err := dispatchDue(stater, now()); err != nil {
			log.Error("failed to dispatch due refunds", "err", err)
		}
	})
}
