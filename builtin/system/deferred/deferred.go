// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package deferred keeps at most one pending refund trigger per owner.
// Dispatching a due trigger is up to the host.
package deferred

import (
	"github.com/worbli/rescore/builtin/table"
	"github.com/worbli/rescore/kv"
	"github.com/worbli/rescore/sys"
)

var tableDeferred = sys.MustParseName("deferred")

// Trigger is a pending invocation of claimRefund for the owner.
type Trigger struct {
	Owner sys.Name
	Due   uint64 // unix seconds
}

// Queue is keyed by owner. Scheduling replaces any pending trigger of the same owner.
type Queue struct {
	code sys.Name
	tbl  *table.Table[Trigger]
}

func New(ctx *table.Context) *Queue {
	return &Queue{ctx.Code(), table.New[Trigger](ctx, tableDeferred)}
}

// Get returns the pending trigger of the owner, nil if none.
func (q *Queue) Get(owner sys.Name) (*Trigger, error) {
	return q.tbl.Get(q.code, owner)
}

// Schedule sets the trigger of the owner to fire at due.
func (q *Queue) Schedule(owner sys.Name, due uint64) error {
	trig := &Trigger{Owner: owner, Due: due}
	exists, err := q.tbl.Exists(q.code, owner)
	if err != nil {
		return err
	}
	if exists {
		return q.tbl.Update(q.code, owner, trig, 0)
	}
	return q.tbl.Insert(q.code, owner, trig, owner)
}

// Cancel drops the pending trigger of the owner, if any.
func (q *Queue) Cancel(owner sys.Name) error {
	exists, err := q.tbl.Exists(q.code, owner)
	if err != nil || !exists {
		return err
	}
	return q.tbl.Erase(q.code, owner)
}

// Due lists committed triggers due at or before now, in owner order.
func Due(store kv.Store, code sys.Name, now uint64) ([]Trigger, error) {
	var due []Trigger
	err := table.Scan(store, code, tableDeferred, code, func(_, _ sys.Name, trig *Trigger) bool {
		if trig.Due <= now {
			due = append(due, *trig)
		}
		return true
	})
	return due, err
}
