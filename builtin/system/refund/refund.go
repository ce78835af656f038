// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package refund keeps the pending refund of every account. Unstaked bandwidth and
// sold RAM proceeds wait here for the cooldown before they can be claimed.
package refund

import (
	"math"

	"github.com/pkg/errors"

	"github.com/worbli/rescore/builtin/reverts"
	"github.com/worbli/rescore/builtin/system/deferred"
	"github.com/worbli/rescore/builtin/table"
	"github.com/worbli/rescore/log"
	"github.com/worbli/rescore/sys"
)

var (
	logger      = log.WithContext("pkg", "refund")
	tableRefund = sys.MustParseName("refunds")
)

// Request is the pending refund of an owner. RequestTime is the time of the
// latest change to its amounts.
type Request struct {
	Owner       sys.Name
	RequestTime uint64
	NetAmount   uint64
	CPUAmount   uint64
	RAMAmount   uint64
	RAMBytes    uint64
}

// IsEmpty returns whether nothing is left to refund.
func (r *Request) IsEmpty() bool {
	return r.NetAmount == 0 && r.CPUAmount == 0 && r.RAMAmount == 0 && r.RAMBytes == 0
}

// Amount returns the tokens paid out when the request is claimed.
func (r *Request) Amount() (uint64, error) {
	sum := r.NetAmount
	for _, v := range []uint64{r.CPUAmount, r.RAMAmount} {
		if sum > math.MaxUint64-v {
			return 0, errors.New("refund amount overflow")
		}
		sum += v
	}
	return sum, nil
}

// MatureAt returns the earliest time the request can be claimed.
func (r *Request) MatureAt(delay uint64) uint64 {
	if r.RequestTime > math.MaxUint64-delay {
		return math.MaxUint64
	}
	return r.RequestTime + delay
}

// Queue holds at most one request per owner and keeps the owner's deferred
// trigger in step with it.
type Queue struct {
	tbl      *table.Table[Request]
	triggers *deferred.Queue
	delay    uint64
}

func New(ctx *table.Context, triggers *deferred.Queue, delay uint64) *Queue {
	return &Queue{
		tbl:      table.New[Request](ctx, tableRefund),
		triggers: triggers,
		delay:    delay,
	}
}

// Delay returns the cooldown in seconds.
func (q *Queue) Delay() uint64 {
	return q.delay
}

// Get returns the pending request of the owner, nil if none.
func (q *Queue) Get(owner sys.Name) (*Request, error) {
	return q.tbl.Get(owner, owner)
}

// offset applies a stake delta to a pending amount. A positive delta consumes the
// pending amount first, whatever exceeds it is returned as excess.
func offset(amount uint64, delta int64) (uint64, uint64, error) {
	if delta >= 0 {
		d := uint64(delta)
		if d > amount {
			return 0, d - amount, nil
		}
		return amount - d, 0, nil
	}
	d := uint64(-delta)
	if amount > math.MaxUint64-d {
		return 0, 0, errors.New("refund amount overflow")
	}
	return amount + d, 0, nil
}

// FoldBandwidth merges a bandwidth stake change of the owner into its request.
// Negative deltas are added to the pending amounts, positive ones first absorb
// them. It returns what is left to be paid into custody.
func (q *Queue) FoldBandwidth(owner sys.Name, netDelta, cpuDelta int64, now uint64) (uint64, error) {
	req, err := q.Get(owner)
	if err != nil {
		return 0, err
	}
	if req == nil {
		if netDelta >= 0 && cpuDelta >= 0 {
			return uint64(netDelta) + uint64(cpuDelta), nil
		}
		req = &Request{Owner: owner}
		req.NetAmount, _, _ = offset(0, min(netDelta, 0))
		req.CPUAmount, _, _ = offset(0, min(cpuDelta, 0))
		req.RequestTime = now
		remainder := uint64(max(netDelta, 0)) + uint64(max(cpuDelta, 0))
		return remainder, q.insert(req)
	}

	prev := *req
	var netExcess, cpuExcess uint64
	if req.NetAmount, netExcess, err = offset(req.NetAmount, netDelta); err != nil {
		return 0, err
	}
	if req.CPUAmount, cpuExcess, err = offset(req.CPUAmount, cpuDelta); err != nil {
		return 0, err
	}
	return netExcess + cpuExcess, q.save(&prev, req, now)
}

// NetRAMPurchase nets a RAM purchase of the owner against its pending RAM refund.
// It returns what is left to be paid into custody. A purchase never creates a request.
func (q *Queue) NetRAMPurchase(owner sys.Name, quantity, bytes uint64, now uint64) (uint64, error) {
	req, err := q.Get(owner)
	if err != nil {
		return 0, err
	}
	if req == nil || (req.RAMAmount == 0 && req.RAMBytes == 0) {
		return quantity, nil
	}

	prev := *req
	var remainder uint64
	if quantity >= req.RAMAmount {
		remainder = quantity - req.RAMAmount
		req.RAMAmount = 0
		req.RAMBytes = 0
	} else {
		req.RAMAmount -= quantity
		if bytes >= req.RAMBytes {
			req.RAMBytes = 0
		} else {
			req.RAMBytes -= bytes
		}
	}
	return remainder, q.save(&prev, req, now)
}

// CreditRAMSale adds the proceeds of a RAM sale to the owner's request.
func (q *Queue) CreditRAMSale(owner sys.Name, tokens, bytes uint64, now uint64) error {
	req, err := q.Get(owner)
	if err != nil {
		return err
	}
	if req == nil {
		return q.insert(&Request{
			Owner:       owner,
			RequestTime: now,
			RAMAmount:   tokens,
			RAMBytes:    bytes,
		})
	}
	prev := *req
	if req.RAMAmount > math.MaxUint64-tokens || req.RAMBytes > math.MaxUint64-bytes {
		return errors.New("refund amount overflow")
	}
	req.RAMAmount += tokens
	req.RAMBytes += bytes
	return q.save(&prev, req, now)
}

// Claim removes the matured request of the owner and returns it.
func (q *Queue) Claim(owner sys.Name, now uint64) (*Request, error) {
	req, err := q.Get(owner)
	if err != nil {
		return nil, err
	}
	if err := reverts.Require(req != nil, "refund request not found"); err != nil {
		return nil, err
	}
	if err := reverts.Require(req.MatureAt(q.delay) <= now, "refund is not available yet"); err != nil {
		return nil, err
	}
	if err := q.tbl.Erase(owner, owner); err != nil {
		return nil, err
	}
	if err := q.triggers.Cancel(owner); err != nil {
		return nil, err
	}
	logger.Debug("refund claimed", "owner", owner, "net", req.NetAmount, "cpu", req.CPUAmount, "ram", req.RAMAmount)
	return req, nil
}

func (q *Queue) insert(req *Request) error {
	if err := q.tbl.Insert(req.Owner, req.Owner, req, req.Owner); err != nil {
		return err
	}
	return q.triggers.Schedule(req.Owner, req.MatureAt(q.delay))
}

// save writes a modified request. The request time moves only when amounts changed,
// an emptied request is erased together with its trigger.
func (q *Queue) save(prev, req *Request, now uint64) error {
	if *prev == *req {
		return nil
	}
	owner := req.Owner
	if req.IsEmpty() {
		if err := q.tbl.Erase(owner, owner); err != nil {
			return err
		}
		logger.Debug("refund absorbed", "owner", owner)
		return q.triggers.Cancel(owner)
	}
	req.RequestTime = now
	if err := q.tbl.Update(owner, owner, req, 0); err != nil {
		return err
	}
	return q.triggers.Schedule(owner, req.MatureAt(q.delay))
}
