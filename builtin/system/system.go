// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package system is the resource system: bandwidth staking, the RAM market and
// delayed refunds. Every action runs atomically against a state.
package system

import (
	"math"
	"slices"
	"time"

	"github.com/pkg/errors"

	"github.com/worbli/rescore/builtin/params"
	"github.com/worbli/rescore/builtin/reverts"
	"github.com/worbli/rescore/builtin/system/bandwidth"
	"github.com/worbli/rescore/builtin/system/compliance"
	"github.com/worbli/rescore/builtin/system/deferred"
	"github.com/worbli/rescore/builtin/system/limits"
	"github.com/worbli/rescore/builtin/system/ram"
	"github.com/worbli/rescore/builtin/system/refund"
	"github.com/worbli/rescore/builtin/system/resources"
	"github.com/worbli/rescore/builtin/table"
	"github.com/worbli/rescore/builtin/token"
	"github.com/worbli/rescore/log"
	"github.com/worbli/rescore/state"
	"github.com/worbli/rescore/sys"
)

var logger = log.WithContext("pkg", "system")

// TokenAccount owns the core token ledger.
var TokenAccount = sys.MustParseName("eosio.token")

// System binds the resource system to a state. It is not safe for concurrent use.
type System struct {
	state  *state.State
	params *params.Params
	gov    *limits.Governor
	flags  *limits.FlagStore
	tokens *token.Token
	totals *resources.Service
	gate   compliance.Gate

	sysCtx  *table.Context
	touched map[sys.Name]struct{}
	billErr error
}

// New creates the system over the state. gate is nil when no compliance account exists.
func New(st *state.State, gate compliance.Gate) *System {
	s := &System{
		state:  st,
		params: params.New(sys.SystemAccount, st),
		gate:   gate,
	}
	// governor rows belong to the host and are not billed to anyone
	govCtx := table.NewContext(sys.SystemAccount, st, nil)
	s.gov = limits.NewGovernor(govCtx)
	s.gov.OnRAMLimitLowered(s.watch)
	s.flags = limits.NewFlagStore(govCtx)

	s.sysCtx = table.NewContext(sys.SystemAccount, st, s.bill)
	s.tokens = token.New(table.NewContext(TokenAccount, st, s.bill), sys.CoreSymbol)
	s.totals = resources.New(s.sysCtx)
	return s
}

// State returns the state the system runs on.
func (s *System) State() *state.State {
	return s.state
}

func (s *System) bill(payer sys.Name, delta int64) {
	if err := s.gov.AddRAMUsage(payer, delta); err != nil && s.billErr == nil {
		s.billErr = errors.Wrap(err, "bill ram usage")
	}
	if delta > 0 {
		s.watch(payer)
	}
}

// watch marks the account for the RAM usage check at the end of the running action.
func (s *System) watch(account sys.Name) {
	if s.touched != nil {
		s.touched[account] = struct{}{}
	}
}

// services are the components whose behavior depends on governance params.
type services struct {
	refunds   *refund.Queue
	bandwidth *bandwidth.Ledger
	market    *ram.Market
}

func (s *System) services() (*services, error) {
	delay, err := s.params.GetOrDefault(sys.KeyRefundDelay, sys.RefundDelaySec)
	if err != nil {
		return nil, err
	}
	gift, err := s.params.GetOrDefault(sys.KeyRAMGiftBytes, sys.RAMGiftBytes)
	if err != nil {
		return nil, err
	}
	refunds := refund.New(s.sysCtx, deferred.New(s.sysCtx), delay)
	bridge := limits.NewBridge(s.gov, s.flags, gift)
	return &services{
		refunds:   refunds,
		bandwidth: bandwidth.New(s.sysCtx, s.totals, bridge, refunds, s.tokens),
		market:    ram.New(s.sysCtx, s.totals, bridge, refunds, s.tokens, s.gate),
	}, nil
}

// run executes an action atomically. Any error reverts every change the action made.
func (s *System) run(action string, env *Env, fn func(*services) error) (err error) {
	start := time.Now()
	checkpoint := s.state.NewCheckpoint()
	s.touched = make(map[sys.Name]struct{})
	s.billErr = nil

	defer func() {
		s.touched = nil
		outcome := "ok"
		if err != nil {
			s.state.RevertTo(checkpoint)
			if reverts.IsRevertErr(err) {
				outcome = "reverted"
				logger.Debug("action reverted", "action", action, "time", env.Time, "reason", err)
			} else {
				outcome = "failed"
				logger.Warn("action failed", "action", action, "time", env.Time, "err", err)
			}
		} else {
			s.updateGauges()
		}
		metricActionCount().AddWithLabel(1, map[string]string{"action": action, "outcome": outcome})
		metricActionDuration().Observe(time.Since(start).Milliseconds())
	}()

	logger.Debug("run action", "action", action, "time", env.Time, "auths", env.Auths)
	svc, err := s.services()
	if err != nil {
		return err
	}
	if err := fn(svc); err != nil {
		return err
	}
	if s.billErr != nil {
		return s.billErr
	}
	return s.checkRAMUsage()
}

// checkRAMUsage reverts when an account billed during the action, or whose RAM
// limit was lowered by it, stores more than its RAM limit.
func (s *System) checkRAMUsage() error {
	payers := make([]sys.Name, 0, len(s.touched))
	for p := range s.touched {
		payers = append(payers, p)
	}
	slices.Sort(payers)

	for _, p := range payers {
		lim, err := s.gov.Limits(p)
		if err != nil {
			return err
		}
		if lim.RAM < 0 {
			continue
		}
		usage, err := s.gov.RAMUsage(p)
		if err != nil {
			return err
		}
		if err := reverts.Require(usage <= uint64(lim.RAM),
			"account %v has insufficient ram; needs %d bytes has %d bytes", p, usage, lim.RAM); err != nil {
			return err
		}
	}
	return nil
}

func (s *System) updateGauges() {
	g, err := s.totals.Global()
	if err != nil {
		return
	}
	metricRAMReserved().Set(int64(g.TotalRAMBytesReserved))
	metricRAMStake().Set(int64(g.TotalRAMStake))
}

// ComplianceGate returns the gate of the compliance account, nil when the account does not exist.
func ComplianceGate(st *state.State) (compliance.Gate, error) {
	reg, err := compliance.Open(table.NewContext(sys.ComplianceAccount, st, nil))
	if err != nil || reg == nil {
		return nil, err
	}
	return reg, nil
}

// DueTriggers lists the committed refund triggers that are due at now. The due
// time is taken from the pending request and the current refund delay, so a
// delay change also moves triggers scheduled before it.
func DueTriggers(stater *state.Stater, now uint64) ([]deferred.Trigger, error) {
	pending, err := deferred.Due(stater.Store(), sys.SystemAccount, math.MaxUint64)
	if err != nil || len(pending) == 0 {
		return nil, err
	}
	s := New(stater.NewState(), nil)
	delay, err := s.RefundDelay()
	if err != nil {
		return nil, err
	}

	var due []deferred.Trigger
	for _, trig := range pending {
		req, err := s.RefundRequest(trig.Owner)
		if err != nil {
			return nil, err
		}
		if req == nil {
			continue
		}
		if at := req.MatureAt(delay); at <= now {
			due = append(due, deferred.Trigger{Owner: trig.Owner, Due: at})
		}
	}
	return due, nil
}
