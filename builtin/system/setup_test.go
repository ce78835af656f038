// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package system

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/worbli/rescore/builtin/reverts"
	"github.com/worbli/rescore/lvldb"
	"github.com/worbli/rescore/state"
	"github.com/worbli/rescore/sys"
)

var (
	alice = sys.MustParseName("alice")
	bob   = sys.MustParseName("bob")
	carol = sys.MustParseName("carol")
	dave  = sys.MustParseName("dave")
)

func wbi(s string) sys.Asset {
	return sys.MustParseAsset(s + " WBI")
}

// newSystem sets up a system with max ram 1e9 bytes and a supply of 1e8 in smallest
// units, split between alice and bob.
func newSystem(t *testing.T) (*System, *state.Stater) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	stater := state.NewStater(db, 0)
	s := New(stater.NewState(), nil)
	root := NewEnv(0, sys.SystemAccount)
	require.NoError(t, s.CreateToken(root, wbi("1000000.0000")))
	require.NoError(t, s.Issue(root, alice, sys.NewAsset(5e7), ""))
	require.NoError(t, s.Issue(root, bob, sys.NewAsset(5e7), ""))
	require.NoError(t, s.SetParam(root, string(sys.KeyMaxRAMSize), 1e9))
	return s, stater
}

type TestFunc func(t *testing.T)

// TestSequence runs actions in order against a system, each at its own time.
type TestSequence struct {
	system *System
	funcs  []TestFunc
}

func NewSequence(s *System) *TestSequence {
	return &TestSequence{system: s}
}

func (ts *TestSequence) AddFunc(f TestFunc) *TestSequence {
	ts.funcs = append(ts.funcs, f)
	return ts
}

func (ts *TestSequence) Stake(at uint64, from, receiver sys.Name, net, cpu string) *TestSequence {
	return ts.AddFunc(func(t *testing.T) {
		err := ts.system.StakeBandwidth(NewEnv(at, from), from, receiver, wbi(net), wbi(cpu), false)
		require.NoError(t, err, "stake %v -> %v", from, receiver)
	})
}

func (ts *TestSequence) Unstake(at uint64, from, receiver sys.Name, net, cpu string) *TestSequence {
	return ts.AddFunc(func(t *testing.T) {
		err := ts.system.UnstakeBandwidth(NewEnv(at, from), from, receiver, wbi(net), wbi(cpu))
		require.NoError(t, err, "unstake %v -> %v", from, receiver)
	})
}

func (ts *TestSequence) BuyRam(at uint64, payer, receiver sys.Name, quantity string) *TestSequence {
	return ts.AddFunc(func(t *testing.T) {
		_, err := ts.system.BuyRam(NewEnv(at, payer), payer, receiver, wbi(quantity))
		require.NoError(t, err, "buyram %v -> %v", payer, receiver)
	})
}

func (ts *TestSequence) SellRam(at uint64, account sys.Name, bytes int64) *TestSequence {
	return ts.AddFunc(func(t *testing.T) {
		_, err := ts.system.SellRam(NewEnv(at, account), account, bytes)
		require.NoError(t, err, "sellram %v", account)
	})
}

func (ts *TestSequence) Claim(at uint64, owner sys.Name) *TestSequence {
	return ts.AddFunc(func(t *testing.T) {
		_, err := ts.system.ClaimRefund(NewEnv(at, owner), owner)
		require.NoError(t, err, "refund %v", owner)
	})
}

// Reverts expects the action to revert with msg.
func (ts *TestSequence) Reverts(msg string, fn func(s *System) error) *TestSequence {
	return ts.AddFunc(func(t *testing.T) {
		err := fn(ts.system)
		require.True(t, reverts.IsRevertErr(err), "want revert %q, got %v", msg, err)
		require.EqualError(t, err, msg)
	})
}

func (ts *TestSequence) Run(t *testing.T) {
	for _, f := range ts.funcs {
		f(t)
	}
}
