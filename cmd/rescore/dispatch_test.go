// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worbli/rescore/builtin/system"
	"github.com/worbli/rescore/sys"
	"github.com/worbli/rescore/test"
)

func TestDispatchDue(t *testing.T) {
	stater := newStater(t)
	applyGenesis(t, stater, testGenesis)

	require.NoError(t, commit(stater, func(s *system.System) error {
		net, cpu := sys.MustParseAsset("10.0000 WBI"), sys.NewAsset(0)
		if err := s.StakeBandwidth(system.NewEnv(5, alice), alice, alice, net, cpu, false); err != nil {
			return err
		}
		return s.UnstakeBandwidth(system.NewEnv(10, alice), alice, alice, net, cpu)
	}))

	claimed, err := dispatchDue(stater, 50)
	require.NoError(t, err)
	assert.Zero(t, claimed)

	claimed, err = dispatchDue(stater, 110)
	require.NoError(t, err)
	assert.Equal(t, 1, claimed)

	s := system.New(stater.NewState(), nil)
	balance, err := s.Balance(alice)
	require.NoError(t, err)
	assert.Equal(t, sys.MustParseAsset("100.0000 WBI"), balance)

	req, err := s.RefundRequest(alice)
	require.NoError(t, err)
	assert.Nil(t, req)

	due, err := system.DueTriggers(stater, 1000)
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestDispatchAfterDelayRaised(t *testing.T) {
	stater := newStater(t)
	applyGenesis(t, stater, testGenesis)

	require.NoError(t, commit(stater, func(s *system.System) error {
		net, cpu := sys.MustParseAsset("10.0000 WBI"), sys.NewAsset(0)
		if err := s.StakeBandwidth(system.NewEnv(5, alice), alice, alice, net, cpu, false); err != nil {
			return err
		}
		if err := s.UnstakeBandwidth(system.NewEnv(10, alice), alice, alice, net, cpu); err != nil {
			return err
		}
		return s.SetParam(system.NewEnv(10, sys.SystemAccount), string(sys.KeyRefundDelay), 500)
	}))

	due, err := system.DueTriggers(stater, 110)
	require.NoError(t, err)
	assert.Empty(t, due)

	claimed, err := dispatchDue(stater, 110)
	require.NoError(t, err)
	assert.Zero(t, claimed)

	claimed, err = dispatchDue(stater, 510)
	require.NoError(t, err)
	assert.Equal(t, 1, claimed)
}

func TestCommitDropsFailedChanges(t *testing.T) {
	stater := newStater(t)
	applyGenesis(t, stater, testGenesis)

	err := commit(stater, func(s *system.System) error {
		return s.Transfer(system.NewEnv(3, alice), alice, bob, sys.MustParseAsset("1000.0000 WBI"), "")
	})
	assert.Error(t, err)

	s := system.New(stater.NewState(), nil)
	balance, err := s.Balance(alice)
	require.NoError(t, err)
	assert.Equal(t, sys.MustParseAsset("100.0000 WBI"), balance)
}

func TestServeDispatch(t *testing.T) {
	stater := newStater(t)
	applyGenesis(t, stater, testGenesis)

	require.NoError(t, commit(stater, func(s *system.System) error {
		net := sys.MustParseAsset("1.0000 WBI")
		if err := s.StakeBandwidth(system.NewEnv(2, alice), alice, alice, net, sys.NewAsset(0), false); err != nil {
			return err
		}
		return s.UnstakeBandwidth(system.NewEnv(3, alice), alice, alice, net, sys.NewAsset(0))
	}))

	var now atomic.Uint64
	now.Store(50)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		serveDispatch(ctx, stater, 10*time.Millisecond, now.Load)
		close(done)
	}()

	now.Store(200)
	err := test.Retry(func() error {
		due, err := system.DueTriggers(stater, 1000)
		if err != nil {
			return err
		}
		if len(due) > 0 {
			return assert.AnError
		}
		return nil
	}, 10*time.Millisecond, 2*time.Second)
	require.NoError(t, err)

	cancel()
	<-done
}
