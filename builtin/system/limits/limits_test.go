// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package limits

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worbli/rescore/builtin/table"
	"github.com/worbli/rescore/lvldb"
	"github.com/worbli/rescore/state"
	"github.com/worbli/rescore/sys"
)

var alice = sys.MustParseName("alice")

func newBridge(t *testing.T) (*Bridge, *Governor, *FlagStore) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := table.NewContext(sys.SystemAccount, state.NewStater(db, 0).NewState(), nil)
	gov := NewGovernor(ctx)
	flags := NewFlagStore(ctx)
	return NewBridge(gov, flags, sys.RAMGiftBytes), gov, flags
}

func TestGovernorDefaults(t *testing.T) {
	_, gov, _ := newBridge(t)

	l, err := gov.Limits(alice)
	require.NoError(t, err)
	assert.Equal(t, Limits{Unlimited, Unlimited, Unlimited}, l)

	require.NoError(t, gov.SetLimits(alice, Limits{100, Unlimited, 3}))
	l, err = gov.Limits(alice)
	require.NoError(t, err)
	assert.Equal(t, Limits{100, Unlimited, 3}, l)
}

func TestGovernorUsage(t *testing.T) {
	_, gov, _ := newBridge(t)

	require.NoError(t, gov.AddRAMUsage(alice, -10))
	require.NoError(t, gov.AddRAMUsage(alice, 300))
	require.NoError(t, gov.AddRAMUsage(alice, -100))
	u, err := gov.RAMUsage(alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(200), u)

	require.NoError(t, gov.AddRAMUsage(alice, -500))
	u, err = gov.RAMUsage(alice)
	require.NoError(t, err)
	assert.Zero(t, u)
}

func TestGovernorRAMLimitLowered(t *testing.T) {
	_, gov, _ := newBridge(t)
	var lowered []sys.Name
	gov.OnRAMLimitLowered(func(account sys.Name) { lowered = append(lowered, account) })

	steps := []struct {
		ram  int64
		want bool
	}{
		{Unlimited, false},
		{5000, true},
		{6000, false},
		{6000, false},
		{1000, true},
		{Unlimited, false},
	}
	for _, st := range steps {
		lowered = nil
		require.NoError(t, gov.SetLimits(alice, Limits{st.ram, Unlimited, Unlimited}))
		if st.want {
			assert.Equal(t, []sys.Name{alice}, lowered, "ram %d", st.ram)
		} else {
			assert.Empty(t, lowered, "ram %d", st.ram)
		}
	}
}

func TestBridgeReportsLoweredRAM(t *testing.T) {
	b, gov, _ := newBridge(t)
	var lowered []sys.Name
	gov.OnRAMLimitLowered(func(account sys.Name) { lowered = append(lowered, account) })

	require.NoError(t, b.PushRAM(alice, 10_000))
	assert.Equal(t, []sys.Name{alice}, lowered)

	lowered = nil
	require.NoError(t, b.PushRAM(alice, 20_000))
	assert.Empty(t, lowered)

	require.NoError(t, b.PushRAM(alice, 5_000))
	assert.Equal(t, []sys.Name{alice}, lowered)
}

func TestFlagStore(t *testing.T) {
	_, _, flags := newBridge(t)

	f, err := flags.Get(alice)
	require.NoError(t, err)
	assert.Equal(t, Flags{}, f)

	want := Flags{RAMManaged: true, CPUManaged: true}
	require.NoError(t, flags.Set(alice, want))
	f, err = flags.Get(alice)
	require.NoError(t, err)
	assert.Equal(t, want, f)

	require.NoError(t, flags.Set(alice, Flags{}))
	f, err = flags.Get(alice)
	require.NoError(t, err)
	assert.Equal(t, Flags{}, f)
}

func TestPushBandwidth(t *testing.T) {
	gift := int64(sys.RAMGiftBytes)
	tests := []struct {
		name  string
		flags Flags
		start Limits
		want  Limits
	}{
		{"unset", Flags{}, Limits{Unlimited, Unlimited, Unlimited}, Limits{10 + gift, 20, 30}},
		{"ram never shrinks", Flags{}, Limits{5000, 1, 1}, Limits{5000, 20, 30}},
		{"ram managed", Flags{RAMManaged: true}, Limits{7, 1, 1}, Limits{7, 20, 30}},
		{"net managed", Flags{NetManaged: true}, Limits{0, 1, 1}, Limits{10 + gift, 1, 30}},
		{"both managed", Flags{NetManaged: true, CPUManaged: true}, Limits{0, 1, 1}, Limits{0, 1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bridge, gov, flags := newBridge(t)
			require.NoError(t, flags.Set(alice, tt.flags))
			require.NoError(t, gov.SetLimits(alice, tt.start))

			require.NoError(t, bridge.PushBandwidth(alice, 10, 20, 30))
			got, err := gov.Limits(alice)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPushRAM(t *testing.T) {
	bridge, gov, flags := newBridge(t)

	require.NoError(t, gov.SetLimits(alice, Limits{9999, 2, 3}))
	require.NoError(t, bridge.PushRAM(alice, 100))
	got, _ := gov.Limits(alice)
	assert.Equal(t, Limits{100 + int64(sys.RAMGiftBytes), 2, 3}, got)

	require.NoError(t, flags.Set(alice, Flags{RAMManaged: true}))
	require.NoError(t, bridge.PushRAM(alice, 5))
	got, _ = gov.Limits(alice)
	assert.Equal(t, int64(100+sys.RAMGiftBytes), got.RAM)
}
