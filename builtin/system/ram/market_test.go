// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worbli/rescore/builtin/reverts"
	"github.com/worbli/rescore/builtin/system/compliance"
	"github.com/worbli/rescore/builtin/system/deferred"
	"github.com/worbli/rescore/builtin/system/limits"
	"github.com/worbli/rescore/builtin/system/refund"
	"github.com/worbli/rescore/builtin/system/resources"
	"github.com/worbli/rescore/builtin/table"
	"github.com/worbli/rescore/builtin/token"
	"github.com/worbli/rescore/lvldb"
	"github.com/worbli/rescore/state"
	"github.com/worbli/rescore/sys"
)

var (
	alice = sys.MustParseName("alice")
	bob   = sys.MustParseName("bob")
	carol = sys.MustParseName("carol")
)

type env struct {
	market   *Market
	tokens   *token.Token
	totals   *resources.Service
	refunds  *refund.Queue
	gov      *limits.Governor
	registry *compliance.Registry
}

// newEnv sets up a market with max ram 1e9 bytes and a supply of 1e8 in smallest units.
func newEnv(t *testing.T, withGate bool) *env {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st := state.NewStater(db, 0).NewState()
	sysCtx := table.NewContext(sys.SystemAccount, st, nil)
	tokens := token.New(table.NewContext(sys.MustParseName("eosio.token"), st, nil), sys.CoreSymbol)
	require.NoError(t, tokens.Create(sys.SystemAccount, sys.MustParseAsset("1000000.0000 WBI")))
	require.NoError(t, tokens.Issue(alice, sys.NewAsset(5e7), ""))
	require.NoError(t, tokens.Issue(sys.AdminAccount, sys.NewAsset(5e7), ""))

	totals := resources.New(sysCtx)
	require.NoError(t, totals.SetGlobal(&resources.GlobalRam{MaxRAMSize: 1e9}))

	gov := limits.NewGovernor(sysCtx)
	refunds := refund.New(sysCtx, deferred.New(sysCtx), 100)
	bridge := limits.NewBridge(gov, limits.NewFlagStore(sysCtx), sys.RAMGiftBytes)

	e := &env{tokens: tokens, totals: totals, refunds: refunds, gov: gov}
	var gate compliance.Gate
	if withGate {
		e.registry = compliance.NewRegistry(table.NewContext(sys.ComplianceAccount, st, nil))
		gate = e.registry
	}
	e.market = New(sysCtx, totals, bridge, refunds, tokens, gate)
	return e
}

func (e *env) balance(t *testing.T, owner sys.Name) int64 {
	b, err := e.tokens.Balance(owner)
	require.NoError(t, err)
	return b.Amount
}

func TestBuySellRoundTrip(t *testing.T) {
	e := newEnv(t, false)

	bytes, err := e.market.Buy(alice, bob, sys.MustParseAsset("100.0000 WBI"), 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(10_000_000), bytes)
	assert.Equal(t, int64(1_000_000), e.balance(t, sys.StakeAccount))

	g, err := e.totals.Global()
	require.NoError(t, err)
	assert.Equal(t, &resources.GlobalRam{MaxRAMSize: 1e9, TotalRAMBytesReserved: 10_000_000, TotalRAMStake: 1_000_000}, g)

	lim, err := e.gov.Limits(bob)
	require.NoError(t, err)
	assert.Equal(t, int64(10_000_000+sys.RAMGiftBytes), lim.RAM)

	tokens, err := e.market.Sell(bob, 5_000_000, 10)
	require.NoError(t, err)
	assert.Equal(t, uint64(500_000), tokens)

	req, err := e.refunds.Get(bob)
	require.NoError(t, err)
	assert.Equal(t, &refund.Request{Owner: bob, RequestTime: 10, RAMAmount: 500_000, RAMBytes: 5_000_000}, req)

	// buying back consumes the pending proceeds before anything is paid
	before := e.balance(t, bob)
	bytes, err = e.market.Buy(bob, bob, sys.MustParseAsset("20.0000 WBI"), 11)
	require.NoError(t, err)
	assert.Equal(t, uint64(2_000_000), bytes)
	assert.Equal(t, before, e.balance(t, bob))
	req, err = e.refunds.Get(bob)
	require.NoError(t, err)
	assert.Equal(t, &refund.Request{Owner: bob, RequestTime: 11, RAMAmount: 300_000, RAMBytes: 3_000_000}, req)

	tot, err := e.totals.Totals(bob)
	require.NoError(t, err)
	tokens, err = e.market.Sell(bob, int64(tot.RAMBytes), 12)
	require.NoError(t, err)
	assert.Equal(t, tot.RAMStake, tokens)
	tot, err = e.totals.Totals(bob)
	require.NoError(t, err)
	assert.Nil(t, tot)

	g, err = e.totals.Global()
	require.NoError(t, err)
	assert.Zero(t, g.TotalRAMBytesReserved)
	assert.Zero(t, g.TotalRAMStake)
}

func TestBuyBytes(t *testing.T) {
	e := newEnv(t, false)

	bytes, err := e.market.BuyBytes(alice, alice, 12345, 1)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, bytes, uint64(12345))

	_, err = e.market.BuyBytes(alice, alice, 0, 1)
	assert.True(t, reverts.IsRevertErr(err))
}

func TestBuyRejects(t *testing.T) {
	e := newEnv(t, true)

	_, err := e.market.Buy(alice, alice, sys.MustParseAsset("1.0000 WBI"), 1)
	assert.EqualError(t, err, "RAM purchase denied. alice failed identity check")

	require.NoError(t, e.registry.SetAttribute(alice, compliance.Identity.Key, "true"))
	_, err = e.market.Buy(alice, alice, sys.MustParseAsset("1.0000 WBI"), 1)
	require.NoError(t, err)

	_, err = e.market.Buy(sys.AdminAccount, carol, sys.MustParseAsset("1.0000 WBI"), 1)
	require.NoError(t, err)

	_, err = e.market.Buy(alice, alice, sys.MustParseAsset("1 RAM"), 1)
	assert.EqualError(t, err, "must buy ram with core token")
	_, err = e.market.Buy(alice, alice, sys.NewAsset(0), 1)
	assert.EqualError(t, err, "must purchase a positive amount")
	_, err = e.market.Buy(alice, alice, sys.MustParseAsset("100000.0000 WBI"), 1)
	assert.EqualError(t, err, "overdrawn balance")
}

func TestSellRejects(t *testing.T) {
	e := newEnv(t, false)

	_, err := e.market.Sell(bob, 0, 1)
	assert.EqualError(t, err, "cannot sell negative byte")
	_, err = e.market.Sell(bob, 10, 1)
	assert.EqualError(t, err, "no resource row")

	_, err = e.market.Buy(alice, bob, sys.MustParseAsset("1.0000 WBI"), 1)
	require.NoError(t, err)
	_, err = e.market.Sell(bob, 100_001, 1)
	assert.EqualError(t, err, "insufficient quota")
	_, err = e.market.Sell(bob, 10, 1)
	assert.EqualError(t, err, "token amount received from selling ram is too low")
}

func TestGrantAndRevoke(t *testing.T) {
	e := newEnv(t, false)

	_, err := e.market.Grant(alice, bob, sys.MustParseAsset("1.0000 WBI"))
	assert.EqualError(t, err, "only privileged accounts may grant ram")

	granted, err := e.market.Grant(sys.AdminAccount, bob, sys.MustParseAsset("10.0000 WBI"))
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000_000), granted)

	excluded, err := e.market.Delegations().Excluded(bob)
	require.NoError(t, err)
	assert.Equal(t, granted, excluded)

	_, err = e.market.Sell(bob, 1000, 1)
	assert.EqualError(t, err, "insufficient quota")

	_, err = e.market.Buy(alice, bob, sys.MustParseAsset("1.0000 WBI"), 1)
	require.NoError(t, err)
	_, err = e.market.Sell(bob, 100_000, 1)
	require.NoError(t, err)

	tokens, err := e.market.Revoke(sys.AdminAccount, bob, 400_000, 5)
	require.NoError(t, err)
	assert.Equal(t, uint64(40_000), tokens)

	tokens, err = e.market.Revoke(sys.AdminAccount, bob, 600_000, 6)
	require.NoError(t, err)
	assert.Equal(t, uint64(60_000), tokens)

	row, err := e.market.Delegations().Get(sys.AdminAccount, bob)
	require.NoError(t, err)
	assert.Nil(t, row)

	req, err := e.refunds.Get(sys.AdminAccount)
	require.NoError(t, err)
	assert.Equal(t, &refund.Request{Owner: sys.AdminAccount, RequestTime: 6, RAMAmount: 100_000, RAMBytes: 1_000_000}, req)

	_, err = e.market.Revoke(sys.AdminAccount, bob, 1, 7)
	assert.EqualError(t, err, "no delegated ram")
}
