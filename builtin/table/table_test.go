// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worbli/rescore/lvldb"
	"github.com/worbli/rescore/state"
	"github.com/worbli/rescore/sys"
)

type row struct {
	A uint64
	B uint64
}

var (
	code  = sys.MustParseName("eosio")
	alice = sys.MustParseName("alice")
	bob   = sys.MustParseName("bob")
	carol = sys.MustParseName("carol")
	rows  = sys.MustParseName("rows")
)

type fixture struct {
	stater *state.Stater
	state  *state.State
	usage  map[sys.Name]int64
	tbl    *Table[row]
}

func newFixture(t *testing.T) *fixture {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	f := &fixture{stater: state.NewStater(db, 0), usage: make(map[sys.Name]int64)}
	f.state = f.stater.NewState()
	ctx := NewContext(code, f.state, func(payer sys.Name, delta int64) {
		f.usage[payer] += delta
	})
	f.tbl = New[row](ctx, rows)
	return f
}

func TestTableCRUD(t *testing.T) {
	f := newFixture(t)

	got, err := f.tbl.Get(alice, bob)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, f.tbl.Insert(alice, bob, &row{1, 2}, alice))
	assert.ErrorIs(t, f.tbl.Insert(alice, bob, &row{1, 2}, alice), ErrRowExists)

	got, err = f.tbl.Get(alice, bob)
	require.NoError(t, err)
	assert.Equal(t, &row{1, 2}, got)

	// scopes are isolated
	got, err = f.tbl.Get(bob, bob)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, f.tbl.Update(alice, bob, &row{3, 4}, 0))
	payer, err := f.tbl.Payer(alice, bob)
	require.NoError(t, err)
	assert.Equal(t, alice, payer)

	require.NoError(t, f.tbl.Erase(alice, bob))
	assert.ErrorIs(t, f.tbl.Erase(alice, bob), ErrRowNotFound)
	assert.ErrorIs(t, f.tbl.Update(alice, bob, &row{}, 0), ErrRowNotFound)

	assert.Error(t, f.tbl.Insert(alice, carol, &row{}, 0), "payer is required")
}

func TestTableBilling(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.tbl.Insert(alice, bob, &row{1, 2}, alice))
	inserted := f.usage[alice]
	assert.Greater(t, inserted, int64(RowOverheadBytes))

	require.NoError(t, f.tbl.Update(alice, bob, &row{1 << 40, 2}, 0))
	assert.Greater(t, f.usage[alice], inserted)

	// moving the bill to another payer
	require.NoError(t, f.tbl.Update(alice, bob, &row{1, 2}, carol))
	assert.Equal(t, int64(0), f.usage[alice])
	assert.Equal(t, inserted, f.usage[carol])

	require.NoError(t, f.tbl.Erase(alice, bob))
	assert.Equal(t, int64(0), f.usage[carol])
}

func TestSingleton(t *testing.T) {
	f := newFixture(t)
	ctx := NewContext(code, f.state, nil)
	s := NewSingleton[row](ctx, sys.MustParseName("global"))

	v, err := s.Get()
	require.NoError(t, err)
	assert.Nil(t, v)

	require.NoError(t, s.Set(&row{5, 6}))
	require.NoError(t, s.Set(&row{7, 8}))
	v, err = s.Get()
	require.NoError(t, err)
	assert.Equal(t, &row{7, 8}, v)
}

func TestScan(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.tbl.Insert(alice, carol, &row{3, 0}, alice))
	require.NoError(t, f.tbl.Insert(alice, bob, &row{2, 0}, alice))
	require.NoError(t, f.tbl.Insert(bob, alice, &row{9, 0}, bob))
	require.NoError(t, f.state.Stage().Commit())

	var pks []sys.Name
	err := Scan(f.stater.Store(), code, rows, alice, func(pk, payer sys.Name, r *row) bool {
		assert.Equal(t, alice, payer)
		pks = append(pks, pk)
		return true
	})
	require.NoError(t, err)
	assert.Equal(t, []sys.Name{bob, carol}, pks)
}

func TestScanSkipsForeignKeys(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.tbl.Insert(alice, bob, &row{2, 0}, alice))
	// a longer key sharing the scope prefix, and a key outside the row bucket
	f.state.Put(append(ScopePrefix(code, rows, alice), "extra-bytes"...), []byte{0x80})
	f.state.Put(scopeKey(code, rows, alice), []byte{0x80})
	require.NoError(t, f.state.Stage().Commit())

	var pks []sys.Name
	err := Scan(f.stater.Store(), code, rows, alice, func(pk, _ sys.Name, r *row) bool {
		pks = append(pks, pk)
		return true
	})
	require.NoError(t, err)
	assert.Equal(t, []sys.Name{bob}, pks)

	n := 0
	require.NoError(t, Scan(f.stater.Store(), code, rows, alice, func(sys.Name, sys.Name, *row) bool {
		n++
		return false
	}))
	assert.Equal(t, 1, n)
}
