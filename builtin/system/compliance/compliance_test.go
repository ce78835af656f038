// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package compliance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worbli/rescore/builtin/table"
	"github.com/worbli/rescore/lvldb"
	"github.com/worbli/rescore/state"
	"github.com/worbli/rescore/sys"
)

func TestRegistry(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	st := state.NewStater(db, 0).NewState()
	ctx := table.NewContext(sys.ComplianceAccount, st, nil)

	reg, err := Open(ctx)
	require.NoError(t, err)
	assert.Nil(t, reg)

	require.NoError(t, NewRegistry(ctx).Create(1))
	reg, err = Open(ctx)
	require.NoError(t, err)
	require.NotNil(t, reg)
	require.NoError(t, reg.Create(2))
	alice := sys.MustParseName("alice")
	conds := []Condition{Identity}

	failed, err := reg.Validate(sys.ComplianceAccount, alice, conds)
	require.NoError(t, err)
	assert.Equal(t, conds, failed)

	require.NoError(t, reg.SetAttribute(alice, Identity.Key, "true"))
	failed, err = reg.Validate(sys.ComplianceAccount, alice, conds)
	require.NoError(t, err)
	assert.Empty(t, failed)

	require.NoError(t, reg.SetAttribute(alice, Identity.Key, "false"))
	failed, err = reg.Validate(sys.ComplianceAccount, alice, conds)
	require.NoError(t, err)
	assert.Len(t, failed, 1)

	require.NoError(t, reg.SetAttribute(alice, Identity.Key, ""))
	v, err := reg.Attribute(alice, Identity.Key)
	require.NoError(t, err)
	assert.Empty(t, v)

	_, err = reg.Validate(sys.AdminAccount, alice, conds)
	assert.Error(t, err)
}
