// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"flag"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/urfave/cli.v1"

	"github.com/worbli/rescore/sys"
)

func newArgs(t *testing.T, values ...string) *args {
	set := flag.NewFlagSet("stake", flag.ContinueOnError)
	require.NoError(t, set.Parse(values))
	ctx := cli.NewContext(cli.NewApp(), set, nil)
	ctx.Command = cli.Command{Name: "stake", ArgsUsage: "<from> <receiver> <net> <cpu>"}
	return &args{ctx: ctx}
}

func TestArgs(t *testing.T) {
	a := newArgs(t, "alice", "bob", "1.0000 WBI", "42")
	assert.Equal(t, alice, a.name(0, "from"))
	assert.Equal(t, bob, a.name(1, "receiver"))
	assert.Equal(t, sys.MustParseAsset("1.0000 WBI"), a.asset(2, "net"))
	assert.Equal(t, int64(42), a.int(3, "cpu"))
	assert.NoError(t, a.err)
}

func TestArgsMissing(t *testing.T) {
	a := newArgs(t, "alice")
	a.name(0, "from")
	a.name(1, "receiver")
	a.asset(2, "net")

	require.EqualError(t, a.err, "missing argument <receiver>, usage: stake <from> <receiver> <net> <cpu>")
	_, traced := a.err.(interface{ StackTrace() errors.StackTrace })
	assert.True(t, traced)
}

func TestArgsInvalid(t *testing.T) {
	a := newArgs(t, "alice", "-1")
	a.name(0, "from")
	a.uint(1, "bytes")
	assert.ErrorContains(t, a.err, "<bytes>")
}
