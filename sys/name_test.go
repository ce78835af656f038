// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package sys

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseName(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"eosio", false},
		{"eosio.stake", false},
		{"worbli.admin", false},
		{"a", false},
		{"", false},
		{"zzzzzzzzzzzzj", false},
		{"zzzzzzzzzzzzk", true},
		{"toolongname123", true},
		{"Upper", true},
		{"bad6", true},
		{"trailing.", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			n, err := ParseName(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.in, n.String())
		})
	}
}

func TestNameKnownValue(t *testing.T) {
	// well known encoding of `eosio`
	assert.Equal(t, Name(0x5530ea0000000000), MustParseName("eosio"))
	assert.Equal(t, []byte{0x55, 0x30, 0xea, 0, 0, 0, 0, 0}, MustParseName("eosio").Bytes())
}

func TestNameText(t *testing.T) {
	var n Name
	require.NoError(t, n.UnmarshalText([]byte("alice")))
	assert.Equal(t, MustParseName("alice"), n)

	text, err := n.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "alice", string(text))

	assert.Error(t, n.UnmarshalText([]byte("ALICE")))
	assert.True(t, Name(0).IsZero())
}

func TestNameBytesRoundTrip(t *testing.T) {
	var n Name
	require.NoError(t, n.SetBytes(MustParseName("worbli.admin").Bytes()))
	assert.Equal(t, "worbli.admin", n.String())
	assert.Error(t, n.SetBytes([]byte{1, 2}))
}
