// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package table

import (
	"github.com/worbli/rescore/state"
	"github.com/worbli/rescore/sys"
)

// RowOverheadBytes is billed on top of the encoded size of every stored row.
const RowOverheadBytes = 112

// BillFunc receives storage usage changes, in bytes, of the given payer.
type BillFunc func(payer sys.Name, delta int64)

// Context binds tables to the account that owns them and the state they live in.
type Context struct {
	code  sys.Name
	state *state.State
	bill  BillFunc
}

// NewContext creates a table context. bill may be nil.
func NewContext(code sys.Name, state *state.State, bill BillFunc) *Context {
	return &Context{
		code:  code,
		state: state,
		bill:  bill,
	}
}

func (c *Context) State() *state.State {
	return c.state
}

func (c *Context) Code() sys.Name {
	return c.code
}

func (c *Context) charge(payer sys.Name, delta int64) {
	if c.bill != nil && delta != 0 && !payer.IsZero() {
		c.bill(payer, delta)
	}
}
