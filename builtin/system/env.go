// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package system

import (
	"slices"

	"github.com/worbli/rescore/builtin/reverts"
	"github.com/worbli/rescore/sys"
)

// Env is the environment of an action invocation.
type Env struct {
	Time  uint64     // unix seconds
	Auths []sys.Name // accounts that authorized the invocation
}

// NewEnv creates an env at the given time, authorized by auths.
func NewEnv(time uint64, auths ...sys.Name) *Env {
	return &Env{Time: time, Auths: auths}
}

// HasAuth returns whether the account authorized the invocation.
func (env *Env) HasAuth(account sys.Name) bool {
	return slices.Contains(env.Auths, account)
}

// RequireAuth reverts unless the account authorized the invocation.
func (env *Env) RequireAuth(account sys.Name) error {
	return reverts.Require(env.HasAuth(account), "missing authority of %v", account)
}
