// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package table

import "github.com/worbli/rescore/sys"

// Singleton is a table holding exactly one row, kept in the scope of its owning account.
type Singleton[V any] struct {
	tbl *Table[V]
}

func NewSingleton[V any](ctx *Context, name sys.Name) *Singleton[V] {
	return &Singleton[V]{New[V](ctx, name)}
}

// Get returns the value, nil if never set.
func (s *Singleton[V]) Get() (*V, error) {
	return s.tbl.Get(s.tbl.ctx.code, s.tbl.name)
}

// Set writes the value, billed to the owning account.
func (s *Singleton[V]) Set(v *V) error {
	code := s.tbl.ctx.code
	exists, err := s.tbl.Exists(code, s.tbl.name)
	if err != nil {
		return err
	}
	if exists {
		return s.tbl.Update(code, s.tbl.name, v, 0)
	}
	return s.tbl.Insert(code, s.tbl.name, v, code)
}
