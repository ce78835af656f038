// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package table

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/worbli/rescore/kv"
	"github.com/worbli/rescore/sys"
)

// rowBucket holds every table row in the store.
const rowBucket kv.Bucket = "t"

var (
	ErrRowExists   = errors.New("row already exists")
	ErrRowNotFound = errors.New("row not found")
)

// envelope is what is stored for every row.
type envelope struct {
	Payer sys.Name
	Data  rlp.RawValue
}

// Table is a multi-scope key/value table of rlp encoded rows.
// Every row records the account billed for its storage.
type Table[V any] struct {
	ctx  *Context
	name sys.Name
}

func New[V any](ctx *Context, name sys.Name) *Table[V] {
	return &Table[V]{ctx: ctx, name: name}
}

// Name returns the table name.
func (t *Table[V]) Name() sys.Name {
	return t.name
}

// scopeKey is the key prefix of the rows of the scope inside the row bucket.
func scopeKey(code, table, scope sys.Name) []byte {
	k := make([]byte, 0, 32)
	k = append(k, code.Bytes()...)
	k = append(k, table.Bytes()...)
	return append(k, scope.Bytes()...)
}

// ScopePrefix returns the store key prefix shared by all rows in the scope.
func ScopePrefix(code, table, scope sys.Name) []byte {
	return append([]byte(rowBucket), scopeKey(code, table, scope)...)
}

func (t *Table[V]) key(scope, pk sys.Name) []byte {
	return append(ScopePrefix(t.ctx.code, t.name, scope), pk.Bytes()...)
}

func (t *Table[V]) load(scope, pk sys.Name) (*envelope, error) {
	var env *envelope
	err := t.ctx.state.DecodeValue(t.key(scope, pk), func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		env = new(envelope)
		return rlp.DecodeBytes(raw, env)
	})
	if err != nil {
		return nil, errors.Wrapf(err, "load %v row", t.name)
	}
	return env, nil
}

func (t *Table[V]) store(scope, pk sys.Name, env *envelope) (int64, error) {
	enc, err := rlp.EncodeToBytes(env)
	if err != nil {
		return 0, errors.Wrapf(err, "encode %v row", t.name)
	}
	t.ctx.state.Put(t.key(scope, pk), enc)
	return int64(len(enc)) + RowOverheadBytes, nil
}

func size(env *envelope) int64 {
	enc, _ := rlp.EncodeToBytes(env)
	return int64(len(enc)) + RowOverheadBytes
}

// Get returns the row, or nil if absent.
func (t *Table[V]) Get(scope, pk sys.Name) (*V, error) {
	env, err := t.load(scope, pk)
	if err != nil || env == nil {
		return nil, err
	}
	var v V
	if err := rlp.DecodeBytes(env.Data, &v); err != nil {
		return nil, errors.Wrapf(err, "decode %v row", t.name)
	}
	return &v, nil
}

// Payer returns the account billed for the row, zero name if absent.
func (t *Table[V]) Payer(scope, pk sys.Name) (sys.Name, error) {
	env, err := t.load(scope, pk)
	if err != nil || env == nil {
		return 0, err
	}
	return env.Payer, nil
}

// Exists returns whether the row is present.
func (t *Table[V]) Exists(scope, pk sys.Name) (bool, error) {
	return t.ctx.state.Has(t.key(scope, pk))
}

// Insert adds a new row billed to payer.
func (t *Table[V]) Insert(scope, pk sys.Name, v *V, payer sys.Name) error {
	if payer.IsZero() {
		return errors.Errorf("insert %v row: missing payer", t.name)
	}
	exists, err := t.Exists(scope, pk)
	if err != nil {
		return err
	}
	if exists {
		return errors.Wrapf(ErrRowExists, "insert %v row %v/%v", t.name, scope, pk)
	}
	data, err := rlp.EncodeToBytes(v)
	if err != nil {
		return errors.Wrapf(err, "encode %v row", t.name)
	}
	n, err := t.store(scope, pk, &envelope{payer, data})
	if err != nil {
		return err
	}
	t.ctx.charge(payer, n)
	return nil
}

// Update modifies an existing row. A zero payer keeps the current one,
// otherwise the storage bill moves to the new payer.
func (t *Table[V]) Update(scope, pk sys.Name, v *V, payer sys.Name) error {
	old, err := t.load(scope, pk)
	if err != nil {
		return err
	}
	if old == nil {
		return errors.Wrapf(ErrRowNotFound, "update %v row %v/%v", t.name, scope, pk)
	}
	if payer.IsZero() {
		payer = old.Payer
	}
	data, err := rlp.EncodeToBytes(v)
	if err != nil {
		return errors.Wrapf(err, "encode %v row", t.name)
	}
	oldSize := size(old)
	n, err := t.store(scope, pk, &envelope{payer, data})
	if err != nil {
		return err
	}
	if payer == old.Payer {
		t.ctx.charge(payer, n-oldSize)
	} else {
		t.ctx.charge(old.Payer, -oldSize)
		t.ctx.charge(payer, n)
	}
	return nil
}

// Erase removes an existing row and refunds its storage to the payer.
func (t *Table[V]) Erase(scope, pk sys.Name) error {
	old, err := t.load(scope, pk)
	if err != nil {
		return err
	}
	if old == nil {
		return errors.Wrapf(ErrRowNotFound, "erase %v row %v/%v", t.name, scope, pk)
	}
	t.ctx.state.Delete(t.key(scope, pk))
	t.ctx.charge(old.Payer, -size(old))
	return nil
}

// Scan iterates committed rows of the scope in primary key order.
// Changes not yet committed from a state are not visible.
func Scan[V any](store kv.Store, code, table, scope sys.Name, cb func(pk, payer sys.Name, row *V) bool) error {
	prefix := scopeKey(code, table, scope)
	iter := rowBucket.NewStore(store).Iterate(kv.PrefixRange(prefix))
	defer iter.Release()

	for iter.Next() {
		key := iter.Key()
		if len(key) != len(prefix)+8 {
			continue
		}
		var pk sys.Name
		if err := pk.SetBytes(key[len(prefix):]); err != nil {
			return err
		}
		var env envelope
		if err := rlp.DecodeBytes(iter.Value(), &env); err != nil {
			return errors.Wrapf(err, "decode %v row", table)
		}
		var v V
		if err := rlp.DecodeBytes(env.Data, &v); err != nil {
			return errors.Wrapf(err, "decode %v row", table)
		}
		if !cb(pk, env.Payer, &v) {
			break
		}
	}
	return iter.Error()
}
