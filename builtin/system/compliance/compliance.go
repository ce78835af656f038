// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package compliance checks subjects against the attributes a policy account recorded for them.
package compliance

import (
	"slices"

	"github.com/pkg/errors"

	"github.com/worbli/rescore/builtin/table"
	"github.com/worbli/rescore/sys"
)

var (
	tableAttrs   = sys.MustParseName("attrs")
	tableAccount = sys.MustParseName("account")
)

// Condition requires the attribute Key of a subject to hold one of Values.
type Condition struct {
	Key    sys.Name
	Values []string
}

// Identity is met by subjects with a verified identity.
var Identity = Condition{Key: sys.MustParseName("identity"), Values: []string{"true"}}

// Gate evaluates conditions of a policy account. It returns the conditions the subject fails.
type Gate interface {
	Validate(policy, subject sys.Name, conds []Condition) ([]Condition, error)
}

type attribute struct {
	Value string
}

type accountRow struct {
	Created uint64
}

// Registry is a Gate backed by attributes stored under the policy account.
type Registry struct {
	policy  sys.Name
	attrs   *table.Table[attribute]
	account *table.Singleton[accountRow]
}

var _ Gate = (*Registry)(nil)

// NewRegistry creates the registry of the policy account the context is bound to.
func NewRegistry(ctx *table.Context) *Registry {
	return &Registry{
		policy:  ctx.Code(),
		attrs:   table.New[attribute](ctx, tableAttrs),
		account: table.NewSingleton[accountRow](ctx, tableAccount),
	}
}

// Open returns the registry of the policy account, or nil when the account was never created.
func Open(ctx *table.Context) (*Registry, error) {
	r := NewRegistry(ctx)
	ok, err := r.Exists()
	if err != nil || !ok {
		return nil, err
	}
	return r, nil
}

// Exists returns whether the policy account was created.
func (r *Registry) Exists() (bool, error) {
	row, err := r.account.Get()
	return row != nil, err
}

// Create creates the policy account at the given time. Creating it twice is a no-op.
func (r *Registry) Create(time uint64) error {
	ok, err := r.Exists()
	if err != nil || ok {
		return err
	}
	return r.account.Set(&accountRow{time})
}

// Attribute returns the value of the subject's attribute, empty if unset.
func (r *Registry) Attribute(subject, key sys.Name) (string, error) {
	attr, err := r.attrs.Get(subject, key)
	if err != nil || attr == nil {
		return "", err
	}
	return attr.Value, nil
}

// SetAttribute records an attribute of the subject. An empty value removes it.
func (r *Registry) SetAttribute(subject, key sys.Name, value string) error {
	exists, err := r.attrs.Exists(subject, key)
	if err != nil {
		return err
	}
	switch {
	case value == "" && exists:
		return r.attrs.Erase(subject, key)
	case value == "":
		return nil
	case exists:
		return r.attrs.Update(subject, key, &attribute{value}, 0)
	default:
		return r.attrs.Insert(subject, key, &attribute{value}, r.policy)
	}
}

// Validate implements Gate.
func (r *Registry) Validate(policy, subject sys.Name, conds []Condition) ([]Condition, error) {
	if policy != r.policy {
		return nil, errors.Errorf("unknown policy account %v", policy)
	}
	var failed []Condition
	for _, c := range conds {
		v, err := r.Attribute(subject, c.Key)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(c.Values, v) {
			failed = append(failed, c)
		}
	}
	return failed, nil
}
