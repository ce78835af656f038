// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package params

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/worbli/rescore/log"
	"github.com/worbli/rescore/state"
	"github.com/worbli/rescore/sys"
)

var logger = log.WithContext("pkg", "params")

// Params binds the governance parameters owned by an account.
// An unset parameter reads as zero, which means "use the default".
type Params struct {
	owner sys.Name
	state *state.State
}

func New(owner sys.Name, state *state.State) *Params {
	return &Params{owner, state}
}

func (p *Params) key(key []byte) []byte {
	return append(append([]byte{'p'}, p.owner.Bytes()...), key...)
}

// Get native way to get param.
func (p *Params) Get(key []byte) (v uint64, err error) {
	err = p.state.DecodeValue(p.key(key), func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &v)
	})
	if err != nil {
		return 0, errors.Wrapf(err, "get param %s", key)
	}
	return
}

// Set native way to set param. Setting zero restores the default.
func (p *Params) Set(key []byte, value uint64) error {
	if value == 0 {
		p.state.Delete(p.key(key))
		return nil
	}
	return p.state.EncodeValue(p.key(key), func() ([]byte, error) {
		return rlp.EncodeToBytes(value)
	})
}

// GetOrDefault returns the stored value, or def when unset.
func (p *Params) GetOrDefault(key []byte, def uint64) (uint64, error) {
	v, err := p.Get(key)
	if err != nil {
		return 0, err
	}
	if v == 0 {
		return def, nil
	}
	logger.Debug("override found", "key", string(key), "value", v)
	return v, nil
}
