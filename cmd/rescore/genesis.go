// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"bytes"
	"io"
	"os"
	"slices"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/worbli/rescore/builtin/system"
	"github.com/worbli/rescore/builtin/system/compliance"
	"github.com/worbli/rescore/builtin/system/limits"
	"github.com/worbli/rescore/builtin/table"
	"github.com/worbli/rescore/state"
	"github.com/worbli/rescore/sys"
)

// Genesis describes the initial resource state.
type Genesis struct {
	MaxSupply  string             `yaml:"max_supply"`
	Balances   map[string]string  `yaml:"balances"`
	Params     GenesisParams      `yaml:"params"`
	Compliance *GenesisCompliance `yaml:"compliance"`
	Managed    map[string]Managed `yaml:"managed"`
	Grants     []Grant            `yaml:"grants"`
}

// GenesisParams override the governance params. Zero keeps the default.
type GenesisParams struct {
	MaxRAMSize   uint64 `yaml:"max_ram_size"`
	RefundDelay  uint64 `yaml:"refund_delay"`
	RAMGiftBytes uint64 `yaml:"ram_gift_bytes"`
}

// GenesisCompliance creates the compliance account with the listed verified identities.
type GenesisCompliance struct {
	Identities []string `yaml:"identities"`
}

// Managed lists the limit dimensions of an account set by an external delegate.
type Managed struct {
	RAM bool `yaml:"ram"`
	Net bool `yaml:"net"`
	CPU bool `yaml:"cpu"`
}

// Grant is a ram grant made by a privileged account.
type Grant struct {
	From     string `yaml:"from"`
	To       string `yaml:"to"`
	Quantity string `yaml:"quantity"`
}

const defaultMaxSupply = "10000000000.0000 WBI"

// DefaultGenesis creates the core token and nothing else.
func DefaultGenesis() *Genesis {
	return &Genesis{MaxSupply: defaultMaxSupply}
}

// LoadGenesis reads a genesis file. Unknown fields are rejected.
func LoadGenesis(path string) (*Genesis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read genesis")
	}
	return ParseGenesis(data)
}

// ParseGenesis decodes a genesis document.
func ParseGenesis(data []byte) (*Genesis, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	gene := DefaultGenesis()
	// an empty document keeps the defaults
	if err := dec.Decode(gene); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "decode genesis")
	}
	return gene, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Apply writes the genesis into the state. Nothing is committed.
func (g *Genesis) Apply(st *state.State, now uint64) error {
	if g.Compliance != nil {
		reg := compliance.NewRegistry(table.NewContext(sys.ComplianceAccount, st, nil))
		if err := reg.Create(now); err != nil {
			return err
		}
		for _, id := range g.Compliance.Identities {
			subject, err := sys.ParseName(id)
			if err != nil {
				return errors.Wrapf(err, "compliance identity %q", id)
			}
			if err := reg.SetAttribute(subject, compliance.Identity.Key, compliance.Identity.Values[0]); err != nil {
				return err
			}
		}
	}

	gate, err := system.ComplianceGate(st)
	if err != nil {
		return err
	}
	s := system.New(st, gate)
	env := system.NewEnv(now, sys.SystemAccount)

	maxSupply, err := sys.ParseAsset(g.MaxSupply)
	if err != nil {
		return errors.Wrap(err, "max supply")
	}
	if err := s.CreateToken(env, maxSupply); err != nil {
		return err
	}

	for _, p := range []struct {
		key   []byte
		value uint64
	}{
		{sys.KeyMaxRAMSize, g.Params.MaxRAMSize},
		{sys.KeyRefundDelay, g.Params.RefundDelay},
		{sys.KeyRAMGiftBytes, g.Params.RAMGiftBytes},
	} {
		if p.value == 0 {
			continue
		}
		if err := s.SetParam(env, string(p.key), p.value); err != nil {
			return err
		}
	}

	for _, owner := range sortedKeys(g.Balances) {
		to, err := sys.ParseName(owner)
		if err != nil {
			return errors.Wrapf(err, "balance of %q", owner)
		}
		quantity, err := sys.ParseAsset(g.Balances[owner])
		if err != nil {
			return errors.Wrapf(err, "balance of %q", owner)
		}
		if err := s.Issue(env, to, quantity, "genesis"); err != nil {
			return err
		}
	}

	for _, account := range sortedKeys(g.Managed) {
		name, err := sys.ParseName(account)
		if err != nil {
			return errors.Wrapf(err, "managed account %q", account)
		}
		m := g.Managed[account]
		if err := s.SetManagedFlags(env, name, limits.Flags{RAMManaged: m.RAM, NetManaged: m.Net, CPUManaged: m.CPU}); err != nil {
			return err
		}
	}

	for i, grant := range g.Grants {
		from, err := sys.ParseName(grant.From)
		if err != nil {
			return errors.Wrapf(err, "grant #%d", i)
		}
		to, err := sys.ParseName(grant.To)
		if err != nil {
			return errors.Wrapf(err, "grant #%d", i)
		}
		quantity, err := sys.ParseAsset(grant.Quantity)
		if err != nil {
			return errors.Wrapf(err, "grant #%d", i)
		}
		if _, err := s.GrantRam(system.NewEnv(now, from), from, to, quantity); err != nil {
			return errors.Wrapf(err, "grant #%d", i)
		}
	}
	return nil
}
