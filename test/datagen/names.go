// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package datagen

import (
	"github.com/worbli/rescore/sys"
)

const nameChars = "abcdefghijklmnopqrstuvwxyz12345"

// RandomName returns a random 12 character account name.
func RandomName() sys.Name {
	b := make([]byte, 12)
	for i := range b {
		b[i] = nameChars[RandIntN(len(nameChars))]
	}
	return sys.MustParseName(string(b))
}

// RandomNames returns n distinct random account names.
func RandomNames(n int) []sys.Name {
	seen := make(map[sys.Name]struct{}, n)
	names := make([]sys.Name, 0, n)
	for len(names) < n {
		name := RandomName()
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}
