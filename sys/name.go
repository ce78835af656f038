// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package sys

import (
	"encoding/binary"
	"errors"
	"strings"
)

const (
	// NameMaxLength is the maximum length of an account name in characters.
	NameMaxLength = 13

	nameCharset = ".12345abcdefghijklmnopqrstuvwxyz"
)

// Name is an account name packed into 64 bits.
// The first 12 characters use 5 bits each from the charset `.12345a-z`,
// the 13th character uses the remaining 4 bits and is limited to `.12345a-j`.
type Name uint64

// ParseName converts string presented name into Name type.
func ParseName(s string) (Name, error) {
	if len(s) > NameMaxLength {
		return 0, errors.New("invalid length")
	}
	var v uint64
	for i := 0; i < len(s); i++ {
		c, ok := charToSymbol(s[i])
		if !ok {
			return 0, errors.New("invalid character")
		}
		if i < 12 {
			v |= uint64(c&0x1f) << (64 - 5*(i+1))
		} else {
			if c > 0x0f {
				return 0, errors.New("invalid 13th character")
			}
			v |= uint64(c)
		}
	}
	n := Name(v)
	// reject names with trailing dots, they would not round trip
	if n.String() != s {
		return 0, errors.New("not normalized")
	}
	return n, nil
}

// MustParseName parses name, it panics on error.
func MustParseName(s string) Name {
	n, err := ParseName(s)
	if err != nil {
		panic(err)
	}
	return n
}

// String implements the stringer interface.
func (n Name) String() string {
	var out [NameMaxLength]byte
	v := uint64(n)
	for i := range out {
		var c uint64
		if i == 0 {
			c = v & 0x0f
			v >>= 4
		} else {
			c = v & 0x1f
			v >>= 5
		}
		out[NameMaxLength-1-i] = nameCharset[c]
	}
	return strings.TrimRight(string(out[:]), ".")
}

// Bytes returns the big endian form of name, used as storage key.
func (n Name) Bytes() []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(n))
	return b[:]
}

// SetBytes sets the name from its 8 byte big endian form.
func (n *Name) SetBytes(b []byte) error {
	if len(b) != 8 {
		return errors.New("invalid name bytes length")
	}
	*n = Name(binary.BigEndian.Uint64(b))
	return nil
}

// IsZero returns if the name is empty.
func (n Name) IsZero() bool {
	return n == 0
}

// MarshalText implements encoding.TextMarshaler.
func (n Name) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (n *Name) UnmarshalText(text []byte) error {
	parsed, err := ParseName(string(text))
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}

func charToSymbol(c byte) (byte, bool) {
	switch {
	case c >= 'a' && c <= 'z':
		return c - 'a' + 6, true
	case c >= '1' && c <= '5':
		return c - '1' + 1, true
	case c == '.':
		return 0, true
	}
	return 0, false
}
