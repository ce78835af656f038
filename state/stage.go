// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"io"
	"sort"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/worbli/rescore/sys"
)

// Stage abstracts the net changes of a state.
type Stage struct {
	stater *Stater
	keys   []string
	values map[string][]byte
}

func newStage(stater *Stater, changes map[string][]byte) *Stage {
	keys := make([]string, 0, len(changes))
	for k := range changes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return &Stage{stater, keys, changes}
}

// Len returns the number of changed keys.
func (s *Stage) Len() int {
	return len(s.keys)
}

// Hash computes the digest of the changes. Equal change sets give equal hashes.
func (s *Stage) Hash() sys.Bytes32 {
	return sys.Blake2bFn(func(w io.Writer) {
		for _, k := range s.keys {
			rlp.Encode(w, []any{[]byte(k), s.values[k]})
		}
	})
}

// Commit writes all changes into the store atomically.
func (s *Stage) Commit() error {
	bulk := s.stater.db.Bulk()
	for _, k := range s.keys {
		v := s.values[k]
		var err error
		if len(v) == 0 {
			err = bulk.Delete([]byte(k))
		} else {
			err = bulk.Put([]byte(k), v)
		}
		if err != nil {
			return &Error{err}
		}
	}
	if err := bulk.Write(); err != nil {
		return &Error{err}
	}
	for _, k := range s.keys {
		s.stater.cache.Add(k, s.values[k])
	}
	metricStateWrite().Add(int64(len(s.keys)))
	return nil
}
