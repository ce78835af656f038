// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/worbli/rescore/cache"
	"github.com/worbli/rescore/kv"
)

const defaultCacheSize = 4096

// Stater is the state creator.
// It owns the persistent store and a read cache shared by all states it creates.
type Stater struct {
	db    kv.Store
	cache *cache.LRU[string, []byte]
}

// NewStater create a new stater over the store.
func NewStater(db kv.Store, cacheSize int) *Stater {
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}
	c, err := cache.NewLRU[string, []byte](cacheSize)
	if err != nil {
		panic(err)
	}
	return &Stater{db: db, cache: c}
}

// NewState create a new state object upon the latest committed data.
func (s *Stater) NewState() *State {
	return newState(s)
}

// Store returns the underlying store.
func (s *Stater) Store() kv.Store {
	return s.db
}

func (s *Stater) load(key string) ([]byte, error) {
	return s.cache.GetOrLoad(key, func(key string) ([]byte, error) {
		metricStateRead().AddWithLabel(1, map[string]string{"source": "store"})
		v, err := s.db.Get([]byte(key))
		if err != nil {
			if s.db.IsNotFound(err) {
				return nil, nil
			}
			return nil, err
		}
		return v, nil
	})
}
