// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lvldb

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worbli/rescore/kv"
)

func TestLevelDB(t *testing.T) {
	var (
		key        = []byte("123")
		value      = []byte("456")
		invalidKey = []byte("abc")
	)

	disk, err := New(filepath.Join(t.TempDir(), "db"), Options{CacheSize: 16, OpenFilesCacheCapacity: 16})
	require.NoError(t, err)
	defer disk.Close()

	mem, err := NewMem()
	require.NoError(t, err)
	defer mem.Close()

	for _, db := range []*LevelDB{disk, mem} {
		require.NoError(t, db.Put(key, value))

		got, err := db.Get(key)
		require.NoError(t, err)
		assert.Equal(t, value, got)

		has, err := db.Has(key)
		require.NoError(t, err)
		assert.True(t, has)

		has, err = db.Has(invalidKey)
		require.NoError(t, err)
		assert.False(t, has)

		require.NoError(t, db.Delete(key))
		_, err = db.Get(key)
		assert.True(t, db.IsNotFound(err))
	}
}

func TestBulk(t *testing.T) {
	db, err := NewMem()
	require.NoError(t, err)
	defer db.Close()

	b := db.Bulk()
	require.NoError(t, b.Put([]byte("a"), []byte("1")))
	require.NoError(t, b.Put([]byte("b"), []byte("2")))
	assert.Equal(t, 2, b.Len())

	has, _ := db.Has([]byte("a"))
	assert.False(t, has, "bulk must not be visible before write")

	require.NoError(t, b.Write())
	has, _ = db.Has([]byte("a"))
	assert.True(t, has)
	assert.Equal(t, 0, b.Len())
}

func TestBucketIterate(t *testing.T) {
	db, err := NewMem()
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Put([]byte("other"), []byte("x")))
	store := kv.Bucket("t.").NewStore(db)
	for _, k := range []string{"c", "a", "b"} {
		require.NoError(t, store.Put([]byte(k), []byte(k+k)))
	}

	iter := store.Iterate(kv.Range{})
	defer iter.Release()

	var keys []string
	for iter.Next() {
		keys = append(keys, string(iter.Key()))
		assert.Equal(t, string(iter.Key())+string(iter.Key()), string(iter.Value()))
	}
	require.NoError(t, iter.Error())
	assert.Equal(t, []string{"a", "b", "c"}, keys)

	bulk := store.Bulk()
	require.NoError(t, bulk.Delete([]byte("a")))
	require.NoError(t, bulk.Write())
	has, err := db.Has([]byte("t.a"))
	require.NoError(t, err)
	assert.False(t, has)
}
