// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"fmt"

	"github.com/worbli/rescore/stackedmap"
)

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// State is a journaled view of the persistent store.
// Writes stay in memory until staged and committed, and can be reverted to any checkpoint.
// An empty value means absence.
type State struct {
	stater *Stater
	sm     *stackedmap.StackedMap[string, []byte]
}

func newState(stater *Stater) *State {
	s := &State{stater: stater}
	s.sm = stackedmap.New(func(key string) ([]byte, bool, error) {
		v, err := stater.load(key)
		if err != nil {
			return nil, false, err
		}
		return v, len(v) > 0, nil
	})
	return s
}

// Get returns the value of the key, nil if absent.
func (s *State) Get(key []byte) ([]byte, error) {
	v, _, err := s.sm.Get(string(key))
	if err != nil {
		return nil, &Error{err}
	}
	return v, nil
}

// Has returns whether the key holds a value.
func (s *State) Has(key []byte) (bool, error) {
	v, err := s.Get(key)
	if err != nil {
		return false, err
	}
	return len(v) > 0, nil
}

// Put sets the value of the key. Putting an empty value deletes the key.
func (s *State) Put(key, val []byte) {
	s.sm.Put(string(key), append([]byte(nil), val...))
}

// Delete removes the key.
func (s *State) Delete(key []byte) {
	s.sm.Put(string(key), nil)
}

// DecodeValue loads the value of the key and passes it to dec.
// dec receives an empty slice if the key is absent.
func (s *State) DecodeValue(key []byte, dec func([]byte) error) error {
	v, err := s.Get(key)
	if err != nil {
		return err
	}
	return dec(v)
}

// EncodeValue stores what enc produces.
func (s *State) EncodeValue(key []byte, enc func() ([]byte, error)) error {
	data, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.Put(key, data)
	return nil
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	s.sm.PopTo(revision)
	if s.sm.Depth() == 0 {
		s.sm.Push()
	}
}

// Stage collects the net changes made so far, ready to be hashed and committed.
func (s *State) Stage() *Stage {
	changes := make(map[string][]byte)
	s.sm.Journal(func(k string, v []byte) bool {
		changes[k] = v
		return true
	})
	return newStage(s.stater, changes)
}
