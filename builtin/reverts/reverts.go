// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"errors"
	"fmt"
)

// ErrRequire is a failed precondition of an action. It aborts the invocation
// but is not an infrastructure failure.
type ErrRequire struct {
	message string
}

func New(message string) *ErrRequire {
	return &ErrRequire{message: message}
}

func Errorf(format string, args ...any) *ErrRequire {
	return &ErrRequire{message: fmt.Sprintf(format, args...)}
}

func (e *ErrRequire) Error() string {
	return e.message
}

// Require returns a revert error with the message when cond does not hold.
func Require(cond bool, format string, args ...any) error {
	if cond {
		return nil
	}
	return Errorf(format, args...)
}

// IsRevertErr reports whether err, or any error it wraps, is a revert.
func IsRevertErr(err error) bool {
	var target *ErrRequire
	return errors.As(err, &target)
}
