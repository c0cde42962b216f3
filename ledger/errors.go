// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ledger

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthorized           = errors.New("unauthorized")
	ErrInsufficientStake      = errors.New("insufficient stake")
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrUserNotFound           = errors.New("user not found")
	ErrBadgeNotFound          = errors.New("badge not found")
	ErrBadgeExists            = errors.New("badge already exists")
	ErrInsufficientReputation = errors.New("insufficient reputation")
	ErrTransferFailed         = errors.New("transfer failed")
	ErrInvalidPrincipal       = errors.New("invalid principal")
)

// Stable error codes reported to API clients
const (
	ErrorCodeUnauthorized           uint = 100
	ErrorCodeInsufficientStake      uint = 101
	ErrorCodeInvalidAmount          uint = 102
	ErrorCodeUserNotFound           uint = 103
	ErrorCodeBadgeNotFound          uint = 104
	ErrorCodeBadgeExists            uint = 105
	ErrorCodeInsufficientReputation uint = 106
	ErrorCodeTransferFailed         uint = 107
	ErrorCodeInvalidPrincipal       uint = 108
)

var errorCodes = []struct {
	err  error
	code uint
}{
	{ErrUnauthorized, ErrorCodeUnauthorized},
	{ErrInsufficientStake, ErrorCodeInsufficientStake},
	{ErrInvalidAmount, ErrorCodeInvalidAmount},
	{ErrUserNotFound, ErrorCodeUserNotFound},
	{ErrBadgeNotFound, ErrorCodeBadgeNotFound},
	{ErrBadgeExists, ErrorCodeBadgeExists},
	{ErrInsufficientReputation, ErrorCodeInsufficientReputation},
	{ErrTransferFailed, ErrorCodeTransferFailed},
	{ErrInvalidPrincipal, ErrorCodeInvalidPrincipal},
}

// ErrorCode returns the code for the ledger error kind wrapped by err, or 0
// if err is not a ledger error
func ErrorCode(err error) uint {
	for _, entry := range errorCodes {
		if errors.Is(err, entry.err) {
			return entry.code
		}
	}
	return 0
}

// InvariantError reports that the sum of staked amounts no longer matches the
// funds held by the custody account
type InvariantError struct {
	TotalStaked    uint64
	CustodyBalance uint64
}

func (e InvariantError) Error() string {
	return fmt.Sprintf(
		"custody invariant violated: total staked %d, custody balance %d",
		e.TotalStaked,
		e.CustodyBalance,
	)
}
