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

package ledger_test

import (
	"math"
	"testing"

	"github.com/blinklabs-io/trustledger/custody"
	"github.com/blinklabs-io/trustledger/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStakeMinimum(t *testing.T) {
	env := newTestEnv(t)
	env.fund(t, alice, 2_000_000)
	require.NoError(t, env.ls.Stake(alice, 1_000_000))

	env.fund(t, bob, 500_000)
	err := env.ls.Stake(bob, 500_000)
	require.ErrorIs(t, err, ledger.ErrInvalidAmount)
	require.ErrorIs(t, env.ls.Stake(bob, 0), ledger.ErrInvalidAmount)
	_, err = env.ls.GetUserData(bob)
	require.ErrorIs(t, err, ledger.ErrUserNotFound)
	assert.Equal(t, uint64(500_000), env.balance(t, bob))
}

func TestStakeCreatesAndAccumulates(t *testing.T) {
	env := newTestEnv(t)
	env.stake(t, alice, 1_000_000)
	env.clock.Advance(5)
	env.stake(t, alice, 2_000_000)

	data, err := env.ls.GetUserData(alice)
	require.NoError(t, err)
	assert.Equal(t, ledger.UserData{
		Principal:       alice,
		ReputationScore: 0,
		StakedAmount:    3_000_000,
		LastDecayHeight: 10,
		AddedHeight:     10,
	}, data)
	assert.Equal(t, uint64(0), env.balance(t, alice))
	assert.Equal(
		t,
		uint64(3_000_000),
		env.balance(t, ledger.Principal(custody.DefaultAccount)),
	)
}

func TestStakeTransferFailure(t *testing.T) {
	env := newTestEnv(t)
	env.fund(t, alice, 999_999)
	err := env.ls.Stake(alice, 1_000_000)
	require.ErrorIs(t, err, ledger.ErrTransferFailed)
	require.ErrorIs(t, err, custody.ErrInsufficientFunds)

	// Nothing from the failed call is kept
	_, err = env.ls.GetUserData(alice)
	require.ErrorIs(t, err, ledger.ErrUserNotFound)
	assert.Equal(t, uint64(999_999), env.balance(t, alice))
	events, err := env.ls.GetEvents(alice, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestStakeThenUnstake(t *testing.T) {
	env := newTestEnv(t)
	env.stake(t, alice, 1_234_567)
	withdrawn, err := env.ls.Unstake(alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_234_567), withdrawn)
	assert.Equal(t, uint64(1_234_567), env.balance(t, alice))

	stake, err := env.ls.GetStake(alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), stake)
	// The record stays after a full exit
	_, err = env.ls.GetUserData(alice)
	require.NoError(t, err)

	_, err = env.ls.Unstake(alice)
	require.ErrorIs(t, err, ledger.ErrInsufficientStake)
	_, err = env.ls.Unstake(bob)
	require.ErrorIs(t, err, ledger.ErrUserNotFound)
}

func TestPartialUnstake(t *testing.T) {
	env := newTestEnv(t)
	env.stake(t, alice, 2_000_000)

	_, err := env.ls.PartialUnstake(alice, 1_500_000)
	require.ErrorIs(t, err, ledger.ErrInvalidAmount)
	remaining, err := env.ls.PartialUnstake(alice, 500_000)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_500_000), remaining)
	assert.Equal(t, uint64(500_000), env.balance(t, alice))

	_, err = env.ls.PartialUnstake(alice, 0)
	require.ErrorIs(t, err, ledger.ErrInvalidAmount)
	_, err = env.ls.PartialUnstake(alice, 1_500_001)
	require.ErrorIs(t, err, ledger.ErrInsufficientStake)
	// Withdrawing everything through a partial unstake leaves zero, which is
	// below the minimum
	_, err = env.ls.PartialUnstake(alice, 1_500_000)
	require.ErrorIs(t, err, ledger.ErrInvalidAmount)
	_, err = env.ls.PartialUnstake(bob, 1)
	require.ErrorIs(t, err, ledger.ErrUserNotFound)

	stake, err := env.ls.GetStake(alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_500_000), stake)
}

func TestGetUsers(t *testing.T) {
	env := newTestEnv(t)
	users, err := env.ls.GetUsers()
	require.NoError(t, err)
	assert.Empty(t, users)

	env.stake(t, alice, 1_000_000)
	env.stake(t, bob, 2_000_000)
	users, err = env.ls.GetUsers()
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, alice, users[0].Principal)
	assert.Equal(t, bob, users[1].Principal)
	assert.Equal(t, uint64(2_000_000), users[1].StakedAmount)
}

func TestStakeLedgerMatchesHistory(t *testing.T) {
	env := newTestEnv(t)
	env.stake(t, alice, 3_000_000)
	env.stake(t, alice, 1_000_000)
	_, err := env.ls.PartialUnstake(alice, 2_500_000)
	require.NoError(t, err)
	env.stake(t, alice, 1_000_000)
	_, err = env.ls.PartialUnstake(alice, 1_000_000)
	require.NoError(t, err)

	stake, err := env.ls.GetStake(alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(3_000_000+1_000_000-2_500_000+1_000_000-1_000_000), stake)
	require.NoError(t, env.ls.CheckCustodyInvariant())
}

func TestReputationIncrementDecrement(t *testing.T) {
	env := newTestEnv(t)
	env.stake(t, alice, 1_000_000)

	score, err := env.ls.IncrementReputation(testOwner, alice, 30)
	require.NoError(t, err)
	assert.Equal(t, uint64(30), score)
	score, err = env.ls.DecrementReputation(testOwner, alice, 10)
	require.NoError(t, err)
	assert.Equal(t, uint64(20), score)
	// Decrement floors at zero
	score, err = env.ls.DecrementReputation(testOwner, alice, 50)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), score)

	_, err = env.ls.IncrementReputation(testOwner, alice, 0)
	require.ErrorIs(t, err, ledger.ErrInvalidAmount)
	_, err = env.ls.IncrementReputation(testOwner, bob, 1)
	require.ErrorIs(t, err, ledger.ErrUserNotFound)
}

func TestReputationOverflow(t *testing.T) {
	env := newTestEnv(t)
	env.stake(t, alice, 1_000_000)
	_, err := env.ls.IncrementReputation(testOwner, alice, math.MaxUint64)
	require.NoError(t, err)
	_, err = env.ls.IncrementReputation(testOwner, alice, 1)
	require.ErrorIs(t, err, ledger.ErrInvalidAmount)
	score, err := env.ls.GetReputation(alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), score)
}

func TestReputationRequiresStake(t *testing.T) {
	env := newTestEnv(t)
	env.stake(t, alice, 1_000_000)
	_, err := env.ls.Unstake(alice)
	require.NoError(t, err)
	_, err = env.ls.IncrementReputation(testOwner, alice, 1)
	require.ErrorIs(t, err, ledger.ErrInsufficientStake)
	_, err = env.ls.DecrementReputation(testOwner, alice, 1)
	require.ErrorIs(t, err, ledger.ErrInsufficientStake)
}

func TestReputationCallerGate(t *testing.T) {
	env := newTestEnv(t)
	env.stake(t, alice, 1_000_000)

	_, err := env.ls.IncrementReputation(testContract, alice, 1)
	require.ErrorIs(t, err, ledger.ErrUnauthorized)
	_, err = env.ls.IncrementReputation("", alice, 1)
	require.ErrorIs(t, err, ledger.ErrUnauthorized)

	_, err = env.ls.SetAuthorized(testOwner, testContract, true)
	require.NoError(t, err)
	score, err := env.ls.IncrementReputation(testContract, alice, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), score)

	_, err = env.ls.SetAuthorized(testOwner, testContract, false)
	require.NoError(t, err)
	_, err = env.ls.DecrementReputation(testContract, alice, 1)
	require.ErrorIs(t, err, ledger.ErrUnauthorized)
}

func TestDecayScenario(t *testing.T) {
	env := newTestEnv(t)
	env.stake(t, alice, 1_000_000)
	_, err := env.ls.IncrementReputation(testOwner, alice, 100)
	require.NoError(t, err)

	env.clock.Advance(20)
	score, err := env.ls.DecayReputation(bob, alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(95), score)
	data, err := env.ls.GetUserData(alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(30), data.LastDecayHeight)

	events, err := env.ls.GetEvents(alice, 0, 0)
	require.NoError(t, err)
	last := events[len(events)-1]
	assert.Equal(t, ledger.ReputationDecayedEventType, last.Type)
	assert.Equal(t, uint64(100), last.Before)
	assert.Equal(t, uint64(95), last.After)
	assert.Equal(t, uint64(5), last.Amount)
}

func TestDecayNeverIncreases(t *testing.T) {
	env := newTestEnv(t)
	env.stake(t, alice, 1_000_000)
	_, err := env.ls.IncrementReputation(testOwner, alice, 1_000)
	require.NoError(t, err)
	_, err = env.ls.SetDecayRate(testOwner, 33)
	require.NoError(t, err)

	prev := uint64(1_000)
	for range 30 {
		score, err := env.ls.DecayReputation("", alice)
		require.NoError(t, err)
		assert.LessOrEqual(t, score, prev)
		assert.Equal(t, prev-prev*33/100, score)
		prev = score
	}

	_, err = env.ls.DecayReputation("", bob)
	require.ErrorIs(t, err, ledger.ErrUserNotFound)
}

func TestDecayLargeScore(t *testing.T) {
	env := newTestEnv(t)
	env.stake(t, alice, 1_000_000)
	_, err := env.ls.IncrementReputation(testOwner, alice, math.MaxUint64)
	require.NoError(t, err)
	_, err = env.ls.SetDecayRate(testOwner, 100)
	require.NoError(t, err)
	score, err := env.ls.DecayReputation("", alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), score)
}

func TestStakeNotPauseGated(t *testing.T) {
	env := newTestEnv(t)
	env.stake(t, alice, 2_000_000)
	_, err := env.ls.IncrementReputation(testOwner, alice, 10)
	require.NoError(t, err)
	_, err = env.ls.SetPaused(testOwner, true)
	require.NoError(t, err)

	env.stake(t, bob, 1_000_000)
	_, err = env.ls.PartialUnstake(alice, 500_000)
	require.NoError(t, err)
	_, err = env.ls.DecayReputation("", alice)
	require.NoError(t, err)
	_, err = env.ls.Unstake(alice)
	require.NoError(t, err)
}
