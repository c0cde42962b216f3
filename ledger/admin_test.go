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
	"testing"

	"github.com/blinklabs-io/trustledger/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminOwnerOnly(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.ls.SetAuthorized(testOwner, testContract, true)
	require.NoError(t, err)

	// Authorized callers are not admins
	for _, caller := range []ledger.Principal{alice, testContract, ""} {
		require.ErrorIs(t, env.ls.SetOwner(caller, caller), ledger.ErrUnauthorized)
		_, err = env.ls.SetPaused(caller, true)
		require.ErrorIs(t, err, ledger.ErrUnauthorized)
		_, err = env.ls.SetAuthorized(caller, bob, true)
		require.ErrorIs(t, err, ledger.ErrUnauthorized)
		_, err = env.ls.SetDecayRate(caller, 1)
		require.ErrorIs(t, err, ledger.ErrUnauthorized)
		_, err = env.ls.SetMinStake(caller, 1)
		require.ErrorIs(t, err, ledger.ErrUnauthorized)
	}
	settings, err := env.ls.GetSettings()
	require.NoError(t, err)
	assert.Equal(t, testOwner, settings.Owner)
	assert.False(t, settings.Paused)
}

func TestSetOwner(t *testing.T) {
	env := newTestEnv(t)
	require.ErrorIs(t, env.ls.SetOwner(testOwner, ""), ledger.ErrInvalidPrincipal)
	require.NoError(t, env.ls.SetOwner(testOwner, alice))
	require.ErrorIs(t, env.ls.SetOwner(testOwner, bob), ledger.ErrUnauthorized)
	_, err := env.ls.SetPaused(alice, true)
	require.NoError(t, err)

	events, err := env.ls.GetEvents(alice, 0, 0)
	require.NoError(t, err)
	require.NotEmpty(t, events)
	assert.Equal(t, ledger.OwnershipTransferredEventType, events[0].Type)
	assert.Equal(t, testOwner, events[0].Actor)
}

func TestSetPaused(t *testing.T) {
	env := newTestEnv(t)
	paused, err := env.ls.SetPaused(testOwner, true)
	require.NoError(t, err)
	assert.True(t, paused)
	isPaused, err := env.ls.IsPaused()
	require.NoError(t, err)
	assert.True(t, isPaused)

	paused, err = env.ls.SetPaused(testOwner, false)
	require.NoError(t, err)
	assert.False(t, paused)
	isPaused, err = env.ls.IsPaused()
	require.NoError(t, err)
	assert.False(t, isPaused)
}

func TestSetAuthorized(t *testing.T) {
	env := newTestEnv(t)
	authorized, err := env.ls.IsAuthorized(testContract)
	require.NoError(t, err)
	assert.False(t, authorized)

	flag, err := env.ls.SetAuthorized(testOwner, testContract, true)
	require.NoError(t, err)
	assert.True(t, flag)
	authorized, err = env.ls.IsAuthorized(testContract)
	require.NoError(t, err)
	assert.True(t, authorized)
	callers, err := env.ls.GetAuthorizedCallers()
	require.NoError(t, err)
	assert.Equal(t, []ledger.Principal{testContract}, callers)

	_, err = env.ls.SetAuthorized(testOwner, "", true)
	require.ErrorIs(t, err, ledger.ErrInvalidPrincipal)

	events, err := env.ls.GetEvents(testContract, 0, 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, ledger.AuthorizationChangedEventType, events[0].Type)
	assert.True(t, events[0].Value)
	assert.Equal(t, uint64(0), events[0].Before)
	assert.Equal(t, uint64(1), events[0].After)
}

func TestSetDecayRate(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.ls.SetDecayRate(testOwner, 101)
	require.ErrorIs(t, err, ledger.ErrInvalidAmount)
	rate, err := env.ls.SetDecayRate(testOwner, 100)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), rate)
	rate, err = env.ls.SetDecayRate(testOwner, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), rate)

	// A zero rate leaves scores unchanged
	env.withReputation(t, alice, 40)
	score, err := env.ls.DecayReputation("", alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(40), score)
}

func TestSetMinStake(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.ls.SetMinStake(testOwner, 0)
	require.ErrorIs(t, err, ledger.ErrInvalidAmount)
	amount, err := env.ls.SetMinStake(testOwner, 10)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), amount)

	env.stake(t, alice, 10)
	settings, err := env.ls.GetSettings()
	require.NoError(t, err)
	assert.Equal(t, uint64(10), settings.MinStake)

	events, err := env.ls.GetEvents(testOwner, 0, 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, ledger.MinStakeUpdatedEventType, events[0].Type)
	assert.Equal(t, uint64(1_000_000), events[0].Before)
	assert.Equal(t, uint64(10), events[0].After)
}
