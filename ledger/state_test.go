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
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/blinklabs-io/trustledger/custody"
	"github.com/blinklabs-io/trustledger/database"
	"github.com/blinklabs-io/trustledger/event"
	"github.com/blinklabs-io/trustledger/internal/test/testutil"
	"github.com/blinklabs-io/trustledger/ledger"
	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testOwner    ledger.Principal = "owner"
	testContract ledger.Principal = "contract"
	alice        ledger.Principal = "alice"
	bob          ledger.Principal = "bob"
	carol        ledger.Principal = "carol"
)

type testEnv struct {
	ls       *ledger.LedgerState
	db       *database.Database
	custody  *custody.Custody
	clock    *ledger.ManualClock
	bus      *event.EventBus
	registry *prometheus.Registry
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.NewDatabase(t)
	bus := event.NewEventBus(nil, nil)
	t.Cleanup(bus.Stop)
	env := &testEnv{
		db:       db,
		custody:  custody.New(db, nil),
		clock:    ledger.NewManualClock(10),
		bus:      bus,
		registry: prometheus.NewRegistry(),
	}
	ls, err := ledger.NewLedgerState(ledger.LedgerStateConfig{
		Database:     db,
		EventBus:     bus,
		PromRegistry: env.registry,
		Clock:        env.clock,
		Transferer:   env.custody,
		Owner:        testOwner,
	})
	require.NoError(t, err)
	env.ls = ls
	return env
}

// fund credits a principal with spendable currency
func (e *testEnv) fund(t *testing.T, p ledger.Principal, amount uint64) {
	t.Helper()
	txn := e.db.Transaction(true)
	require.NoError(t, txn.Do(func(txn *database.Txn) error {
		return e.custody.Credit(txn, string(p), amount)
	}))
}

func (e *testEnv) stake(t *testing.T, p ledger.Principal, amount uint64) {
	t.Helper()
	e.fund(t, p, amount)
	require.NoError(t, e.ls.Stake(p, amount))
}

func (e *testEnv) balance(t *testing.T, p ledger.Principal) uint64 {
	t.Helper()
	balance, err := e.custody.Balance(nil, string(p))
	require.NoError(t, err)
	return balance
}

// withReputation stakes the minimum for p and raises its score to points
func (e *testEnv) withReputation(t *testing.T, p ledger.Principal, points uint64) {
	t.Helper()
	e.stake(t, p, 1_000_000)
	_, err := e.ls.IncrementReputation(testOwner, p, points)
	require.NoError(t, err)
}

func TestNewLedgerStateDefaults(t *testing.T) {
	env := newTestEnv(t)
	settings, err := env.ls.GetSettings()
	require.NoError(t, err)
	assert.Equal(t, ledger.Settings{
		Owner:       testOwner,
		DecayRate:   5,
		MinStake:    1_000_000,
		NextBadgeID: 1,
		Paused:      false,
	}, settings)
}

func TestNewLedgerStateKeepsExistingSettings(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.ls.SetOwner(testOwner, alice))
	ls, err := ledger.NewLedgerState(ledger.LedgerStateConfig{
		Database:   env.db,
		Clock:      env.clock,
		Transferer: env.custody,
		Owner:      bob,
	})
	require.NoError(t, err)
	settings, err := ls.GetSettings()
	require.NoError(t, err)
	assert.Equal(t, alice, settings.Owner)
}

func TestNewLedgerStateRequiresOwner(t *testing.T) {
	db, err := database.New(&database.Config{})
	require.NoError(t, err)
	defer db.Close()
	_, err = ledger.NewLedgerState(ledger.LedgerStateConfig{Database: db})
	require.Error(t, err)
	_, err = ledger.NewLedgerState(ledger.LedgerStateConfig{})
	require.Error(t, err)
}

func TestEventsPublishedAfterCommit(t *testing.T) {
	env := newTestEnv(t)
	_, stakeCh := env.bus.Subscribe(ledger.StakeAddedEventType)
	_, repCh := env.bus.Subscribe(ledger.ReputationUpdatedEventType)

	env.stake(t, alice, 1_500_000)
	evt := testutil.RequireReceive(t, stakeCh, time.Second, "stake event")
	data, ok := evt.Data.(ledger.LedgerEvent)
	require.True(t, ok)
	assert.Equal(t, ledger.StakeAddedEventType, data.Type)
	assert.Equal(t, alice, data.Principal)
	assert.Equal(t, uint64(0), data.Before)
	assert.Equal(t, uint64(1_500_000), data.After)
	assert.Equal(t, uint64(1_500_000), data.Amount)
	assert.Equal(t, uint64(10), data.Height)
	assert.NotZero(t, data.ID)

	// A failed call publishes nothing
	_, err := env.ls.IncrementReputation(alice, alice, 5)
	require.ErrorIs(t, err, ledger.ErrUnauthorized)
	select {
	case evt := <-repCh:
		t.Fatalf("unexpected event: %v", evt)
	default:
	}
}

func TestEventsPersisted(t *testing.T) {
	env := newTestEnv(t)
	env.stake(t, alice, 1_000_000)
	env.stake(t, bob, 2_000_000)
	_, err := env.ls.IncrementReputation(testOwner, alice, 7)
	require.NoError(t, err)

	events, err := env.ls.GetEvents("", 0, 0)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, ledger.StakeAddedEventType, events[0].Type)
	assert.Equal(t, ledger.StakeAddedEventType, events[1].Type)
	assert.Equal(t, ledger.ReputationUpdatedEventType, events[2].Type)
	assert.Equal(t, testOwner, events[2].Actor)
	assert.Equal(t, uint64(7), events[2].After)

	aliceEvents, err := env.ls.GetEvents(alice, 0, 0)
	require.NoError(t, err)
	require.Len(t, aliceEvents, 2)

	page, err := env.ls.GetEvents("", events[0].ID, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, events[1].ID, page[0].ID)
}

func TestOperationMetrics(t *testing.T) {
	env := newTestEnv(t)
	env.stake(t, alice, 1_000_000)
	require.Error(t, env.ls.Stake(bob, 1))
	expected := `
# HELP trustledger_ledger_total_staked sum of staked amounts across all accounts
# TYPE trustledger_ledger_total_staked gauge
trustledger_ledger_total_staked 1e+06
`
	require.NoError(t, promtestutil.GatherAndCompare(
		env.registry,
		strings.NewReader(expected),
		"trustledger_ledger_total_staked",
	))
	count, err := promtestutil.GatherAndCount(
		env.registry,
		"trustledger_ledger_operations_total",
	)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestCustodyInvariant(t *testing.T) {
	env := newTestEnv(t)
	env.stake(t, alice, 1_000_000)
	env.stake(t, bob, 3_000_000)
	_, err := env.ls.PartialUnstake(bob, 1_000_000)
	require.NoError(t, err)
	require.NoError(t, env.ls.CheckCustodyInvariant())

	total, err := env.ls.TotalStaked()
	require.NoError(t, err)
	assert.Equal(t, uint64(3_000_000), total)
	balance, err := env.ls.CustodyBalance()
	require.NoError(t, err)
	assert.Equal(t, total, balance)

	// Funds sent to custody outside of staking break the invariant
	env.fund(t, ledger.Principal(custody.DefaultAccount), 5)
	err = env.ls.CheckCustodyInvariant()
	var invErr ledger.InvariantError
	require.True(t, errors.As(err, &invErr))
	assert.Equal(t, uint64(3_000_000), invErr.TotalStaked)
	assert.Equal(t, uint64(3_000_005), invErr.CustodyBalance)
}

func TestErrorCode(t *testing.T) {
	testDefs := []struct {
		err  error
		code uint
	}{
		{ledger.ErrUnauthorized, 100},
		{ledger.ErrInsufficientStake, 101},
		{ledger.ErrInvalidAmount, 102},
		{ledger.ErrUserNotFound, 103},
		{ledger.ErrBadgeNotFound, 104},
		{ledger.ErrBadgeExists, 105},
		{ledger.ErrInsufficientReputation, 106},
		{ledger.ErrTransferFailed, 107},
		{ledger.ErrInvalidPrincipal, 108},
		{errors.New("other"), 0},
	}
	for _, testDef := range testDefs {
		wrapped := errors.Join(errors.New("context"), testDef.err)
		assert.Equal(t, testDef.code, ledger.ErrorCode(wrapped), testDef.err.Error())
	}
}
