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

package sqlite_test

import (
	"testing"

	"github.com/blinklabs-io/trustledger/database/models"
	"github.com/blinklabs-io/trustledger/database/plugin/metadata/sqlite"
	"github.com/blinklabs-io/trustledger/database/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDb(t *testing.T) *sqlite.MetadataStoreSqlite {
	t.Helper()
	store, err := sqlite.New("", nil, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func TestInMemoryStoresAreIsolated(t *testing.T) {
	storeA := setupTestDb(t)
	storeB := setupTestDb(t)
	require.NoError(t, storeA.SetAccount(
		&models.Account{Principal: "alice", StakedAmount: 10},
		nil,
	))
	account, err := storeB.GetAccount("alice", nil)
	require.NoError(t, err)
	assert.Nil(t, account)
}

func TestAccountUpsert(t *testing.T) {
	store := setupTestDb(t)
	account, err := store.GetAccount("alice", nil)
	require.NoError(t, err)
	assert.Nil(t, account)

	require.NoError(t, store.SetAccount(
		&models.Account{
			Principal:    "alice",
			StakedAmount: 1_000_000,
			AddedHeight:  3,
		},
		nil,
	))
	require.NoError(t, store.SetAccount(
		&models.Account{
			Principal:       "alice",
			StakedAmount:    500,
			ReputationScore: 42,
			LastDecayHeight: 9,
			AddedHeight:     7,
		},
		nil,
	))
	account, err = store.GetAccount("alice", nil)
	require.NoError(t, err)
	require.NotNil(t, account)
	assert.Equal(t, uint64(500), uint64(account.StakedAmount))
	assert.Equal(t, uint64(42), uint64(account.ReputationScore))
	assert.Equal(t, uint64(9), account.LastDecayHeight)
	// The creation height survives updates
	assert.Equal(t, uint64(3), account.AddedHeight)

	accounts, err := store.GetAccounts(nil)
	require.NoError(t, err)
	assert.Len(t, accounts, 1)
}

func TestUint64AboveInt64Range(t *testing.T) {
	store := setupTestDb(t)
	const maxStake = uint64(1<<64 - 1)
	require.NoError(t, store.SetAccount(
		&models.Account{Principal: "whale", StakedAmount: types.Uint64(maxStake)},
		nil,
	))
	account, err := store.GetAccount("whale", nil)
	require.NoError(t, err)
	require.NotNil(t, account)
	assert.Equal(t, maxStake, uint64(account.StakedAmount))
}

func TestAuthorizedCallers(t *testing.T) {
	store := setupTestDb(t)
	require.NoError(t, store.SetAuthorizedCaller("oracle", true, 1, nil))
	require.NoError(t, store.SetAuthorizedCaller("other", true, 1, nil))
	require.NoError(t, store.SetAuthorizedCaller("other", false, 2, nil))

	caller, err := store.GetAuthorizedCaller("other", nil)
	require.NoError(t, err)
	require.NotNil(t, caller)
	assert.False(t, caller.Authorized)
	assert.Equal(t, uint64(2), caller.UpdatedHeight)

	callers, err := store.GetAuthorizedCallers(nil)
	require.NoError(t, err)
	require.Len(t, callers, 1)
	assert.Equal(t, "oracle", callers[0].Principal)
}

func TestBadgeAndOwnership(t *testing.T) {
	store := setupTestDb(t)
	badge := &models.Badge{
		ID:           1,
		Name:         "Early Adopter",
		Description:  "First 100 users",
		Creator:      "admin",
		MintedHeight: 10,
	}
	require.NoError(t, store.SetBadge(badge, nil))
	require.NoError(t, store.SetBadgeOwnership(1, "alice", nil))
	require.NoError(t, store.SetBadge(&models.Badge{ID: 2, Name: "Second"}, nil))
	require.NoError(t, store.SetBadgeOwnership(2, "alice", nil))

	owned, err := store.GetBadgeOwnerships("alice", nil)
	require.NoError(t, err)
	require.Len(t, owned, 2)
	assert.Equal(t, uint64(1), owned[0].BadgeID)

	// Moving a badge replaces its index row
	require.NoError(t, store.SetBadgeOwnership(1, "bob", nil))
	owned, err = store.GetBadgeOwnerships("alice", nil)
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, uint64(2), owned[0].BadgeID)

	badge.Burned = true
	badge.BurnedBy = "bob"
	badge.BurnedHeight = 20
	require.NoError(t, store.SetBadge(badge, nil))
	require.NoError(t, store.DeleteBadgeOwnership(1, nil))
	tmpBadge, err := store.GetBadge(1, nil)
	require.NoError(t, err)
	require.NotNil(t, tmpBadge)
	assert.True(t, tmpBadge.Burned)
	assert.Equal(t, "Early Adopter", tmpBadge.Name)

	all, err := store.GetAllBadgeOwnerships(nil)
	require.NoError(t, err)
	assert.Len(t, all, 1)
	require.NoError(t, store.DeleteBadgeOwnerships(nil))
	all, err = store.GetAllBadgeOwnerships(nil)
	require.NoError(t, err)
	assert.Empty(t, all)

	missing, err := store.GetBadge(99, nil)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSettings(t *testing.T) {
	store := setupTestDb(t)
	settings, err := store.GetSettings(nil)
	require.NoError(t, err)
	assert.Nil(t, settings)

	require.NoError(t, store.SetSettings(models.NewDefaultSettings("admin"), nil))
	settings, err = store.GetSettings(nil)
	require.NoError(t, err)
	require.NotNil(t, settings)
	assert.Equal(t, uint8(models.DefaultDecayRate), settings.DecayRate)

	settings.Paused = true
	settings.NextBadgeID = 7
	require.NoError(t, store.SetSettings(settings, nil))
	settings, err = store.GetSettings(nil)
	require.NoError(t, err)
	assert.True(t, settings.Paused)
	assert.Equal(t, uint64(7), settings.NextBadgeID)
}

func TestTransactionRollback(t *testing.T) {
	store := setupTestDb(t)
	txn := store.Transaction()
	require.NoError(t, store.SetAccount(
		&models.Account{Principal: "alice", StakedAmount: 10},
		txn,
	))
	require.NoError(t, store.AddEvent(
		&models.LedgerEvent{Type: "stake", Principal: "alice"},
		txn,
	))
	require.NoError(t, txn.Rollback())
	// Using a finished transaction fails
	require.Error(t, store.SetAccount(&models.Account{Principal: "x"}, txn))

	account, err := store.GetAccount("alice", nil)
	require.NoError(t, err)
	assert.Nil(t, account)
	events, err := store.GetEvents("", 0, 0, nil)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestEventsPaging(t *testing.T) {
	store := setupTestDb(t)
	txn := store.Transaction()
	for i := range 5 {
		require.NoError(t, store.AddEvent(
			&models.LedgerEvent{Type: "stake", Height: uint64(i)},
			txn,
		))
	}
	require.NoError(t, txn.Commit())
	events, err := store.GetEvents("", 0, 2, nil)
	require.NoError(t, err)
	require.Len(t, events, 2)
	events, err = store.GetEvents("", events[1].ID, 0, nil)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, uint64(2), events[0].Height)

	require.NoError(t, store.AddEvent(
		&models.LedgerEvent{Type: "stake", Principal: "alice"},
		nil,
	))
	events, err = store.GetEvents("alice", 0, 0, nil)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "alice", events[0].Principal)
}

func TestCommitTimestamp(t *testing.T) {
	store := setupTestDb(t)
	ts, err := store.GetCommitTimestamp()
	require.NoError(t, err)
	assert.Equal(t, int64(0), ts)
	txn := store.Transaction()
	require.NoError(t, store.SetCommitTimestamp(12345, txn))
	require.NoError(t, txn.Commit())
	ts, err = store.GetCommitTimestamp()
	require.NoError(t, err)
	assert.Equal(t, int64(12345), ts)
}

func TestOnDiskStore(t *testing.T) {
	dir := t.TempDir()
	store, err := sqlite.New(dir, nil, nil)
	require.NoError(t, err)
	require.NoError(t, store.SetSettings(models.NewDefaultSettings("admin"), nil))
	require.NoError(t, store.Close())

	store, err = sqlite.New(dir, nil, nil)
	require.NoError(t, err)
	defer store.Close()
	settings, err := store.GetSettings(nil)
	require.NoError(t, err)
	require.NotNil(t, settings)
	assert.Equal(t, "admin", settings.Owner)
}
