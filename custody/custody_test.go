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

package custody_test

import (
	"errors"
	"math"
	"testing"

	"github.com/blinklabs-io/trustledger/custody"
	"github.com/blinklabs-io/trustledger/database"
	"github.com/blinklabs-io/trustledger/internal/test/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCustody(t *testing.T) (*database.Database, *custody.Custody) {
	t.Helper()
	db := testutil.NewDatabase(t)
	return db, custody.New(db, nil)
}

func credit(t *testing.T, db *database.Database, c *custody.Custody, principal string, amount uint64) {
	t.Helper()
	txn := db.Transaction(true)
	require.NoError(t, txn.Do(func(txn *database.Txn) error {
		return c.Credit(txn, principal, amount)
	}))
}

func TestTransfer(t *testing.T) {
	db, c := newTestCustody(t)
	credit(t, db, c, "alice", 100)

	txn := db.Transaction(true)
	require.NoError(t, txn.Do(func(txn *database.Txn) error {
		return c.Transfer(txn, "alice", custody.DefaultAccount, 60)
	}))
	balance, err := c.Balance(nil, "alice")
	require.NoError(t, err)
	assert.Equal(t, uint64(40), balance)
	balance, err = c.Balance(nil, custody.DefaultAccount)
	require.NoError(t, err)
	assert.Equal(t, uint64(60), balance)
}

func TestTransferInsufficientFunds(t *testing.T) {
	db, c := newTestCustody(t)
	credit(t, db, c, "alice", 10)
	txn := db.Transaction(true)
	err := txn.Do(func(txn *database.Txn) error {
		return c.Transfer(txn, "alice", "bob", 11)
	})
	require.ErrorIs(t, err, custody.ErrInsufficientFunds)
	balance, err := c.Balance(nil, "alice")
	require.NoError(t, err)
	assert.Equal(t, uint64(10), balance)
}

func TestTransferInvalid(t *testing.T) {
	db, c := newTestCustody(t)
	txn := db.Transaction(true)
	defer txn.Release()
	require.ErrorIs(t, c.Transfer(txn, "alice", "bob", 0), custody.ErrInvalidTransfer)
	require.ErrorIs(t, c.Transfer(txn, "alice", "alice", 1), custody.ErrInvalidTransfer)
}

func TestTransferRolledBackWithTxn(t *testing.T) {
	db, c := newTestCustody(t)
	credit(t, db, c, "alice", 100)
	errAbort := errors.New("abort")
	txn := db.Transaction(true)
	err := txn.Do(func(txn *database.Txn) error {
		if err := c.Transfer(txn, "alice", "bob", 100); err != nil {
			return err
		}
		return errAbort
	})
	require.ErrorIs(t, err, errAbort)
	balance, err := c.Balance(nil, "alice")
	require.NoError(t, err)
	assert.Equal(t, uint64(100), balance)
	balance, err = c.Balance(nil, "bob")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), balance)
}

func TestCreditOverflow(t *testing.T) {
	db, c := newTestCustody(t)
	credit(t, db, c, "alice", math.MaxUint64)
	txn := db.Transaction(true)
	err := txn.Do(func(txn *database.Txn) error {
		return c.Credit(txn, "alice", 1)
	})
	require.ErrorIs(t, err, custody.ErrBalanceOverflow)
}
