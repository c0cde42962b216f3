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

// Package custody keeps currency balances for principals and moves them on
// behalf of the ledger. Balances live in the blob store, so a transfer made
// inside a ledger transaction is discarded together with it
package custody

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/blinklabs-io/gouroboros/cbor"
	"github.com/blinklabs-io/trustledger/database"
	"github.com/blinklabs-io/trustledger/database/types"
)

// DefaultAccount is the principal that holds staked funds
const DefaultAccount = "trust-custody"

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrBalanceOverflow   = errors.New("balance overflow")
	ErrInvalidTransfer   = errors.New("invalid transfer")
)

type Custody struct {
	db     *database.Database
	logger *slog.Logger
}

func New(db *database.Database, logger *slog.Logger) *Custody {
	if logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Custody{
		db:     db,
		logger: logger,
	}
}

func (c *Custody) getBalance(txn *database.Txn, principal string) (uint64, error) {
	val, err := c.db.Blob().Get(txn.Blob(), types.BalanceBlobKey(principal))
	if err != nil {
		if errors.Is(err, types.ErrBlobKeyNotFound) {
			return 0, nil
		}
		return 0, err
	}
	var ret uint64
	if _, err := cbor.Decode(val, &ret); err != nil {
		return 0, fmt.Errorf("decode balance for %s: %w", principal, err)
	}
	return ret, nil
}

func (c *Custody) setBalance(
	txn *database.Txn,
	principal string,
	amount uint64,
) error {
	key := types.BalanceBlobKey(principal)
	if amount == 0 {
		return c.db.Blob().Delete(txn.Blob(), key)
	}
	val, err := cbor.Encode(amount)
	if err != nil {
		return fmt.Errorf("encode balance for %s: %w", principal, err)
	}
	return c.db.Blob().Set(txn.Blob(), key, val)
}

// Balance returns the balance held by a principal
func (c *Custody) Balance(txn *database.Txn, principal string) (uint64, error) {
	if txn == nil {
		txn = c.db.Transaction(false)
		defer txn.Release()
	}
	return c.getBalance(txn, principal)
}

// Transfer moves amount from one principal to another within txn
func (c *Custody) Transfer(
	txn *database.Txn,
	from string,
	to string,
	amount uint64,
) error {
	if txn == nil {
		return types.ErrNilTxn
	}
	if amount == 0 || from == to {
		return fmt.Errorf(
			"%w: %d from %s to %s",
			ErrInvalidTransfer,
			amount,
			from,
			to,
		)
	}
	fromBalance, err := c.getBalance(txn, from)
	if err != nil {
		return err
	}
	if fromBalance < amount {
		return fmt.Errorf(
			"%w: %s holds %d, needs %d",
			ErrInsufficientFunds,
			from,
			fromBalance,
			amount,
		)
	}
	toBalance, err := c.getBalance(txn, to)
	if err != nil {
		return err
	}
	if toBalance > math.MaxUint64-amount {
		return fmt.Errorf("%w: %s", ErrBalanceOverflow, to)
	}
	if err := c.setBalance(txn, from, fromBalance-amount); err != nil {
		return err
	}
	if err := c.setBalance(txn, to, toBalance+amount); err != nil {
		return err
	}
	c.logger.Debug(
		"transferred funds",
		"component", "custody",
		"from", from,
		"to", to,
		"amount", amount,
	)
	return nil
}

// Credit adds newly issued funds to a principal. It backs the dev-mode fund
// command and test setup
func (c *Custody) Credit(
	txn *database.Txn,
	principal string,
	amount uint64,
) error {
	if txn == nil {
		return types.ErrNilTxn
	}
	balance, err := c.getBalance(txn, principal)
	if err != nil {
		return err
	}
	if balance > math.MaxUint64-amount {
		return fmt.Errorf("%w: %s", ErrBalanceOverflow, principal)
	}
	return c.setBalance(txn, principal, balance+amount)
}
