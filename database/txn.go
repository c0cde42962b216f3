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

package database

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/blinklabs-io/trustledger/database/types"
)

// Txn pairs a metadata transaction with a blob transaction. Relational ledger
// rows and the NFT and custody records written by one call are committed or
// discarded together
type Txn struct {
	db        *Database
	blob      types.Txn
	metadata  types.Txn
	mu        sync.Mutex
	done      bool
	readWrite bool
}

func NewTxn(db *Database, readWrite bool) *Txn {
	return &Txn{
		db:        db,
		blob:      db.Blob().NewTransaction(readWrite),
		metadata:  db.Metadata().Transaction(),
		readWrite: readWrite,
	}
}

func (t *Txn) DB() *Database {
	return t.db
}

// Metadata returns the metadata side of the transaction
func (t *Txn) Metadata() types.Txn {
	return t.metadata
}

// Blob returns the blob side of the transaction
func (t *Txn) Blob() types.Txn {
	return t.blob
}

// Do runs fn inside the transaction and commits when it returns nil.
// Otherwise both sides are rolled back and fn's error is returned
func (t *Txn) Do(fn func(*Txn) error) error {
	if err := fn(t); err != nil {
		if rollbackErr := t.Rollback(); rollbackErr != nil {
			return fmt.Errorf("%w (rollback: %w)", err, rollbackErr)
		}
		return err
	}
	if err := t.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Commit stamps both stores with the same commit time and commits the blob
// side first. If the metadata side then fails, the stores disagree on their
// commit time and the next open reports a CommitTimestampError
func (t *Txn) Commit() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return nil
	}
	if !t.readWrite {
		return t.discard()
	}
	if err := t.db.updateCommitTimestamp(t, time.Now().UnixMilli()); err != nil {
		return errors.Join(
			fmt.Errorf("update commit timestamp: %w", err),
			t.discard(),
		)
	}
	t.done = true
	if err := t.blob.Commit(); err != nil {
		_ = t.metadata.Rollback()
		return fmt.Errorf("blob store: %w", err)
	}
	if err := t.metadata.Commit(); err != nil {
		t.db.logger.Error(
			"metadata commit failed after blob commit",
			"component", "database",
			"error", err,
		)
		_ = t.metadata.Rollback()
		return fmt.Errorf("metadata store: %w", err)
	}
	return nil
}

// Rollback discards both sides. It does nothing once the transaction is finished
func (t *Txn) Rollback() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.discard()
}

func (t *Txn) discard() error {
	if t.done {
		return nil
	}
	t.done = true
	var errs []error
	if err := t.blob.Rollback(); err != nil {
		errs = append(errs, fmt.Errorf("blob store: %w", err))
	}
	if err := t.metadata.Rollback(); err != nil {
		errs = append(errs, fmt.Errorf("metadata store: %w", err))
	}
	return errors.Join(errs...)
}

// Release rolls back an unfinished transaction and only logs a failure, for
// use in defer statements
func (t *Txn) Release() {
	if err := t.Rollback(); err != nil {
		t.db.logger.Debug(
			"transaction release failed",
			"component", "database",
			"error", err,
			"read_write", t.readWrite,
		)
	}
}
