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

package badger

import (
	"errors"

	"github.com/blinklabs-io/trustledger/database/types"
	badger "github.com/dgraph-io/badger/v4"
)

var (
	errForeignTxn  = errors.New("transaction belongs to another blob store")
	errFinishedTxn = errors.New("blob transaction already finished")
)

type badgerTxn struct {
	store    *BlobStoreBadger
	tx       *badger.Txn
	finished bool
}

// NewTransaction starts a badger transaction
func (d *BlobStoreBadger) NewTransaction(update bool) types.Txn {
	return &badgerTxn{store: d, tx: d.db.NewTransaction(update)}
}

func (t *badgerTxn) Commit() error {
	if t.finished {
		return nil
	}
	if err := t.tx.Commit(); err != nil {
		t.store.countTxn("failed")
		return err
	}
	t.finished = true
	t.store.countTxn("committed")
	return nil
}

func (t *badgerTxn) Rollback() error {
	if t.finished {
		return nil
	}
	t.tx.Discard()
	t.finished = true
	t.store.countTxn("discarded")
	return nil
}

// activeTxn returns the badger transaction behind txn if it was started by
// this store and is still open
func (d *BlobStoreBadger) activeTxn(txn types.Txn) (*badger.Txn, error) {
	if txn == nil {
		return nil, types.ErrNilTxn
	}
	t, ok := txn.(*badgerTxn)
	switch {
	case !ok:
		return nil, types.ErrTxnWrongType
	case t.store != d:
		return nil, errForeignTxn
	case t.finished:
		return nil, errFinishedTxn
	case t.tx == nil:
		return nil, types.ErrBlobStoreUnavailable
	}
	return t.tx, nil
}

// Get returns the value stored under key, or types.ErrBlobKeyNotFound
func (d *BlobStoreBadger) Get(txn types.Txn, key []byte) ([]byte, error) {
	tx, err := d.activeTxn(txn)
	if err != nil {
		return nil, err
	}
	item, err := tx.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, types.ErrBlobKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return item.ValueCopy(nil)
}

func (d *BlobStoreBadger) Set(txn types.Txn, key, val []byte) error {
	tx, err := d.activeTxn(txn)
	if err != nil {
		return err
	}
	return tx.Set(key, val)
}

func (d *BlobStoreBadger) Delete(txn types.Txn, key []byte) error {
	tx, err := d.activeTxn(txn)
	if err != nil {
		return err
	}
	return tx.Delete(key)
}

// NewIterator walks keys in order within txn. A bad transaction yields an
// iterator that is never valid and reports the problem from Err
func (d *BlobStoreBadger) NewIterator(
	txn types.Txn,
	opts types.BlobIteratorOptions,
) types.BlobIterator {
	tx, err := d.activeTxn(txn)
	if err != nil {
		return &blobIterator{err: err}
	}
	iterOpts := badger.DefaultIteratorOptions
	iterOpts.Prefix = opts.Prefix
	iterOpts.Reverse = opts.Reverse
	return &blobIterator{iter: tx.NewIterator(iterOpts)}
}

// blobIterator adapts a badger iterator. iter is nil when err is set
type blobIterator struct {
	iter *badger.Iterator
	err  error
}

func (it *blobIterator) Rewind() {
	if it.iter != nil {
		it.iter.Rewind()
	}
}

func (it *blobIterator) Seek(key []byte) {
	if it.iter != nil {
		it.iter.Seek(key)
	}
}

func (it *blobIterator) Valid() bool {
	return it.iter != nil && it.iter.Valid()
}

func (it *blobIterator) ValidForPrefix(prefix []byte) bool {
	return it.iter != nil && it.iter.ValidForPrefix(prefix)
}

func (it *blobIterator) Next() {
	if it.iter != nil {
		it.iter.Next()
	}
}

func (it *blobIterator) Item() types.BlobItem {
	if it.iter == nil {
		return nil
	}
	return blobItem{item: it.iter.Item()}
}

func (it *blobIterator) Close() {
	if it.iter != nil {
		it.iter.Close()
	}
}

func (it *blobIterator) Err() error {
	return it.err
}

type blobItem struct {
	item *badger.Item
}

func (i blobItem) Key() []byte {
	return i.item.KeyCopy(nil)
}

func (i blobItem) ValueCopy(dst []byte) ([]byte, error) {
	return i.item.ValueCopy(dst)
}
