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

	"github.com/blinklabs-io/gouroboros/cbor"
	"github.com/blinklabs-io/trustledger/database/types"
)

var (
	ErrNftExists   = errors.New("nft already exists")
	ErrNftNotFound = errors.New("nft not found")
	ErrNftNotOwner = errors.New("nft not held by sender")
)

// NftRecord is the authoritative owner record of a badge NFT, stored in the
// blob store under types.NftBlobKey
type NftRecord struct {
	cbor.StructAsArray
	Owner         string
	MintedHeight  uint64
	UpdatedHeight uint64
}

// Nft pairs a badge ID with its owner record
type Nft struct {
	ID uint64
	NftRecord
}

func (d *Database) getNft(id uint64, txn *Txn) (*NftRecord, error) {
	val, err := d.Blob().Get(txn.Blob(), types.NftBlobKey(id))
	if err != nil {
		if errors.Is(err, types.ErrBlobKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}
	ret := &NftRecord{}
	if _, err := cbor.Decode(val, ret); err != nil {
		return nil, fmt.Errorf("decode nft %d: %w", id, err)
	}
	return ret, nil
}

func (d *Database) setNft(id uint64, record *NftRecord, txn *Txn) error {
	val, err := cbor.Encode(record)
	if err != nil {
		return fmt.Errorf("encode nft %d: %w", id, err)
	}
	return d.Blob().Set(txn.Blob(), types.NftBlobKey(id), val)
}

// GetNft returns the owner record for a badge ID, or nil if no live NFT exists
func (d *Database) GetNft(id uint64, txn *Txn) (*NftRecord, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	return d.getNft(id, txn)
}

// MintNft creates the NFT for a badge ID held by owner
func (d *Database) MintNft(
	id uint64,
	owner string,
	height uint64,
	txn *Txn,
) error {
	if txn == nil {
		return types.ErrNilTxn
	}
	existing, err := d.getNft(id, txn)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("%w: %d", ErrNftExists, id)
	}
	return d.setNft(
		id,
		&NftRecord{
			Owner:         owner,
			MintedHeight:  height,
			UpdatedHeight: height,
		},
		txn,
	)
}

// TransferNft moves a badge NFT from sender to recipient. The sender must be
// the current holder
func (d *Database) TransferNft(
	id uint64,
	sender string,
	recipient string,
	height uint64,
	txn *Txn,
) error {
	if txn == nil {
		return types.ErrNilTxn
	}
	record, err := d.getNft(id, txn)
	if err != nil {
		return err
	}
	if record == nil {
		return fmt.Errorf("%w: %d", ErrNftNotFound, id)
	}
	if record.Owner != sender {
		return fmt.Errorf("%w: %d", ErrNftNotOwner, id)
	}
	record.Owner = recipient
	record.UpdatedHeight = height
	return d.setNft(id, record, txn)
}

// BurnNft destroys a badge NFT. The owner must be the current holder
func (d *Database) BurnNft(id uint64, owner string, txn *Txn) error {
	if txn == nil {
		return types.ErrNilTxn
	}
	record, err := d.getNft(id, txn)
	if err != nil {
		return err
	}
	if record == nil {
		return fmt.Errorf("%w: %d", ErrNftNotFound, id)
	}
	if record.Owner != owner {
		return fmt.Errorf("%w: %d", ErrNftNotOwner, id)
	}
	return d.Blob().Delete(txn.Blob(), types.NftBlobKey(id))
}

// GetNfts returns every live NFT in badge ID order
func (d *Database) GetNfts(txn *Txn) ([]Nft, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	prefix := []byte(types.NftBlobKeyPrefix)
	iter := d.Blob().NewIterator(
		txn.Blob(),
		types.BlobIteratorOptions{Prefix: prefix},
	)
	defer iter.Close()
	var ret []Nft
	for iter.Rewind(); iter.ValidForPrefix(prefix); iter.Next() {
		item := iter.Item()
		id, err := types.NftBlobKeyToId(item.Key())
		if err != nil {
			// Not an NFT record key
			continue
		}
		val, err := item.ValueCopy(nil)
		if err != nil {
			return nil, err
		}
		tmpNft := Nft{ID: id}
		if _, err := cbor.Decode(val, &tmpNft.NftRecord); err != nil {
			return nil, fmt.Errorf("decode nft %d: %w", id, err)
		}
		ret = append(ret, tmpNft)
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return ret, nil
}
