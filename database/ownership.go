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
	"fmt"

	"github.com/blinklabs-io/trustledger/database/types"
)

// OwnershipMismatch describes a badge whose ownership index row disagrees
// with its NFT owner record. An empty owner means the side has no entry
type OwnershipMismatch struct {
	IndexOwner string
	NftOwner   string
	BadgeID    uint64
}

func (m OwnershipMismatch) String() string {
	return fmt.Sprintf(
		"badge %d: index owner %q, nft owner %q",
		m.BadgeID,
		m.IndexOwner,
		m.NftOwner,
	)
}

// VerifyBadgeOwnerships compares the ownership index with the NFT records
func (d *Database) VerifyBadgeOwnerships(
	txn *Txn,
) ([]OwnershipMismatch, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	nfts, err := d.GetNfts(txn)
	if err != nil {
		return nil, err
	}
	ownerships, err := d.metadata.GetAllBadgeOwnerships(txn.Metadata())
	if err != nil {
		return nil, err
	}
	indexOwners := make(map[uint64]string, len(ownerships))
	for _, ownership := range ownerships {
		indexOwners[ownership.BadgeID] = ownership.Owner
	}
	var ret []OwnershipMismatch
	for _, nft := range nfts {
		indexOwner, ok := indexOwners[nft.ID]
		delete(indexOwners, nft.ID)
		if ok && indexOwner == nft.Owner {
			continue
		}
		ret = append(
			ret,
			OwnershipMismatch{
				BadgeID:    nft.ID,
				IndexOwner: indexOwner,
				NftOwner:   nft.Owner,
			},
		)
	}
	// Index rows left over have no live NFT behind them
	for _, ownership := range ownerships {
		if owner, ok := indexOwners[ownership.BadgeID]; ok {
			delete(indexOwners, ownership.BadgeID)
			ret = append(
				ret,
				OwnershipMismatch{
					BadgeID:    ownership.BadgeID,
					IndexOwner: owner,
				},
			)
		}
	}
	return ret, nil
}

// RebuildBadgeOwnerships replaces the ownership index with the current NFT
// owner records and returns the number of rows written
func (d *Database) RebuildBadgeOwnerships(txn *Txn) (int, error) {
	if txn == nil {
		return 0, types.ErrNilTxn
	}
	nfts, err := d.GetNfts(txn)
	if err != nil {
		return 0, err
	}
	if err := d.metadata.DeleteBadgeOwnerships(txn.Metadata()); err != nil {
		return 0, err
	}
	for _, nft := range nfts {
		if err := d.metadata.SetBadgeOwnership(nft.ID, nft.Owner, txn.Metadata()); err != nil {
			return 0, err
		}
	}
	return len(nfts), nil
}
