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

	"github.com/blinklabs-io/trustledger/database/models"
)

// GetBadge returns the metadata for a badge ID, or nil if it was never minted
func (d *Database) GetBadge(badgeId uint64, txn *Txn) (*models.Badge, error) {
	return d.metadata.GetBadge(badgeId, metadataTxn(txn))
}

func (d *Database) SetBadge(badge *models.Badge, txn *Txn) error {
	return d.metadata.SetBadge(badge, metadataTxn(txn))
}

// GetBadgesByOwner returns the live badges an owner holds according to the
// ownership index, in mint order
func (d *Database) GetBadgesByOwner(
	owner string,
	txn *Txn,
) ([]models.Badge, error) {
	ownerships, err := d.metadata.GetBadgeOwnerships(owner, metadataTxn(txn))
	if err != nil {
		return nil, err
	}
	ret := make([]models.Badge, 0, len(ownerships))
	for _, ownership := range ownerships {
		badge, err := d.metadata.GetBadge(ownership.BadgeID, metadataTxn(txn))
		if err != nil {
			return nil, err
		}
		if badge == nil {
			return nil, fmt.Errorf(
				"ownership index references unknown badge %d",
				ownership.BadgeID,
			)
		}
		ret = append(ret, *badge)
	}
	return ret, nil
}

func (d *Database) SetBadgeOwnership(
	badgeId uint64,
	owner string,
	txn *Txn,
) error {
	return d.metadata.SetBadgeOwnership(badgeId, owner, metadataTxn(txn))
}

func (d *Database) DeleteBadgeOwnership(badgeId uint64, txn *Txn) error {
	return d.metadata.DeleteBadgeOwnership(badgeId, metadataTxn(txn))
}
