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

package gormstore

import (
	"errors"
	"fmt"

	"github.com/blinklabs-io/trustledger/database/models"
	"github.com/blinklabs-io/trustledger/database/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetBadge returns the metadata for a badge ID, or nil if it was never minted
func (s *Store) GetBadge(
	badgeId uint64,
	txn types.Txn,
) (*models.Badge, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	ret := &models.Badge{}
	result := db.Where("id = ?", badgeId).First(ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return ret, nil
}

// SetBadge inserts or replaces the metadata of a badge
func (s *Store) SetBadge(badge *models.Badge, txn types.Txn) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(badge)
	if result.Error != nil {
		return fmt.Errorf("set badge: %w", result.Error)
	}
	return nil
}

// GetBadgeOwnerships returns the ownership index rows for an owner in mint order
func (s *Store) GetBadgeOwnerships(
	owner string,
	txn types.Txn,
) ([]models.BadgeOwnership, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret []models.BadgeOwnership
	result := db.Where("owner = ?", owner).Order("badge_id").Find(&ret)
	if result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

// GetAllBadgeOwnerships returns every ownership index row ordered by badge ID
func (s *Store) GetAllBadgeOwnerships(
	txn types.Txn,
) ([]models.BadgeOwnership, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret []models.BadgeOwnership
	if result := db.Order("badge_id").Find(&ret); result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

// SetBadgeOwnership points the ownership index for a badge at a new owner
func (s *Store) SetBadgeOwnership(
	badgeId uint64,
	owner string,
	txn types.Txn,
) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	if result := db.Where("badge_id = ?", badgeId).Delete(&models.BadgeOwnership{}); result.Error != nil {
		return fmt.Errorf("clear badge ownership: %w", result.Error)
	}
	tmpOwnership := &models.BadgeOwnership{
		Owner:   owner,
		BadgeID: badgeId,
	}
	if result := db.Create(tmpOwnership); result.Error != nil {
		return fmt.Errorf("set badge ownership: %w", result.Error)
	}
	return nil
}

// DeleteBadgeOwnership removes a badge from the ownership index
func (s *Store) DeleteBadgeOwnership(badgeId uint64, txn types.Txn) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	result := db.Where("badge_id = ?", badgeId).Delete(&models.BadgeOwnership{})
	if result.Error != nil {
		return fmt.Errorf("delete badge ownership: %w", result.Error)
	}
	return nil
}

// DeleteBadgeOwnerships empties the ownership index
func (s *Store) DeleteBadgeOwnerships(txn types.Txn) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	result := db.Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&models.BadgeOwnership{})
	if result.Error != nil {
		return fmt.Errorf("delete badge ownerships: %w", result.Error)
	}
	return nil
}
