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

// GetAccount returns the account for a principal, or nil if it has never staked
func (s *Store) GetAccount(
	principal string,
	txn types.Txn,
) (*models.Account, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	ret := &models.Account{}
	result := db.Where("principal = ?", principal).First(ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return ret, nil
}

// GetAccounts returns all accounts ordered by creation
func (s *Store) GetAccounts(txn types.Txn) ([]models.Account, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret []models.Account
	if result := db.Order("id").Find(&ret); result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

// SetAccount creates the account for its principal or replaces the mutable fields
func (s *Store) SetAccount(
	account *models.Account,
	txn types.Txn,
) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	mutableColumns := []string{
		"reputation_score",
		"staked_amount",
		"last_decay_height",
	}
	// Records loaded from the store are updated by primary key
	if account.ID != 0 {
		result := db.Model(account).Select(mutableColumns).Updates(account)
		if result.Error != nil {
			return fmt.Errorf("set account: %w", result.Error)
		}
		return nil
	}
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "principal"}},
		DoUpdates: clause.AssignmentColumns(mutableColumns),
	}).Create(account)
	if result.Error != nil {
		return fmt.Errorf("set account: %w", result.Error)
	}
	return nil
}

// GetAuthorizedCaller returns the authorization row for a principal, or nil
// if it was never touched
func (s *Store) GetAuthorizedCaller(
	principal string,
	txn types.Txn,
) (*models.AuthorizedCaller, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	ret := &models.AuthorizedCaller{}
	result := db.Where("principal = ?", principal).First(ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return ret, nil
}

// GetAuthorizedCallers returns the principals currently allowed to adjust reputation
func (s *Store) GetAuthorizedCallers(
	txn types.Txn,
) ([]models.AuthorizedCaller, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret []models.AuthorizedCaller
	result := db.Where("authorized = ?", true).Order("principal").Find(&ret)
	if result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

func (s *Store) SetAuthorizedCaller(
	principal string,
	authorized bool,
	height uint64,
	txn types.Txn,
) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	tmpCaller := &models.AuthorizedCaller{
		Principal:     principal,
		Authorized:    authorized,
		UpdatedHeight: height,
	}
	result := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "principal"}},
		DoUpdates: clause.AssignmentColumns(
			[]string{"authorized", "updated_height"},
		),
	}).Create(tmpCaller)
	if result.Error != nil {
		return fmt.Errorf("set authorized caller: %w", result.Error)
	}
	return nil
}
