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

// GetSettings returns the settings row, or nil if the ledger was never initialized
func (s *Store) GetSettings(txn types.Txn) (*models.Settings, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	ret := &models.Settings{}
	result := db.Where("id = ?", models.SettingsRowId).First(ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return ret, nil
}

func (s *Store) SetSettings(settings *models.Settings, txn types.Txn) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	settings.ID = models.SettingsRowId
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(settings)
	if result.Error != nil {
		return fmt.Errorf("set settings: %w", result.Error)
	}
	return nil
}
