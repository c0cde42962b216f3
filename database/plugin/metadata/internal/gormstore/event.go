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
	"fmt"

	"github.com/blinklabs-io/trustledger/database/models"
	"github.com/blinklabs-io/trustledger/database/types"
)

func (s *Store) AddEvent(event *models.LedgerEvent, txn types.Txn) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	if result := db.Create(event); result.Error != nil {
		return fmt.Errorf("add event: %w", result.Error)
	}
	return nil
}

// GetEvents returns up to limit events with an ID greater than afterId, oldest
// first. An empty principal matches every event and a limit of 0 returns everything
func (s *Store) GetEvents(
	principal string,
	afterId uint,
	limit int,
	txn types.Txn,
) ([]models.LedgerEvent, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	query := db.Where("id > ?", afterId).Order("id")
	if principal != "" {
		query = query.Where("principal = ?", principal)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	var ret []models.LedgerEvent
	if result := query.Find(&ret); result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}
