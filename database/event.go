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
	"github.com/blinklabs-io/trustledger/database/models"
)

func (d *Database) AddEvent(event *models.LedgerEvent, txn *Txn) error {
	return d.metadata.AddEvent(event, metadataTxn(txn))
}

// GetEvents returns up to limit persisted events after the given event ID. An
// empty principal returns events for every principal
func (d *Database) GetEvents(
	principal string,
	afterId uint,
	limit int,
	txn *Txn,
) ([]models.LedgerEvent, error) {
	return d.metadata.GetEvents(principal, afterId, limit, metadataTxn(txn))
}
