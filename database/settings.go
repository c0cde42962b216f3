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

// GetSettings returns the settings row, or nil if the ledger was never initialized
func (d *Database) GetSettings(txn *Txn) (*models.Settings, error) {
	return d.metadata.GetSettings(metadataTxn(txn))
}

func (d *Database) SetSettings(settings *models.Settings, txn *Txn) error {
	return d.metadata.SetSettings(settings, metadataTxn(txn))
}
