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
	"github.com/blinklabs-io/trustledger/database/types"
)

func metadataTxn(txn *Txn) types.Txn {
	if txn == nil {
		return nil
	}
	return txn.Metadata()
}

// GetAccount returns the account for a principal, or nil if it has never staked
func (d *Database) GetAccount(
	principal string,
	txn *Txn,
) (*models.Account, error) {
	return d.metadata.GetAccount(principal, metadataTxn(txn))
}

func (d *Database) GetAccounts(txn *Txn) ([]models.Account, error) {
	return d.metadata.GetAccounts(metadataTxn(txn))
}

func (d *Database) SetAccount(account *models.Account, txn *Txn) error {
	return d.metadata.SetAccount(account, metadataTxn(txn))
}

// IsAuthorizedCaller reports whether a principal may adjust reputation
func (d *Database) IsAuthorizedCaller(
	principal string,
	txn *Txn,
) (bool, error) {
	caller, err := d.metadata.GetAuthorizedCaller(principal, metadataTxn(txn))
	if err != nil {
		return false, err
	}
	if caller == nil {
		return false, nil
	}
	return caller.Authorized, nil
}

// GetAuthorizedCallers returns the principals currently allowed to adjust reputation
func (d *Database) GetAuthorizedCallers(txn *Txn) ([]string, error) {
	callers, err := d.metadata.GetAuthorizedCallers(metadataTxn(txn))
	if err != nil {
		return nil, err
	}
	ret := make([]string, 0, len(callers))
	for _, caller := range callers {
		ret = append(ret, caller.Principal)
	}
	return ret, nil
}

func (d *Database) SetAuthorizedCaller(
	principal string,
	authorized bool,
	height uint64,
	txn *Txn,
) error {
	return d.metadata.SetAuthorizedCaller(
		principal,
		authorized,
		height,
		metadataTxn(txn),
	)
}
