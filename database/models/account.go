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

package models

import "github.com/blinklabs-io/trustledger/database/types"

// Account holds the stake and reputation of a principal. A row is created on
// the first stake and is never deleted afterwards, only zeroed
type Account struct {
	Principal       string `gorm:"uniqueIndex;size:128"`
	ID              uint   `gorm:"primarykey"`
	ReputationScore types.Uint64
	StakedAmount    types.Uint64
	LastDecayHeight uint64 `gorm:"index"`
	AddedHeight     uint64
}

func (Account) TableName() string {
	return "account"
}

type AuthorizedCaller struct {
	Principal     string `gorm:"uniqueIndex;size:128"`
	ID            uint   `gorm:"primarykey"`
	UpdatedHeight uint64
	Authorized    bool
}

func (AuthorizedCaller) TableName() string {
	return "authorized_caller"
}
