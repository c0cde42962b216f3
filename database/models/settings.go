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

const (
	SettingsRowId = 1

	DefaultDecayRate   = 5
	DefaultMinStake    = 1_000_000
	DefaultNextBadgeId = 1
)

// Settings is the singleton ledger configuration row
type Settings struct {
	Owner       string `gorm:"size:128"`
	ID          uint   `gorm:"primarykey"`
	MinStake    types.Uint64
	NextBadgeID uint64
	DecayRate   uint8
	Paused      bool
}

func (Settings) TableName() string {
	return "settings"
}

// NewDefaultSettings returns the settings a freshly deployed ledger starts with
func NewDefaultSettings(owner string) *Settings {
	return &Settings{
		ID:          SettingsRowId,
		Owner:       owner,
		DecayRate:   DefaultDecayRate,
		MinStake:    DefaultMinStake,
		NextBadgeID: DefaultNextBadgeId,
	}
}
