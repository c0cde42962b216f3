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

const (
	BadgeNameMaxLength        = 64
	BadgeDescriptionMaxLength = 256
)

// Badge is the immutable metadata of a minted badge. The row outlives a burn
// so that the history of an ID stays queryable, but the ID is never reissued
type Badge struct {
	Name         string `gorm:"size:64"`
	Description  string `gorm:"size:256"`
	Creator      string `gorm:"index;size:128"`
	BurnedBy     string `gorm:"size:128"`
	ID           uint64 `gorm:"primaryKey;autoIncrement:false"`
	MintedHeight uint64 `gorm:"index"`
	BurnedHeight uint64
	Burned       bool
}

func (Badge) TableName() string {
	return "badge"
}

// BadgeOwnership is a denormalized index of the NFT owner records kept in
// the blob store
type BadgeOwnership struct {
	Owner   string `gorm:"uniqueIndex:idx_badge_ownership_owner_badge;size:128"`
	ID      uint   `gorm:"primarykey"`
	BadgeID uint64 `gorm:"uniqueIndex:idx_badge_ownership_owner_badge;index"`
}

func (BadgeOwnership) TableName() string {
	return "badge_ownership"
}
