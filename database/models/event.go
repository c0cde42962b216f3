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

// LedgerEvent is the persisted copy of an event emitted by a committed ledger call
type LedgerEvent struct {
	Type      string `gorm:"index;size:64"`
	Principal string `gorm:"index;size:128"`
	Data      []byte
	ID        uint   `gorm:"primarykey"`
	Height    uint64 `gorm:"index"`
}

func (LedgerEvent) TableName() string {
	return "ledger_event"
}
