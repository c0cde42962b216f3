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

package ledger

import (
	"encoding/json"
	"fmt"

	"github.com/blinklabs-io/trustledger/database/models"
	"github.com/blinklabs-io/trustledger/event"
)

const (
	StakeAddedEventType            event.EventType = "ledger.stake-added"
	StakeWithdrawnEventType        event.EventType = "ledger.stake-withdrawn"
	PartialStakeWithdrawnEventType event.EventType = "ledger.partial-stake-withdrawn"
	ReputationUpdatedEventType     event.EventType = "ledger.reputation-updated"
	ReputationDecayedEventType     event.EventType = "ledger.reputation-decayed"
	BadgeMintedEventType           event.EventType = "ledger.badge-minted"
	BadgeTransferredEventType      event.EventType = "ledger.badge-transferred"
	BadgeBurnedEventType           event.EventType = "ledger.badge-burned"
	OwnershipTransferredEventType  event.EventType = "ledger.ownership-transferred"
	PauseStatusChangedEventType    event.EventType = "ledger.pause-status-changed"
	AuthorizationChangedEventType  event.EventType = "ledger.authorization-changed"
	DecayRateUpdatedEventType      event.EventType = "ledger.decay-rate-updated"
	MinStakeUpdatedEventType       event.EventType = "ledger.min-stake-updated"
)

// EventTypes lists every event type emitted by the ledger
var EventTypes = []event.EventType{
	StakeAddedEventType,
	StakeWithdrawnEventType,
	PartialStakeWithdrawnEventType,
	ReputationUpdatedEventType,
	ReputationDecayedEventType,
	BadgeMintedEventType,
	BadgeTransferredEventType,
	BadgeBurnedEventType,
	OwnershipTransferredEventType,
	PauseStatusChangedEventType,
	AuthorizationChangedEventType,
	DecayRateUpdatedEventType,
	MinStakeUpdatedEventType,
}

// LedgerEvent is the payload of every event emitted by a committed ledger
// call. Principal is the subject of the change and Actor the caller. Before
// and After carry the old and new value of the quantity the event concerns
// (stake, score, rate or minimum stake), Amount the size of the change and
// Value the new state of a flag
type LedgerEvent struct {
	Type      event.EventType `json:"type"`
	Principal Principal       `json:"principal"`
	Actor     Principal       `json:"actor,omitempty"`
	ID        uint            `json:"id"`
	Height    uint64          `json:"height"`
	Before    uint64          `json:"before"`
	After     uint64          `json:"after"`
	Amount    uint64          `json:"amount,omitempty"`
	BadgeID   uint64          `json:"badge_id,omitempty"`
	Value     bool            `json:"value,omitempty"`
}

func (e LedgerEvent) toModel() (*models.LedgerEvent, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encode %s event: %w", e.Type, err)
	}
	return &models.LedgerEvent{
		Type:      string(e.Type),
		Principal: string(e.Principal),
		Height:    e.Height,
		Data:      data,
	}, nil
}

func ledgerEventFromModel(m models.LedgerEvent) (LedgerEvent, error) {
	var ret LedgerEvent
	if err := json.Unmarshal(m.Data, &ret); err != nil {
		return ret, fmt.Errorf("decode event %d: %w", m.ID, err)
	}
	ret.ID = m.ID
	return ret, nil
}
