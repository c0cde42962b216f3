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

package api

import "github.com/blinklabs-io/trustledger/ledger"

// LedgerService is the ledger surface used by the API server. It decouples
// the HTTP handlers from the concrete ledger state
type LedgerService interface {
	Stake(caller ledger.Principal, amount uint64) error
	Unstake(caller ledger.Principal) (uint64, error)
	PartialUnstake(caller ledger.Principal, amount uint64) (uint64, error)
	IncrementReputation(
		caller ledger.Principal,
		user ledger.Principal,
		points uint64,
	) (uint64, error)
	DecrementReputation(
		caller ledger.Principal,
		user ledger.Principal,
		points uint64,
	) (uint64, error)
	DecayReputation(caller ledger.Principal, user ledger.Principal) (uint64, error)
	MintBadge(
		caller ledger.Principal,
		recipient ledger.Principal,
		name string,
		description string,
	) (uint64, error)
	TransferBadge(
		caller ledger.Principal,
		badgeId uint64,
		recipient ledger.Principal,
	) error
	BurnBadge(caller ledger.Principal, badgeId uint64) error
	SetOwner(caller ledger.Principal, newOwner ledger.Principal) error
	SetPaused(caller ledger.Principal, paused bool) (bool, error)
	SetAuthorized(
		caller ledger.Principal,
		contract ledger.Principal,
		authorized bool,
	) (bool, error)
	SetDecayRate(caller ledger.Principal, rate uint64) (uint64, error)
	SetMinStake(caller ledger.Principal, amount uint64) (uint64, error)

	GetStake(user ledger.Principal) (uint64, error)
	GetReputation(user ledger.Principal) (uint64, error)
	GetUserData(user ledger.Principal) (ledger.UserData, error)
	GetBadgeMetadata(badgeId uint64) (ledger.BadgeMetadata, error)
	GetBadgeOwner(badgeId uint64) (ledger.Principal, error)
	UserOwnsBadge(user ledger.Principal, badgeId uint64) (bool, error)
	GetBadgesByOwner(owner ledger.Principal) ([]ledger.BadgeMetadata, error)
	GetSettings() (ledger.Settings, error)
	IsPaused() (bool, error)
	IsAuthorized(contract ledger.Principal) (bool, error)
	GetAuthorizedCallers() ([]ledger.Principal, error)
	GetEvents(
		principal ledger.Principal,
		afterId uint,
		limit int,
	) ([]ledger.LedgerEvent, error)
}
