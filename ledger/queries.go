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
	"errors"
	"fmt"

	"github.com/blinklabs-io/trustledger/database"
	"github.com/blinklabs-io/trustledger/database/models"
)

// UserData is the public view of an account record
type UserData struct {
	Principal       Principal `json:"principal"`
	ReputationScore uint64    `json:"reputation_score"`
	StakedAmount    uint64    `json:"staked_amount"`
	LastDecayHeight uint64    `json:"last_decay_height"`
	AddedHeight     uint64    `json:"added_height"`
}

// BadgeMetadata is the public view of a badge
type BadgeMetadata struct {
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Creator      Principal `json:"creator"`
	BurnedBy     Principal `json:"burned_by,omitempty"`
	ID           uint64    `json:"id"`
	MintedHeight uint64    `json:"minted_height"`
	BurnedHeight uint64    `json:"burned_height,omitempty"`
	Burned       bool      `json:"burned"`
}

// Settings is the public view of the ledger configuration
type Settings struct {
	Owner       Principal `json:"owner"`
	MinStake    uint64    `json:"min_stake"`
	NextBadgeID uint64    `json:"next_badge_id"`
	DecayRate   uint8     `json:"decay_rate"`
	Paused      bool      `json:"paused"`
}

func userDataFromModel(account *models.Account) UserData {
	return UserData{
		Principal:       Principal(account.Principal),
		ReputationScore: uint64(account.ReputationScore),
		StakedAmount:    uint64(account.StakedAmount),
		LastDecayHeight: account.LastDecayHeight,
		AddedHeight:     account.AddedHeight,
	}
}

func badgeMetadataFromModel(badge *models.Badge) BadgeMetadata {
	return BadgeMetadata{
		ID:           badge.ID,
		Name:         badge.Name,
		Description:  badge.Description,
		Creator:      Principal(badge.Creator),
		MintedHeight: badge.MintedHeight,
		Burned:       badge.Burned,
		BurnedBy:     Principal(badge.BurnedBy),
		BurnedHeight: badge.BurnedHeight,
	}
}

// query runs fn against a read-only transaction
func (ls *LedgerState) query(fn func(*ledgerCall) error) error {
	txn := ls.db.Transaction(false)
	defer txn.Release()
	return fn(&ledgerCall{txn: txn})
}

// GetUserData returns the account record of user
func (ls *LedgerState) GetUserData(user Principal) (UserData, error) {
	var ret UserData
	err := ls.query(func(c *ledgerCall) error {
		account, err := ls.getAccount(c, user)
		if err != nil {
			return err
		}
		ret = userDataFromModel(account)
		return nil
	})
	return ret, err
}

// GetStake returns the amount staked by user, or 0 without an account record
func (ls *LedgerState) GetStake(user Principal) (uint64, error) {
	data, err := ls.GetUserData(user)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return data.StakedAmount, nil
}

// GetReputation returns the score of user, or 0 without an account record
func (ls *LedgerState) GetReputation(user Principal) (uint64, error) {
	data, err := ls.GetUserData(user)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return data.ReputationScore, nil
}

// GetUsers returns every account record
func (ls *LedgerState) GetUsers() ([]UserData, error) {
	var ret []UserData
	err := ls.query(func(c *ledgerCall) error {
		accounts, err := ls.db.GetAccounts(c.txn)
		if err != nil {
			return err
		}
		ret = make([]UserData, 0, len(accounts))
		for i := range accounts {
			ret = append(ret, userDataFromModel(&accounts[i]))
		}
		return nil
	})
	return ret, err
}

// GetBadgeMetadata returns the metadata of a badge, including burned badges
func (ls *LedgerState) GetBadgeMetadata(badgeId uint64) (BadgeMetadata, error) {
	var ret BadgeMetadata
	err := ls.query(func(c *ledgerCall) error {
		badge, err := ls.db.GetBadge(badgeId, c.txn)
		if err != nil {
			return err
		}
		if badge == nil {
			return fmt.Errorf("%w: %d", ErrBadgeNotFound, badgeId)
		}
		ret = badgeMetadataFromModel(badge)
		return nil
	})
	return ret, err
}

// GetBadgeOwner returns the holder of a live badge
func (ls *LedgerState) GetBadgeOwner(badgeId uint64) (Principal, error) {
	var ret Principal
	err := ls.query(func(c *ledgerCall) error {
		owner, err := ls.getBadgeOwner(c, badgeId)
		if err != nil {
			return err
		}
		ret = owner
		return nil
	})
	return ret, err
}

// UserOwnsBadge reports whether user holds a badge. Unknown and burned
// badges are owned by nobody
func (ls *LedgerState) UserOwnsBadge(
	user Principal,
	badgeId uint64,
) (bool, error) {
	owner, err := ls.GetBadgeOwner(badgeId)
	if err != nil {
		if errors.Is(err, ErrBadgeNotFound) {
			return false, nil
		}
		return false, err
	}
	return user != "" && owner == user, nil
}

// GetBadgesByOwner returns the live badges held by owner in mint order
func (ls *LedgerState) GetBadgesByOwner(owner Principal) ([]BadgeMetadata, error) {
	var ret []BadgeMetadata
	err := ls.query(func(c *ledgerCall) error {
		badges, err := ls.db.GetBadgesByOwner(string(owner), c.txn)
		if err != nil {
			return err
		}
		ret = make([]BadgeMetadata, 0, len(badges))
		for i := range badges {
			ret = append(ret, badgeMetadataFromModel(&badges[i]))
		}
		return nil
	})
	return ret, err
}

func (ls *LedgerState) GetSettings() (Settings, error) {
	var ret Settings
	err := ls.query(func(c *ledgerCall) error {
		settings, err := ls.db.GetSettings(c.txn)
		if err != nil {
			return err
		}
		if settings == nil {
			return errors.New("ledger settings not initialized")
		}
		ret = Settings{
			Owner:       Principal(settings.Owner),
			DecayRate:   settings.DecayRate,
			MinStake:    uint64(settings.MinStake),
			NextBadgeID: settings.NextBadgeID,
			Paused:      settings.Paused,
		}
		return nil
	})
	return ret, err
}

func (ls *LedgerState) IsPaused() (bool, error) {
	settings, err := ls.GetSettings()
	if err != nil {
		return false, err
	}
	return settings.Paused, nil
}

// IsAuthorized reports whether contract has been authorized by the owner.
// The owner itself is not listed as authorized
func (ls *LedgerState) IsAuthorized(contract Principal) (bool, error) {
	var ret bool
	err := ls.query(func(c *ledgerCall) error {
		authorized, err := ls.db.IsAuthorizedCaller(string(contract), c.txn)
		if err != nil {
			return err
		}
		ret = authorized
		return nil
	})
	return ret, err
}

func (ls *LedgerState) GetAuthorizedCallers() ([]Principal, error) {
	var ret []Principal
	err := ls.query(func(c *ledgerCall) error {
		callers, err := ls.db.GetAuthorizedCallers(c.txn)
		if err != nil {
			return err
		}
		ret = make([]Principal, 0, len(callers))
		for _, caller := range callers {
			ret = append(ret, Principal(caller))
		}
		return nil
	})
	return ret, err
}

// GetEvents returns up to limit committed events with an ID greater than
// afterId. An empty principal selects events for every principal and a limit
// of 0 returns all matching events
func (ls *LedgerState) GetEvents(
	principal Principal,
	afterId uint,
	limit int,
) ([]LedgerEvent, error) {
	var ret []LedgerEvent
	err := ls.query(func(c *ledgerCall) error {
		events, err := ls.db.GetEvents(string(principal), afterId, limit, c.txn)
		if err != nil {
			return err
		}
		ret = make([]LedgerEvent, 0, len(events))
		for _, tmpEvent := range events {
			evt, err := ledgerEventFromModel(tmpEvent)
			if err != nil {
				return err
			}
			ret = append(ret, evt)
		}
		return nil
	})
	return ret, err
}

// TotalStaked returns the sum of staked amounts across all accounts
func (ls *LedgerState) TotalStaked() (uint64, error) {
	var ret uint64
	err := ls.query(func(c *ledgerCall) error {
		accounts, err := ls.db.GetAccounts(c.txn)
		if err != nil {
			return err
		}
		ret, err = sumStaked(accounts)
		return err
	})
	return ret, err
}

// CustodyBalance returns the funds held by the custody account
func (ls *LedgerState) CustodyBalance() (uint64, error) {
	var ret uint64
	err := ls.query(func(c *ledgerCall) error {
		balance, err := ls.config.Transferer.Balance(c.txn, string(ls.config.CustodyAccount))
		if err != nil {
			return err
		}
		ret = balance
		return nil
	})
	return ret, err
}

// CheckCustodyInvariant returns an InvariantError if the custody account does
// not hold exactly the total staked amount
func (ls *LedgerState) CheckCustodyInvariant() error {
	ls.Lock()
	defer ls.Unlock()
	var total, balance uint64
	err := ls.query(func(c *ledgerCall) error {
		accounts, err := ls.db.GetAccounts(c.txn)
		if err != nil {
			return err
		}
		total, err = sumStaked(accounts)
		if err != nil {
			return err
		}
		balance, err = ls.config.Transferer.Balance(c.txn, string(ls.config.CustodyAccount))
		return err
	})
	if err != nil {
		return err
	}
	if total != balance {
		return InvariantError{
			TotalStaked:    total,
			CustodyBalance: balance,
		}
	}
	return nil
}

// VerifyOwnershipIndex compares the badge ownership index with the NFT owner
// records and returns every disagreement
func (ls *LedgerState) VerifyOwnershipIndex() ([]database.OwnershipMismatch, error) {
	ls.Lock()
	defer ls.Unlock()
	var ret []database.OwnershipMismatch
	err := ls.query(func(c *ledgerCall) error {
		mismatches, err := ls.db.VerifyBadgeOwnerships(c.txn)
		if err != nil {
			return err
		}
		ret = mismatches
		return nil
	})
	return ret, err
}

// RebuildOwnershipIndex recreates the badge ownership index from the NFT
// owner records and returns the number of entries written
func (ls *LedgerState) RebuildOwnershipIndex() (int, error) {
	ls.Lock()
	defer ls.Unlock()
	var count int
	txn := ls.db.Transaction(true)
	err := txn.Do(func(txn *database.Txn) error {
		var err error
		count, err = ls.db.RebuildBadgeOwnerships(txn)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("rebuild ownership index: %w", err)
	}
	ls.config.Logger.Info(
		"rebuilt badge ownership index",
		"component", "ledger",
		"entries", count,
	)
	return count, nil
}
