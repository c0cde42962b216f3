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
	"fmt"
	"unicode/utf8"

	"github.com/blinklabs-io/trustledger/database/models"
)

// BadgeReputationThreshold is the minimum score a recipient needs to be
// issued a badge
const BadgeReputationThreshold = 100

// MintBadge issues a new badge to recipient and returns its ID
func (ls *LedgerState) MintBadge(
	caller Principal,
	recipient Principal,
	name string,
	description string,
) (uint64, error) {
	var badgeId uint64
	err := ls.execute("mint-badge", func(c *ledgerCall) error {
		if err := ls.requireCaller(c, caller); err != nil {
			return err
		}
		if err := requireNotPaused(c); err != nil {
			return err
		}
		if utf8.RuneCountInString(name) > models.BadgeNameMaxLength {
			return fmt.Errorf(
				"%w: badge name exceeds %d characters",
				ErrInvalidAmount,
				models.BadgeNameMaxLength,
			)
		}
		if utf8.RuneCountInString(description) > models.BadgeDescriptionMaxLength {
			return fmt.Errorf(
				"%w: badge description exceeds %d characters",
				ErrInvalidAmount,
				models.BadgeDescriptionMaxLength,
			)
		}
		account, err := ls.getAccount(c, recipient)
		if err != nil {
			return err
		}
		if account.ReputationScore < BadgeReputationThreshold {
			return fmt.Errorf(
				"%w: %s has a score of %d, %d is required",
				ErrInsufficientReputation,
				recipient,
				uint64(account.ReputationScore),
				BadgeReputationThreshold,
			)
		}
		badgeId = c.settings.NextBadgeID
		existingBadge, err := ls.db.GetBadge(badgeId, c.txn)
		if err != nil {
			return err
		}
		existingNft, err := ls.db.GetNft(badgeId, c.txn)
		if err != nil {
			return err
		}
		if existingBadge != nil || existingNft != nil {
			ls.config.Logger.Error(
				"next badge ID is already in use",
				"component", "ledger",
				"badge_id", badgeId,
				"metadata_exists", existingBadge != nil,
				"nft_exists", existingNft != nil,
			)
			return fmt.Errorf("%w: %d", ErrBadgeExists, badgeId)
		}
		badge := &models.Badge{
			ID:           badgeId,
			Name:         name,
			Description:  description,
			Creator:      string(caller),
			MintedHeight: c.height,
		}
		if err := ls.db.SetBadge(badge, c.txn); err != nil {
			return err
		}
		if err := ls.db.MintNft(badgeId, string(recipient), c.height, c.txn); err != nil {
			return err
		}
		if err := ls.db.SetBadgeOwnership(badgeId, string(recipient), c.txn); err != nil {
			return err
		}
		c.updateSettings().NextBadgeID = badgeId + 1
		c.emit(LedgerEvent{
			Type:      BadgeMintedEventType,
			Principal: recipient,
			Actor:     caller,
			BadgeID:   badgeId,
		})
		c.afterCommit(ls.metrics.badgesMinted.Inc)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return badgeId, nil
}

// TransferBadge moves a badge from the caller to recipient. Only the current
// holder may transfer a badge
func (ls *LedgerState) TransferBadge(
	caller Principal,
	badgeId uint64,
	recipient Principal,
) error {
	return ls.execute("transfer-badge", func(c *ledgerCall) error {
		if err := requireNotPaused(c); err != nil {
			return err
		}
		if err := requirePrincipal("recipient", recipient); err != nil {
			return err
		}
		owner, err := ls.getBadgeOwner(c, badgeId)
		if err != nil {
			return err
		}
		if owner != caller {
			return fmt.Errorf(
				"%w: %q does not hold badge %d",
				ErrUnauthorized,
				caller,
				badgeId,
			)
		}
		if err := ls.db.TransferNft(badgeId, string(caller), string(recipient), c.height, c.txn); err != nil {
			return err
		}
		if err := ls.db.SetBadgeOwnership(badgeId, string(recipient), c.txn); err != nil {
			return err
		}
		c.emit(LedgerEvent{
			Type:      BadgeTransferredEventType,
			Principal: recipient,
			Actor:     caller,
			BadgeID:   badgeId,
		})
		return nil
	})
}

// BurnBadge destroys a badge. The holder, the owner and authorized callers
// may burn a badge. Its metadata is kept and marked burned
func (ls *LedgerState) BurnBadge(caller Principal, badgeId uint64) error {
	return ls.execute("burn-badge", func(c *ledgerCall) error {
		if err := requireNotPaused(c); err != nil {
			return err
		}
		badge, err := ls.getLiveBadge(c, badgeId)
		if err != nil {
			return err
		}
		owner, err := ls.getBadgeOwner(c, badgeId)
		if err != nil {
			return err
		}
		if caller == "" || caller != owner {
			if err := ls.requireCaller(c, caller); err != nil {
				return fmt.Errorf("burn badge %d: %w", badgeId, err)
			}
		}
		if err := ls.db.BurnNft(badgeId, string(owner), c.txn); err != nil {
			return err
		}
		if err := ls.db.DeleteBadgeOwnership(badgeId, c.txn); err != nil {
			return err
		}
		badge.Burned = true
		badge.BurnedBy = string(caller)
		badge.BurnedHeight = c.height
		if err := ls.db.SetBadge(badge, c.txn); err != nil {
			return err
		}
		c.emit(LedgerEvent{
			Type:      BadgeBurnedEventType,
			Principal: owner,
			Actor:     caller,
			BadgeID:   badgeId,
		})
		c.afterCommit(ls.metrics.badgesBurned.Inc)
		return nil
	})
}

// getLiveBadge loads the metadata of a badge that has not been burned
func (ls *LedgerState) getLiveBadge(
	c *ledgerCall,
	badgeId uint64,
) (*models.Badge, error) {
	badge, err := ls.db.GetBadge(badgeId, c.txn)
	if err != nil {
		return nil, err
	}
	if badge == nil || badge.Burned {
		return nil, fmt.Errorf("%w: %d", ErrBadgeNotFound, badgeId)
	}
	return badge, nil
}

// getBadgeOwner returns the holder of a live badge from its NFT record
func (ls *LedgerState) getBadgeOwner(
	c *ledgerCall,
	badgeId uint64,
) (Principal, error) {
	if _, err := ls.getLiveBadge(c, badgeId); err != nil {
		return "", err
	}
	nft, err := ls.db.GetNft(badgeId, c.txn)
	if err != nil {
		return "", err
	}
	if nft == nil {
		return "", fmt.Errorf("%w: %d has no holder", ErrBadgeNotFound, badgeId)
	}
	return Principal(nft.Owner), nil
}
