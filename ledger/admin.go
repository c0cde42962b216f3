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

	"github.com/blinklabs-io/trustledger/database/types"
)

// MaxDecayRate is the largest decay rate, in percent
const MaxDecayRate = 100

// SetOwner hands ownership of the ledger to newOwner
func (ls *LedgerState) SetOwner(caller Principal, newOwner Principal) error {
	return ls.execute("set-owner", func(c *ledgerCall) error {
		if err := requireOwner(c, caller); err != nil {
			return err
		}
		if err := requirePrincipal("owner", newOwner); err != nil {
			return err
		}
		c.updateSettings().Owner = string(newOwner)
		c.emit(LedgerEvent{
			Type:      OwnershipTransferredEventType,
			Principal: newOwner,
			Actor:     caller,
		})
		c.afterCommit(func() {
			ls.config.Logger.Info(
				"ledger ownership transferred",
				"component", "ledger",
				"previous_owner", caller.String(),
				"owner", newOwner.String(),
			)
		})
		return nil
	})
}

// SetPaused sets the pause flag and returns the new value
func (ls *LedgerState) SetPaused(caller Principal, paused bool) (bool, error) {
	err := ls.execute("set-paused", func(c *ledgerCall) error {
		if err := requireOwner(c, caller); err != nil {
			return err
		}
		c.updateSettings().Paused = paused
		c.emit(LedgerEvent{
			Type:      PauseStatusChangedEventType,
			Principal: caller,
			Actor:     caller,
			Before:    boolToUint64(c.settings.Paused),
			After:     boolToUint64(paused),
			Value:     paused,
		})
		c.afterCommit(func() {
			ls.config.Logger.Info(
				"ledger pause status changed",
				"component", "ledger",
				"paused", paused,
			)
		})
		return nil
	})
	if err != nil {
		return false, err
	}
	return paused, nil
}

// SetAuthorized grants or revokes the right of contract to adjust reputation
// and mint badges, and returns the new flag
func (ls *LedgerState) SetAuthorized(
	caller Principal,
	contract Principal,
	authorized bool,
) (bool, error) {
	err := ls.execute("set-authorized", func(c *ledgerCall) error {
		if err := requireOwner(c, caller); err != nil {
			return err
		}
		if err := requirePrincipal("contract", contract); err != nil {
			return err
		}
		before, err := ls.db.IsAuthorizedCaller(string(contract), c.txn)
		if err != nil {
			return err
		}
		if err := ls.db.SetAuthorizedCaller(string(contract), authorized, c.height, c.txn); err != nil {
			return err
		}
		c.emit(LedgerEvent{
			Type:      AuthorizationChangedEventType,
			Principal: contract,
			Actor:     caller,
			Before:    boolToUint64(before),
			After:     boolToUint64(authorized),
			Value:     authorized,
		})
		return nil
	})
	if err != nil {
		return false, err
	}
	return authorized, nil
}

// SetDecayRate sets the percentage removed by each decay and returns it
func (ls *LedgerState) SetDecayRate(
	caller Principal,
	rate uint64,
) (uint64, error) {
	err := ls.execute("set-decay-rate", func(c *ledgerCall) error {
		if err := requireOwner(c, caller); err != nil {
			return err
		}
		if rate > MaxDecayRate {
			return fmt.Errorf(
				"%w: decay rate %d exceeds %d",
				ErrInvalidAmount,
				rate,
				MaxDecayRate,
			)
		}
		c.updateSettings().DecayRate = uint8(rate) // #nosec G115: bounds checked above
		c.emit(LedgerEvent{
			Type:      DecayRateUpdatedEventType,
			Principal: caller,
			Actor:     caller,
			Before:    uint64(c.settings.DecayRate),
			After:     rate,
		})
		return nil
	})
	if err != nil {
		return 0, err
	}
	return rate, nil
}

// SetMinStake sets the minimum stake and returns it
func (ls *LedgerState) SetMinStake(
	caller Principal,
	amount uint64,
) (uint64, error) {
	err := ls.execute("set-min-stake", func(c *ledgerCall) error {
		if err := requireOwner(c, caller); err != nil {
			return err
		}
		if amount == 0 {
			return fmt.Errorf("%w: minimum stake must be positive", ErrInvalidAmount)
		}
		c.updateSettings().MinStake = types.Uint64(amount)
		c.emit(LedgerEvent{
			Type:      MinStakeUpdatedEventType,
			Principal: caller,
			Actor:     caller,
			Before:    uint64(c.settings.MinStake),
			After:     amount,
		})
		return nil
	})
	if err != nil {
		return 0, err
	}
	return amount, nil
}

func boolToUint64(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}
