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
	"math"
	"math/bits"

	"github.com/blinklabs-io/trustledger/database/models"
	"github.com/blinklabs-io/trustledger/database/types"
)

// Stake moves amount from the caller into custody and adds it to the
// caller's stake, creating the account record on first use
func (ls *LedgerState) Stake(caller Principal, amount uint64) error {
	return ls.execute("stake", func(c *ledgerCall) error {
		if err := requirePrincipal("caller", caller); err != nil {
			return err
		}
		minStake := uint64(c.settings.MinStake)
		if amount < minStake {
			return fmt.Errorf(
				"%w: stake %d is below the minimum of %d",
				ErrInvalidAmount,
				amount,
				minStake,
			)
		}
		account, err := ls.db.GetAccount(string(caller), c.txn)
		if err != nil {
			return err
		}
		created := account == nil
		if created {
			account = &models.Account{
				Principal:       string(caller),
				LastDecayHeight: c.height,
				AddedHeight:     c.height,
			}
		}
		before := uint64(account.StakedAmount)
		if before > math.MaxUint64-amount {
			return fmt.Errorf("%w: stake overflows", ErrInvalidAmount)
		}
		if err := ls.transfer(c, caller, ls.config.CustodyAccount, amount); err != nil {
			return err
		}
		account.StakedAmount = types.Uint64(before + amount)
		if err := ls.db.SetAccount(account, c.txn); err != nil {
			return err
		}
		c.emit(LedgerEvent{
			Type:      StakeAddedEventType,
			Principal: caller,
			Actor:     caller,
			Before:    before,
			After:     before + amount,
			Amount:    amount,
		})
		c.afterCommit(func() {
			ls.metrics.totalStaked.Add(float64(amount))
			if created {
				ls.metrics.accounts.Inc()
			}
		})
		return nil
	})
}

// Unstake returns the caller's whole stake and returns the amount withdrawn.
// The account record is kept with a zero stake
func (ls *LedgerState) Unstake(caller Principal) (uint64, error) {
	var withdrawn uint64
	err := ls.execute("unstake", func(c *ledgerCall) error {
		account, err := ls.getAccount(c, caller)
		if err != nil {
			return err
		}
		withdrawn = uint64(account.StakedAmount)
		if withdrawn == 0 {
			return fmt.Errorf("%w: %s has nothing staked", ErrInsufficientStake, caller)
		}
		if err := ls.transfer(c, ls.config.CustodyAccount, caller, withdrawn); err != nil {
			return err
		}
		account.StakedAmount = 0
		if err := ls.db.SetAccount(account, c.txn); err != nil {
			return err
		}
		c.emit(LedgerEvent{
			Type:      StakeWithdrawnEventType,
			Principal: caller,
			Actor:     caller,
			Before:    withdrawn,
			After:     0,
			Amount:    withdrawn,
		})
		c.afterCommit(func() {
			ls.metrics.totalStaked.Sub(float64(withdrawn))
		})
		return nil
	})
	if err != nil {
		return 0, err
	}
	return withdrawn, nil
}

// PartialUnstake withdraws part of the caller's stake and returns the
// remaining stake, which must still meet the minimum stake
func (ls *LedgerState) PartialUnstake(
	caller Principal,
	amount uint64,
) (uint64, error) {
	var remaining uint64
	err := ls.execute("partial-unstake", func(c *ledgerCall) error {
		if amount == 0 {
			return fmt.Errorf("%w: amount must be positive", ErrInvalidAmount)
		}
		account, err := ls.getAccount(c, caller)
		if err != nil {
			return err
		}
		staked := uint64(account.StakedAmount)
		if staked < amount {
			return fmt.Errorf(
				"%w: %s has %d staked, requested %d",
				ErrInsufficientStake,
				caller,
				staked,
				amount,
			)
		}
		remaining = staked - amount
		minStake := uint64(c.settings.MinStake)
		if remaining < minStake {
			return fmt.Errorf(
				"%w: remaining stake %d is below the minimum of %d",
				ErrInvalidAmount,
				remaining,
				minStake,
			)
		}
		if err := ls.transfer(c, ls.config.CustodyAccount, caller, amount); err != nil {
			return err
		}
		account.StakedAmount = types.Uint64(remaining)
		if err := ls.db.SetAccount(account, c.txn); err != nil {
			return err
		}
		c.emit(LedgerEvent{
			Type:      PartialStakeWithdrawnEventType,
			Principal: caller,
			Actor:     caller,
			Before:    staked,
			After:     remaining,
			Amount:    amount,
		})
		c.afterCommit(func() {
			ls.metrics.totalStaked.Sub(float64(amount))
		})
		return nil
	})
	if err != nil {
		return 0, err
	}
	return remaining, nil
}

// IncrementReputation adds points to a staked user's score and returns the
// new score
func (ls *LedgerState) IncrementReputation(
	caller Principal,
	user Principal,
	points uint64,
) (uint64, error) {
	return ls.adjustReputation("increment-reputation", caller, user, points, true)
}

// DecrementReputation subtracts points from a staked user's score, stopping
// at zero, and returns the new score
func (ls *LedgerState) DecrementReputation(
	caller Principal,
	user Principal,
	points uint64,
) (uint64, error) {
	return ls.adjustReputation("decrement-reputation", caller, user, points, false)
}

func (ls *LedgerState) adjustReputation(
	operation string,
	caller Principal,
	user Principal,
	points uint64,
	increment bool,
) (uint64, error) {
	var newScore uint64
	err := ls.execute(operation, func(c *ledgerCall) error {
		if err := ls.requireCaller(c, caller); err != nil {
			return err
		}
		if err := requireNotPaused(c); err != nil {
			return err
		}
		if points == 0 {
			return fmt.Errorf("%w: points must be positive", ErrInvalidAmount)
		}
		account, err := ls.getAccount(c, user)
		if err != nil {
			return err
		}
		if account.StakedAmount == 0 {
			return fmt.Errorf("%w: %s has nothing staked", ErrInsufficientStake, user)
		}
		oldScore := uint64(account.ReputationScore)
		switch {
		case increment:
			if oldScore > math.MaxUint64-points {
				return fmt.Errorf("%w: reputation overflows", ErrInvalidAmount)
			}
			newScore = oldScore + points
		case points >= oldScore:
			newScore = 0
		default:
			newScore = oldScore - points
		}
		account.ReputationScore = types.Uint64(newScore)
		if err := ls.db.SetAccount(account, c.txn); err != nil {
			return err
		}
		c.emit(LedgerEvent{
			Type:      ReputationUpdatedEventType,
			Principal: user,
			Actor:     caller,
			Before:    oldScore,
			After:     newScore,
			Amount:    points,
		})
		return nil
	})
	if err != nil {
		return 0, err
	}
	return newScore, nil
}

// DecayReputation reduces a user's score by the configured decay rate and
// returns the new score. Anyone may call it
func (ls *LedgerState) DecayReputation(
	caller Principal,
	user Principal,
) (uint64, error) {
	var newScore uint64
	err := ls.execute("decay-reputation", func(c *ledgerCall) error {
		account, err := ls.getAccount(c, user)
		if err != nil {
			return err
		}
		oldScore := uint64(account.ReputationScore)
		decay := decayAmount(oldScore, c.settings.DecayRate)
		newScore = oldScore - decay
		account.ReputationScore = types.Uint64(newScore)
		account.LastDecayHeight = c.height
		if err := ls.db.SetAccount(account, c.txn); err != nil {
			return err
		}
		c.emit(LedgerEvent{
			Type:      ReputationDecayedEventType,
			Principal: user,
			Actor:     caller,
			Before:    oldScore,
			After:     newScore,
			Amount:    decay,
		})
		return nil
	})
	if err != nil {
		return 0, err
	}
	return newScore, nil
}

// decayAmount returns floor(score * rate / 100) without overflowing
func decayAmount(score uint64, rate uint8) uint64 {
	if rate > 100 {
		rate = 100
	}
	hi, lo := bits.Mul64(score, uint64(rate))
	// hi < rate <= 100, so the quotient fits in 64 bits
	quo, _ := bits.Div64(hi, lo, 100)
	return quo
}

// getAccount loads the account record for user, failing if it has none
func (ls *LedgerState) getAccount(
	c *ledgerCall,
	user Principal,
) (*models.Account, error) {
	if err := requirePrincipal("user", user); err != nil {
		return nil, err
	}
	account, err := ls.db.GetAccount(string(user), c.txn)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, user)
	}
	return account, nil
}
