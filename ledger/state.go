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
	"io"
	"log/slog"
	"math/bits"
	"sync"

	"github.com/blinklabs-io/trustledger/custody"
	"github.com/blinklabs-io/trustledger/database"
	"github.com/blinklabs-io/trustledger/database/models"
	"github.com/blinklabs-io/trustledger/event"
	"github.com/prometheus/client_golang/prometheus"
)

// Transferer moves currency between principals as part of a ledger
// transaction. Transfers are discarded when the transaction rolls back
type Transferer interface {
	Transfer(txn *database.Txn, from string, to string, amount uint64) error
	Balance(txn *database.Txn, principal string) (uint64, error)
}

type LedgerStateConfig struct {
	Logger         *slog.Logger
	Database       *database.Database
	EventBus       *event.EventBus
	PromRegistry   prometheus.Registerer
	Clock          Clock
	Transferer     Transferer
	CustodyAccount Principal

	// Owner becomes the ledger owner when the settings are first created.
	// It is ignored afterward
	Owner Principal
}

// LedgerState applies ledger calls one at a time. Each call runs in a single
// database transaction and emits its events once the transaction commits
type LedgerState struct {
	sync.Mutex
	config  LedgerStateConfig
	db      *database.Database
	metrics stateMetrics
}

func NewLedgerState(cfg LedgerStateConfig) (*LedgerState, error) {
	if cfg.Logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if cfg.Database == nil {
		return nil, errors.New("database is required")
	}
	if cfg.Clock == nil {
		cfg.Clock = NewManualClock(0)
	}
	if cfg.Transferer == nil {
		cfg.Transferer = custody.New(cfg.Database, cfg.Logger)
	}
	if cfg.CustodyAccount == "" {
		cfg.CustodyAccount = custody.DefaultAccount
	}
	ls := &LedgerState{
		config: cfg,
		db:     cfg.Database,
	}
	// Init metrics
	ls.metrics.init(cfg.PromRegistry)
	if err := ls.init(); err != nil {
		return nil, err
	}
	return ls, nil
}

func (ls *LedgerState) init() error {
	txn := ls.db.Transaction(true)
	return txn.Do(func(txn *database.Txn) error {
		settings, err := ls.db.GetSettings(txn)
		if err != nil {
			return fmt.Errorf("load settings: %w", err)
		}
		if settings == nil {
			if ls.config.Owner == "" {
				return errors.New("an owner is required to initialize the ledger")
			}
			settings = models.NewDefaultSettings(string(ls.config.Owner))
			if err := ls.db.SetSettings(settings, txn); err != nil {
				return fmt.Errorf("store settings: %w", err)
			}
			ls.config.Logger.Info(
				"initialized ledger settings",
				"component", "ledger",
				"owner", settings.Owner,
				"decay_rate", settings.DecayRate,
				"min_stake", uint64(settings.MinStake),
			)
		}
		accounts, err := ls.db.GetAccounts(txn)
		if err != nil {
			return fmt.Errorf("load accounts: %w", err)
		}
		total, err := sumStaked(accounts)
		if err != nil {
			return err
		}
		ls.metrics.accounts.Set(float64(len(accounts)))
		ls.metrics.totalStaked.Set(float64(total))
		return nil
	})
}

// Clock returns the clock used to stamp ledger calls
func (ls *LedgerState) Clock() Clock {
	return ls.config.Clock
}

// CustodyAccount returns the principal holding staked funds
func (ls *LedgerState) CustodyAccount() Principal {
	return ls.config.CustodyAccount
}

// ledgerCall carries the state of a single ledger call
type ledgerCall struct {
	txn *database.Txn

	// settings is read once when the call starts and is not refreshed
	settings models.Settings
	updated  *models.Settings
	height   uint64
	events   []LedgerEvent
	onCommit []func()
}

func (c *ledgerCall) emit(evt LedgerEvent) {
	evt.Height = c.height
	c.events = append(c.events, evt)
}

func (c *ledgerCall) afterCommit(fn func()) {
	c.onCommit = append(c.onCommit, fn)
}

// updateSettings returns a copy of the settings to be written when the call
// commits. The snapshot in settings is unaffected
func (c *ledgerCall) updateSettings() *models.Settings {
	if c.updated == nil {
		tmpSettings := c.settings
		c.updated = &tmpSettings
	}
	return c.updated
}

// execute runs fn as one ledger call. Nothing fn writes is kept unless it
// returns nil, and events are published only after a successful commit
func (ls *LedgerState) execute(
	operation string,
	fn func(*ledgerCall) error,
) error {
	ls.Lock()
	defer ls.Unlock()
	call := &ledgerCall{
		height: ls.config.Clock.BlockHeight(),
	}
	txn := ls.db.Transaction(true)
	err := txn.Do(func(txn *database.Txn) error {
		settings, err := ls.db.GetSettings(txn)
		if err != nil {
			return fmt.Errorf("load settings: %w", err)
		}
		if settings == nil {
			return errors.New("ledger settings not initialized")
		}
		call.txn = txn
		call.settings = *settings
		if err := fn(call); err != nil {
			return err
		}
		if call.updated != nil {
			if err := ls.db.SetSettings(call.updated, txn); err != nil {
				return fmt.Errorf("store settings: %w", err)
			}
		}
		for i := range call.events {
			tmpEvent, err := call.events[i].toModel()
			if err != nil {
				return err
			}
			if err := ls.db.AddEvent(tmpEvent, txn); err != nil {
				return fmt.Errorf("store event: %w", err)
			}
			call.events[i].ID = tmpEvent.ID
		}
		return nil
	})
	ls.metrics.observe(operation, err)
	if err != nil {
		ls.config.Logger.Debug(
			"ledger call failed",
			"component", "ledger",
			"operation", operation,
			"height", call.height,
			"error", err,
		)
		return err
	}
	ls.metrics.blockHeight.Set(float64(call.height))
	for _, fn := range call.onCommit {
		fn()
	}
	ls.publish(call.events)
	return nil
}

func (ls *LedgerState) publish(events []LedgerEvent) {
	for _, evt := range events {
		ls.config.Logger.Debug(
			"ledger event",
			"component", "ledger",
			"type", evt.Type.String(),
			"principal", evt.Principal.String(),
			"height", evt.Height,
		)
		if ls.config.EventBus == nil {
			continue
		}
		ls.config.EventBus.Publish(evt.Type, event.NewEvent(evt.Type, evt))
	}
}

// requireCaller checks that caller is the owner or an authorized caller
func (ls *LedgerState) requireCaller(c *ledgerCall, caller Principal) error {
	if caller != "" && string(caller) == c.settings.Owner {
		return nil
	}
	if caller != "" {
		authorized, err := ls.db.IsAuthorizedCaller(string(caller), c.txn)
		if err != nil {
			return err
		}
		if authorized {
			return nil
		}
	}
	return fmt.Errorf("%w: %q is not an authorized caller", ErrUnauthorized, caller)
}

func requireOwner(c *ledgerCall, caller Principal) error {
	if caller == "" || string(caller) != c.settings.Owner {
		return fmt.Errorf("%w: %q is not the owner", ErrUnauthorized, caller)
	}
	return nil
}

func requireNotPaused(c *ledgerCall) error {
	if c.settings.Paused {
		return fmt.Errorf("%w: ledger is paused", ErrUnauthorized)
	}
	return nil
}

func requirePrincipal(name string, p Principal) error {
	if p == "" {
		return fmt.Errorf("%w: empty %s", ErrInvalidPrincipal, name)
	}
	return nil
}

// transfer moves funds through the configured Transferer
func (ls *LedgerState) transfer(
	c *ledgerCall,
	from Principal,
	to Principal,
	amount uint64,
) error {
	if err := ls.config.Transferer.Transfer(c.txn, string(from), string(to), amount); err != nil {
		return fmt.Errorf("%w: %w", ErrTransferFailed, err)
	}
	return nil
}

func sumStaked(accounts []models.Account) (uint64, error) {
	var total, carry uint64
	for _, account := range accounts {
		total, carry = bits.Add64(total, uint64(account.StakedAmount), 0)
		if carry != 0 {
			return 0, errors.New("total staked amount overflows")
		}
	}
	return total, nil
}
