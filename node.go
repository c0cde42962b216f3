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

package trustledger

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/blinklabs-io/trustledger/api"
	"github.com/blinklabs-io/trustledger/custody"
	"github.com/blinklabs-io/trustledger/database"
	"github.com/blinklabs-io/trustledger/event"
	"github.com/blinklabs-io/trustledger/ledger"
)

type Node struct {
	eventBus      *event.EventBus
	db            *database.Database
	custody       *custody.Custody
	ledgerState   *ledger.LedgerState
	api           *api.Api
	shutdownFuncs []func(context.Context) error
	config        Config
	done          chan struct{}
	ready         chan struct{}
	shutdownOnce  sync.Once
}

func New(cfg Config) (*Node, error) {
	eventBus := event.NewEventBus(cfg.promRegistry, cfg.logger)
	n := &Node{
		config:   cfg,
		eventBus: eventBus,
		done:     make(chan struct{}),
		ready:    make(chan struct{}),
	}
	if err := n.configValidate(); err != nil {
		eventBus.Stop()
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return n, nil
}

// Run opens the database, loads the ledger and serves the API until the
// context is cancelled or Stop is called
func (n *Node) Run(ctx context.Context) error {
	// Configure tracing
	if n.config.tracing {
		if err := n.setupTracing(); err != nil {
			return err
		}
	}
	// Load database
	dbNeedsRecovery := false
	dbConfig := &database.Config{
		DataDir:        n.config.dataDir,
		Logger:         n.config.logger,
		PromRegistry:   n.config.promRegistry,
		BlobPlugin:     n.config.blobPlugin,
		MetadataPlugin: n.config.metadataPlugin,
	}
	db, err := database.New(dbConfig)
	if db == nil {
		if err == nil {
			err = errors.New("empty database returned")
		}
		return fmt.Errorf("failed to open database: %w", err)
	}
	n.db = db
	if err != nil {
		var dbErr database.CommitTimestampError
		if !errors.As(err, &dbErr) {
			return fmt.Errorf("failed to open database: %w", err)
		}
		n.config.logger.Warn(
			"database initialization error, needs recovery",
			"component", "node",
			"error", err,
		)
		dbNeedsRecovery = true
	}
	n.custody = custody.New(n.db, n.config.logger)
	clock, err := n.configClock()
	if err != nil {
		return err
	}
	// Load state
	state, err := ledger.NewLedgerState(
		ledger.LedgerStateConfig{
			Logger:         n.config.logger,
			Database:       n.db,
			EventBus:       n.eventBus,
			PromRegistry:   n.config.promRegistry,
			Clock:          clock,
			Transferer:     n.custody,
			CustodyAccount: n.config.custodyAccount,
			Owner:          n.config.owner,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to load ledger state: %w", err)
	}
	n.ledgerState = state
	if err := n.checkLedger(dbNeedsRecovery); err != nil {
		return err
	}
	n.subscribeEventLog()
	// Configure HTTP API
	if n.config.listenAddress != "" {
		n.api = api.New(
			api.Config{
				ListenAddress:    n.config.listenAddress,
				TlsCertFilePath:  n.config.tlsCertFilePath,
				TlsKeyFilePath:   n.config.tlsKeyFilePath,
				MaxRequestsPerIP: n.config.maxRequestsPerIP,
			},
			n.ledgerState,
			n.config.logger,
		)
		if err := n.api.Start(ctx); err != nil {
			return err
		}
	}
	close(n.ready)

	// Wait for shutdown signal
	select {
	case <-ctx.Done():
	case <-n.done:
	}
	return nil
}

// configClock picks the block height source for the ledger
func (n *Node) configClock() (ledger.Clock, error) {
	if n.config.clock != nil {
		return n.config.clock, nil
	}
	if n.config.blockInterval == 0 {
		return ledger.NewManualClock(0), nil
	}
	genesis := n.config.genesis
	if genesis.IsZero() {
		genesis = time.Now()
	}
	clock, err := ledger.NewTickerClock(genesis, n.config.blockInterval)
	if err != nil {
		return nil, fmt.Errorf("invalid clock configuration: %w", err)
	}
	return clock, nil
}

// checkLedger repairs the badge ownership index when it no longer matches the
// NFT records and reports a custody balance that disagrees with total stake
func (n *Node) checkLedger(rebuild bool) error {
	if !rebuild {
		mismatches, err := n.ledgerState.VerifyOwnershipIndex()
		if err != nil {
			return fmt.Errorf("failed to verify ownership index: %w", err)
		}
		for _, mismatch := range mismatches {
			n.config.logger.Warn(
				"badge ownership index mismatch",
				"component", "node",
				"mismatch", mismatch.String(),
			)
		}
		rebuild = len(mismatches) > 0
	}
	if rebuild {
		// The rebuild commits through both stores, which also realigns
		// their commit timestamps
		if _, err := n.ledgerState.RebuildOwnershipIndex(); err != nil {
			return fmt.Errorf("failed to recover database: %w", err)
		}
	}
	if err := n.ledgerState.CheckCustodyInvariant(); err != nil {
		var invErr ledger.InvariantError
		if !errors.As(err, &invErr) {
			return fmt.Errorf("failed to check custody balance: %w", err)
		}
		n.config.logger.Warn(
			"custody balance does not match total stake",
			"component", "node",
			"total_staked", invErr.TotalStaked,
			"custody_balance", invErr.CustodyBalance,
		)
	}
	return nil
}

// adminEventTypes are logged at info level as an audit trail of owner actions
var adminEventTypes = []event.EventType{
	ledger.OwnershipTransferredEventType,
	ledger.PauseStatusChangedEventType,
	ledger.AuthorizationChangedEventType,
	ledger.DecayRateUpdatedEventType,
	ledger.MinStakeUpdatedEventType,
}

func (n *Node) subscribeEventLog() {
	for _, eventType := range adminEventTypes {
		n.eventBus.SubscribeFunc(
			eventType,
			func(evt event.Event) {
				data, ok := evt.Data.(ledger.LedgerEvent)
				if !ok {
					return
				}
				n.config.logger.Info(
					"admin change",
					"component", "node",
					"type", data.Type.String(),
					"actor", data.Actor.String(),
					"principal", data.Principal.String(),
					"before", data.Before,
					"after", data.After,
					"value", data.Value,
					"height", data.Height,
				)
			},
		)
	}
}

// Ready is closed once the ledger is loaded and the API is listening
func (n *Node) Ready() <-chan struct{} {
	return n.ready
}

// LedgerState returns the loaded ledger, or nil before Run has opened it
func (n *Node) LedgerState() *ledger.LedgerState {
	return n.ledgerState
}

// ApiAddr returns the address the HTTP API is listening on, or nil when the
// API is disabled or not yet started
func (n *Node) ApiAddr() net.Addr {
	if n.api == nil {
		return nil
	}
	return n.api.Addr()
}

func (n *Node) Stop() error {
	var err error
	n.shutdownOnce.Do(func() {
		err = n.shutdown()
	})
	return err
}

func (n *Node) shutdown() error {
	shutdownTimeout := DefaultShutdownTimeout
	if n.config.shutdownTimeout > 0 {
		shutdownTimeout = n.config.shutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var err error

	n.config.logger.Debug("starting graceful shutdown", "component", "node")

	// Stop accepting new calls
	if n.api != nil {
		if stopErr := n.api.Stop(ctx); stopErr != nil {
			err = errors.Join(err, fmt.Errorf("api shutdown: %w", stopErr))
		}
	}

	// Drain event subscribers before the database goes away
	if n.eventBus != nil {
		n.eventBus.Stop()
	}

	if n.db != nil {
		if closeErr := n.db.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("database close: %w", closeErr))
		}
	}

	// Call registered shutdown functions
	for _, fn := range n.shutdownFuncs {
		if fnErr := fn(ctx); fnErr != nil {
			err = errors.Join(err, fmt.Errorf("shutdown function: %w", fnErr))
		}
	}
	n.shutdownFuncs = nil

	n.config.logger.Debug("graceful shutdown complete", "component", "node")
	close(n.done)
	return err
}
