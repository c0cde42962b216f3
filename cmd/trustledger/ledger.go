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

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/blinklabs-io/trustledger/custody"
	"github.com/blinklabs-io/trustledger/database"
	"github.com/blinklabs-io/trustledger/internal/config"
	"github.com/blinklabs-io/trustledger/ledger"
	"github.com/spf13/cobra"
)

// offlineLedger is a ledger opened directly on the configured database,
// without the API or the block clock. The node must not be running
type offlineLedger struct {
	db      *database.Database
	custody *custody.Custody
	state   *ledger.LedgerState
}

func openLedger(cfg *config.Config, logger *slog.Logger) (*offlineLedger, error) {
	db, err := database.New(&database.Config{
		DataDir:        cfg.DataDir,
		Logger:         logger,
		BlobPlugin:     cfg.BlobPlugin,
		MetadataPlugin: cfg.MetadataPlugin,
	})
	if err != nil {
		var dbErr database.CommitTimestampError
		if db == nil || !errors.As(err, &dbErr) {
			if db != nil {
				_ = db.Close()
			}
			return nil, fmt.Errorf("opening database: %w", err)
		}
		logger.Warn(
			"database needs recovery, run reindex",
			"component", programName,
			"error", err,
		)
	}
	c := custody.New(db, logger)
	state, err := ledger.NewLedgerState(ledger.LedgerStateConfig{
		Logger:         logger,
		Database:       db,
		Transferer:     c,
		CustodyAccount: ledger.Principal(cfg.CustodyAccount),
		Owner:          ledger.Principal(cfg.Owner),
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("loading ledger: %w", err)
	}
	return &offlineLedger{
		db:      db,
		custody: c,
		state:   state,
	}, nil
}

func (l *offlineLedger) Close() error {
	return l.db.Close()
}

// runOffline loads the config from the command context, opens the ledger and
// hands it to fn. Any error ends the process
func runOffline(cmd *cobra.Command, fn func(*offlineLedger, *config.Config) error) {
	cfg := config.FromContext(cmd.Context())
	if cfg == nil {
		slog.Error("no config found in context")
		os.Exit(1)
	}
	logger := commonRun()
	l, err := openLedger(cfg, logger)
	if err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
	err = fn(l, cfg)
	if closeErr := l.Close(); closeErr != nil {
		err = errors.Join(err, closeErr)
	}
	if err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func accountCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account <principal>",
		Short: "Show the stake, reputation and badges of an account",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			runOffline(cmd, func(l *offlineLedger, _ *config.Config) error {
				user, err := ledger.ParsePrincipal(args[0])
				if err != nil {
					return err
				}
				data, err := l.state.GetUserData(user)
				if err != nil {
					return err
				}
				badges, err := l.state.GetBadgesByOwner(user)
				if err != nil {
					return err
				}
				return printJSON(struct {
					Principal ledger.Principal       `json:"principal"`
					Account   ledger.UserData        `json:"account"`
					Badges    []ledger.BadgeMetadata `json:"badges"`
				}{
					Principal: user,
					Account:   data,
					Badges:    badges,
				})
			})
		},
	}
	return cmd
}

func accountsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "List every account that has staked",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			runOffline(cmd, func(l *offlineLedger, _ *config.Config) error {
				users, err := l.state.GetUsers()
				if err != nil {
					return err
				}
				return printJSON(users)
			})
		},
	}
	return cmd
}

func badgeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "badge <id>",
		Short: "Show a badge and its holder",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			runOffline(cmd, func(l *offlineLedger, _ *config.Config) error {
				badgeId, err := strconv.ParseUint(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid badge ID: %w", err)
				}
				meta, err := l.state.GetBadgeMetadata(badgeId)
				if err != nil {
					return err
				}
				// Burned badges have no holder
				owner, err := l.state.GetBadgeOwner(badgeId)
				if err != nil && !errors.Is(err, ledger.ErrBadgeNotFound) {
					return err
				}
				return printJSON(struct {
					Badge ledger.BadgeMetadata `json:"badge"`
					Owner ledger.Principal     `json:"owner,omitempty"`
				}{
					Badge: meta,
					Owner: owner,
				})
			})
		},
	}
	return cmd
}

func settingsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show the ledger settings and authorized callers",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			runOffline(cmd, func(l *offlineLedger, _ *config.Config) error {
				settings, err := l.state.GetSettings()
				if err != nil {
					return err
				}
				callers, err := l.state.GetAuthorizedCallers()
				if err != nil {
					return err
				}
				totalStaked, err := l.state.TotalStaked()
				if err != nil {
					return err
				}
				return printJSON(struct {
					Settings          ledger.Settings    `json:"settings"`
					AuthorizedCallers []ledger.Principal `json:"authorized_callers"`
					TotalStaked       uint64             `json:"total_staked"`
				}{
					Settings:          settings,
					AuthorizedCallers: callers,
					TotalStaked:       totalStaked,
				})
			})
		},
	}
	return cmd
}

func reindexCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the badge ownership index from the NFT records",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			runOffline(cmd, func(l *offlineLedger, _ *config.Config) error {
				mismatches, err := l.state.VerifyOwnershipIndex()
				if err != nil {
					return err
				}
				for _, mismatch := range mismatches {
					slog.Warn(
						"badge ownership index mismatch",
						"component", programName,
						"mismatch", mismatch.String(),
					)
				}
				count, err := l.state.RebuildOwnershipIndex()
				if err != nil {
					return err
				}
				fmt.Printf(
					"rebuilt %d ownership entries, %d mismatches fixed\n",
					count,
					len(mismatches),
				)
				return nil
			})
		},
	}
	return cmd
}

func fundCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fund <principal> <amount>",
		Short: "Credit currency to an account (dev mode only)",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			runOffline(cmd, func(l *offlineLedger, cfg *config.Config) error {
				if !cfg.DevMode {
					return config.ErrDevModeRequired
				}
				principal, err := ledger.ParsePrincipal(args[0])
				if err != nil {
					return err
				}
				amount, err := strconv.ParseUint(args[1], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid amount: %w", err)
				}
				var balance uint64
				txn := l.db.Transaction(true)
				err = txn.Do(func(txn *database.Txn) error {
					if err := l.custody.Credit(txn, principal.String(), amount); err != nil {
						return err
					}
					newBalance, err := l.custody.Balance(txn, principal.String())
					balance = newBalance
					return err
				})
				if err != nil {
					return err
				}
				fmt.Printf("%s balance: %d\n", principal, balance)
				return nil
			})
		},
	}
	return cmd
}
