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

// Package gormstore holds the metadata queries shared by the relational
// metadata plugins. Each plugin owns its connection and hands the opened
// gorm handle to a Store
package gormstore

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/blinklabs-io/trustledger/database/models"
	"github.com/blinklabs-io/trustledger/database/types"
	"gorm.io/gorm"
	"gorm.io/plugin/opentelemetry/tracing"
)

type Store struct {
	db     *gorm.DB
	logger *slog.Logger
}

// New wraps an opened gorm handle, enables tracing and creates the table schemas
func New(db *gorm.DB, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	s := &Store{
		db:     db,
		logger: logger,
	}
	// Configure tracing for GORM
	if err := s.db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return s, err
	}
	if err := s.migrate(); err != nil {
		return s, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	s.logger.Debug(fmt.Sprintf("creating table: %#v", &CommitTimestamp{}))
	if err := s.db.AutoMigrate(&CommitTimestamp{}); err != nil {
		return err
	}
	for _, model := range models.MigrateModels {
		s.logger.Debug(fmt.Sprintf("creating table: %#v", model))
		if err := s.db.AutoMigrate(model); err != nil {
			return err
		}
	}
	return nil
}

// DB returns the underlying GORM database handle
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Logger returns the logger shared with the owning plugin
func (s *Store) Logger() *slog.Logger {
	return s.logger
}

// Transaction begins a new database transaction
func (s *Store) Transaction() types.Txn {
	db := s.DB().Begin()
	if db.Error != nil {
		s.logger.Error(
			"failed to begin transaction",
			"component", "database",
			"error", db.Error,
		)
		return newFailedTxn(db.Error)
	}
	return newTxn(db)
}

// Close closes the underlying connection pool
func (s *Store) Close() error {
	// get DB handle from gorm.DB
	db, err := s.DB().DB()
	if err != nil {
		return fmt.Errorf("get database handle: %w", err)
	}
	return db.Close()
}

// resolveDB returns the handle a query should run against. A nil txn runs
// the query outside of any transaction
func (s *Store) resolveDB(txn types.Txn) (*gorm.DB, error) {
	if txn == nil {
		return s.DB(), nil
	}
	gormTxn, ok := txn.(*Txn)
	if !ok {
		return nil, types.ErrTxnWrongType
	}
	if gormTxn.beginErr != nil {
		return nil, gormTxn.beginErr
	}
	if gormTxn.finished {
		return nil, ErrTxnFinished
	}
	return gormTxn.db, nil
}
