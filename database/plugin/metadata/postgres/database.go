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

package postgres

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/blinklabs-io/trustledger/database/plugin/metadata/internal/gormstore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// MetadataStorePostgres keeps the ledger tables in Postgres. The connection
// is opened by Start
type MetadataStorePostgres struct {
	*gormstore.Store
	logger *slog.Logger
	server gormstore.ServerOptions
}

// New returns an unopened store for server. Empty fields fall back to a
// local server with a trustledger database
func New(
	server gormstore.ServerOptions,
	logger *slog.Logger,
) *MetadataStorePostgres {
	if server.Host == "" {
		server.Host = "localhost"
	}
	if server.Port == 0 {
		server.Port = 5432
	}
	if server.User == "" {
		server.User = "postgres"
	}
	if server.Database == "" {
		server.Database = "trustledger"
	}
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &MetadataStorePostgres{
		logger: logger,
		server: server,
	}
}

// DSN returns the connection string used by Start. TLS and other connection
// parameters are only reachable through an explicit DSN
func (d *MetadataStorePostgres) DSN() string {
	if dsn := strings.TrimSpace(d.server.DSN); dsn != "" {
		return dsn
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		d.server.Host,
		d.server.Port,
		d.server.User,
		d.server.Password,
		d.server.Database,
	)
}

// Start implements the plugin.Plugin interface
func (d *MetadataStorePostgres) Start() error {
	store, err := gormstore.OpenServer(postgres.Open(d.DSN()), d.logger)
	d.Store = store
	if err != nil {
		return fmt.Errorf("open postgres metadata store: %w", err)
	}
	d.logger.Info(
		"connected to postgres metadata store",
		"component", "database",
		"host", d.server.Host,
		"database", d.server.Database,
	)
	return nil
}

// Stop implements the plugin.Plugin interface
func (d *MetadataStorePostgres) Stop() error {
	return d.Close()
}

// Close closes the connection pool. It does nothing before Start
func (d *MetadataStorePostgres) Close() error {
	if d.Store == nil {
		return nil
	}
	return d.Store.Close()
}

// DB returns the gorm handle, or nil before Start
func (d *MetadataStorePostgres) DB() *gorm.DB {
	if d.Store == nil {
		return nil
	}
	return d.Store.DB()
}
