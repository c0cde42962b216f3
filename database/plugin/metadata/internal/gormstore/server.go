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

package gormstore

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/blinklabs-io/trustledger/database/plugin"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Ledger writes are serialized by the ledger, so a small pool covers the
// writer plus concurrent API queries
const (
	serverMaxOpenConns    = 8
	serverMaxIdleConns    = 2
	serverConnMaxLifetime = time.Hour
)

// ServerOptions locates a networked SQL server. A non-empty DSN replaces the
// individual fields
type ServerOptions struct {
	Host     string
	Port     uint64
	User     string
	Password string
	Database string
	DSN      string
}

// PluginOptions exposes the fields as plugin options named after product.
// The current values become the option defaults
func (o *ServerOptions) PluginOptions(product string) []plugin.PluginOption {
	return []plugin.PluginOption{
		{
			Name:         "host",
			Type:         plugin.PluginOptionTypeString,
			Description:  product + " host",
			DefaultValue: o.Host,
			Dest:         &(o.Host),
		},
		{
			Name:         "port",
			Type:         plugin.PluginOptionTypeUint,
			Description:  product + " port",
			DefaultValue: o.Port,
			Dest:         &(o.Port),
		},
		{
			Name:         "user",
			Type:         plugin.PluginOptionTypeString,
			Description:  product + " user",
			DefaultValue: o.User,
			Dest:         &(o.User),
		},
		{
			Name:         "password",
			Type:         plugin.PluginOptionTypeString,
			Description:  product + " password",
			DefaultValue: o.Password,
			Dest:         &(o.Password),
		},
		{
			Name:         "database",
			Type:         plugin.PluginOptionTypeString,
			Description:  product + " database holding the ledger tables",
			DefaultValue: o.Database,
			Dest:         &(o.Database),
		},
		{
			Name:         "dsn",
			Type:         plugin.PluginOptionTypeString,
			Description:  "full " + product + " DSN, overrides the other options",
			DefaultValue: o.DSN,
			Dest:         &(o.DSN),
		},
	}
}

// OpenServer connects through dialector, sizes the connection pool and
// prepares the ledger tables. The store is returned with a schema error so
// the caller can close it
func OpenServer(dialector gorm.Dialector, logger *slog.Logger) (*Store, error) {
	db, err := gorm.Open(
		dialector,
		&gorm.Config{
			Logger:                 gormlogger.Discard,
			SkipDefaultTransaction: true,
			PrepareStmt:            true,
		},
	)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("connection pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(serverMaxOpenConns)
	sqlDB.SetMaxIdleConns(serverMaxIdleConns)
	sqlDB.SetConnMaxLifetime(serverConnMaxLifetime)
	return New(db, logger)
}
