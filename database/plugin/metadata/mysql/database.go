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

package mysql

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/blinklabs-io/trustledger/database/plugin/metadata/internal/gormstore"
	"github.com/go-sql-driver/mysql"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// MySQL error returned when the target database does not exist
const mysqlErrUnknownDatabase = 1049

// MetadataStoreMysql keeps the ledger tables in MySQL. The connection is
// opened by Start, which also creates a missing database
type MetadataStoreMysql struct {
	*gormstore.Store
	logger *slog.Logger
	server gormstore.ServerOptions
}

// New returns an unopened store for server. Empty fields fall back to a
// local server with a trustledger database
func New(
	server gormstore.ServerOptions,
	logger *slog.Logger,
) *MetadataStoreMysql {
	if server.Host == "" {
		server.Host = "localhost"
	}
	if server.Port == 0 {
		server.Port = 3306
	}
	if server.User == "" {
		server.User = "root"
	}
	if server.Database == "" {
		server.Database = "trustledger"
	}
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &MetadataStoreMysql{
		logger: logger,
		server: server,
	}
}

// DSN returns the connection string used by Start. Times are read back as UTC
func (d *MetadataStoreMysql) DSN() string {
	if dsn := strings.TrimSpace(d.server.DSN); dsn != "" {
		return dsn
	}
	cfg := mysql.NewConfig()
	cfg.User = d.server.User
	cfg.Passwd = d.server.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(
		d.server.Host,
		strconv.FormatUint(d.server.Port, 10),
	)
	cfg.DBName = d.server.Database
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	return cfg.FormatDSN()
}

// Start implements the plugin.Plugin interface
func (d *MetadataStoreMysql) Start() error {
	dsn := d.DSN()
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return fmt.Errorf("parse mysql DSN: %w", err)
	}
	store, err := gormstore.OpenServer(gormmysql.Open(dsn), d.logger)
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlErrUnknownDatabase {
		if err := createDatabase(cfg); err != nil {
			return fmt.Errorf("create mysql database %q: %w", cfg.DBName, err)
		}
		store, err = gormstore.OpenServer(gormmysql.Open(dsn), d.logger)
	}
	d.Store = store
	if err != nil {
		return fmt.Errorf("open mysql metadata store: %w", err)
	}
	d.logger.Info(
		"connected to mysql metadata store",
		"component", "database",
		"address", cfg.Addr,
		"database", cfg.DBName,
	)
	return nil
}

// createDatabase connects without selecting a database and creates the one
// named by cfg
func createDatabase(cfg *mysql.Config) error {
	if cfg.DBName == "" {
		return errors.New("no database name in DSN")
	}
	adminCfg := cfg.Clone()
	adminCfg.DBName = ""
	adminDb, err := gorm.Open(
		gormmysql.Open(adminCfg.FormatDSN()),
		&gorm.Config{Logger: gormlogger.Discard},
	)
	if err != nil {
		return err
	}
	sqlDB, err := adminDb.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()
	return adminDb.Exec(
		"CREATE DATABASE IF NOT EXISTS " + quoteIdentifier(cfg.DBName),
	).Error
}

func quoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// Stop implements the plugin.Plugin interface
func (d *MetadataStoreMysql) Stop() error {
	return d.Close()
}

// Close closes the connection pool. It does nothing before Start
func (d *MetadataStoreMysql) Close() error {
	if d.Store == nil {
		return nil
	}
	return d.Store.Close()
}

// DB returns the gorm handle, or nil before Start
func (d *MetadataStoreMysql) DB() *gorm.DB {
	if d.Store == nil {
		return nil
	}
	return d.Store.DB()
}
