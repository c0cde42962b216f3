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

package metadata

import (
	"fmt"
	"log/slog"

	"github.com/blinklabs-io/trustledger/database/models"
	"github.com/blinklabs-io/trustledger/database/plugin"
	"github.com/blinklabs-io/trustledger/database/plugin/metadata/mysql"
	"github.com/blinklabs-io/trustledger/database/plugin/metadata/postgres"
	"github.com/blinklabs-io/trustledger/database/plugin/metadata/sqlite"
	"github.com/blinklabs-io/trustledger/database/types"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

type MetadataStore interface {
	// Database
	Close() error
	DB() *gorm.DB
	GetCommitTimestamp() (int64, error)
	SetCommitTimestamp(int64, types.Txn) error
	Transaction() types.Txn

	// Accounts
	GetAccount(string, types.Txn) (*models.Account, error)
	GetAccounts(types.Txn) ([]models.Account, error)
	SetAccount(*models.Account, types.Txn) error

	// Authorization
	GetAuthorizedCaller(string, types.Txn) (*models.AuthorizedCaller, error)
	GetAuthorizedCallers(types.Txn) ([]models.AuthorizedCaller, error)
	SetAuthorizedCaller(
		string, // principal
		bool, // authorized
		uint64, // height
		types.Txn,
	) error

	// Badges
	GetBadge(uint64, types.Txn) (*models.Badge, error)
	SetBadge(*models.Badge, types.Txn) error
	GetBadgeOwnerships(string, types.Txn) ([]models.BadgeOwnership, error)
	GetAllBadgeOwnerships(types.Txn) ([]models.BadgeOwnership, error)
	SetBadgeOwnership(
		uint64, // badge ID
		string, // owner
		types.Txn,
	) error
	DeleteBadgeOwnership(uint64, types.Txn) error
	DeleteBadgeOwnerships(types.Txn) error

	// Settings
	GetSettings(types.Txn) (*models.Settings, error)
	SetSettings(*models.Settings, types.Txn) error

	// Events
	AddEvent(*models.LedgerEvent, types.Txn) error
	GetEvents(
		string, // principal
		uint, // after ID
		int, // limit
		types.Txn,
	) ([]models.LedgerEvent, error)
}

// New returns a metadata store for the named plugin. The built-in plugins use
// the caller's logger; sqlite also takes the caller's data directory while the
// server plugins read their connection from the plugin options
func New(
	pluginName, dataDir string,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
) (MetadataStore, error) {
	switch pluginName {
	case "sqlite":
		return sqlite.New(dataDir, logger, promRegistry)
	case "postgres":
		return startServerStore(postgres.FromCmdlineOptions(logger))
	case "mysql":
		return startServerStore(mysql.FromCmdlineOptions(logger))
	}
	p, err := plugin.StartPlugin(plugin.PluginTypeMetadata, pluginName)
	if err != nil {
		return nil, err
	}
	metadataStore, ok := p.(MetadataStore)
	if !ok {
		return nil, fmt.Errorf(
			"plugin '%s' does not implement MetadataStore interface",
			pluginName,
		)
	}
	return metadataStore, nil
}

type serverStore interface {
	MetadataStore
	Start() error
}

func startServerStore(store serverStore) (MetadataStore, error) {
	if err := store.Start(); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}
