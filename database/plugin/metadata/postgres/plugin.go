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
	"log/slog"

	"github.com/blinklabs-io/trustledger/database/plugin"
	"github.com/blinklabs-io/trustledger/database/plugin/metadata/internal/gormstore"
)

var cmdlineOptions = gormstore.ServerOptions{
	Host:     "localhost",
	Port:     5432,
	User:     "postgres",
	Database: "trustledger",
}

// Register plugin
func init() {
	plugin.Register(
		plugin.PluginEntry{
			Type:               plugin.PluginTypeMetadata,
			Name:               "postgres",
			Description:        "Postgres relational database",
			NewFromOptionsFunc: NewFromCmdlineOptions,
			Options:            cmdlineOptions.PluginOptions("Postgres"),
		},
	)
}

// FromCmdlineOptions returns an unopened store for the server named by the
// plugin options
func FromCmdlineOptions(logger *slog.Logger) *MetadataStorePostgres {
	return New(cmdlineOptions, logger)
}

func NewFromCmdlineOptions() plugin.Plugin {
	return FromCmdlineOptions(nil)
}
