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

package blob

import (
	"fmt"
	"log/slog"

	"github.com/blinklabs-io/trustledger/database/plugin"
	"github.com/blinklabs-io/trustledger/database/plugin/blob/badger"
	"github.com/blinklabs-io/trustledger/database/types"
	"github.com/prometheus/client_golang/prometheus"
)

type BlobStore interface {
	plugin.Plugin
	Close() error
	NewTransaction(bool) types.Txn
	Get(types.Txn, []byte) ([]byte, error)
	Set(types.Txn, []byte, []byte) error
	Delete(types.Txn, []byte) error
	NewIterator(types.Txn, types.BlobIteratorOptions) types.BlobIterator

	GetCommitTimestamp() (int64, error)
	SetCommitTimestamp(int64, types.Txn) error
}

// New returns a blob store for the named plugin. The built-in badger plugin
// takes its tuning from the plugin options but uses the caller's logger,
// metrics registry and data directory. Anything else goes through the plugin
// registry
func New(
	pluginName string,
	dataDir string,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
) (BlobStore, error) {
	if pluginName == "badger" {
		return badger.FromCmdlineOptions(
			badger.WithDataDir(dataDir),
			badger.WithLogger(logger),
			badger.WithPromRegistry(promRegistry),
		)
	}
	p, err := plugin.StartPlugin(plugin.PluginTypeBlob, pluginName)
	if err != nil {
		return nil, err
	}
	blobStore, ok := p.(BlobStore)
	if !ok {
		return nil, fmt.Errorf(
			"plugin '%s' does not implement BlobStore interface",
			pluginName,
		)
	}
	return blobStore, nil
}
