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

package node

import (
	"log/slog"
	"testing"

	"github.com/blinklabs-io/trustledger"
	"github.com/blinklabs-io/trustledger/internal/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestNodeOptions(t *testing.T) {
	cfg := &config.Config{
		ListenAddress:   "127.0.0.1:0",
		BlockInterval:   "0s",
		ShutdownTimeout: "5s",
	}
	opts, err := NodeOptions(cfg, slog.Default(), prometheus.NewRegistry())
	require.NoError(t, err)
	n, err := trustledger.New(trustledger.NewConfig(opts...))
	require.NoError(t, err)
	require.NoError(t, n.Stop())
}

func TestNodeOptionsInvalid(t *testing.T) {
	tests := []*config.Config{
		{BlockInterval: "often"},
		{GenesisTime: "2025-13-01"},
		{ShutdownTimeout: "later"},
	}
	for _, cfg := range tests {
		_, err := NodeOptions(cfg, slog.Default(), nil)
		require.Error(t, err, "config: %+v", cfg)
	}
}

func TestNodeOptionsRejectsBadOwner(t *testing.T) {
	cfg := &config.Config{Owner: "nobody"}
	opts, err := NodeOptions(cfg, slog.Default(), nil)
	require.NoError(t, err)
	_, err = trustledger.New(trustledger.NewConfig(opts...))
	require.Error(t, err)
}
