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

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/blinklabs-io/trustledger/database/plugin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetGlobalConfig(t *testing.T) {
	t.Helper()
	globalConfig = defaultConfig()
	// Keep the user and system config files out of the test
	t.Setenv("HOME", t.TempDir())
}

type noopPlugin struct{}

func (noopPlugin) Start() error { return nil }
func (noopPlugin) Stop() error  { return nil }

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	tmpFile := filepath.Join(t.TempDir(), "trustledger.yaml")
	require.NoError(t, os.WriteFile(tmpFile, []byte(content), 0o600))
	return tmpFile
}

func TestLoad_WithoutConfigFile_UsesDefaults(t *testing.T) {
	resetGlobalConfig(t)
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, defaultConfig(), cfg)
}

func TestLoad_CompareFullStruct(t *testing.T) {
	resetGlobalConfig(t)
	tmpFile := writeConfigFile(t, `
dataDir: "/var/lib/trustledger"
blobPlugin: "badger"
metadataPlugin: "postgres"
listenAddress: "127.0.0.1:9000"
tlsCertFilePath: "cert1.pem"
tlsKeyFilePath: "key1.pem"
bindAddr: "127.0.0.1"
metricsPort: 8088
maxRequestsPerIp: 16
owner: "trust1qqqsyqcyq5rqwzqf3k3vp4"
custodyAccount: "vault"
blockInterval: "5s"
genesisTime: "2025-01-01T00:00:00Z"
shutdownTimeout: "10s"
devMode: true
tracing: true
tracingStdout: true
`)
	expected := &Config{
		DataDir:          "/var/lib/trustledger",
		BlobPlugin:       "badger",
		MetadataPlugin:   "postgres",
		ListenAddress:    "127.0.0.1:9000",
		TlsCertFilePath:  "cert1.pem",
		TlsKeyFilePath:   "key1.pem",
		BindAddr:         "127.0.0.1",
		MetricsPort:      8088,
		MaxRequestsPerIp: 16,
		Owner:            "trust1qqqsyqcyq5rqwzqf3k3vp4",
		CustodyAccount:   "vault",
		BlockInterval:    "5s",
		GenesisTime:      "2025-01-01T00:00:00Z",
		ShutdownTimeout:  "10s",
		DevMode:          true,
		Tracing:          true,
		TracingStdout:    true,
	}
	actual, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	assert.Equal(t, expected, actual)
}

func TestLoad_ConfigSectionOverlaysDefaults(t *testing.T) {
	resetGlobalConfig(t)
	tmpFile := writeConfigFile(t, `
config:
  devMode: true
  metricsPort: 9100
`)
	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	assert.True(t, cfg.DevMode)
	assert.Equal(t, uint(9100), cfg.MetricsPort)
	// Untouched values keep their defaults
	assert.Equal(t, ".trustledger", cfg.DataDir)
	assert.Equal(t, DefaultBlockInterval, cfg.BlockInterval)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	resetGlobalConfig(t)
	tmpFile := writeConfigFile(t, `
listenAddress: "127.0.0.1:9000"
owner: "from-file"
`)
	t.Setenv("TRUSTLEDGER_LISTEN_ADDRESS", "0.0.0.0:7000")
	t.Setenv("TRUSTLEDGER_DATABASE_METADATA_PLUGIN", "mysql")
	t.Setenv("TRUSTLEDGER_DEV_MODE", "true")
	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:7000", cfg.ListenAddress)
	assert.Equal(t, "mysql", cfg.MetadataPlugin)
	assert.True(t, cfg.DevMode)
	assert.Equal(t, "from-file", cfg.Owner)
}

func TestLoad_DatabasePluginSection(t *testing.T) {
	resetGlobalConfig(t)
	var host string
	var port uint64
	plugin.Register(plugin.PluginEntry{
		Type:               plugin.PluginTypeMetadata,
		Name:               "cfgtestdb",
		NewFromOptionsFunc: func() plugin.Plugin { return noopPlugin{} },
		Options: []plugin.PluginOption{
			{Name: "host", Type: plugin.PluginOptionTypeString, Dest: &host},
			{Name: "port", Type: plugin.PluginOptionTypeUint, Dest: &port},
		},
	})
	tmpFile := writeConfigFile(t, `
database:
  metadata:
    plugin: cfgtestdb
    cfgtestdb:
      host: db.internal
      port: 5433
`)
	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	assert.Equal(t, "cfgtestdb", cfg.MetadataPlugin)
	assert.Equal(t, "db.internal", host)
	assert.Equal(t, uint64(5433), port)
}

func TestLoad_InvalidDurations(t *testing.T) {
	tests := map[string]string{
		"block interval":   `blockInterval: "soon"`,
		"negative block":   `blockInterval: "-1s"`,
		"genesis time":     `genesisTime: "yesterday"`,
		"shutdown timeout": `shutdownTimeout: "forever"`,
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			resetGlobalConfig(t)
			_, err := LoadConfig(writeConfigFile(t, content))
			require.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	resetGlobalConfig(t)
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestDurations(t *testing.T) {
	cfg := &Config{
		BlockInterval:   "2s",
		GenesisTime:     "2025-06-01T12:00:00Z",
		ShutdownTimeout: "1m",
	}
	interval, err := cfg.BlockIntervalDuration()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, interval)
	genesis, err := cfg.Genesis()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), genesis)
	timeout, err := cfg.ShutdownTimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, time.Minute, timeout)

	empty := &Config{}
	interval, err = empty.BlockIntervalDuration()
	require.NoError(t, err)
	assert.Zero(t, interval)
	genesis, err = empty.Genesis()
	require.NoError(t, err)
	assert.True(t, genesis.IsZero())
}

func TestContext(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))
	cfg := defaultConfig()
	ctx := WithContext(context.Background(), cfg)
	assert.Same(t, cfg, FromContext(ctx))
}
