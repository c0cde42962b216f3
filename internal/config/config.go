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
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"time"

	"github.com/blinklabs-io/trustledger/database/plugin"
	"github.com/blinklabs-io/trustledger/internal/sops"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type ctxKey string

const configContextKey ctxKey = "trustledger.config"

const (
	DefaultBlockInterval    = "10s"
	DefaultShutdownTimeout  = "30s"
	DefaultMaxRequestsPerIp = 64
)

func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configContextKey, cfg)
}

func FromContext(ctx context.Context) *Config {
	cfg, ok := ctx.Value(configContextKey).(*Config)
	if !ok {
		return nil
	}
	return cfg
}

const (
	DefaultBlobPlugin     = "badger"
	DefaultMetadataPlugin = "sqlite"
)

// ErrDevModeRequired is returned by commands that only run against a dev mode ledger
var ErrDevModeRequired = errors.New("dev mode is not enabled")

type tempConfig struct {
	Config   map[string]any            `yaml:"config,omitempty"`
	Database *databaseConfig           `yaml:"database,omitempty"`
	Blob     map[string]map[string]any `yaml:"blob,omitempty"`
	Metadata map[string]map[string]any `yaml:"metadata,omitempty"`
}

type databaseConfig struct {
	Blob     map[string]any `yaml:"blob,omitempty"`
	Metadata map[string]any `yaml:"metadata,omitempty"`
}

type Config struct {
	DataDir          string `yaml:"dataDir"          split_words:"true"`
	BlobPlugin       string `yaml:"blobPlugin"       envconfig:"DATABASE_BLOB_PLUGIN"`
	MetadataPlugin   string `yaml:"metadataPlugin"   envconfig:"DATABASE_METADATA_PLUGIN"`
	ListenAddress    string `yaml:"listenAddress"    split_words:"true"`
	TlsCertFilePath  string `yaml:"tlsCertFilePath"  envconfig:"TLS_CERT_FILE_PATH"`
	TlsKeyFilePath   string `yaml:"tlsKeyFilePath"   envconfig:"TLS_KEY_FILE_PATH"`
	BindAddr         string `yaml:"bindAddr"         split_words:"true"`
	Owner            string `yaml:"owner"`
	CustodyAccount   string `yaml:"custodyAccount"   split_words:"true"`
	BlockInterval    string `yaml:"blockInterval"    split_words:"true"`
	GenesisTime      string `yaml:"genesisTime"      split_words:"true"`
	ShutdownTimeout  string `yaml:"shutdownTimeout"  split_words:"true"`
	MetricsPort      uint   `yaml:"metricsPort"      split_words:"true"`
	MaxRequestsPerIp int    `yaml:"maxRequestsPerIp" split_words:"true"`
	DevMode          bool   `yaml:"devMode"          split_words:"true"`
	Tracing          bool   `yaml:"tracing"`
	TracingStdout    bool   `yaml:"tracingStdout"    split_words:"true"`
}

// BlockIntervalDuration returns the block interval. Zero freezes the block height
func (c *Config) BlockIntervalDuration() (time.Duration, error) {
	if c.BlockInterval == "" {
		return 0, nil
	}
	ret, err := time.ParseDuration(c.BlockInterval)
	if err != nil {
		return 0, fmt.Errorf("invalid block interval: %w", err)
	}
	if ret < 0 {
		return 0, fmt.Errorf("invalid block interval: %s", c.BlockInterval)
	}
	return ret, nil
}

// Genesis returns the configured genesis time in RFC 3339 format, or the
// zero time when unset
func (c *Config) Genesis() (time.Time, error) {
	if c.GenesisTime == "" {
		return time.Time{}, nil
	}
	ret, err := time.Parse(time.RFC3339, c.GenesisTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid genesis time: %w", err)
	}
	return ret, nil
}

func (c *Config) ShutdownTimeoutDuration() (time.Duration, error) {
	if c.ShutdownTimeout == "" {
		return 0, nil
	}
	ret, err := time.ParseDuration(c.ShutdownTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid shutdown timeout: %w", err)
	}
	return ret, nil
}

func (c *Config) validate() error {
	if _, err := c.BlockIntervalDuration(); err != nil {
		return err
	}
	if _, err := c.Genesis(); err != nil {
		return err
	}
	if _, err := c.ShutdownTimeoutDuration(); err != nil {
		return err
	}
	return nil
}

var globalConfig = defaultConfig()

func defaultConfig() *Config {
	return &Config{
		DataDir:          ".trustledger",
		BlobPlugin:       DefaultBlobPlugin,
		MetadataPlugin:   DefaultMetadataPlugin,
		ListenAddress:    ":8080",
		BindAddr:         "0.0.0.0",
		MetricsPort:      12799,
		MaxRequestsPerIp: DefaultMaxRequestsPerIp,
		CustodyAccount:   "trust-custody",
		BlockInterval:    DefaultBlockInterval,
		ShutdownTimeout:  DefaultShutdownTimeout,
	}
}

// readConfigFile returns the contents of a config file, decrypting it first
// when it carries SOPS metadata
func readConfigFile(configFile string) ([]byte, error) {
	buf, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	if !sops.IsEncrypted(buf) {
		return buf, nil
	}
	buf, err = sops.Decrypt(buf)
	if err != nil {
		return nil, fmt.Errorf("error decrypting config file: %w", err)
	}
	return buf, nil
}

// pluginSection splits a database.blob or database.metadata section into the
// selected plugin name and the per-plugin option maps
func pluginSection(
	sectionName string,
	section map[string]any,
) (string, map[string]map[string]any) {
	var pluginName string
	if pluginVal, exists := section["plugin"]; exists {
		if name, ok := pluginVal.(string); ok {
			pluginName = name
		}
	}
	options := make(map[string]map[string]any)
	for k, v := range section {
		if k == "plugin" {
			continue
		}
		val, ok := v.(map[string]any)
		if !ok {
			fmt.Fprintf(
				os.Stderr,
				"warning: skipping %s config entry %q: expected map, got %T\n",
				sectionName,
				k,
				v,
			)
			continue
		}
		options[k] = val
	}
	return pluginName, options
}

func LoadConfig(configFile string) (*Config, error) {
	// Load config file as YAML if provided
	if configFile == "" {
		// Check for config file in this path: ~/.trustledger/trustledger.yaml
		if homeDir, err := os.UserHomeDir(); err == nil {
			userPath := filepath.Join(homeDir, ".trustledger", "trustledger.yaml")
			if _, err := os.Stat(userPath); err == nil {
				configFile = userPath
			}
		}

		if configFile == "" {
			systemPath := "/etc/trustledger/trustledger.yaml"
			if _, err := os.Stat(systemPath); err == nil {
				configFile = systemPath
			}
		}
	}

	if configFile != "" {
		buf, err := readConfigFile(configFile)
		if err != nil {
			return nil, err
		}

		// First unmarshal into temp config to handle plugin sections
		var tempCfg tempConfig
		if err := yaml.Unmarshal(buf, &tempCfg); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}

		if tempCfg.Config != nil {
			// Overlay config values onto existing defaults
			configBytes, err := yaml.Marshal(tempCfg.Config)
			if err != nil {
				return nil, fmt.Errorf("error re-marshalling config: %w", err)
			}
			if err := yaml.Unmarshal(configBytes, globalConfig); err != nil {
				return nil, fmt.Errorf("error parsing config section: %w", err)
			}
		} else {
			if err := yaml.Unmarshal(buf, globalConfig); err != nil {
				return nil, fmt.Errorf("error parsing config file: %w", err)
			}
		}

		pluginConfig := make(map[string]map[string]map[string]any)
		if tempCfg.Blob != nil {
			pluginConfig["blob"] = tempCfg.Blob
		}
		if tempCfg.Metadata != nil {
			pluginConfig["metadata"] = tempCfg.Metadata
		}
		if tempCfg.Database != nil {
			if tempCfg.Database.Blob != nil {
				name, options := pluginSection("blob", tempCfg.Database.Blob)
				if name != "" {
					globalConfig.BlobPlugin = name
				}
				if pluginConfig["blob"] == nil {
					pluginConfig["blob"] = options
				} else {
					maps.Copy(pluginConfig["blob"], options)
				}
			}
			if tempCfg.Database.Metadata != nil {
				name, options := pluginSection("metadata", tempCfg.Database.Metadata)
				if name != "" {
					globalConfig.MetadataPlugin = name
				}
				if pluginConfig["metadata"] == nil {
					pluginConfig["metadata"] = options
				} else {
					maps.Copy(pluginConfig["metadata"], options)
				}
			}
		}
		if len(pluginConfig) > 0 {
			if err := plugin.ProcessConfig(pluginConfig); err != nil {
				return nil, fmt.Errorf(
					"error processing plugin config: %w",
					err,
				)
			}
		}
	}
	// Process environment variables
	if err := envconfig.Process("trustledger", globalConfig); err != nil {
		return nil, fmt.Errorf("error processing environment: %w", err)
	}

	// Process plugin environment variables
	if err := plugin.ProcessEnvVars(); err != nil {
		return nil, fmt.Errorf(
			"error processing plugin environment variables: %w",
			err,
		)
	}

	if err := globalConfig.validate(); err != nil {
		return nil, err
	}
	return globalConfig, nil
}

func GetConfig() *Config {
	return globalConfig
}
