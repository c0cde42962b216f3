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

package trustledger

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/blinklabs-io/trustledger/ledger"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	DefaultBlockInterval   = 10 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
)

type Config struct {
	promRegistry     prometheus.Registerer
	logger           *slog.Logger
	clock            ledger.Clock
	genesis          time.Time
	dataDir          string
	blobPlugin       string
	metadataPlugin   string
	listenAddress    string
	tlsCertFilePath  string
	tlsKeyFilePath   string
	maxRequestsPerIP int
	owner            ledger.Principal
	custodyAccount   ledger.Principal
	blockInterval    time.Duration
	shutdownTimeout  time.Duration
	tracing          bool
	tracingStdout    bool
}

func (n *Node) configValidate() error {
	if n.config.owner != "" {
		if _, err := ledger.ParsePrincipal(string(n.config.owner)); err != nil {
			return fmt.Errorf("invalid owner: %w", err)
		}
	}
	if n.config.blockInterval < 0 {
		return fmt.Errorf(
			"invalid block interval: %s",
			n.config.blockInterval,
		)
	}
	if (n.config.tlsCertFilePath == "") != (n.config.tlsKeyFilePath == "") {
		return errors.New(
			"TLS requires both a certificate and a key file",
		)
	}
	return nil
}

// ConfigOptionFunc is a type that represents functions that modify the node config
type ConfigOptionFunc func(*Config)

// NewConfig creates a new trustledger config with the specified options
func NewConfig(opts ...ConfigOptionFunc) Config {
	c := Config{
		// Default logger will throw away logs
		// We do this so we don't have to add guards around every log operation
		logger:          slog.New(slog.NewJSONHandler(io.Discard, nil)),
		blockInterval:   DefaultBlockInterval,
		shutdownTimeout: DefaultShutdownTimeout,
	}
	// Apply options
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithDatabasePath specifies the persistent data directory to use. The default is to store everything in memory
func WithDatabasePath(dataDir string) ConfigOptionFunc {
	return func(c *Config) {
		c.dataDir = dataDir
	}
}

// WithBlobPlugin specifies the blob storage plugin to use
func WithBlobPlugin(plugin string) ConfigOptionFunc {
	return func(c *Config) {
		c.blobPlugin = plugin
	}
}

// WithMetadataPlugin specifies the metadata storage plugin to use
func WithMetadataPlugin(plugin string) ConfigOptionFunc {
	return func(c *Config) {
		c.metadataPlugin = plugin
	}
}

// WithLogger specifies the logger to use. This defaults to discarding log output
func WithLogger(logger *slog.Logger) ConfigOptionFunc {
	return func(c *Config) {
		c.logger = logger
	}
}

// WithPrometheusRegistry specifies a prometheus.Registerer instance to add metrics to. In most cases, prometheus.DefaultRegistry would be
// a good choice to get metrics working
func WithPrometheusRegistry(registry prometheus.Registerer) ConfigOptionFunc {
	return func(c *Config) {
		c.promRegistry = registry
	}
}

// WithListenAddress specifies the address for the HTTP API. An empty address disables the API
func WithListenAddress(address string) ConfigOptionFunc {
	return func(c *Config) {
		c.listenAddress = address
	}
}

// WithTlsCertFilePath specifies the path to the TLS certificate for the HTTP API
func WithTlsCertFilePath(path string) ConfigOptionFunc {
	return func(c *Config) {
		c.tlsCertFilePath = path
	}
}

// WithTlsKeyFilePath specifies the path to the TLS key for the HTTP API
func WithTlsKeyFilePath(path string) ConfigOptionFunc {
	return func(c *Config) {
		c.tlsKeyFilePath = path
	}
}

// WithMaxRequestsPerIP limits concurrent HTTP API requests from a single client address. Zero disables the limit
func WithMaxRequestsPerIP(maxRequests int) ConfigOptionFunc {
	return func(c *Config) {
		c.maxRequestsPerIP = maxRequests
	}
}

// WithOwner specifies the principal that owns a newly created ledger. It has no effect once the ledger settings exist
func WithOwner(owner ledger.Principal) ConfigOptionFunc {
	return func(c *Config) {
		c.owner = owner
	}
}

// WithCustodyAccount specifies the principal that holds staked funds
func WithCustodyAccount(account ledger.Principal) ConfigOptionFunc {
	return func(c *Config) {
		c.custodyAccount = account
	}
}

// WithClock specifies the block height source. This takes precedence over the block interval and genesis time
func WithClock(clock ledger.Clock) ConfigOptionFunc {
	return func(c *Config) {
		c.clock = clock
	}
}

// WithBlockInterval specifies how often the block height advances. A zero interval freezes the height at 0
func WithBlockInterval(interval time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.blockInterval = interval
	}
}

// WithGenesisTime specifies the time of block height 0. The default is the node start time
func WithGenesisTime(genesis time.Time) ConfigOptionFunc {
	return func(c *Config) {
		c.genesis = genesis
	}
}

// WithTracing enables tracing. By default, spans are submitted to a HTTP(s) endpoint using OTLP. This can be configured
// using the OTEL_EXPORTER_OTLP_* env vars documented in the README for [go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp]
func WithTracing(tracing bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracing = tracing
	}
}

// WithTracingStdout enables tracing output to stdout. This also requires tracing to enabled separately. This is mostly useful for debugging
func WithTracingStdout(stdout bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracingStdout = stdout
	}
}

// WithShutdownTimeout specifies the timeout for graceful shutdown. The default is 30 seconds
func WithShutdownTimeout(timeout time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.shutdownTimeout = timeout
	}
}
