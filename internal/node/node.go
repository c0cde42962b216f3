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
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	_ "net/http/pprof" // #nosec G108
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/blinklabs-io/trustledger"
	"github.com/blinklabs-io/trustledger/internal/config"
	"github.com/blinklabs-io/trustledger/ledger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NodeOptions builds the node configuration from the loaded config
func NodeOptions(
	cfg *config.Config,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
) ([]trustledger.ConfigOptionFunc, error) {
	blockInterval, err := cfg.BlockIntervalDuration()
	if err != nil {
		return nil, err
	}
	genesis, err := cfg.Genesis()
	if err != nil {
		return nil, err
	}
	shutdownTimeout, err := cfg.ShutdownTimeoutDuration()
	if err != nil {
		return nil, err
	}
	return []trustledger.ConfigOptionFunc{
		trustledger.WithLogger(logger),
		trustledger.WithDatabasePath(cfg.DataDir),
		trustledger.WithBlobPlugin(cfg.BlobPlugin),
		trustledger.WithMetadataPlugin(cfg.MetadataPlugin),
		trustledger.WithListenAddress(cfg.ListenAddress),
		trustledger.WithTlsCertFilePath(cfg.TlsCertFilePath),
		trustledger.WithTlsKeyFilePath(cfg.TlsKeyFilePath),
		trustledger.WithMaxRequestsPerIP(cfg.MaxRequestsPerIp),
		trustledger.WithOwner(ledger.Principal(cfg.Owner)),
		trustledger.WithCustodyAccount(ledger.Principal(cfg.CustodyAccount)),
		trustledger.WithBlockInterval(blockInterval),
		trustledger.WithGenesisTime(genesis),
		trustledger.WithShutdownTimeout(shutdownTimeout),
		trustledger.WithTracing(cfg.Tracing),
		trustledger.WithTracingStdout(cfg.TracingStdout),
		trustledger.WithPrometheusRegistry(promRegistry),
	}, nil
}

func Run(cfg *config.Config, logger *slog.Logger) error {
	logger.Debug(fmt.Sprintf("config: %+v", cfg), "component", "node")
	opts, err := NodeOptions(cfg, logger, prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}
	shutdownTimeout, _ := cfg.ShutdownTimeoutDuration()
	if shutdownTimeout <= 0 {
		shutdownTimeout = trustledger.DefaultShutdownTimeout
	}
	n, err := trustledger.New(trustledger.NewConfig(opts...))
	if err != nil {
		return err
	}
	// Metrics and debug listener
	http.Handle("/metrics", promhttp.Handler())
	metricsAddr := net.JoinHostPort(
		cfg.BindAddr,
		strconv.FormatUint(uint64(cfg.MetricsPort), 10),
	)
	logger.Info(
		"serving prometheus metrics on "+metricsAddr,
		"component", "node",
	)
	metricsServer := &http.Server{
		Addr:              metricsAddr,
		ReadHeaderTimeout: 60 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	metricsErrChan := make(chan error, 1)
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			metricsErrChan <- fmt.Errorf(
				"failed to start metrics listener: %w",
				err,
			)
		}
	}()
	shutdownMetrics := func() {
		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			shutdownTimeout,
		)
		defer cancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics server shutdown error", "error", err)
		}
	}

	// Wait for interrupt/termination signal
	signalCtx, signalCtxStop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer signalCtxStop()

	// Run node in goroutine
	errChan := make(chan error, 1)
	go func() {
		errChan <- n.Run(signalCtx)
	}()

	var runErr error
	select {
	case <-signalCtx.Done():
		logger.Info("signal received, initiating graceful shutdown")
		// Let Run return before tearing down the database
		runErr = <-errChan
	case runErr = <-errChan:
		if runErr != nil {
			logger.Error("node error", "error", runErr)
		} else {
			logger.Info("node stopped")
		}
	case runErr = <-metricsErrChan:
		logger.Error("metrics listener error", "error", runErr)
		signalCtxStop()
		<-errChan
	}
	shutdownMetrics()
	if err := n.Stop(); err != nil {
		logger.Error("shutdown errors occurred", "error", err)
		return errors.Join(runErr, err)
	}
	logger.Info("shutdown complete")
	return runErr
}
