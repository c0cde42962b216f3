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

// Package api serves the ledger operations and queries as a JSON HTTP API
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"connectrpc.com/grpchealth"
	"github.com/blinklabs-io/trustledger/ledger"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// ServiceName is reported by the gRPC health endpoint
const ServiceName = "trustledger.v1.LedgerService"

const (
	DefaultListenAddress = ":8080"

	maxRequestBodySize = 1 << 20
)

// Config holds the API server settings
type Config struct {
	ListenAddress   string
	TlsCertFilePath string
	TlsKeyFilePath  string

	// MaxRequestsPerIP limits concurrent requests from one client address.
	// Zero disables the limit
	MaxRequestsPerIP int
}

var _ LedgerService = (*ledger.LedgerState)(nil)

// Api is the ledger HTTP API server
type Api struct {
	config     Config
	logger     *slog.Logger
	ledger     LedgerService
	httpServer *http.Server
	listenAddr net.Addr
	limiter    *ipLimiter
	mu         sync.Mutex
}

func New(
	cfg Config,
	ledgerService LedgerService,
	logger *slog.Logger,
) *Api {
	if logger == nil {
		logger = slog.New(
			slog.NewJSONHandler(io.Discard, nil),
		)
	}
	logger = logger.With("component", "api")
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = DefaultListenAddress
	}
	a := &Api{
		config: cfg,
		logger: logger,
		ledger: ledgerService,
	}
	if cfg.MaxRequestsPerIP > 0 {
		a.limiter = newIPLimiter(cfg.MaxRequestsPerIP)
	}
	return a
}

// Handler returns the HTTP handler serving every API route
func (a *Api) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", a.handleRoot)
	mux.HandleFunc("GET /health", a.handleHealth)
	mux.Handle(
		grpchealth.NewHandler(
			grpchealth.NewStaticChecker(ServiceName),
		),
	)
	// Queries
	mux.HandleFunc("GET /api/v1/settings", a.handleSettings)
	mux.HandleFunc("GET /api/v1/paused", a.handlePaused)
	mux.HandleFunc("GET /api/v1/authorized", a.handleAuthorizedCallers)
	mux.HandleFunc("GET /api/v1/authorized/{principal}", a.handleIsAuthorized)
	mux.HandleFunc("GET /api/v1/events", a.handleEvents)
	mux.HandleFunc("GET /api/v1/accounts/{principal}", a.handleAccount)
	mux.HandleFunc("GET /api/v1/accounts/{principal}/stake", a.handleStake)
	mux.HandleFunc(
		"GET /api/v1/accounts/{principal}/reputation",
		a.handleReputation,
	)
	mux.HandleFunc(
		"GET /api/v1/accounts/{principal}/badges",
		a.handleAccountBadges,
	)
	mux.HandleFunc(
		"GET /api/v1/accounts/{principal}/events",
		a.handleAccountEvents,
	)
	mux.HandleFunc("GET /api/v1/badges/{id}", a.handleBadge)
	mux.HandleFunc("GET /api/v1/badges/{id}/owner", a.handleBadgeOwner)
	mux.HandleFunc(
		"GET /api/v1/badges/{id}/owners/{principal}",
		a.handleUserOwnsBadge,
	)
	// Operations
	mux.HandleFunc("POST /api/v1/stake", a.handleStakeOp)
	mux.HandleFunc("POST /api/v1/unstake", a.handleUnstakeOp)
	mux.HandleFunc("POST /api/v1/partial-unstake", a.handlePartialUnstakeOp)
	mux.HandleFunc(
		"POST /api/v1/reputation/increment",
		a.handleIncrementReputationOp,
	)
	mux.HandleFunc(
		"POST /api/v1/reputation/decrement",
		a.handleDecrementReputationOp,
	)
	mux.HandleFunc("POST /api/v1/reputation/decay", a.handleDecayReputationOp)
	mux.HandleFunc("POST /api/v1/badges", a.handleMintBadgeOp)
	mux.HandleFunc("POST /api/v1/badges/{id}/transfer", a.handleTransferBadgeOp)
	mux.HandleFunc("POST /api/v1/badges/{id}/burn", a.handleBurnBadgeOp)
	mux.HandleFunc("POST /api/v1/admin/owner", a.handleSetOwnerOp)
	mux.HandleFunc("POST /api/v1/admin/paused", a.handleSetPausedOp)
	mux.HandleFunc("POST /api/v1/admin/authorized", a.handleSetAuthorizedOp)
	mux.HandleFunc("POST /api/v1/admin/decay-rate", a.handleSetDecayRateOp)
	mux.HandleFunc("POST /api/v1/admin/min-stake", a.handleSetMinStakeOp)
	if a.limiter != nil {
		return a.limiter.middleware(mux)
	}
	return mux
}

// Start starts the HTTP server in a background goroutine
func (a *Api) Start(
	ctx context.Context,
) error {
	a.mu.Lock()
	if a.httpServer != nil {
		a.mu.Unlock()
		return errors.New("server already started")
	}
	handler := a.Handler()
	useTls := a.config.TlsCertFilePath != "" && a.config.TlsKeyFilePath != ""
	if !useTls {
		// Use h2c so we can serve HTTP/2 without TLS
		handler = h2c.NewHandler(handler, &http2.Server{})
	}
	server := &http.Server{
		Addr:              a.config.ListenAddress,
		Handler:           handler,
		ReadHeaderTimeout: 60 * time.Second,
	}
	a.httpServer = server
	a.mu.Unlock()

	// Bind first so that port conflicts are reported to the caller
	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		a.mu.Lock()
		a.httpServer = nil
		a.mu.Unlock()
		return fmt.Errorf("failed to listen for API server: %w", err)
	}
	a.mu.Lock()
	a.listenAddr = ln.Addr()
	a.mu.Unlock()
	go func() {
		var err error
		if useTls {
			err = server.ServeTLS(
				ln,
				a.config.TlsCertFilePath,
				a.config.TlsKeyFilePath,
			)
		} else {
			err = server.Serve(ln)
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error(
				"API server error",
				"error", err,
			)
		}
	}()
	a.logger.Info(
		"API listener started",
		"address", ln.Addr().String(),
		"tls", useTls,
	)

	// Monitor context for cancellation
	go func() {
		<-ctx.Done()
		//nolint:contextcheck
		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			30*time.Second,
		)
		defer cancel()
		//nolint:contextcheck
		if err := a.Stop(shutdownCtx); err != nil {
			a.logger.Error(
				"failed to shutdown API server on context cancellation",
				"error", err,
			)
		}
	}()
	return nil
}

// Addr returns the address the server is listening on, or nil if it is not
// running
func (a *Api) Addr() net.Addr {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.httpServer == nil {
		return nil
	}
	return a.listenAddr
}

// Stop gracefully shuts down the HTTP server
func (a *Api) Stop(
	ctx context.Context,
) error {
	a.mu.Lock()
	srv := a.httpServer
	a.httpServer = nil
	a.mu.Unlock()

	if srv != nil {
		a.logger.Debug("shutting down API server")
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown API server: %w", err)
		}
	}
	return nil
}
