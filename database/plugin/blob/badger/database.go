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

package badger

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// Subdirectory of the data dir holding the badger files
	blobDirName = "blob"

	gcInterval     = 5 * time.Minute
	gcDiscardRatio = 0.5
)

// BlobStoreBadger keeps the NFT and custody balance records in badger
type BlobStoreBadger struct {
	promRegistry   prometheus.Registerer
	db             *badger.DB
	logger         *slog.Logger
	txnsTotal      *prometheus.CounterVec
	gcStop         chan struct{}
	gcWg           sync.WaitGroup
	dataDir        string
	blockCacheSize uint64
	indexCacheSize uint64
	gcEnabled      bool
}

// New opens the store. Without a data dir the store lives in memory and the
// value log is never collected
func New(opts ...BlobStoreBadgerOptionFunc) (*BlobStoreBadger, error) {
	d := &BlobStoreBadger{
		gcEnabled:      true,
		blockCacheSize: DefaultBlockCacheSize,
		indexCacheSize: DefaultIndexCacheSize,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		d.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	badgerOpts, err := d.badgerOptions()
	if err != nil {
		return nil, err
	}
	d.db, err = badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	if d.promRegistry != nil {
		d.registerBlobMetrics()
	}
	if d.gcEnabled {
		d.gcStop = make(chan struct{})
		d.gcWg.Add(1)
		go d.runGc()
	}
	return d, nil
}

func (d *BlobStoreBadger) badgerOptions() (badger.Options, error) {
	var opts badger.Options
	if d.dataDir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
		d.gcEnabled = false
	} else {
		blobDir := filepath.Join(d.dataDir, blobDirName)
		if err := os.MkdirAll(blobDir, 0o755); err != nil {
			return opts, fmt.Errorf("create blob dir: %w", err)
		}
		opts = badger.DefaultOptions(blobDir).WithCompression(options.Snappy)
	}
	// INFO is too chatty for a store that only holds small records
	opts = opts.
		WithLogger(NewBadgerLogger(d.logger)).
		WithLoggingLevel(badger.WARNING).
		WithBlockCacheSize(int64(d.blockCacheSize)). //nolint:gosec // bounded by configuration
		WithIndexCacheSize(int64(d.indexCacheSize))  //nolint:gosec // bounded by configuration
	return opts, nil
}

// runGc rewrites value log files on an interval until the store is closed
func (d *BlobStoreBadger) runGc() {
	defer d.gcWg.Done()
	ticker := time.NewTicker(gcInterval)
	defer ticker.Stop()
	for {
		select {
		case <-d.gcStop:
			return
		case <-ticker.C:
			rewrites, err := d.collectValueLog()
			if err != nil {
				d.logger.Warn(
					"blob value log GC failed",
					"component", "database",
					"error", err,
				)
			} else if rewrites > 0 {
				d.logger.Debug(
					"blob value log GC finished",
					"component", "database",
					"rewrites", rewrites,
				)
			}
		}
	}
}

// collectValueLog rewrites value log files until badger reports nothing left
// worth rewriting
func (d *BlobStoreBadger) collectValueLog() (int, error) {
	rewrites := 0
	for {
		err := d.db.RunValueLogGC(gcDiscardRatio)
		if errors.Is(err, badger.ErrNoRewrite) {
			return rewrites, nil
		}
		if err != nil {
			return rewrites, err
		}
		rewrites++
	}
}

// Start implements the plugin.Plugin interface. The store is opened by New
func (d *BlobStoreBadger) Start() error {
	return nil
}

// Stop implements the plugin.Plugin interface
func (d *BlobStoreBadger) Stop() error {
	return d.Close()
}

// Close stops the value log GC and closes badger
func (d *BlobStoreBadger) Close() error {
	if d.gcStop != nil {
		close(d.gcStop)
		d.gcWg.Wait()
		d.gcStop = nil
	}
	return d.db.Close()
}

// DB returns the badger handle
func (d *BlobStoreBadger) DB() *badger.DB {
	return d.db
}
