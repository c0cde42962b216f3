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

package ledger

import (
	"errors"
	"sync/atomic"
	"time"
)

// Clock supplies the current block height. Heights returned by a Clock never
// decrease
type Clock interface {
	BlockHeight() uint64
}

// ManualClock is a Clock advanced explicitly by its owner
type ManualClock struct {
	height atomic.Uint64
}

func NewManualClock(height uint64) *ManualClock {
	c := &ManualClock{}
	c.height.Store(height)
	return c
}

func (c *ManualClock) BlockHeight() uint64 {
	return c.height.Load()
}

// Advance moves the clock forward by count blocks and returns the new height
func (c *ManualClock) Advance(count uint64) uint64 {
	return c.height.Add(count)
}

// Set moves the clock to height. Moving backward is ignored
func (c *ManualClock) Set(height uint64) {
	for {
		cur := c.height.Load()
		if height <= cur {
			return
		}
		if c.height.CompareAndSwap(cur, height) {
			return
		}
	}
}

// TickerClock derives the block height from wall time: one block per
// interval since genesis
type TickerClock struct {
	genesis  time.Time
	interval time.Duration
	now      func() time.Time
	last     atomic.Uint64
}

func NewTickerClock(
	genesis time.Time,
	interval time.Duration,
) (*TickerClock, error) {
	if interval <= 0 {
		return nil, errors.New("block interval must be positive")
	}
	return &TickerClock{
		genesis:  genesis,
		interval: interval,
		now:      time.Now,
	}, nil
}

func (c *TickerClock) BlockHeight() uint64 {
	var height uint64
	if elapsed := c.now().Sub(c.genesis); elapsed > 0 {
		height = uint64(elapsed / c.interval) // #nosec G115
	}
	// Wall clock adjustments must not move the height backward
	for {
		last := c.last.Load()
		if height <= last {
			return last
		}
		if c.last.CompareAndSwap(last, height) {
			return height
		}
	}
}
