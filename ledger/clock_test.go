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

package ledger_test

import (
	"testing"
	"time"

	"github.com/blinklabs-io/trustledger/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManualClock(t *testing.T) {
	c := ledger.NewManualClock(5)
	assert.Equal(t, uint64(5), c.BlockHeight())
	assert.Equal(t, uint64(8), c.Advance(3))
	c.Set(4)
	assert.Equal(t, uint64(8), c.BlockHeight())
	c.Set(20)
	assert.Equal(t, uint64(20), c.BlockHeight())
}

func TestTickerClock(t *testing.T) {
	_, err := ledger.NewTickerClock(time.Now(), 0)
	require.Error(t, err)

	c, err := ledger.NewTickerClock(time.Now().Add(-time.Hour), time.Minute)
	require.NoError(t, err)
	height := c.BlockHeight()
	assert.GreaterOrEqual(t, height, uint64(60))
	assert.LessOrEqual(t, height, uint64(61))

	future, err := ledger.NewTickerClock(time.Now().Add(time.Hour), time.Minute)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), future.BlockHeight())
}
