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

// Package testutil holds helpers shared by the ledger, custody, API and
// event bus tests
package testutil

import (
	"testing"
	"time"

	"github.com/blinklabs-io/trustledger/database"
	"github.com/stretchr/testify/require"
)

// NewDatabase opens an in-memory database that is closed when the test ends
func NewDatabase(t *testing.T) *database.Database {
	t.Helper()
	db, err := database.New(&database.Config{})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

// RequireReceive waits for a value on the given channel or fails the test
// if the timeout expires
func RequireReceive[T any](
	t *testing.T,
	ch <-chan T,
	timeout time.Duration,
	msg string,
) T {
	t.Helper()
	select {
	case v, ok := <-ch:
		if !ok {
			t.Fatalf("channel closed while waiting: %s", msg)
		}
		return v
	case <-time.After(timeout):
		t.Fatalf("timeout waiting for channel receive: %s", msg)
		var zero T
		return zero // unreachable
	}
}

// RequireNoReceive verifies that nothing arrives on the given channel within
// the specified duration. A closed channel counts as nothing received
func RequireNoReceive[T any](
	t *testing.T,
	ch <-chan T,
	duration time.Duration,
	msg string,
) {
	t.Helper()
	select {
	case v, ok := <-ch:
		if ok {
			t.Fatalf(
				"unexpected value received on channel: %v: %s",
				v,
				msg,
			)
		}
	case <-time.After(duration):
		// Expected: nothing received
	}
}
