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

package types_test

import (
	"database/sql"
	"database/sql/driver"
	"math"
	"reflect"
	"testing"

	"github.com/blinklabs-io/trustledger/database/types"
)

func TestTypesScanValue(t *testing.T) {
	testDefs := []struct {
		origValue     any
		expectedValue any
	}{
		{
			origValue: func(v types.Uint64) *types.Uint64 { return &v }(
				types.Uint64(123),
			),
			expectedValue: "123",
		},
		{
			origValue: func(v types.Uint64) *types.Uint64 { return &v }(
				types.Uint64(math.MaxUint64),
			),
			expectedValue: "18446744073709551615",
		},
	}
	var ok bool
	var tmpScanner sql.Scanner
	var tmpValuer driver.Valuer
	for _, testDef := range testDefs {
		tmpValuer, ok = testDef.origValue.(driver.Valuer)
		if !ok {
			t.Fatalf("test original value does not implement driver.Valuer")
		}
		valueOut, err := tmpValuer.Value()
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if !reflect.DeepEqual(valueOut, testDef.expectedValue) {
			t.Fatalf(
				"did not get expected value from Value(): got %#v, expected %#v",
				valueOut,
				testDef.expectedValue,
			)
		}
		tmpScanner, ok = testDef.origValue.(sql.Scanner)
		if !ok {
			t.Fatalf(
				"test original value does not implement sql.Scanner (it must be a pointer)",
			)
		}
		if err := tmpScanner.Scan(valueOut); err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
	}
}

func TestUint64ScanVariants(t *testing.T) {
	var u types.Uint64
	if err := u.Scan([]byte("42")); err != nil || u != 42 {
		t.Fatalf("unexpected result scanning []byte: %d, %v", u, err)
	}
	if err := u.Scan(int64(7)); err != nil || u != 7 {
		t.Fatalf("unexpected result scanning int64: %d, %v", u, err)
	}
	if err := u.Scan(int64(-1)); err == nil {
		t.Fatalf("expected error scanning negative int64")
	}
	if err := u.Scan(3.5); err == nil {
		t.Fatalf("expected error scanning float")
	}
}

func TestNftBlobKeyRoundTrip(t *testing.T) {
	key := types.NftBlobKey(258)
	id, err := types.NftBlobKeyToId(key)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if id != 258 {
		t.Fatalf("did not get expected badge ID: got %d, expected 258", id)
	}
	if _, err := types.NftBlobKeyToId([]byte("bal1234")); err == nil {
		t.Fatalf("expected error for non-NFT key")
	}
}
