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

package types

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strconv"
)

// Uint64 stores the full unsigned 64-bit range as text, since not all of
// the metadata backends can hold values above math.MaxInt64 natively
type Uint64 uint64

func (Uint64) GormDataType() string {
	return "string"
}

func (u Uint64) Value() (driver.Value, error) {
	return strconv.FormatUint(uint64(u), 10), nil
}

func (u *Uint64) Scan(val any) error {
	var tmpStr string
	switch v := val.(type) {
	case string:
		tmpStr = v
	case []byte:
		tmpStr = string(v)
	case int64:
		if v < 0 {
			return fmt.Errorf("negative value for Uint64: %d", v)
		}
		*u = Uint64(v)
		return nil
	case nil:
		*u = 0
		return nil
	default:
		return fmt.Errorf(
			"value was not expected type, wanted string, got %T",
			val,
		)
	}
	tmpUint, err := strconv.ParseUint(tmpStr, 10, 64)
	if err != nil {
		return err
	}
	*u = Uint64(tmpUint)
	return nil
}

var ErrBlobKeyNotFound = errors.New("blob key not found")

var ErrTxnWrongType = errors.New("invalid transaction type")

var ErrNilTxn = errors.New("nil transaction")

var ErrBlobStoreUnavailable = errors.New("blob store unavailable")

type BlobItem interface {
	Key() []byte
	ValueCopy(dst []byte) ([]byte, error)
}

// BlobIterator provides key iteration over the blob store.
//
// Items returned by Item() must only be accessed while the transaction used
// to create the iterator is still active.
type BlobIterator interface {
	Rewind()
	Seek(prefix []byte)
	Valid() bool
	ValidForPrefix(prefix []byte) bool
	Next()
	Item() BlobItem
	Close()
	Err() error
}

// BlobIteratorOptions configures blob iterator creation
type BlobIteratorOptions struct {
	Prefix  []byte
	Reverse bool
}

// Txn is a simple transaction handle for commit/rollback only.
// Database layer (Txn) coordinates metadata and blob operations separately.
type Txn interface {
	Commit() error
	Rollback() error
}
