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
	"encoding/binary"
	"errors"
)

const (
	NftBlobKeyPrefix     = "nft"
	BalanceBlobKeyPrefix = "bal"
)

var ErrInvalidBlobKey = errors.New("invalid blob key")

func BlobKeyUint64ToBytes(input uint64) []byte {
	ret := make([]byte, 8)
	binary.BigEndian.PutUint64(ret, input)
	return ret
}

// NftBlobKey returns the key holding the current owner record for a badge.
// Badge IDs are big-endian so prefix iteration walks them in mint order
func NftBlobKey(badgeId uint64) []byte {
	key := []byte(NftBlobKeyPrefix)
	key = append(key, BlobKeyUint64ToBytes(badgeId)...)
	return key
}

// NftBlobKeyToId extracts the badge ID from a key produced by NftBlobKey
func NftBlobKeyToId(key []byte) (uint64, error) {
	prefixLen := len(NftBlobKeyPrefix)
	if len(key) != prefixLen+8 ||
		string(key[:prefixLen]) != NftBlobKeyPrefix {
		return 0, ErrInvalidBlobKey
	}
	return binary.BigEndian.Uint64(key[prefixLen:]), nil
}

// BalanceBlobKey returns the key holding the currency balance of a principal
func BalanceBlobKey(principal string) []byte {
	key := []byte(BalanceBlobKeyPrefix)
	key = append(key, []byte(principal)...)
	return key
}
