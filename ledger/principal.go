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
	"fmt"

	"github.com/btcsuite/btcd/btcutil/bech32"
)

const (
	// PrincipalHrp is the human-readable prefix of encoded principals
	PrincipalHrp = "trust"

	principalMaxPayloadLength = 40
)

// Principal identifies an account, a contract or the ledger owner
type Principal string

func (p Principal) String() string {
	return string(p)
}

// NewPrincipal encodes a raw identity payload as a bech32 principal
func NewPrincipal(payload []byte) (Principal, error) {
	if len(payload) == 0 || len(payload) > principalMaxPayloadLength {
		return "", fmt.Errorf(
			"%w: payload length %d",
			ErrInvalidPrincipal,
			len(payload),
		)
	}
	convData, err := bech32.ConvertBits(payload, 8, 5, true)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidPrincipal, err)
	}
	encoded, err := bech32.Encode(PrincipalHrp, convData)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidPrincipal, err)
	}
	return Principal(encoded), nil
}

// ParsePrincipal validates a bech32 principal string
func ParsePrincipal(s string) (Principal, error) {
	hrp, data, err := bech32.Decode(s)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidPrincipal, err)
	}
	if hrp != PrincipalHrp {
		return "", fmt.Errorf(
			"%w: unexpected prefix %q",
			ErrInvalidPrincipal,
			hrp,
		)
	}
	payload, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidPrincipal, err)
	}
	if len(payload) == 0 || len(payload) > principalMaxPayloadLength {
		return "", fmt.Errorf(
			"%w: payload length %d",
			ErrInvalidPrincipal,
			len(payload),
		)
	}
	// Normalize to the canonical lower-case form
	return NewPrincipal(payload)
}
