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

package api

import "github.com/blinklabs-io/trustledger/ledger"

// RootResponse is returned by GET /
type RootResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// HealthResponse is returned by GET /health
type HealthResponse struct {
	IsHealthy bool `json:"is_healthy"`
}

// ErrorResponse is the body of every failed request. Code carries the ledger
// error code, such as u101, when the failure came from the ledger
type ErrorResponse struct {
	StatusCode int    `json:"status_code"`
	Error      string `json:"error"`
	Code       string `json:"code,omitempty"`
	Message    string `json:"message"`
}

type OkResponse struct {
	Ok bool `json:"ok"`
}

type AmountRequest struct {
	Amount uint64 `json:"amount"`
}

type ReputationRequest struct {
	User   ledger.Principal `json:"user"`
	Points uint64           `json:"points"`
}

type DecayRequest struct {
	User ledger.Principal `json:"user"`
}

type MintBadgeRequest struct {
	Recipient   ledger.Principal `json:"recipient"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
}

type RecipientRequest struct {
	Recipient ledger.Principal `json:"recipient"`
}

type SetOwnerRequest struct {
	Owner ledger.Principal `json:"owner"`
}

type SetPausedRequest struct {
	Paused bool `json:"paused"`
}

type SetAuthorizedRequest struct {
	Contract   ledger.Principal `json:"contract"`
	Authorized bool             `json:"authorized"`
}

type SetDecayRateRequest struct {
	Rate uint64 `json:"rate"`
}

type StakeResponse struct {
	Stake uint64 `json:"stake"`
}

type WithdrawnResponse struct {
	Withdrawn uint64 `json:"withdrawn"`
}

type RemainingResponse struct {
	Remaining uint64 `json:"remaining"`
}

type ScoreResponse struct {
	Score uint64 `json:"score"`
}

type BadgeIdResponse struct {
	ID uint64 `json:"id"`
}

type OwnerResponse struct {
	Owner ledger.Principal `json:"owner"`
}

type OwnsResponse struct {
	Owns bool `json:"owns"`
}

type PausedResponse struct {
	Paused bool `json:"paused"`
}

type AuthorizedResponse struct {
	Authorized bool `json:"authorized"`
}

type RateResponse struct {
	Rate uint64 `json:"rate"`
}

type AmountResponse struct {
	Amount uint64 `json:"amount"`
}
