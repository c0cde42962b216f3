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

import (
	"net/http"

	"github.com/blinklabs-io/trustledger/internal/version"
	"github.com/blinklabs-io/trustledger/ledger"
)

// handleRoot handles GET / and returns API metadata
func (a *Api) handleRoot(
	w http.ResponseWriter,
	_ *http.Request,
) {
	writeJSON(w, http.StatusOK, RootResponse{
		Name:    "trustledger",
		Version: version.GetVersionString(),
	})
}

// handleHealth handles GET /health
func (a *Api) handleHealth(
	w http.ResponseWriter,
	_ *http.Request,
) {
	writeJSON(w, http.StatusOK, HealthResponse{
		IsHealthy: true,
	})
}

func (a *Api) handleSettings(
	w http.ResponseWriter,
	r *http.Request,
) {
	settings, err := a.ledger.GetSettings()
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (a *Api) handlePaused(
	w http.ResponseWriter,
	r *http.Request,
) {
	paused, err := a.ledger.IsPaused()
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, PausedResponse{Paused: paused})
}

func (a *Api) handleAuthorizedCallers(
	w http.ResponseWriter,
	r *http.Request,
) {
	callers, err := a.ledger.GetAuthorizedCallers()
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	if callers == nil {
		callers = []ledger.Principal{}
	}
	writeJSON(w, http.StatusOK, callers)
}

func (a *Api) handleIsAuthorized(
	w http.ResponseWriter,
	r *http.Request,
) {
	contract, err := pathPrincipal(r)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	authorized, err := a.ledger.IsAuthorized(contract)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AuthorizedResponse{Authorized: authorized})
}

// handleEvents handles GET /api/v1/events and returns committed events for
// every principal
func (a *Api) handleEvents(
	w http.ResponseWriter,
	r *http.Request,
) {
	a.writeEvents(w, r, "")
}

func (a *Api) handleAccountEvents(
	w http.ResponseWriter,
	r *http.Request,
) {
	principal, err := pathPrincipal(r)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	a.writeEvents(w, r, principal)
}

func (a *Api) writeEvents(
	w http.ResponseWriter,
	r *http.Request,
	principal ledger.Principal,
) {
	params, err := ParsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "", err.Error())
		return
	}
	events, err := a.ledger.GetEvents(principal, params.After, params.Count)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	if events == nil {
		events = []ledger.LedgerEvent{}
	}
	writeJSON(w, http.StatusOK, events)
}

func (a *Api) handleAccount(
	w http.ResponseWriter,
	r *http.Request,
) {
	user, err := pathPrincipal(r)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	data, err := a.ledger.GetUserData(user)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

func (a *Api) handleStake(
	w http.ResponseWriter,
	r *http.Request,
) {
	user, err := pathPrincipal(r)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	stake, err := a.ledger.GetStake(user)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, StakeResponse{Stake: stake})
}

func (a *Api) handleReputation(
	w http.ResponseWriter,
	r *http.Request,
) {
	user, err := pathPrincipal(r)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	score, err := a.ledger.GetReputation(user)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ScoreResponse{Score: score})
}

func (a *Api) handleAccountBadges(
	w http.ResponseWriter,
	r *http.Request,
) {
	owner, err := pathPrincipal(r)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	badges, err := a.ledger.GetBadgesByOwner(owner)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	if badges == nil {
		badges = []ledger.BadgeMetadata{}
	}
	writeJSON(w, http.StatusOK, badges)
}

func (a *Api) handleBadge(
	w http.ResponseWriter,
	r *http.Request,
) {
	id, err := pathBadgeId(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "", err.Error())
		return
	}
	metadata, err := a.ledger.GetBadgeMetadata(id)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, metadata)
}

func (a *Api) handleBadgeOwner(
	w http.ResponseWriter,
	r *http.Request,
) {
	id, err := pathBadgeId(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "", err.Error())
		return
	}
	owner, err := a.ledger.GetBadgeOwner(id)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, OwnerResponse{Owner: owner})
}

func (a *Api) handleUserOwnsBadge(
	w http.ResponseWriter,
	r *http.Request,
) {
	id, err := pathBadgeId(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "", err.Error())
		return
	}
	user, err := pathPrincipal(r)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	owns, err := a.ledger.UserOwnsBadge(user, id)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, OwnsResponse{Owns: owns})
}
