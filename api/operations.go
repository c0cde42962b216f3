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

	"github.com/blinklabs-io/trustledger/ledger"
)

// operation wraps a mutating handler. It resolves the caller and decodes the
// request body, if any, before invoking fn
func operation[T any](
	a *Api,
	fn func(caller ledger.Principal, req *T) (any, error),
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerPrincipal, err := caller(r)
		if err != nil {
			writeCallerError(w, err)
			return
		}
		req := new(T)
		if r.ContentLength != 0 {
			if err := decodeBody(w, r, req); err != nil {
				writeError(w, http.StatusBadRequest, "", err.Error())
				return
			}
		}
		resp, err := fn(callerPrincipal, req)
		if err != nil {
			a.writeLedgerError(w, r, err)
			return
		}
		a.logger.Debug(
			"ledger operation completed",
			"method", r.Method,
			"path", r.URL.Path,
			"caller", callerPrincipal.String(),
		)
		writeJSON(w, http.StatusOK, resp)
	}
}

type emptyRequest struct{}

// bodyPrincipal validates a principal supplied in a request body
func bodyPrincipal(p ledger.Principal) (ledger.Principal, error) {
	return ledger.ParsePrincipal(string(p))
}

func (a *Api) handleStakeOp(w http.ResponseWriter, r *http.Request) {
	operation(a, func(c ledger.Principal, req *AmountRequest) (any, error) {
		if err := a.ledger.Stake(c, req.Amount); err != nil {
			return nil, err
		}
		return OkResponse{Ok: true}, nil
	})(w, r)
}

func (a *Api) handleUnstakeOp(w http.ResponseWriter, r *http.Request) {
	operation(a, func(c ledger.Principal, _ *emptyRequest) (any, error) {
		withdrawn, err := a.ledger.Unstake(c)
		if err != nil {
			return nil, err
		}
		return WithdrawnResponse{Withdrawn: withdrawn}, nil
	})(w, r)
}

func (a *Api) handlePartialUnstakeOp(w http.ResponseWriter, r *http.Request) {
	operation(a, func(c ledger.Principal, req *AmountRequest) (any, error) {
		remaining, err := a.ledger.PartialUnstake(c, req.Amount)
		if err != nil {
			return nil, err
		}
		return RemainingResponse{Remaining: remaining}, nil
	})(w, r)
}

func (a *Api) handleIncrementReputationOp(w http.ResponseWriter, r *http.Request) {
	operation(a, func(c ledger.Principal, req *ReputationRequest) (any, error) {
		user, err := bodyPrincipal(req.User)
		if err != nil {
			return nil, err
		}
		score, err := a.ledger.IncrementReputation(c, user, req.Points)
		if err != nil {
			return nil, err
		}
		return ScoreResponse{Score: score}, nil
	})(w, r)
}

func (a *Api) handleDecrementReputationOp(w http.ResponseWriter, r *http.Request) {
	operation(a, func(c ledger.Principal, req *ReputationRequest) (any, error) {
		user, err := bodyPrincipal(req.User)
		if err != nil {
			return nil, err
		}
		score, err := a.ledger.DecrementReputation(c, user, req.Points)
		if err != nil {
			return nil, err
		}
		return ScoreResponse{Score: score}, nil
	})(w, r)
}

func (a *Api) handleDecayReputationOp(w http.ResponseWriter, r *http.Request) {
	operation(a, func(c ledger.Principal, req *DecayRequest) (any, error) {
		user, err := bodyPrincipal(req.User)
		if err != nil {
			return nil, err
		}
		score, err := a.ledger.DecayReputation(c, user)
		if err != nil {
			return nil, err
		}
		return ScoreResponse{Score: score}, nil
	})(w, r)
}

func (a *Api) handleMintBadgeOp(w http.ResponseWriter, r *http.Request) {
	operation(a, func(c ledger.Principal, req *MintBadgeRequest) (any, error) {
		recipient, err := bodyPrincipal(req.Recipient)
		if err != nil {
			return nil, err
		}
		id, err := a.ledger.MintBadge(c, recipient, req.Name, req.Description)
		if err != nil {
			return nil, err
		}
		return BadgeIdResponse{ID: id}, nil
	})(w, r)
}

func (a *Api) handleTransferBadgeOp(w http.ResponseWriter, r *http.Request) {
	id, err := pathBadgeId(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "", err.Error())
		return
	}
	operation(a, func(c ledger.Principal, req *RecipientRequest) (any, error) {
		recipient, err := bodyPrincipal(req.Recipient)
		if err != nil {
			return nil, err
		}
		if err := a.ledger.TransferBadge(c, id, recipient); err != nil {
			return nil, err
		}
		return OkResponse{Ok: true}, nil
	})(w, r)
}

func (a *Api) handleBurnBadgeOp(w http.ResponseWriter, r *http.Request) {
	id, err := pathBadgeId(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "", err.Error())
		return
	}
	operation(a, func(c ledger.Principal, _ *emptyRequest) (any, error) {
		if err := a.ledger.BurnBadge(c, id); err != nil {
			return nil, err
		}
		return OkResponse{Ok: true}, nil
	})(w, r)
}

func (a *Api) handleSetOwnerOp(w http.ResponseWriter, r *http.Request) {
	operation(a, func(c ledger.Principal, req *SetOwnerRequest) (any, error) {
		owner, err := bodyPrincipal(req.Owner)
		if err != nil {
			return nil, err
		}
		if err := a.ledger.SetOwner(c, owner); err != nil {
			return nil, err
		}
		return OkResponse{Ok: true}, nil
	})(w, r)
}

func (a *Api) handleSetPausedOp(w http.ResponseWriter, r *http.Request) {
	operation(a, func(c ledger.Principal, req *SetPausedRequest) (any, error) {
		paused, err := a.ledger.SetPaused(c, req.Paused)
		if err != nil {
			return nil, err
		}
		return PausedResponse{Paused: paused}, nil
	})(w, r)
}

func (a *Api) handleSetAuthorizedOp(w http.ResponseWriter, r *http.Request) {
	operation(a, func(c ledger.Principal, req *SetAuthorizedRequest) (any, error) {
		contract, err := bodyPrincipal(req.Contract)
		if err != nil {
			return nil, err
		}
		authorized, err := a.ledger.SetAuthorized(c, contract, req.Authorized)
		if err != nil {
			return nil, err
		}
		return AuthorizedResponse{Authorized: authorized}, nil
	})(w, r)
}

func (a *Api) handleSetDecayRateOp(w http.ResponseWriter, r *http.Request) {
	operation(a, func(c ledger.Principal, req *SetDecayRateRequest) (any, error) {
		rate, err := a.ledger.SetDecayRate(c, req.Rate)
		if err != nil {
			return nil, err
		}
		return RateResponse{Rate: rate}, nil
	})(w, r)
}

func (a *Api) handleSetMinStakeOp(w http.ResponseWriter, r *http.Request) {
	operation(a, func(c ledger.Principal, req *AmountRequest) (any, error) {
		amount, err := a.ledger.SetMinStake(c, req.Amount)
		if err != nil {
			return nil, err
		}
		return AmountResponse{Amount: amount}, nil
	})(w, r)
}
