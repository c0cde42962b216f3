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
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/blinklabs-io/trustledger/ledger"
)

// CallerHeader carries the authenticated principal making a request
const CallerHeader = "X-Trust-Principal"

var (
	errMissingCaller = errors.New("missing " + CallerHeader + " header")
	errInvalidBody   = errors.New("invalid request body")
	errInvalidId     = errors.New("invalid badge id")
)

// writeJSON writes a JSON response with the given status code
func writeJSON(
	w http.ResponseWriter,
	status int,
	v any,
) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck,errchkjson
	json.NewEncoder(w).Encode(v)
}

func writeError(
	w http.ResponseWriter,
	status int,
	code string,
	message string,
) {
	writeJSON(w, status, ErrorResponse{
		StatusCode: status,
		Error:      http.StatusText(status),
		Code:       code,
		Message:    message,
	})
}

// ledgerErrorStatus maps a ledger error code to an HTTP status
func ledgerErrorStatus(code uint) int {
	switch code {
	case ledger.ErrorCodeUnauthorized:
		return http.StatusForbidden
	case ledger.ErrorCodeInvalidAmount, ledger.ErrorCodeInvalidPrincipal:
		return http.StatusBadRequest
	case ledger.ErrorCodeUserNotFound, ledger.ErrorCodeBadgeNotFound:
		return http.StatusNotFound
	case ledger.ErrorCodeInsufficientStake,
		ledger.ErrorCodeInsufficientReputation,
		ledger.ErrorCodeBadgeExists:
		return http.StatusConflict
	case ledger.ErrorCodeTransferFailed:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// writeLedgerError reports an error returned by the ledger. Errors without a
// ledger code are logged and reported without detail
func (a *Api) writeLedgerError(
	w http.ResponseWriter,
	r *http.Request,
	err error,
) {
	code := ledger.ErrorCode(err)
	if code == 0 {
		a.logger.Error(
			"ledger request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		writeError(
			w,
			http.StatusInternalServerError,
			"",
			"internal error",
		)
		return
	}
	writeError(
		w,
		ledgerErrorStatus(code),
		codeString(code),
		err.Error(),
	)
}

// codeString formats a ledger error code as reported to clients
func codeString(code uint) string {
	return fmt.Sprintf("u%d", code)
}

// caller returns the authenticated principal of a request
func caller(r *http.Request) (ledger.Principal, error) {
	val := r.Header.Get(CallerHeader)
	if val == "" {
		return "", errMissingCaller
	}
	return ledger.ParsePrincipal(val)
}

// writeCallerError reports a missing or malformed caller header
func writeCallerError(w http.ResponseWriter, err error) {
	if errors.Is(err, errMissingCaller) {
		writeError(
			w,
			http.StatusUnauthorized,
			codeString(ledger.ErrorCodeUnauthorized),
			err.Error(),
		)
		return
	}
	writeError(
		w,
		http.StatusBadRequest,
		codeString(ledger.ErrorCodeInvalidPrincipal),
		err.Error(),
	)
}

// decodeBody decodes a JSON request body into v
func decodeBody(
	w http.ResponseWriter,
	r *http.Request,
	v any,
) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %w", errInvalidBody, err)
	}
	return nil
}

func pathPrincipal(r *http.Request) (ledger.Principal, error) {
	return ledger.ParsePrincipal(r.PathValue("principal"))
}

func pathBadgeId(r *http.Request) (uint64, error) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", errInvalidId, r.PathValue("id"))
	}
	return id, nil
}
