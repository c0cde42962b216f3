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
	"errors"
	"net/http"
	"strconv"
)

const (
	DefaultPaginationCount = 100
	MaxPaginationCount     = 100
)

var ErrInvalidPaginationParameters = errors.New(
	"invalid pagination parameters",
)

// PaginationParams contains parsed pagination query values. Events are
// paged by ID: a page holds up to Count events with an ID greater than After
type PaginationParams struct {
	Count int
	After uint
}

// ParsePagination parses pagination query parameters and applies defaults
// and bounds clamping
func ParsePagination(r *http.Request) (PaginationParams, error) {
	params := PaginationParams{
		Count: DefaultPaginationCount,
	}
	query := r.URL.Query()
	if countParam := query.Get("count"); countParam != "" {
		count, err := strconv.Atoi(countParam)
		if err != nil {
			return PaginationParams{},
				ErrInvalidPaginationParameters
		}
		params.Count = count
	}
	if afterParam := query.Get("after"); afterParam != "" {
		after, err := strconv.ParseUint(afterParam, 10, 0)
		if err != nil {
			return PaginationParams{},
				ErrInvalidPaginationParameters
		}
		params.After = uint(after)
	}

	// Bounds clamping
	if params.Count < 1 {
		params.Count = 1
	}
	if params.Count > MaxPaginationCount {
		params.Count = MaxPaginationCount
	}
	return params, nil
}
