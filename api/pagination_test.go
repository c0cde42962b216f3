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
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePagination(t *testing.T) {
	testDefs := []struct {
		query    string
		expected PaginationParams
		err      bool
	}{
		{query: "", expected: PaginationParams{Count: 100}},
		{query: "count=10&after=5", expected: PaginationParams{Count: 10, After: 5}},
		{query: "count=0", expected: PaginationParams{Count: 1}},
		{query: "count=500", expected: PaginationParams{Count: 100}},
		{query: "count=abc", err: true},
		{query: "after=-1", err: true},
	}
	for _, testDef := range testDefs {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/events?"+testDef.query, nil)
		params, err := ParsePagination(req)
		if testDef.err {
			require.ErrorIs(t, err, ErrInvalidPaginationParameters, testDef.query)
			continue
		}
		require.NoError(t, err, testDef.query)
		assert.Equal(t, testDef.expected, params, testDef.query)
	}
}
