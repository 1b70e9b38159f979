/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct{ ID int }

func intPtr(v int) *int { return &v }

func TestPaginationRequestNormalize(t *testing.T) {
	var nilReq *PaginationRequest
	assert.Equal(t, DefaultPage, nilReq.GetPage())
	assert.Equal(t, DefaultPageSize, nilReq.GetPageSize())
	assert.Equal(t, "", nilReq.GetSearch())

	req := NewPaginationRequest(0, -3)
	assert.Equal(t, 1, req.GetPage())
	assert.Equal(t, 10, req.GetPageSize())
	assert.Equal(t, 0, req.GetOffset())
}

func TestPaginationRequestBounds(t *testing.T) {
	for page := 1; page <= 7; page++ {
		for size := 1; size <= 25; size += 3 {
			b := NewSearchPaginationRequest(page, size, "q").Bounds()
			assert.Equal(t, (page-1)*size, b.Offset, "page=%d size=%d", page, size)
			assert.Equal(t, size, b.Limit)
			assert.Equal(t, "q", b.Search)
		}
	}
}

func TestNewPaginationResponse(t *testing.T) {
	cases := []struct {
		name                string
		page, size, total   int
		wantSize, wantPages int
		wantNext, wantPrev  *int
	}{
		{"first of three", 1, 10, 25, 10, 3, intPtr(2), nil},
		{"last of three", 3, 10, 25, 10, 3, nil, intPtr(2)},
		{"short result", 1, 10, 5, 5, 1, nil, nil},
		{"no rows", 1, 10, 0, 0, 0, nil, nil},
		{"one remaining row", 1, 10, 11, 10, 2, nil, nil},
		{"middle page", 2, 10, 45, 10, 5, intPtr(3), intPtr(1)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := NewPaginationResponse[row](NewPaginationRequest(tc.page, tc.size), nil, tc.total)
			p := resp.Paginations
			assert.Equal(t, tc.total, p.TotalEntries)
			assert.Equal(t, tc.page, p.CurrentPage)
			assert.Equal(t, tc.wantSize, p.PageSize)
			assert.Equal(t, tc.wantPages, p.TotalPage)
			assert.Equal(t, tc.wantNext, p.NextPage)
			assert.Equal(t, tc.wantPrev, p.PrevPage)
			assert.NotNil(t, resp.Result)
			assert.Empty(t, resp.Result)
		})
	}
}

func TestPaginationResponseJSON(t *testing.T) {
	resp := NewPaginationResponse(NewPaginationRequest(1, 10), []*row{{ID: 1}}, 1)
	b, err := json.Marshal(resp)
	require.NoError(t, err)

	var wire map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &wire))
	assert.Contains(t, wire, "result")
	meta, ok := wire["paginations"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(1), meta["total_entries"])
	assert.Equal(t, float64(1), meta["page_size"])
	assert.Contains(t, meta, "next_page")
	assert.Nil(t, meta["next_page"])
	assert.Nil(t, meta["prev_page"])
}

func TestPaginationRequestJSON(t *testing.T) {
	var req PaginationRequest
	require.NoError(t, json.Unmarshal([]byte(`{"page":2,"page_size":5,"search":"ann"}`), &req))
	assert.Equal(t, PageBounds{Offset: 5, Limit: 5, Search: "ann"}, req.Bounds())
}
