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

import "math"

const (
	DefaultPage     = 1
	DefaultPageSize = 10
)

// PaginationRequest is the page request as received from a caller-facing
// boundary. Zero values fall back to DefaultPage and DefaultPageSize.
type PaginationRequest struct {
	Page     int    `json:"page,omitempty" yaml:"page,omitempty"`
	PageSize int    `json:"page_size,omitempty" yaml:"page_size,omitempty"`
	Search   string `json:"search,omitempty" yaml:"search,omitempty"`
}

// NewPaginationRequest builds a request without a search term.
func NewPaginationRequest(page, pageSize int) *PaginationRequest {
	return &PaginationRequest{Page: page, PageSize: pageSize}
}

// NewSearchPaginationRequest builds a request carrying a search term.
func NewSearchPaginationRequest(page, pageSize int, search string) *PaginationRequest {
	return &PaginationRequest{Page: page, PageSize: pageSize, Search: search}
}

func (p *PaginationRequest) GetPage() int {
	if p == nil || p.Page < 1 {
		return DefaultPage
	}
	return p.Page
}

func (p *PaginationRequest) GetPageSize() int {
	if p == nil || p.PageSize < 1 {
		return DefaultPageSize
	}
	return p.PageSize
}

func (p *PaginationRequest) GetOffset() int {
	return (p.GetPage() - 1) * p.GetPageSize()
}

func (p *PaginationRequest) GetLimit() int {
	return p.GetPageSize()
}

func (p *PaginationRequest) GetSearch() string {
	if p == nil {
		return ""
	}
	return p.Search
}

// PageBounds are the query bounds derived from a request before the query runs.
type PageBounds struct {
	Offset int
	Limit  int
	Search string
}

// Bounds returns the pre-query offset, limit and search term.
func (p *PaginationRequest) Bounds() PageBounds {
	return PageBounds{Offset: p.GetOffset(), Limit: p.GetLimit(), Search: p.GetSearch()}
}

// Paginations is the page metadata of a PaginationResponse.
type Paginations struct {
	TotalEntries int  `json:"total_entries"`
	TotalPage    int  `json:"total_page"`
	CurrentPage  int  `json:"current_page"`
	PageSize     int  `json:"page_size"`
	NextPage     *int `json:"next_page"`
	PrevPage     *int `json:"prev_page"`
}

// PaginationResponse holds one page of results along with its metadata.
type PaginationResponse[T any] struct {
	Result      []*T        `json:"result"`
	Paginations Paginations `json:"paginations"`
}

// NewPaginationResponse computes the page metadata once the total count is
// known. The reported page size shrinks to totalEntries when fewer rows exist
// than requested, and both total_page and next_page derive from that
// reported size.
func NewPaginationResponse[T any](req *PaginationRequest, result []*T, totalEntries int) *PaginationResponse[T] {
	if result == nil {
		result = make([]*T, 0)
	}
	page := req.GetPage()
	pageSize := req.GetPageSize()
	if totalEntries < pageSize {
		pageSize = totalEntries
	}

	meta := Paginations{
		TotalEntries: totalEntries,
		CurrentPage:  page,
		PageSize:     pageSize,
	}
	if totalEntries > 0 {
		meta.TotalPage = int(math.Ceil(float64(totalEntries) / float64(pageSize)))
	}
	if totalEntries-page*pageSize > 1 {
		next := page + 1
		meta.NextPage = &next
	}
	if page > 1 {
		prev := page - 1
		meta.PrevPage = &prev
	}
	return &PaginationResponse[T]{Result: result, Paginations: meta}
}
