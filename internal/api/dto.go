package api

import (
	"github.com/starford/termblog/internal/index"
	"github.com/starford/termblog/internal/postservice"
)

// PostListItem is a lightweight item in a list response (aliased from the domain layer).
type PostListItem = postservice.PostListItem

// PostDetail is the full post response type (aliased from the domain layer).
type PostDetail = postservice.PostDetail

// PostListResponse wraps post listings.
type PostListResponse struct {
	Posts []PostListItem `json:"posts"`
	Total int            `json:"total" example:"42"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []index.SearchResult `json:"results"`
}

// ReloadResponse is returned after a forced reload.
type ReloadResponse struct {
	Posts int `json:"posts" example:"42"`
}
