package api

import (
	"github.com/starford/perthro/internal/models"
	"github.com/starford/perthro/internal/sectionservice"
)

// FileDetail is the full file response type (aliased from the domain layer).
type FileDetail = sectionservice.FileDetail

// FileListItem is a lightweight item in a list response (aliased from the domain layer).
type FileListItem = sectionservice.FileListItem

// FileListResponse wraps paginated file listings.
type FileListResponse struct {
	Files []FileListItem `json:"files" validate:"required"`
	Total int            `json:"total" example:"42" validate:"required"`
}

// SectionsResponse wraps a filtered section query.
type SectionsResponse struct {
	Path     string           `json:"path" example:"lib/Demo.pm" validate:"required"`
	Sections []models.Section `json:"sections" validate:"required"`
}

// SearchResult is a single search hit in the API response.
type SearchResult struct {
	Path    string `json:"path" example:"lib/Demo.pm" validate:"required"`
	Name    string `json:"name" example:"example-1"`
	List    string `json:"list" example:"name"`
	Snippet string `json:"snippet" example:"...matched text..." validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []SearchResult `json:"results" validate:"required"`
}

// GroupCount is one aggregated group in the API response.
type GroupCount struct {
	List     string `json:"list" example:"name" validate:"required"`
	Sections int    `json:"sections" example:"7" validate:"required"`
	Files    int    `json:"files" example:"3" validate:"required"`
}

// GroupsResponse wraps the group aggregates.
type GroupsResponse struct {
	Groups []GroupCount `json:"groups" validate:"required"`
}
