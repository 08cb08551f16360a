package api

import (
	"encoding/json"

	"github.com/starford/notionmd/internal/models"
)

// PageResponse is the JSON representation of a page.
type PageResponse struct {
	ID         string          `json:"id" example:"b55c9c91-384d-452b-81db-d1ef79372b75" validate:"required"`
	Properties json.RawMessage `json:"properties" swaggertype:"object" validate:"required"`
	Content    string          `json:"content" example:"# Sample Page\n" validate:"required"`
}

// PageListResponse is one window of a database listing.
type PageListResponse = models.PageListing

// HealthResponse is returned by the health endpoints.
type HealthResponse struct {
	Status string `json:"status" example:"ok" validate:"required"`
}
