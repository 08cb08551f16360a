package models

import "time"

// Document is a fetched page: its properties and top-level blocks.
type Document struct {
	ID         string
	Properties *PropertyMap
	Blocks     []Block
	LastEdited time.Time
}

// PageListing is one pagination window over the pages of a database.
type PageListing struct {
	Total   int      `json:"total"`
	Offset  int      `json:"offset"`
	Limit   int      `json:"limit"`
	PageIDs []string `json:"pages"`
}

// NewPageListing returns the window [offset, offset+limit) over ids. The
// offset is clamped to len(ids); the window is never nil.
func NewPageListing(ids []string, offset, limit int) PageListing {
	total := len(ids)
	offset = min(max(offset, 0), total)
	end := min(offset+max(limit, 0), total)
	window := make([]string, end-offset)
	copy(window, ids[offset:end])
	return PageListing{Total: total, Offset: offset, Limit: limit, PageIDs: window}
}
