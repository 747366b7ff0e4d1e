package models

import (
	entrymodels "io.winapps.depttimeline/internal/models/entry"
)

// UpdateEntryRequest replaces the full record; the id comes from the path
type UpdateEntryRequest struct {
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Category    entrymodels.Category `json:"category"`
	Date        string               `json:"date"`
	MediaURL    string               `json:"mediaUrl,omitempty"`
	MediaURLs   []string             `json:"mediaUrls"`
	Featured    bool                 `json:"featured"`
}

func (r UpdateEntryRequest) Fields() entrymodels.NewEntry {
	return entrymodels.NewEntry{
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
		Date:        r.Date,
		MediaURL:    r.MediaURL,
		MediaURLs:   r.MediaURLs,
		Featured:    r.Featured,
	}
}
