package models

import (
	entrymodels "io.winapps.depttimeline/internal/models/entry"
)

type CreateEntryRequest struct {
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Category    entrymodels.Category `json:"category"`
	Date        string               `json:"date"`
	MediaURL    string               `json:"mediaUrl,omitempty"`
	MediaURLs   []string             `json:"mediaUrls"`
	Featured    bool                 `json:"featured"`
}

// NewEntry converts the request into the store input
func (r CreateEntryRequest) NewEntry() entrymodels.NewEntry {
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
