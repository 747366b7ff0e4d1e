package models

import (
	entrymodels "io.winapps.depttimeline/internal/models/entry"
)

type GetEntryResponse struct {
	Entry    entrymodels.Entry `json:"entry"`
	ShareURL string            `json:"shareUrl"`
}

// ResolveLinkResponse is returned for a deep link. Entry is null when the
// id did not match anything.
type ResolveLinkResponse struct {
	Entry    *entrymodels.Entry `json:"entry"`
	ShareURL string             `json:"shareUrl,omitempty"`
	CleanURL string             `json:"cleanUrl"`
}
