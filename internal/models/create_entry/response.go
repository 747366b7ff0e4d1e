package models

import (
	entrymodels "io.winapps.depttimeline/internal/models/entry"
)

type CreateEntryResponse struct {
	Entry    entrymodels.Entry `json:"entry"`
	ShareURL string            `json:"shareUrl"`
}
