package models

import (
	entrymodels "io.winapps.depttimeline/internal/models/entry"
)

type UpdateEntryResponse struct {
	Entry   entrymodels.Entry `json:"entry"`
	Message string            `json:"message"`
}
