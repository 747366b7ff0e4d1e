package handlers

import (
	"go.uber.org/zap"

	"io.winapps.depttimeline/internal/links"
	"io.winapps.depttimeline/internal/store"
)

// EntryHandler serves timeline entry CRUD and search
type EntryHandler struct {
	store  store.Store
	origin string
	logger *zap.SugaredLogger
}

// NewEntryHandler creates a new entry handler. origin is the public front
// end address share links point at.
func NewEntryHandler(s store.Store, origin string, logger *zap.SugaredLogger) *EntryHandler {
	return &EntryHandler{
		store:  s,
		origin: origin,
		logger: logger,
	}
}

func (h *EntryHandler) shareURL(id string) string {
	u, err := links.ShareURL(h.origin, id)
	if err != nil {
		return ""
	}
	return u
}
