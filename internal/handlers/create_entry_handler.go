package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	createmodels "io.winapps.depttimeline/internal/models/create_entry"
	entrymodels "io.winapps.depttimeline/internal/models/entry"
)

// CreateEntry adds a new timeline entry
func (h *EntryHandler) CreateEntry(c *gin.Context) {
	var req createmodels.CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	fields := req.NewEntry()
	if err := fields.Validate(); err != nil {
		respondValidation(c, err)
		return
	}

	entry, err := h.store.Add(c.Request.Context(), fields)
	if err != nil {
		h.logError(c, err, "Failed to create entry")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create entry"})
		return
	}

	h.logger.Infow("Entry created", "request_id", c.GetString("request_id"), "entry_id", entry.ID, "category", entry.Category)
	c.JSON(http.StatusCreated, createmodels.CreateEntryResponse{
		Entry:    entry,
		ShareURL: h.shareURL(entry.ID),
	})
}

func respondValidation(c *gin.Context, err error) {
	var verr *entrymodels.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "field": verr.Field})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
