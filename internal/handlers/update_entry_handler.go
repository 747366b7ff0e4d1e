package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	updatemodels "io.winapps.depttimeline/internal/models/update_entry"
	"io.winapps.depttimeline/internal/store"
)

// UpdateEntry replaces an entry's fields. The id and createdAt of the
// stored record are kept.
func (h *EntryHandler) UpdateEntry(c *gin.Context) {
	id := c.Param("id")
	var req updatemodels.UpdateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	fields := req.Fields()
	if err := fields.Validate(); err != nil {
		respondValidation(c, err)
		return
	}

	ctx := c.Request.Context()
	existing, err := store.Find(ctx, h.store, id)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Entry not found"})
		return
	}
	if err != nil {
		h.logError(c, err, "Failed to fetch entry", "entry_id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update entry"})
		return
	}

	entry := fields.WithIdentity(existing.ID, time.UnixMilli(existing.CreatedAt))
	updated, err := h.store.Update(ctx, entry)
	if err != nil {
		h.logError(c, err, "Failed to update entry", "entry_id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update entry"})
		return
	}

	c.JSON(http.StatusOK, updatemodels.UpdateEntryResponse{
		Entry:   updated,
		Message: "Entry updated successfully",
	})
}
