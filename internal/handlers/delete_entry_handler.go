package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// DeleteEntry removes an entry. Deleting an id that is already gone succeeds.
func (h *EntryHandler) DeleteEntry(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Entry ID is required"})
		return
	}

	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		h.logError(c, err, "Failed to delete entry", "entry_id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete entry"})
		return
	}

	h.logger.Infow("Entry deleted", "request_id", c.GetString("request_id"), "entry_id", id)
	c.JSON(http.StatusOK, gin.H{"message": "Entry deleted successfully", "id": id})
}
