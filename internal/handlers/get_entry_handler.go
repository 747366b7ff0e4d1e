package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"io.winapps.depttimeline/internal/links"
	getentrymodels "io.winapps.depttimeline/internal/models/get_entry"
	"io.winapps.depttimeline/internal/store"
)

// GetEntry serves a single entry, the target of a deep link
func (h *EntryHandler) GetEntry(c *gin.Context) {
	id := c.Param("id")
	entry, err := store.Find(c.Request.Context(), h.store, id)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Entry not found"})
		return
	}
	if err != nil {
		h.logError(c, err, "Failed to fetch entry", "entry_id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch entry"})
		return
	}

	c.JSON(http.StatusOK, getentrymodels.GetEntryResponse{
		Entry:    entry,
		ShareURL: h.shareURL(entry.ID),
	})
}

// ShareEntry returns the shareable deep link for an entry
func (h *EntryHandler) ShareEntry(c *gin.Context) {
	id := c.Param("id")
	if _, err := store.Find(c.Request.Context(), h.store, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Entry not found"})
			return
		}
		h.logError(c, err, "Failed to fetch entry", "entry_id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch entry"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "shareUrl": h.shareURL(id)})
}

// ResolveLink opens a deep link. The response carries the matched entry,
// if any, and the URL with the id parameter stripped.
func (h *EntryHandler) ResolveLink(c *gin.Context) {
	rawURL := c.Query("url")
	if rawURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}

	entries, err := h.store.GetAll(c.Request.Context())
	if err != nil {
		h.logError(c, err, "Failed to fetch entries")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch entries"})
		return
	}

	link, err := links.ResolveDeepLink(entries, rawURL)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid url"})
		return
	}

	resp := getentrymodels.ResolveLinkResponse{CleanURL: link.CleanURL}
	if link.Entry != nil {
		resp.Entry = link.Entry
		resp.ShareURL = h.shareURL(link.Entry.ID)
	}
	c.JSON(http.StatusOK, resp)
}
