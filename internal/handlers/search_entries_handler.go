package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	entrymodels "io.winapps.depttimeline/internal/models/entry"
	searchmodels "io.winapps.depttimeline/internal/models/search_entries"
	"io.winapps.depttimeline/internal/timeline"
)

// SearchEntries lists entries matching the search, year and category
// filters, grouped by year. Years covers every entry, not just matches.
func (h *EntryHandler) SearchEntries(c *gin.Context) {
	var req searchmodels.SearchEntriesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	year, err := timeline.ParseYear(req.Year)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "year must be a number or ALL"})
		return
	}
	category := timeline.ParseCategory(req.Category)
	if category != "" && !category.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown category"})
		return
	}

	all, err := h.store.GetAll(c.Request.Context())
	if err != nil {
		h.logError(c, err, "Failed to load entries")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load entries"})
		return
	}

	matches := timeline.Filter(all, timeline.Query{
		Search:   req.SearchQuery,
		Year:     year,
		Category: category,
	})
	groups := timeline.GroupByYear(matches)

	resp := searchmodels.SearchEntriesResponse{
		Entries: matches,
		Groups:  make([]searchmodels.YearGroup, 0, len(groups)),
		Years:   timeline.AvailableYears(all),
		Total:   len(matches),
	}
	for _, g := range groups {
		resp.Groups = append(resp.Groups, searchmodels.YearGroup{Year: g.Year, Entries: g.Entries})
	}
	c.JSON(http.StatusOK, resp)
}

// GetCategories lists the entry categories with their display labels
func (h *EntryHandler) GetCategories(c *gin.Context) {
	cats := entrymodels.Categories()
	out := make([]gin.H, 0, len(cats))
	for _, cat := range cats {
		out = append(out, gin.H{"value": cat, "label": cat.Label()})
	}
	c.JSON(http.StatusOK, gin.H{"categories": out})
}
