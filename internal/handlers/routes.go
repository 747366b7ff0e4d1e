package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"io.winapps.depttimeline/internal/admin"
	"io.winapps.depttimeline/internal/middleware"
)

// Handlers bundles everything the router mounts
type Handlers struct {
	Entries  *EntryHandler
	Uploads  *UploadHandler
	Admin    *AdminHandler
	Reports  *ReportHandler
	Sessions *admin.Sessions
	Backend  string
}

// RegisterRoutes mounts the API on router. Mutations require an unlocked
// admin session.
func RegisterRoutes(router *gin.Engine, h Handlers) {
	requireAdmin := middleware.RequireAdmin(h.Sessions)

	v1 := router.Group("/api/v1")
	{
		entries := v1.Group("/entries")
		{
			entries.GET("", h.Entries.SearchEntries)
			entries.GET("/:id", h.Entries.GetEntry)
			entries.GET("/:id/share", h.Entries.ShareEntry)
			entries.POST("", requireAdmin, h.Entries.CreateEntry)
			entries.PUT("/:id", requireAdmin, h.Entries.UpdateEntry)
			entries.DELETE("/:id", requireAdmin, h.Entries.DeleteEntry)
		}

		v1.GET("/categories", h.Entries.GetCategories)
		v1.GET("/links/resolve", h.Entries.ResolveLink)
		v1.POST("/uploads", requireAdmin, h.Uploads.UploadFile)

		sessions := v1.Group("/admin/sessions")
		{
			sessions.POST("", h.Admin.OpenSession)
			sessions.POST("/:id/unlock", h.Admin.UnlockSession)
			sessions.DELETE("/:id", h.Admin.CloseSession)
		}

		reports := v1.Group("/reports")
		{
			reports.POST("", h.Reports.ExportReport)
			reports.GET("/:jobId", h.Reports.ReportProgress)
			reports.GET("/:jobId/download", h.Reports.DownloadReport)
		}
	}

	router.GET("/blobs/:id", h.Uploads.ServeBlob)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "backend": h.Backend})
	})
}
