package handlers

import (
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	exportmodels "io.winapps.depttimeline/internal/models/export_report"
	"io.winapps.depttimeline/internal/report"
	"io.winapps.depttimeline/internal/store"
	"io.winapps.depttimeline/internal/timeline"
)

// ReportHandler starts report jobs and serves their progress and output
type ReportHandler struct {
	store  store.Store
	runner *report.Runner
	logger *zap.SugaredLogger
}

func NewReportHandler(s store.Store, runner *report.Runner, logger *zap.SugaredLogger) *ReportHandler {
	return &ReportHandler{store: s, runner: runner, logger: logger}
}

// ExportReport filters entries by date range and category and starts an
// asynchronous PDF job. An empty selection is refused before any job exists.
func (h *ReportHandler) ExportReport(c *gin.Context) {
	var req exportmodels.ExportReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	criteria := timeline.ExportCriteria{
		Start:    req.StartDate,
		End:      req.EndDate,
		Category: timeline.ParseCategory(req.Category),
	}
	if err := criteria.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	all, err := h.store.GetAll(ctx)
	if err != nil {
		h.logError(c, err, "Failed to load entries for report")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load entries"})
		return
	}

	selected := criteria.Apply(all)
	st, err := h.runner.Start(ctx, selected, req.IncludeImages)
	if errors.Is(err, report.ErrNoEntries) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "No entries found for the selected criteria"})
		return
	}
	if err != nil {
		h.logError(c, err, "Failed to start report job")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to initialize report job"})
		return
	}

	c.JSON(http.StatusAccepted, exportmodels.ExportReportResponse{
		ReportJobID: st.JobID,
		Entries:     st.TotalEntries,
		Message:     "Report generation started",
	})
}

// ReportProgress returns the status of a report job
func (h *ReportHandler) ReportProgress(c *gin.Context) {
	st, ok := h.loadJob(c)
	if !ok {
		return
	}

	resp := gin.H{
		"reportJobId": st.JobID,
		"status":      st.Status,
		"progress":    st.Progress,
		"startedAt":   st.StartedAt.Format(time.RFC3339),
		"completedAt": nil,
		"fileName":    st.FileName,
		"totals": gin.H{
			"entries":      st.TotalEntries,
			"processed":    st.ProcessedEntries,
			"pages":        st.Pages,
			"imagesPlaced": st.ImagesPlaced,
			"imagesFailed": st.ImagesFailed,
		},
	}
	if st.CompletedAt != nil {
		resp["completedAt"] = st.CompletedAt.Format(time.RFC3339)
	}
	if st.Error != "" {
		resp["error"] = st.Error
	}
	c.JSON(http.StatusOK, resp)
}

// DownloadReport sends the finished PDF
func (h *ReportHandler) DownloadReport(c *gin.Context) {
	st, ok := h.loadJob(c)
	if !ok {
		return
	}
	if st.Status != report.JobCompleted || st.FilePath == "" {
		c.JSON(http.StatusConflict, gin.H{"error": "Report is not ready for download", "status": st.Status})
		return
	}
	if _, err := os.Stat(st.FilePath); os.IsNotExist(err) {
		c.JSON(http.StatusGone, gin.H{"error": "Report file no longer exists"})
		return
	}

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Transfer-Encoding", "binary")
	c.Header("Content-Disposition", "attachment; filename="+st.FileName)
	c.Header("Content-Type", "application/pdf")
	c.File(st.FilePath)
}

func (h *ReportHandler) loadJob(c *gin.Context) (*report.JobStatus, bool) {
	jobID := c.Param("jobId")
	st, err := h.runner.Status(c.Request.Context(), jobID)
	if errors.Is(err, report.ErrJobNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Report job not found"})
		return nil, false
	}
	if err != nil {
		h.logError(c, err, "Failed to load report job", "job_id", jobID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load report job"})
		return nil, false
	}
	return st, true
}
