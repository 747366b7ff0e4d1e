package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	uploadmodels "io.winapps.depttimeline/internal/models/upload_file"
	"io.winapps.depttimeline/internal/upload"
)

// multipartOverhead is the slack allowed on top of the file for form encoding
const multipartOverhead = 1 << 20

// UploadHandler accepts attachments and, in local mode, serves them back
type UploadHandler struct {
	uploader upload.Uploader
	blobs    *upload.MemoryUploader
	logger   *zap.SugaredLogger
}

// NewUploadHandler creates a new upload handler. blobs may be nil when
// uploads go to Firebase Storage.
func NewUploadHandler(uploader upload.Uploader, blobs *upload.MemoryUploader, logger *zap.SugaredLogger) *UploadHandler {
	return &UploadHandler{
		uploader: uploader,
		blobs:    blobs,
		logger:   logger,
	}
}

// UploadFile stores the multipart "file" field and returns its reference
func (h *UploadHandler) UploadFile(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, upload.MaxFileSize+multipartOverhead)

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File exceeds 5 MiB"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing file field"})
		return
	}
	if fh.Size > upload.MaxFileSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File exceeds 5 MiB"})
		return
	}

	f, err := fh.Open()
	if err != nil {
		h.logError(c, err, "Failed to open uploaded file")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, upload.MaxFileSize+1))
	if err != nil {
		h.logError(c, err, "Failed to read uploaded file")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return
	}

	file, err := upload.NewFile(fh.Filename, data)
	switch {
	case errors.Is(err, upload.ErrFileTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File exceeds 5 MiB"})
		return
	case errors.Is(err, upload.ErrUnsupportedType), errors.Is(err, upload.ErrEmptyFile):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid file"})
		return
	}

	url, err := h.uploader.Upload(c.Request.Context(), file)
	if err != nil {
		h.logError(c, err, "Failed to upload file", "file_name", fh.Filename)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload file"})
		return
	}

	c.JSON(http.StatusCreated, uploadmodels.UploadFileResponse{
		URL:         upload.Reference(url, file),
		ContentType: file.ContentType,
		Size:        int64(len(file.Data)),
		Ephemeral:   h.uploader.Ephemeral(),
	})
}

// ServeBlob returns a file held by the in-process blob registry
func (h *UploadHandler) ServeBlob(c *gin.Context) {
	if h.blobs == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Blob not found"})
		return
	}
	b, ok := h.blobs.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Blob not found"})
		return
	}
	c.Header("Cache-Control", "private, no-store")
	c.Data(http.StatusOK, b.ContentType, b.Data)
}
