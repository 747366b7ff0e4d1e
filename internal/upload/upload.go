// Package upload stores entry attachments and hands back a URL for them.
package upload

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	models "io.winapps.depttimeline/internal/models/entry"
)

// MaxFileSize is the largest attachment accepted
const MaxFileSize = 5 << 20

var (
	ErrEmptyFile       = errors.New("upload: file is empty")
	ErrFileTooLarge    = errors.New("upload: file exceeds 5 MiB")
	ErrUnsupportedType = errors.New("upload: only images and PDF documents are accepted")
)

// File is an attachment ready to be stored
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// IsPDF reports whether the sniffed content type is a PDF document
func (f File) IsPDF() bool {
	return f.ContentType == "application/pdf"
}

// Uploader stores a file and returns a URL it can be retrieved from
type Uploader interface {
	Upload(ctx context.Context, f File) (string, error)
	// Ephemeral reports whether returned URLs die with the process
	Ephemeral() bool
}

// NewFile sniffs the content type of data and rejects anything that is not
// an image or a PDF. The client supplied type is ignored.
func NewFile(name string, data []byte) (File, error) {
	if len(data) == 0 {
		return File{}, ErrEmptyFile
	}
	if len(data) > MaxFileSize {
		return File{}, ErrFileTooLarge
	}
	mt := mimetype.Detect(data)
	contentType := mt.String()
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = contentType[:i]
	}
	if !strings.HasPrefix(contentType, "image/") && !mt.Is("application/pdf") {
		return File{}, fmt.Errorf("%w: got %s", ErrUnsupportedType, contentType)
	}
	return File{Name: name, ContentType: contentType, Data: data}, nil
}

// Reference returns the attachment reference to store on an entry. PDF
// uploads get the type marker since entries carry no MIME field.
func Reference(url string, f File) string {
	if f.IsPDF() && !strings.Contains(url, models.PDFMarker) {
		return url + models.PDFMarker
	}
	return url
}

// WithLatency delays each upload by d. A non-positive d returns next.
func WithLatency(next Uploader, d time.Duration) Uploader {
	if d <= 0 {
		return next
	}
	return &latencyUploader{next: next, delay: d}
}

type latencyUploader struct {
	next  Uploader
	delay time.Duration
}

func (u *latencyUploader) Upload(ctx context.Context, f File) (string, error) {
	timer := time.NewTimer(u.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-timer.C:
	}
	return u.next.Upload(ctx, f)
}

func (u *latencyUploader) Ephemeral() bool {
	return u.next.Ephemeral()
}
