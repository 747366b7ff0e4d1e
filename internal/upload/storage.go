package upload

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
)

// StorageUploader writes attachments into a Firebase Storage bucket
type StorageUploader struct {
	bucket     *storage.BucketHandle
	bucketName string
	now        func() time.Time
	newToken   func() string
}

func NewStorageUploader(bucket *storage.BucketHandle, bucketName string) *StorageUploader {
	return &StorageUploader{
		bucket:     bucket,
		bucketName: bucketName,
		now:        time.Now,
		newToken:   func() string { return uuid.New().String() },
	}
}

// Upload stores the object under uploads/<millis>_<name> and returns a
// tokenized download URL that stays valid until the object is deleted.
func (u *StorageUploader) Upload(ctx context.Context, f File) (string, error) {
	key := ObjectKey(f.Name, u.now())
	token := u.newToken()

	w := u.bucket.Object(key).NewWriter(ctx)
	w.ContentType = f.ContentType
	w.Metadata = map[string]string{
		"firebaseStorageDownloadTokens": token,
	}
	if _, err := w.Write(f.Data); err != nil {
		w.Close()
		return "", fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize %s: %w", key, err)
	}
	return DownloadURL(u.bucketName, key, token), nil
}

func (u *StorageUploader) Ephemeral() bool { return false }

// ObjectKey namespaces the original file name by upload time
func ObjectKey(name string, now time.Time) string {
	base := path.Base("/" + name)
	if base == "/" || base == "." {
		base = "file"
	}
	return fmt.Sprintf("uploads/%d_%s", now.UnixMilli(), base)
}

// DownloadURL builds the public Firebase Storage URL for key
func DownloadURL(bucket, key, token string) string {
	return fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media&token=%s",
		bucket, url.PathEscape(key), url.QueryEscape(token))
}
