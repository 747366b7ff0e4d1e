package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
)

// AssetOpener resolves a local asset reference such as /letterhead.jpg
type AssetOpener interface {
	Open(ctx context.Context, ref string) (io.ReadCloser, error)
}

// DirAssets serves references from a directory on disk. References cannot
// escape the directory.
type DirAssets struct {
	Root string
}

func (d DirAssets) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	clean := path.Clean("/" + ref)
	f, err := os.Open(filepath.Join(d.Root, filepath.FromSlash(clean)))
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Assets tries each opener in order and returns the first hit
type Assets []AssetOpener

func (a Assets) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	var errs []error
	for _, o := range a {
		rc, err := o.Open(ctx, ref)
		if err == nil {
			return rc, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil, fmt.Errorf("%s: %w", ref, os.ErrNotExist)
	}
	return nil, errors.Join(errs...)
}

func readAsset(ctx context.Context, assets AssetOpener, ref string) ([]byte, error) {
	if assets == nil {
		return nil, fmt.Errorf("%s: %w", ref, os.ErrNotExist)
	}
	rc, err := assets.Open(ctx, ref)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(io.LimitReader(rc, maxImageBytes))
}
