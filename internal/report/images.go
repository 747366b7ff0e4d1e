package report

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
	_ "golang.org/x/image/webp"
)

const (
	// MaxImageWidth is the pixel width images are downscaled to before embedding
	MaxImageWidth = 1600
	maxImageBytes = 20 << 20
	jpegQuality   = 85
)

// DefaultProxyURL rewrites an external image URL through a CORS-friendly proxy
const DefaultProxyURL = "https://images.weserv.nl/?url=%s"

// ImageSource fetches the raw bytes behind an attachment reference
type ImageSource interface {
	Fetch(ctx context.Context, ref string) ([]byte, error)
}

// HTTPImageSource reads local references through assets and fetches
// external ones through the proxy first, then directly.
type HTTPImageSource struct {
	client   *http.Client
	proxyURL string
	assets   AssetOpener
	logger   *zap.SugaredLogger
}

type SourceOption func(*HTTPImageSource)

func WithHTTPClient(c *http.Client) SourceOption {
	return func(s *HTTPImageSource) { s.client = c }
}

// WithProxyURL sets the proxy template; %s receives the escaped URL. An
// empty template disables the proxy.
func WithProxyURL(tmpl string) SourceOption {
	return func(s *HTTPImageSource) { s.proxyURL = tmpl }
}

func NewHTTPImageSource(assets AssetOpener, logger *zap.SugaredLogger, opts ...SourceOption) *HTTPImageSource {
	s := &HTTPImageSource{
		client:   http.DefaultClient,
		proxyURL: DefaultProxyURL,
		assets:   assets,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *HTTPImageSource) Fetch(ctx context.Context, ref string) ([]byte, error) {
	if isLocal(ref) {
		return readAsset(ctx, s.assets, ref)
	}
	if s.proxyURL != "" {
		data, err := s.get(ctx, ProxyURL(s.proxyURL, ref))
		if err == nil {
			err = checkImage(data)
		}
		if err == nil {
			return data, nil
		}
		s.logger.Debugw("Image proxy failed, fetching directly", "url", ref, "error", err)
	}
	return s.get(ctx, ref)
}

func (s *HTTPImageSource) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("GET %s: status %d", rawURL, resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
}

// checkImage rejects bodies that are not images, such as an HTML error page
// served with a 200
func checkImage(data []byte) error {
	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return fmt.Errorf("not an image: %s", mtype.String())
	}
	return nil
}

// ProxyURL fills the proxy template with the escaped ref
func ProxyURL(tmpl, ref string) string {
	return fmt.Sprintf(tmpl, url.QueryEscape(ref))
}

func isLocal(ref string) bool {
	return strings.HasPrefix(ref, "/") && !strings.HasPrefix(ref, "//")
}

// preparedImage is a JPEG ready to hand to the PDF writer
type preparedImage struct {
	data   []byte
	width  int
	height int
}

// prepareImage decodes any supported format, flattens transparency onto
// white, caps the width at MaxImageWidth and re-encodes as JPEG.
func prepareImage(data []byte) (preparedImage, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return preparedImage{}, fmt.Errorf("decode image: %w", err)
	}
	if img.Bounds().Dx() > MaxImageWidth {
		img = imaging.Resize(img, MaxImageWidth, 0, imaging.Lanczos)
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return preparedImage{}, fmt.Errorf("decode image: empty bounds")
	}
	flat := imaging.Overlay(imaging.New(b.Dx(), b.Dy(), color.White), img, image.Pt(0, 0), 1.0)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, flat, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return preparedImage{}, fmt.Errorf("encode jpeg: %w", err)
	}
	return preparedImage{data: buf.Bytes(), width: b.Dx(), height: b.Dy()}, nil
}
