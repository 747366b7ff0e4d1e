package report

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	models "io.winapps.depttimeline/internal/models/entry"
)

type fakeImages struct {
	mu    sync.Mutex
	calls []string
	data  map[string][]byte
}

func (f *fakeImages) Fetch(ctx context.Context, ref string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, ref)
	if d, ok := f.data[ref]; ok {
		return d, nil
	}
	return nil, errors.New("not found")
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.NRGBA{B: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func newTestGenerator(images ImageSource, assets AssetOpener, letterhead string) *Generator {
	return NewGenerator(images, assets, letterhead, zap.NewNop().Sugar())
}

func sampleEntries() []models.Entry {
	return []models.Entry{
		{
			ID: "1", Title: "Robotics team wins national championship",
			Description: "The final-year robotics\n\nteam   took first place.",
			Category:    models.CategoryStudent, Date: "2024-02-10", Year: 2024,
			MediaURLs: []string{"https://img.example.com/a.png"},
		},
		{
			ID: "2", Title: "MoU with Acme Labs",
			Description: "Research collaboration signed.",
			Category:    models.CategoryCollab, Date: "2023-11-05", Year: 2023,
		},
	}
}

func TestGenerate_EmptyInputRejectedBeforeOutput(t *testing.T) {
	g := newTestGenerator(&fakeImages{}, nil, "")
	var buf bytes.Buffer
	_, err := g.Generate(context.Background(), &buf, nil, Options{IncludeImages: true})
	assert.ErrorIs(t, err, ErrNoEntries)
	assert.Zero(t, buf.Len())
}

func TestGenerate_WithoutImagesNeverFetches(t *testing.T) {
	images := &fakeImages{}
	g := newTestGenerator(images, nil, "")
	var buf bytes.Buffer
	res, err := g.Generate(context.Background(), &buf, sampleEntries(), Options{IncludeImages: false})
	require.NoError(t, err)
	assert.Empty(t, images.calls)
	assert.Equal(t, 2, res.Pages)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestGenerate_PlacesImagesAndPlaceholders(t *testing.T) {
	images := &fakeImages{data: map[string][]byte{
		"https://img.example.com/a.png": encodePNG(t, 400, 200),
	}}
	entries := sampleEntries()
	entries[1].MediaURLs = []string{"https://img.example.com/missing.jpg", "/blobs/abc#type=pdf"}

	g := newTestGenerator(images, nil, "")
	var buf bytes.Buffer
	res, err := g.Generate(context.Background(), &buf, entries, Options{IncludeImages: true})
	require.NoError(t, err)

	assert.Equal(t, 1, res.ImagesPlaced)
	assert.Equal(t, 2, res.ImagesFailed)
	assert.Equal(t, []string{"https://img.example.com/a.png", "https://img.example.com/missing.jpg"}, images.calls)
}

func TestGenerate_TallImageStartsNewPage(t *testing.T) {
	images := &fakeImages{data: map[string][]byte{
		"https://img.example.com/tall.png": encodePNG(t, 100, 400),
	}}
	entries := []models.Entry{{
		ID: "1", Title: "Poster", Description: "Event poster", Category: models.CategoryEvent,
		Date: "2024-01-01", MediaURLs: []string{"https://img.example.com/tall.png"},
	}}
	g := newTestGenerator(images, nil, "")
	var buf bytes.Buffer
	res, err := g.Generate(context.Background(), &buf, entries, Options{IncludeImages: true})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Pages)
	assert.Equal(t, 1, res.ImagesPlaced)
}

func TestWriteAttachment_OversizedImageStaysOnPage(t *testing.T) {
	img, err := prepareImage(encodeJPEG(t, 100, 1000))
	require.NoError(t, err)

	d := newDocument(nil)
	d.newPage()
	d.writeAttachment("https://img.example.com/banner.jpg", imageResult{img: img})
	require.NoError(t, d.pdf.Error())

	assert.Equal(t, 1, d.pdf.PageCount())
	assert.LessOrEqual(t, d.cursor, PageHeight-bottomMargin+imageSpacing)
	assert.Equal(t, 1, d.result.ImagesPlaced)
}

func TestFitImage(t *testing.T) {
	w, h := fitImage(400, 200)
	assert.Equal(t, ContentWidth, w)
	assert.InDelta(t, 85.0, h, 1e-9)

	w, h = fitImage(100, 1000)
	assert.Equal(t, maxImageHeight, h)
	assert.InDelta(t, maxImageHeight/10, w, 1e-9)
}

func TestGenerate_Letterhead(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "letterhead_template.jpg"), encodeJPEG(t, 210, 297), 0644))

	g := newTestGenerator(&fakeImages{}, DirAssets{Root: dir}, "/letterhead_template.jpg")
	var buf bytes.Buffer
	res, err := g.Generate(context.Background(), &buf, sampleEntries(), Options{})
	require.NoError(t, err)
	assert.True(t, res.LetterheadLoaded)

	t.Run("missing letterhead is not fatal", func(t *testing.T) {
		g := newTestGenerator(&fakeImages{}, DirAssets{Root: dir}, "/nope.jpg")
		var buf bytes.Buffer
		res, err := g.Generate(context.Background(), &buf, sampleEntries(), Options{})
		require.NoError(t, err)
		assert.False(t, res.LetterheadLoaded)
		assert.Equal(t, 2, res.Pages)
	})
}

func TestGenerate_ReportsProgress(t *testing.T) {
	g := newTestGenerator(&fakeImages{}, nil, "")
	var seen []int
	_, err := g.Generate(context.Background(), &bytes.Buffer{}, sampleEntries(), Options{
		Progress: func(done, total int) {
			assert.Equal(t, 2, total)
			seen = append(seen, done)
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, seen)
}

func TestGenerate_LongTextWraps(t *testing.T) {
	long := ""
	for i := 0; i < 200; i++ {
		long += "collaboration "
	}
	entries := []models.Entry{{
		ID: "1", Title: long, Description: long + "Supercalifragilisticexpialidociousnessandthensomemoretextwithoutspacesatall",
		Category: models.CategoryFaculty, Date: "2024-05-01",
	}}
	g := newTestGenerator(&fakeImages{}, nil, "")
	_, err := g.Generate(context.Background(), &bytes.Buffer{}, entries, Options{})
	require.NoError(t, err)
}

func TestFileName(t *testing.T) {
	now := time.Date(2024, 3, 9, 15, 0, 0, 0, time.UTC)
	assert.Equal(t, "Dept_Timeline_Report_2024-03-09.pdf", FileName(now))
}

func TestDisplayDate(t *testing.T) {
	assert.Equal(t, "3/9/2024", displayDate("2024-03-09"))
	assert.Equal(t, "someday", displayDate("someday"))
}
