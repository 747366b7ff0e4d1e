// Package report renders timeline entries into a paginated A4 PDF and runs
// report generation as background jobs.
package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	models "io.winapps.depttimeline/internal/models/entry"
)

// Page geometry in millimetres
const (
	PageWidth    = 210.0
	PageHeight   = 297.0
	Margin       = 20.0
	ContentTop   = 50.0
	ContentWidth = PageWidth - 2*Margin

	titleFontSize   = 18
	titleLineHeight = 8.0
	titleSpacing    = 5.0
	metaFontSize    = 10
	metaAdvance     = 10.0
	bodyFontSize    = 12
	bodyLineHeight  = 6.0
	bodySpacing     = 10.0

	imageBreakSpace    = 60.0
	bottomMargin       = 20.0
	imageSpacing       = 10.0
	placeholderHeight  = 18.0
	placeholderSpacing = 4.0

	fontFamily = "Helvetica"
)

// PlaceholderCaption is printed inside the box drawn for a failed image
const PlaceholderCaption = "Image unavailable"

var (
	ErrNoEntries = errors.New("no entries match the selected filters")
	// ErrDocumentAttachment marks attachments that cannot be embedded as images
	ErrDocumentAttachment = errors.New("attachment is a document, not an image")
)

// Options controls a single generation
type Options struct {
	IncludeImages bool
	// Progress, when set, is called after each entry is laid out
	Progress func(done, total int)
}

// Result summarizes a finished document
type Result struct {
	Pages            int
	ImagesPlaced     int
	ImagesFailed     int
	LetterheadLoaded bool
}

// FileName is the download name for a report generated at now
func FileName(now time.Time) string {
	return fmt.Sprintf("Dept_Timeline_Report_%s.pdf", now.UTC().Format(models.DateLayout))
}

// Generator lays out reports. It is safe for concurrent use; the
// letterhead is loaded once and shared between generations.
type Generator struct {
	images         ImageSource
	assets         AssetOpener
	letterheadPath string
	logger         *zap.SugaredLogger

	group      singleflight.Group
	mu         sync.RWMutex
	letterhead *preparedImage
}

func NewGenerator(images ImageSource, assets AssetOpener, letterheadPath string, logger *zap.SugaredLogger) *Generator {
	return &Generator{
		images:         images,
		assets:         assets,
		letterheadPath: letterheadPath,
		logger:         logger,
	}
}

// Generate writes a PDF for entries to w. Entries are laid out in the order
// given. An empty slice fails with ErrNoEntries before anything is written.
func (g *Generator) Generate(ctx context.Context, w io.Writer, entries []models.Entry, opts Options) (Result, error) {
	if len(entries) == 0 {
		return Result{}, ErrNoEntries
	}

	lh, err := g.loadLetterhead(ctx)
	if err != nil {
		g.logger.Warnw("Could not load letterhead template", "path", g.letterheadPath, "error", err)
	}

	d := newDocument(lh)
	for i, e := range entries {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		d.writeEntry(i+1, e)
		if opts.IncludeImages {
			for _, ref := range e.Attachments() {
				d.writeAttachment(ref, g.fetchImage(ctx, ref))
			}
		}
		if opts.Progress != nil {
			opts.Progress(i+1, len(entries))
		}
	}

	if err := d.pdf.Error(); err != nil {
		return Result{}, fmt.Errorf("layout report: %w", err)
	}
	d.result.Pages = d.pdf.PageCount()
	d.result.LetterheadLoaded = lh != nil
	if err := d.pdf.Output(w); err != nil {
		return Result{}, fmt.Errorf("write report: %w", err)
	}
	return d.result, nil
}

func (g *Generator) fetchImage(ctx context.Context, ref string) imageResult {
	if models.IsDocument(ref) {
		return imageResult{err: ErrDocumentAttachment}
	}
	data, err := g.images.Fetch(ctx, ref)
	if err != nil {
		g.logger.Warnw("Failed to load image for report", "url", ref, "error", err)
		return imageResult{err: err}
	}
	img, err := prepareImage(data)
	if err != nil {
		g.logger.Warnw("Failed to decode image for report", "url", ref, "error", err)
		return imageResult{err: err}
	}
	return imageResult{img: img}
}

func (g *Generator) loadLetterhead(ctx context.Context) (*preparedImage, error) {
	if g.letterheadPath == "" {
		return nil, nil
	}
	g.mu.RLock()
	cached := g.letterhead
	g.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}

	v, err, _ := g.group.Do(g.letterheadPath, func() (interface{}, error) {
		data, err := readAsset(ctx, g.assets, g.letterheadPath)
		if err != nil {
			return nil, err
		}
		img, err := prepareImage(data)
		if err != nil {
			return nil, err
		}
		g.mu.Lock()
		g.letterhead = &img
		g.mu.Unlock()
		return &img, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*preparedImage), nil
}

type imageResult struct {
	img preparedImage
	err error
}

// document tracks the cursor over a single fpdf instance
type document struct {
	pdf        *fpdf.Fpdf
	tr         func(string) string
	letterhead *preparedImage
	cursor     float64
	images     int
	result     Result
}

const letterheadName = "letterhead"

func newDocument(letterhead *preparedImage) *document {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(Margin, Margin, Margin)
	d := &document{
		pdf:        pdf,
		tr:         pdf.UnicodeTranslatorFromDescriptor(""),
		letterhead: letterhead,
	}
	if letterhead != nil {
		pdf.RegisterImageOptionsReader(letterheadName, jpegOptions, bytes.NewReader(letterhead.data))
	}
	return d
}

var jpegOptions = fpdf.ImageOptions{ImageType: "JPG"}

func (d *document) newPage() {
	d.pdf.AddPage()
	if d.letterhead != nil {
		d.pdf.ImageOptions(letterheadName, 0, 0, PageWidth, PageHeight, false, jpegOptions, 0, "")
	}
	d.cursor = ContentTop
}

func (d *document) writeEntry(index int, e models.Entry) {
	d.newPage()

	d.pdf.SetFont(fontFamily, "B", titleFontSize)
	d.pdf.SetTextColor(0, 0, 0)
	title := d.wrap(fmt.Sprintf("%d. %s", index, collapse(e.Title)), ContentWidth)
	for i, line := range title {
		d.pdf.Text(Margin, d.cursor+float64(i)*titleLineHeight, d.tr(line))
	}
	d.cursor += float64(len(title))*titleLineHeight + titleSpacing

	d.pdf.SetFont(fontFamily, "", metaFontSize)
	d.pdf.SetTextColor(100, 100, 100)
	d.pdf.Text(Margin, d.cursor, d.tr(fmt.Sprintf("%s | %s", displayDate(e.Date), e.Category.Label())))
	d.cursor += metaAdvance

	d.pdf.SetFont(fontFamily, "", bodyFontSize)
	d.pdf.SetTextColor(0, 0, 0)
	body := d.wrap(collapse(e.Description), ContentWidth)
	for i, line := range body {
		d.pdf.Text(Margin, d.cursor+float64(i)*bodyLineHeight, d.tr(line))
	}
	d.cursor += float64(len(body))*bodyLineHeight + bodySpacing
}

func (d *document) writeAttachment(ref string, res imageResult) {
	if d.cursor > PageHeight-imageBreakSpace {
		d.newPage()
	}
	if res.err != nil {
		d.placeholder()
		return
	}

	w, h := fitImage(res.img.width, res.img.height)
	if d.cursor+h > PageHeight-bottomMargin {
		d.newPage()
	}
	d.images++
	name := fmt.Sprintf("img%d", d.images)
	d.pdf.RegisterImageOptionsReader(name, jpegOptions, bytes.NewReader(res.img.data))
	d.pdf.ImageOptions(name, Margin, d.cursor, w, h, false, jpegOptions, 0, "")
	d.cursor += h + imageSpacing
	d.result.ImagesPlaced++
}

// maxImageHeight is the tallest image that fits on a fresh page
const maxImageHeight = PageHeight - bottomMargin - ContentTop

// fitImage scales a pixel size to the content width, shrinking both sides
// when the result would not fit on a fresh page.
func fitImage(px, py int) (w, h float64) {
	w = ContentWidth
	h = float64(py) * ContentWidth / float64(px)
	if h > maxImageHeight {
		w = w * maxImageHeight / h
		h = maxImageHeight
	}
	return w, h
}

func (d *document) placeholder() {
	if d.cursor+placeholderHeight > PageHeight-bottomMargin {
		d.newPage()
	}
	d.pdf.SetDrawColor(180, 180, 180)
	d.pdf.SetLineWidth(0.3)
	d.pdf.Rect(Margin, d.cursor, ContentWidth, placeholderHeight, "D")

	d.pdf.SetFont(fontFamily, "I", 9)
	d.pdf.SetTextColor(150, 150, 150)
	caption := d.tr(PlaceholderCaption)
	x := Margin + (ContentWidth-d.pdf.GetStringWidth(caption))/2
	d.pdf.Text(x, d.cursor+placeholderHeight/2+1.5, caption)

	d.cursor += placeholderHeight + placeholderSpacing
	d.result.ImagesFailed++
}

// wrap breaks text into lines no wider than width in the current font.
// Words longer than a line are split.
func (d *document) wrap(text string, width float64) []string {
	var lines []string
	line := ""
	for _, word := range strings.Fields(text) {
		candidate := word
		if line != "" {
			candidate = line + " " + word
		}
		if d.width(candidate) <= width {
			line = candidate
			continue
		}
		if line != "" {
			lines = append(lines, line)
		}
		for d.width(word) > width {
			cut := d.fit(word, width)
			lines = append(lines, word[:cut])
			word = word[cut:]
		}
		line = word
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}

func (d *document) width(s string) float64 {
	return d.pdf.GetStringWidth(d.tr(s))
}

// fit returns the byte offset of the longest rune prefix of word that fits
func (d *document) fit(word string, width float64) int {
	cut := 0
	for i := range word {
		if i > 0 && d.width(word[:i]) > width {
			break
		}
		cut = i
	}
	if cut == 0 {
		for i := range word {
			if i > 0 {
				return i
			}
		}
		return len(word)
	}
	return cut
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func displayDate(date string) string {
	date = strings.TrimSpace(date)
	if t, err := time.Parse(models.DateLayout, date); err == nil {
		return t.Format("1/2/2006")
	}
	if t, err := time.Parse(time.RFC3339, date); err == nil {
		return t.Format("1/2/2006")
	}
	return date
}
