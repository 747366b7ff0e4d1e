package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// DateLayout is the calendar date format used for Entry.Date
const DateLayout = "2006-01-02"

// Category is the closed set of timeline entry kinds
type Category string

const (
	CategoryStudent Category = "STUDENT"
	CategoryFaculty Category = "FACULTY"
	CategoryEvent   Category = "EVENT"
	CategoryCollab  Category = "COLLAB"
)

var categoryLabels = map[Category]string{
	CategoryStudent: "Student Achievement",
	CategoryFaculty: "Faculty Achievement",
	CategoryEvent:   "Department Event",
	CategoryCollab:  "Collaboration / MoU",
}

// Categories returns every category in display order
func Categories() []Category {
	return []Category{CategoryStudent, CategoryFaculty, CategoryEvent, CategoryCollab}
}

// Valid reports whether c is one of the known categories
func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// Label returns the human readable name, or the raw value for unknown categories
func (c Category) Label() string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return string(c)
}

// Entry is a single timeline record
type Entry struct {
	ID          string   `json:"id" firestore:"-"`
	Title       string   `json:"title" firestore:"title"`
	Description string   `json:"description" firestore:"description"`
	Category    Category `json:"category" firestore:"category"`
	Date        string   `json:"date" firestore:"date"`
	Year        int      `json:"year" firestore:"year"`
	MediaURL    string   `json:"mediaUrl,omitempty" firestore:"mediaUrl,omitempty"`
	MediaURLs   []string `json:"mediaUrls" firestore:"mediaUrls"`
	Featured    bool     `json:"featured" firestore:"featured"`
	CreatedAt   int64    `json:"createdAt" firestore:"createdAt"`
}

// NewEntry is an entry that has not been stored yet and so has no identity
type NewEntry struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    Category `json:"category"`
	Date        string   `json:"date"`
	MediaURL    string   `json:"mediaUrl,omitempty"`
	MediaURLs   []string `json:"mediaUrls"`
	Featured    bool     `json:"featured"`
}

// WithIdentity builds the stored form of n
func (n NewEntry) WithIdentity(id string, createdAt time.Time) Entry {
	return Entry{
		ID:          id,
		Title:       n.Title,
		Description: n.Description,
		Category:    n.Category,
		Date:        n.Date,
		MediaURL:    n.MediaURL,
		MediaURLs:   append([]string(nil), n.MediaURLs...),
		Featured:    n.Featured,
		CreatedAt:   createdAt.UnixMilli(),
	}
}

// YearOf extracts the calendar year from a YYYY-MM-DD date.
// A full RFC 3339 timestamp is accepted too.
func YearOf(date string) (int, error) {
	date = strings.TrimSpace(date)
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		ts, tsErr := time.Parse(time.RFC3339, date)
		if tsErr != nil {
			return 0, fmt.Errorf("invalid date %q: %w", date, err)
		}
		t = ts
	}
	return t.Year(), nil
}

// Prepare enforces the write-time invariants: year follows date and
// mediaUrl mirrors the first element of mediaUrls.
func (e *Entry) Prepare() error {
	year, err := YearOf(e.Date)
	if err != nil {
		return err
	}
	e.Year = year

	urls := make([]string, 0, len(e.MediaURLs))
	for _, u := range e.MediaURLs {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		urls = append(urls, NormalizeMediaURL(u))
	}
	e.MediaURLs = urls
	e.MediaURL = NormalizeMediaURL(strings.TrimSpace(e.MediaURL))

	e.syncMedia()
	return nil
}

// Normalize is applied on every read. Legacy records that only carry
// mediaUrl get it promoted into mediaUrls.
func (e *Entry) Normalize() {
	if year, err := YearOf(e.Date); err == nil {
		e.Year = year
	}
	e.syncMedia()
}

func (e *Entry) syncMedia() {
	switch {
	case len(e.MediaURLs) > 0:
		e.MediaURL = e.MediaURLs[0]
	case e.MediaURL != "":
		e.MediaURLs = []string{e.MediaURL}
	default:
		e.MediaURLs = []string{}
	}
}

// Attachments returns the ordered attachment references
func (e Entry) Attachments() []string {
	if len(e.MediaURLs) > 0 {
		return e.MediaURLs
	}
	if e.MediaURL != "" {
		return []string{e.MediaURL}
	}
	return nil
}

// PDFMarker is appended to uploaded document URLs since there is no MIME field
const PDFMarker = "#type=pdf"

// IsDocument reports whether an attachment reference points at a PDF
func IsDocument(url string) bool {
	lower := strings.ToLower(url)
	return strings.Contains(lower, ".pdf") || strings.Contains(lower, "type=pdf")
}

var driveFileID = regexp.MustCompile(`/d/([^/]+)`)

// NormalizeMediaURL rewrites Google Drive viewer links into direct thumbnail links
func NormalizeMediaURL(url string) string {
	if !strings.Contains(url, "drive.google.com") || !strings.Contains(url, "/view") {
		return url
	}
	m := driveFileID.FindStringSubmatch(url)
	if len(m) < 2 || m[1] == "" {
		return url
	}
	return fmt.Sprintf("https://drive.google.com/thumbnail?id=%s&sz=w1000", m[1])
}

// ValidationError describes a rejected field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the fields the entry form requires
func (n NewEntry) Validate() error {
	if strings.TrimSpace(n.Title) == "" {
		return &ValidationError{Field: "title", Message: "is required"}
	}
	if strings.TrimSpace(n.Description) == "" {
		return &ValidationError{Field: "description", Message: "is required"}
	}
	if !n.Category.Valid() {
		return &ValidationError{Field: "category", Message: fmt.Sprintf("unknown category %q", n.Category)}
	}
	if _, err := YearOf(n.Date); err != nil {
		return &ValidationError{Field: "date", Message: "must be YYYY-MM-DD"}
	}
	return nil
}
