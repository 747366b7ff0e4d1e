package models

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrepare_DerivesYearFromDate(t *testing.T) {
	e := Entry{Date: "2023-11-15", Year: 1999}
	require.NoError(t, e.Prepare())
	assert.Equal(t, 2023, e.Year)

	e.Date = "2024-01-02"
	require.NoError(t, e.Prepare())
	assert.Equal(t, 2024, e.Year)
}

func TestPrepare_RejectsBadDate(t *testing.T) {
	e := Entry{Date: "15/11/2023"}
	assert.Error(t, e.Prepare())
}

func TestPrepare_MediaURLMirrorsFirstElement(t *testing.T) {
	e := Entry{
		Date:      "2024-03-10",
		MediaURL:  "https://example.com/old.jpg",
		MediaURLs: []string{"https://example.com/a.jpg", " ", "https://example.com/b.jpg"},
	}
	require.NoError(t, e.Prepare())
	assert.Equal(t, []string{"https://example.com/a.jpg", "https://example.com/b.jpg"}, e.MediaURLs)
	assert.Equal(t, "https://example.com/a.jpg", e.MediaURL)
}

func TestPrepare_LegacyMediaURLOnly(t *testing.T) {
	e := Entry{Date: "2024-03-10", MediaURL: "https://example.com/a.jpg"}
	require.NoError(t, e.Prepare())
	assert.Equal(t, []string{"https://example.com/a.jpg"}, e.MediaURLs)
}

func TestPrepare_RewritesDriveLinks(t *testing.T) {
	e := Entry{
		Date:      "2024-03-10",
		MediaURLs: []string{"https://drive.google.com/file/d/abc123/view?usp=sharing"},
	}
	require.NoError(t, e.Prepare())
	assert.Equal(t, "https://drive.google.com/thumbnail?id=abc123&sz=w1000", e.MediaURLs[0])
	assert.Equal(t, e.MediaURLs[0], e.MediaURL)
}

func TestNormalize(t *testing.T) {
	t.Run("synthesizes mediaUrls from legacy field", func(t *testing.T) {
		e := Entry{Date: "2023-09-20", MediaURL: "x.jpg"}
		e.Normalize()
		assert.Equal(t, []string{"x.jpg"}, e.MediaURLs)
		assert.Equal(t, 2023, e.Year)
	})

	t.Run("empty media becomes empty slice", func(t *testing.T) {
		e := Entry{Date: "2023-09-20"}
		e.Normalize()
		assert.NotNil(t, e.MediaURLs)
		assert.Empty(t, e.MediaURLs)
	})

	t.Run("unparseable date keeps stored year", func(t *testing.T) {
		e := Entry{Date: "soon", Year: 2020}
		e.Normalize()
		assert.Equal(t, 2020, e.Year)
	})
}

func TestIsDocument(t *testing.T) {
	assert.True(t, IsDocument("https://x/y/report.PDF"))
	assert.True(t, IsDocument("/blobs/123"+PDFMarker))
	assert.False(t, IsDocument("https://x/y/photo.jpg"))
}

func TestWithIdentity(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	n := NewEntry{Title: "t", MediaURLs: []string{"a"}}
	e := n.WithIdentity("id-1", now)
	assert.Equal(t, "id-1", e.ID)
	assert.Equal(t, int64(1700000000123), e.CreatedAt)

	n.MediaURLs[0] = "changed"
	assert.Equal(t, "a", e.MediaURLs[0])
}

func TestValidate(t *testing.T) {
	valid := NewEntry{Title: "T", Description: "D", Category: CategoryEvent, Date: "2024-01-01"}
	require.NoError(t, valid.Validate())

	cases := map[string]func(n *NewEntry){
		"title":       func(n *NewEntry) { n.Title = "   " },
		"description": func(n *NewEntry) { n.Description = "" },
		"category":    func(n *NewEntry) { n.Category = "ALUMNI" },
		"date":        func(n *NewEntry) { n.Date = "" },
	}
	for field, mutate := range cases {
		t.Run(field, func(t *testing.T) {
			n := valid
			mutate(&n)
			err := n.Validate()
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, field, verr.Field)
		})
	}
}

func TestCategoryLabel(t *testing.T) {
	assert.Equal(t, "Collaboration / MoU", CategoryCollab.Label())
	assert.Equal(t, "OTHER", Category("OTHER").Label())
	assert.Len(t, Categories(), 4)
}
