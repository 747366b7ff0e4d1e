package timeline

import (
	"fmt"
	"strings"
	"time"

	models "io.winapps.depttimeline/internal/models/entry"
)

// ExportCriteria selects the entries that go into a report. Start and End
// are inclusive YYYY-MM-DD bounds; either may be empty.
type ExportCriteria struct {
	Start    string
	End      string
	Category models.Category
}

// Validate checks that the bounds parse and are ordered
func (c ExportCriteria) Validate() error {
	var start, end time.Time
	var err error
	if c.Start != "" {
		if start, err = time.Parse(models.DateLayout, c.Start); err != nil {
			return fmt.Errorf("invalid start date %q", c.Start)
		}
	}
	if c.End != "" {
		if end, err = time.Parse(models.DateLayout, c.End); err != nil {
			return fmt.Errorf("invalid end date %q", c.End)
		}
	}
	if c.Start != "" && c.End != "" && end.Before(start) {
		return fmt.Errorf("end date %s is before start date %s", c.End, c.Start)
	}
	if c.Category != "" && c.Category != All && !c.Category.Valid() {
		return fmt.Errorf("unknown category %q", c.Category)
	}
	return nil
}

// Apply returns the entries inside the criteria, most recent first
func (c ExportCriteria) Apply(entries []models.Entry) []models.Entry {
	out := make([]models.Entry, 0, len(entries))
	for _, e := range entries {
		day := dayOf(e.Date)
		if c.Start != "" && day < c.Start {
			continue
		}
		if c.End != "" && day > c.End {
			continue
		}
		if c.Category != "" && c.Category != All && e.Category != c.Category {
			continue
		}
		out = append(out, e)
	}
	SortByDateDesc(out)
	return out
}

// dayOf trims an RFC 3339 timestamp down to its calendar date
func dayOf(date string) string {
	date = strings.TrimSpace(date)
	if len(date) > len(models.DateLayout) {
		return date[:len(models.DateLayout)]
	}
	return date
}
