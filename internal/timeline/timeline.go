// Package timeline holds the pure filtering and grouping rules applied to
// entries before they are shown or exported. Nothing here mutates its input.
package timeline

import (
	"sort"
	"strconv"
	"strings"

	models "io.winapps.depttimeline/internal/models/entry"
)

// All is the sentinel accepted for year and category meaning "no filter"
const All = "ALL"

// Query is the user's current filter selection. A zero Year or empty
// Category matches everything, as does the All sentinel.
type Query struct {
	Search   string
	Year     int
	Category models.Category
}

// ParseYear turns a year filter value into a Query year. All and the empty
// string yield 0.
func ParseYear(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, All) {
		return 0, nil
	}
	return strconv.Atoi(s)
}

// ParseCategory turns a category filter value into a Query category
func ParseCategory(s string) models.Category {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, All) {
		return ""
	}
	return models.Category(strings.ToUpper(s))
}

// Matches reports whether e passes every active filter
func (q Query) Matches(e models.Entry) bool {
	if q.Year != 0 && e.Year != q.Year {
		return false
	}
	if q.Category != "" && q.Category != All && e.Category != q.Category {
		return false
	}
	needle := strings.ToLower(strings.TrimSpace(q.Search))
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(e.Title), needle) ||
		strings.Contains(strings.ToLower(e.Description), needle)
}

// Filter returns the entries matching q, most recent date first
func Filter(entries []models.Entry, q Query) []models.Entry {
	out := make([]models.Entry, 0, len(entries))
	for _, e := range entries {
		if q.Matches(e) {
			out = append(out, e)
		}
	}
	SortByDateDesc(out)
	return out
}

// SortByDateDesc orders entries by date, newest first. Equal dates keep
// their relative order.
func SortByDateDesc(entries []models.Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date > entries[j].Date
	})
}

// Group is all entries sharing one year
type Group struct {
	Year    int            `json:"year"`
	Entries []models.Entry `json:"entries"`
}

// GroupByYear buckets entries by year, years descending. Order within a
// bucket follows the input.
func GroupByYear(entries []models.Entry) []Group {
	index := make(map[int]int)
	var groups []Group
	for _, e := range entries {
		i, ok := index[e.Year]
		if !ok {
			i = len(groups)
			index[e.Year] = i
			groups = append(groups, Group{Year: e.Year})
		}
		groups[i].Entries = append(groups[i].Entries, e)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Year > groups[j].Year
	})
	if groups == nil {
		groups = []Group{}
	}
	return groups
}

// AvailableYears lists the distinct years across entries, descending
func AvailableYears(entries []models.Entry) []int {
	seen := make(map[int]struct{})
	years := []int{}
	for _, e := range entries {
		if _, ok := seen[e.Year]; ok {
			continue
		}
		seen[e.Year] = struct{}{}
		years = append(years, e.Year)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}
