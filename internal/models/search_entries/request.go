package models

// SearchEntriesRequest is bound from the query string of GET /entries.
// Year and Category accept "ALL" (the default) to disable the filter.
type SearchEntriesRequest struct {
	SearchQuery string `form:"search"`
	Year        string `form:"year"`
	Category    string `form:"category"`
}
