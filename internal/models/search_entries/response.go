package models

import (
	entrymodels "io.winapps.depttimeline/internal/models/entry"
)

type YearGroup struct {
	Year    int                 `json:"year"`
	Entries []entrymodels.Entry `json:"entries"`
}

type SearchEntriesResponse struct {
	Entries []entrymodels.Entry `json:"entries"`
	Groups  []YearGroup         `json:"groups"`
	Years   []int               `json:"years"`
	Total   int                 `json:"total"`
}
