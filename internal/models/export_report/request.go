package models

type ExportReportRequest struct {
	StartDate     string `json:"startDate,omitempty"` // inclusive, YYYY-MM-DD
	EndDate       string `json:"endDate,omitempty"`   // inclusive, YYYY-MM-DD
	Category      string `json:"category,omitempty"`  // empty or "ALL" for every category
	IncludeImages bool   `json:"includeImages"`
}
