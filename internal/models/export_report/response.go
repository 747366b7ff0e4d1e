package models

type ExportReportResponse struct {
	ReportJobID string `json:"reportJobId"`
	Entries     int    `json:"entries"`
	Message     string `json:"message"`
}
