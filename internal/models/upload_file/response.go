package models

type UploadFileResponse struct {
	URL         string `json:"url"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
	Ephemeral   bool   `json:"ephemeral"`
}
