package models

type UnlockRequest struct {
	PIN string `json:"pin"`
}
