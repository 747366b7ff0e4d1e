package models

type SessionResponse struct {
	SessionID         string `json:"sessionId"`
	State             string `json:"state"`
	RemainingAttempts int    `json:"remainingAttempts"`
	Message           string `json:"message,omitempty"`
}
