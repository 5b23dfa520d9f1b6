package models

import "time"

// Profile holds per-account settings and quota counters.
type Profile struct {
	ID           string
	Email        string
	UploadsUsed  int
	EmailsUsed   int
	QuotaStartAt *time.Time
	CreatedAt    time.Time
}

// QuotaStatus describes the rolling-window usage of an account.
type QuotaStatus struct {
	UploadsUsed  int        `json:"uploadsUsed"`
	UploadsLimit int        `json:"uploadsLimit"`
	UploadsLeft  int        `json:"uploadsLeft"`
	EmailsUsed   int        `json:"emailsUsed"`
	EmailsLimit  int        `json:"emailsLimit"`
	EmailsLeft   int        `json:"emailsLeft"`
	ResetAt      *time.Time `json:"resetAt"`
}
