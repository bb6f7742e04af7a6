package core

import "time"

// Delivery is a single inbound webhook notification.
type Delivery struct {
	ID      string
	Name    string
	Payload []byte
}

// Delivery outcomes stored in the history.
const (
	DeliveryIgnored   = "ignored"
	DeliveryProcessed = "processed"
	DeliveryFailed    = "failed"
)

// DeliveryRecord is a processed delivery stored in the database.
type DeliveryRecord struct {
	ID           int64     `db:"id" json:"id"`
	DeliveryID   string    `db:"delivery_id" json:"delivery_id"`
	Event        string    `db:"event" json:"event"`
	Action       string    `db:"action" json:"action"`
	RepoFullName string    `db:"repo_full_name" json:"repo_full_name"`
	Outcome      string    `db:"outcome" json:"outcome"`
	Error        string    `db:"error" json:"error,omitempty"`
	DurationMS   int64     `db:"duration_ms" json:"duration_ms"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
