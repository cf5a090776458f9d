package domain

import (
	"time"
)

// Supplier is an organization that produces or sources a commodity for a
// client. Production places belong to exactly one supplier.
type Supplier struct {
	ID        string    `json:"id"`
	ClientID  string    `json:"client_id"`
	Name      string    `json:"name"`
	Country   string    `json:"country"`
	Commodity string    `json:"commodity,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ExportCompleted is published once an export archive has been stored and
// recorded.
type ExportCompleted struct {
	RequestID   string            `json:"request_id,omitempty"`
	ExportID    string            `json:"export_id"`
	ClientID    string            `json:"client_id"`
	FileURL     string            `json:"file_url"`
	Summary     ValidationSummary `json:"validation_summary"`
	CompletedAt time.Time         `json:"completed_at"`
}

// ExportFailed is published when an asynchronous export could not be
// produced.
type ExportFailed struct {
	RequestID string    `json:"request_id"`
	ClientID  string    `json:"client_id"`
	Reason    string    `json:"reason"`
	FailedAt  time.Time `json:"failed_at"`
}
