package models

import (
	"time"
)

// EmailStatus is the lifecycle state of a queued email.
// Transitions only move forward: pending -> processing -> sent|failed.
type EmailStatus string

const (
	EmailStatusPending    EmailStatus = "pending"
	EmailStatusProcessing EmailStatus = "processing"
	EmailStatusSent       EmailStatus = "sent"
	EmailStatusFailed     EmailStatus = "failed"
)

// EmailQueueRecord is a unit of pending email work
type EmailQueueRecord struct {
	ID                  string         `json:"id" db:"id"`
	To                  string         `json:"to" db:"recipient"`
	Subject             string         `json:"subject" db:"subject"`
	Template            string         `json:"template" db:"template"`
	Data                map[string]any `json:"data,omitempty" db:"data"`
	Status              EmailStatus    `json:"status" db:"status"`
	CreatedAt           time.Time      `json:"createdAt" db:"created_at"`
	ProcessingStartedAt *time.Time     `json:"processingStartedAt,omitempty" db:"processing_started_at"`
	SentAt              *time.Time     `json:"sentAt,omitempty" db:"sent_at"`
	FailedAt            *time.Time     `json:"failedAt,omitempty" db:"failed_at"`
	ResendID            string         `json:"resendId,omitempty" db:"resend_id"`
	Error               string         `json:"error,omitempty" db:"error"`
}

// EnqueueEmailRequest is the body accepted by the enqueue endpoint
type EnqueueEmailRequest struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject"`
	Template string         `json:"template"`
	Data     map[string]any `json:"data"`
}

// EmailResult is the per-record entry of a batch report
type EmailResult struct {
	ID     string      `json:"id"`
	Status EmailStatus `json:"status"`
	To     string      `json:"to,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// BatchReport summarises one queue processing run
type BatchReport struct {
	Message   string        `json:"message"`
	Processed int           `json:"processed"`
	Failed    int           `json:"failed"`
	Results   []EmailResult `json:"results"`
}
