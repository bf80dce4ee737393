package models

import "time"

// QuestionSource records whether the submitter chose to stay anonymous
type QuestionSource string

const (
	QuestionSourceAnonymous QuestionSource = "anonymous"
	QuestionSourceAudience  QuestionSource = "audience"
)

// QuestionStatus is fixed at creation from the event's requireApproval flag
type QuestionStatus string

const (
	QuestionStatusPending  QuestionStatus = "pending"
	QuestionStatusApproved QuestionStatus = "approved"
)

// DefaultAuthor is stored when no usable author name was supplied
const DefaultAuthor = "Anonymous"

// Question is an accepted audience question
type Question struct {
	ID        string         `json:"id" db:"id"`
	EventID   string         `json:"eventId" db:"event_id"`
	Question  string         `json:"question" db:"question"`
	Author    string         `json:"author" db:"author"`
	Source    QuestionSource `json:"source" db:"source"`
	Status    QuestionStatus `json:"status" db:"status"`
	Answered  bool           `json:"answered" db:"answered"`
	Timestamp string         `json:"timestamp" db:"timestamp"`
	CreatedAt int64          `json:"createdAt" db:"created_at"`
}

// SubmitQuestionRequest is the raw POST body of a submission.
// Fields are untyped so the validator can reject non-string values itself.
type SubmitQuestionRequest struct {
	EventID   any `json:"eventId"`
	Question  any `json:"question"`
	Author    any `json:"author"`
	Anonymous any `json:"anonymous"`
}

// IsAnonymous reports whether the anonymous flag is literally true
func (r *SubmitQuestionRequest) IsAnonymous() bool {
	b, ok := r.Anonymous.(bool)
	return ok && b
}

// ClientIdentity carries the transport-level identity used for rate limiting
type ClientIdentity struct {
	IP          string
	Fingerprint string
}

// SubmitQuestionResult is the success response of a submission
type SubmitQuestionResult struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	QuestionID string `json:"questionId"`
}

// TimestampLayout is the ISO-8601 form stored in Question.Timestamp, always UTC with milliseconds
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// FormatTimestamp renders t in TimestampLayout
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
