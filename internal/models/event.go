package models

// EventStatus represents the publication state of an event
type EventStatus string

const (
	EventStatusDraft     EventStatus = "draft"
	EventStatusPublished EventStatus = "published"
	EventStatusUnlisted  EventStatus = "unlisted"
	EventStatusActive    EventStatus = "active"
	EventStatusEnded     EventStatus = "ended"
	EventStatusArchived  EventStatus = "archived"
)

// OpenStatuses lists the event statuses that accept audience questions
var OpenStatuses = map[EventStatus]bool{
	EventStatusPublished: true,
	EventStatusUnlisted:  true,
	EventStatusActive:    true,
}

// Event is the subset of an event record the intake pipeline reads.
// EnableQuestionSubmission and AcceptingQuestions are nil when the field was never set,
// which counts as enabled.
type Event struct {
	ID                       string      `json:"id" db:"id"`
	Title                    string      `json:"title,omitempty" db:"title"`
	Status                   EventStatus `json:"status" db:"status"`
	EnableQuestionSubmission *bool       `json:"enableQuestionSubmission,omitempty" db:"enable_question_submission"`
	AcceptingQuestions       *bool       `json:"acceptingQuestions,omitempty" db:"accepting_questions"`
	RequireApproval          bool        `json:"requireApproval" db:"require_approval"`
	QuestionCount            int         `json:"questionCount" db:"question_count"`
	OrganizerEmail           string      `json:"organizerEmail,omitempty" db:"organizer_email"`
}

// IsOpen reports whether the event status allows submissions
func (e *Event) IsOpen() bool {
	return OpenStatuses[e.Status]
}

// IsAcceptingQuestions reports whether neither submission flag is explicitly false
func (e *Event) IsAcceptingQuestions() bool {
	if e.EnableQuestionSubmission != nil && !*e.EnableQuestionSubmission {
		return false
	}
	if e.AcceptingQuestions != nil && !*e.AcceptingQuestions {
		return false
	}
	return true
}
