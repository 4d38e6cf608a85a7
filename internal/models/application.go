package models

import "time"

// Application lifecycle statuses.
const (
	ApplicationDraft      = "draft"
	ApplicationSubmitted  = "submitted"
	ApplicationInReview   = "in_review"
	ApplicationAccepted   = "accepted"
	ApplicationRejected   = "rejected"
	ApplicationWaitlisted = "waitlisted"
)

// Application is a program application filed by an applicant.
type Application struct {
	ID           string
	ApplicantID  string
	Program      string
	EntryTerm    string // e.g. "fall-2027"
	Essay        string
	DocumentKeys []string // object-store keys for uploaded transcripts etc.
	Status       string
	ReviewerID   *string // officer who recorded the decision
	DecisionNote *string
	SubmittedAt  *time.Time
	DecidedAt    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DecisionStatus reports whether status is a terminal review decision.
func DecisionStatus(status string) bool {
	switch status {
	case ApplicationAccepted, ApplicationRejected, ApplicationWaitlisted:
		return true
	}
	return false
}
