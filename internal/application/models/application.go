// Package models defines applications and their status lifecycle.
package models

import (
	"fmt"
	"strings"
	"time"

	"hiretrack/pkg/domain"
	dErrors "hiretrack/pkg/domain-errors"
)

// Status is an application's position in the review lifecycle.
type Status string

const (
	StatusReceived      Status = "Received"
	StatusUnderReview   Status = "Under Review"
	StatusInterview     Status = "Interview"
	StatusOfferExtended Status = "Offer Extended"
	StatusRejected      Status = "Rejected"
	StatusWithdrawn     Status = "Withdrawn"
)

var statuses = []Status{
	StatusReceived,
	StatusUnderReview,
	StatusInterview,
	StatusOfferExtended,
	StatusRejected,
	StatusWithdrawn,
}

// Statuses lists every status in lifecycle order.
func Statuses() []Status {
	out := make([]Status, len(statuses))
	copy(out, statuses)
	return out
}

// ParseStatus matches a status name case-insensitively, ignoring
// surrounding whitespace.
func ParseStatus(s string) (Status, bool) {
	s = strings.TrimSpace(s)
	for _, st := range statuses {
		if strings.EqualFold(string(st), s) {
			return st, true
		}
	}
	return "", false
}

// IsTerminal reports whether no further transition is allowed.
func (s Status) IsTerminal() bool {
	return s == StatusRejected || s == StatusWithdrawn
}

// Application links one candidate to one job opening.
//
// Invariants:
//   - ApplicationDate is a UTC calendar date and never changes
//   - Status never leaves a terminal state (Rejected, Withdrawn)
type Application struct {
	ID              domain.ApplicationID `json:"id"`
	CandidateID     domain.CandidateID   `json:"candidate_id"`
	JobID           domain.JobID         `json:"job_id"`
	ApplicationDate time.Time            `json:"application_date"`
	Status          Status               `json:"status"`
	CoverLetter     string               `json:"cover_letter"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

// NewApplication starts an application in Received, dated today.
func NewApplication(candidateID domain.CandidateID, jobID domain.JobID, coverLetter string, today, now time.Time) (*Application, error) {
	if candidateID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "candidate is required")
	}
	if jobID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "job is required")
	}
	return &Application{
		CandidateID:     candidateID,
		JobID:           jobID,
		ApplicationDate: DateOf(today),
		Status:          StatusReceived,
		CoverLetter:     strings.TrimSpace(coverLetter),
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// DateOf truncates t to its UTC calendar date.
func DateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// CanTransitionTo checks a staff status change. The target must differ from
// the current status and the current status must not be terminal.
func (a *Application) CanTransitionTo(target Status) error {
	if a.Status.IsTerminal() {
		return dErrors.NewWithReason(dErrors.CodeConflict, dErrors.ReasonInvalidTransition,
			fmt.Sprintf("application is %s and can no longer change status", a.Status))
	}
	if a.Status == target {
		return dErrors.NewWithReason(dErrors.CodeConflict, dErrors.ReasonInvalidTransition,
			fmt.Sprintf("application is already %s", a.Status))
	}
	return nil
}

// CanWithdraw fails with AlreadyTerminal once the application is closed.
func (a *Application) CanWithdraw() error {
	if a.Status.IsTerminal() {
		return dErrors.NewWithReason(dErrors.CodeConflict, dErrors.ReasonAlreadyTerminal,
			fmt.Sprintf("application is already %s", a.Status))
	}
	return nil
}

func (a *Application) Transition(target Status, now time.Time) {
	a.Status = target
	a.UpdatedAt = now
}
