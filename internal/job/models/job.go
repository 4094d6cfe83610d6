// Package models defines job openings.
package models

import (
	"strings"
	"time"
	"unicode/utf8"

	"hiretrack/pkg/domain"
	dErrors "hiretrack/pkg/domain-errors"
)

const (
	maxTitleLength      = 100
	maxDepartmentLength = 100

	DefaultDepartment = "Engineering"
	DefaultPositions  = 1
)

// Job is an opening candidates can apply to.
//
// Invariants:
//   - Title is non-empty, at most 100 characters
//   - Positions is at least 1
//   - Department is non-empty
type Job struct {
	ID          domain.JobID   `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Positions   int            `json:"positions"`
	Department  string         `json:"department"`
	CreatedBy   *domain.UserID `json:"created_by,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// NewJob applies the defaults for positions (1) and department
// (Engineering) when they are not supplied.
func NewJob(title, description string, positions *int, department string, createdBy domain.UserID, now time.Time) (*Job, error) {
	j := &Job{
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		Positions:   DefaultPositions,
		Department:  strings.TrimSpace(department),
		CreatedAt:   now,
	}
	if positions != nil {
		j.Positions = *positions
	}
	if j.Department == "" {
		j.Department = DefaultDepartment
	}
	if !createdBy.IsNil() {
		j.CreatedBy = &createdBy
	}
	if err := j.validate(); err != nil {
		return nil, err
	}
	return j, nil
}

func (j *Job) validate() error {
	if j.Title == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "title cannot be empty")
	}
	if utf8.RuneCountInString(j.Title) > maxTitleLength {
		return dErrors.New(dErrors.CodeInvariantViolation, "title must be 100 characters or less")
	}
	if j.Positions < 1 {
		return dErrors.New(dErrors.CodeInvariantViolation, "positions must be at least 1")
	}
	if j.Department == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "department cannot be empty")
	}
	if utf8.RuneCountInString(j.Department) > maxDepartmentLength {
		return dErrors.New(dErrors.CodeInvariantViolation, "department must be 100 characters or less")
	}
	return nil
}

// Update is a partial edit. Nil fields are left unchanged.
type Update struct {
	Title       *string
	Description *string
	Positions   *int
	Department  *string
}

// CanApply reports whether u would leave the job valid.
func (j *Job) CanApply(u Update) error {
	cp := *j
	cp.apply(u)
	return cp.validate()
}

// Apply edits the job in place. Call CanApply first.
func (j *Job) Apply(u Update) {
	j.apply(u)
}

func (j *Job) apply(u Update) {
	if u.Title != nil {
		j.Title = strings.TrimSpace(*u.Title)
	}
	if u.Description != nil {
		j.Description = strings.TrimSpace(*u.Description)
	}
	if u.Positions != nil {
		j.Positions = *u.Positions
	}
	if u.Department != nil {
		j.Department = strings.TrimSpace(*u.Department)
	}
}
