// Package models defines user notifications.
package models

import (
	"strings"
	"time"
	"unicode/utf8"

	"hiretrack/pkg/domain"
	dErrors "hiretrack/pkg/domain-errors"
)

type Type string

const (
	TypeNewJob            Type = "NEW_JOB"
	TypeApplicationUpdate Type = "APPLICATION_UPDATE"
	TypeInterview         Type = "INTERVIEW"
)

func (t Type) Valid() bool {
	switch t {
	case TypeNewJob, TypeApplicationUpdate, TypeInterview:
		return true
	}
	return false
}

const maxTitleLength = 200

// Notification is addressed to a user account, not a candidate.
// Only fan-out creates notifications; the recipient can only mark them read.
type Notification struct {
	ID            domain.NotificationID `json:"id"`
	UserID        domain.UserID         `json:"user_id"`
	Type          Type                  `json:"type"`
	Title         string                `json:"title"`
	Message       string                `json:"message"`
	JobID         *domain.JobID         `json:"job_id,omitempty"`
	ApplicationID *domain.ApplicationID `json:"application_id,omitempty"`
	IsRead        bool                  `json:"is_read"`
	ReadAt        *time.Time            `json:"read_at,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
}

func NewNotification(userID domain.UserID, typ Type, title, message string, now time.Time) (*Notification, error) {
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "notification recipient is required")
	}
	if !typ.Valid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "unknown notification type: "+string(typ))
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "notification title cannot be empty")
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		title = string([]rune(title)[:maxTitleLength])
	}
	return &Notification{
		UserID:    userID,
		Type:      typ,
		Title:     title,
		Message:   message,
		CreatedAt: now,
	}, nil
}

// MarkRead sets the read flag. It reports false when already read, leaving
// ReadAt untouched.
func (n *Notification) MarkRead(now time.Time) bool {
	if n.IsRead {
		return false
	}
	n.IsRead = true
	n.ReadAt = &now
	return true
}
