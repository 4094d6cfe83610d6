package domain

import (
	"strconv"
	"strings"

	dErrors "hiretrack/pkg/domain-errors"
)

// Typed identifiers keep the compiler from mixing up keys of different
// entities. All are positive database sequence values; zero means "unset".
type (
	UserID         int64
	CandidateID    int64
	JobID          int64
	ApplicationID  int64
	NotificationID int64
)

func (id UserID) IsNil() bool         { return id == 0 }
func (id CandidateID) IsNil() bool    { return id == 0 }
func (id JobID) IsNil() bool          { return id == 0 }
func (id ApplicationID) IsNil() bool  { return id == 0 }
func (id NotificationID) IsNil() bool { return id == 0 }

func (id UserID) String() string         { return strconv.FormatInt(int64(id), 10) }
func (id CandidateID) String() string    { return strconv.FormatInt(int64(id), 10) }
func (id JobID) String() string          { return strconv.FormatInt(int64(id), 10) }
func (id ApplicationID) String() string  { return strconv.FormatInt(int64(id), 10) }
func (id NotificationID) String() string { return strconv.FormatInt(int64(id), 10) }

// ParseUserID parses a user id from a path or claim value.
func ParseUserID(s string) (UserID, error) {
	v, err := parsePositive(s, "user id")
	return UserID(v), err
}

// ParseCandidateID parses a candidate id from a path or query value.
func ParseCandidateID(s string) (CandidateID, error) {
	v, err := parsePositive(s, "candidate id")
	return CandidateID(v), err
}

// ParseJobID parses a job id from a path value.
func ParseJobID(s string) (JobID, error) {
	v, err := parsePositive(s, "job id")
	return JobID(v), err
}

// ParseApplicationID parses an application id from a path value.
func ParseApplicationID(s string) (ApplicationID, error) {
	v, err := parsePositive(s, "application id")
	return ApplicationID(v), err
}

// ParseNotificationID parses a notification id from a path value.
func ParseNotificationID(s string) (NotificationID, error) {
	v, err := parsePositive(s, "notification id")
	return NotificationID(v), err
}

func parsePositive(s, what string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, dErrors.New(dErrors.CodeInvalidInput, what+" is required")
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "invalid "+what)
	}
	if v <= 0 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, what+" must be positive")
	}
	return v, nil
}
