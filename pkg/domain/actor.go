package domain

import "strings"

// Role is the single role an authenticated user holds.
type Role string

const (
	RoleCandidate Role = "CANDIDATE"
	RoleManager   Role = "MANAGER"
	RoleHR        Role = "HR"
)

// ParseRole accepts a role name case-insensitively. Empty input yields the
// CANDIDATE default used at registration.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case "", RoleCandidate:
		return RoleCandidate, true
	case RoleManager:
		return RoleManager, true
	case RoleHR:
		return RoleHR, true
	}
	return "", false
}

// IsStaff reports whether the role reviews applications (HR or Manager).
func (r Role) IsStaff() bool {
	return r == RoleHR || r == RoleManager
}

// Actor is the authenticated principal performing an operation.
// CandidateID is set only when the user account is linked to a candidate record.
type Actor struct {
	UserID      UserID
	Role        Role
	CandidateID *CandidateID
}

// LinkedCandidate returns the linked candidate id, if any.
func (a Actor) LinkedCandidate() (CandidateID, bool) {
	if a.CandidateID == nil || a.CandidateID.IsNil() {
		return 0, false
	}
	return *a.CandidateID, true
}

// Owns reports whether the actor is linked to the given candidate.
func (a Actor) Owns(candidateID CandidateID) bool {
	linked, ok := a.LinkedCandidate()
	return ok && linked == candidateID
}
