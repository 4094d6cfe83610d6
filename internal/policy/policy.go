// Package policy is the single table of what each role may do.
//
// Services ask Decide (or Authorize) before acting. Adding a role or scoping
// rule, such as department-limited manager visibility, means editing the
// table here and nowhere else.
package policy

import (
	"fmt"

	"hiretrack/pkg/domain"
	dErrors "hiretrack/pkg/domain-errors"
)

// Operation names an action subject to role policy.
type Operation string

const (
	ListApplications        Operation = "applications.list"
	ViewApplication         Operation = "applications.view"
	CreateApplication       Operation = "applications.create"
	UpdateApplicationStatus Operation = "applications.update_status"
	WithdrawApplication     Operation = "applications.withdraw"

	PostJob   Operation = "jobs.post"
	UpdateJob Operation = "jobs.update"
	ViewJobs  Operation = "jobs.view"
	DeleteJob Operation = "jobs.delete"

	ViewCandidate   Operation = "candidates.view"
	ListCandidates  Operation = "candidates.list"
	CreateCandidate Operation = "candidates.create"
	UpdateCandidate Operation = "candidates.update"
	DeleteCandidate Operation = "candidates.delete"

	LinkCandidate Operation = "users.link_candidate"
)

// Decision is the outcome of a policy lookup.
type Decision int

const (
	// Deny is the zero value so that unknown pairs deny.
	Deny Decision = iota
	// Allow permits the operation with no row restriction.
	Allow
	// ScopeOwn permits the operation on rows belonging to the actor's linked candidate.
	ScopeOwn
	// ScopeAll permits the operation on every row.
	ScopeAll
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case ScopeOwn:
		return "scope_own"
	case ScopeAll:
		return "scope_all"
	default:
		return "deny"
	}
}

// Permitted reports whether the decision lets the operation proceed at all.
func (d Decision) Permitted() bool {
	return d != Deny
}

type key struct {
	role domain.Role
	op   Operation
}

var table = map[key]Decision{
	{domain.RoleCandidate, ListApplications}:    ScopeOwn,
	{domain.RoleCandidate, ViewApplication}:     ScopeOwn,
	{domain.RoleCandidate, CreateApplication}:   ScopeOwn,
	{domain.RoleCandidate, WithdrawApplication}: ScopeOwn,
	{domain.RoleCandidate, ViewJobs}:            Allow,
	{domain.RoleCandidate, ViewCandidate}:       ScopeOwn,
	{domain.RoleCandidate, UpdateCandidate}:     ScopeOwn,

	{domain.RoleManager, ListApplications}:        ScopeAll,
	{domain.RoleManager, ViewApplication}:         ScopeAll,
	{domain.RoleManager, CreateApplication}:       Allow,
	{domain.RoleManager, UpdateApplicationStatus}: Allow,
	{domain.RoleManager, PostJob}:                 Allow,
	{domain.RoleManager, UpdateJob}:               Allow,
	{domain.RoleManager, ViewJobs}:                Allow,
	{domain.RoleManager, ViewCandidate}:           ScopeAll,
	{domain.RoleManager, ListCandidates}:          ScopeAll,
	{domain.RoleManager, CreateCandidate}:         Allow,
	{domain.RoleManager, UpdateCandidate}:         ScopeAll,

	{domain.RoleHR, ListApplications}:        ScopeAll,
	{domain.RoleHR, ViewApplication}:         ScopeAll,
	{domain.RoleHR, CreateApplication}:       Allow,
	{domain.RoleHR, UpdateApplicationStatus}: Allow,
	{domain.RoleHR, PostJob}:                 Allow,
	{domain.RoleHR, UpdateJob}:               Allow,
	{domain.RoleHR, ViewJobs}:                Allow,
	{domain.RoleHR, DeleteJob}:               Allow,
	{domain.RoleHR, ViewCandidate}:           ScopeAll,
	{domain.RoleHR, ListCandidates}:          ScopeAll,
	{domain.RoleHR, CreateCandidate}:         Allow,
	{domain.RoleHR, UpdateCandidate}:         ScopeAll,
	{domain.RoleHR, DeleteCandidate}:         Allow,
	{domain.RoleHR, LinkCandidate}:           Allow,
}

// Decide looks up the decision for role and op. Unknown pairs deny.
func Decide(role domain.Role, op Operation) Decision {
	return table[key{role, op}]
}

// Authorize returns a Forbidden error when the actor's role may not perform op.
func Authorize(actor domain.Actor, op Operation) (Decision, error) {
	d := Decide(actor.Role, op)
	if d == Deny {
		return Deny, dErrors.New(dErrors.CodeForbidden, fmt.Sprintf("role %s may not perform %s", actor.Role, op))
	}
	return d, nil
}

// AuthorizeCandidate checks op against a specific candidate's rows. ScopeOwn
// decisions pass only when the actor is linked to candidateID.
func AuthorizeCandidate(actor domain.Actor, op Operation, candidateID domain.CandidateID) error {
	d, err := Authorize(actor, op)
	if err != nil {
		return err
	}
	if d == ScopeOwn && !actor.Owns(candidateID) {
		return dErrors.New(dErrors.CodeForbidden, fmt.Sprintf("%s is limited to the caller's own candidate profile", op))
	}
	return nil
}
