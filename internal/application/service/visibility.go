package service

import (
	"hiretrack/internal/application/models"
	"hiretrack/internal/policy"
	"hiretrack/pkg/domain"
	dErrors "hiretrack/pkg/domain-errors"
)

// scope narrows a caller's list query to what their role may see. The
// returned bool is false when nothing can be visible, so callers can skip
// the store entirely.
//
// Candidates are pinned to their linked profile before the query's own
// constraints apply, so a different candidate_id narrows to nothing rather
// than widening the result.
func scope(actor domain.Actor, q models.ListFilter) (models.Filter, bool, error) {
	decision, err := policy.Authorize(actor, policy.ListApplications)
	if err != nil {
		return models.Filter{}, false, err
	}

	var f models.Filter
	if q.Status != "" {
		st, ok := models.ParseStatus(q.Status)
		if !ok {
			return models.Filter{}, false, dErrors.New(dErrors.CodeValidation, "unknown status: "+q.Status)
		}
		f.Status = &st
	}

	switch decision {
	case policy.ScopeOwn:
		linked, ok := actor.LinkedCandidate()
		if !ok {
			return models.Filter{}, false, nil
		}
		if q.CandidateID != nil && *q.CandidateID != linked {
			return models.Filter{}, false, nil
		}
		f.CandidateID = &linked
	default:
		f.CandidateID = q.CandidateID
	}
	return f, true, nil
}

// canView applies the ViewApplication decision to one row.
func canView(actor domain.Actor, a *models.Application) bool {
	switch policy.Decide(actor.Role, policy.ViewApplication) {
	case policy.ScopeAll, policy.Allow:
		return true
	case policy.ScopeOwn:
		return actor.Owns(a.CandidateID)
	default:
		return false
	}
}
