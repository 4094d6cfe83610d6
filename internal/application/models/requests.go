package models

import "hiretrack/pkg/domain"

// CreateApplicationRequest.CandidateID is ignored for candidate actors,
// who always apply as their linked profile.
type CreateApplicationRequest struct {
	JobID       domain.JobID        `json:"job_id"`
	CandidateID *domain.CandidateID `json:"candidate_id,omitempty"`
	CoverLetter string              `json:"cover_letter"`
}

type SetStatusRequest struct {
	Status string `json:"status"`
}

// ListFilter holds the optional query constraints for listing. Empty
// strings and nil mean "no constraint".
type ListFilter struct {
	CandidateID *domain.CandidateID
	Status      string
	Department  string
}

// Filter is the store-level query the visibility rules resolve to.
// JobIDs nil means any job; an empty non-nil slice matches nothing.
type Filter struct {
	CandidateID *domain.CandidateID
	Status      *Status
	JobIDs      []domain.JobID
}
