package models

import (
	"time"

	"hiretrack/pkg/domain"
)

// View is an application with the candidate and job fields callers display
// alongside it.
type View struct {
	ID              domain.ApplicationID `json:"id"`
	CandidateID     domain.CandidateID   `json:"candidate_id"`
	CandidateName   string               `json:"candidate_name"`
	JobID           domain.JobID         `json:"job_id"`
	JobTitle        string               `json:"job_title"`
	JobDepartment   string               `json:"job_department"`
	ApplicationDate string               `json:"application_date"`
	Status          Status               `json:"status"`
	CoverLetter     string               `json:"cover_letter"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

func NewView(a *Application, candidateName, jobTitle, jobDepartment string) *View {
	return &View{
		ID:              a.ID,
		CandidateID:     a.CandidateID,
		CandidateName:   candidateName,
		JobID:           a.JobID,
		JobTitle:        jobTitle,
		JobDepartment:   jobDepartment,
		ApplicationDate: a.ApplicationDate.Format(time.DateOnly),
		Status:          a.Status,
		CoverLetter:     a.CoverLetter,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

type ListResponse struct {
	Applications []*View `json:"applications"`
	Count        int     `json:"count"`
}
