package models

type PostJobRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Positions   *int   `json:"positions,omitempty"`
	Department  string `json:"department"`
}

type UpdateJobRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Positions   *int    `json:"positions,omitempty"`
	Department  *string `json:"department,omitempty"`
}

func (r *UpdateJobRequest) ToUpdate() Update {
	return Update{
		Title:       r.Title,
		Description: r.Description,
		Positions:   r.Positions,
		Department:  r.Department,
	}
}
