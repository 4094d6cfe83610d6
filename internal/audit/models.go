package audit

import "time"

// Action names an audited state change.
type Action string

const (
	EventUserRegistered          Action = "user_registered"
	EventCandidateLinked         Action = "candidate_linked"
	EventCandidateCreated        Action = "candidate_created"
	EventCandidateUpdated        Action = "candidate_updated"
	EventCandidateDeleted        Action = "candidate_deleted"
	EventResumeAttached          Action = "resume_attached"
	EventResumeDetached          Action = "resume_detached"
	EventJobPosted               Action = "job_posted"
	EventJobUpdated              Action = "job_updated"
	EventJobDeleted              Action = "job_deleted"
	EventApplicationCreated      Action = "application_created"
	EventApplicationStatusChange Action = "application_status_changed"
	EventApplicationWithdrawn    Action = "application_withdrawn"
	EventImportCompleted         Action = "import_completed"
)

// Event is emitted by services after a change commits. Keep it
// transport-agnostic so sinks can fan out.
type Event struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Action    Action    `json:"action"`
	ActorID   string    `json:"actor_id,omitempty"`
	ActorRole string    `json:"actor_role,omitempty"`
	Subject   string    `json:"subject"`
	Detail    string    `json:"detail,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
}
