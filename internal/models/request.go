package models

import "time"

// Urgency of a manual request.
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// Label returns the Japanese display label (低/中/高).
func (u Urgency) Label() string {
	switch u {
	case UrgencyLow:
		return "低"
	case UrgencyMedium:
		return "中"
	case UrgencyHigh:
		return "高"
	}
	return string(u)
}

// RequestStatus is the triage state of a manual request.
type RequestStatus string

const (
	StatusPending    RequestStatus = "pending"
	StatusInProgress RequestStatus = "in_progress"
	StatusCompleted  RequestStatus = "completed"
	StatusRejected   RequestStatus = "rejected"
)

// Label returns the Japanese display label used on the admin screens.
func (s RequestStatus) Label() string {
	switch s {
	case StatusPending:
		return "未対応"
	case StatusInProgress:
		return "対応中"
	case StatusCompleted:
		return "完了"
	case StatusRejected:
		return "却下"
	}
	return string(s)
}

// ManualRequest is a request, submitted through the intake form, for a manual
// that does not exist yet.
type ManualRequest struct {
	ID                string        `json:"id"`
	RequesterName     string        `json:"requester_name"`
	RequesterEmail    string        `json:"requester_email"`
	Department        string        `json:"department,omitempty"`
	ManualTitle       string        `json:"manual_title"`
	ManualDescription string        `json:"manual_description"`
	Urgency           Urgency       `json:"urgency"`
	UseCase           string        `json:"use_case,omitempty"`
	ExpectedUsers     string        `json:"expected_users,omitempty"`
	AdditionalNotes   string        `json:"additional_notes,omitempty"`
	Status            RequestStatus `json:"status"`
	AdminNotes        string        `json:"admin_notes,omitempty"`
	ManualID          string        `json:"manual_id,omitempty"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
	CompletedAt       *time.Time    `json:"completed_at,omitempty"`
}
