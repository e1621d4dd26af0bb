package models

type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityInfo    Severity = "info"
)

// NotificationRequest is the value the core hands to the dispatcher on every
// status transition. The core neither stores nor delivers it.
type NotificationRequest struct {
	RecipientID string   `json:"recipient_id"`
	Message     string   `json:"message"`
	Severity    Severity `json:"severity"`
	EventID     string   `json:"event_id,omitempty"`
}
