package models

import (
	"time"

	"gorm.io/datatypes"
)

// Notification delivery states.
const (
	NotificationStatusQueued = "queued"
	NotificationStatusSent   = "sent"
	NotificationStatusFailed = "failed"
)

// Notification types emitted by the workflows.
const (
	NotificationTypeEditRequestSubmitted = "edit_request.submitted"
	NotificationTypeEditRequestDecision  = "edit_request.decision"
	NotificationTypeFirstAttendance      = "attendance.first"
	NotificationTypeLeadershipChange     = "leadership.change"
)

// Notification is an outbound message owed to a member. Dispatch is
// best-effort: rows record what was attempted, not a delivery guarantee.
type Notification struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	MemberID  uint              `gorm:"index;not null" json:"member_id"`
	Type      string            `gorm:"size:64;not null" json:"type"`
	Subject   string            `gorm:"size:255;not null" json:"subject"`
	Body      string            `gorm:"size:2000" json:"body"`
	Metadata  datatypes.JSONMap `json:"metadata,omitempty"`
	Status    string            `gorm:"size:16;not null;default:queued" json:"status"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}
