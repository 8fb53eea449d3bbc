package models

import (
	"time"

	"gorm.io/datatypes"
)

// Profile edit request states. PENDING moves to exactly one of the terminal
// states and the row is immutable afterwards.
const (
	EditRequestStatusPending  = "PENDING"
	EditRequestStatusApproved = "APPROVED"
	EditRequestStatusRejected = "REJECTED"
)

// FieldChange is one proposed field mutation, captured against the values
// stored at submission time. Values are rendered to strings for the audit
// trail; comparison happens typed before anything is persisted.
type FieldChange struct {
	Field    string `json:"field"`
	OldValue string `json:"old_value"`
	NewValue string `json:"new_value"`
}

// ProfileEditRequest captures proposed member profile changes awaiting
// review. At most one PENDING request may exist per member.
type ProfileEditRequest struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	MemberID   uint           `gorm:"index;not null" json:"member_id"`
	Changes    datatypes.JSON `gorm:"not null" json:"changes"`
	Reason     string         `gorm:"size:1000" json:"reason"`
	Status     string         `gorm:"size:16;not null;default:PENDING;index" json:"status"`
	ReviewedBy *uint          `json:"reviewed_by,omitempty"`
	ReviewNote string         `gorm:"size:1000" json:"review_note"`
	ReviewedAt *time.Time     `json:"reviewed_at,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`

	Member Member `gorm:"foreignKey:MemberID" json:"-"`
}

// Resolved reports whether the request has reached a terminal state.
func (r ProfileEditRequest) Resolved() bool {
	return r.Status != EditRequestStatusPending
}
