package models

import "time"

// Tag types. SYSTEM tags are owned by workflows and are never freely
// removable through the custom-tag endpoints.
const (
	TagTypeSystem = "SYSTEM"
	TagTypeCustom = "CUSTOM"
)

// Well-known system tags managed by the check-in and leadership workflows.
const (
	TagPendingFirstAttendance = "PENDING_FIRST_ATTENDANCE"
	TagRegionalHead           = "REGIONAL_HEAD"
)

// Tag is a named label that can be attached to members.
type Tag struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Type        string    `gorm:"size:16;not null;default:CUSTOM" json:"type"`
	Description string    `gorm:"size:500" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// MemberTag links a member to a tag. Rows are deactivated rather than
// deleted; re-assignment always creates a fresh row so the audit trail of
// who assigned and removed what survives.
//
// Invariant: at most one active row per (member, tag) pair.
type MemberTag struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	MemberID      uint       `gorm:"index:idx_member_tag,priority:1;not null" json:"member_id"`
	TagID         uint       `gorm:"index:idx_member_tag,priority:2;not null" json:"tag_id"`
	IsActive      bool       `gorm:"not null;default:true;index" json:"is_active"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	AssignedBy    uint       `gorm:"not null" json:"assigned_by"`
	AssignedAt    time.Time  `gorm:"not null" json:"assigned_at"`
	Note          string     `gorm:"size:500" json:"note"`
	RemovedBy     *uint      `json:"removed_by,omitempty"`
	RemovedAt     *time.Time `json:"removed_at,omitempty"`
	RemovalReason string     `gorm:"size:500" json:"removal_reason"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	Tag    Tag    `gorm:"foreignKey:TagID" json:"tag,omitempty"`
	Member Member `gorm:"foreignKey:MemberID" json:"-"`
}

// ActiveAt reports whether the tag counts as active at the given instant.
// Expired rows stay untouched in storage and are simply reported inactive;
// cleanup happens on a later write, never on the read path.
func (mt MemberTag) ActiveAt(now time.Time) bool {
	if !mt.IsActive {
		return false
	}
	return mt.ExpiresAt == nil || mt.ExpiresAt.After(now)
}
