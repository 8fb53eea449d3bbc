package models

import "time"

// Region groups members geographically. A region has at most one head at a
// time, and a member heads at most one region.
type Region struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Name           string    `gorm:"size:255;uniqueIndex;not null" json:"name"`
	RegionalHeadID *uint     `gorm:"index" json:"regional_head_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	RegionalHead *Member `gorm:"foreignKey:RegionalHeadID" json:"regional_head,omitempty"`
}

// MinistryTeam is a serving team, optionally attached to a region. The
// member count is denormalized for the org-structure read model.
type MinistryTeam struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	RegionID    *uint     `gorm:"index" json:"region_id,omitempty"`
	MemberCount int       `gorm:"not null;default:0" json:"member_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
