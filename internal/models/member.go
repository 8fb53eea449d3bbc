package models

import (
	"time"

	"gorm.io/gorm"
)

// Role names carried in JWT claims and checked by the RBAC middleware.
const (
	RoleFellowshipManager = "fellowship_manager"
	RoleRegionalHead      = "regional_head"
	RoleMember            = "member"
)

// Member is a registered fellowship member. Members are soft-deleted so
// attendance and tag history keeps pointing at a real row.
type Member struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	FullName           string         `gorm:"size:255;not null" json:"full_name"`
	Email              string         `gorm:"size:255;index" json:"email"`
	PhoneNumber        string         `gorm:"size:32" json:"phone_number"`
	FellowshipNumber   string         `gorm:"size:32;uniqueIndex;not null" json:"fellowship_number"`
	QRToken            string         `gorm:"size:64;uniqueIndex;not null" json:"qr_token"`
	CourseID           uint           `json:"course_id"`
	CollegeID          uint           `json:"college_id"`
	InitialYearOfStudy int            `json:"initial_year_of_study"`
	InitialSemester    int            `json:"initial_semester"`
	ResidenceID        uint           `json:"residence_id"`
	HostelName         string         `gorm:"size:255" json:"hostel_name"`
	RegionID           *uint          `gorm:"index" json:"region_id"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}
