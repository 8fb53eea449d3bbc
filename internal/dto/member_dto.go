package dto

import (
	"time"

	"github.com/fellowship-hq/fellowship-api/internal/models"
)

// MemberUpdateRequest captures the manager-only direct profile edit. Every
// field is optional; set fields are written without an approval gate.
type MemberUpdateRequest struct {
	FullName           *string `json:"full_name" validate:"omitempty,min=2,max=255"`
	Email              *string `json:"email" validate:"omitempty,email"`
	PhoneNumber        *string `json:"phone_number" validate:"omitempty,max=32"`
	CourseID           *uint   `json:"course_id" validate:"omitempty,gt=0"`
	InitialYearOfStudy *int    `json:"initial_year_of_study" validate:"omitempty,min=1,max=7"`
	InitialSemester    *int    `json:"initial_semester" validate:"omitempty,min=1,max=3"`
	ResidenceID        *uint   `json:"residence_id" validate:"omitempty,gt=0"`
	HostelName         *string `json:"hostel_name" validate:"omitempty,max=255"`
}

// MemberResponse serializes a member profile.
type MemberResponse struct {
	ID                 uint      `json:"id"`
	FullName           string    `json:"full_name"`
	Email              string    `json:"email"`
	PhoneNumber        string    `json:"phone_number"`
	FellowshipNumber   string    `json:"fellowship_number"`
	CourseID           uint      `json:"course_id"`
	CollegeID          uint      `json:"college_id"`
	InitialYearOfStudy int       `json:"initial_year_of_study"`
	InitialSemester    int       `json:"initial_semester"`
	ResidenceID        uint      `json:"residence_id"`
	HostelName         string    `json:"hostel_name"`
	RegionID           *uint     `json:"region_id,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// NewMemberResponse converts a member model into a DTO.
func NewMemberResponse(member models.Member) MemberResponse {
	return MemberResponse{
		ID:                 member.ID,
		FullName:           member.FullName,
		Email:              member.Email,
		PhoneNumber:        member.PhoneNumber,
		FellowshipNumber:   member.FellowshipNumber,
		CourseID:           member.CourseID,
		CollegeID:          member.CollegeID,
		InitialYearOfStudy: member.InitialYearOfStudy,
		InitialSemester:    member.InitialSemester,
		ResidenceID:        member.ResidenceID,
		HostelName:         member.HostelName,
		RegionID:           member.RegionID,
		CreatedAt:          member.CreatedAt,
		UpdatedAt:          member.UpdatedAt,
	}
}

// TagResponse serializes an active member tag.
type TagResponse struct {
	Name       string     `json:"name"`
	Type       string     `json:"type"`
	AssignedAt time.Time  `json:"assigned_at"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	Note       string     `json:"note,omitempty"`
}

// NewTagResponse converts a member tag row into a DTO.
func NewTagResponse(memberTag models.MemberTag) TagResponse {
	return TagResponse{
		Name:       memberTag.Tag.Name,
		Type:       memberTag.Tag.Type,
		AssignedAt: memberTag.AssignedAt,
		ExpiresAt:  memberTag.ExpiresAt,
		Note:       memberTag.Note,
	}
}
