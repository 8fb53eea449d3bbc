package dto

import "time"

// AssignTagRequest is the payload for assigning a tag to one member.
type AssignTagRequest struct {
	MemberID  uint       `json:"member_id" validate:"required"`
	TagName   string     `json:"tag_name" validate:"required,min=1,max=100"`
	TagType   string     `json:"tag_type" validate:"omitempty,oneof=SYSTEM CUSTOM"`
	Note      string     `json:"note" validate:"omitempty,max=500"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// BulkAssignTagRequest assigns one custom tag to several members at once.
type BulkAssignTagRequest struct {
	MemberIDs []uint     `json:"member_ids" validate:"required,min=1,dive,required"`
	TagName   string     `json:"tag_name" validate:"required,min=1,max=100"`
	Note      string     `json:"note" validate:"omitempty,max=500"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// BulkAssignTagResponse reports the per-member outcome of a bulk assignment.
type BulkAssignTagResponse struct {
	TagName  string `json:"tag_name"`
	Assigned []uint `json:"assigned"`
	Skipped  []uint `json:"skipped"`
}
