package dto

import (
	"encoding/json"
	"time"

	"github.com/fellowship-hq/fellowship-api/internal/models"
)

// EditRequestChange is one proposed field change in a submission.
type EditRequestChange struct {
	Field    string `json:"field" validate:"required"`
	NewValue string `json:"new_value"`
}

// EditRequestSubmitRequest is the payload for submitting a profile edit request.
type EditRequestSubmitRequest struct {
	Changes []EditRequestChange `json:"changes" validate:"required,min=1,dive"`
	Reason  string              `json:"reason" validate:"omitempty,max=1000"`
}

// EditRequestReviewRequest is the payload for resolving a pending request.
type EditRequestReviewRequest struct {
	Status     string `json:"status" validate:"required,oneof=APPROVED REJECTED"`
	ReviewNote string `json:"review_note" validate:"omitempty,max=1000"`
}

// EditRequestResponse serializes a profile edit request for reviewers and members.
type EditRequestResponse struct {
	ID         uint                 `json:"id"`
	MemberID   uint                 `json:"member_id"`
	MemberName string               `json:"member_name,omitempty"`
	Changes    []models.FieldChange `json:"changes"`
	Reason     string               `json:"reason"`
	Status     string               `json:"status"`
	ReviewedBy *uint                `json:"reviewed_by,omitempty"`
	ReviewNote string               `json:"review_note,omitempty"`
	ReviewedAt *time.Time           `json:"reviewed_at,omitempty"`
	CreatedAt  time.Time            `json:"created_at"`
}

// NewEditRequestResponse converts a request model into a DTO.
func NewEditRequestResponse(request models.ProfileEditRequest) EditRequestResponse {
	var changes []models.FieldChange
	_ = json.Unmarshal(request.Changes, &changes)

	return EditRequestResponse{
		ID:         request.ID,
		MemberID:   request.MemberID,
		MemberName: request.Member.FullName,
		Changes:    changes,
		Reason:     request.Reason,
		Status:     request.Status,
		ReviewedBy: request.ReviewedBy,
		ReviewNote: request.ReviewNote,
		ReviewedAt: request.ReviewedAt,
		CreatedAt:  request.CreatedAt,
	}
}

// NewEditRequestResponseSlice converts a slice of request models.
func NewEditRequestResponseSlice(requests []models.ProfileEditRequest) []EditRequestResponse {
	responses := make([]EditRequestResponse, 0, len(requests))
	for _, request := range requests {
		responses = append(responses, NewEditRequestResponse(request))
	}
	return responses
}
