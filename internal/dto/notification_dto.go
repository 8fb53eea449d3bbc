package dto

import (
	"time"

	"github.com/fellowship-hq/fellowship-api/internal/models"
)

// NotificationMessage is the payload handed to the notification dispatcher.
type NotificationMessage struct {
	MemberID uint                   `json:"member_id" validate:"required"`
	Type     string                 `json:"type" validate:"required"`
	Subject  string                 `json:"subject" validate:"required,max=255"`
	Body     string                 `json:"body" validate:"omitempty,max=2000"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// NotificationResponse serializes a stored notification.
type NotificationResponse struct {
	ID        uint      `json:"id"`
	MemberID  uint      `json:"member_id"`
	Type      string    `json:"type"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// NewNotificationResponse converts a notification model into a DTO.
func NewNotificationResponse(notification models.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        notification.ID,
		MemberID:  notification.MemberID,
		Type:      notification.Type,
		Subject:   notification.Subject,
		Body:      notification.Body,
		Status:    notification.Status,
		CreatedAt: notification.CreatedAt,
	}
}
