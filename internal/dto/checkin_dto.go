package dto

import (
	"time"

	"github.com/fellowship-hq/fellowship-api/internal/models"
)

// CheckinRequest is a member check-in payload. Exactly one of QRCode and
// FellowshipNumber identifies the member.
type CheckinRequest struct {
	QRCode           string `json:"qr_code" validate:"omitempty,max=64"`
	FellowshipNumber string `json:"fellowship_number" validate:"omitempty,max=32"`
	EventID          uint   `json:"event_id" validate:"required"`
	Method           string `json:"method" validate:"required,oneof=QR FELLOWSHIP_NUMBER MANUAL"`
}

// CheckinResponse describes a recorded member check-in.
type CheckinResponse struct {
	AttendanceID    uint      `json:"attendance_id"`
	MemberID        uint      `json:"member_id"`
	EventID         uint      `json:"event_id"`
	Method          string    `json:"method"`
	CheckedInAt     time.Time `json:"checked_in_at"`
	FirstAttendance bool      `json:"first_attendance"`
}

// NewCheckinResponse converts an attendance model into a DTO.
func NewCheckinResponse(attendance models.Attendance, firstAttendance bool) CheckinResponse {
	return CheckinResponse{
		AttendanceID:    attendance.ID,
		MemberID:        attendance.MemberID,
		EventID:         attendance.EventID,
		Method:          attendance.Method,
		CheckedInAt:     attendance.CheckedInAt,
		FirstAttendance: firstAttendance,
	}
}

// GuestCheckinRequest is a guest check-in payload.
type GuestCheckinRequest struct {
	EventID    uint   `json:"event_id" validate:"required"`
	GuestName  string `json:"guest_name" validate:"required,min=2,max=255"`
	GuestPhone string `json:"guest_phone" validate:"omitempty,max=32"`
	Purpose    string `json:"purpose" validate:"omitempty,max=500"`
}

// EventStatsResponse aggregates recorded attendance for one event.
type EventStatsResponse struct {
	EventID   uint  `json:"event_id"`
	Attendees int64 `json:"attendees"`
	Guests    int64 `json:"guests"`
}

// GuestCheckinResponse describes a recorded guest check-in.
type GuestCheckinResponse struct {
	AttendanceID uint      `json:"attendance_id"`
	EventID      uint      `json:"event_id"`
	GuestName    string    `json:"guest_name"`
	CheckedInAt  time.Time `json:"checked_in_at"`
}

// NewGuestCheckinResponse converts a guest attendance model into a DTO.
func NewGuestCheckinResponse(attendance models.GuestAttendance) GuestCheckinResponse {
	return GuestCheckinResponse{
		AttendanceID: attendance.ID,
		EventID:      attendance.EventID,
		GuestName:    attendance.GuestName,
		CheckedInAt:  attendance.CheckedInAt,
	}
}
