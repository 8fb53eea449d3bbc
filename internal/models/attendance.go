package models

import "time"

// Check-in methods accepted by the attendance recorder.
const (
	CheckinMethodQR               = "QR"
	CheckinMethodFellowshipNumber = "FELLOWSHIP_NUMBER"
	CheckinMethodManual           = "MANUAL"
)

// Attendance records a single check-in. The composite unique index is the
// hard guarantee behind at-most-one check-in per member per event.
type Attendance struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	MemberID    uint      `gorm:"uniqueIndex:idx_member_event;not null" json:"member_id"`
	EventID     uint      `gorm:"uniqueIndex:idx_member_event;not null" json:"event_id"`
	Method      string    `gorm:"size:24;not null" json:"method"`
	CheckedInAt time.Time `gorm:"not null" json:"checked_in_at"`
	CreatedAt   time.Time `json:"created_at"`

	Member Member `gorm:"foreignKey:MemberID" json:"-"`
	Event  Event  `gorm:"foreignKey:EventID" json:"-"`
}

// GuestAttendance records a guest check-in. Guests carry no member identity
// and no uniqueness constraint applies.
type GuestAttendance struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	EventID     uint      `gorm:"index;not null" json:"event_id"`
	GuestName   string    `gorm:"size:255;not null" json:"guest_name"`
	GuestPhone  string    `gorm:"size:32" json:"guest_phone"`
	Purpose     string    `gorm:"size:500" json:"purpose"`
	CheckedInAt time.Time `gorm:"not null" json:"checked_in_at"`
	CreatedAt   time.Time `json:"created_at"`
}
