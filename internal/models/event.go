package models

import (
	"fmt"
	"time"
)

// Event is a fellowship gathering members check in to. StartTime and
// EndTime are civil wall-clock times ("15:04") on Date, interpreted in the
// fellowship's fixed time zone.
type Event struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	Title             string    `gorm:"size:255;not null" json:"title"`
	Date              time.Time `gorm:"not null" json:"date"`
	StartTime         string    `gorm:"size:5;not null" json:"start_time"`
	EndTime           string    `gorm:"size:5;not null" json:"end_time"`
	IsActive          bool      `gorm:"not null;default:true" json:"is_active"`
	AllowGuestCheckin bool      `gorm:"not null;default:false" json:"allow_guest_checkin"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Window resolves the check-in window of the event in the given location.
func (e Event) Window(loc *time.Location) (start, end time.Time, err error) {
	start, err = e.civilTime(e.StartTime, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid event start time %q: %w", e.StartTime, err)
	}
	end, err = e.civilTime(e.EndTime, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid event end time %q: %w", e.EndTime, err)
	}
	return start, end, nil
}

func (e Event) civilTime(clock string, loc *time.Location) (time.Time, error) {
	parsed, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, err
	}
	date := e.Date.In(loc)
	return time.Date(date.Year(), date.Month(), date.Day(), parsed.Hour(), parsed.Minute(), 0, 0, loc), nil
}
