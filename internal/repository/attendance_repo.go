package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/fellowship-hq/fellowship-api/internal/models"
)

// AttendanceRepository exposes persistence helpers for member and guest check-ins.
type AttendanceRepository interface {
	Create(ctx context.Context, attendance *models.Attendance) error
	Exists(ctx context.Context, memberID, eventID uint) (bool, error)
	CreateGuest(ctx context.Context, attendance *models.GuestAttendance) error
	CountByEvent(ctx context.Context, eventID uint) (int64, error)
	CountGuestsByEvent(ctx context.Context, eventID uint) (int64, error)
}

type attendanceRepository struct {
	db *gorm.DB
}

// NewAttendanceRepository constructs the attendance repository.
func NewAttendanceRepository(db *gorm.DB) AttendanceRepository {
	return &attendanceRepository{db: db}
}

func (r *attendanceRepository) Create(ctx context.Context, attendance *models.Attendance) error {
	return r.db.WithContext(ctx).Create(attendance).Error
}

func (r *attendanceRepository) Exists(ctx context.Context, memberID, eventID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Attendance{}).
		Where("member_id = ? AND event_id = ?", memberID, eventID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *attendanceRepository) CreateGuest(ctx context.Context, attendance *models.GuestAttendance) error {
	return r.db.WithContext(ctx).Create(attendance).Error
}

func (r *attendanceRepository) CountByEvent(ctx context.Context, eventID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Attendance{}).
		Where("event_id = ?", eventID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *attendanceRepository) CountGuestsByEvent(ctx context.Context, eventID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.GuestAttendance{}).
		Where("event_id = ?", eventID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
