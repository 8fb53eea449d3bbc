package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/fellowship-hq/fellowship-api/internal/dto"
	"github.com/fellowship-hq/fellowship-api/internal/repository"
)

// MemberService covers member profile reads and the manager-only direct
// update path that bypasses the approval workflow.
type MemberService interface {
	Profile(ctx context.Context, memberID uint) (dto.MemberResponse, error)
	Notifications(ctx context.Context, memberID uint, limit int) ([]dto.NotificationResponse, error)
	DirectUpdate(ctx context.Context, memberID uint, req dto.MemberUpdateRequest) (dto.MemberResponse, error)
}

type memberService struct {
	repo          repository.MemberRepository
	notifications repository.NotificationRepository
	validator     *validator.Validate
	logger        zerolog.Logger
}

// NewMemberService constructs the member service.
func NewMemberService(repo repository.MemberRepository, notifications repository.NotificationRepository, validate *validator.Validate, logger zerolog.Logger) MemberService {
	return &memberService{
		repo:          repo,
		notifications: notifications,
		validator:     validate,
		logger:        logger.With().Str("component", "member_service").Logger(),
	}
}

func (s *memberService) Profile(ctx context.Context, memberID uint) (dto.MemberResponse, error) {
	member, err := s.repo.GetByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.MemberResponse{}, ErrMemberNotFound
		}
		return dto.MemberResponse{}, err
	}
	return dto.NewMemberResponse(member), nil
}

// Notifications returns the member's most recent notifications, newest
// first.
func (s *memberService) Notifications(ctx context.Context, memberID uint, limit int) ([]dto.NotificationResponse, error) {
	notifications, err := s.notifications.ListByMember(ctx, memberID, limit)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.NotificationResponse, 0, len(notifications))
	for _, notification := range notifications {
		responses = append(responses, dto.NewNotificationResponse(notification))
	}
	return responses, nil
}

func (s *memberService) DirectUpdate(ctx context.Context, memberID uint, req dto.MemberUpdateRequest) (dto.MemberResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.MemberResponse{}, err
	}

	updates := make(map[string]interface{})
	if req.FullName != nil {
		updates["full_name"] = strings.TrimSpace(*req.FullName)
	}
	if req.Email != nil {
		updates["email"] = strings.TrimSpace(*req.Email)
	}
	if req.PhoneNumber != nil {
		updates["phone_number"] = strings.TrimSpace(*req.PhoneNumber)
	}
	if req.CourseID != nil {
		updates["course_id"] = *req.CourseID
	}
	if req.InitialYearOfStudy != nil {
		updates["initial_year_of_study"] = *req.InitialYearOfStudy
	}
	if req.InitialSemester != nil {
		updates["initial_semester"] = *req.InitialSemester
	}
	if req.ResidenceID != nil {
		updates["residence_id"] = *req.ResidenceID
	}
	if req.HostelName != nil {
		updates["hostel_name"] = strings.TrimSpace(*req.HostelName)
	}

	if len(updates) == 0 {
		return s.Profile(ctx, memberID)
	}

	member, err := s.repo.UpdateFields(ctx, memberID, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.MemberResponse{}, ErrMemberNotFound
		}
		return dto.MemberResponse{}, err
	}

	s.logger.Info().Uint("member_id", memberID).Int("fields", len(updates)).Msg("member profile updated directly")
	return dto.NewMemberResponse(member), nil
}
