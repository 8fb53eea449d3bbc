package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/fellowship-hq/fellowship-api/internal/dto"
	"github.com/fellowship-hq/fellowship-api/internal/models"
	"github.com/fellowship-hq/fellowship-api/internal/repository"
)

// ErrTagNotFound indicates the named tag does not exist.
var ErrTagNotFound = errors.New("tag not found")

// ErrTagAlreadyAssigned indicates the member already holds an active row for the tag.
var ErrTagAlreadyAssigned = errors.New("tag already assigned")

// ErrMemberTagNotFound indicates no active member tag row exists for removal.
var ErrMemberTagNotFound = errors.New("member tag not found")

// ErrBulkSystemTag indicates a bulk assignment targeted a system-managed tag.
var ErrBulkSystemTag = errors.New("bulk assign is limited to custom tags")

// AssignTagInput describes a tag assignment.
type AssignTagInput struct {
	MemberID   uint       `validate:"required"`
	TagName    string     `validate:"required,min=1,max=100"`
	TagType    string     `validate:"omitempty,oneof=SYSTEM CUSTOM"`
	AssignedBy uint       `validate:"required"`
	Note       string     `validate:"omitempty,max=500"`
	ExpiresAt  *time.Time `validate:"-"`
}

// BulkAssignTagInput describes one custom tag assigned to several members.
type BulkAssignTagInput struct {
	MemberIDs  []uint     `validate:"required,min=1,dive,required"`
	TagName    string     `validate:"required,min=1,max=100"`
	AssignedBy uint       `validate:"required"`
	Note       string     `validate:"omitempty,max=500"`
	ExpiresAt  *time.Time `validate:"-"`
}

// TagService tracks which named labels apply to a member over time.
type TagService interface {
	HasActiveTag(ctx context.Context, memberID uint, tagName string) (bool, error)
	GetActiveTags(ctx context.Context, memberID uint) ([]dto.TagResponse, error)
	Assign(ctx context.Context, input AssignTagInput) (models.MemberTag, error)
	BulkAssign(ctx context.Context, input BulkAssignTagInput) (dto.BulkAssignTagResponse, error)
	Remove(ctx context.Context, memberID uint, tagName string, removedBy uint, reason string) error
	ClearFirstAttendance(ctx context.Context, memberID uint) (bool, error)
	DeactivateExpired(ctx context.Context) (int64, error)
}

type tagService struct {
	repo      repository.TagRepository
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewTagService constructs the tag service.
func NewTagService(repo repository.TagRepository, validate *validator.Validate, logger zerolog.Logger) TagService {
	return &tagService{
		repo:      repo,
		validator: validate,
		logger:    logger.With().Str("component", "tag_service").Logger(),
		now:       time.Now,
	}
}

// HasActiveTag reports whether the member currently holds the tag. Expired
// rows are reported inactive without any write; cleanup is deferred to the
// next mutation so concurrent reads never race each other into the store.
func (s *tagService) HasActiveTag(ctx context.Context, memberID uint, tagName string) (bool, error) {
	tag, err := s.repo.GetByName(ctx, tagName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	memberTag, err := s.repo.FindActiveMemberTag(ctx, memberID, tag.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	return memberTag.ActiveAt(s.now()), nil
}

func (s *tagService) GetActiveTags(ctx context.Context, memberID uint) ([]dto.TagResponse, error) {
	memberTags, err := s.repo.ListActiveMemberTags(ctx, memberID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	responses := make([]dto.TagResponse, 0, len(memberTags))
	for _, memberTag := range memberTags {
		if !memberTag.ActiveAt(now) {
			continue
		}
		responses = append(responses, dto.NewTagResponse(memberTag))
	}
	return responses, nil
}

func (s *tagService) Assign(ctx context.Context, input AssignTagInput) (models.MemberTag, error) {
	if err := s.validator.Struct(input); err != nil {
		return models.MemberTag{}, err
	}

	tagType := input.TagType
	if tagType == "" {
		tagType = models.TagTypeCustom
	}

	tag, err := s.repo.GetOrCreate(ctx, input.TagName, tagType, "")
	if err != nil {
		return models.MemberTag{}, err
	}

	now := s.now()
	existing, err := s.repo.FindActiveMemberTag(ctx, input.MemberID, tag.ID)
	switch {
	case err == nil:
		if existing.ActiveAt(now) {
			return models.MemberTag{}, ErrTagAlreadyAssigned
		}
		// expired but never cleaned up: deactivate lazily on this write path
		if err := s.repo.DeactivateMemberTag(ctx, existing.ID, input.AssignedBy, "expired", now); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return models.MemberTag{}, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return models.MemberTag{}, err
	}

	memberTag := models.MemberTag{
		MemberID:   input.MemberID,
		TagID:      tag.ID,
		IsActive:   true,
		ExpiresAt:  input.ExpiresAt,
		AssignedBy: input.AssignedBy,
		AssignedAt: now,
		Note:       input.Note,
	}
	if err := s.repo.CreateMemberTag(ctx, &memberTag); err != nil {
		return models.MemberTag{}, err
	}

	memberTag.Tag = tag
	return memberTag, nil
}

// BulkAssign assigns one CUSTOM tag to several members. Members who already
// hold the tag are skipped rather than failing the whole batch.
func (s *tagService) BulkAssign(ctx context.Context, input BulkAssignTagInput) (dto.BulkAssignTagResponse, error) {
	if err := s.validator.Struct(input); err != nil {
		return dto.BulkAssignTagResponse{}, err
	}

	tag, err := s.repo.GetOrCreate(ctx, input.TagName, models.TagTypeCustom, "")
	if err != nil {
		return dto.BulkAssignTagResponse{}, err
	}
	if tag.Type != models.TagTypeCustom {
		return dto.BulkAssignTagResponse{}, ErrBulkSystemTag
	}

	result := dto.BulkAssignTagResponse{
		TagName:  tag.Name,
		Assigned: make([]uint, 0, len(input.MemberIDs)),
		Skipped:  make([]uint, 0),
	}
	for _, memberID := range input.MemberIDs {
		_, err := s.Assign(ctx, AssignTagInput{
			MemberID:   memberID,
			TagName:    input.TagName,
			TagType:    models.TagTypeCustom,
			AssignedBy: input.AssignedBy,
			Note:       input.Note,
			ExpiresAt:  input.ExpiresAt,
		})
		switch {
		case err == nil:
			result.Assigned = append(result.Assigned, memberID)
		case errors.Is(err, ErrTagAlreadyAssigned):
			result.Skipped = append(result.Skipped, memberID)
		default:
			return dto.BulkAssignTagResponse{}, err
		}
	}

	s.logger.Info().Str("tag", tag.Name).
		Int("assigned", len(result.Assigned)).
		Int("skipped", len(result.Skipped)).
		Msg("bulk tag assignment completed")
	return result, nil
}

func (s *tagService) Remove(ctx context.Context, memberID uint, tagName string, removedBy uint, reason string) error {
	tag, err := s.repo.GetByName(ctx, tagName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTagNotFound
		}
		return err
	}

	memberTag, err := s.repo.FindActiveMemberTag(ctx, memberID, tag.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMemberTagNotFound
		}
		return err
	}

	return s.repo.DeactivateMemberTag(ctx, memberTag.ID, removedBy, reason, s.now())
}

// ClearFirstAttendance deactivates an active PENDING_FIRST_ATTENDANCE row,
// attributed to the member themselves. Absence of the tag is a normal no-op:
// the member simply is not a first-timer.
func (s *tagService) ClearFirstAttendance(ctx context.Context, memberID uint) (bool, error) {
	tag, err := s.repo.GetByName(ctx, models.TagPendingFirstAttendance)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	memberTag, err := s.repo.FindActiveMemberTag(ctx, memberID, tag.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	if err := s.repo.DeactivateMemberTag(ctx, memberTag.ID, memberID, "first attendance recorded", s.now()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	s.logger.Info().Uint("member_id", memberID).Msg("pending first attendance tag cleared")
	return true, nil
}

func (s *tagService) DeactivateExpired(ctx context.Context) (int64, error) {
	count, err := s.repo.DeactivateExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if count > 0 {
		s.logger.Info().Int64("count", count).Msg("expired member tags deactivated")
	}
	return count, nil
}
