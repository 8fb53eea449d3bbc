package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/fellowship-hq/fellowship-api/internal/models"
)

// TagRepository exposes persistence helpers for tags and member tag rows.
type TagRepository interface {
	GetByName(ctx context.Context, name string) (models.Tag, error)
	GetOrCreate(ctx context.Context, name, tagType, description string) (models.Tag, error)
	CreateMemberTag(ctx context.Context, memberTag *models.MemberTag) error
	FindActiveMemberTag(ctx context.Context, memberID, tagID uint) (models.MemberTag, error)
	ListActiveMemberTags(ctx context.Context, memberID uint) ([]models.MemberTag, error)
	DeactivateMemberTag(ctx context.Context, id, removedBy uint, reason string, at time.Time) error
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
}

type tagRepository struct {
	db *gorm.DB
}

// NewTagRepository constructs the tag repository.
func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) GetByName(ctx context.Context, name string) (models.Tag, error) {
	var tag models.Tag
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&tag).Error; err != nil {
		return models.Tag{}, err
	}
	return tag, nil
}

func (r *tagRepository) GetOrCreate(ctx context.Context, name, tagType, description string) (models.Tag, error) {
	var tag models.Tag
	err := r.db.WithContext(ctx).
		Where(models.Tag{Name: name}).
		Attrs(models.Tag{Type: tagType, Description: description}).
		FirstOrCreate(&tag).Error
	if err != nil {
		return models.Tag{}, err
	}
	return tag, nil
}

func (r *tagRepository) CreateMemberTag(ctx context.Context, memberTag *models.MemberTag) error {
	return r.db.WithContext(ctx).Create(memberTag).Error
}

func (r *tagRepository) FindActiveMemberTag(ctx context.Context, memberID, tagID uint) (models.MemberTag, error) {
	var memberTag models.MemberTag
	err := r.db.WithContext(ctx).
		Where("member_id = ? AND tag_id = ? AND is_active = ?", memberID, tagID, true).
		First(&memberTag).Error
	if err != nil {
		return models.MemberTag{}, err
	}
	return memberTag, nil
}

func (r *tagRepository) ListActiveMemberTags(ctx context.Context, memberID uint) ([]models.MemberTag, error) {
	var memberTags []models.MemberTag
	err := r.db.WithContext(ctx).
		Preload("Tag").
		Where("member_id = ? AND is_active = ?", memberID, true).
		Order("assigned_at ASC").
		Find(&memberTags).Error
	if err != nil {
		return nil, err
	}
	return memberTags, nil
}

func (r *tagRepository) DeactivateMemberTag(ctx context.Context, id, removedBy uint, reason string, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&models.MemberTag{}).
		Where("id = ? AND is_active = ?", id, true).
		Updates(map[string]interface{}{
			"is_active":      false,
			"removed_by":     removedBy,
			"removed_at":     at,
			"removal_reason": reason,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *tagRepository) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.MemberTag{}).
		Where("is_active = ? AND expires_at IS NOT NULL AND expires_at <= ?", true, now).
		Updates(map[string]interface{}{
			"is_active":      false,
			"removed_at":     now,
			"removal_reason": "expired",
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
