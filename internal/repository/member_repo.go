package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/fellowship-hq/fellowship-api/internal/models"
)

// MemberRepository exposes persistence helpers for member records.
type MemberRepository interface {
	GetByID(ctx context.Context, id uint) (models.Member, error)
	GetByIDIncludingDeleted(ctx context.Context, id uint) (models.Member, error)
	GetByQRToken(ctx context.Context, token string) (models.Member, error)
	GetByFellowshipNumber(ctx context.Context, number string) (models.Member, error)
	UpdateFields(ctx context.Context, id uint, updates map[string]interface{}) (models.Member, error)
	CountByRegion(ctx context.Context, regionID *uint) (int64, error)
}

type memberRepository struct {
	db *gorm.DB
}

// NewMemberRepository constructs the member repository.
func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &memberRepository{db: db}
}

func (r *memberRepository) GetByID(ctx context.Context, id uint) (models.Member, error) {
	var member models.Member
	if err := r.db.WithContext(ctx).First(&member, id).Error; err != nil {
		return models.Member{}, err
	}
	return member, nil
}

func (r *memberRepository) GetByIDIncludingDeleted(ctx context.Context, id uint) (models.Member, error) {
	var member models.Member
	if err := r.db.WithContext(ctx).Unscoped().First(&member, id).Error; err != nil {
		return models.Member{}, err
	}
	return member, nil
}

func (r *memberRepository) GetByQRToken(ctx context.Context, token string) (models.Member, error) {
	var member models.Member
	if err := r.db.WithContext(ctx).Where("qr_token = ?", token).First(&member).Error; err != nil {
		return models.Member{}, err
	}
	return member, nil
}

func (r *memberRepository) GetByFellowshipNumber(ctx context.Context, number string) (models.Member, error) {
	var member models.Member
	if err := r.db.WithContext(ctx).Where("fellowship_number = ?", number).First(&member).Error; err != nil {
		return models.Member{}, err
	}
	return member, nil
}

func (r *memberRepository) UpdateFields(ctx context.Context, id uint, updates map[string]interface{}) (models.Member, error) {
	result := r.db.WithContext(ctx).Model(&models.Member{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return models.Member{}, result.Error
	}
	if result.RowsAffected == 0 {
		return models.Member{}, gorm.ErrRecordNotFound
	}

	return r.GetByID(ctx, id)
}

func (r *memberRepository) CountByRegion(ctx context.Context, regionID *uint) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Member{})
	if regionID != nil {
		query = query.Where("region_id = ?", *regionID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
