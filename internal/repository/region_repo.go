package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/fellowship-hq/fellowship-api/internal/models"
)

// RegionRepository exposes persistence helpers for regions and ministry teams.
type RegionRepository interface {
	GetByID(ctx context.Context, id uint) (models.Region, error)
	FindByHead(ctx context.Context, memberID uint) (models.Region, error)
	List(ctx context.Context) ([]models.Region, error)
	ListTeams(ctx context.Context, regionID *uint) ([]models.MinistryTeam, error)
	AssignHead(ctx context.Context, regionID uint, memberTag *models.MemberTag) error
	RemoveHead(ctx context.Context, regionID, memberID, tagID, removedBy uint, at time.Time) (bool, error)
}

type regionRepository struct {
	db *gorm.DB
}

// NewRegionRepository constructs the region repository.
func NewRegionRepository(db *gorm.DB) RegionRepository {
	return &regionRepository{db: db}
}

func (r *regionRepository) GetByID(ctx context.Context, id uint) (models.Region, error) {
	var region models.Region
	if err := r.db.WithContext(ctx).First(&region, id).Error; err != nil {
		return models.Region{}, err
	}
	return region, nil
}

func (r *regionRepository) FindByHead(ctx context.Context, memberID uint) (models.Region, error) {
	var region models.Region
	if err := r.db.WithContext(ctx).Where("regional_head_id = ?", memberID).First(&region).Error; err != nil {
		return models.Region{}, err
	}
	return region, nil
}

func (r *regionRepository) List(ctx context.Context) ([]models.Region, error) {
	var regions []models.Region
	err := r.db.WithContext(ctx).Preload("RegionalHead").Order("name ASC").Find(&regions).Error
	if err != nil {
		return nil, err
	}
	return regions, nil
}

func (r *regionRepository) ListTeams(ctx context.Context, regionID *uint) ([]models.MinistryTeam, error) {
	query := r.db.WithContext(ctx).Model(&models.MinistryTeam{})
	if regionID != nil {
		query = query.Where("region_id = ?", *regionID)
	}

	var teams []models.MinistryTeam
	if err := query.Order("name ASC").Find(&teams).Error; err != nil {
		return nil, err
	}
	return teams, nil
}

// AssignHead sets the region head and creates the REGIONAL_HEAD member tag
// row in one transaction. Either both writes commit or neither does.
func (r *regionRepository) AssignHead(ctx context.Context, regionID uint, memberTag *models.MemberTag) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Region{}).
			Where("id = ?", regionID).
			Update("regional_head_id", memberTag.MemberID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return tx.Create(memberTag).Error
	})
}

// RemoveHead clears the region head and deactivates the member's active
// REGIONAL_HEAD tag row in one transaction. A missing tag row is tolerated;
// the returned flag tells the caller whether one was found.
func (r *regionRepository) RemoveHead(ctx context.Context, regionID, memberID, tagID, removedBy uint, at time.Time) (bool, error) {
	tagRemoved := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Region{}).
			Where("id = ?", regionID).
			Update("regional_head_id", nil)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		update := tx.Model(&models.MemberTag{}).
			Where("member_id = ? AND tag_id = ? AND is_active = ?", memberID, tagID, true).
			Updates(map[string]interface{}{
				"is_active":      false,
				"removed_by":     removedBy,
				"removed_at":     at,
				"removal_reason": "regional head removed",
			})
		if update.Error != nil {
			return update.Error
		}
		tagRemoved = update.RowsAffected > 0

		return nil
	})
	if err != nil {
		return false, err
	}
	return tagRemoved, nil
}
