package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/fellowship-hq/fellowship-api/internal/models"
)

// EditRequestFilter scopes edit request listings for reviewers.
type EditRequestFilter struct {
	Status   string
	RegionID *uint
}

// EditRequestRepository exposes persistence helpers for profile edit requests.
type EditRequestRepository interface {
	Create(ctx context.Context, request *models.ProfileEditRequest) error
	GetByID(ctx context.Context, id uint) (models.ProfileEditRequest, error)
	FindPendingByMember(ctx context.Context, memberID uint) (models.ProfileEditRequest, error)
	List(ctx context.Context, filter EditRequestFilter) ([]models.ProfileEditRequest, error)
	Approve(ctx context.Context, request *models.ProfileEditRequest, memberUpdates map[string]interface{}) error
	Reject(ctx context.Context, request *models.ProfileEditRequest) error
}

type editRequestRepository struct {
	db *gorm.DB
}

// NewEditRequestRepository constructs the edit request repository.
func NewEditRequestRepository(db *gorm.DB) EditRequestRepository {
	return &editRequestRepository{db: db}
}

func (r *editRequestRepository) Create(ctx context.Context, request *models.ProfileEditRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *editRequestRepository) GetByID(ctx context.Context, id uint) (models.ProfileEditRequest, error) {
	var request models.ProfileEditRequest
	if err := r.db.WithContext(ctx).Preload("Member").First(&request, id).Error; err != nil {
		return models.ProfileEditRequest{}, err
	}
	return request, nil
}

func (r *editRequestRepository) FindPendingByMember(ctx context.Context, memberID uint) (models.ProfileEditRequest, error) {
	var request models.ProfileEditRequest
	err := r.db.WithContext(ctx).
		Where("member_id = ? AND status = ?", memberID, models.EditRequestStatusPending).
		First(&request).Error
	if err != nil {
		return models.ProfileEditRequest{}, err
	}
	return request, nil
}

func (r *editRequestRepository) List(ctx context.Context, filter EditRequestFilter) ([]models.ProfileEditRequest, error) {
	query := r.db.WithContext(ctx).Model(&models.ProfileEditRequest{}).Preload("Member")

	status := strings.ToUpper(strings.TrimSpace(filter.Status))
	if status != "" && status != "ALL" {
		query = query.Where("profile_edit_requests.status = ?", status)
	}

	if filter.RegionID != nil {
		query = query.
			Joins("JOIN members ON members.id = profile_edit_requests.member_id").
			Where("members.region_id = ?", *filter.RegionID)
	}

	var requests []models.ProfileEditRequest
	if err := query.Order("profile_edit_requests.created_at DESC").Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

// Approve applies the member field mutations and marks the request approved
// in one transaction. The status guard keeps a concurrent reviewer from
// resolving the same request twice; losing the race surfaces as
// gorm.ErrRecordNotFound.
func (r *editRequestRepository) Approve(ctx context.Context, request *models.ProfileEditRequest, memberUpdates map[string]interface{}) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(memberUpdates) > 0 {
			if err := tx.Model(&models.Member{}).
				Where("id = ?", request.MemberID).
				Updates(memberUpdates).Error; err != nil {
				return err
			}
		}

		return r.resolve(tx, request)
	})
}

// Reject records the decision on the request row only; the member is untouched.
func (r *editRequestRepository) Reject(ctx context.Context, request *models.ProfileEditRequest) error {
	return r.resolve(r.db.WithContext(ctx), request)
}

func (r *editRequestRepository) resolve(tx *gorm.DB, request *models.ProfileEditRequest) error {
	now := time.Now().UTC()
	if request.ReviewedAt == nil {
		request.ReviewedAt = &now
	}

	result := tx.Model(&models.ProfileEditRequest{}).
		Where("id = ? AND status = ?", request.ID, models.EditRequestStatusPending).
		Updates(map[string]interface{}{
			"status":      request.Status,
			"reviewed_by": request.ReviewedBy,
			"review_note": request.ReviewNote,
			"reviewed_at": request.ReviewedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
