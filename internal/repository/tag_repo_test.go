package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/fellowship-hq/fellowship-api/internal/models"
)

func TestTagRepositoryGetOrCreateIsIdempotent(t *testing.T) {
	db := setupTestDB(t, &models.Tag{})
	repo := NewTagRepository(db)

	created, err := repo.GetOrCreate(context.Background(), models.TagRegionalHead, models.TagTypeSystem, "Current regional head")
	require.NoError(t, err)
	require.Equal(t, models.TagTypeSystem, created.Type)

	again, err := repo.GetOrCreate(context.Background(), models.TagRegionalHead, models.TagTypeCustom, "different attrs are ignored")
	require.NoError(t, err)
	require.Equal(t, created.ID, again.ID)
	require.Equal(t, models.TagTypeSystem, again.Type)

	var total int64
	require.NoError(t, db.Model(&models.Tag{}).Count(&total).Error)
	require.Equal(t, int64(1), total)
}

func TestTagRepositoryActiveRowLifecycle(t *testing.T) {
	db := setupTestDB(t, &models.Tag{}, &models.MemberTag{})
	repo := NewTagRepository(db)

	tag, err := repo.GetOrCreate(context.Background(), "CHOIR", models.TagTypeCustom, "")
	require.NoError(t, err)

	now := time.Now()
	row := models.MemberTag{MemberID: 7, TagID: tag.ID, IsActive: true, AssignedBy: 1, AssignedAt: now}
	require.NoError(t, repo.CreateMemberTag(context.Background(), &row))

	found, err := repo.FindActiveMemberTag(context.Background(), 7, tag.ID)
	require.NoError(t, err)
	require.Equal(t, row.ID, found.ID)

	listed, err := repo.ListActiveMemberTags(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, "CHOIR", listed[0].Tag.Name)

	require.NoError(t, repo.DeactivateMemberTag(context.Background(), row.ID, 2, "season over", now))

	_, err = repo.FindActiveMemberTag(context.Background(), 7, tag.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// the row survives deactivated, carrying the removal audit
	var stored models.MemberTag
	require.NoError(t, db.First(&stored, row.ID).Error)
	require.False(t, stored.IsActive)
	require.Equal(t, uint(2), *stored.RemovedBy)
	require.Equal(t, "season over", stored.RemovalReason)

	// deactivating an already inactive row reports not found
	err = repo.DeactivateMemberTag(context.Background(), row.ID, 2, "again", now)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestTagRepositoryDeactivateExpired(t *testing.T) {
	db := setupTestDB(t, &models.Tag{}, &models.MemberTag{})
	repo := NewTagRepository(db)

	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	expired := models.MemberTag{MemberID: 1, TagID: 1, IsActive: true, AssignedBy: 1, AssignedAt: past, ExpiresAt: &past}
	current := models.MemberTag{MemberID: 2, TagID: 1, IsActive: true, AssignedBy: 1, AssignedAt: past, ExpiresAt: &future}
	open := models.MemberTag{MemberID: 3, TagID: 1, IsActive: true, AssignedBy: 1, AssignedAt: past}
	require.NoError(t, repo.CreateMemberTag(context.Background(), &expired))
	require.NoError(t, repo.CreateMemberTag(context.Background(), &current))
	require.NoError(t, repo.CreateMemberTag(context.Background(), &open))

	count, err := repo.DeactivateExpired(context.Background(), now)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)

	var stored models.MemberTag
	require.NoError(t, db.First(&stored, expired.ID).Error)
	require.False(t, stored.IsActive)
	require.Equal(t, "expired", stored.RemovalReason)

	stored = models.MemberTag{}
	require.NoError(t, db.First(&stored, current.ID).Error)
	require.True(t, stored.IsActive)
	stored = models.MemberTag{}
	require.NoError(t, db.First(&stored, open.ID).Error)
	require.True(t, stored.IsActive)
}
