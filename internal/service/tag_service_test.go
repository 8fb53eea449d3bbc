package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/fellowship-hq/fellowship-api/internal/models"
)

func newTagServiceForTest(repo *tagRepoFake, now time.Time) *tagService {
	svc := NewTagService(repo, validator.New(validator.WithRequiredStructEnabled()), zerolog.Nop()).(*tagService)
	svc.now = func() time.Time { return now }
	return svc
}

func TestTagServiceAssignRejectsDuplicate(t *testing.T) {
	repo := newTagRepoFake()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc := newTagServiceForTest(repo, now)

	assigned, err := svc.Assign(context.Background(), AssignTagInput{MemberID: 7, TagName: "CHOIR", AssignedBy: 1})
	require.NoError(t, err)
	require.True(t, assigned.IsActive)
	require.Equal(t, models.TagTypeCustom, assigned.Tag.Type)

	_, err = svc.Assign(context.Background(), AssignTagInput{MemberID: 7, TagName: "CHOIR", AssignedBy: 1})
	require.ErrorIs(t, err, ErrTagAlreadyAssigned)

	active, err := svc.HasActiveTag(context.Background(), 7, "CHOIR")
	require.NoError(t, err)
	require.True(t, active)
}

func TestTagServiceBulkAssignSkipsExistingHolders(t *testing.T) {
	repo := newTagRepoFake()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc := newTagServiceForTest(repo, now)

	_, err := svc.Assign(context.Background(), AssignTagInput{MemberID: 7, TagName: "CHOIR", AssignedBy: 1})
	require.NoError(t, err)

	result, err := svc.BulkAssign(context.Background(), BulkAssignTagInput{
		MemberIDs:  []uint{7, 8, 9},
		TagName:    "CHOIR",
		AssignedBy: 1,
	})
	require.NoError(t, err)
	require.Equal(t, []uint{8, 9}, result.Assigned)
	require.Equal(t, []uint{7}, result.Skipped)

	for _, memberID := range []uint{7, 8, 9} {
		active, err := svc.HasActiveTag(context.Background(), memberID, "CHOIR")
		require.NoError(t, err)
		require.True(t, active)
	}
}

func TestTagServiceBulkAssignRejectsSystemTag(t *testing.T) {
	repo := newTagRepoFake()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc := newTagServiceForTest(repo, now)

	_, err := repo.GetOrCreate(context.Background(), models.TagRegionalHead, models.TagTypeSystem, "")
	require.NoError(t, err)

	_, err = svc.BulkAssign(context.Background(), BulkAssignTagInput{
		MemberIDs:  []uint{7},
		TagName:    models.TagRegionalHead,
		AssignedBy: 1,
	})
	require.ErrorIs(t, err, ErrBulkSystemTag)
	require.Empty(t, repo.memberTags)
}

func TestTagServiceExpiredTagInactiveWithoutWrite(t *testing.T) {
	repo := newTagRepoFake()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc := newTagServiceForTest(repo, now)

	expiry := now.Add(time.Hour)
	_, err := svc.Assign(context.Background(), AssignTagInput{MemberID: 7, TagName: "VISITOR", AssignedBy: 1, ExpiresAt: &expiry})
	require.NoError(t, err)

	svc.now = func() time.Time { return now.Add(2 * time.Hour) }

	active, err := svc.HasActiveTag(context.Background(), 7, "VISITOR")
	require.NoError(t, err)
	require.False(t, active)

	// the read must not have touched the stored row
	require.True(t, repo.memberTags[0].IsActive)

	tags, err := svc.GetActiveTags(context.Background(), 7)
	require.NoError(t, err)
	require.Empty(t, tags)
}

func TestTagServiceAssignCleansExpiredRowLazily(t *testing.T) {
	repo := newTagRepoFake()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc := newTagServiceForTest(repo, now)

	expiry := now.Add(time.Hour)
	_, err := svc.Assign(context.Background(), AssignTagInput{MemberID: 7, TagName: "VISITOR", AssignedBy: 1, ExpiresAt: &expiry})
	require.NoError(t, err)

	svc.now = func() time.Time { return now.Add(2 * time.Hour) }

	assigned, err := svc.Assign(context.Background(), AssignTagInput{MemberID: 7, TagName: "VISITOR", AssignedBy: 2})
	require.NoError(t, err)
	require.True(t, assigned.IsActive)

	require.False(t, repo.memberTags[0].IsActive, "expired row should be deactivated on the write path")
	require.Equal(t, "expired", repo.memberTags[0].RemovalReason)
	require.True(t, repo.memberTags[1].IsActive)
}

func TestTagServiceClearFirstAttendance(t *testing.T) {
	repo := newTagRepoFake()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc := newTagServiceForTest(repo, now)

	_, err := svc.Assign(context.Background(), AssignTagInput{MemberID: 7, TagName: models.TagPendingFirstAttendance, TagType: models.TagTypeSystem, AssignedBy: 1})
	require.NoError(t, err)

	cleared, err := svc.ClearFirstAttendance(context.Background(), 7)
	require.NoError(t, err)
	require.True(t, cleared)
	require.False(t, repo.memberTags[0].IsActive)
	require.Equal(t, uint(7), *repo.memberTags[0].RemovedBy)

	// not a first-timer anymore: clearing again is a no-op, not an error
	cleared, err = svc.ClearFirstAttendance(context.Background(), 7)
	require.NoError(t, err)
	require.False(t, cleared)
}

func TestTagServiceRemoveErrors(t *testing.T) {
	repo := newTagRepoFake()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc := newTagServiceForTest(repo, now)

	err := svc.Remove(context.Background(), 7, "MISSING", 1, "cleanup")
	require.ErrorIs(t, err, ErrTagNotFound)

	_, err = repo.GetOrCreate(context.Background(), "CHOIR", models.TagTypeCustom, "")
	require.NoError(t, err)

	err = svc.Remove(context.Background(), 7, "CHOIR", 1, "cleanup")
	require.ErrorIs(t, err, ErrMemberTagNotFound)
}

func TestTagServiceDeactivateExpired(t *testing.T) {
	repo := newTagRepoFake()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc := newTagServiceForTest(repo, now)

	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)
	_, err := svc.Assign(context.Background(), AssignTagInput{MemberID: 1, TagName: "A", AssignedBy: 1, ExpiresAt: &future})
	require.NoError(t, err)
	_, err = svc.Assign(context.Background(), AssignTagInput{MemberID: 2, TagName: "B", AssignedBy: 1})
	require.NoError(t, err)
	repo.memberTags[0].ExpiresAt = &past

	count, err := svc.DeactivateExpired(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
	require.False(t, repo.memberTags[0].IsActive)
	require.True(t, repo.memberTags[1].IsActive)
}
