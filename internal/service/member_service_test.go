package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/fellowship-hq/fellowship-api/internal/dto"
	"github.com/fellowship-hq/fellowship-api/internal/models"
)

func TestMemberServiceDirectUpdate(t *testing.T) {
	members := newMemberRepoStub(models.Member{
		ID:               7,
		FullName:         "Amina Yusuf",
		FellowshipNumber: "FN-0007",
		QRToken:          "qr-amina",
		PhoneNumber:      "0700000000",
	})
	svc := NewMemberService(members, newNotificationRepoStub(), validator.New(validator.WithRequiredStructEnabled()), zerolog.Nop())

	phone := " 0711111111 "
	course := uint(5)
	resp, err := svc.DirectUpdate(context.Background(), 7, dto.MemberUpdateRequest{
		PhoneNumber: &phone,
		CourseID:    &course,
	})
	require.NoError(t, err)
	require.Equal(t, "0711111111", resp.PhoneNumber)
	require.Equal(t, uint(5), resp.CourseID)
	require.Equal(t, "Amina Yusuf", resp.FullName)
}

func TestMemberServiceDirectUpdateEmptyPayloadReturnsProfile(t *testing.T) {
	members := newMemberRepoStub(models.Member{ID: 7, FullName: "Amina Yusuf", FellowshipNumber: "FN-0007", QRToken: "qr-amina"})
	svc := NewMemberService(members, newNotificationRepoStub(), validator.New(validator.WithRequiredStructEnabled()), zerolog.Nop())

	resp, err := svc.DirectUpdate(context.Background(), 7, dto.MemberUpdateRequest{})
	require.NoError(t, err)
	require.Equal(t, "Amina Yusuf", resp.FullName)
}

func TestMemberServiceNotificationsListsOwnOnly(t *testing.T) {
	notifications := newNotificationRepoStub()
	require.NoError(t, notifications.Create(context.Background(), &models.Notification{MemberID: 7, Type: models.NotificationTypeFirstAttendance, Subject: "Welcome to the fellowship"}))
	require.NoError(t, notifications.Create(context.Background(), &models.Notification{MemberID: 8, Type: models.NotificationTypeEditRequestDecision, Subject: "Edit request reviewed"}))

	svc := NewMemberService(newMemberRepoStub(), notifications, validator.New(validator.WithRequiredStructEnabled()), zerolog.Nop())

	resp, err := svc.Notifications(context.Background(), 7, 0)
	require.NoError(t, err)
	require.Len(t, resp, 1)
	require.Equal(t, "Welcome to the fellowship", resp[0].Subject)
}

func TestMemberServiceProfileNotFound(t *testing.T) {
	svc := NewMemberService(newMemberRepoStub(), newNotificationRepoStub(), validator.New(validator.WithRequiredStructEnabled()), zerolog.Nop())

	_, err := svc.Profile(context.Background(), 404)
	require.ErrorIs(t, err, ErrMemberNotFound)

	badEmail := "not-an-email"
	_, err = svc.DirectUpdate(context.Background(), 7, dto.MemberUpdateRequest{Email: &badEmail})
	require.Error(t, err)
}
