package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/fellowship-hq/fellowship-api/internal/dto"
	"github.com/fellowship-hq/fellowship-api/internal/models"
	"github.com/fellowship-hq/fellowship-api/internal/observability"
	"github.com/fellowship-hq/fellowship-api/internal/repository"
)

// Check-in timestamps are evaluated against the fellowship's civil time
// zone, fixed at UTC+3 regardless of server locale.
var fellowshipZone = time.FixedZone("EAT", 3*60*60)

// ErrMemberNotFound indicates no live member matched the lookup key.
var ErrMemberNotFound = errors.New("member not found")

// ErrEventNotFound indicates the event does not exist.
var ErrEventNotFound = errors.New("event not found")

// ErrEventInactive indicates check-in is closed for the event.
var ErrEventInactive = errors.New("event is not active")

// ErrOutsideEventWindow indicates the current time is outside the event's check-in window.
var ErrOutsideEventWindow = errors.New("outside event check-in window")

// ErrAlreadyCheckedIn indicates the member already checked in to the event.
var ErrAlreadyCheckedIn = errors.New("member already checked in")

// ErrGuestCheckinDisabled indicates the event does not accept guest check-ins.
var ErrGuestCheckinDisabled = errors.New("guest check-in is disabled for this event")

// ErrInvalidMemberLookup indicates the payload did not carry exactly one lookup key.
var ErrInvalidMemberLookup = errors.New("exactly one of qr_code and fellowship_number must be provided")

// CheckinService registers member and guest check-ins.
type CheckinService interface {
	CheckIn(ctx context.Context, req dto.CheckinRequest) (dto.CheckinResponse, error)
	GuestCheckIn(ctx context.Context, req dto.GuestCheckinRequest) (dto.GuestCheckinResponse, error)
	EventStats(ctx context.Context, eventID uint) (dto.EventStatsResponse, error)
}

type checkinService struct {
	members    repository.MemberRepository
	events     repository.EventRepository
	attendance repository.AttendanceRepository
	tags       TagService
	notifier   NotificationDispatcher
	validator  *validator.Validate
	logger     zerolog.Logger
	tracer     trace.Tracer
	now        func() time.Time
}

// NewCheckinService constructs the check-in service.
func NewCheckinService(members repository.MemberRepository, events repository.EventRepository, attendance repository.AttendanceRepository, tags TagService, notifier NotificationDispatcher, validate *validator.Validate, logger zerolog.Logger) CheckinService {
	return &checkinService{
		members:    members,
		events:     events,
		attendance: attendance,
		tags:       tags,
		notifier:   notifier,
		validator:  validate,
		logger:     logger.With().Str("component", "checkin_service").Logger(),
		tracer:     otel.Tracer("github.com/fellowship-hq/fellowship-api/internal/service/checkin"),
		now:        time.Now,
	}
}

func (s *checkinService) CheckIn(ctx context.Context, req dto.CheckinRequest) (dto.CheckinResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.CheckinResponse{}, err
	}

	if (req.QRCode == "") == (req.FellowshipNumber == "") {
		return dto.CheckinResponse{}, ErrInvalidMemberLookup
	}

	spanCtx, span := s.tracer.Start(ctx, "checkin.member", trace.WithAttributes(
		attribute.Int("checkin.event_id", int(req.EventID)),
		attribute.String("checkin.method", req.Method),
	))
	defer span.End()

	member, err := s.lookupMember(spanCtx, req)
	if err != nil {
		return dto.CheckinResponse{}, err
	}

	event, err := s.loadOpenEvent(spanCtx, req.EventID)
	if err != nil {
		return dto.CheckinResponse{}, err
	}

	exists, err := s.attendance.Exists(spanCtx, member.ID, event.ID)
	if err != nil {
		return dto.CheckinResponse{}, err
	}
	if exists {
		observability.CheckinsTotal().WithLabelValues(req.Method, "duplicate").Inc()
		return dto.CheckinResponse{}, ErrAlreadyCheckedIn
	}

	attendance := models.Attendance{
		MemberID:    member.ID,
		EventID:     event.ID,
		Method:      req.Method,
		CheckedInAt: s.now().In(fellowshipZone),
	}
	if err := s.attendance.Create(spanCtx, &attendance); err != nil {
		span.RecordError(err)
		return dto.CheckinResponse{}, err
	}

	firstAttendance, err := s.tags.ClearFirstAttendance(spanCtx, member.ID)
	if err != nil {
		// the check-in itself has been recorded; a failed tag transition is
		// logged and corrected on the next mutation, not rolled back
		s.logger.Error().Err(err).Uint("member_id", member.ID).Msg("failed to clear first attendance tag")
	}

	if firstAttendance && s.notifier != nil {
		s.notifier.DispatchAsync("", dto.NotificationMessage{
			MemberID: member.ID,
			Type:     models.NotificationTypeFirstAttendance,
			Subject:  "Welcome to the fellowship",
			Body:     fmt.Sprintf("We are glad you joined us at %s.", event.Title),
			Metadata: map[string]interface{}{"event_id": event.ID},
		})
	}

	observability.CheckinsTotal().WithLabelValues(req.Method, "recorded").Inc()
	return dto.NewCheckinResponse(attendance, firstAttendance), nil
}

func (s *checkinService) GuestCheckIn(ctx context.Context, req dto.GuestCheckinRequest) (dto.GuestCheckinResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.GuestCheckinResponse{}, err
	}

	event, err := s.loadOpenEvent(ctx, req.EventID)
	if err != nil {
		return dto.GuestCheckinResponse{}, err
	}
	if !event.AllowGuestCheckin {
		return dto.GuestCheckinResponse{}, ErrGuestCheckinDisabled
	}

	attendance := models.GuestAttendance{
		EventID:     event.ID,
		GuestName:   req.GuestName,
		GuestPhone:  req.GuestPhone,
		Purpose:     req.Purpose,
		CheckedInAt: s.now().In(fellowshipZone),
	}
	if err := s.attendance.CreateGuest(ctx, &attendance); err != nil {
		return dto.GuestCheckinResponse{}, err
	}

	observability.CheckinsTotal().WithLabelValues("GUEST", "recorded").Inc()
	return dto.NewGuestCheckinResponse(attendance), nil
}

// EventStats reports how many member and guest check-ins an event has
// recorded so far.
func (s *checkinService) EventStats(ctx context.Context, eventID uint) (dto.EventStatsResponse, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EventStatsResponse{}, ErrEventNotFound
		}
		return dto.EventStatsResponse{}, err
	}

	attendees, err := s.attendance.CountByEvent(ctx, event.ID)
	if err != nil {
		return dto.EventStatsResponse{}, err
	}
	guests, err := s.attendance.CountGuestsByEvent(ctx, event.ID)
	if err != nil {
		return dto.EventStatsResponse{}, err
	}

	return dto.EventStatsResponse{EventID: event.ID, Attendees: attendees, Guests: guests}, nil
}

func (s *checkinService) lookupMember(ctx context.Context, req dto.CheckinRequest) (models.Member, error) {
	var (
		member models.Member
		err    error
	)
	if req.QRCode != "" {
		member, err = s.members.GetByQRToken(ctx, req.QRCode)
	} else {
		member, err = s.members.GetByFellowshipNumber(ctx, req.FellowshipNumber)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Member{}, ErrMemberNotFound
		}
		return models.Member{}, err
	}
	return member, nil
}

func (s *checkinService) loadOpenEvent(ctx context.Context, eventID uint) (models.Event, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Event{}, ErrEventNotFound
		}
		return models.Event{}, err
	}

	if !event.IsActive {
		return models.Event{}, ErrEventInactive
	}

	start, end, err := event.Window(fellowshipZone)
	if err != nil {
		return models.Event{}, err
	}

	now := s.now().In(fellowshipZone)
	if now.Before(start) || now.After(end) {
		return models.Event{}, ErrOutsideEventWindow
	}

	return event, nil
}
