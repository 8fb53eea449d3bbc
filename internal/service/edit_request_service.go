package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/fellowship-hq/fellowship-api/internal/dto"
	"github.com/fellowship-hq/fellowship-api/internal/models"
	"github.com/fellowship-hq/fellowship-api/internal/observability"
	"github.com/fellowship-hq/fellowship-api/internal/repository"
)

// ErrPendingRequestExists indicates the member already has a pending edit request.
var ErrPendingRequestExists = errors.New("a pending edit request already exists")

// ErrNoEffectiveChanges indicates every proposed value equals the stored one.
var ErrNoEffectiveChanges = errors.New("no effective changes in request")

// ErrRequestNotFound indicates the edit request does not exist.
var ErrRequestNotFound = errors.New("edit request not found")

// ErrReviewForbidden indicates the reviewer may not act on this request.
var ErrReviewForbidden = errors.New("reviewer is not allowed to act on this request")

// ErrSelfReview indicates a member attempted to review their own request.
var ErrSelfReview = errors.New("members may not review their own requests")

// ErrListScopeForbidden indicates the caller has no reviewing relation at all.
var ErrListScopeForbidden = errors.New("caller has no review scope")

// AlreadyResolvedError reports a review attempt on a resolved request,
// echoing the status it already carries.
type AlreadyResolvedError struct {
	Status string
}

func (e AlreadyResolvedError) Error() string {
	return fmt.Sprintf("request already resolved as %s", e.Status)
}

// Actor identifies the authenticated caller of a workflow operation.
type Actor struct {
	ID   uint
	Role string
}

// IsManager reports whether the actor holds the fellowship manager role.
func (a Actor) IsManager() bool {
	return a.Role == models.RoleFellowshipManager
}

// EditRequestService runs the profile-edit approval workflow.
type EditRequestService interface {
	Submit(ctx context.Context, memberID uint, req dto.EditRequestSubmitRequest) (dto.EditRequestResponse, error)
	List(ctx context.Context, reviewer Actor, status string) ([]dto.EditRequestResponse, error)
	Review(ctx context.Context, reviewer Actor, id uint, req dto.EditRequestReviewRequest) (dto.EditRequestResponse, error)
}

type editRequestService struct {
	requests  repository.EditRequestRepository
	members   repository.MemberRepository
	regions   repository.RegionRepository
	notifier  NotificationDispatcher
	validator *validator.Validate
	logger    zerolog.Logger
	sanitizer *bluemonday.Policy
}

// NewEditRequestService constructs the edit request service.
func NewEditRequestService(requests repository.EditRequestRepository, members repository.MemberRepository, regions repository.RegionRepository, notifier NotificationDispatcher, validate *validator.Validate, logger zerolog.Logger) EditRequestService {
	return &editRequestService{
		requests:  requests,
		members:   members,
		regions:   regions,
		notifier:  notifier,
		validator: validate,
		logger:    logger.With().Str("component", "edit_request_service").Logger(),
		sanitizer: bluemonday.StrictPolicy(),
	}
}

func (s *editRequestService) Submit(ctx context.Context, memberID uint, req dto.EditRequestSubmitRequest) (dto.EditRequestResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.EditRequestResponse{}, err
	}

	if _, err := s.requests.FindPendingByMember(ctx, memberID); err == nil {
		return dto.EditRequestResponse{}, ErrPendingRequestExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.EditRequestResponse{}, err
	}

	member, err := s.members.GetByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EditRequestResponse{}, ErrMemberNotFound
		}
		return dto.EditRequestResponse{}, err
	}

	changes, err := s.diffChanges(&member, req.Changes)
	if err != nil {
		return dto.EditRequestResponse{}, err
	}
	if len(changes) == 0 {
		return dto.EditRequestResponse{}, ErrNoEffectiveChanges
	}

	payload, err := json.Marshal(changes)
	if err != nil {
		return dto.EditRequestResponse{}, err
	}

	request := models.ProfileEditRequest{
		MemberID: memberID,
		Changes:  payload,
		Reason:   strings.TrimSpace(s.sanitizer.Sanitize(req.Reason)),
		Status:   models.EditRequestStatusPending,
	}
	if err := s.requests.Create(ctx, &request); err != nil {
		return dto.EditRequestResponse{}, err
	}
	request.Member = member

	s.notifyRegionalHead(ctx, member, request)
	observability.EditRequestsTotal().WithLabelValues("submitted").Inc()

	return dto.NewEditRequestResponse(request), nil
}

func (s *editRequestService) List(ctx context.Context, reviewer Actor, status string) ([]dto.EditRequestResponse, error) {
	filter := repository.EditRequestFilter{Status: status}

	if !reviewer.IsManager() {
		region, err := s.regions.FindByHead(ctx, reviewer.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrListScopeForbidden
			}
			return nil, err
		}
		filter.RegionID = &region.ID
	}

	requests, err := s.requests.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return dto.NewEditRequestResponseSlice(requests), nil
}

func (s *editRequestService) Review(ctx context.Context, reviewer Actor, id uint, req dto.EditRequestReviewRequest) (dto.EditRequestResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.EditRequestResponse{}, err
	}

	request, err := s.requests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EditRequestResponse{}, ErrRequestNotFound
		}
		return dto.EditRequestResponse{}, err
	}

	if request.Resolved() {
		return dto.EditRequestResponse{}, AlreadyResolvedError{Status: request.Status}
	}
	if request.MemberID == reviewer.ID {
		return dto.EditRequestResponse{}, ErrSelfReview
	}
	if err := s.authorizeReviewer(ctx, reviewer, request.Member); err != nil {
		return dto.EditRequestResponse{}, err
	}

	request.Status = req.Status
	request.ReviewedBy = &reviewer.ID
	request.ReviewNote = strings.TrimSpace(s.sanitizer.Sanitize(req.ReviewNote))

	switch req.Status {
	case models.EditRequestStatusApproved:
		updates, err := s.memberUpdates(request)
		if err != nil {
			return dto.EditRequestResponse{}, err
		}
		err = s.requests.Approve(ctx, &request, updates)
		if resolveErr := s.mapResolveRace(ctx, id, err); resolveErr != nil {
			return dto.EditRequestResponse{}, resolveErr
		}
	case models.EditRequestStatusRejected:
		err = s.requests.Reject(ctx, &request)
		if resolveErr := s.mapResolveRace(ctx, id, err); resolveErr != nil {
			return dto.EditRequestResponse{}, resolveErr
		}
	}

	s.notifyDecision(ctx, request)
	observability.EditRequestsTotal().WithLabelValues(strings.ToLower(req.Status)).Inc()

	return dto.NewEditRequestResponse(request), nil
}

// authorizeReviewer admits fellowship managers unconditionally and regional
// heads only for members of the region they head.
func (s *editRequestService) authorizeReviewer(ctx context.Context, reviewer Actor, member models.Member) error {
	if reviewer.IsManager() {
		return nil
	}

	region, err := s.regions.FindByHead(ctx, reviewer.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReviewForbidden
		}
		return err
	}

	if member.RegionID == nil || *member.RegionID != region.ID {
		return ErrReviewForbidden
	}
	return nil
}

func (s *editRequestService) diffChanges(member *models.Member, proposed []dto.EditRequestChange) ([]models.FieldChange, error) {
	changes := make([]models.FieldChange, 0, len(proposed))
	for _, change := range proposed {
		descriptor, ok := lookupEditableField(change.Field)
		if !ok {
			return nil, UnknownFieldError{Field: change.Field}
		}

		changed, _, err := descriptor.diff(member, change.NewValue)
		if err != nil {
			return nil, err
		}
		if !changed {
			continue
		}

		changes = append(changes, models.FieldChange{
			Field:    descriptor.name,
			OldValue: descriptor.renderCurrent(member),
			NewValue: change.NewValue,
		})
	}
	return changes, nil
}

// memberUpdates maps the stored diff list back to typed column updates.
// Informational fields contribute to the audit trail but no mutation.
func (s *editRequestService) memberUpdates(request models.ProfileEditRequest) (map[string]interface{}, error) {
	var changes []models.FieldChange
	if err := json.Unmarshal(request.Changes, &changes); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{}, len(changes))
	for _, change := range changes {
		descriptor, ok := lookupEditableField(change.Field)
		if !ok {
			return nil, UnknownFieldError{Field: change.Field}
		}
		if descriptor.column == "" {
			continue
		}

		parsed, err := descriptor.parse(change.NewValue)
		if err != nil {
			return nil, InvalidFieldValueError{Field: change.Field, Value: change.NewValue}
		}
		updates[descriptor.column] = parsed
	}
	return updates, nil
}

// mapResolveRace translates the repository's status-guard failure into the
// conflict error carrying whatever status won the race.
func (s *editRequestService) mapResolveRace(ctx context.Context, id uint, err error) error {
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	current, fetchErr := s.requests.GetByID(ctx, id)
	if fetchErr != nil {
		return AlreadyResolvedError{Status: "RESOLVED"}
	}
	return AlreadyResolvedError{Status: current.Status}
}

func (s *editRequestService) notifyRegionalHead(ctx context.Context, member models.Member, request models.ProfileEditRequest) {
	if s.notifier == nil || member.RegionID == nil {
		return
	}

	region, err := s.regions.GetByID(ctx, *member.RegionID)
	if err != nil || region.RegionalHeadID == nil {
		return
	}

	s.notifier.DispatchAsync("", dto.NotificationMessage{
		MemberID: *region.RegionalHeadID,
		Type:     models.NotificationTypeEditRequestSubmitted,
		Subject:  "New profile edit request",
		Body:     fmt.Sprintf("%s submitted a profile edit request for review.", member.FullName),
		Metadata: map[string]interface{}{"request_id": request.ID},
	})
}

func (s *editRequestService) notifyDecision(_ context.Context, request models.ProfileEditRequest) {
	if s.notifier == nil {
		return
	}

	s.notifier.DispatchAsync("", dto.NotificationMessage{
		MemberID: request.MemberID,
		Type:     models.NotificationTypeEditRequestDecision,
		Subject:  fmt.Sprintf("Your profile edit request was %s", strings.ToLower(request.Status)),
		Body:     request.ReviewNote,
		Metadata: map[string]interface{}{"request_id": request.ID, "status": request.Status},
	})
}
