package service

import (
	"context"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/fellowship-hq/fellowship-api/internal/dto"
	"github.com/fellowship-hq/fellowship-api/internal/models"
	"github.com/fellowship-hq/fellowship-api/internal/repository"
)

type memberRepoStub struct {
	members map[uint]models.Member
}

func newMemberRepoStub(members ...models.Member) *memberRepoStub {
	stub := &memberRepoStub{members: make(map[uint]models.Member)}
	for _, member := range members {
		stub.members[member.ID] = member
	}
	return stub
}

func (s *memberRepoStub) GetByID(ctx context.Context, id uint) (models.Member, error) {
	member, ok := s.members[id]
	if !ok || member.DeletedAt.Valid {
		return models.Member{}, gorm.ErrRecordNotFound
	}
	return member, nil
}

func (s *memberRepoStub) GetByIDIncludingDeleted(ctx context.Context, id uint) (models.Member, error) {
	member, ok := s.members[id]
	if !ok {
		return models.Member{}, gorm.ErrRecordNotFound
	}
	return member, nil
}

func (s *memberRepoStub) GetByQRToken(ctx context.Context, token string) (models.Member, error) {
	for _, member := range s.members {
		if member.QRToken == token && !member.DeletedAt.Valid {
			return member, nil
		}
	}
	return models.Member{}, gorm.ErrRecordNotFound
}

func (s *memberRepoStub) GetByFellowshipNumber(ctx context.Context, number string) (models.Member, error) {
	for _, member := range s.members {
		if member.FellowshipNumber == number && !member.DeletedAt.Valid {
			return member, nil
		}
	}
	return models.Member{}, gorm.ErrRecordNotFound
}

func (s *memberRepoStub) UpdateFields(ctx context.Context, id uint, updates map[string]interface{}) (models.Member, error) {
	member, ok := s.members[id]
	if !ok || member.DeletedAt.Valid {
		return models.Member{}, gorm.ErrRecordNotFound
	}
	for column, value := range updates {
		switch column {
		case "full_name":
			member.FullName = value.(string)
		case "email":
			member.Email = value.(string)
		case "phone_number":
			member.PhoneNumber = value.(string)
		case "course_id":
			member.CourseID = value.(uint)
		case "initial_year_of_study":
			member.InitialYearOfStudy = value.(int)
		case "initial_semester":
			member.InitialSemester = value.(int)
		case "residence_id":
			member.ResidenceID = value.(uint)
		case "hostel_name":
			member.HostelName = value.(string)
		}
	}
	s.members[id] = member
	return member, nil
}

func (s *memberRepoStub) CountByRegion(ctx context.Context, regionID *uint) (int64, error) {
	var count int64
	for _, member := range s.members {
		if member.DeletedAt.Valid {
			continue
		}
		if regionID == nil || (member.RegionID != nil && *member.RegionID == *regionID) {
			count++
		}
	}
	return count, nil
}

type eventRepoStub struct {
	events map[uint]models.Event
}

func newEventRepoStub(events ...models.Event) *eventRepoStub {
	stub := &eventRepoStub{events: make(map[uint]models.Event)}
	for _, event := range events {
		stub.events[event.ID] = event
	}
	return stub
}

func (s *eventRepoStub) GetByID(ctx context.Context, id uint) (models.Event, error) {
	event, ok := s.events[id]
	if !ok {
		return models.Event{}, gorm.ErrRecordNotFound
	}
	return event, nil
}

type attendanceRepoStub struct {
	records []models.Attendance
	guests  []models.GuestAttendance
	nextID  uint
}

func (s *attendanceRepoStub) Create(ctx context.Context, attendance *models.Attendance) error {
	s.nextID++
	attendance.ID = s.nextID
	s.records = append(s.records, *attendance)
	return nil
}

func (s *attendanceRepoStub) Exists(ctx context.Context, memberID, eventID uint) (bool, error) {
	for _, record := range s.records {
		if record.MemberID == memberID && record.EventID == eventID {
			return true, nil
		}
	}
	return false, nil
}

func (s *attendanceRepoStub) CreateGuest(ctx context.Context, attendance *models.GuestAttendance) error {
	s.nextID++
	attendance.ID = s.nextID
	s.guests = append(s.guests, *attendance)
	return nil
}

func (s *attendanceRepoStub) CountByEvent(ctx context.Context, eventID uint) (int64, error) {
	var count int64
	for _, record := range s.records {
		if record.EventID == eventID {
			count++
		}
	}
	return count, nil
}

func (s *attendanceRepoStub) CountGuestsByEvent(ctx context.Context, eventID uint) (int64, error) {
	var count int64
	for _, guest := range s.guests {
		if guest.EventID == eventID {
			count++
		}
	}
	return count, nil
}

// tagRepoFake is an in-memory tag store that honors the single-active-row
// semantics of the real repository.
type tagRepoFake struct {
	tags       map[string]models.Tag
	memberTags []models.MemberTag
	nextTagID  uint
	nextRowID  uint
}

func newTagRepoFake() *tagRepoFake {
	return &tagRepoFake{tags: make(map[string]models.Tag)}
}

func (f *tagRepoFake) GetByName(ctx context.Context, name string) (models.Tag, error) {
	tag, ok := f.tags[name]
	if !ok {
		return models.Tag{}, gorm.ErrRecordNotFound
	}
	return tag, nil
}

func (f *tagRepoFake) GetOrCreate(ctx context.Context, name, tagType, description string) (models.Tag, error) {
	if tag, ok := f.tags[name]; ok {
		return tag, nil
	}
	f.nextTagID++
	tag := models.Tag{ID: f.nextTagID, Name: name, Type: tagType, Description: description}
	f.tags[name] = tag
	return tag, nil
}

func (f *tagRepoFake) CreateMemberTag(ctx context.Context, memberTag *models.MemberTag) error {
	f.nextRowID++
	memberTag.ID = f.nextRowID
	f.memberTags = append(f.memberTags, *memberTag)
	return nil
}

func (f *tagRepoFake) FindActiveMemberTag(ctx context.Context, memberID, tagID uint) (models.MemberTag, error) {
	for _, row := range f.memberTags {
		if row.MemberID == memberID && row.TagID == tagID && row.IsActive {
			return row, nil
		}
	}
	return models.MemberTag{}, gorm.ErrRecordNotFound
}

func (f *tagRepoFake) ListActiveMemberTags(ctx context.Context, memberID uint) ([]models.MemberTag, error) {
	var rows []models.MemberTag
	for _, row := range f.memberTags {
		if row.MemberID == memberID && row.IsActive {
			for _, tag := range f.tags {
				if tag.ID == row.TagID {
					row.Tag = tag
				}
			}
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func (f *tagRepoFake) DeactivateMemberTag(ctx context.Context, id, removedBy uint, reason string, at time.Time) error {
	for i, row := range f.memberTags {
		if row.ID == id && row.IsActive {
			f.memberTags[i].IsActive = false
			f.memberTags[i].RemovedBy = &removedBy
			f.memberTags[i].RemovedAt = &at
			f.memberTags[i].RemovalReason = reason
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *tagRepoFake) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	var count int64
	for i, row := range f.memberTags {
		if row.IsActive && row.ExpiresAt != nil && !row.ExpiresAt.After(now) {
			f.memberTags[i].IsActive = false
			count++
		}
	}
	return count, nil
}

type editRequestRepoStub struct {
	requests   map[uint]models.ProfileEditRequest
	members    *memberRepoStub
	nextID     uint
	lastFilter repository.EditRequestFilter
	applied    map[string]interface{}
}

func newEditRequestRepoStub(members *memberRepoStub) *editRequestRepoStub {
	return &editRequestRepoStub{requests: make(map[uint]models.ProfileEditRequest), members: members}
}

func (s *editRequestRepoStub) Create(ctx context.Context, request *models.ProfileEditRequest) error {
	s.nextID++
	request.ID = s.nextID
	s.requests[request.ID] = *request
	return nil
}

func (s *editRequestRepoStub) GetByID(ctx context.Context, id uint) (models.ProfileEditRequest, error) {
	request, ok := s.requests[id]
	if !ok {
		return models.ProfileEditRequest{}, gorm.ErrRecordNotFound
	}
	// Mirror the production repository, which preloads Member on GetByID.
	if s.members != nil {
		if member, ok := s.members.members[request.MemberID]; ok {
			request.Member = member
		}
	}
	return request, nil
}

func (s *editRequestRepoStub) FindPendingByMember(ctx context.Context, memberID uint) (models.ProfileEditRequest, error) {
	for _, request := range s.requests {
		if request.MemberID == memberID && request.Status == models.EditRequestStatusPending {
			return request, nil
		}
	}
	return models.ProfileEditRequest{}, gorm.ErrRecordNotFound
}

func (s *editRequestRepoStub) List(ctx context.Context, filter repository.EditRequestFilter) ([]models.ProfileEditRequest, error) {
	s.lastFilter = filter
	var requests []models.ProfileEditRequest
	for _, request := range s.requests {
		if filter.Status != "" && request.Status != filter.Status {
			continue
		}
		requests = append(requests, request)
	}
	return requests, nil
}

func (s *editRequestRepoStub) Approve(ctx context.Context, request *models.ProfileEditRequest, memberUpdates map[string]interface{}) error {
	return s.resolve(request, memberUpdates)
}

func (s *editRequestRepoStub) Reject(ctx context.Context, request *models.ProfileEditRequest) error {
	return s.resolve(request, nil)
}

func (s *editRequestRepoStub) resolve(request *models.ProfileEditRequest, memberUpdates map[string]interface{}) error {
	stored, ok := s.requests[request.ID]
	if !ok || stored.Status != models.EditRequestStatusPending {
		return gorm.ErrRecordNotFound
	}
	now := time.Now()
	request.ReviewedAt = &now
	s.requests[request.ID] = *request
	s.applied = memberUpdates
	return nil
}

type regionRepoStub struct {
	regions     map[uint]models.Region
	teams       []models.MinistryTeam
	assignedTag *models.MemberTag
	tagRemoved  bool
}

func newRegionRepoStub(regions ...models.Region) *regionRepoStub {
	stub := &regionRepoStub{regions: make(map[uint]models.Region), tagRemoved: true}
	for _, region := range regions {
		stub.regions[region.ID] = region
	}
	return stub
}

func (s *regionRepoStub) GetByID(ctx context.Context, id uint) (models.Region, error) {
	region, ok := s.regions[id]
	if !ok {
		return models.Region{}, gorm.ErrRecordNotFound
	}
	return region, nil
}

func (s *regionRepoStub) FindByHead(ctx context.Context, memberID uint) (models.Region, error) {
	for _, region := range s.regions {
		if region.RegionalHeadID != nil && *region.RegionalHeadID == memberID {
			return region, nil
		}
	}
	return models.Region{}, gorm.ErrRecordNotFound
}

func (s *regionRepoStub) List(ctx context.Context) ([]models.Region, error) {
	regions := make([]models.Region, 0, len(s.regions))
	for id := uint(1); id <= uint(len(s.regions))+10; id++ {
		if region, ok := s.regions[id]; ok {
			regions = append(regions, region)
		}
	}
	return regions, nil
}

func (s *regionRepoStub) ListTeams(ctx context.Context, regionID *uint) ([]models.MinistryTeam, error) {
	var teams []models.MinistryTeam
	for _, team := range s.teams {
		if regionID == nil || (team.RegionID != nil && *team.RegionID == *regionID) {
			teams = append(teams, team)
		}
	}
	return teams, nil
}

func (s *regionRepoStub) AssignHead(ctx context.Context, regionID uint, memberTag *models.MemberTag) error {
	region, ok := s.regions[regionID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	headID := memberTag.MemberID
	region.RegionalHeadID = &headID
	s.regions[regionID] = region
	s.assignedTag = memberTag
	return nil
}

func (s *regionRepoStub) RemoveHead(ctx context.Context, regionID, memberID, tagID, removedBy uint, at time.Time) (bool, error) {
	region, ok := s.regions[regionID]
	if !ok {
		return false, gorm.ErrRecordNotFound
	}
	region.RegionalHeadID = nil
	s.regions[regionID] = region
	return s.tagRemoved, nil
}

type notificationRepoStub struct {
	created  []models.Notification
	statuses map[uint]string
	nextID   uint
}

func newNotificationRepoStub() *notificationRepoStub {
	return &notificationRepoStub{statuses: make(map[uint]string)}
}

func (s *notificationRepoStub) Create(ctx context.Context, notification *models.Notification) error {
	s.nextID++
	notification.ID = s.nextID
	s.created = append(s.created, *notification)
	return nil
}

func (s *notificationRepoStub) UpdateStatus(ctx context.Context, id uint, status string) error {
	s.statuses[id] = status
	return nil
}

func (s *notificationRepoStub) ListByMember(ctx context.Context, memberID uint, limit int) ([]models.Notification, error) {
	var notifications []models.Notification
	for _, notification := range s.created {
		if notification.MemberID == memberID {
			notifications = append(notifications, notification)
		}
	}
	return notifications, nil
}

// dispatcherStub records dispatched messages synchronously so tests can
// assert on them without races.
type dispatcherStub struct {
	mu       sync.Mutex
	messages []dto.NotificationMessage
}

func (s *dispatcherStub) Dispatch(ctx context.Context, message dto.NotificationMessage) (dto.NotificationResponse, error) {
	s.record(message)
	return dto.NotificationResponse{MemberID: message.MemberID, Type: message.Type}, nil
}

func (s *dispatcherStub) DispatchAsync(correlationID string, message dto.NotificationMessage) {
	s.record(message)
}

func (s *dispatcherStub) Start(ctx context.Context) {}

func (s *dispatcherStub) record(message dto.NotificationMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, message)
}

func (s *dispatcherStub) sent() []dto.NotificationMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]dto.NotificationMessage(nil), s.messages...)
}
