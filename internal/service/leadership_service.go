package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/fellowship-hq/fellowship-api/internal/dto"
	"github.com/fellowship-hq/fellowship-api/internal/models"
	"github.com/fellowship-hq/fellowship-api/internal/repository"
)

// ErrRegionNotFound indicates the region does not exist.
var ErrRegionNotFound = errors.New("region not found")

// ErrNoRegionalHead indicates the region has no current head to remove.
var ErrNoRegionalHead = errors.New("region has no regional head")

// ErrMemberDeleted indicates the target member is soft-deleted.
var ErrMemberDeleted = errors.New("member is deleted")

// ErrRegionHeadOccupied indicates the region already has a head assigned.
var ErrRegionHeadOccupied = errors.New("region already has a regional head")

// ErrStructureForbidden indicates the caller has no visibility into the org structure.
var ErrStructureForbidden = errors.New("caller has no structure visibility")

// AlreadyHeadsRegionError reports an assignment attempt for a member who
// already heads another region, naming that region.
type AlreadyHeadsRegionError struct {
	Region string
}

func (e AlreadyHeadsRegionError) Error() string {
	return fmt.Sprintf("member already heads region %q", e.Region)
}

// LeadershipService maintains the Region↔head relation, its coupled
// REGIONAL_HEAD tag, and the role-scoped org-structure read model.
type LeadershipService interface {
	AssignRegionalHead(ctx context.Context, req dto.AssignRegionalHeadRequest, actor Actor) (dto.RegionalHeadResponse, error)
	RemoveRegionalHead(ctx context.Context, regionID uint, actor Actor) (dto.RegionalHeadResponse, error)
	Structure(ctx context.Context, caller Actor) (dto.StructureResponse, error)
}

type leadershipService struct {
	regions   repository.RegionRepository
	members   repository.MemberRepository
	tags      repository.TagRepository
	notifier  NotificationDispatcher
	cache     *redis.Client
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewLeadershipService constructs the leadership service.
func NewLeadershipService(regions repository.RegionRepository, members repository.MemberRepository, tags repository.TagRepository, notifier NotificationDispatcher, cache *redis.Client, cacheTTL time.Duration, validate *validator.Validate, logger zerolog.Logger) LeadershipService {
	return &leadershipService{
		regions:   regions,
		members:   members,
		tags:      tags,
		notifier:  notifier,
		cache:     cache,
		cacheTTL:  cacheTTL,
		validator: validate,
		logger:    logger.With().Str("component", "leadership_service").Logger(),
		now:       time.Now,
	}
}

func (s *leadershipService) AssignRegionalHead(ctx context.Context, req dto.AssignRegionalHeadRequest, actor Actor) (dto.RegionalHeadResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.RegionalHeadResponse{}, err
	}

	region, err := s.regions.GetByID(ctx, req.RegionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RegionalHeadResponse{}, ErrRegionNotFound
		}
		return dto.RegionalHeadResponse{}, err
	}
	if region.RegionalHeadID != nil {
		return dto.RegionalHeadResponse{}, ErrRegionHeadOccupied
	}

	member, err := s.members.GetByIDIncludingDeleted(ctx, req.MemberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RegionalHeadResponse{}, ErrMemberNotFound
		}
		return dto.RegionalHeadResponse{}, err
	}
	if member.DeletedAt.Valid {
		return dto.RegionalHeadResponse{}, ErrMemberDeleted
	}

	if existing, err := s.regions.FindByHead(ctx, member.ID); err == nil {
		return dto.RegionalHeadResponse{}, AlreadyHeadsRegionError{Region: existing.Name}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.RegionalHeadResponse{}, err
	}

	tag, err := s.tags.GetOrCreate(ctx, models.TagRegionalHead, models.TagTypeSystem, "Current regional head")
	if err != nil {
		return dto.RegionalHeadResponse{}, err
	}

	now := s.now()
	memberTag := models.MemberTag{
		MemberID:   member.ID,
		TagID:      tag.ID,
		IsActive:   true,
		AssignedBy: actor.ID,
		AssignedAt: now,
		Note:       fmt.Sprintf("Regional head of %s", region.Name),
	}
	if err := s.regions.AssignHead(ctx, region.ID, &memberTag); err != nil {
		return dto.RegionalHeadResponse{}, err
	}

	s.invalidateStructureCache(ctx, region.ID)
	s.notifyLeadershipChange(member.ID, fmt.Sprintf("You are now the regional head of %s.", region.Name), region.ID)

	return dto.RegionalHeadResponse{
		RegionID:   region.ID,
		RegionName: region.Name,
		MemberID:   member.ID,
		MemberName: member.FullName,
		ChangedAt:  now,
	}, nil
}

func (s *leadershipService) RemoveRegionalHead(ctx context.Context, regionID uint, actor Actor) (dto.RegionalHeadResponse, error) {
	region, err := s.regions.GetByID(ctx, regionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RegionalHeadResponse{}, ErrRegionNotFound
		}
		return dto.RegionalHeadResponse{}, err
	}
	if region.RegionalHeadID == nil {
		return dto.RegionalHeadResponse{}, ErrNoRegionalHead
	}
	headID := *region.RegionalHeadID

	tag, err := s.tags.GetOrCreate(ctx, models.TagRegionalHead, models.TagTypeSystem, "Current regional head")
	if err != nil {
		return dto.RegionalHeadResponse{}, err
	}

	now := s.now()
	tagRemoved, err := s.regions.RemoveHead(ctx, region.ID, headID, tag.ID, actor.ID, now)
	if err != nil {
		return dto.RegionalHeadResponse{}, err
	}
	if !tagRemoved {
		// tolerated, but worth an audit trail: the relation said head, the
		// tag store disagreed
		s.logger.Warn().
			Uint("region_id", region.ID).
			Uint("member_id", headID).
			Msg("regional head removed without an active REGIONAL_HEAD tag")
	}

	s.invalidateStructureCache(ctx, region.ID)
	s.notifyLeadershipChange(headID, fmt.Sprintf("You are no longer the regional head of %s.", region.Name), region.ID)

	return dto.RegionalHeadResponse{
		RegionID:   region.ID,
		RegionName: region.Name,
		ChangedAt:  now,
	}, nil
}

func (s *leadershipService) Structure(ctx context.Context, caller Actor) (dto.StructureResponse, error) {
	var scope *uint
	if !caller.IsManager() {
		region, err := s.regions.FindByHead(ctx, caller.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.StructureResponse{}, ErrStructureForbidden
			}
			return dto.StructureResponse{}, err
		}
		scope = &region.ID
	}

	cacheKey := structureCacheKey(scope)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.StructureResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				response.CacheHit = true
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read structure cache")
		}
	}

	response, err := s.buildStructure(ctx, scope)
	if err != nil {
		return dto.StructureResponse{}, err
	}

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store structure cache")
			}
		}
	}

	return response, nil
}

func (s *leadershipService) buildStructure(ctx context.Context, scope *uint) (dto.StructureResponse, error) {
	regions, err := s.regions.List(ctx)
	if err != nil {
		return dto.StructureResponse{}, err
	}

	nodes := make([]dto.StructureRegion, 0, len(regions))
	teamTotal := 0
	for _, region := range regions {
		if scope != nil && region.ID != *scope {
			continue
		}

		regionID := region.ID
		memberCount, err := s.members.CountByRegion(ctx, &regionID)
		if err != nil {
			return dto.StructureResponse{}, err
		}

		teams, err := s.regions.ListTeams(ctx, &regionID)
		if err != nil {
			return dto.StructureResponse{}, err
		}

		node := dto.StructureRegion{
			ID:          region.ID,
			Name:        region.Name,
			HeadID:      region.RegionalHeadID,
			MemberCount: memberCount,
			Teams:       make([]dto.StructureTeam, 0, len(teams)),
		}
		if region.RegionalHead != nil {
			node.HeadName = region.RegionalHead.FullName
		}
		for _, team := range teams {
			node.Teams = append(node.Teams, dto.NewStructureTeam(team))
		}
		teamTotal += len(teams)

		nodes = append(nodes, node)
	}

	memberTotal, err := s.members.CountByRegion(ctx, scope)
	if err != nil {
		return dto.StructureResponse{}, err
	}

	return dto.StructureResponse{
		Regions: nodes,
		Counts: dto.StructureCounts{
			Members: memberTotal,
			Regions: len(nodes),
			Teams:   teamTotal,
		},
	}, nil
}

func (s *leadershipService) invalidateStructureCache(ctx context.Context, regionID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, structureCacheKey(nil), structureCacheKey(&regionID)).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate structure cache")
	}
}

func (s *leadershipService) notifyLeadershipChange(memberID uint, body string, regionID uint) {
	if s.notifier == nil {
		return
	}
	s.notifier.DispatchAsync("", dto.NotificationMessage{
		MemberID: memberID,
		Type:     models.NotificationTypeLeadershipChange,
		Subject:  "Leadership assignment changed",
		Body:     body,
		Metadata: map[string]interface{}{"region_id": regionID},
	})
}

func structureCacheKey(scope *uint) string {
	if scope == nil {
		return "structure:all"
	}
	return fmt.Sprintf("structure:region:%d", *scope)
}
