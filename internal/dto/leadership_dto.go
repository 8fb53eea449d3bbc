package dto

import (
	"time"

	"github.com/fellowship-hq/fellowship-api/internal/models"
)

// AssignRegionalHeadRequest is the payload for assigning a regional head.
type AssignRegionalHeadRequest struct {
	RegionID uint `json:"region_id" validate:"required"`
	MemberID uint `json:"member_id" validate:"required"`
}

// RegionalHeadResponse describes the head assignment after a change.
type RegionalHeadResponse struct {
	RegionID   uint      `json:"region_id"`
	RegionName string    `json:"region_name"`
	MemberID   uint      `json:"member_id,omitempty"`
	MemberName string    `json:"member_name,omitempty"`
	ChangedAt  time.Time `json:"changed_at"`
}

// StructureTeam is a ministry team entry in the org-structure read model.
type StructureTeam struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	RegionID    *uint  `json:"region_id,omitempty"`
	MemberCount int    `json:"member_count"`
}

// StructureRegion is one region node in the org-structure read model.
type StructureRegion struct {
	ID          uint            `json:"id"`
	Name        string          `json:"name"`
	HeadID      *uint           `json:"head_id,omitempty"`
	HeadName    string          `json:"head_name,omitempty"`
	MemberCount int64           `json:"member_count"`
	Teams       []StructureTeam `json:"teams"`
}

// StructureCounts aggregates totals for the caller's visibility scope.
type StructureCounts struct {
	Members int64 `json:"members"`
	Regions int   `json:"regions"`
	Teams   int   `json:"teams"`
}

// StructureResponse is the role-scoped org tree.
type StructureResponse struct {
	Regions  []StructureRegion `json:"regions"`
	Counts   StructureCounts   `json:"counts"`
	CacheHit bool              `json:"cache_hit"`
}

// NewStructureTeam converts a ministry team model into a DTO.
func NewStructureTeam(team models.MinistryTeam) StructureTeam {
	return StructureTeam{
		ID:          team.ID,
		Name:        team.Name,
		RegionID:    team.RegionID,
		MemberCount: team.MemberCount,
	}
}
