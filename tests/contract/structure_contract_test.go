package contract_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/fellowship-hq/fellowship-api/internal/dto"
	"github.com/fellowship-hq/fellowship-api/internal/handler"
	"github.com/fellowship-hq/fellowship-api/internal/models"
	"github.com/fellowship-hq/fellowship-api/internal/service"
)

type stubLeadershipService struct {
	structure dto.StructureResponse
}

func (s stubLeadershipService) AssignRegionalHead(context.Context, dto.AssignRegionalHeadRequest, service.Actor) (dto.RegionalHeadResponse, error) {
	return dto.RegionalHeadResponse{}, nil
}

func (s stubLeadershipService) RemoveRegionalHead(context.Context, uint, service.Actor) (dto.RegionalHeadResponse, error) {
	return dto.RegionalHeadResponse{}, nil
}

func (s stubLeadershipService) Structure(context.Context, service.Actor) (dto.StructureResponse, error) {
	return s.structure, nil
}

func TestStructureResponseContract(t *testing.T) {
	schema := compileSchema(t, "structure_response.schema.json")

	headID := uint(20)
	regionID := uint(1)
	svc := stubLeadershipService{structure: dto.StructureResponse{
		Regions: []dto.StructureRegion{
			{
				ID:          1,
				Name:        "North Campus",
				HeadID:      &headID,
				HeadName:    "Amina Yusuf",
				MemberCount: 34,
				Teams: []dto.StructureTeam{
					{ID: 3, Name: "Worship", RegionID: &regionID, MemberCount: 12},
				},
			},
			{ID: 2, Name: "South Campus", MemberCount: 18, Teams: []dto.StructureTeam{}},
		},
		Counts:   dto.StructureCounts{Members: 52, Regions: 2, Teams: 1},
		CacheHit: true,
	}}

	app := fiber.New()
	group := app.Group("/api/v1/leadership", func(c *fiber.Ctx) error {
		c.Locals("member_id", uint(99))
		c.Locals("member_role", models.RoleFellowshipManager)
		return c.Next()
	})
	handler.NewLeadershipHandler(svc, zerolog.Nop()).Register(group)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/leadership/structure", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "true", resp.Header.Get("X-Cache-Hit"))

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	var payload interface{}
	require.NoError(t, json.Unmarshal(raw, &payload))
	require.NoError(t, schema.Validate(payload))
}
