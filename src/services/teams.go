package services

import (
	"context"
	"log"
	"strings"
	"taskflow/src/models"
	"taskflow/src/rbac"
	"taskflow/src/types"
)

// TeamService manages teams, which are only grouping labels for projects.
type TeamService struct {
	store    Store
	resolver *Resolver
}

func (s *TeamService) Create(ctx context.Context, userID string, body *types.CreateTeamRequestBody) (*models.Team, error) {
	name := strings.TrimSpace(body.Name)
	if name == "" {
		return nil, Invalid("team name is required")
	}
	team := models.Team{
		OrganizationID: body.OrganizationID,
		Name:           name,
		Description:    body.Description,
		Color:          body.Color,
		IsActive:       true,
		CreatedBy:      userID,
	}
	err := s.store.Transaction(ctx, func(tx Store) error {
		if _, err := s.resolver.AuthorizeOrg(ctx, tx, STRICT, body.OrganizationID, userID, rbac.ORG_WRITE); err != nil {
			return err
		}
		return tx.CreateTeam(ctx, &team)
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[teams] Team %d created in organization %d\n", team.ID, team.OrganizationID)
	return &team, nil
}

func (s *TeamService) Get(ctx context.Context, userID string, teamID uint) (*models.Team, error) {
	team, err := s.store.GetTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if _, err := s.resolver.AuthorizeOrg(ctx, s.store, CACHED, team.OrganizationID, userID, rbac.ORG_READ); err != nil {
		return nil, err
	}
	return team, nil
}

func (s *TeamService) List(ctx context.Context, userID string, orgID uint) ([]models.Team, error) {
	if _, err := s.resolver.AuthorizeOrg(ctx, s.store, CACHED, orgID, userID, rbac.ORG_READ); err != nil {
		return nil, err
	}
	return s.store.ListTeams(ctx, orgID)
}

func (s *TeamService) Update(ctx context.Context, userID string, teamID uint, body *types.UpdateTeamRequestBody) (*models.Team, error) {
	var team *models.Team
	err := s.store.Transaction(ctx, func(tx Store) error {
		t, err := tx.GetTeam(ctx, teamID)
		if err != nil {
			return err
		}
		if _, err := s.resolver.AuthorizeOrg(ctx, tx, STRICT, t.OrganizationID, userID, rbac.ORG_WRITE); err != nil {
			return err
		}
		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return Invalid("team name is required")
			}
			t.Name = name
		}
		if body.Description != nil {
			t.Description = *body.Description
		}
		if body.Color != nil {
			t.Color = *body.Color
		}
		team = t
		return tx.SaveTeam(ctx, t)
	})
	if err != nil {
		return nil, err
	}
	return team, nil
}

// Delete deactivates the team. Projects keep their TeamID.
func (s *TeamService) Delete(ctx context.Context, userID string, teamID uint) error {
	return s.store.Transaction(ctx, func(tx Store) error {
		t, err := tx.GetTeam(ctx, teamID)
		if err != nil {
			return err
		}
		if _, err := s.resolver.AuthorizeOrg(ctx, tx, STRICT, t.OrganizationID, userID, rbac.ORG_WRITE); err != nil {
			return err
		}
		t.IsActive = false
		return tx.SaveTeam(ctx, t)
	})
}
