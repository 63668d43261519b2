package db

import (
	"context"
	"taskflow/src/models"
	"taskflow/src/models/scopes"
)

func (s *Store) CreateOrganization(ctx context.Context, org *models.Organization) error {
	return s.conn(ctx).Create(org).Error
}

func (s *Store) GetOrganization(ctx context.Context, id uint) (*models.Organization, error) {
	var org models.Organization
	if err := s.conn(ctx).Scopes(scopes.WithID(id), scopes.Active).First(&org).Error; err != nil {
		return nil, notFound(err, "organization")
	}
	return &org, nil
}

func (s *Store) SaveOrganization(ctx context.Context, org *models.Organization) error {
	return s.conn(ctx).Save(org).Error
}

func (s *Store) ListOrganizationsForUser(ctx context.Context, userID string) ([]models.Organization, error) {
	orgs := make([]models.Organization, 0)
	err := s.conn(ctx).
		Model(&models.Organization{}).
		Joins("JOIN organization_members ON organization_members.organization_id = organizations.id").
		Scopes(scopes.ActiveIn("organizations"), scopes.ActiveIn("organization_members")).
		Where("organization_members.user_id = ?", userID).
		Order("organizations.created_at desc").
		Find(&orgs).
		Error
	return orgs, err
}

func (s *Store) GetOrgMember(ctx context.Context, orgID uint, userID string) (*models.OrganizationMember, error) {
	var member models.OrganizationMember
	err := s.conn(ctx).
		Scopes(scopes.Active).
		Where("organization_id = ? AND user_id = ?", orgID, userID).
		First(&member).
		Error
	if err != nil {
		return nil, notFound(err, "organization member")
	}
	return &member, nil
}

func (s *Store) SaveOrgMember(ctx context.Context, member *models.OrganizationMember) error {
	return s.conn(ctx).Save(member).Error
}

func (s *Store) ListOrgMembers(ctx context.Context, orgID uint) ([]models.OrganizationMember, error) {
	members := make([]models.OrganizationMember, 0)
	err := s.conn(ctx).
		Scopes(scopes.Active).
		Where("organization_id = ?", orgID).
		Order("joined_at asc").
		Find(&members).
		Error
	return members, err
}

func (s *Store) CreateTeam(ctx context.Context, team *models.Team) error {
	return s.conn(ctx).Create(team).Error
}

func (s *Store) GetTeam(ctx context.Context, id uint) (*models.Team, error) {
	var team models.Team
	if err := s.conn(ctx).Scopes(scopes.WithID(id), scopes.Active).First(&team).Error; err != nil {
		return nil, notFound(err, "team")
	}
	return &team, nil
}

func (s *Store) SaveTeam(ctx context.Context, team *models.Team) error {
	return s.conn(ctx).Save(team).Error
}

func (s *Store) ListTeams(ctx context.Context, orgID uint) ([]models.Team, error) {
	teams := make([]models.Team, 0)
	err := s.conn(ctx).
		Scopes(scopes.Active).
		Where("organization_id = ?", orgID).
		Order("name asc").
		Find(&teams).
		Error
	return teams, err
}

func (s *Store) AppendTrail(ctx context.Context, entry *models.TrailLog) error {
	return s.conn(ctx).Create(entry).Error
}
