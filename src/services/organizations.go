package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"taskflow/src/models"
	"taskflow/src/rbac"
	"taskflow/src/types"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

type OrganizationService struct {
	store    Store
	resolver *Resolver
	now      func() time.Time
}

type OrganizationSummary struct {
	models.Organization
	Role        types.OrgRole `json:"role"`
	MemberCount int           `json:"member_count"`
}

func trailGroup(scope types.ScopeType, id uint) string {
	return fmt.Sprintf("%s:%d", scope, id)
}

func appendTrail(ctx context.Context, tx Store, kind string, initiator string, scope types.ScopeType, scopeID uint, subject string, detail types.JSONB) error {
	return tx.AppendTrail(ctx, &models.TrailLog{
		ID:        uuid.New(),
		Type:      kind,
		Initiator: initiator,
		Group:     trailGroup(scope, scopeID),
		Subject:   subject,
		Detail:    detail,
	})
}

// Create makes userID the Owner of a new organization on the Free plan.
func (s *OrganizationService) Create(ctx context.Context, userID string, body *types.CreateOrganizationRequestBody) (*models.Organization, error) {
	name := strings.TrimSpace(body.Name)
	if name == "" {
		return nil, Invalid("organization name is required")
	}
	org := models.Organization{
		Name:        name,
		Description: body.Description,
		Website:     body.Website,
		Plan:        types.PLAN_FREE,
		IsActive:    true,
		CreatedBy:   userID,
		Slug:        uuid.NewString(),
	}
	err := s.store.Transaction(ctx, func(tx Store) error {
		if _, err := tx.GetUser(ctx, userID); err != nil {
			return err
		}
		if err := tx.CreateOrganization(ctx, &org); err != nil {
			return err
		}
		org.Slug = fmt.Sprintf("%s-%d", slug.Make(org.Name), org.ID)
		if err := tx.SaveOrganization(ctx, &org); err != nil {
			return err
		}
		owner := models.OrganizationMember{
			OrganizationID: org.ID,
			UserID:         userID,
			Role:           types.ORG_OWNER,
			IsActive:       true,
			JoinedAt:       s.now(),
		}
		if err := tx.SaveOrgMember(ctx, &owner); err != nil {
			return err
		}
		return appendTrail(ctx, tx, models.TRAIL_MEMBER_ADDED, userID, types.SCOPE_ORGANIZATION, org.ID, userID, types.JSONB{"role": string(types.ORG_OWNER)})
	})
	if err != nil {
		return nil, err
	}
	s.resolver.Invalidate(ctx, types.SCOPE_ORGANIZATION, org.ID, userID)
	log.Printf("[organizations] Organization %d created by %s\n", org.ID, userID)
	return &org, nil
}

func (s *OrganizationService) Get(ctx context.Context, userID string, orgID uint) (*OrganizationSummary, error) {
	role, err := s.resolver.AuthorizeOrg(ctx, s.store, CACHED, orgID, userID, rbac.ORG_READ)
	if err != nil {
		return nil, err
	}
	org, err := s.store.GetOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}
	members, err := s.store.ListMemberships(ctx, types.SCOPE_ORGANIZATION, orgID)
	if err != nil {
		return nil, err
	}
	return &OrganizationSummary{Organization: *org, Role: role, MemberCount: len(members)}, nil
}

func (s *OrganizationService) ListForUser(ctx context.Context, userID string) ([]OrganizationSummary, error) {
	orgs, err := s.store.ListOrganizationsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	result := make([]OrganizationSummary, 0, len(orgs))
	for _, org := range orgs {
		role, err := s.resolver.OrgRole(ctx, s.store, CACHED, org.ID, userID)
		if err != nil {
			return nil, err
		}
		members, err := s.store.ListMemberships(ctx, types.SCOPE_ORGANIZATION, org.ID)
		if err != nil {
			return nil, err
		}
		result = append(result, OrganizationSummary{Organization: org, Role: role, MemberCount: len(members)})
	}
	return result, nil
}

func (s *OrganizationService) Update(ctx context.Context, userID string, orgID uint, body *types.UpdateOrganizationRequestBody) (*models.Organization, error) {
	var org *models.Organization
	err := s.store.Transaction(ctx, func(tx Store) error {
		if _, err := s.resolver.AuthorizeOrg(ctx, tx, STRICT, orgID, userID, rbac.ORG_WRITE); err != nil {
			return err
		}
		o, err := tx.GetOrganization(ctx, orgID)
		if err != nil {
			return err
		}
		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return Invalid("organization name is required")
			}
			o.Name = name
		}
		if body.Description != nil {
			o.Description = *body.Description
		}
		if body.Website != nil {
			o.Website = *body.Website
		}
		if body.LogoURL != nil {
			o.LogoURL = *body.LogoURL
		}
		org = o
		return tx.SaveOrganization(ctx, o)
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[organizations] Organization %d updated by %s\n", orgID, userID)
	return org, nil
}

// Delete deactivates the organization. Every member loses access immediately.
func (s *OrganizationService) Delete(ctx context.Context, userID string, orgID uint) error {
	var memberIDs []string
	err := s.store.Transaction(ctx, func(tx Store) error {
		if _, err := s.resolver.AuthorizeOrg(ctx, tx, STRICT, orgID, userID, rbac.ORG_DELETE); err != nil {
			return err
		}
		org, err := tx.GetOrganization(ctx, orgID)
		if err != nil {
			return err
		}
		members, err := tx.ListOrgMembers(ctx, orgID)
		if err != nil {
			return err
		}
		for _, m := range members {
			memberIDs = append(memberIDs, m.UserID)
		}
		org.IsActive = false
		return tx.SaveOrganization(ctx, org)
	})
	if err != nil {
		return err
	}
	s.resolver.Invalidate(ctx, types.SCOPE_ORGANIZATION, orgID, memberIDs...)
	log.Printf("[organizations] Organization %d deactivated by %s\n", orgID, userID)
	return nil
}

func (s *OrganizationService) ListMembers(ctx context.Context, userID string, orgID uint) ([]models.OrganizationMember, error) {
	if _, err := s.resolver.AuthorizeOrg(ctx, s.store, CACHED, orgID, userID, rbac.ORG_READ); err != nil {
		return nil, err
	}
	return s.store.ListOrgMembers(ctx, orgID)
}

func (s *OrganizationService) AddMember(ctx context.Context, userID string, orgID uint, body *types.AddOrganizationMemberRequestBody) (*models.OrganizationMember, error) {
	role, err := types.ParseOrgRole(body.Role)
	if err != nil {
		return nil, Invalid("%s", err.Error())
	}
	member := models.OrganizationMember{
		OrganizationID: orgID,
		UserID:         body.UserID,
		Role:           role,
		IsActive:       true,
		JoinedAt:       s.now(),
		InvitedBy:      &userID,
	}
	err = s.store.Transaction(ctx, func(tx Store) error {
		actorRole, err := s.resolver.OrgRole(ctx, tx, STRICT, orgID, userID)
		if err != nil {
			return err
		}
		if err := check(rbac.EvaluateOrgMemberAdd(actorRole, role)); err != nil {
			return err
		}
		if _, err := tx.GetUser(ctx, body.UserID); err != nil {
			return err
		}
		existing, err := tx.GetMembership(ctx, types.SCOPE_ORGANIZATION, orgID, body.UserID)
		if err != nil {
			return err
		}
		if existing != nil {
			return Conflict("user is already a member of this organization")
		}
		if err := tx.SaveOrgMember(ctx, &member); err != nil {
			return err
		}
		return appendTrail(ctx, tx, models.TRAIL_MEMBER_ADDED, userID, types.SCOPE_ORGANIZATION, orgID, body.UserID, types.JSONB{"role": string(role)})
	})
	if err != nil {
		return nil, err
	}
	s.resolver.Invalidate(ctx, types.SCOPE_ORGANIZATION, orgID, body.UserID)
	log.Printf("[organizations] %s added to organization %d as %s\n", body.UserID, orgID, role)
	return &member, nil
}

func (s *OrganizationService) UpdateMemberRole(ctx context.Context, userID string, orgID uint, targetID string, body *types.UpdateOrganizationMemberRoleRequestBody) (*models.OrganizationMember, error) {
	next, err := types.ParseOrgRole(body.Role)
	if err != nil {
		return nil, Invalid("%s", err.Error())
	}
	var member *models.OrganizationMember
	err = s.store.Transaction(ctx, func(tx Store) error {
		actorRole, err := s.resolver.OrgRole(ctx, tx, STRICT, orgID, userID)
		if err != nil {
			return err
		}
		if actorRole == types.NO_ROLE {
			return check(rbac.EvaluateOrg(actorRole, rbac.ORG_MANAGE_ROLES))
		}
		m, err := tx.GetOrgMember(ctx, orgID, targetID)
		if err != nil {
			return err
		}
		if err := check(rbac.EvaluateOrgRoleChange(userID, actorRole, targetID, m.Role, next)); err != nil {
			return err
		}
		previous := m.Role
		m.Role = next
		member = m
		if err := tx.SaveOrgMember(ctx, m); err != nil {
			return err
		}
		return appendTrail(ctx, tx, models.TRAIL_ROLE_CHANGED, userID, types.SCOPE_ORGANIZATION, orgID, targetID, types.JSONB{"from": string(previous), "to": string(next)})
	})
	if err != nil {
		return nil, err
	}
	s.resolver.Invalidate(ctx, types.SCOPE_ORGANIZATION, orgID, targetID)
	log.Printf("[organizations] %s is now %s in organization %d\n", targetID, next, orgID)
	return member, nil
}

// RemoveMember deactivates the membership. Project memberships are left untouched.
func (s *OrganizationService) RemoveMember(ctx context.Context, userID string, orgID uint, targetID string) error {
	err := s.store.Transaction(ctx, func(tx Store) error {
		actorRole, err := s.resolver.OrgRole(ctx, tx, STRICT, orgID, userID)
		if err != nil {
			return err
		}
		if actorRole == types.NO_ROLE {
			return check(rbac.EvaluateOrg(actorRole, rbac.ORG_MANAGE_MEMBERS))
		}
		m, err := tx.GetOrgMember(ctx, orgID, targetID)
		if err != nil {
			return err
		}
		if err := check(rbac.EvaluateOrgMemberRemoval(userID, actorRole, targetID, m.Role)); err != nil {
			return err
		}
		m.IsActive = false
		if err := tx.SaveOrgMember(ctx, m); err != nil {
			return err
		}
		return appendTrail(ctx, tx, models.TRAIL_MEMBER_REMOVED, userID, types.SCOPE_ORGANIZATION, orgID, targetID, types.JSONB{"role": string(m.Role)})
	})
	if err != nil {
		return err
	}
	s.resolver.Invalidate(ctx, types.SCOPE_ORGANIZATION, orgID, targetID)
	log.Printf("[organizations] %s removed from organization %d by %s\n", targetID, orgID, userID)
	return nil
}

// HasPermission reports whether userID may perform action, without raising an error for a denial.
func (s *OrganizationService) HasPermission(ctx context.Context, userID string, orgID uint, action rbac.OrgAction) (rbac.Decision, error) {
	role, err := s.resolver.OrgRole(ctx, s.store, CACHED, orgID, userID)
	if err != nil {
		return rbac.Decision{}, err
	}
	return rbac.EvaluateOrg(role, action), nil
}
