package db

import (
	"context"
	"fmt"
	"taskflow/src/models/scopes"
	"taskflow/src/services"
	"taskflow/src/types"

	"gorm.io/gorm"
)

// membershipQuery selects active memberships whose scope, and for projects the
// owning organization, is active too.
func (s *Store) membershipQuery(ctx context.Context, scope types.ScopeType, scopeID uint) (*gorm.DB, error) {
	q := s.conn(ctx)
	switch scope {
	case types.SCOPE_ORGANIZATION:
		return q.Table("organization_members AS m").
			Select("m.organization_id AS scope_id, m.user_id, m.role, m.joined_at").
			Joins("JOIN organizations ON organizations.id = m.organization_id").
			Scopes(scopes.ActiveIn("m"), scopes.ActiveIn("organizations")).
			Where("m.organization_id = ?", scopeID), nil
	case types.SCOPE_PROJECT:
		return q.Table("project_members AS m").
			Select("m.project_id AS scope_id, m.user_id, m.role, m.joined_at").
			Joins("JOIN projects ON projects.id = m.project_id").
			Joins("JOIN organizations ON organizations.id = projects.organization_id").
			Scopes(scopes.ActiveIn("m"), scopes.ActiveIn("projects"), scopes.ActiveIn("organizations")).
			Where("m.project_id = ?", scopeID), nil
	}
	return nil, fmt.Errorf("unknown scope %q", scope)
}

func (s *Store) GetMembership(ctx context.Context, scope types.ScopeType, scopeID uint, userID string) (*services.Membership, error) {
	q, err := s.membershipQuery(ctx, scope, scopeID)
	if err != nil {
		return nil, err
	}
	var rows []services.Membership
	if err := q.Where("m.user_id = ?", userID).Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	m := rows[0]
	m.Scope = scope
	return &m, nil
}

func (s *Store) ListMemberships(ctx context.Context, scope types.ScopeType, scopeID uint) ([]services.Membership, error) {
	q, err := s.membershipQuery(ctx, scope, scopeID)
	if err != nil {
		return nil, err
	}
	var rows []services.Membership
	if err := q.Order("m.joined_at asc").Scan(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].Scope = scope
	}
	return rows, nil
}
