package services

import (
	"context"
	"fmt"
	"log"
	"taskflow/src/models"
	"taskflow/src/rbac"
	"taskflow/src/types"
	"time"
)

// noRoleMarker caches a negative lookup.
const noRoleMarker = "-"

// Resolver answers "what role does this user hold in this scope". Only active
// memberships of active organizations and projects count.
type Resolver struct {
	store Store
	cache Cache
	ttl   time.Duration
}

func NewResolver(store Store, cache Cache, ttl time.Duration) *Resolver {
	return &Resolver{store: store, cache: cache, ttl: ttl}
}

func roleKey(scope types.ScopeType, scopeID uint, userID string) string {
	return fmt.Sprintf("role:%s:%d:%s", scope, scopeID, userID)
}

// IsMember always reads through to the store.
func (r *Resolver) IsMember(ctx context.Context, scope types.ScopeType, scopeID uint, userID string) (bool, error) {
	m, err := r.store.GetMembership(ctx, scope, scopeID, userID)
	if err != nil {
		return false, err
	}
	return m != nil, nil
}

// GetRole returns types.NO_ROLE when the user has no active membership. It may be
// served from the cache and must not back a mutation; use StrictRole for that.
func (r *Resolver) GetRole(ctx context.Context, scope types.ScopeType, scopeID uint, userID string) (string, error) {
	key := roleKey(scope, scopeID, userID)
	if r.cache != nil {
		val, ok, err := r.cache.Get(ctx, key)
		if err != nil {
			log.Printf("[resolver] cache read %s failed: %s\n", key, err.Error())
		} else if ok {
			if val == noRoleMarker {
				return types.NO_ROLE, nil
			}
			return val, nil
		}
	}
	role, err := r.StrictRole(ctx, r.store, scope, scopeID, userID)
	if err != nil {
		return types.NO_ROLE, err
	}
	if r.cache != nil {
		val := role
		if val == types.NO_ROLE {
			val = noRoleMarker
		}
		if err := r.cache.Set(ctx, key, val, r.ttl); err != nil {
			log.Printf("[resolver] cache write %s failed: %s\n", key, err.Error())
		}
	}
	return role, nil
}

// StrictRole resolves against st, which may be a transaction, bypassing the cache.
func (r *Resolver) StrictRole(ctx context.Context, st MembershipStore, scope types.ScopeType, scopeID uint, userID string) (string, error) {
	m, err := st.GetMembership(ctx, scope, scopeID, userID)
	if err != nil {
		return types.NO_ROLE, fmt.Errorf("resolving %s role: %w", scope, err)
	}
	if m == nil {
		return types.NO_ROLE, nil
	}
	return m.Role, nil
}

// Invalidate drops cached roles for the given users in one scope.
func (r *Resolver) Invalidate(ctx context.Context, scope types.ScopeType, scopeID uint, userIDs ...string) {
	if r.cache == nil || len(userIDs) == 0 {
		return
	}
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, roleKey(scope, scopeID, id))
	}
	if err := r.cache.Delete(ctx, keys...); err != nil {
		log.Printf("[resolver] cache invalidation failed: %s\n", err.Error())
	}
}

// Consistency selects between the cached read path and a store read.
type Consistency int

const (
	CACHED Consistency = iota
	STRICT
)

func (r *Resolver) lookup(ctx context.Context, st Store, c Consistency, scope types.ScopeType, scopeID uint, userID string) (string, error) {
	if c == STRICT {
		return r.StrictRole(ctx, st, scope, scopeID, userID)
	}
	return r.GetRole(ctx, scope, scopeID, userID)
}

// OrgRole resolves and parses an organization role. A stored role outside the enum is Invalid.
func (r *Resolver) OrgRole(ctx context.Context, st Store, c Consistency, orgID uint, userID string) (types.OrgRole, error) {
	raw, err := r.lookup(ctx, st, c, types.SCOPE_ORGANIZATION, orgID, userID)
	if err != nil || raw == types.NO_ROLE {
		return types.NO_ROLE, err
	}
	role, err := types.ParseOrgRole(raw)
	if err != nil {
		return types.NO_ROLE, Invalid("%s", err.Error())
	}
	return role, nil
}

func (r *Resolver) ProjectRole(ctx context.Context, st Store, c Consistency, projectID uint, userID string) (types.ProjectRole, error) {
	raw, err := r.lookup(ctx, st, c, types.SCOPE_PROJECT, projectID, userID)
	if err != nil || raw == types.NO_ROLE {
		return types.NO_ROLE, err
	}
	role, err := types.ParseProjectRole(raw)
	if err != nil {
		return types.NO_ROLE, Invalid("%s", err.Error())
	}
	return role, nil
}

// AuthorizeOrg resolves the caller's organization role and evaluates action against it.
func (r *Resolver) AuthorizeOrg(ctx context.Context, st Store, c Consistency, orgID uint, userID string, action rbac.OrgAction) (types.OrgRole, error) {
	role, err := r.OrgRole(ctx, st, c, orgID, userID)
	if err != nil {
		return role, err
	}
	return role, check(rbac.EvaluateOrg(role, action))
}

// ProjectAccess is the caller's resolved standing in a project.
type ProjectAccess struct {
	Project     *models.Project
	ProjectRole types.ProjectRole
	OrgRole     types.OrgRole
}

// ResolveProject loads the project and both of the caller's roles without evaluating anything.
func (r *Resolver) ResolveProject(ctx context.Context, st Store, c Consistency, projectID uint, userID string) (*ProjectAccess, error) {
	project, err := st.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	pr, err := r.ProjectRole(ctx, st, c, projectID, userID)
	if err != nil {
		return nil, err
	}
	orgRole, err := r.OrgRole(ctx, st, c, project.OrganizationID, userID)
	if err != nil {
		return nil, err
	}
	return &ProjectAccess{Project: project, ProjectRole: pr, OrgRole: orgRole}, nil
}

// AuthorizeProject resolves the caller's standing and evaluates action against it.
func (r *Resolver) AuthorizeProject(ctx context.Context, st Store, c Consistency, projectID uint, userID string, action rbac.ProjectAction) (*ProjectAccess, error) {
	access, err := r.ResolveProject(ctx, st, c, projectID, userID)
	if err != nil {
		return nil, err
	}
	if err := check(rbac.EvaluateProject(access.ProjectRole, access.OrgRole, action)); err != nil {
		return nil, err
	}
	return access, nil
}
