package services_test

import (
	"taskflow/src/services"
	"taskflow/src/types"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetRoleNoMembership(t *testing.T) {
	f := newFixture(t, nil)
	a := f.user(t, "alice")
	org := f.org(t, a, "Acme")

	role, err := f.svc.Resolver.GetRole(f.ctx, types.SCOPE_ORGANIZATION, org.ID, "nobody")
	require.NoError(t, err)
	assert.Equal(t, types.NO_ROLE, role)

	role, err = f.svc.Resolver.GetRole(f.ctx, types.SCOPE_ORGANIZATION, 999, a)
	require.NoError(t, err)
	assert.Equal(t, types.NO_ROLE, role)
}

func TestGetRoleCachesNegativeLookups(t *testing.T) {
	cache := newMemCache()
	f := newFixture(t, cache)
	a := f.user(t, "alice")
	b := f.user(t, "bob")
	org := f.org(t, a, "Acme")

	role, err := f.svc.Resolver.GetRole(f.ctx, types.SCOPE_ORGANIZATION, org.ID, b)
	require.NoError(t, err)
	assert.Equal(t, types.NO_ROLE, role)
	assert.Equal(t, "-", cache.vals["role:organization:1:"+b])

	// adding b invalidates the negative entry
	f.addOrgMember(t, a, org.ID, b, types.ORG_MEMBER)
	role, err = f.svc.Resolver.GetRole(f.ctx, types.SCOPE_ORGANIZATION, org.ID, b)
	require.NoError(t, err)
	assert.Equal(t, string(types.ORG_MEMBER), role)
}

func TestRoleChangeInvalidatesCache(t *testing.T) {
	f := newFixture(t, newMemCache())
	a := f.user(t, "alice")
	b := f.user(t, "bob")
	org := f.org(t, a, "Acme")
	f.addOrgMember(t, a, org.ID, b, types.ORG_ADMIN)

	role, err := f.svc.Resolver.GetRole(f.ctx, types.SCOPE_ORGANIZATION, org.ID, b)
	require.NoError(t, err)
	assert.Equal(t, string(types.ORG_ADMIN), role)

	_, err = f.svc.Organizations.UpdateMemberRole(f.ctx, a, org.ID, b, &types.UpdateOrganizationMemberRoleRequestBody{Role: string(types.ORG_MEMBER)})
	require.NoError(t, err)

	role, err = f.svc.Resolver.GetRole(f.ctx, types.SCOPE_ORGANIZATION, org.ID, b)
	require.NoError(t, err)
	assert.Equal(t, string(types.ORG_MEMBER), role)
}

func TestStaleCachedRoleNeverWidensMutations(t *testing.T) {
	f := newFixture(t, newMemCache())
	a := f.user(t, "alice")
	b := f.user(t, "bob")
	org := f.org(t, a, "Acme")
	f.addOrgMember(t, a, org.ID, b, types.ORG_ADMIN)

	_, err := f.svc.Organizations.Get(f.ctx, b, org.ID)
	require.NoError(t, err)

	// demote b behind the resolver's back so the cached Admin entry goes stale
	m, err := f.store.GetOrgMember(f.ctx, org.ID, b)
	require.NoError(t, err)
	m.Role = types.ORG_MEMBER
	require.NoError(t, f.store.SaveOrgMember(f.ctx, m))

	role, err := f.svc.Resolver.GetRole(f.ctx, types.SCOPE_ORGANIZATION, org.ID, b)
	require.NoError(t, err)
	assert.Equal(t, string(types.ORG_ADMIN), role)

	name := "Hijacked"
	_, err = f.svc.Organizations.Update(f.ctx, b, org.ID, &types.UpdateOrganizationRequestBody{Name: &name})
	assert.ErrorIs(t, err, services.ErrForbidden)

	stored, err := f.store.GetOrganization(f.ctx, org.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", stored.Name)
}

func TestInactiveProjectYieldsNoRole(t *testing.T) {
	f := newFixture(t, newMemCache())
	a := f.user(t, "alice")
	org := f.org(t, a, "Acme")
	p := f.project(t, a, org.ID, "Launch")

	ok, err := f.svc.Resolver.IsMember(f.ctx, types.SCOPE_PROJECT, p.ID, a)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, f.svc.Projects.Delete(f.ctx, a, p.ID))

	ok, err = f.svc.Resolver.IsMember(f.ctx, types.SCOPE_PROJECT, p.ID, a)
	require.NoError(t, err)
	assert.False(t, ok)
	role, err := f.svc.Resolver.GetRole(f.ctx, types.SCOPE_PROJECT, p.ID, a)
	require.NoError(t, err)
	assert.Equal(t, types.NO_ROLE, role)
}

func TestStoredRoleOutsideEnumIsInvalid(t *testing.T) {
	f := newFixture(t, nil)
	a := f.user(t, "alice")
	org := f.org(t, a, "Acme")

	m, err := f.store.GetOrgMember(f.ctx, org.ID, a)
	require.NoError(t, err)
	m.Role = "Emperor"
	require.NoError(t, f.store.SaveOrgMember(f.ctx, m))

	_, err = f.svc.Resolver.OrgRole(f.ctx, f.store, services.STRICT, org.ID, a)
	assert.ErrorIs(t, err, services.ErrInvalid)
}
