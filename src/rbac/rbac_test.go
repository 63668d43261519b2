package rbac

import (
	"taskflow/src/types"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateOrgMatrix(t *testing.T) {
	expected := map[OrgAction]map[types.OrgRole]bool{
		ORG_READ:           {types.ORG_OWNER: true, types.ORG_ADMIN: true, types.ORG_MANAGER: true, types.ORG_MEMBER: true},
		ORG_WRITE:          {types.ORG_OWNER: true, types.ORG_ADMIN: true, types.ORG_MANAGER: false, types.ORG_MEMBER: false},
		ORG_DELETE:         {types.ORG_OWNER: true, types.ORG_ADMIN: false, types.ORG_MANAGER: false, types.ORG_MEMBER: false},
		ORG_MANAGE_MEMBERS: {types.ORG_OWNER: true, types.ORG_ADMIN: true, types.ORG_MANAGER: false, types.ORG_MEMBER: false},
		ORG_MANAGE_ROLES:   {types.ORG_OWNER: true, types.ORG_ADMIN: true, types.ORG_MANAGER: false, types.ORG_MEMBER: false},
	}
	for action, roles := range expected {
		for role, want := range roles {
			d := EvaluateOrg(role, action)
			assert.Equalf(t, want, d.Allowed, "%s/%s", role, action)
			if !want {
				assert.Equal(t, INSUFFICIENT_ROLE, d.Reason)
				assert.NotEmpty(t, d.Message)
			}
		}
		d := EvaluateOrg(types.NO_ROLE, action)
		assert.False(t, d.Allowed)
		assert.Equal(t, NOT_A_MEMBER, d.Reason)
	}
}

func TestEvaluateOrgUnknownAction(t *testing.T) {
	d := EvaluateOrg(types.ORG_OWNER, OrgAction("launch"))
	assert.False(t, d.Allowed)
	assert.Equal(t, INSUFFICIENT_ROLE, d.Reason)
}

func TestEvaluateProjectMatrix(t *testing.T) {
	projectRoles := []types.ProjectRole{types.PROJECT_MANAGER, types.PROJECT_CONTRIBUTOR, types.PROJECT_VIEWER}
	byProjectRole := map[ProjectAction][]types.ProjectRole{
		PROJECT_READ:            {types.PROJECT_MANAGER, types.PROJECT_CONTRIBUTOR, types.PROJECT_VIEWER},
		PROJECT_UPDATE:          {types.PROJECT_MANAGER},
		PROJECT_DELETE:          {types.PROJECT_MANAGER},
		PROJECT_MANAGE_MEMBERS:  {types.PROJECT_MANAGER},
		PROJECT_MANAGE_WORKFLOW: {types.PROJECT_MANAGER},
		PROJECT_EDIT_TASKS:      {types.PROJECT_MANAGER, types.PROJECT_CONTRIBUTOR},
		PROJECT_COMMENT:         {types.PROJECT_MANAGER, types.PROJECT_CONTRIBUTOR, types.PROJECT_VIEWER},
	}
	for action, allowed := range byProjectRole {
		for _, role := range projectRoles {
			want := false
			for _, a := range allowed {
				if a == role {
					want = true
				}
			}
			d := EvaluateProject(role, types.ORG_MEMBER, action)
			assert.Equalf(t, want, d.Allowed, "%s/%s", role, action)
			if !want {
				assert.Equal(t, INSUFFICIENT_ROLE, d.Reason)
			}
		}
	}
}

func TestEvaluateProjectOrgBypass(t *testing.T) {
	cases := []struct {
		orgRole types.OrgRole
		action  ProjectAction
		allowed bool
	}{
		{types.ORG_OWNER, PROJECT_UPDATE, true},
		{types.ORG_ADMIN, PROJECT_UPDATE, true},
		{types.ORG_MANAGER, PROJECT_UPDATE, false},
		{types.ORG_MEMBER, PROJECT_UPDATE, false},
		{types.ORG_OWNER, PROJECT_DELETE, true},
		{types.ORG_ADMIN, PROJECT_DELETE, false},
		{types.ORG_OWNER, PROJECT_MANAGE_MEMBERS, true},
		{types.ORG_ADMIN, PROJECT_MANAGE_MEMBERS, true},
		{types.ORG_MANAGER, PROJECT_MANAGE_MEMBERS, false},
		{types.ORG_ADMIN, PROJECT_MANAGE_WORKFLOW, true},
		// organization roles do not grant project membership
		{types.ORG_OWNER, PROJECT_READ, false},
		{types.ORG_OWNER, PROJECT_EDIT_TASKS, false},
		{types.ORG_ADMIN, PROJECT_COMMENT, false},
	}
	for _, c := range cases {
		d := EvaluateProject(types.NO_ROLE, c.orgRole, c.action)
		assert.Equalf(t, c.allowed, d.Allowed, "%s/%s", c.orgRole, c.action)
		if !c.allowed {
			assert.Equal(t, NOT_A_MEMBER, d.Reason)
		}
	}
}

func TestEvaluateProjectViewerWithOrgAdmin(t *testing.T) {
	d := EvaluateProject(types.PROJECT_VIEWER, types.ORG_ADMIN, PROJECT_UPDATE)
	assert.True(t, d.Allowed)

	d = EvaluateProject(types.PROJECT_VIEWER, types.ORG_ADMIN, PROJECT_DELETE)
	assert.False(t, d.Allowed)
	assert.Equal(t, INSUFFICIENT_ROLE, d.Reason)
}

func TestEvaluateProjectNoRoles(t *testing.T) {
	d := EvaluateProject(types.NO_ROLE, types.NO_ROLE, PROJECT_READ)
	assert.False(t, d.Allowed)
	assert.Equal(t, NOT_A_MEMBER, d.Reason)
}

func TestEvaluateOrgMemberAdd(t *testing.T) {
	assert.True(t, EvaluateOrgMemberAdd(types.ORG_OWNER, types.ORG_OWNER).Allowed)
	assert.True(t, EvaluateOrgMemberAdd(types.ORG_ADMIN, types.ORG_ADMIN).Allowed)
	assert.True(t, EvaluateOrgMemberAdd(types.ORG_ADMIN, types.ORG_MEMBER).Allowed)

	d := EvaluateOrgMemberAdd(types.ORG_ADMIN, types.ORG_OWNER)
	assert.False(t, d.Allowed)
	assert.Equal(t, INSUFFICIENT_ROLE, d.Reason)

	d = EvaluateOrgMemberAdd(types.ORG_MEMBER, types.ORG_MEMBER)
	assert.Equal(t, INSUFFICIENT_ROLE, d.Reason)

	d = EvaluateOrgMemberAdd(types.NO_ROLE, types.ORG_MEMBER)
	assert.Equal(t, NOT_A_MEMBER, d.Reason)
}

func TestEvaluateOrgRoleChange(t *testing.T) {
	cases := []struct {
		name      string
		actor     string
		actorRole types.OrgRole
		target    string
		current   types.OrgRole
		next      types.OrgRole
		reason    DenyReason
	}{
		{"owner promotes member", "a", types.ORG_OWNER, "b", types.ORG_MEMBER, types.ORG_ADMIN, NONE},
		{"owner demotes another owner", "a", types.ORG_OWNER, "b", types.ORG_OWNER, types.ORG_ADMIN, NONE},
		{"owner grants owner", "a", types.ORG_OWNER, "b", types.ORG_ADMIN, types.ORG_OWNER, NONE},
		{"owner self demotion", "a", types.ORG_OWNER, "a", types.ORG_OWNER, types.ORG_ADMIN, SELF_PROTECTION},
		{"owner keeps own role", "a", types.ORG_OWNER, "a", types.ORG_OWNER, types.ORG_OWNER, NONE},
		{"admin changes member", "a", types.ORG_ADMIN, "b", types.ORG_MEMBER, types.ORG_MANAGER, NONE},
		{"admin alters owner", "a", types.ORG_ADMIN, "b", types.ORG_OWNER, types.ORG_MEMBER, INSUFFICIENT_ROLE},
		{"admin grants owner", "a", types.ORG_ADMIN, "b", types.ORG_MEMBER, types.ORG_OWNER, INSUFFICIENT_ROLE},
		{"admin self promotion", "a", types.ORG_ADMIN, "a", types.ORG_ADMIN, types.ORG_OWNER, INSUFFICIENT_ROLE},
		{"manager changes member", "a", types.ORG_MANAGER, "b", types.ORG_MEMBER, types.ORG_ADMIN, INSUFFICIENT_ROLE},
		{"member changes member", "a", types.ORG_MEMBER, "b", types.ORG_MEMBER, types.ORG_ADMIN, INSUFFICIENT_ROLE},
		{"outsider", "a", types.NO_ROLE, "b", types.ORG_MEMBER, types.ORG_ADMIN, NOT_A_MEMBER},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			d := EvaluateOrgRoleChange(c.actor, c.actorRole, c.target, c.current, c.next)
			assert.Equal(t, c.reason == NONE, d.Allowed)
			assert.Equal(t, c.reason, d.Reason)
		})
	}
}

func TestEvaluateOrgMemberRemoval(t *testing.T) {
	cases := []struct {
		name       string
		actor      string
		actorRole  types.OrgRole
		target     string
		targetRole types.OrgRole
		reason     DenyReason
	}{
		{"owner removes member", "a", types.ORG_OWNER, "b", types.ORG_MEMBER, NONE},
		{"owner removes other owner", "a", types.ORG_OWNER, "b", types.ORG_OWNER, NONE},
		{"owner removes self", "a", types.ORG_OWNER, "a", types.ORG_OWNER, SELF_PROTECTION},
		{"admin removes member", "a", types.ORG_ADMIN, "b", types.ORG_MEMBER, NONE},
		{"admin removes owner", "a", types.ORG_ADMIN, "b", types.ORG_OWNER, INSUFFICIENT_ROLE},
		{"admin removes self", "a", types.ORG_ADMIN, "a", types.ORG_ADMIN, NONE},
		{"manager removes member", "a", types.ORG_MANAGER, "b", types.ORG_MEMBER, INSUFFICIENT_ROLE},
		{"member removes self", "a", types.ORG_MEMBER, "a", types.ORG_MEMBER, INSUFFICIENT_ROLE},
		{"outsider", "a", types.NO_ROLE, "b", types.ORG_MEMBER, NOT_A_MEMBER},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			d := EvaluateOrgMemberRemoval(c.actor, c.actorRole, c.target, c.targetRole)
			assert.Equal(t, c.reason == NONE, d.Allowed)
			assert.Equal(t, c.reason, d.Reason)
		})
	}
}

func TestEvaluateProjectMemberAdd(t *testing.T) {
	assert.True(t, EvaluateProjectMemberAdd(types.PROJECT_MANAGER, types.ORG_MEMBER, types.ORG_MEMBER).Allowed)
	assert.True(t, EvaluateProjectMemberAdd(types.NO_ROLE, types.ORG_ADMIN, types.ORG_MEMBER).Allowed)

	d := EvaluateProjectMemberAdd(types.PROJECT_MANAGER, types.ORG_MEMBER, types.NO_ROLE)
	assert.Equal(t, INVARIANT_VIOLATION, d.Reason)

	d = EvaluateProjectMemberAdd(types.PROJECT_CONTRIBUTOR, types.ORG_MEMBER, types.ORG_MEMBER)
	assert.Equal(t, INSUFFICIENT_ROLE, d.Reason)
}

func TestEvaluateProjectMemberRemoval(t *testing.T) {
	d := EvaluateProjectMemberRemoval(types.PROJECT_MANAGER, types.ORG_MEMBER, types.PROJECT_MANAGER, 1)
	assert.False(t, d.Allowed)
	assert.Equal(t, INVARIANT_VIOLATION, d.Reason)

	// org owners cannot bypass the invariant either
	d = EvaluateProjectMemberRemoval(types.NO_ROLE, types.ORG_OWNER, types.PROJECT_MANAGER, 1)
	assert.Equal(t, INVARIANT_VIOLATION, d.Reason)

	assert.True(t, EvaluateProjectMemberRemoval(types.PROJECT_MANAGER, types.ORG_MEMBER, types.PROJECT_MANAGER, 2).Allowed)
	assert.True(t, EvaluateProjectMemberRemoval(types.PROJECT_MANAGER, types.ORG_MEMBER, types.PROJECT_VIEWER, 1).Allowed)

	d = EvaluateProjectMemberRemoval(types.PROJECT_VIEWER, types.ORG_MEMBER, types.PROJECT_CONTRIBUTOR, 1)
	assert.Equal(t, INSUFFICIENT_ROLE, d.Reason)
}

func TestEvaluateProjectRoleChange(t *testing.T) {
	d := EvaluateProjectRoleChange(types.PROJECT_MANAGER, types.ORG_MEMBER, types.PROJECT_MANAGER, types.PROJECT_VIEWER, 1)
	assert.Equal(t, INVARIANT_VIOLATION, d.Reason)

	assert.True(t, EvaluateProjectRoleChange(types.PROJECT_MANAGER, types.ORG_MEMBER, types.PROJECT_MANAGER, types.PROJECT_VIEWER, 2).Allowed)
	assert.True(t, EvaluateProjectRoleChange(types.PROJECT_MANAGER, types.ORG_MEMBER, types.PROJECT_VIEWER, types.PROJECT_MANAGER, 1).Allowed)
	assert.True(t, EvaluateProjectRoleChange(types.PROJECT_MANAGER, types.ORG_MEMBER, types.PROJECT_MANAGER, types.PROJECT_MANAGER, 1).Allowed)
}
