// Package rbac decides whether a resolved role may perform an action.
// Nothing here performs I/O: callers supply every role fact.
package rbac

import (
	"fmt"
	"taskflow/src/types"
)

type DenyReason string

const (
	NONE                DenyReason = ""
	NOT_A_MEMBER        DenyReason = "NotAMember"
	INSUFFICIENT_ROLE   DenyReason = "InsufficientRole"
	SELF_PROTECTION     DenyReason = "SelfProtection"
	INVARIANT_VIOLATION DenyReason = "InvariantViolation"
)

type Decision struct {
	Allowed bool       `json:"allowed"`
	Reason  DenyReason `json:"reason,omitempty"`
	Message string     `json:"message,omitempty"`
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason DenyReason, format string, args ...any) Decision {
	return Decision{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

type OrgAction string

const (
	ORG_READ           OrgAction = "read"
	ORG_WRITE          OrgAction = "write"
	ORG_DELETE         OrgAction = "delete_organization"
	ORG_MANAGE_MEMBERS OrgAction = "manage_members"
	ORG_MANAGE_ROLES   OrgAction = "manage_roles"
)

type ProjectAction string

const (
	PROJECT_READ            ProjectAction = "read"
	PROJECT_UPDATE          ProjectAction = "update"
	PROJECT_DELETE          ProjectAction = "delete"
	PROJECT_MANAGE_MEMBERS  ProjectAction = "manage_members"
	PROJECT_MANAGE_WORKFLOW ProjectAction = "manage_workflow"
	PROJECT_EDIT_TASKS      ProjectAction = "edit_tasks"
	PROJECT_COMMENT         ProjectAction = "comment"
)

var allOrgRoles = map[types.OrgRole]bool{
	types.ORG_OWNER:   true,
	types.ORG_ADMIN:   true,
	types.ORG_MANAGER: true,
	types.ORG_MEMBER:  true,
}

var orgPermissions = map[OrgAction]map[types.OrgRole]bool{
	ORG_READ:           allOrgRoles,
	ORG_WRITE:          {types.ORG_OWNER: true, types.ORG_ADMIN: true},
	ORG_DELETE:         {types.ORG_OWNER: true},
	ORG_MANAGE_MEMBERS: {types.ORG_OWNER: true, types.ORG_ADMIN: true},
	ORG_MANAGE_ROLES:   {types.ORG_OWNER: true, types.ORG_ADMIN: true},
}

// projectRule grants an action to a project role, or to an organization role
// held in the project's owning organization.
type projectRule struct {
	project map[types.ProjectRole]bool
	org     map[types.OrgRole]bool
}

var allProjectRoles = map[types.ProjectRole]bool{
	types.PROJECT_MANAGER:     true,
	types.PROJECT_CONTRIBUTOR: true,
	types.PROJECT_VIEWER:      true,
}

var projectPermissions = map[ProjectAction]projectRule{
	PROJECT_READ: {project: allProjectRoles},
	PROJECT_UPDATE: {
		project: map[types.ProjectRole]bool{types.PROJECT_MANAGER: true},
		org:     map[types.OrgRole]bool{types.ORG_OWNER: true, types.ORG_ADMIN: true},
	},
	PROJECT_DELETE: {
		project: map[types.ProjectRole]bool{types.PROJECT_MANAGER: true},
		org:     map[types.OrgRole]bool{types.ORG_OWNER: true},
	},
	PROJECT_MANAGE_MEMBERS: {
		project: map[types.ProjectRole]bool{types.PROJECT_MANAGER: true},
		org:     map[types.OrgRole]bool{types.ORG_OWNER: true, types.ORG_ADMIN: true},
	},
	PROJECT_MANAGE_WORKFLOW: {
		project: map[types.ProjectRole]bool{types.PROJECT_MANAGER: true},
		org:     map[types.OrgRole]bool{types.ORG_OWNER: true, types.ORG_ADMIN: true},
	},
	PROJECT_EDIT_TASKS: {
		project: map[types.ProjectRole]bool{types.PROJECT_MANAGER: true, types.PROJECT_CONTRIBUTOR: true},
	},
	PROJECT_COMMENT: {project: allProjectRoles},
}

// EvaluateOrg checks an organization-scoped action against the caller's organization role.
func EvaluateOrg(role types.OrgRole, action OrgAction) Decision {
	if role == types.NO_ROLE {
		return deny(NOT_A_MEMBER, "not a member of this organization")
	}
	allowed, ok := orgPermissions[action]
	if !ok {
		return deny(INSUFFICIENT_ROLE, "unknown organization action %q", action)
	}
	if !allowed[role] {
		return deny(INSUFFICIENT_ROLE, "role %s cannot %s in this organization", role, action)
	}
	return allow()
}

// EvaluateProject checks a project-scoped action. orgRole is the caller's role in
// the organization that owns the project and may be NO_ROLE.
func EvaluateProject(projectRole types.ProjectRole, orgRole types.OrgRole, action ProjectAction) Decision {
	rule, ok := projectPermissions[action]
	if !ok {
		return deny(INSUFFICIENT_ROLE, "unknown project action %q", action)
	}
	if projectRole != types.NO_ROLE && rule.project[projectRole] {
		return allow()
	}
	if orgRole != types.NO_ROLE && rule.org[orgRole] {
		return allow()
	}
	if projectRole == types.NO_ROLE {
		return deny(NOT_A_MEMBER, "not a member of this project")
	}
	return deny(INSUFFICIENT_ROLE, "role %s cannot %s in this project", projectRole, action)
}

// EvaluateOrgMemberAdd checks adding a user with the given role. Only an Owner may grant Owner.
func EvaluateOrgMemberAdd(actorRole, assigned types.OrgRole) Decision {
	if d := EvaluateOrg(actorRole, ORG_MANAGE_MEMBERS); !d.Allowed {
		return d
	}
	if assigned == types.ORG_OWNER && actorRole != types.ORG_OWNER {
		return deny(INSUFFICIENT_ROLE, "only an Owner can assign the Owner role")
	}
	return allow()
}

// EvaluateOrgRoleChange checks moving target from current to next.
func EvaluateOrgRoleChange(actorID string, actorRole types.OrgRole, targetID string, current, next types.OrgRole) Decision {
	if actorID == targetID && current == types.ORG_OWNER && next != types.ORG_OWNER {
		return deny(SELF_PROTECTION, "an Owner cannot change their own role")
	}
	if d := EvaluateOrg(actorRole, ORG_MANAGE_ROLES); !d.Allowed {
		return d
	}
	if current == types.ORG_OWNER && actorRole != types.ORG_OWNER {
		return deny(INSUFFICIENT_ROLE, "only an Owner can change an Owner's role")
	}
	if next == types.ORG_OWNER && actorRole != types.ORG_OWNER {
		return deny(INSUFFICIENT_ROLE, "only an Owner can assign the Owner role")
	}
	return allow()
}

// EvaluateOrgMemberRemoval checks removing target, whose current role is targetRole.
func EvaluateOrgMemberRemoval(actorID string, actorRole types.OrgRole, targetID string, targetRole types.OrgRole) Decision {
	if actorID == targetID && targetRole == types.ORG_OWNER {
		return deny(SELF_PROTECTION, "an Owner cannot remove themselves from the organization")
	}
	if d := EvaluateOrg(actorRole, ORG_MANAGE_MEMBERS); !d.Allowed {
		return d
	}
	if targetRole == types.ORG_OWNER && actorRole != types.ORG_OWNER {
		return deny(INSUFFICIENT_ROLE, "only an Owner can remove an Owner")
	}
	return allow()
}

// EvaluateProjectMemberAdd checks adding a user whose role in the owning organization is addedOrgRole.
func EvaluateProjectMemberAdd(actorProjectRole types.ProjectRole, actorOrgRole types.OrgRole, addedOrgRole types.OrgRole) Decision {
	if d := EvaluateProject(actorProjectRole, actorOrgRole, PROJECT_MANAGE_MEMBERS); !d.Allowed {
		return d
	}
	if addedOrgRole == types.NO_ROLE {
		return deny(INVARIANT_VIOLATION, "user must be a member of the organization before joining a project")
	}
	return allow()
}

// EvaluateProjectMemberRemoval checks removing a member. activeManagers is the
// current number of active Managers including the target.
func EvaluateProjectMemberRemoval(actorProjectRole types.ProjectRole, actorOrgRole types.OrgRole, targetRole types.ProjectRole, activeManagers int64) Decision {
	if d := EvaluateProject(actorProjectRole, actorOrgRole, PROJECT_MANAGE_MEMBERS); !d.Allowed {
		return d
	}
	if targetRole == types.PROJECT_MANAGER && activeManagers <= 1 {
		return deny(INVARIANT_VIOLATION, "cannot remove the last Manager of a project")
	}
	return allow()
}

// EvaluateProjectRoleChange checks moving a member from current to next.
func EvaluateProjectRoleChange(actorProjectRole types.ProjectRole, actorOrgRole types.OrgRole, current, next types.ProjectRole, activeManagers int64) Decision {
	if d := EvaluateProject(actorProjectRole, actorOrgRole, PROJECT_MANAGE_MEMBERS); !d.Allowed {
		return d
	}
	if current == types.PROJECT_MANAGER && next != types.PROJECT_MANAGER && activeManagers <= 1 {
		return deny(INVARIANT_VIOLATION, "cannot demote the last Manager of a project")
	}
	return allow()
}
