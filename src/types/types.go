package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Timestamps carries no DeletedAt: soft deletion is the is_active flag on each entity.
type Timestamps struct {
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

type JSONB map[string]any

func (a JSONB) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONB) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

// ScopeType is the resource boundary a role is resolved against.
type ScopeType string

const (
	SCOPE_ORGANIZATION ScopeType = "organization"
	SCOPE_PROJECT      ScopeType = "project"
)

// NO_ROLE is returned by role lookups when the user has no active membership.
const NO_ROLE = ""

type OrgRole string

const (
	ORG_OWNER   OrgRole = "Owner"
	ORG_ADMIN   OrgRole = "Admin"
	ORG_MANAGER OrgRole = "Manager"
	ORG_MEMBER  OrgRole = "Member"
)

var orgRoles = []OrgRole{ORG_OWNER, ORG_ADMIN, ORG_MANAGER, ORG_MEMBER}

func ParseOrgRole(s string) (OrgRole, error) {
	for _, r := range orgRoles {
		if string(r) == s {
			return r, nil
		}
	}
	return NO_ROLE, fmt.Errorf("invalid organization role %q: valid roles are Owner, Admin, Manager, Member", s)
}

func (r OrgRole) Valid() bool {
	_, err := ParseOrgRole(string(r))
	return err == nil
}

type ProjectRole string

const (
	PROJECT_MANAGER     ProjectRole = "Manager"
	PROJECT_CONTRIBUTOR ProjectRole = "Contributor"
	PROJECT_VIEWER      ProjectRole = "Viewer"
)

var projectRoles = []ProjectRole{PROJECT_MANAGER, PROJECT_CONTRIBUTOR, PROJECT_VIEWER}

func ParseProjectRole(s string) (ProjectRole, error) {
	for _, r := range projectRoles {
		if string(r) == s {
			return r, nil
		}
	}
	return NO_ROLE, fmt.Errorf("invalid project role %q: valid roles are Manager, Contributor, Viewer", s)
}

func (r ProjectRole) Valid() bool {
	_, err := ParseProjectRole(string(r))
	return err == nil
}

type ProjectStatus string

const (
	PROJECT_PLANNING  ProjectStatus = "Planning"
	PROJECT_ACTIVE    ProjectStatus = "Active"
	PROJECT_ON_HOLD   ProjectStatus = "OnHold"
	PROJECT_COMPLETED ProjectStatus = "Completed"
	PROJECT_CANCELLED ProjectStatus = "Cancelled"
)

func ParseProjectStatus(s string) (ProjectStatus, error) {
	switch st := ProjectStatus(s); st {
	case PROJECT_PLANNING, PROJECT_ACTIVE, PROJECT_ON_HOLD, PROJECT_COMPLETED, PROJECT_CANCELLED:
		return st, nil
	}
	return "", fmt.Errorf("invalid status %q: valid statuses are Planning, Active, OnHold, Completed, Cancelled", s)
}

type Priority string

const (
	PRIORITY_LOW      Priority = "Low"
	PRIORITY_MEDIUM   Priority = "Medium"
	PRIORITY_HIGH     Priority = "High"
	PRIORITY_CRITICAL Priority = "Critical"
)

// ParsePriority maps an empty string to Medium.
func ParsePriority(s string) (Priority, error) {
	if s == "" {
		return PRIORITY_MEDIUM, nil
	}
	switch p := Priority(s); p {
	case PRIORITY_LOW, PRIORITY_MEDIUM, PRIORITY_HIGH, PRIORITY_CRITICAL:
		return p, nil
	}
	return "", fmt.Errorf("invalid priority %q: valid priorities are Low, Medium, High, Critical", s)
}

type SubscriptionPlan string

const (
	PLAN_FREE       SubscriptionPlan = "Free"
	PLAN_BASIC      SubscriptionPlan = "Basic"
	PLAN_PREMIUM    SubscriptionPlan = "Premium"
	PLAN_ENTERPRISE SubscriptionPlan = "Enterprise"
)

type SimpleRequestParams struct {
	ID uint `uri:"id" binding:"required"`
}

type MemberRequestParams struct {
	ID     uint   `uri:"id" binding:"required"`
	UserID string `uri:"userId" binding:"required"`
}
