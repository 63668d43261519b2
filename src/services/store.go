package services

import (
	"context"
	"taskflow/src/models"
	"taskflow/src/types"
	"time"
)

// Membership is the role view of an active membership row in an active scope.
type Membership struct {
	Scope    types.ScopeType `json:"scope"`
	ScopeID  uint            `json:"scope_id"`
	UserID   string          `json:"user_id"`
	Role     string          `json:"role"`
	JoinedAt time.Time       `json:"joined_at"`
}

type MembershipStore interface {
	// GetMembership returns nil and no error when there is no active membership.
	GetMembership(ctx context.Context, scope types.ScopeType, scopeID uint, userID string) (*Membership, error)
	ListMemberships(ctx context.Context, scope types.ScopeType, scopeID uint) ([]Membership, error)
}

// TaskQuery narrows a member's task listing. Zero fields do not filter.
type TaskQuery struct {
	ProjectID  uint
	AssignedTo string
	CreatedBy  string
	// DueFrom is inclusive and DueBefore exclusive. Either one excludes tasks without a due date.
	DueFrom   *time.Time
	DueBefore *time.Time
	// OpenOnly drops tasks at 100%.
	OpenOnly bool
	// Search matches title or description, ignoring case.
	Search string
}

type TaskCounts struct {
	Total     int64
	Completed int64
}

// Store is the persistence port. Get methods return an error matching ErrNotFound
// when the row is missing or inactive. Save methods insert when the ID is zero.
type Store interface {
	MembershipStore

	// Transaction runs fn atomically. Any error returned by fn rolls everything back.
	Transaction(ctx context.Context, fn func(tx Store) error) error

	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	SaveUser(ctx context.Context, user *models.User) error

	CreateOrganization(ctx context.Context, org *models.Organization) error
	GetOrganization(ctx context.Context, id uint) (*models.Organization, error)
	SaveOrganization(ctx context.Context, org *models.Organization) error
	ListOrganizationsForUser(ctx context.Context, userID string) ([]models.Organization, error)
	GetOrgMember(ctx context.Context, orgID uint, userID string) (*models.OrganizationMember, error)
	SaveOrgMember(ctx context.Context, member *models.OrganizationMember) error
	ListOrgMembers(ctx context.Context, orgID uint) ([]models.OrganizationMember, error)

	CreateTeam(ctx context.Context, team *models.Team) error
	GetTeam(ctx context.Context, id uint) (*models.Team, error)
	SaveTeam(ctx context.Context, team *models.Team) error
	ListTeams(ctx context.Context, orgID uint) ([]models.Team, error)

	CreateProject(ctx context.Context, project *models.Project) error
	GetProject(ctx context.Context, id uint) (*models.Project, error)
	SaveProject(ctx context.Context, project *models.Project) error
	ListProjectsForUser(ctx context.Context, userID string, orgID uint) ([]models.Project, error)
	ListActiveProjectIDs(ctx context.Context) ([]uint, error)
	// LockProject serializes workflow changes for one project until the transaction ends.
	LockProject(ctx context.Context, id uint) error
	GetProjectMember(ctx context.Context, projectID uint, userID string) (*models.ProjectMember, error)
	SaveProjectMember(ctx context.Context, member *models.ProjectMember) error
	ListProjectMembers(ctx context.Context, projectID uint) ([]models.ProjectMember, error)
	CountProjectManagers(ctx context.Context, projectID uint) (int64, error)

	ListStatuses(ctx context.Context, projectID uint) ([]models.TaskStatus, error)
	GetStatus(ctx context.Context, id uint) (*models.TaskStatus, error)
	SaveStatus(ctx context.Context, status *models.TaskStatus) error
	DeleteStatus(ctx context.Context, id uint) error
	// ClearDefaultStatus unsets is_default on every status of the project except keepID.
	ClearDefaultStatus(ctx context.Context, projectID uint, keepID uint) error
	CountActiveTasksWithStatus(ctx context.Context, statusID uint) (int64, error)

	CreateTask(ctx context.Context, task *models.TaskItem) error
	GetTask(ctx context.Context, id uint) (*models.TaskItem, error)
	SaveTask(ctx context.Context, task *models.TaskItem) error
	ListTasks(ctx context.Context, projectID uint) ([]models.TaskItem, error)
	CountTasks(ctx context.Context, projectID uint) (TaskCounts, error)
	// ListTasksForMember returns active tasks of live projects where userID is an active member.
	ListTasksForMember(ctx context.Context, userID string, q TaskQuery) ([]models.TaskItem, error)

	CreateComment(ctx context.Context, comment *models.TaskComment) error
	GetComment(ctx context.Context, id uint) (*models.TaskComment, error)
	ListComments(ctx context.Context, taskID uint) ([]models.TaskComment, error)
	CreateTimeEntry(ctx context.Context, entry *models.TimeEntry) error
	ListTimeEntries(ctx context.Context, taskID uint) ([]models.TimeEntry, error)

	AppendTrail(ctx context.Context, entry *models.TrailLog) error
}

// Cache is an optional read-through accelerator. A nil Cache disables caching.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}
