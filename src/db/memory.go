package db

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"taskflow/src/models"
	"taskflow/src/services"
	"taskflow/src/types"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps every table in process memory. It backs the "memory"
// database driver and the service tests. Transactions are serialized and a
// failed transaction restores the tables it started from. Reads outside a
// transaction may observe rows written by one that is still running.
type MemoryStore struct {
	state *memoryState
	inTx  bool
}

var _ services.Store = (*MemoryStore)(nil)

type memoryState struct {
	txMu   sync.Mutex
	mu     sync.RWMutex
	tables *memoryTables
}

type memoryTables struct {
	seq            map[string]uint
	users          map[string]models.User
	orgs           map[uint]models.Organization
	orgMembers     map[uint]models.OrganizationMember
	teams          map[uint]models.Team
	projects       map[uint]models.Project
	projectMembers map[uint]models.ProjectMember
	statuses       map[uint]models.TaskStatus
	tasks          map[uint]models.TaskItem
	comments       map[uint]models.TaskComment
	timeEntries    map[uint]models.TimeEntry
	trail          []models.TrailLog
}

func newMemoryTables() *memoryTables {
	return &memoryTables{
		seq:            map[string]uint{},
		users:          map[string]models.User{},
		orgs:           map[uint]models.Organization{},
		orgMembers:     map[uint]models.OrganizationMember{},
		teams:          map[uint]models.Team{},
		projects:       map[uint]models.Project{},
		projectMembers: map[uint]models.ProjectMember{},
		statuses:       map[uint]models.TaskStatus{},
		tasks:          map[uint]models.TaskItem{},
		comments:       map[uint]models.TaskComment{},
		timeEntries:    map[uint]models.TimeEntry{},
	}
}

func (t *memoryTables) clone() *memoryTables {
	return &memoryTables{
		seq:            maps.Clone(t.seq),
		users:          maps.Clone(t.users),
		orgs:           maps.Clone(t.orgs),
		orgMembers:     maps.Clone(t.orgMembers),
		teams:          maps.Clone(t.teams),
		projects:       maps.Clone(t.projects),
		projectMembers: maps.Clone(t.projectMembers),
		statuses:       maps.Clone(t.statuses),
		tasks:          maps.Clone(t.tasks),
		comments:       maps.Clone(t.comments),
		timeEntries:    maps.Clone(t.timeEntries),
		trail:          slices.Clone(t.trail),
	}
}

func (t *memoryTables) next(table string) uint {
	t.seq[table]++
	return t.seq[table]
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: &memoryState{tables: newMemoryTables()}}
}

func (s *MemoryStore) Transaction(ctx context.Context, fn func(tx services.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	s.state.txMu.Lock()
	defer s.state.txMu.Unlock()

	s.state.mu.RLock()
	snapshot := s.state.tables.clone()
	s.state.mu.RUnlock()

	if err := fn(&MemoryStore{state: s.state, inTx: true}); err != nil {
		s.state.mu.Lock()
		s.state.tables = snapshot
		s.state.mu.Unlock()
		return err
	}
	return nil
}

func (s *MemoryStore) read(fn func(t *memoryTables)) {
	s.state.mu.RLock()
	defer s.state.mu.RUnlock()
	fn(s.state.tables)
}

// write waits for running transactions unless it is part of one.
func (s *MemoryStore) write(fn func(t *memoryTables) error) error {
	if !s.inTx {
		s.state.txMu.Lock()
		defer s.state.txMu.Unlock()
	}
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	return fn(s.state.tables)
}

func stamp(ts *types.Timestamps, created bool) {
	now := time.Now().UTC()
	if created || ts.CreatedAt.IsZero() {
		ts.CreatedAt = now
	}
	ts.UpdatedAt = now
}

func uniqueViolation(index string) error {
	return fmt.Errorf("duplicate key value violates unique constraint %q", index)
}

func missing(entity string) error {
	return services.NotFound(entity)
}

// activeOrg mirrors scopes.Active for organizations.
func (t *memoryTables) activeOrg(id uint) (models.Organization, bool) {
	org, ok := t.orgs[id]
	return org, ok && org.IsActive
}

func (t *memoryTables) activeProject(id uint) (models.Project, bool) {
	p, ok := t.projects[id]
	if !ok || !p.IsActive {
		return p, false
	}
	_, ok = t.activeOrg(p.OrganizationID)
	return p, ok
}

func (s *MemoryStore) GetMembership(ctx context.Context, scope types.ScopeType, scopeID uint, userID string) (*services.Membership, error) {
	rows, err := s.ListMemberships(ctx, scope, scopeID)
	if err != nil {
		return nil, err
	}
	for _, m := range rows {
		if m.UserID == userID {
			return &m, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) ListMemberships(ctx context.Context, scope types.ScopeType, scopeID uint) ([]services.Membership, error) {
	rows := make([]services.Membership, 0)
	var err error
	s.read(func(t *memoryTables) {
		switch scope {
		case types.SCOPE_ORGANIZATION:
			if _, ok := t.activeOrg(scopeID); !ok {
				return
			}
			for _, m := range t.orgMembers {
				if m.IsActive && m.OrganizationID == scopeID {
					rows = append(rows, services.Membership{Scope: scope, ScopeID: scopeID, UserID: m.UserID, Role: string(m.Role), JoinedAt: m.JoinedAt})
				}
			}
		case types.SCOPE_PROJECT:
			if _, ok := t.activeProject(scopeID); !ok {
				return
			}
			for _, m := range t.projectMembers {
				if m.IsActive && m.ProjectID == scopeID {
					rows = append(rows, services.Membership{Scope: scope, ScopeID: scopeID, UserID: m.UserID, Role: string(m.Role), JoinedAt: m.JoinedAt})
				}
			}
		default:
			err = fmt.Errorf("unknown scope %q", scope)
		}
	})
	slices.SortFunc(rows, func(a, b services.Membership) int {
		return a.JoinedAt.Compare(b.JoinedAt)
	})
	return rows, err
}

func (s *MemoryStore) CreateUser(ctx context.Context, user *models.User) error {
	return s.write(func(t *memoryTables) error {
		if user.ID == "" {
			user.ID = uuid.NewString()
		}
		for _, u := range t.users {
			if u.Email == user.Email {
				return uniqueViolation("idx_users_email")
			}
		}
		stamp(&user.Timestamps, true)
		t.users[user.ID] = *user
		return nil
	})
}

func (s *MemoryStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	var (
		user models.User
		ok   bool
	)
	s.read(func(t *memoryTables) { user, ok = t.users[id] })
	if !ok {
		return nil, missing("user")
	}
	return &user, nil
}

func (s *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var found *models.User
	s.read(func(t *memoryTables) {
		for _, u := range t.users {
			if u.Email == email {
				found = &u
				return
			}
		}
	})
	if found == nil {
		return nil, missing("user")
	}
	return found, nil
}

func (s *MemoryStore) SaveUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		return s.CreateUser(ctx, user)
	}
	return s.write(func(t *memoryTables) error {
		stamp(&user.Timestamps, false)
		t.users[user.ID] = *user
		return nil
	})
}

func (s *MemoryStore) CreateOrganization(ctx context.Context, org *models.Organization) error {
	return s.SaveOrganization(ctx, org)
}

func (s *MemoryStore) GetOrganization(ctx context.Context, id uint) (*models.Organization, error) {
	var (
		org models.Organization
		ok  bool
	)
	s.read(func(t *memoryTables) { org, ok = t.activeOrg(id) })
	if !ok {
		return nil, missing("organization")
	}
	return &org, nil
}

func (s *MemoryStore) SaveOrganization(ctx context.Context, org *models.Organization) error {
	return s.write(func(t *memoryTables) error {
		for id, o := range t.orgs {
			if id != org.ID && o.Slug == org.Slug {
				return uniqueViolation("idx_organizations_slug")
			}
		}
		created := org.ID == 0
		if created {
			org.ID = t.next("organizations")
		}
		stamp(&org.Timestamps, created)
		t.orgs[org.ID] = *org
		return nil
	})
}

func (s *MemoryStore) ListOrganizationsForUser(ctx context.Context, userID string) ([]models.Organization, error) {
	orgs := make([]models.Organization, 0)
	s.read(func(t *memoryTables) {
		for _, m := range t.orgMembers {
			if !m.IsActive || m.UserID != userID {
				continue
			}
			if org, ok := t.activeOrg(m.OrganizationID); ok {
				orgs = append(orgs, org)
			}
		}
	})
	slices.SortFunc(orgs, func(a, b models.Organization) int {
		return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), cmp.Compare(b.ID, a.ID))
	})
	return orgs, nil
}

func (s *MemoryStore) GetOrgMember(ctx context.Context, orgID uint, userID string) (*models.OrganizationMember, error) {
	var found *models.OrganizationMember
	s.read(func(t *memoryTables) {
		for _, m := range t.orgMembers {
			if m.IsActive && m.OrganizationID == orgID && m.UserID == userID {
				found = &m
				return
			}
		}
	})
	if found == nil {
		return nil, missing("organization member")
	}
	return found, nil
}

func (s *MemoryStore) SaveOrgMember(ctx context.Context, member *models.OrganizationMember) error {
	return s.write(func(t *memoryTables) error {
		if member.IsActive {
			for id, m := range t.orgMembers {
				if id != member.ID && m.IsActive && m.OrganizationID == member.OrganizationID && m.UserID == member.UserID {
					return uniqueViolation("idx_org_member_active")
				}
			}
		}
		created := member.ID == 0
		if created {
			member.ID = t.next("organization_members")
		}
		stamp(&member.Timestamps, created)
		t.orgMembers[member.ID] = *member
		return nil
	})
}

func (s *MemoryStore) ListOrgMembers(ctx context.Context, orgID uint) ([]models.OrganizationMember, error) {
	members := make([]models.OrganizationMember, 0)
	s.read(func(t *memoryTables) {
		for _, m := range t.orgMembers {
			if m.IsActive && m.OrganizationID == orgID {
				members = append(members, m)
			}
		}
	})
	slices.SortFunc(members, func(a, b models.OrganizationMember) int {
		return cmp.Or(a.JoinedAt.Compare(b.JoinedAt), cmp.Compare(a.ID, b.ID))
	})
	return members, nil
}

func (s *MemoryStore) CreateTeam(ctx context.Context, team *models.Team) error {
	return s.SaveTeam(ctx, team)
}

func (s *MemoryStore) GetTeam(ctx context.Context, id uint) (*models.Team, error) {
	var (
		team models.Team
		ok   bool
	)
	s.read(func(t *memoryTables) { team, ok = t.teams[id] })
	if !ok || !team.IsActive {
		return nil, missing("team")
	}
	return &team, nil
}

func (s *MemoryStore) SaveTeam(ctx context.Context, team *models.Team) error {
	return s.write(func(t *memoryTables) error {
		created := team.ID == 0
		if created {
			team.ID = t.next("teams")
		}
		stamp(&team.Timestamps, created)
		t.teams[team.ID] = *team
		return nil
	})
}

func (s *MemoryStore) ListTeams(ctx context.Context, orgID uint) ([]models.Team, error) {
	teams := make([]models.Team, 0)
	s.read(func(t *memoryTables) {
		for _, team := range t.teams {
			if team.IsActive && team.OrganizationID == orgID {
				teams = append(teams, team)
			}
		}
	})
	slices.SortFunc(teams, func(a, b models.Team) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})
	return teams, nil
}

func (s *MemoryStore) CreateProject(ctx context.Context, project *models.Project) error {
	return s.SaveProject(ctx, project)
}

func (s *MemoryStore) GetProject(ctx context.Context, id uint) (*models.Project, error) {
	var (
		project models.Project
		ok      bool
	)
	s.read(func(t *memoryTables) { project, ok = t.activeProject(id) })
	if !ok {
		return nil, missing("project")
	}
	return &project, nil
}

func (s *MemoryStore) SaveProject(ctx context.Context, project *models.Project) error {
	return s.write(func(t *memoryTables) error {
		created := project.ID == 0
		if created {
			project.ID = t.next("projects")
		}
		stamp(&project.Timestamps, created)
		t.projects[project.ID] = *project
		return nil
	})
}

func (s *MemoryStore) ListProjectsForUser(ctx context.Context, userID string, orgID uint) ([]models.Project, error) {
	projects := make([]models.Project, 0)
	s.read(func(t *memoryTables) {
		for _, m := range t.projectMembers {
			if !m.IsActive || m.UserID != userID {
				continue
			}
			p, ok := t.activeProject(m.ProjectID)
			if ok && (orgID == 0 || p.OrganizationID == orgID) {
				projects = append(projects, p)
			}
		}
	})
	slices.SortFunc(projects, func(a, b models.Project) int {
		return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), cmp.Compare(b.ID, a.ID))
	})
	return projects, nil
}

func (s *MemoryStore) ListActiveProjectIDs(ctx context.Context) ([]uint, error) {
	ids := make([]uint, 0)
	s.read(func(t *memoryTables) {
		for id := range t.projects {
			if _, ok := t.activeProject(id); ok {
				ids = append(ids, id)
			}
		}
	})
	slices.Sort(ids)
	return ids, nil
}

// LockProject only checks existence. Transactions already run one at a time.
func (s *MemoryStore) LockProject(ctx context.Context, id uint) error {
	_, err := s.GetProject(ctx, id)
	return err
}

func (s *MemoryStore) GetProjectMember(ctx context.Context, projectID uint, userID string) (*models.ProjectMember, error) {
	var found *models.ProjectMember
	s.read(func(t *memoryTables) {
		for _, m := range t.projectMembers {
			if m.IsActive && m.ProjectID == projectID && m.UserID == userID {
				found = &m
				return
			}
		}
	})
	if found == nil {
		return nil, missing("project member")
	}
	return found, nil
}

func (s *MemoryStore) SaveProjectMember(ctx context.Context, member *models.ProjectMember) error {
	return s.write(func(t *memoryTables) error {
		if member.IsActive {
			for id, m := range t.projectMembers {
				if id != member.ID && m.IsActive && m.ProjectID == member.ProjectID && m.UserID == member.UserID {
					return uniqueViolation("idx_project_member_active")
				}
			}
		}
		created := member.ID == 0
		if created {
			member.ID = t.next("project_members")
		}
		stamp(&member.Timestamps, created)
		t.projectMembers[member.ID] = *member
		return nil
	})
}

func (s *MemoryStore) ListProjectMembers(ctx context.Context, projectID uint) ([]models.ProjectMember, error) {
	members := make([]models.ProjectMember, 0)
	s.read(func(t *memoryTables) {
		for _, m := range t.projectMembers {
			if m.IsActive && m.ProjectID == projectID {
				members = append(members, m)
			}
		}
	})
	slices.SortFunc(members, func(a, b models.ProjectMember) int {
		return cmp.Or(a.JoinedAt.Compare(b.JoinedAt), cmp.Compare(a.ID, b.ID))
	})
	return members, nil
}

func (s *MemoryStore) CountProjectManagers(ctx context.Context, projectID uint) (int64, error) {
	var n int64
	s.read(func(t *memoryTables) {
		for _, m := range t.projectMembers {
			if m.IsActive && m.ProjectID == projectID && m.Role == types.PROJECT_MANAGER {
				n++
			}
		}
	})
	return n, nil
}

func (s *MemoryStore) ListStatuses(ctx context.Context, projectID uint) ([]models.TaskStatus, error) {
	statuses := make([]models.TaskStatus, 0)
	s.read(func(t *memoryTables) {
		for _, st := range t.statuses {
			if st.ProjectID == projectID {
				statuses = append(statuses, st)
			}
		}
	})
	slices.SortFunc(statuses, func(a, b models.TaskStatus) int {
		return cmp.Or(cmp.Compare(a.Order, b.Order), cmp.Compare(a.ID, b.ID))
	})
	return statuses, nil
}

func (s *MemoryStore) GetStatus(ctx context.Context, id uint) (*models.TaskStatus, error) {
	var (
		status models.TaskStatus
		ok     bool
	)
	s.read(func(t *memoryTables) { status, ok = t.statuses[id] })
	if !ok {
		return nil, missing("task status")
	}
	return &status, nil
}

func (s *MemoryStore) SaveStatus(ctx context.Context, status *models.TaskStatus) error {
	return s.write(func(t *memoryTables) error {
		if status.IsDefault {
			for id, st := range t.statuses {
				if id != status.ID && st.IsDefault && st.ProjectID == status.ProjectID {
					return uniqueViolation("idx_status_default")
				}
			}
		}
		created := status.ID == 0
		if created {
			status.ID = t.next("task_statuses")
		}
		stamp(&status.Timestamps, created)
		t.statuses[status.ID] = *status
		return nil
	})
}

func (s *MemoryStore) DeleteStatus(ctx context.Context, id uint) error {
	return s.write(func(t *memoryTables) error {
		delete(t.statuses, id)
		return nil
	})
}

func (s *MemoryStore) ClearDefaultStatus(ctx context.Context, projectID uint, keepID uint) error {
	return s.write(func(t *memoryTables) error {
		for id, st := range t.statuses {
			if id != keepID && st.ProjectID == projectID && st.IsDefault {
				st.IsDefault = false
				stamp(&st.Timestamps, false)
				t.statuses[id] = st
			}
		}
		return nil
	})
}

func (s *MemoryStore) CountActiveTasksWithStatus(ctx context.Context, statusID uint) (int64, error) {
	var n int64
	s.read(func(t *memoryTables) {
		for _, task := range t.tasks {
			if task.IsActive && task.TaskStatusID == statusID {
				n++
			}
		}
	})
	return n, nil
}

func (s *MemoryStore) CreateTask(ctx context.Context, task *models.TaskItem) error {
	return s.SaveTask(ctx, task)
}

func (s *MemoryStore) GetTask(ctx context.Context, id uint) (*models.TaskItem, error) {
	var (
		task models.TaskItem
		ok   bool
	)
	s.read(func(t *memoryTables) { task, ok = t.tasks[id] })
	if !ok || !task.IsActive {
		return nil, missing("task")
	}
	return &task, nil
}

func (s *MemoryStore) SaveTask(ctx context.Context, task *models.TaskItem) error {
	return s.write(func(t *memoryTables) error {
		created := task.ID == 0
		if created {
			task.ID = t.next("task_items")
		}
		stamp(&task.Timestamps, created)
		t.tasks[task.ID] = *task
		return nil
	})
}

func (s *MemoryStore) ListTasks(ctx context.Context, projectID uint) ([]models.TaskItem, error) {
	tasks := make([]models.TaskItem, 0)
	s.read(func(t *memoryTables) {
		for _, task := range t.tasks {
			if task.IsActive && task.ProjectID == projectID {
				tasks = append(tasks, task)
			}
		}
	})
	slices.SortFunc(tasks, func(a, b models.TaskItem) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), cmp.Compare(a.ID, b.ID))
	})
	return tasks, nil
}

func (s *MemoryStore) CountTasks(ctx context.Context, projectID uint) (services.TaskCounts, error) {
	var counts services.TaskCounts
	s.read(func(t *memoryTables) {
		for _, task := range t.tasks {
			if !task.IsActive || task.ProjectID != projectID {
				continue
			}
			counts.Total++
			if task.CompletionPercentage >= 100 {
				counts.Completed++
			}
		}
	})
	return counts, nil
}

func (t *memoryTables) isProjectMember(projectID uint, userID string) bool {
	for _, m := range t.projectMembers {
		if m.IsActive && m.ProjectID == projectID && m.UserID == userID {
			return true
		}
	}
	return false
}

func matchesTaskQuery(task *models.TaskItem, q services.TaskQuery) bool {
	switch {
	case q.ProjectID != 0 && task.ProjectID != q.ProjectID:
		return false
	case q.AssignedTo != "" && (task.AssignedToUserID == nil || *task.AssignedToUserID != q.AssignedTo):
		return false
	case q.CreatedBy != "" && task.CreatedByUserID != q.CreatedBy:
		return false
	case q.OpenOnly && task.CompletionPercentage >= 100:
		return false
	}
	if q.DueFrom != nil || q.DueBefore != nil {
		if task.DueDate == nil {
			return false
		}
		if q.DueFrom != nil && task.DueDate.Before(*q.DueFrom) {
			return false
		}
		if q.DueBefore != nil && !task.DueDate.Before(*q.DueBefore) {
			return false
		}
	}
	if q.Search != "" {
		term := strings.ToLower(q.Search)
		return strings.Contains(strings.ToLower(task.Title), term) || strings.Contains(strings.ToLower(task.Description), term)
	}
	return true
}

func (s *MemoryStore) ListTasksForMember(ctx context.Context, userID string, q services.TaskQuery) ([]models.TaskItem, error) {
	tasks := make([]models.TaskItem, 0)
	s.read(func(t *memoryTables) {
		for _, task := range t.tasks {
			if !task.IsActive || !matchesTaskQuery(&task, q) {
				continue
			}
			if _, ok := t.activeProject(task.ProjectID); !ok || !t.isProjectMember(task.ProjectID, userID) {
				continue
			}
			tasks = append(tasks, task)
		}
	})
	slices.SortFunc(tasks, func(a, b models.TaskItem) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return tasks, nil
}

func (s *MemoryStore) CreateComment(ctx context.Context, comment *models.TaskComment) error {
	return s.write(func(t *memoryTables) error {
		comment.ID = t.next("task_comments")
		stamp(&comment.Timestamps, true)
		t.comments[comment.ID] = *comment
		return nil
	})
}

func (s *MemoryStore) GetComment(ctx context.Context, id uint) (*models.TaskComment, error) {
	var (
		comment models.TaskComment
		ok      bool
	)
	s.read(func(t *memoryTables) { comment, ok = t.comments[id] })
	if !ok || !comment.IsActive {
		return nil, missing("comment")
	}
	return &comment, nil
}

func (s *MemoryStore) ListComments(ctx context.Context, taskID uint) ([]models.TaskComment, error) {
	comments := make([]models.TaskComment, 0)
	s.read(func(t *memoryTables) {
		for _, c := range t.comments {
			if c.IsActive && c.TaskItemID == taskID {
				comments = append(comments, c)
			}
		}
	})
	slices.SortFunc(comments, func(a, b models.TaskComment) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), cmp.Compare(a.ID, b.ID))
	})
	return comments, nil
}

func (s *MemoryStore) CreateTimeEntry(ctx context.Context, entry *models.TimeEntry) error {
	return s.write(func(t *memoryTables) error {
		entry.ID = t.next("time_entries")
		stamp(&entry.Timestamps, true)
		t.timeEntries[entry.ID] = *entry
		return nil
	})
}

func (s *MemoryStore) ListTimeEntries(ctx context.Context, taskID uint) ([]models.TimeEntry, error) {
	entries := make([]models.TimeEntry, 0)
	s.read(func(t *memoryTables) {
		for _, e := range t.timeEntries {
			if e.TaskItemID == taskID {
				entries = append(entries, e)
			}
		}
	})
	slices.SortFunc(entries, func(a, b models.TimeEntry) int {
		return cmp.Or(b.Date.Compare(a.Date), cmp.Compare(b.ID, a.ID))
	})
	return entries, nil
}

func (s *MemoryStore) AppendTrail(ctx context.Context, entry *models.TrailLog) error {
	return s.write(func(t *memoryTables) error {
		if entry.ID == uuid.Nil {
			entry.ID = uuid.New()
		}
		if entry.CreatedAt.IsZero() {
			entry.CreatedAt = time.Now().UTC()
		}
		t.trail = append(t.trail, *entry)
		return nil
	})
}

// Trail returns the audit entries recorded for a group such as "organization:1".
func (s *MemoryStore) Trail(group string) []models.TrailLog {
	entries := make([]models.TrailLog, 0)
	s.read(func(t *memoryTables) {
		for _, e := range t.trail {
			if e.Group == group {
				entries = append(entries, e)
			}
		}
	})
	return entries
}
