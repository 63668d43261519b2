package services

import (
	"context"
	"log"
	"strings"
	"taskflow/src/models"
	"taskflow/src/rbac"
	"taskflow/src/types"
	"time"
)

type ProjectService struct {
	store    Store
	resolver *Resolver
	workflow *Workflow
	now      func() time.Time
}

type ProjectSummary struct {
	models.Project
	Role types.ProjectRole `json:"role,omitempty"`
}

type ProjectStats struct {
	ProjectID            uint    `json:"project_id"`
	TotalTasks           int     `json:"total_tasks"`
	CompletedTasks       int     `json:"completed_tasks"`
	InProgressTasks      int     `json:"in_progress_tasks"`
	OverdueTasks         int     `json:"overdue_tasks"`
	CompletionPercentage float64 `json:"completion_percentage"`
}

// Create stores the project, makes the caller its Manager and seeds the default
// workflow, all in one transaction.
func (s *ProjectService) Create(ctx context.Context, userID string, body *types.CreateProjectRequestBody) (*models.Project, error) {
	name := strings.TrimSpace(body.Name)
	if name == "" {
		return nil, Invalid("project name is required")
	}
	priority, err := types.ParsePriority(body.Priority)
	if err != nil {
		return nil, Invalid("%s", err.Error())
	}
	project := models.Project{
		OrganizationID: body.OrganizationID,
		TeamID:         body.TeamID,
		Name:           name,
		Description:    body.Description,
		Status:         types.PROJECT_PLANNING,
		Priority:       priority,
		StartDate:      body.StartDate,
		DueDate:        body.DueDate,
		Color:          body.Color,
		IsActive:       true,
		CreatedBy:      userID,
	}
	err = s.store.Transaction(ctx, func(tx Store) error {
		if _, err := s.resolver.AuthorizeOrg(ctx, tx, STRICT, body.OrganizationID, userID, rbac.ORG_READ); err != nil {
			return err
		}
		if body.TeamID != nil {
			team, err := tx.GetTeam(ctx, *body.TeamID)
			if err != nil {
				return err
			}
			if team.OrganizationID != body.OrganizationID {
				return Invalid("team %d does not belong to organization %d", team.ID, body.OrganizationID)
			}
		}
		if err := tx.CreateProject(ctx, &project); err != nil {
			return err
		}
		manager := models.ProjectMember{
			ProjectID: project.ID,
			UserID:    userID,
			Role:      types.PROJECT_MANAGER,
			IsActive:  true,
			JoinedAt:  s.now(),
		}
		if err := tx.SaveProjectMember(ctx, &manager); err != nil {
			return err
		}
		if _, err := s.workflow.CreateDefaultStatuses(ctx, tx, project.ID); err != nil {
			return err
		}
		return appendTrail(ctx, tx, models.TRAIL_MEMBER_ADDED, userID, types.SCOPE_PROJECT, project.ID, userID, types.JSONB{"role": string(types.PROJECT_MANAGER)})
	})
	if err != nil {
		return nil, err
	}
	s.resolver.Invalidate(ctx, types.SCOPE_PROJECT, project.ID, userID)
	log.Printf("[projects] Project %d created in organization %d by %s\n", project.ID, project.OrganizationID, userID)
	return &project, nil
}

func (s *ProjectService) Get(ctx context.Context, userID string, projectID uint) (*ProjectSummary, error) {
	access, err := s.resolver.AuthorizeProject(ctx, s.store, CACHED, projectID, userID, rbac.PROJECT_READ)
	if err != nil {
		return nil, err
	}
	return &ProjectSummary{Project: *access.Project, Role: access.ProjectRole}, nil
}

// List returns the caller's projects, limited to one organization when orgID is not zero.
func (s *ProjectService) List(ctx context.Context, userID string, orgID uint) ([]ProjectSummary, error) {
	if orgID != 0 {
		if _, err := s.resolver.AuthorizeOrg(ctx, s.store, CACHED, orgID, userID, rbac.ORG_READ); err != nil {
			return nil, err
		}
	}
	projects, err := s.store.ListProjectsForUser(ctx, userID, orgID)
	if err != nil {
		return nil, err
	}
	result := make([]ProjectSummary, 0, len(projects))
	for _, p := range projects {
		role, err := s.resolver.ProjectRole(ctx, s.store, CACHED, p.ID, userID)
		if err != nil {
			return nil, err
		}
		result = append(result, ProjectSummary{Project: p, Role: role})
	}
	return result, nil
}

func (s *ProjectService) Update(ctx context.Context, userID string, projectID uint, body *types.UpdateProjectRequestBody) (*models.Project, error) {
	var project *models.Project
	err := s.store.Transaction(ctx, func(tx Store) error {
		access, err := s.resolver.AuthorizeProject(ctx, tx, STRICT, projectID, userID, rbac.PROJECT_UPDATE)
		if err != nil {
			return err
		}
		p := access.Project
		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return Invalid("project name is required")
			}
			p.Name = name
		}
		if body.Description != nil {
			p.Description = *body.Description
		}
		if body.Priority != nil {
			priority, err := types.ParsePriority(*body.Priority)
			if err != nil {
				return Invalid("%s", err.Error())
			}
			p.Priority = priority
		}
		if body.StartDate != nil {
			p.StartDate = body.StartDate
		}
		if body.EndDate != nil {
			p.EndDate = body.EndDate
		}
		if body.DueDate != nil {
			p.DueDate = body.DueDate
		}
		if body.Color != nil {
			p.Color = *body.Color
		}
		project = p
		return tx.SaveProject(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	return project, nil
}

// ChangeStatus moves the project through its lifecycle. Completed stamps EndDate when unset.
func (s *ProjectService) ChangeStatus(ctx context.Context, userID string, projectID uint, body *types.UpdateProjectStatusRequestBody) (*models.Project, error) {
	status, err := types.ParseProjectStatus(body.Status)
	if err != nil {
		return nil, Invalid("%s", err.Error())
	}
	var project *models.Project
	err = s.store.Transaction(ctx, func(tx Store) error {
		access, err := s.resolver.AuthorizeProject(ctx, tx, STRICT, projectID, userID, rbac.PROJECT_UPDATE)
		if err != nil {
			return err
		}
		p := access.Project
		p.Status = status
		if status == types.PROJECT_COMPLETED && p.EndDate == nil {
			now := s.now()
			p.EndDate = &now
		}
		project = p
		return tx.SaveProject(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[projects] Project %d status set to %s by %s\n", projectID, status, userID)
	return project, nil
}

// Delete deactivates the project. Its members lose access immediately.
func (s *ProjectService) Delete(ctx context.Context, userID string, projectID uint) error {
	var memberIDs []string
	err := s.store.Transaction(ctx, func(tx Store) error {
		access, err := s.resolver.AuthorizeProject(ctx, tx, STRICT, projectID, userID, rbac.PROJECT_DELETE)
		if err != nil {
			return err
		}
		members, err := tx.ListProjectMembers(ctx, projectID)
		if err != nil {
			return err
		}
		for _, m := range members {
			memberIDs = append(memberIDs, m.UserID)
		}
		access.Project.IsActive = false
		return tx.SaveProject(ctx, access.Project)
	})
	if err != nil {
		return err
	}
	s.resolver.Invalidate(ctx, types.SCOPE_PROJECT, projectID, memberIDs...)
	log.Printf("[projects] Project %d deactivated by %s\n", projectID, userID)
	return nil
}

func (s *ProjectService) ListMembers(ctx context.Context, userID string, projectID uint) ([]models.ProjectMember, error) {
	if _, err := s.resolver.AuthorizeProject(ctx, s.store, CACHED, projectID, userID, rbac.PROJECT_READ); err != nil {
		return nil, err
	}
	return s.store.ListProjectMembers(ctx, projectID)
}

// AddMember adds an existing organization member to the project. Role defaults to Contributor.
func (s *ProjectService) AddMember(ctx context.Context, userID string, projectID uint, body *types.AddProjectMemberRequestBody) (*models.ProjectMember, error) {
	role := types.PROJECT_CONTRIBUTOR
	if body.Role != "" {
		r, err := types.ParseProjectRole(body.Role)
		if err != nil {
			return nil, Invalid("%s", err.Error())
		}
		role = r
	}
	member := models.ProjectMember{
		ProjectID: projectID,
		UserID:    body.UserID,
		Role:      role,
		IsActive:  true,
		JoinedAt:  s.now(),
		AddedBy:   &userID,
	}
	err := s.store.Transaction(ctx, func(tx Store) error {
		access, err := s.resolver.ResolveProject(ctx, tx, STRICT, projectID, userID)
		if err != nil {
			return err
		}
		addedOrgRole, err := s.resolver.OrgRole(ctx, tx, STRICT, access.Project.OrganizationID, body.UserID)
		if err != nil {
			return err
		}
		if err := check(rbac.EvaluateProjectMemberAdd(access.ProjectRole, access.OrgRole, addedOrgRole)); err != nil {
			return err
		}
		existing, err := tx.GetMembership(ctx, types.SCOPE_PROJECT, projectID, body.UserID)
		if err != nil {
			return err
		}
		if existing != nil {
			return Conflict("user is already a member of this project")
		}
		if err := tx.SaveProjectMember(ctx, &member); err != nil {
			return err
		}
		return appendTrail(ctx, tx, models.TRAIL_MEMBER_ADDED, userID, types.SCOPE_PROJECT, projectID, body.UserID, types.JSONB{"role": string(role)})
	})
	if err != nil {
		return nil, err
	}
	s.resolver.Invalidate(ctx, types.SCOPE_PROJECT, projectID, body.UserID)
	log.Printf("[projects] %s added to project %d as %s\n", body.UserID, projectID, role)
	return &member, nil
}

func (s *ProjectService) UpdateMemberRole(ctx context.Context, userID string, projectID uint, targetID string, body *types.UpdateProjectMemberRoleRequestBody) (*models.ProjectMember, error) {
	next, err := types.ParseProjectRole(body.Role)
	if err != nil {
		return nil, Invalid("%s", err.Error())
	}
	var member *models.ProjectMember
	err = s.store.Transaction(ctx, func(tx Store) error {
		access, err := s.resolver.AuthorizeProject(ctx, tx, STRICT, projectID, userID, rbac.PROJECT_MANAGE_MEMBERS)
		if err != nil {
			return err
		}
		m, err := tx.GetProjectMember(ctx, projectID, targetID)
		if err != nil {
			return err
		}
		managers, err := tx.CountProjectManagers(ctx, projectID)
		if err != nil {
			return err
		}
		if err := check(rbac.EvaluateProjectRoleChange(access.ProjectRole, access.OrgRole, m.Role, next, managers)); err != nil {
			return err
		}
		previous := m.Role
		m.Role = next
		member = m
		if err := tx.SaveProjectMember(ctx, m); err != nil {
			return err
		}
		return appendTrail(ctx, tx, models.TRAIL_ROLE_CHANGED, userID, types.SCOPE_PROJECT, projectID, targetID, types.JSONB{"from": string(previous), "to": string(next)})
	})
	if err != nil {
		return nil, err
	}
	s.resolver.Invalidate(ctx, types.SCOPE_PROJECT, projectID, targetID)
	return member, nil
}

// RemoveMember deactivates a project membership. The last active Manager cannot be removed.
func (s *ProjectService) RemoveMember(ctx context.Context, userID string, projectID uint, targetID string) error {
	err := s.store.Transaction(ctx, func(tx Store) error {
		access, err := s.resolver.AuthorizeProject(ctx, tx, STRICT, projectID, userID, rbac.PROJECT_MANAGE_MEMBERS)
		if err != nil {
			return err
		}
		m, err := tx.GetProjectMember(ctx, projectID, targetID)
		if err != nil {
			return err
		}
		managers, err := tx.CountProjectManagers(ctx, projectID)
		if err != nil {
			return err
		}
		if err := check(rbac.EvaluateProjectMemberRemoval(access.ProjectRole, access.OrgRole, m.Role, managers)); err != nil {
			return err
		}
		m.IsActive = false
		if err := tx.SaveProjectMember(ctx, m); err != nil {
			return err
		}
		return appendTrail(ctx, tx, models.TRAIL_MEMBER_REMOVED, userID, types.SCOPE_PROJECT, projectID, targetID, types.JSONB{"role": string(m.Role)})
	})
	if err != nil {
		return err
	}
	s.resolver.Invalidate(ctx, types.SCOPE_PROJECT, projectID, targetID)
	log.Printf("[projects] %s removed from project %d by %s\n", targetID, projectID, userID)
	return nil
}

func (s *ProjectService) Stats(ctx context.Context, userID string, projectID uint) (*ProjectStats, error) {
	access, err := s.resolver.AuthorizeProject(ctx, s.store, CACHED, projectID, userID, rbac.PROJECT_READ)
	if err != nil {
		return nil, err
	}
	tasks, err := s.store.ListTasks(ctx, projectID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	stats := ProjectStats{ProjectID: projectID, TotalTasks: len(tasks), CompletionPercentage: access.Project.CompletionPercentage}
	for i := range tasks {
		switch pct := tasks[i].CompletionPercentage; {
		case pct >= 100:
			stats.CompletedTasks++
		case pct > 0:
			stats.InProgressTasks++
		}
		if tasks[i].IsOverdue(now) {
			stats.OverdueTasks++
		}
	}
	return &stats, nil
}

// RecalculateAll reconciles the stored completion percentage of every active project.
func (s *ProjectService) RecalculateAll(ctx context.Context) (int, error) {
	ids, err := s.store.ListActiveProjectIDs(ctx)
	if err != nil {
		return 0, err
	}
	updated := 0
	for _, id := range ids {
		err := s.store.Transaction(ctx, func(tx Store) error {
			_, err := s.workflow.RecalculateProjectCompletion(ctx, tx, id)
			return err
		})
		if err != nil {
			log.Printf("[projects] Recalculating project %d failed: %s\n", id, err.Error())
			continue
		}
		updated++
	}
	return updated, nil
}
