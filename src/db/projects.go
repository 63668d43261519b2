package db

import (
	"context"
	"taskflow/src/models"
	"taskflow/src/models/scopes"
	"taskflow/src/types"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (s *Store) CreateProject(ctx context.Context, project *models.Project) error {
	return s.conn(ctx).Create(project).Error
}

// liveProjects restricts a projects query to active projects of active organizations.
func liveProjects(db *gorm.DB) *gorm.DB {
	return db.
		Joins("JOIN organizations ON organizations.id = projects.organization_id").
		Scopes(scopes.ActiveIn("projects"), scopes.ActiveIn("organizations"))
}

// GetProject hides projects whose organization has been deactivated.
func (s *Store) GetProject(ctx context.Context, id uint) (*models.Project, error) {
	var project models.Project
	err := s.conn(ctx).
		Select("projects.*").
		Scopes(liveProjects).
		Where("projects.id = ?", id).
		First(&project).
		Error
	if err != nil {
		return nil, notFound(err, "project")
	}
	return &project, nil
}

func (s *Store) SaveProject(ctx context.Context, project *models.Project) error {
	return s.conn(ctx).Save(project).Error
}

// ListProjectsForUser returns the active projects the user is an active member of.
// An orgID of 0 lists across every organization.
func (s *Store) ListProjectsForUser(ctx context.Context, userID string, orgID uint) ([]models.Project, error) {
	projects := make([]models.Project, 0)
	q := s.conn(ctx).
		Model(&models.Project{}).
		Joins("JOIN project_members ON project_members.project_id = projects.id").
		Joins("JOIN organizations ON organizations.id = projects.organization_id").
		Scopes(scopes.ActiveIn("projects"), scopes.ActiveIn("project_members"), scopes.ActiveIn("organizations")).
		Where("project_members.user_id = ?", userID)
	if orgID != 0 {
		q = q.Where("projects.organization_id = ?", orgID)
	}
	err := q.Order("projects.created_at desc").Find(&projects).Error
	return projects, err
}

func (s *Store) ListActiveProjectIDs(ctx context.Context) ([]uint, error) {
	ids := make([]uint, 0)
	err := s.conn(ctx).Model(&models.Project{}).Scopes(liveProjects).Order("projects.id asc").Pluck("projects.id", &ids).Error
	return ids, err
}

func (s *Store) LockProject(ctx context.Context, id uint) error {
	var project models.Project
	err := s.conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		Scopes(scopes.WithID(id), scopes.Active).
		First(&project).
		Error
	return notFound(err, "project")
}

func (s *Store) GetProjectMember(ctx context.Context, projectID uint, userID string) (*models.ProjectMember, error) {
	var member models.ProjectMember
	err := s.conn(ctx).
		Scopes(scopes.Active).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		First(&member).
		Error
	if err != nil {
		return nil, notFound(err, "project member")
	}
	return &member, nil
}

func (s *Store) SaveProjectMember(ctx context.Context, member *models.ProjectMember) error {
	return s.conn(ctx).Save(member).Error
}

func (s *Store) ListProjectMembers(ctx context.Context, projectID uint) ([]models.ProjectMember, error) {
	members := make([]models.ProjectMember, 0)
	err := s.conn(ctx).
		Scopes(scopes.Active).
		Where("project_id = ?", projectID).
		Order("joined_at asc").
		Find(&members).
		Error
	return members, err
}

func (s *Store) CountProjectManagers(ctx context.Context, projectID uint) (int64, error) {
	var count int64
	err := s.conn(ctx).
		Model(&models.ProjectMember{}).
		Scopes(scopes.Active).
		Where("project_id = ? AND role = ?", projectID, types.PROJECT_MANAGER).
		Count(&count).
		Error
	return count, err
}
