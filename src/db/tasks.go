package db

import (
	"context"
	"strings"
	"taskflow/src/models"
	"taskflow/src/models/scopes"
	"taskflow/src/services"
)

func (s *Store) ListStatuses(ctx context.Context, projectID uint) ([]models.TaskStatus, error) {
	statuses := make([]models.TaskStatus, 0)
	err := s.conn(ctx).
		Where("project_id = ?", projectID).
		Scopes(scopes.OrderedStatuses).
		Find(&statuses).
		Error
	return statuses, err
}

func (s *Store) GetStatus(ctx context.Context, id uint) (*models.TaskStatus, error) {
	var status models.TaskStatus
	if err := s.conn(ctx).Scopes(scopes.WithID(id)).First(&status).Error; err != nil {
		return nil, notFound(err, "task status")
	}
	return &status, nil
}

func (s *Store) SaveStatus(ctx context.Context, status *models.TaskStatus) error {
	return s.conn(ctx).Save(status).Error
}

func (s *Store) DeleteStatus(ctx context.Context, id uint) error {
	return s.conn(ctx).Delete(&models.TaskStatus{}, id).Error
}

func (s *Store) ClearDefaultStatus(ctx context.Context, projectID uint, keepID uint) error {
	return s.conn(ctx).
		Model(&models.TaskStatus{}).
		Where("project_id = ? AND is_default = ? AND id <> ?", projectID, true, keepID).
		Update("is_default", false).
		Error
}

func (s *Store) CountActiveTasksWithStatus(ctx context.Context, statusID uint) (int64, error) {
	var count int64
	err := s.conn(ctx).
		Model(&models.TaskItem{}).
		Scopes(scopes.Active).
		Where("task_status_id = ?", statusID).
		Count(&count).
		Error
	return count, err
}

func (s *Store) CreateTask(ctx context.Context, task *models.TaskItem) error {
	return s.conn(ctx).Create(task).Error
}

func (s *Store) GetTask(ctx context.Context, id uint) (*models.TaskItem, error) {
	var task models.TaskItem
	if err := s.conn(ctx).Scopes(scopes.WithID(id), scopes.Active).First(&task).Error; err != nil {
		return nil, notFound(err, "task")
	}
	return &task, nil
}

func (s *Store) SaveTask(ctx context.Context, task *models.TaskItem) error {
	return s.conn(ctx).Save(task).Error
}

func (s *Store) ListTasks(ctx context.Context, projectID uint) ([]models.TaskItem, error) {
	tasks := make([]models.TaskItem, 0)
	err := s.conn(ctx).
		Scopes(scopes.Active).
		Where("project_id = ?", projectID).
		Order("created_at asc").
		Order("id asc").
		Find(&tasks).
		Error
	return tasks, err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (s *Store) ListTasksForMember(ctx context.Context, userID string, q services.TaskQuery) ([]models.TaskItem, error) {
	tasks := make([]models.TaskItem, 0)
	db := s.conn(ctx).
		Model(&models.TaskItem{}).
		Select("task_items.*").
		Joins("JOIN projects ON projects.id = task_items.project_id").
		Joins("JOIN project_members ON project_members.project_id = task_items.project_id").
		Scopes(liveProjects, scopes.ActiveIn("task_items"), scopes.ActiveIn("project_members")).
		Where("project_members.user_id = ?", userID)
	if q.ProjectID != 0 {
		db = db.Where("task_items.project_id = ?", q.ProjectID)
	}
	if q.AssignedTo != "" {
		db = db.Where("task_items.assigned_to_user_id = ?", q.AssignedTo)
	}
	if q.CreatedBy != "" {
		db = db.Where("task_items.created_by_user_id = ?", q.CreatedBy)
	}
	if q.DueFrom != nil {
		db = db.Where("task_items.due_date >= ?", *q.DueFrom)
	}
	if q.DueBefore != nil {
		db = db.Where("task_items.due_date < ?", *q.DueBefore)
	}
	if q.OpenOnly {
		db = db.Where("task_items.completion_percentage < ?", 100)
	}
	if q.Search != "" {
		pattern := "%" + likeEscaper.Replace(q.Search) + "%"
		db = db.Where("(task_items.title ILIKE ? OR task_items.description ILIKE ?)", pattern, pattern)
	}
	err := db.Order("task_items.id asc").Find(&tasks).Error
	return tasks, err
}

func (s *Store) CountTasks(ctx context.Context, projectID uint) (services.TaskCounts, error) {
	var counts services.TaskCounts
	err := s.conn(ctx).
		Model(&models.TaskItem{}).
		Select("COUNT(*) AS total, COUNT(*) FILTER (WHERE completion_percentage >= 100) AS completed").
		Scopes(scopes.Active).
		Where("project_id = ?", projectID).
		Scan(&counts).
		Error
	return counts, err
}

func (s *Store) CreateComment(ctx context.Context, comment *models.TaskComment) error {
	return s.conn(ctx).Create(comment).Error
}

func (s *Store) GetComment(ctx context.Context, id uint) (*models.TaskComment, error) {
	var comment models.TaskComment
	if err := s.conn(ctx).Scopes(scopes.WithID(id), scopes.Active).First(&comment).Error; err != nil {
		return nil, notFound(err, "comment")
	}
	return &comment, nil
}

func (s *Store) ListComments(ctx context.Context, taskID uint) ([]models.TaskComment, error) {
	comments := make([]models.TaskComment, 0)
	err := s.conn(ctx).
		Scopes(scopes.Active).
		Where("task_item_id = ?", taskID).
		Order("created_at asc").
		Find(&comments).
		Error
	return comments, err
}

func (s *Store) CreateTimeEntry(ctx context.Context, entry *models.TimeEntry) error {
	return s.conn(ctx).Create(entry).Error
}

func (s *Store) ListTimeEntries(ctx context.Context, taskID uint) ([]models.TimeEntry, error) {
	entries := make([]models.TimeEntry, 0)
	err := s.conn(ctx).
		Where("task_item_id = ?", taskID).
		Order("date desc").
		Find(&entries).
		Error
	return entries, err
}
