package services

import (
	"cmp"
	"context"
	"log"
	"slices"
	"strings"
	"taskflow/src/models"
	"taskflow/src/rbac"
	"taskflow/src/types"
	"time"
)

// TaskDetails is a task with its discussion and logged time.
type TaskDetails struct {
	models.TaskItem
	Comments    []models.TaskComment `json:"comments"`
	TimeEntries []models.TimeEntry   `json:"time_entries"`
}

const defaultUpcomingDays = 7

type TaskService struct {
	store    Store
	resolver *Resolver
	workflow *Workflow
	now      func() time.Time
}

// taskAccess loads a task and authorizes action on its project through st.
func (s *TaskService) taskAccess(ctx context.Context, st Store, c Consistency, userID string, taskID uint, action rbac.ProjectAction) (*models.TaskItem, error) {
	task, err := st.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if _, err := s.resolver.AuthorizeProject(ctx, st, c, task.ProjectID, userID, action); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) requireProjectMember(ctx context.Context, st Store, projectID uint, userID string) error {
	m, err := st.GetMembership(ctx, types.SCOPE_PROJECT, projectID, userID)
	if err != nil {
		return err
	}
	if m == nil {
		return Invalid("assignee must be a member of the project")
	}
	return nil
}

func (s *TaskService) statusInProject(ctx context.Context, st Store, statusID, projectID uint) (*models.TaskStatus, error) {
	status, err := st.GetStatus(ctx, statusID)
	if err != nil {
		return nil, err
	}
	if status.ProjectID != projectID {
		return nil, Invalid("status %d does not belong to project %d", statusID, projectID)
	}
	return status, nil
}

// Create adds a task. Without an explicit status the project's default status is used.
func (s *TaskService) Create(ctx context.Context, userID string, body *types.CreateTaskRequestBody) (*models.TaskItem, error) {
	title := strings.TrimSpace(body.Title)
	if title == "" {
		return nil, Invalid("task title is required")
	}
	priority, err := types.ParsePriority(body.Priority)
	if err != nil {
		return nil, Invalid("%s", err.Error())
	}
	if body.EstimatedHours != nil && *body.EstimatedHours < 0 {
		return nil, Invalid("estimated hours must not be negative")
	}
	task := models.TaskItem{
		ProjectID:       body.ProjectID,
		Title:           title,
		Description:     body.Description,
		Priority:        priority,
		CreatedByUserID: userID,
		DueDate:         body.DueDate,
		EstimatedHours:  body.EstimatedHours,
		Tags:            body.Tags,
		IsActive:        true,
	}
	err = s.store.Transaction(ctx, func(tx Store) error {
		if _, err := s.resolver.AuthorizeProject(ctx, tx, STRICT, body.ProjectID, userID, rbac.PROJECT_EDIT_TASKS); err != nil {
			return err
		}
		var status *models.TaskStatus
		var err error
		if body.TaskStatusID != nil {
			status, err = s.statusInProject(ctx, tx, *body.TaskStatusID, body.ProjectID)
		} else {
			status, err = s.workflow.ResolveDefaultStatus(ctx, tx, body.ProjectID)
		}
		if err != nil {
			return err
		}
		if body.AssignedToUserID != nil && *body.AssignedToUserID != "" {
			if err := s.requireProjectMember(ctx, tx, body.ProjectID, *body.AssignedToUserID); err != nil {
				return err
			}
			task.AssignedToUserID = body.AssignedToUserID
		}
		ApplyStatus(&task, status, s.now())
		if err := tx.CreateTask(ctx, &task); err != nil {
			return err
		}
		_, err = s.workflow.RecalculateProjectCompletion(ctx, tx, body.ProjectID)
		return err
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[tasks] Task %d created in project %d by %s\n", task.ID, task.ProjectID, userID)
	return &task, nil
}

func (s *TaskService) Get(ctx context.Context, userID string, taskID uint) (*models.TaskItem, error) {
	return s.taskAccess(ctx, s.store, CACHED, userID, taskID, rbac.PROJECT_READ)
}

func (s *TaskService) List(ctx context.Context, userID string, projectID uint) ([]models.TaskItem, error) {
	if _, err := s.resolver.AuthorizeProject(ctx, s.store, CACHED, projectID, userID, rbac.PROJECT_READ); err != nil {
		return nil, err
	}
	return s.store.ListTasks(ctx, projectID)
}

// Details returns the task with its comments and time entries.
func (s *TaskService) Details(ctx context.Context, userID string, taskID uint) (*TaskDetails, error) {
	task, err := s.taskAccess(ctx, s.store, CACHED, userID, taskID, rbac.PROJECT_READ)
	if err != nil {
		return nil, err
	}
	comments, err := s.store.ListComments(ctx, taskID)
	if err != nil {
		return nil, err
	}
	entries, err := s.store.ListTimeEntries(ctx, taskID)
	if err != nil {
		return nil, err
	}
	return &TaskDetails{TaskItem: *task, Comments: comments, TimeEntries: entries}, nil
}

// byDueDate puts the earliest due date first and tasks without one last.
func byDueDate(a, b models.TaskItem) int {
	switch {
	case a.DueDate == nil && b.DueDate == nil:
		return cmp.Compare(a.ID, b.ID)
	case a.DueDate == nil:
		return 1
	case b.DueDate == nil:
		return -1
	}
	return cmp.Or(a.DueDate.Compare(*b.DueDate), cmp.Compare(a.ID, b.ID))
}

func newestFirst(a, b models.TaskItem) int {
	return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), cmp.Compare(b.ID, a.ID))
}

func recentlyUpdatedFirst(a, b models.TaskItem) int {
	return cmp.Or(b.UpdatedAt.Compare(a.UpdatedAt), cmp.Compare(b.ID, a.ID))
}

func (s *TaskService) listForMember(ctx context.Context, userID string, q TaskQuery, order func(a, b models.TaskItem) int) ([]models.TaskItem, error) {
	tasks, err := s.store.ListTasksForMember(ctx, userID, q)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(tasks, order)
	return tasks, nil
}

// startOfDay is midnight UTC of the current day.
func (s *TaskService) startOfDay() time.Time {
	y, m, d := s.now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ListAssigned returns tasks assigned to the caller in projects they belong to.
func (s *TaskService) ListAssigned(ctx context.Context, userID string) ([]models.TaskItem, error) {
	return s.listForMember(ctx, userID, TaskQuery{AssignedTo: userID}, byDueDate)
}

func (s *TaskService) ListCreated(ctx context.Context, userID string) ([]models.TaskItem, error) {
	return s.listForMember(ctx, userID, TaskQuery{CreatedBy: userID}, newestFirst)
}

// ListOverdue returns open tasks due before today across the caller's projects.
func (s *TaskService) ListOverdue(ctx context.Context, userID string) ([]models.TaskItem, error) {
	today := s.startOfDay()
	return s.listForMember(ctx, userID, TaskQuery{DueBefore: &today, OpenOnly: true}, byDueDate)
}

func (s *TaskService) ListDueToday(ctx context.Context, userID string) ([]models.TaskItem, error) {
	today := s.startOfDay()
	tomorrow := today.AddDate(0, 0, 1)
	return s.listForMember(ctx, userID, TaskQuery{DueFrom: &today, DueBefore: &tomorrow, OpenOnly: true}, byDueDate)
}

// ListUpcoming returns open tasks due between today and the end of the day
// that is days ahead. Zero days means a week.
func (s *TaskService) ListUpcoming(ctx context.Context, userID string, days int) ([]models.TaskItem, error) {
	if days == 0 {
		days = defaultUpcomingDays
	}
	if days < 1 || days > 365 {
		return nil, Invalid("days must be between 1 and 365")
	}
	today := s.startOfDay()
	end := today.AddDate(0, 0, days+1)
	return s.listForMember(ctx, userID, TaskQuery{DueFrom: &today, DueBefore: &end, OpenOnly: true}, byDueDate)
}

// Search matches term against task titles and descriptions. A non-zero projectID
// limits the search to that project, which the caller must be able to read.
func (s *TaskService) Search(ctx context.Context, userID string, term string, projectID uint) ([]models.TaskItem, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, Invalid("search term is required")
	}
	if projectID != 0 {
		if _, err := s.resolver.AuthorizeProject(ctx, s.store, CACHED, projectID, userID, rbac.PROJECT_READ); err != nil {
			return nil, err
		}
	}
	return s.listForMember(ctx, userID, TaskQuery{ProjectID: projectID, Search: term}, recentlyUpdatedFirst)
}

// mutate runs fn on a task inside a transaction and recomputes the project completion afterwards.
func (s *TaskService) mutate(ctx context.Context, userID string, taskID uint, fn func(tx Store, task *models.TaskItem) error) (*models.TaskItem, error) {
	var task *models.TaskItem
	err := s.store.Transaction(ctx, func(tx Store) error {
		t, err := s.taskAccess(ctx, tx, STRICT, userID, taskID, rbac.PROJECT_EDIT_TASKS)
		if err != nil {
			return err
		}
		if err := fn(tx, t); err != nil {
			return err
		}
		if err := tx.SaveTask(ctx, t); err != nil {
			return err
		}
		task = t
		_, err = s.workflow.RecalculateProjectCompletion(ctx, tx, t.ProjectID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) Update(ctx context.Context, userID string, taskID uint, body *types.UpdateTaskRequestBody) (*models.TaskItem, error) {
	return s.mutate(ctx, userID, taskID, func(tx Store, t *models.TaskItem) error {
		if body.Title != nil {
			title := strings.TrimSpace(*body.Title)
			if title == "" {
				return Invalid("task title is required")
			}
			t.Title = title
		}
		if body.Description != nil {
			t.Description = *body.Description
		}
		if body.Priority != nil {
			priority, err := types.ParsePriority(*body.Priority)
			if err != nil {
				return Invalid("%s", err.Error())
			}
			t.Priority = priority
		}
		if body.DueDate != nil {
			t.DueDate = body.DueDate
		}
		if body.EstimatedHours != nil {
			if *body.EstimatedHours < 0 {
				return Invalid("estimated hours must not be negative")
			}
			t.EstimatedHours = body.EstimatedHours
		}
		if body.Tags != nil {
			t.Tags = *body.Tags
		}
		if body.CompletionPercentage != nil {
			return ApplyProgress(t, *body.CompletionPercentage, s.now())
		}
		return nil
	})
}

// Move puts the task into another status of the same project.
func (s *TaskService) Move(ctx context.Context, userID string, taskID uint, body *types.MoveTaskRequestBody) (*models.TaskItem, error) {
	return s.mutate(ctx, userID, taskID, func(tx Store, t *models.TaskItem) error {
		status, err := s.statusInProject(ctx, tx, body.TaskStatusID, t.ProjectID)
		if err != nil {
			return err
		}
		ApplyStatus(t, status, s.now())
		return nil
	})
}

func (s *TaskService) UpdateProgress(ctx context.Context, userID string, taskID uint, body *types.UpdateTaskProgressRequestBody) (*models.TaskItem, error) {
	if body.CompletionPercentage == nil {
		return nil, Invalid("completion percentage is required")
	}
	return s.mutate(ctx, userID, taskID, func(tx Store, t *models.TaskItem) error {
		return ApplyProgress(t, *body.CompletionPercentage, s.now())
	})
}

// Assign sets or, with an empty assignee, clears the task's assignee.
func (s *TaskService) Assign(ctx context.Context, userID string, taskID uint, body *types.AssignTaskRequestBody) (*models.TaskItem, error) {
	return s.mutate(ctx, userID, taskID, func(tx Store, t *models.TaskItem) error {
		if body.AssigneeID == nil || *body.AssigneeID == "" {
			t.AssignedToUserID = nil
			return nil
		}
		if err := s.requireProjectMember(ctx, tx, t.ProjectID, *body.AssigneeID); err != nil {
			return err
		}
		assignee := *body.AssigneeID
		t.AssignedToUserID = &assignee
		return nil
	})
}

func (s *TaskService) Delete(ctx context.Context, userID string, taskID uint) error {
	_, err := s.mutate(ctx, userID, taskID, func(tx Store, t *models.TaskItem) error {
		t.IsActive = false
		return nil
	})
	if err == nil {
		log.Printf("[tasks] Task %d deactivated by %s\n", taskID, userID)
	}
	return err
}

func (s *TaskService) AddComment(ctx context.Context, userID string, taskID uint, body *types.CreateCommentRequestBody) (*models.TaskComment, error) {
	content := strings.TrimSpace(body.Content)
	if content == "" {
		return nil, Invalid("comment content is required")
	}
	comment := models.TaskComment{
		TaskItemID:      taskID,
		UserID:          userID,
		Content:         content,
		ParentCommentID: body.ParentCommentID,
		IsActive:        true,
	}
	err := s.store.Transaction(ctx, func(tx Store) error {
		if _, err := s.taskAccess(ctx, tx, STRICT, userID, taskID, rbac.PROJECT_COMMENT); err != nil {
			return err
		}
		if body.ParentCommentID != nil {
			parent, err := tx.GetComment(ctx, *body.ParentCommentID)
			if err != nil {
				return err
			}
			if parent.TaskItemID != taskID {
				return Invalid("parent comment belongs to another task")
			}
		}
		return tx.CreateComment(ctx, &comment)
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (s *TaskService) ListComments(ctx context.Context, userID string, taskID uint) ([]models.TaskComment, error) {
	if _, err := s.taskAccess(ctx, s.store, CACHED, userID, taskID, rbac.PROJECT_READ); err != nil {
		return nil, err
	}
	return s.store.ListComments(ctx, taskID)
}

// LogTime records hours against a task. Entries are stored as-is; nothing aggregates them.
func (s *TaskService) LogTime(ctx context.Context, userID string, taskID uint, body *types.LogTimeRequestBody) (*models.TimeEntry, error) {
	if body.Hours <= 0 || body.Hours > 24 {
		return nil, Invalid("hours must be greater than 0 and at most 24")
	}
	entry := models.TimeEntry{
		TaskItemID:  taskID,
		UserID:      userID,
		Hours:       body.Hours,
		Date:        s.now(),
		Description: body.Description,
		IsBillable:  true,
	}
	if body.Date != nil {
		entry.Date = *body.Date
	}
	if body.IsBillable != nil {
		entry.IsBillable = *body.IsBillable
	}
	err := s.store.Transaction(ctx, func(tx Store) error {
		if _, err := s.taskAccess(ctx, tx, STRICT, userID, taskID, rbac.PROJECT_EDIT_TASKS); err != nil {
			return err
		}
		return tx.CreateTimeEntry(ctx, &entry)
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *TaskService) ListTimeEntries(ctx context.Context, userID string, taskID uint) ([]models.TimeEntry, error) {
	if _, err := s.taskAccess(ctx, s.store, CACHED, userID, taskID, rbac.PROJECT_READ); err != nil {
		return nil, err
	}
	return s.store.ListTimeEntries(ctx, taskID)
}
