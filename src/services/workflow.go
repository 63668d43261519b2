package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"strings"
	"taskflow/src/models"
	"taskflow/src/types"
	"time"

	"github.com/go-playground/validator/v10"
)

const DEFAULT_STATUS_COLOR = "#6B7280"

var seedStatuses = []models.TaskStatus{
	{Name: "To Do", Color: DEFAULT_STATUS_COLOR, Order: 0, IsDefault: true},
	{Name: "In Progress", Color: "#3B82F6", Order: 1},
	{Name: "Done", Color: "#10B981", Order: 2, IsCompleted: true},
}

// Workflow owns the ordered, per-project set of task statuses and the effect of
// status and progress changes on tasks.
type Workflow struct {
	store    Store
	cache    Cache
	ttl      time.Duration
	validate *validator.Validate
}

func NewWorkflow(store Store, cache Cache, ttl time.Duration) *Workflow {
	return &Workflow{store: store, cache: cache, ttl: ttl, validate: validator.New()}
}

func statusesKey(projectID uint) string {
	return fmt.Sprintf("statuses:project:%d", projectID)
}

// CreateDefaultStatuses seeds a new project. It must run inside the transaction
// that creates the project.
func (w *Workflow) CreateDefaultStatuses(ctx context.Context, tx Store, projectID uint) ([]models.TaskStatus, error) {
	statuses := make([]models.TaskStatus, 0, len(seedStatuses))
	for _, seed := range seedStatuses {
		s := seed
		s.ProjectID = projectID
		if err := tx.SaveStatus(ctx, &s); err != nil {
			return nil, fmt.Errorf("seeding status %q: %w", s.Name, err)
		}
		statuses = append(statuses, s)
	}
	return statuses, nil
}

// List returns the project's statuses sorted by order.
func (w *Workflow) List(ctx context.Context, projectID uint) ([]models.TaskStatus, error) {
	key := statusesKey(projectID)
	if w.cache != nil {
		val, ok, err := w.cache.Get(ctx, key)
		if err != nil {
			log.Printf("[workflow] cache read %s failed: %s\n", key, err.Error())
		} else if ok {
			var statuses []models.TaskStatus
			if err := json.Unmarshal([]byte(val), &statuses); err == nil {
				return statuses, nil
			}
		}
	}
	statuses, err := w.store.ListStatuses(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if w.cache != nil {
		if b, err := json.Marshal(statuses); err == nil {
			if err := w.cache.Set(ctx, key, string(b), w.ttl); err != nil {
				log.Printf("[workflow] cache write %s failed: %s\n", key, err.Error())
			}
		}
	}
	return statuses, nil
}

func (w *Workflow) Get(ctx context.Context, id uint) (*models.TaskStatus, error) {
	return w.store.GetStatus(ctx, id)
}

func (w *Workflow) invalidate(ctx context.Context, projectID uint) {
	if w.cache == nil {
		return
	}
	if err := w.cache.Delete(ctx, statusesKey(projectID)); err != nil {
		log.Printf("[workflow] cache invalidation failed: %s\n", err.Error())
	}
}

func (w *Workflow) validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", Invalid("status name is required")
	}
	if len(name) > 100 {
		return "", Invalid("status name must be at most 100 characters")
	}
	return name, nil
}

func (w *Workflow) validateColor(color string) (string, error) {
	if color == "" {
		return DEFAULT_STATUS_COLOR, nil
	}
	if len(color) > 7 || w.validate.Var(color, "hexcolor") != nil {
		return "", Invalid("color %q must be a hex color such as #6B7280", color)
	}
	return color, nil
}

// Create adds a status. Setting IsDefault clears the previous default in the same transaction.
func (w *Workflow) Create(ctx context.Context, body *types.CreateTaskStatusRequestBody) (*models.TaskStatus, error) {
	name, err := w.validateName(body.Name)
	if err != nil {
		return nil, err
	}
	color, err := w.validateColor(body.Color)
	if err != nil {
		return nil, err
	}
	if body.Order < 0 {
		return nil, Invalid("order must not be negative")
	}
	status := models.TaskStatus{
		ProjectID:   body.ProjectID,
		Name:        name,
		Color:       color,
		Order:       body.Order,
		IsDefault:   body.IsDefault,
		IsCompleted: body.IsCompleted,
	}
	err = w.store.Transaction(ctx, func(tx Store) error {
		if err := tx.LockProject(ctx, body.ProjectID); err != nil {
			return err
		}
		if status.IsDefault {
			if err := tx.ClearDefaultStatus(ctx, body.ProjectID, 0); err != nil {
				return err
			}
		}
		return tx.SaveStatus(ctx, &status)
	})
	if err != nil {
		return nil, err
	}
	w.invalidate(ctx, status.ProjectID)
	log.Printf("[workflow] Status %d (%s) created in project %d\n", status.ID, status.Name, status.ProjectID)
	return &status, nil
}

// Update applies a partial change. Clearing IsDefault is allowed and may leave the
// project without a default until another status claims it.
func (w *Workflow) Update(ctx context.Context, id uint, body *types.UpdateTaskStatusRequestBody) (*models.TaskStatus, error) {
	current, err := w.store.GetStatus(ctx, id)
	if err != nil {
		return nil, err
	}
	var status *models.TaskStatus
	err = w.store.Transaction(ctx, func(tx Store) error {
		if err := tx.LockProject(ctx, current.ProjectID); err != nil {
			return err
		}
		s, err := tx.GetStatus(ctx, id)
		if err != nil {
			return err
		}
		if body.Name != nil {
			if s.Name, err = w.validateName(*body.Name); err != nil {
				return err
			}
		}
		if body.Color != nil {
			if s.Color, err = w.validateColor(*body.Color); err != nil {
				return err
			}
		}
		if body.Order != nil {
			if *body.Order < 0 {
				return Invalid("order must not be negative")
			}
			s.Order = *body.Order
		}
		if body.IsCompleted != nil {
			s.IsCompleted = *body.IsCompleted
		}
		if body.IsDefault != nil {
			if *body.IsDefault && !s.IsDefault {
				if err := tx.ClearDefaultStatus(ctx, s.ProjectID, s.ID); err != nil {
					return err
				}
			}
			s.IsDefault = *body.IsDefault
		}
		status = s
		return tx.SaveStatus(ctx, s)
	})
	if err != nil {
		return nil, err
	}
	w.invalidate(ctx, status.ProjectID)
	return status, nil
}

// Delete removes a status no active task references.
func (w *Workflow) Delete(ctx context.Context, id uint) error {
	current, err := w.store.GetStatus(ctx, id)
	if err != nil {
		return err
	}
	err = w.store.Transaction(ctx, func(tx Store) error {
		if err := tx.LockProject(ctx, current.ProjectID); err != nil {
			return err
		}
		inUse, err := tx.CountActiveTasksWithStatus(ctx, id)
		if err != nil {
			return err
		}
		if inUse > 0 {
			return Conflict("status %q is in use by %d task(s)", current.Name, inUse)
		}
		return tx.DeleteStatus(ctx, id)
	})
	if err != nil {
		return err
	}
	w.invalidate(ctx, current.ProjectID)
	log.Printf("[workflow] Status %d removed from project %d\n", id, current.ProjectID)
	return nil
}

// Reorder assigns order = position for every status of the project. ids must be
// a permutation of the project's status ids.
func (w *Workflow) Reorder(ctx context.Context, projectID uint, ids []uint) ([]models.TaskStatus, error) {
	position := make(map[uint]int, len(ids))
	for i, id := range ids {
		if _, dup := position[id]; dup {
			return nil, Invalid("status %d appears more than once", id)
		}
		position[id] = i
	}
	var result []models.TaskStatus
	err := w.store.Transaction(ctx, func(tx Store) error {
		if err := tx.LockProject(ctx, projectID); err != nil {
			return err
		}
		statuses, err := tx.ListStatuses(ctx, projectID)
		if err != nil {
			return err
		}
		if len(statuses) != len(ids) {
			return Conflict("expected %d status ids, got %d", len(statuses), len(ids))
		}
		for _, s := range statuses {
			if _, ok := position[s.ID]; !ok {
				return Conflict("status %d is missing from the new order", s.ID)
			}
		}
		result = make([]models.TaskStatus, len(ids))
		for _, s := range statuses {
			s.Order = position[s.ID]
			if err := tx.SaveStatus(ctx, &s); err != nil {
				return err
			}
			result[s.Order] = s
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	w.invalidate(ctx, projectID)
	return result, nil
}

// ResolveDefaultStatus returns the status new tasks start in. A project without
// one is misconfigured and yields Conflict.
func (w *Workflow) ResolveDefaultStatus(ctx context.Context, st Store, projectID uint) (*models.TaskStatus, error) {
	statuses, err := st.ListStatuses(ctx, projectID)
	if err != nil {
		return nil, err
	}
	for i := range statuses {
		if statuses[i].IsDefault {
			return &statuses[i], nil
		}
	}
	return nil, Conflict("project %d has no default status", projectID)
}

// ApplyStatus moves a task into status. Completed statuses force 100% and stamp
// CompletedDate once. Any other status clears CompletedDate and keeps the percentage.
func ApplyStatus(task *models.TaskItem, status *models.TaskStatus, now time.Time) {
	task.TaskStatusID = status.ID
	if status.IsCompleted {
		task.CompletionPercentage = 100
		if task.CompletedDate == nil {
			task.CompletedDate = &now
		}
		return
	}
	task.CompletedDate = nil
}

// ApplyProgress sets the completion percentage, which must lie in [0, 100].
func ApplyProgress(task *models.TaskItem, pct float64, now time.Time) error {
	if math.IsNaN(pct) || pct < 0 || pct > 100 {
		return Invalid("completion percentage must be between 0 and 100")
	}
	task.CompletionPercentage = pct
	if pct >= 100 {
		if task.CompletedDate == nil {
			task.CompletedDate = &now
		}
		return nil
	}
	task.CompletedDate = nil
	return nil
}

func completion(c TaskCounts) float64 {
	if c.Total == 0 {
		return 0
	}
	pct := float64(c.Completed) / float64(c.Total) * 100
	return math.Round(pct*100) / 100
}

// RecalculateProjectCompletion recomputes the project's aggregate percentage
// through st, normally the transaction that changed a task.
func (w *Workflow) RecalculateProjectCompletion(ctx context.Context, st Store, projectID uint) (float64, error) {
	counts, err := st.CountTasks(ctx, projectID)
	if err != nil {
		return 0, err
	}
	pct := completion(counts)
	project, err := st.GetProject(ctx, projectID)
	if err != nil {
		return 0, err
	}
	if project.CompletionPercentage != pct {
		project.CompletionPercentage = pct
		if err := st.SaveProject(ctx, project); err != nil {
			return 0, err
		}
	}
	return pct, nil
}
