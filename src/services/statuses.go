package services

import (
	"context"
	"taskflow/src/models"
	"taskflow/src/rbac"
	"taskflow/src/types"
)

// StatusService gates workflow changes behind the manage_workflow permission.
type StatusService struct {
	store    Store
	resolver *Resolver
	workflow *Workflow
}

func (s *StatusService) List(ctx context.Context, userID string, projectID uint) ([]models.TaskStatus, error) {
	if _, err := s.resolver.AuthorizeProject(ctx, s.store, CACHED, projectID, userID, rbac.PROJECT_READ); err != nil {
		return nil, err
	}
	return s.workflow.List(ctx, projectID)
}

func (s *StatusService) Get(ctx context.Context, userID string, statusID uint) (*models.TaskStatus, error) {
	status, err := s.workflow.Get(ctx, statusID)
	if err != nil {
		return nil, err
	}
	if _, err := s.resolver.AuthorizeProject(ctx, s.store, CACHED, status.ProjectID, userID, rbac.PROJECT_READ); err != nil {
		return nil, err
	}
	return status, nil
}

func (s *StatusService) Create(ctx context.Context, userID string, body *types.CreateTaskStatusRequestBody) (*models.TaskStatus, error) {
	if _, err := s.resolver.AuthorizeProject(ctx, s.store, STRICT, body.ProjectID, userID, rbac.PROJECT_MANAGE_WORKFLOW); err != nil {
		return nil, err
	}
	return s.workflow.Create(ctx, body)
}

func (s *StatusService) Update(ctx context.Context, userID string, statusID uint, body *types.UpdateTaskStatusRequestBody) (*models.TaskStatus, error) {
	if err := s.authorizeStatus(ctx, userID, statusID); err != nil {
		return nil, err
	}
	return s.workflow.Update(ctx, statusID, body)
}

func (s *StatusService) Delete(ctx context.Context, userID string, statusID uint) error {
	if err := s.authorizeStatus(ctx, userID, statusID); err != nil {
		return err
	}
	return s.workflow.Delete(ctx, statusID)
}

func (s *StatusService) Reorder(ctx context.Context, userID string, projectID uint, body *types.ReorderTaskStatusesRequestBody) ([]models.TaskStatus, error) {
	if _, err := s.resolver.AuthorizeProject(ctx, s.store, STRICT, projectID, userID, rbac.PROJECT_MANAGE_WORKFLOW); err != nil {
		return nil, err
	}
	return s.workflow.Reorder(ctx, projectID, body.StatusIDs)
}

func (s *StatusService) authorizeStatus(ctx context.Context, userID string, statusID uint) error {
	status, err := s.store.GetStatus(ctx, statusID)
	if err != nil {
		return err
	}
	_, err = s.resolver.AuthorizeProject(ctx, s.store, STRICT, status.ProjectID, userID, rbac.PROJECT_MANAGE_WORKFLOW)
	return err
}
