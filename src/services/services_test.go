package services_test

import (
	"context"
	"sync"
	"taskflow/src/db"
	"taskflow/src/models"
	"taskflow/src/services"
	"taskflow/src/types"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// memCache is a map-backed services.Cache that ignores TTLs.
type memCache struct {
	mu   sync.Mutex
	vals map[string]string
}

func newMemCache() *memCache {
	return &memCache{vals: map[string]string{}}
}

func (c *memCache) Get(ctx context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.vals[key]
	return v, ok, nil
}

func (c *memCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals[key] = value
	return nil
}

func (c *memCache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.vals, k)
	}
	return nil
}

type fixture struct {
	ctx   context.Context
	store *db.MemoryStore
	svc   *services.Services
	now   time.Time
}

func newFixture(t *testing.T, cache services.Cache) *fixture {
	t.Helper()
	now := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	store := db.NewMemoryStore()
	return &fixture{
		ctx:   context.Background(),
		store: store,
		svc:   services.New(store, cache, services.Options{Now: func() time.Time { return now }}),
		now:   now,
	}
}

func (f *fixture) user(t *testing.T, name string) string {
	t.Helper()
	u, err := f.svc.Users.Register(f.ctx, &types.RegisterUserRequestBody{
		Name:     name,
		Email:    name + "@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)
	return u.ID
}

func (f *fixture) org(t *testing.T, ownerID, name string) *models.Organization {
	t.Helper()
	org, err := f.svc.Organizations.Create(f.ctx, ownerID, &types.CreateOrganizationRequestBody{Name: name})
	require.NoError(t, err)
	return org
}

func (f *fixture) addOrgMember(t *testing.T, actorID string, orgID uint, userID string, role types.OrgRole) {
	t.Helper()
	_, err := f.svc.Organizations.AddMember(f.ctx, actorID, orgID, &types.AddOrganizationMemberRequestBody{UserID: userID, Role: string(role)})
	require.NoError(t, err)
}

func (f *fixture) project(t *testing.T, managerID string, orgID uint, name string) *models.Project {
	t.Helper()
	p, err := f.svc.Projects.Create(f.ctx, managerID, &types.CreateProjectRequestBody{OrganizationID: orgID, Name: name})
	require.NoError(t, err)
	return p
}

func (f *fixture) addProjectMember(t *testing.T, actorID string, projectID uint, userID string, role types.ProjectRole) {
	t.Helper()
	_, err := f.svc.Projects.AddMember(f.ctx, actorID, projectID, &types.AddProjectMemberRequestBody{UserID: userID, Role: string(role)})
	require.NoError(t, err)
}

func (f *fixture) statuses(t *testing.T, projectID uint) []models.TaskStatus {
	t.Helper()
	statuses, err := f.store.ListStatuses(f.ctx, projectID)
	require.NoError(t, err)
	return statuses
}

func (f *fixture) statusNamed(t *testing.T, projectID uint, name string) models.TaskStatus {
	t.Helper()
	for _, s := range f.statuses(t, projectID) {
		if s.Name == name {
			return s
		}
	}
	t.Fatalf("project %d has no status %q", projectID, name)
	return models.TaskStatus{}
}

func (f *fixture) task(t *testing.T, userID string, projectID uint, title string) *models.TaskItem {
	t.Helper()
	task, err := f.svc.Tasks.Create(f.ctx, userID, &types.CreateTaskRequestBody{ProjectID: projectID, Title: title})
	require.NoError(t, err)
	return task
}

func (f *fixture) completion(t *testing.T, projectID uint) float64 {
	t.Helper()
	p, err := f.store.GetProject(f.ctx, projectID)
	require.NoError(t, err)
	return p.CompletionPercentage
}
