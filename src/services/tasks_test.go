package services_test

import (
	"math"
	"taskflow/src/models"
	"taskflow/src/services"
	"taskflow/src/types"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMovingOutOfCompletedKeepsPercentage(t *testing.T) {
	f := newFixture(t, nil)
	a := f.user(t, "alice")
	org := f.org(t, a, "Acme")
	p := f.project(t, a, org.ID, "Launch")
	done := f.statusNamed(t, p.ID, "Done")
	doing := f.statusNamed(t, p.ID, "In Progress")
	task := f.task(t, a, p.ID, "Ship it")

	_, err := f.svc.Tasks.Move(f.ctx, a, task.ID, &types.MoveTaskRequestBody{TaskStatusID: done.ID})
	require.NoError(t, err)

	back, err := f.svc.Tasks.Move(f.ctx, a, task.ID, &types.MoveTaskRequestBody{TaskStatusID: doing.ID})
	require.NoError(t, err)
	assert.Nil(t, back.CompletedDate)
	assert.Equal(t, 100.0, back.CompletionPercentage)

	lowered, err := f.svc.Tasks.UpdateProgress(f.ctx, a, task.ID, &types.UpdateTaskProgressRequestBody{CompletionPercentage: ptr(60.0)})
	require.NoError(t, err)
	assert.Equal(t, 60.0, lowered.CompletionPercentage)
	assert.Zero(t, f.completion(t, p.ID))
}

func TestProjectCompletionIsRounded(t *testing.T) {
	f := newFixture(t, nil)
	a := f.user(t, "alice")
	org := f.org(t, a, "Acme")
	p := f.project(t, a, org.ID, "Launch")
	done := f.statusNamed(t, p.ID, "Done")

	first := f.task(t, a, p.ID, "One")
	f.task(t, a, p.ID, "Two")
	third := f.task(t, a, p.ID, "Three")
	assert.Zero(t, f.completion(t, p.ID))

	_, err := f.svc.Tasks.Move(f.ctx, a, first.ID, &types.MoveTaskRequestBody{TaskStatusID: done.ID})
	require.NoError(t, err)
	assert.Equal(t, 33.33, f.completion(t, p.ID))

	_, err = f.svc.Tasks.UpdateProgress(f.ctx, a, third.ID, &types.UpdateTaskProgressRequestBody{CompletionPercentage: ptr(100.0)})
	require.NoError(t, err)
	assert.Equal(t, 66.67, f.completion(t, p.ID))

	require.NoError(t, f.svc.Tasks.Delete(f.ctx, a, third.ID))
	assert.Equal(t, 50.0, f.completion(t, p.ID))

	tasks, err := f.svc.Tasks.List(f.ctx, a, p.ID)
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
}

func TestUpdateProgressValidation(t *testing.T) {
	f := newFixture(t, nil)
	a := f.user(t, "alice")
	org := f.org(t, a, "Acme")
	p := f.project(t, a, org.ID, "Launch")
	task := f.task(t, a, p.ID, "Ship it")

	_, err := f.svc.Tasks.UpdateProgress(f.ctx, a, task.ID, &types.UpdateTaskProgressRequestBody{})
	assert.ErrorIs(t, err, services.ErrInvalid)
	_, err = f.svc.Tasks.UpdateProgress(f.ctx, a, task.ID, &types.UpdateTaskProgressRequestBody{CompletionPercentage: ptr(101.0)})
	assert.ErrorIs(t, err, services.ErrInvalid)
	_, err = f.svc.Tasks.UpdateProgress(f.ctx, a, task.ID, &types.UpdateTaskProgressRequestBody{CompletionPercentage: ptr(math.NaN())})
	assert.ErrorIs(t, err, services.ErrInvalid)

	finished, err := f.svc.Tasks.Update(f.ctx, a, task.ID, &types.UpdateTaskRequestBody{CompletionPercentage: ptr(100.0)})
	require.NoError(t, err)
	require.NotNil(t, finished.CompletedDate)
	assert.Equal(t, f.now, *finished.CompletedDate)
	assert.Equal(t, 100.0, f.completion(t, p.ID))
}

func TestCreateTaskValidation(t *testing.T) {
	f := newFixture(t, nil)
	a := f.user(t, "alice")
	org := f.org(t, a, "Acme")
	p := f.project(t, a, org.ID, "Launch")
	other := f.project(t, a, org.ID, "Other")
	foreign := f.statusNamed(t, other.ID, "Done")

	_, err := f.svc.Tasks.Create(f.ctx, a, &types.CreateTaskRequestBody{ProjectID: p.ID, Title: " "})
	assert.ErrorIs(t, err, services.ErrInvalid)
	_, err = f.svc.Tasks.Create(f.ctx, a, &types.CreateTaskRequestBody{ProjectID: p.ID, Title: "Bad priority", Priority: "Urgent"})
	assert.ErrorIs(t, err, services.ErrInvalid)
	_, err = f.svc.Tasks.Create(f.ctx, a, &types.CreateTaskRequestBody{ProjectID: p.ID, Title: "Negative", EstimatedHours: ptr(-1.5)})
	assert.ErrorIs(t, err, services.ErrInvalid)
	_, err = f.svc.Tasks.Create(f.ctx, a, &types.CreateTaskRequestBody{ProjectID: p.ID, Title: "Wrong board", TaskStatusID: &foreign.ID})
	assert.ErrorIs(t, err, services.ErrInvalid)
	_, err = f.svc.Tasks.Create(f.ctx, a, &types.CreateTaskRequestBody{ProjectID: p.ID, Title: "Stranger", AssignedToUserID: ptr("nobody")})
	assert.ErrorIs(t, err, services.ErrInvalid)

	tasks, err := f.svc.Tasks.List(f.ctx, a, p.ID)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	task := f.task(t, a, p.ID, "Fine")
	_, err = f.svc.Tasks.Move(f.ctx, a, task.ID, &types.MoveTaskRequestBody{TaskStatusID: foreign.ID})
	assert.ErrorIs(t, err, services.ErrInvalid)
}

func TestAssignTask(t *testing.T) {
	f := newFixture(t, nil)
	a := f.user(t, "alice")
	b := f.user(t, "bob")
	org := f.org(t, a, "Acme")
	f.addOrgMember(t, a, org.ID, b, types.ORG_MEMBER)
	p := f.project(t, a, org.ID, "Launch")
	task := f.task(t, a, p.ID, "Design")

	_, err := f.svc.Tasks.Assign(f.ctx, a, task.ID, &types.AssignTaskRequestBody{AssigneeID: &b})
	assert.ErrorIs(t, err, services.ErrInvalid)

	f.addProjectMember(t, a, p.ID, b, types.PROJECT_CONTRIBUTOR)
	assigned, err := f.svc.Tasks.Assign(f.ctx, a, task.ID, &types.AssignTaskRequestBody{AssigneeID: &b})
	require.NoError(t, err)
	require.NotNil(t, assigned.AssignedToUserID)
	assert.Equal(t, b, *assigned.AssignedToUserID)

	cleared, err := f.svc.Tasks.Assign(f.ctx, b, task.ID, &types.AssignTaskRequestBody{AssigneeID: ptr("")})
	require.NoError(t, err)
	assert.Nil(t, cleared.AssignedToUserID)
}

func TestTaskAccessFollowsProjectMembership(t *testing.T) {
	f := newFixture(t, nil)
	a := f.user(t, "alice")
	mallory := f.user(t, "mallory")
	org := f.org(t, a, "Acme")
	p := f.project(t, a, org.ID, "Launch")
	task := f.task(t, a, p.ID, "Secret")

	_, err := f.svc.Tasks.Get(f.ctx, mallory, task.ID)
	assert.ErrorIs(t, err, services.ErrUnauthorized)
	_, err = f.svc.Tasks.ListComments(f.ctx, mallory, task.ID)
	assert.ErrorIs(t, err, services.ErrUnauthorized)
	_, err = f.svc.Tasks.Get(f.ctx, a, 404)
	assert.ErrorIs(t, err, services.ErrNotFound)

	got, err := f.svc.Tasks.Get(f.ctx, a, task.ID)
	require.NoError(t, err)
	assert.Equal(t, a, got.CreatedByUserID)
}

func TestComments(t *testing.T) {
	f := newFixture(t, nil)
	a := f.user(t, "alice")
	org := f.org(t, a, "Acme")
	p := f.project(t, a, org.ID, "Launch")
	first := f.task(t, a, p.ID, "First")
	second := f.task(t, a, p.ID, "Second")

	root, err := f.svc.Tasks.AddComment(f.ctx, a, first.ID, &types.CreateCommentRequestBody{Content: "Kicking off"})
	require.NoError(t, err)
	_, err = f.svc.Tasks.AddComment(f.ctx, a, first.ID, &types.CreateCommentRequestBody{Content: "Agreed", ParentCommentID: &root.ID})
	require.NoError(t, err)

	_, err = f.svc.Tasks.AddComment(f.ctx, a, second.ID, &types.CreateCommentRequestBody{Content: "Wrong thread", ParentCommentID: &root.ID})
	assert.ErrorIs(t, err, services.ErrInvalid)
	_, err = f.svc.Tasks.AddComment(f.ctx, a, second.ID, &types.CreateCommentRequestBody{Content: "  "})
	assert.ErrorIs(t, err, services.ErrInvalid)

	comments, err := f.svc.Tasks.ListComments(f.ctx, a, first.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "Kicking off", comments[0].Content)
}

func TestLogTime(t *testing.T) {
	f := newFixture(t, nil)
	a := f.user(t, "alice")
	org := f.org(t, a, "Acme")
	p := f.project(t, a, org.ID, "Launch")
	task := f.task(t, a, p.ID, "Estimate")

	for _, hours := range []float64{0, -2, 24.5} {
		_, err := f.svc.Tasks.LogTime(f.ctx, a, task.ID, &types.LogTimeRequestBody{Hours: hours})
		assert.ErrorIs(t, err, services.ErrInvalid)
	}

	entry, err := f.svc.Tasks.LogTime(f.ctx, a, task.ID, &types.LogTimeRequestBody{Hours: 1.5})
	require.NoError(t, err)
	assert.True(t, entry.IsBillable)
	assert.Equal(t, f.now, entry.Date)

	monday := f.now.Add(-72 * time.Hour)
	_, err = f.svc.Tasks.LogTime(f.ctx, a, task.ID, &types.LogTimeRequestBody{Hours: 8, Date: &monday, IsBillable: ptr(false)})
	require.NoError(t, err)

	entries, err := f.svc.Tasks.ListTimeEntries(f.ctx, a, task.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func titlesOf(tasks []models.TaskItem) []string {
	titles := make([]string, 0, len(tasks))
	for _, task := range tasks {
		titles = append(titles, task.Title)
	}
	return titles
}

func (f *fixture) dueTask(t *testing.T, userID string, projectID uint, title string, due time.Time) *models.TaskItem {
	t.Helper()
	task, err := f.svc.Tasks.Create(f.ctx, userID, &types.CreateTaskRequestBody{ProjectID: projectID, Title: title, DueDate: &due})
	require.NoError(t, err)
	return task
}

func TestDueDateListings(t *testing.T) {
	f := newFixture(t, nil)
	a := f.user(t, "alice")
	c := f.user(t, "carol")
	p := f.project(t, a, f.org(t, a, "Acme").ID, "Launch")
	q := f.project(t, c, f.org(t, c, "Globex").ID, "Elsewhere")
	done := f.statusNamed(t, p.ID, "Done")

	yesterday := f.now.AddDate(0, 0, -1)
	f.dueTask(t, a, p.ID, "Late", yesterday)
	f.dueTask(t, a, p.ID, "Tonight", f.now.Add(8*time.Hour))
	f.dueTask(t, a, p.ID, "This morning", f.now.Add(-2*time.Hour))
	f.dueTask(t, a, p.ID, "Soon", f.now.AddDate(0, 0, 3))
	f.dueTask(t, a, p.ID, "Far", f.now.AddDate(0, 0, 10))
	shipped := f.dueTask(t, a, p.ID, "Shipped", yesterday)
	f.task(t, a, p.ID, "Someday")
	f.dueTask(t, c, q.ID, "Not yours", yesterday)

	_, err := f.svc.Tasks.Move(f.ctx, a, shipped.ID, &types.MoveTaskRequestBody{TaskStatusID: done.ID})
	require.NoError(t, err)

	overdue, err := f.svc.Tasks.ListOverdue(f.ctx, a)
	require.NoError(t, err)
	assert.Equal(t, []string{"Late"}, titlesOf(overdue))

	today, err := f.svc.Tasks.ListDueToday(f.ctx, a)
	require.NoError(t, err)
	assert.Equal(t, []string{"This morning", "Tonight"}, titlesOf(today))

	week, err := f.svc.Tasks.ListUpcoming(f.ctx, a, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"This morning", "Tonight", "Soon"}, titlesOf(week))

	month, err := f.svc.Tasks.ListUpcoming(f.ctx, a, 30)
	require.NoError(t, err)
	assert.Equal(t, []string{"This morning", "Tonight", "Soon", "Far"}, titlesOf(month))

	for _, days := range []int{-1, 366} {
		_, err = f.svc.Tasks.ListUpcoming(f.ctx, a, days)
		assert.ErrorIs(t, err, services.ErrInvalid)
	}

	theirs, err := f.svc.Tasks.ListOverdue(f.ctx, c)
	require.NoError(t, err)
	assert.Equal(t, []string{"Not yours"}, titlesOf(theirs))
}

func TestAssignedAndCreatedListings(t *testing.T) {
	f := newFixture(t, nil)
	a := f.user(t, "alice")
	b := f.user(t, "bob")
	org := f.org(t, a, "Acme")
	f.addOrgMember(t, a, org.ID, b, types.ORG_MEMBER)
	p := f.project(t, a, org.ID, "Launch")
	f.addProjectMember(t, a, p.ID, b, types.PROJECT_CONTRIBUTOR)

	far := f.dueTask(t, a, p.ID, "Far", f.now.AddDate(0, 0, 10))
	soon := f.dueTask(t, a, p.ID, "Soon", f.now.AddDate(0, 0, 2))
	undated := f.task(t, a, p.ID, "Undated")
	f.task(t, b, p.ID, "Bob's own")
	for _, task := range []*models.TaskItem{far, soon, undated} {
		_, err := f.svc.Tasks.Assign(f.ctx, a, task.ID, &types.AssignTaskRequestBody{AssigneeID: &b})
		require.NoError(t, err)
	}

	assigned, err := f.svc.Tasks.ListAssigned(f.ctx, b)
	require.NoError(t, err)
	assert.Equal(t, []string{"Soon", "Far", "Undated"}, titlesOf(assigned))

	created, err := f.svc.Tasks.ListCreated(f.ctx, a)
	require.NoError(t, err)
	assert.Equal(t, []string{"Undated", "Soon", "Far"}, titlesOf(created))
	created, err = f.svc.Tasks.ListCreated(f.ctx, b)
	require.NoError(t, err)
	assert.Equal(t, []string{"Bob's own"}, titlesOf(created))

	// listings follow membership, not authorship or assignment
	require.NoError(t, f.svc.Projects.RemoveMember(f.ctx, a, p.ID, b))
	assigned, err = f.svc.Tasks.ListAssigned(f.ctx, b)
	require.NoError(t, err)
	assert.Empty(t, assigned)
	created, err = f.svc.Tasks.ListCreated(f.ctx, b)
	require.NoError(t, err)
	assert.Empty(t, created)
}

func TestSearchTasks(t *testing.T) {
	f := newFixture(t, nil)
	a := f.user(t, "alice")
	c := f.user(t, "carol")
	p := f.project(t, a, f.org(t, a, "Acme").ID, "Launch")
	other := f.project(t, a, f.org(t, a, "Initech").ID, "Internal")
	q := f.project(t, c, f.org(t, c, "Globex").ID, "Elsewhere")

	_, err := f.svc.Tasks.Create(f.ctx, a, &types.CreateTaskRequestBody{ProjectID: p.ID, Title: "Rocket checklist"})
	require.NoError(t, err)
	_, err = f.svc.Tasks.Create(f.ctx, a, &types.CreateTaskRequestBody{ProjectID: p.ID, Title: "Fuel", Description: "Order ROCKET fuel"})
	require.NoError(t, err)
	_, err = f.svc.Tasks.Create(f.ctx, a, &types.CreateTaskRequestBody{ProjectID: other.ID, Title: "Rocket budget"})
	require.NoError(t, err)
	f.task(t, a, p.ID, "Catering")
	_, err = f.svc.Tasks.Create(f.ctx, c, &types.CreateTaskRequestBody{ProjectID: q.ID, Title: "Rocket rival"})
	require.NoError(t, err)

	found, err := f.svc.Tasks.Search(f.ctx, a, " rocket ", 0)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Rocket checklist", "Fuel", "Rocket budget"}, titlesOf(found))

	found, err = f.svc.Tasks.Search(f.ctx, a, "rocket", p.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Rocket checklist", "Fuel"}, titlesOf(found))

	_, err = f.svc.Tasks.Search(f.ctx, a, "rocket", q.ID)
	assert.ErrorIs(t, err, services.ErrUnauthorized)
	_, err = f.svc.Tasks.Search(f.ctx, a, "   ", 0)
	assert.ErrorIs(t, err, services.ErrInvalid)
}

func TestTaskDetails(t *testing.T) {
	f := newFixture(t, nil)
	a := f.user(t, "alice")
	mallory := f.user(t, "mallory")
	p := f.project(t, a, f.org(t, a, "Acme").ID, "Launch")
	task := f.task(t, a, p.ID, "Ship it")

	_, err := f.svc.Tasks.AddComment(f.ctx, a, task.ID, &types.CreateCommentRequestBody{Content: "On it"})
	require.NoError(t, err)
	_, err = f.svc.Tasks.LogTime(f.ctx, a, task.ID, &types.LogTimeRequestBody{Hours: 2})
	require.NoError(t, err)

	details, err := f.svc.Tasks.Details(f.ctx, a, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.ID, details.ID)
	require.Len(t, details.Comments, 1)
	assert.Equal(t, "On it", details.Comments[0].Content)
	require.Len(t, details.TimeEntries, 1)
	assert.Equal(t, 2.0, details.TimeEntries[0].Hours)

	_, err = f.svc.Tasks.Details(f.ctx, mallory, task.ID)
	assert.ErrorIs(t, err, services.ErrUnauthorized)
}
