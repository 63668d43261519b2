package db

import (
	"context"
	"errors"
	"log"
	"regexp"
	"taskflow/src/services"
	"taskflow/src/types"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func NewMockDB() (*gorm.DB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		log.Fatalf("An error '%s' was not expected when opening a stub database connection", err)
	}

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	if err != nil {
		log.Fatalf("An error '%s' was not expected when opening gorm database", err)
	}

	return gormDB, mock
}

func TestNewDB(t *testing.T) {
	gormDB, _ := NewMockDB()
	NewDB(gormDB)

	assert.Same(t, gormDB, GetDb())
}

func TestGetMembership(t *testing.T) {
	gormDB, mock := NewMockDB()
	store := NewStore(gormDB)
	joined := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT m.organization_id AS scope_id, m.user_id, m.role, m.joined_at FROM organization_members AS m JOIN organizations ON organizations.id = m.organization_id WHERE .*m.is_active = .* AND organizations.is_active = `).
		WillReturnRows(sqlmock.NewRows([]string{"scope_id", "user_id", "role", "joined_at"}).AddRow(7, "user-1", "Admin", joined))

	m, err := store.GetMembership(context.Background(), types.SCOPE_ORGANIZATION, 7, "user-1")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, types.SCOPE_ORGANIZATION, m.Scope)
	assert.Equal(t, uint(7), m.ScopeID)
	assert.Equal(t, "Admin", m.Role)
	assert.True(t, joined.Equal(m.JoinedAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetMembershipProjectRequiresActiveOrganization(t *testing.T) {
	gormDB, mock := NewMockDB()
	store := NewStore(gormDB)

	mock.ExpectQuery(`FROM project_members AS m JOIN projects ON projects.id = m.project_id JOIN organizations ON organizations.id = projects.organization_id WHERE .*m.is_active = .* AND projects.is_active = .* AND organizations.is_active = `).
		WillReturnRows(sqlmock.NewRows([]string{"scope_id", "user_id", "role", "joined_at"}))

	m, err := store.GetMembership(context.Background(), types.SCOPE_PROJECT, 3, "user-1")
	assert.NoError(t, err)
	assert.Nil(t, m)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetMembershipUnknownScope(t *testing.T) {
	gormDB, _ := NewMockDB()
	_, err := NewStore(gormDB).GetMembership(context.Background(), types.ScopeType("team"), 1, "user-1")
	assert.Error(t, err)
}

func TestGetProjectNotFound(t *testing.T) {
	gormDB, mock := NewMockDB()
	store := NewStore(gormDB)

	mock.ExpectQuery(`SELECT .*projects.*\* FROM "projects" JOIN organizations ON organizations.id = projects.organization_id WHERE projects.is_active = \$1 AND organizations.is_active = \$2 AND projects.id = \$3`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := store.GetProject(context.Background(), 42)
	assert.ErrorIs(t, err, services.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLockProject(t *testing.T) {
	gormDB, mock := NewMockDB()
	store := NewStore(gormDB)

	mock.ExpectQuery(`SELECT .*id.* FROM "projects" WHERE id = \$1 AND is_active = \$2 ORDER BY "projects"."id" LIMIT .*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))

	assert.NoError(t, store.LockProject(context.Background(), 5))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLockProjectMissing(t *testing.T) {
	gormDB, mock := NewMockDB()
	store := NewStore(gormDB)

	mock.ExpectQuery(`FROM "projects" WHERE id = \$1 AND is_active = \$2 .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	assert.ErrorIs(t, store.LockProject(context.Background(), 5), services.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClearDefaultStatus(t *testing.T) {
	gormDB, mock := NewMockDB()
	store := NewStore(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "task_statuses" SET "is_default"=\$1,"updated_at"=\$2 WHERE project_id = \$3 AND is_default = \$4 AND id <> \$5`).
		WithArgs(false, sqlmock.AnyArg(), 5, true, 9).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	assert.NoError(t, store.ClearDefaultStatus(context.Background(), 5, 9))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountTasks(t *testing.T) {
	gormDB, mock := NewMockDB()
	store := NewStore(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) AS total, COUNT(*) FILTER (WHERE completion_percentage >= 100) AS completed FROM "task_items"`)).
		WillReturnRows(sqlmock.NewRows([]string{"total", "completed"}).AddRow(4, 1))

	counts, err := store.CountTasks(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, services.TaskCounts{Total: 4, Completed: 1}, counts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListTasksForMember(t *testing.T) {
	gormDB, mock := NewMockDB()
	store := NewStore(gormDB)

	mock.ExpectQuery(`SELECT task_items\.\* FROM "task_items" JOIN projects ON projects.id = task_items.project_id JOIN project_members ON project_members.project_id = task_items.project_id JOIN organizations ON .* WHERE .*project_members.user_id = \$\d+ AND task_items.project_id = \$\d+ AND \(task_items.title ILIKE \$\d+ OR task_items.description ILIKE \$\d+\).* ORDER BY task_items.id asc`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}).AddRow(4, "50% off"))

	tasks, err := store.ListTasksForMember(context.Background(), "user-1", services.TaskQuery{ProjectID: 2, Search: "50%"})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "50% off", tasks[0].Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLikeEscaper(t *testing.T) {
	assert.Equal(t, `50\% off\_now \\o/`, likeEscaper.Replace(`50% off_now \o/`))
}

func TestListActiveProjectIDs(t *testing.T) {
	gormDB, mock := NewMockDB()
	store := NewStore(gormDB)

	mock.ExpectQuery(`SELECT .*id.* FROM "projects" JOIN organizations ON organizations.id = projects.organization_id WHERE projects.is_active = \$1 AND organizations.is_active = \$2 ORDER BY projects.id asc`).
		WithArgs(true, true).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(3))

	ids, err := store.ListActiveProjectIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []uint{1, 3}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRollsBackOnError(t *testing.T) {
	gormDB, mock := NewMockDB()
	store := NewStore(gormDB)
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := store.Transaction(context.Background(), func(tx services.Store) error {
		assert.NotSame(t, store, tx)
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionCommits(t *testing.T) {
	gormDB, mock := NewMockDB()
	store := NewStore(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "task_statuses" SET "is_default"`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := store.Transaction(context.Background(), func(tx services.Store) error {
		return tx.ClearDefaultStatus(context.Background(), 1, 0)
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
