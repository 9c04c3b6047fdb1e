package leave_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"go-leave/internal/leave"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupLeaveRepo(t *testing.T) (leave.Repository, *sql.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	return leave.NewRepository(gdb), db, mock
}

func TestLeaveRepository_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	id := uuid.NewString()
	at := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	t.Run("applied", func(t *testing.T) {
		repo, _, mock := setupLeaveRepo(t)
		mock.ExpectExec(`UPDATE "leave_requests" SET .* WHERE id = \$3 AND status = \$4`).
			WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), id, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		ok, err := repo.UpdateStatus(ctx, id, leave.StatusSubmitted, leave.StatusApprovedManager, at)

		assert.NoError(t, err)
		assert.True(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("lost compare and set", func(t *testing.T) {
		repo, _, mock := setupLeaveRepo(t)
		mock.ExpectExec(`UPDATE "leave_requests" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		ok, err := repo.UpdateStatus(ctx, id, leave.StatusSubmitted, leave.StatusApprovedManager, at)

		assert.NoError(t, err)
		assert.False(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestLeaveRepository_FindByIDForUpdate(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("locks the row", func(t *testing.T) {
		repo, _, mock := setupLeaveRepo(t)
		rows := sqlmock.NewRows([]string{"id", "request_number", "owner_id", "status"}).
			AddRow(id.String(), "LR-000001", uuid.NewString(), "SUBMITTED")
		mock.ExpectQuery(`SELECT \* FROM "leave_requests" WHERE id = \$1 .*FOR UPDATE`).
			WillReturnRows(rows)

		l, err := repo.FindByIDForUpdate(ctx, id.String())

		require.NoError(t, err)
		assert.Equal(t, id, l.ID)
		assert.Equal(t, leave.StatusSubmitted, l.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		repo, _, mock := setupLeaveRepo(t)
		mock.ExpectQuery(`FOR UPDATE`).WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.FindByIDForUpdate(ctx, id.String())

		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})
}

func TestLeaveRepository_WithTx(t *testing.T) {
	ctx := context.Background()
	repo, db, mock := setupLeaveRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "leave_transitions"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)

	actorID := uuid.New()
	err = repo.WithTx(tx).CreateTransition(ctx, &leave.TransitionRecord{
		ID:             uuid.New(),
		LeaveRequestID: uuid.New(),
		Action:         leave.ActionSubmitted,
		FromStatus:     leave.StatusDraft,
		ToStatus:       leave.StatusSubmitted,
		ActorKind:      leave.ActorKindUser,
		ActorID:        &actorID,
		OccurredAt:     time.Now(),
	})
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeaveRepository_WithTxKeepsBaseRepositoryUsable(t *testing.T) {
	ctx := context.Background()
	repo, db, mock := setupLeaveRepo(t)
	id := uuid.New()
	at := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "leave_requests" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery(`SELECT \* FROM "leave_requests" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status"}).AddRow(id.String(), "APPROVED_MANAGER"))

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	ok, err := repo.WithTx(tx).UpdateStatus(ctx, id.String(), leave.StatusSubmitted, leave.StatusApprovedManager, at)
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, tx.Commit())

	l, err := repo.FindByID(ctx, id.String())

	require.NoError(t, err)
	assert.Equal(t, leave.StatusApprovedManager, l.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeaveRepository_WithTxIsolatesConcurrentTransactions(t *testing.T) {
	ctx := context.Background()
	repo, db, mock := setupLeaveRepo(t)

	mock.ExpectBegin()
	mock.ExpectBegin()
	mock.ExpectRollback()
	mock.ExpectExec(`INSERT INTO "leave_transitions"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	first, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	second, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)

	firstRepo := repo.WithTx(first)
	secondRepo := repo.WithTx(second)
	require.NoError(t, second.Rollback())

	actorID := uuid.New()
	err = firstRepo.CreateTransition(ctx, &leave.TransitionRecord{
		ID:             uuid.New(),
		LeaveRequestID: uuid.New(),
		Action:         leave.ActionSubmitted,
		FromStatus:     leave.StatusDraft,
		ToStatus:       leave.StatusSubmitted,
		ActorKind:      leave.ActorKindUser,
		ActorID:        &actorID,
		OccurredAt:     time.Now(),
	})
	require.NoError(t, err)
	require.NoError(t, first.Commit())

	_, err = secondRepo.FindByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, sql.ErrTxDone)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeaveRepository_ListTransitions(t *testing.T) {
	repo, _, mock := setupLeaveRepo(t)
	leaveID := uuid.NewString()

	mock.ExpectQuery(`SELECT \* FROM "leave_transitions" WHERE leave_request_id = \$1 AND action = \$2 ORDER BY occurred_at DESC,id DESC LIMIT \$3`).
		WithArgs(leaveID, sqlmock.AnyArg(), 50).
		WillReturnRows(sqlmock.NewRows([]string{"id", "leave_request_id", "action", "actor_kind"}).
			AddRow(uuid.NewString(), leaveID, "rejected", "USER"))

	got, err := repo.ListTransitions(context.Background(), leave.AuditFilter{
		LeaveRequestID: leaveID,
		Action:         leave.ActionRejected,
		Limit:          50,
	})

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, leave.ActionRejected, got[0].Action)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeaveRepository_FindExpirable(t *testing.T) {
	ctx := context.Background()
	cutoff := time.Date(2026, 3, 7, 9, 0, 0, 0, time.UTC)

	t.Run("first page", func(t *testing.T) {
		repo, _, mock := setupLeaveRepo(t)
		mock.ExpectQuery(`SELECT \* FROM "leave_requests" WHERE status IN \(\$1,\$2\) AND updated_at < \$3 ORDER BY updated_at ASC,id ASC LIMIT \$4`).
			WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), cutoff, 100).
			WillReturnRows(sqlmock.NewRows([]string{"id", "status"}).AddRow(uuid.NewString(), "SUBMITTED"))

		got, err := repo.FindExpirable(ctx, cutoff, nil, 100)

		require.NoError(t, err)
		assert.Len(t, got, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("after cursor", func(t *testing.T) {
		repo, _, mock := setupLeaveRepo(t)
		after := leave.ExpiryCursor{UpdatedAt: cutoff.Add(-time.Hour), ID: uuid.New()}
		mock.ExpectQuery(`WHERE status IN \(\$1,\$2\) AND updated_at < \$3 AND \(updated_at, id\) > \(\$4, \$5\) ORDER BY updated_at ASC,id ASC LIMIT \$6`).
			WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), cutoff, after.UpdatedAt, sqlmock.AnyArg(), 100).
			WillReturnRows(sqlmock.NewRows([]string{"id", "status"}))

		got, err := repo.FindExpirable(ctx, cutoff, &after, 100)

		require.NoError(t, err)
		assert.Empty(t, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
