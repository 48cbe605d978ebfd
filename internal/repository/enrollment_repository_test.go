package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/review-center-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestEnrollmentRepositoryFindOrCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectExec("INSERT INTO season_enrollments").
		WithArgs(sqlmock.AnyArg(), "season-1", "stu-1", models.EnrollmentStatusEnrolling, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	rows := sqlmock.NewRows([]string{"id", "season_id", "student_id", "status", "created_at"}).
		AddRow("enr-1", "season-1", "stu-1", models.EnrollmentStatusEnrolling, time.Now())
	mock.ExpectQuery("SELECT id, season_id, student_id, status, created_at").
		WithArgs("season-1", "stu-1").
		WillReturnRows(rows)

	enrollment, err := repo.FindOrCreate(context.Background(), "season-1", "stu-1")
	require.NoError(t, err)
	require.Equal(t, "enr-1", enrollment.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryFindOrCreateExisting(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	// Conflict: insert touches zero rows, existing row is returned.
	mock.ExpectExec("INSERT INTO season_enrollments").
		WithArgs(sqlmock.AnyArg(), "season-1", "stu-1", models.EnrollmentStatusEnrolling, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	rows := sqlmock.NewRows([]string{"id", "season_id", "student_id", "status", "created_at"}).
		AddRow("enr-existing", "season-1", "stu-1", models.EnrollmentStatusReserved, time.Now())
	mock.ExpectQuery("SELECT id, season_id, student_id, status, created_at").
		WithArgs("season-1", "stu-1").
		WillReturnRows(rows)

	enrollment, err := repo.FindOrCreate(context.Background(), "season-1", "stu-1")
	require.NoError(t, err)
	require.Equal(t, "enr-existing", enrollment.ID)
	require.Equal(t, models.EnrollmentStatusReserved, enrollment.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryListByStudent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "season_id", "student_id", "status", "created_at", "season_label", "season_start"}).
		AddRow("enr-1", "season-1", "stu-1", models.EnrollmentStatusEnrolled, time.Now(), "Batch 2025", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)).
		AddRow("enr-2", "season-2", "stu-1", models.EnrollmentStatusEnrolling, time.Now(), "Batch 2026", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	mock.ExpectQuery("FROM season_enrollments e").
		WithArgs("stu-1").
		WillReturnRows(rows)

	enrollments, err := repo.ListByStudent(context.Background(), "stu-1")
	require.NoError(t, err)
	require.Len(t, enrollments, 2)
	require.Equal(t, "Batch 2026", enrollments[1].SeasonLabel)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryExistsEnrolled(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery("SELECT 1 FROM season_enrollments").
		WithArgs("stu-1", models.EnrollmentStatusEnrolled).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	enrolled, err := repo.ExistsEnrolled(context.Background(), "stu-1")
	require.NoError(t, err)
	require.False(t, enrolled)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryUpdateStatus(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectExec("UPDATE season_enrollments SET status").
		WithArgs("enr-1", models.EnrollmentStatusEnrolled).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateStatus(context.Background(), "enr-1", models.EnrollmentStatusEnrolled)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
