package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/review-center-api/internal/models"
)

func seasonRows() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "label", "start_date", "end_date", "promo_ends_on",
		"standard_fee", "double_fee", "first_timer", "double_review", "full_review",
		"created_at", "updated_at",
	}).AddRow(
		"season-1", "Batch 2026",
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC),
		12000.0, 18000.0, 10000.0, 18000.0, 12000.0,
		now, now,
	)
}

func TestSeasonRepositoryCurrent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSeasonRepository(db)

	now := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("FROM review_seasons").
		WithArgs(now).
		WillReturnRows(seasonRows())

	season, err := repo.Current(context.Background(), now)
	require.NoError(t, err)
	require.NotNil(t, season)
	require.Equal(t, "Batch 2026", season.Label)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSeasonRepositoryCurrentNone(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSeasonRepository(db)

	now := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("FROM review_seasons").
		WithArgs(now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	season, err := repo.Current(context.Background(), now)
	require.NoError(t, err)
	require.Nil(t, season)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSeasonRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSeasonRepository(db)

	mock.ExpectExec("INSERT INTO review_seasons").
		WillReturnResult(sqlmock.NewResult(0, 1))

	season := &models.ReviewSeason{
		Label:       "Batch 2027",
		StartDate:   time.Date(2027, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2027, 9, 1, 0, 0, 0, 0, time.UTC),
		PromoEndsOn: time.Date(2027, 2, 15, 0, 0, 0, 0, time.UTC),
	}
	err := repo.Create(context.Background(), season)
	require.NoError(t, err)
	require.NotEmpty(t, season.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}
