package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/review-center-api/internal/models"
)

// SeasonRepository handles persistence of review seasons.
type SeasonRepository struct {
	db *sqlx.DB
}

// NewSeasonRepository constructs the repository.
func NewSeasonRepository(db *sqlx.DB) *SeasonRepository {
	return &SeasonRepository{db: db}
}

const seasonColumns = `id, label, start_date, end_date, promo_ends_on,
        standard_fee, double_fee, first_timer, double_review, full_review, created_at, updated_at`

// Current returns the season considered in progress: the latest season whose
// window contains now. Absence is reported as (nil, nil), not an error.
func (r *SeasonRepository) Current(ctx context.Context, now time.Time) (*models.ReviewSeason, error) {
	query := fmt.Sprintf(`SELECT %s FROM review_seasons
        WHERE start_date <= $1 AND end_date >= $1
        ORDER BY start_date DESC LIMIT 1`, seasonColumns)
	var season models.ReviewSeason
	if err := r.db.GetContext(ctx, &season, query, now); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("current season: %w", err)
	}
	return &season, nil
}

// FindByID returns a season by its ID.
func (r *SeasonRepository) FindByID(ctx context.Context, id string) (*models.ReviewSeason, error) {
	query := fmt.Sprintf("SELECT %s FROM review_seasons WHERE id = $1", seasonColumns)
	var season models.ReviewSeason
	if err := r.db.GetContext(ctx, &season, query, id); err != nil {
		return nil, err
	}
	return &season, nil
}

// List returns seasons newest first.
func (r *SeasonRepository) List(ctx context.Context, filter models.SeasonFilter) ([]models.ReviewSeason, int, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s FROM review_seasons ORDER BY start_date DESC LIMIT %d OFFSET %d", seasonColumns, size, offset)
	var seasons []models.ReviewSeason
	if err := r.db.SelectContext(ctx, &seasons, query); err != nil {
		return nil, 0, fmt.Errorf("list seasons: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM review_seasons"); err != nil {
		return nil, 0, fmt.Errorf("count seasons: %w", err)
	}
	return seasons, total, nil
}

// Create persists a new season record.
func (r *SeasonRepository) Create(ctx context.Context, season *models.ReviewSeason) error {
	if season.ID == "" {
		season.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if season.CreatedAt.IsZero() {
		season.CreatedAt = now
	}
	season.UpdatedAt = now
	const query = `INSERT INTO review_seasons (id, label, start_date, end_date, promo_ends_on,
        standard_fee, double_fee, first_timer, double_review, full_review, created_at, updated_at)
        VALUES (:id, :label, :start_date, :end_date, :promo_ends_on,
        :standard_fee, :double_fee, :first_timer, :double_review, :full_review, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, season); err != nil {
		return fmt.Errorf("create season: %w", err)
	}
	return nil
}
