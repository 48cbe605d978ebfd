package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/review-center-api/internal/models"
	appErrors "github.com/noah-isme/review-center-api/pkg/errors"
)

const currentSeasonCacheKey = "seasons:current"

type seasonRepository interface {
	Current(ctx context.Context, now time.Time) (*models.ReviewSeason, error)
	FindByID(ctx context.Context, id string) (*models.ReviewSeason, error)
	List(ctx context.Context, filter models.SeasonFilter) ([]models.ReviewSeason, int, error)
	Create(ctx context.Context, season *models.ReviewSeason) error
}

type seasonCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// CreateSeasonRequest holds payload for opening a new review season.
type CreateSeasonRequest struct {
	Label        string    `json:"label" validate:"required"`
	StartDate    time.Time `json:"start_date" validate:"required"`
	EndDate      time.Time `json:"end_date" validate:"required,gtfield=StartDate"`
	PromoEndsOn  time.Time `json:"promo_ends_on" validate:"required"`
	StandardFee  float64   `json:"standard_fee" validate:"required,gt=0"`
	DoubleFee    float64   `json:"double_fee" validate:"required,gt=0"`
	FirstTimer   float64   `json:"first_timer" validate:"required,gt=0"`
	DoubleReview float64   `json:"double_review" validate:"required,gt=0"`
	FullReview   float64   `json:"full_review" validate:"required,gt=0"`
}

// SeasonService serves season reference data. The current-season lookup is
// cached because every workflow call resolves it.
type SeasonService struct {
	repo      seasonRepository
	cache     seasonCache
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewSeasonService constructs SeasonService.
func NewSeasonService(repo seasonRepository, cache seasonCache, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *SeasonService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &SeasonService{repo: repo, cache: cache, cacheTTL: cacheTTL, validator: validate, logger: logger, now: time.Now}
}

// Current resolves the season in progress. Absence is (nil, nil).
func (s *SeasonService) Current(ctx context.Context) (*models.ReviewSeason, error) {
	if s.cache != nil {
		var cached models.ReviewSeason
		err := s.cache.Get(ctx, currentSeasonCacheKey, &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Sugar().Warnw("season cache read failed", "error", err)
		}
	}

	season, err := s.repo.Current(ctx, s.now().UTC())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve current season")
	}
	if season == nil {
		return nil, nil
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, currentSeasonCacheKey, season, s.cacheTTL); err != nil {
			s.logger.Sugar().Warnw("season cache write failed", "error", err)
		}
	}
	return season, nil
}

// Get returns a season by ID.
func (s *SeasonService) Get(ctx context.Context, id string) (*models.ReviewSeason, error) {
	season, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "season not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load season")
	}
	return season, nil
}

// List returns seasons with pagination metadata.
func (s *SeasonService) List(ctx context.Context, filter models.SeasonFilter) ([]models.ReviewSeason, *models.Pagination, error) {
	seasons, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list seasons")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return seasons, pagination, nil
}

// Create opens a new review season and invalidates the current-season cache.
func (s *SeasonService) Create(ctx context.Context, req CreateSeasonRequest) (*models.ReviewSeason, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid season payload")
	}
	season := &models.ReviewSeason{
		Label:        req.Label,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		PromoEndsOn:  req.PromoEndsOn,
		StandardFee:  req.StandardFee,
		DoubleFee:    req.DoubleFee,
		FirstTimer:   req.FirstTimer,
		DoubleReview: req.DoubleReview,
		FullReview:   req.FullReview,
	}
	if err := s.repo.Create(ctx, season); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create season")
	}
	if s.cache != nil {
		if err := s.cache.Delete(ctx, currentSeasonCacheKey); err != nil {
			s.logger.Sugar().Warnw("season cache invalidation failed", "error", err)
		}
	}
	return season, nil
}
