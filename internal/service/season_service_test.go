package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/review-center-api/internal/models"
	appErrors "github.com/noah-isme/review-center-api/pkg/errors"
)

type mockSeasonRepo struct {
	current      *models.ReviewSeason
	seasons      map[string]*models.ReviewSeason
	created      *models.ReviewSeason
	currentCalls int
}

func (m *mockSeasonRepo) Current(ctx context.Context, now time.Time) (*models.ReviewSeason, error) {
	m.currentCalls++
	return m.current, nil
}

func (m *mockSeasonRepo) FindByID(ctx context.Context, id string) (*models.ReviewSeason, error) {
	if s, ok := m.seasons[id]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockSeasonRepo) List(ctx context.Context, filter models.SeasonFilter) ([]models.ReviewSeason, int, error) {
	var list []models.ReviewSeason
	for _, s := range m.seasons {
		list = append(list, *s)
	}
	return list, len(list), nil
}

func (m *mockSeasonRepo) Create(ctx context.Context, season *models.ReviewSeason) error {
	season.ID = "season-new"
	m.created = season
	return nil
}

type fakeSeasonCache struct {
	values  map[string]models.ReviewSeason
	sets    int
	deletes int
}

func (c *fakeSeasonCache) Get(ctx context.Context, key string, dest interface{}) error {
	if c.values == nil {
		return appErrors.ErrCacheMiss
	}
	v, ok := c.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	*dest.(*models.ReviewSeason) = v
	return nil
}

func (c *fakeSeasonCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.values == nil {
		c.values = make(map[string]models.ReviewSeason)
	}
	c.values[key] = *value.(*models.ReviewSeason)
	c.sets++
	return nil
}

func (c *fakeSeasonCache) Delete(ctx context.Context, key string) error {
	delete(c.values, key)
	c.deletes++
	return nil
}

func testSeason(id string) *models.ReviewSeason {
	return &models.ReviewSeason{
		ID:           id,
		Label:        "Batch 2026",
		StartDate:    time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		PromoEndsOn:  time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC),
		StandardFee:  12000,
		DoubleFee:    18000,
		FirstTimer:   10000,
		DoubleReview: 18000,
		FullReview:   12000,
	}
}

func TestSeasonServiceCurrentCachesResult(t *testing.T) {
	repo := &mockSeasonRepo{current: testSeason("season-1")}
	cache := &fakeSeasonCache{}
	svc := NewSeasonService(repo, cache, time.Minute, nil, zap.NewNop())

	season, err := svc.Current(context.Background())
	require.NoError(t, err)
	require.NotNil(t, season)
	assert.Equal(t, 1, repo.currentCalls)
	assert.Equal(t, 1, cache.sets)

	// Second call is served from cache.
	season, err = svc.Current(context.Background())
	require.NoError(t, err)
	require.NotNil(t, season)
	assert.Equal(t, "season-1", season.ID)
	assert.Equal(t, 1, repo.currentCalls)
}

func TestSeasonServiceCurrentAbsenceIsNil(t *testing.T) {
	repo := &mockSeasonRepo{}
	cache := &fakeSeasonCache{}
	svc := NewSeasonService(repo, cache, time.Minute, nil, zap.NewNop())

	season, err := svc.Current(context.Background())
	require.NoError(t, err)
	assert.Nil(t, season)
	assert.Zero(t, cache.sets)
}

func TestSeasonServiceGetNotFound(t *testing.T) {
	svc := NewSeasonService(&mockSeasonRepo{}, nil, time.Minute, nil, zap.NewNop())
	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestSeasonServiceCreateInvalidatesCache(t *testing.T) {
	repo := &mockSeasonRepo{}
	cache := &fakeSeasonCache{values: map[string]models.ReviewSeason{currentSeasonCacheKey: *testSeason("stale")}}
	svc := NewSeasonService(repo, cache, time.Minute, nil, zap.NewNop())

	created, err := svc.Create(context.Background(), CreateSeasonRequest{
		Label:        "Batch 2027",
		StartDate:    time.Date(2027, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2027, 9, 1, 0, 0, 0, 0, time.UTC),
		PromoEndsOn:  time.Date(2027, 2, 15, 0, 0, 0, 0, time.UTC),
		StandardFee:  12000,
		DoubleFee:    18000,
		FirstTimer:   10000,
		DoubleReview: 18000,
		FullReview:   12000,
	})
	require.NoError(t, err)
	assert.Equal(t, "season-new", created.ID)
	assert.Equal(t, 1, cache.deletes)
}

func TestSeasonServiceCreateRejectsInvalidDates(t *testing.T) {
	svc := NewSeasonService(&mockSeasonRepo{}, nil, time.Minute, nil, zap.NewNop())
	_, err := svc.Create(context.Background(), CreateSeasonRequest{
		Label:        "Broken",
		StartDate:    time.Date(2027, 9, 1, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2027, 3, 1, 0, 0, 0, 0, time.UTC),
		PromoEndsOn:  time.Date(2027, 2, 15, 0, 0, 0, 0, time.UTC),
		StandardFee:  12000,
		DoubleFee:    18000,
		FirstTimer:   10000,
		DoubleReview: 18000,
		FullReview:   12000,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
