package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeasonFee(t *testing.T) {
	season := ReviewSeason{StandardFee: 12000, DoubleFee: 18000}

	fee, err := season.Fee(PackageStandard)
	require.NoError(t, err)
	assert.Equal(t, 12000.0, fee)

	fee, err = season.Fee(PackageDouble)
	require.NoError(t, err)
	assert.Equal(t, 18000.0, fee)

	_, err = season.Fee("Premium")
	require.Error(t, err)

	_, err = season.Fee("")
	require.Error(t, err)
}

func TestSeasonPromoStillActive(t *testing.T) {
	cutoff := time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)
	season := ReviewSeason{PromoEndsOn: cutoff}

	assert.True(t, season.PromoStillActive(cutoff.Add(-time.Hour)))
	assert.False(t, season.PromoStillActive(cutoff))
	assert.False(t, season.PromoStillActive(cutoff.Add(time.Hour)))
}
