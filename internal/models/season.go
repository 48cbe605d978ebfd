package models

import (
	"fmt"
	"time"
)

// Package tiers a student may enroll under.
const (
	PackageStandard = "Standard"
	PackageDouble   = "Double"
)

// ReviewSeason is a bounded recruitment cycle with its own fee table and
// promotional window. Read-mostly reference data.
type ReviewSeason struct {
	ID          string    `db:"id" json:"id"`
	Label       string    `db:"label" json:"label"`
	StartDate   time.Time `db:"start_date" json:"start_date"`
	EndDate     time.Time `db:"end_date" json:"end_date"`
	PromoEndsOn time.Time `db:"promo_ends_on" json:"promo_ends_on"`

	StandardFee  float64 `db:"standard_fee" json:"standard_fee"`
	DoubleFee    float64 `db:"double_fee" json:"double_fee"`
	FirstTimer   float64 `db:"first_timer" json:"first_timer"`
	DoubleReview float64 `db:"double_review" json:"double_review"`
	FullReview   float64 `db:"full_review" json:"full_review"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Fee returns the configured fee for a package tier. An unknown tier is a
// configuration error, never a silent default.
func (s ReviewSeason) Fee(packageType string) (float64, error) {
	switch packageType {
	case PackageStandard:
		return s.StandardFee, nil
	case PackageDouble:
		return s.DoubleFee, nil
	default:
		return 0, fmt.Errorf("no fee configured for package %q", packageType)
	}
}

// PromoStillActive reports whether now falls inside the promotional window.
func (s ReviewSeason) PromoStillActive(now time.Time) bool {
	return now.Before(s.PromoEndsOn)
}

// SeasonFilter defines filters supported by season list endpoints.
type SeasonFilter struct {
	Page     int
	PageSize int
}
