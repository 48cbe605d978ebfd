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

// EnrollmentRepository handles persistence of season enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// FindOrCreate returns the unique enrollment for the (season, student) pair,
// creating it in ENROLLING state when absent. The insert relies on the
// unique constraint so concurrent callers converge on the same row.
func (r *EnrollmentRepository) FindOrCreate(ctx context.Context, seasonID, studentID string) (*models.SeasonEnrollment, error) {
	const insert = `INSERT INTO season_enrollments (id, season_id, student_id, status, created_at)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (season_id, student_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, insert, uuid.NewString(), seasonID, studentID, models.EnrollmentStatusEnrolling, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("upsert enrollment: %w", err)
	}

	const query = `SELECT id, season_id, student_id, status, created_at
        FROM season_enrollments WHERE season_id = $1 AND student_id = $2`
	var enrollment models.SeasonEnrollment
	if err := r.db.GetContext(ctx, &enrollment, query, seasonID, studentID); err != nil {
		return nil, fmt.Errorf("load enrollment: %w", err)
	}
	return &enrollment, nil
}

// Exists reports whether an enrollment exists for the (season, student) pair.
func (r *EnrollmentRepository) Exists(ctx context.Context, seasonID, studentID string) (bool, error) {
	const query = `SELECT 1 FROM season_enrollments WHERE season_id = $1 AND student_id = $2 LIMIT 1`
	var one int
	if err := r.db.GetContext(ctx, &one, query, seasonID, studentID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return true, nil
}

// ListByStudent returns all of a student's enrollments joined with their
// seasons, ordered by season start ascending. Rows sharing a start date keep
// enrollment creation order so the last row is the current enrollment.
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error) {
	const query = `SELECT e.id, e.season_id, e.student_id, e.status, e.created_at,
        s.label AS season_label, s.start_date AS season_start
        FROM season_enrollments e
        JOIN review_seasons s ON s.id = e.season_id
        WHERE e.student_id = $1
        ORDER BY s.start_date ASC, e.created_at ASC`
	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query, studentID); err != nil {
		return nil, fmt.Errorf("list student enrollments: %w", err)
	}
	return enrollments, nil
}

// ExistsEnrolled reports whether any of the student's enrollments ever
// reached the enrolled state.
func (r *EnrollmentRepository) ExistsEnrolled(ctx context.Context, studentID string) (bool, error) {
	const query = `SELECT 1 FROM season_enrollments WHERE student_id = $1 AND status = $2 LIMIT 1`
	var one int
	if err := r.db.GetContext(ctx, &one, query, studentID, models.EnrollmentStatusEnrolled); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check enrolled: %w", err)
	}
	return true, nil
}

// UpdateStatus transitions an enrollment to a new status.
func (r *EnrollmentRepository) UpdateStatus(ctx context.Context, id string, status models.EnrollmentStatus) error {
	const query = `UPDATE season_enrollments SET status = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status); err != nil {
		return fmt.Errorf("update enrollment status: %w", err)
	}
	return nil
}

// FindByID returns an enrollment by its ID.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id string) (*models.SeasonEnrollment, error) {
	const query = `SELECT id, season_id, student_id, status, created_at FROM season_enrollments WHERE id = $1`
	var enrollment models.SeasonEnrollment
	if err := r.db.GetContext(ctx, &enrollment, query, id); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// ListBySeason returns enrollments for a season, optionally narrowed by status.
func (r *EnrollmentRepository) ListBySeason(ctx context.Context, seasonID string, status models.EnrollmentStatus) ([]models.SeasonEnrollment, error) {
	query := `SELECT id, season_id, student_id, status, created_at FROM season_enrollments WHERE season_id = $1`
	args := []interface{}{seasonID}
	if status != "" && status != models.EnrollmentStatusUndefined {
		query += " AND status = $2"
		args = append(args, status)
	}
	query += " ORDER BY created_at ASC"
	var enrollments []models.SeasonEnrollment
	if err := r.db.SelectContext(ctx, &enrollments, query, args...); err != nil {
		return nil, fmt.Errorf("list season enrollments: %w", err)
	}
	return enrollments, nil
}
