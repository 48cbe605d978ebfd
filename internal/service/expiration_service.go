package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/review-center-api/internal/models"
	appErrors "github.com/noah-isme/review-center-api/pkg/errors"
	"github.com/noah-isme/review-center-api/pkg/jobs"
)

// JobTypeExpireStudent identifies deferred expiration jobs on the queue.
const JobTypeExpireStudent = "expire_student"

type expirationStudentStore interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	Delete(ctx context.Context, id string) error
	SetFinishedAt(ctx context.Context, id string, finishedAt time.Time) error
}

type enrollmentStatusReader interface {
	EnrollmentStatus(ctx context.Context, studentID string) (models.EnrollmentStatus, error)
	Enrolled(ctx context.Context, studentID string) (bool, error)
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

// ExpirationService removes students whose enrollment process stalled past
// the grace period. Expiration is fire-and-forget: the guard against
// deleting enrolled students runs at execution time against live state.
type ExpirationService struct {
	students    expirationStudentStore
	enrollments enrollmentStatusReader
	queue       jobDispatcher
	grace       time.Duration
	metrics     *MetricsService
	logger      *zap.Logger
	now         func() time.Time
}

// NewExpirationService constructs ExpirationService.
func NewExpirationService(students expirationStudentStore, enrollments enrollmentStatusReader, queue jobDispatcher, grace time.Duration, metrics *MetricsService, logger *zap.Logger) *ExpirationService {
	if grace <= 0 {
		grace = 72 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExpirationService{
		students:    students,
		enrollments: enrollments,
		queue:       queue,
		grace:       grace,
		metrics:     metrics,
		logger:      logger,
		now:         time.Now,
	}
}

// FinishEnrollmentProcess stamps the profile-completion timestamp.
func (s *ExpirationService) FinishEnrollmentProcess(ctx context.Context, studentID string) error {
	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if err := s.students.SetFinishedAt(ctx, studentID, s.now().UTC()); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to finish enrollment process")
	}
	return nil
}

// Expired reports whether the student's enrollment process ran out of time:
// either the finish timestamp is older than the grace period, or the process
// started (status is defined) but was never marked finished.
func (s *ExpirationService) Expired(ctx context.Context, student *models.Student) (bool, error) {
	if student.FinishEnrollmentOn != nil {
		return s.now().After(student.FinishEnrollmentOn.Add(s.grace)), nil
	}
	status, err := s.enrollments.EnrollmentStatus(ctx, student.ID)
	if err != nil {
		return false, err
	}
	return status != models.EnrollmentStatusUndefined, nil
}

// Expire removes the student record unless they are enrolled. Missing
// students and enrolled students are no-ops, not errors: the job may fire
// after a successful enrollment or after an earlier expiration already ran.
func (s *ExpirationService) Expire(ctx context.Context, studentID string) error {
	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		if err == sql.ErrNoRows {
			if s.metrics != nil {
				s.metrics.IncExpirationsSkipped()
			}
			return nil
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	enrolled, err := s.enrollments.Enrolled(ctx, studentID)
	if err != nil {
		return err
	}
	if enrolled {
		if s.metrics != nil {
			s.metrics.IncExpirationsSkipped()
		}
		return nil
	}

	if err := s.students.Delete(ctx, studentID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to expire student")
	}
	if s.metrics != nil {
		s.metrics.IncExpirationsExecuted()
	}
	s.logger.Sugar().Infow("student expired", "student_id", studentID)
	return nil
}

// Schedule queues a one-shot expiration check to run after the grace period.
func (s *ExpirationService) Schedule(studentID string) error {
	if s.queue == nil {
		return fmt.Errorf("expiration queue not configured")
	}
	job := jobs.Job{
		ID:      uuid.NewString(),
		Type:    JobTypeExpireStudent,
		Payload: studentID,
		RunAt:   s.now().Add(s.grace),
	}
	return s.queue.Enqueue(job)
}

// HandleJob is the queue handler for deferred expirations. Failures are
// logged and discarded: expiration is at-most-once with no retry.
func (s *ExpirationService) HandleJob(ctx context.Context, job jobs.Job) error {
	studentID, ok := job.Payload.(string)
	if !ok || studentID == "" {
		s.logger.Sugar().Warnw("expire job without student id", "job_id", job.ID)
		return nil
	}
	if err := s.Expire(ctx, studentID); err != nil {
		s.logger.Sugar().Errorw("expire job failed", "job_id", job.ID, "student_id", studentID, "error", err)
	}
	return nil
}
