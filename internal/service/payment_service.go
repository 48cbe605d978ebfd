package service

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/review-center-api/internal/models"
	appErrors "github.com/noah-isme/review-center-api/pkg/errors"
)

// Invoice descriptions written by pricing overrides.
const (
	descriptionFirstTimer   = "First Timer"
	descriptionDoubleFirst  = "Invoice 1 of 2"
	descriptionDoubleSecond = "Invoice 2 of 2"
)

type currentSeasonSource interface {
	Current(ctx context.Context) (*models.ReviewSeason, error)
}

type enrollmentWorkflow interface {
	EnrollmentOn(ctx context.Context, studentID, seasonID string) (*models.SeasonEnrollment, error)
	HasEnrollmentOn(ctx context.Context, studentID, seasonID string) (bool, error)
}

type invoiceStore interface {
	Create(ctx context.Context, invoice *models.Invoice) error
	Update(ctx context.Context, invoice *models.Invoice) error
	ListByEnrollment(ctx context.Context, enrollmentID string) ([]models.Invoice, error)
	CountByEnrollment(ctx context.Context, enrollmentID string) (int, error)
}

type paymentStudentReader interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

type expirationArmer interface {
	Schedule(studentID string) error
}

// PaymentService is the student-facing entry point that turns an intent to
// enroll into priced invoices on the current season.
type PaymentService struct {
	seasons     currentSeasonSource
	enrollments enrollmentWorkflow
	invoices    invoiceStore
	students    paymentStudentReader
	expirations expirationArmer
	metrics     *MetricsService
	logger      *zap.Logger
	now         func() time.Time
}

// NewPaymentService constructs PaymentService.
func NewPaymentService(seasons currentSeasonSource, enrollments enrollmentWorkflow, invoices invoiceStore, students paymentStudentReader, expirations expirationArmer, metrics *MetricsService, logger *zap.Logger) *PaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{
		seasons:     seasons,
		enrollments: enrollments,
		invoices:    invoices,
		students:    students,
		expirations: expirations,
		metrics:     metrics,
		logger:      logger,
		now:         time.Now,
	}
}

// SetupPayment prices and creates the invoices for the student's enrollment
// on the current season. Idempotent: an already-invoiced enrollment is left
// untouched and the existing invoices are returned.
func (s *PaymentService) SetupPayment(ctx context.Context, studentID string) ([]models.Invoice, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	season, err := s.seasons.Current(ctx)
	if err != nil {
		return nil, err
	}
	if season == nil {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no review season in progress")
	}

	has, err := s.enrollments.HasEnrollmentOn(ctx, studentID, season.ID)
	if err != nil {
		return nil, err
	}
	if has {
		enrollment, err := s.enrollments.EnrollmentOn(ctx, studentID, season.ID)
		if err != nil {
			return nil, err
		}
		count, err := s.invoices.CountByEnrollment(ctx, enrollment.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count invoices")
		}
		if count > 0 {
			existing, err := s.invoices.ListByEnrollment(ctx, enrollment.ID)
			if err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list invoices")
			}
			return existing, nil
		}
	}

	fee, err := season.Fee(student.PackageType)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnknownPackage.Code, appErrors.ErrUnknownPackage.Status, appErrors.ErrUnknownPackage.Message)
	}

	enrollment, err := s.enrollments.EnrollmentOn(ctx, studentID, season.ID)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil && !has {
		s.metrics.IncEnrollmentsStarted()
	}

	first := &models.Invoice{
		EnrollmentID: enrollment.ID,
		Package:      student.PackageType,
		Amount:       fee,
	}
	if err := s.invoices.Create(ctx, first); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create invoice")
	}

	created := []models.Invoice{}

	// Pricing overrides are evaluated independently; both may rewrite the
	// first invoice.
	if season.PromoStillActive(s.now()) && student.PackageType == models.PackageStandard {
		first.Amount = season.FirstTimer
		first.Description = descriptionFirstTimer
		if err := s.invoices.Update(ctx, first); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to apply promo pricing")
		}
	}

	if student.PackageType == models.PackageDouble {
		first.Description = descriptionDoubleFirst
		if err := s.invoices.Update(ctx, first); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to relabel invoice")
		}
		second := &models.Invoice{
			EnrollmentID: enrollment.ID,
			Package:      student.PackageType,
			Description:  descriptionDoubleSecond,
			Amount:       season.DoubleReview - season.FullReview,
		}
		if err := s.invoices.Create(ctx, second); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create second invoice")
		}
		created = append(created, *first, *second)
	} else {
		created = append(created, *first)
	}

	// Arms the deferred expiration; the worker re-checks enrolled status at
	// fire time, so this is safe to call on every setup.
	if s.expirations != nil {
		if err := s.expirations.Schedule(studentID); err != nil {
			s.logger.Sugar().Warnw("failed to schedule expiration", "student_id", studentID, "error", err)
		}
	}

	if s.metrics != nil {
		s.metrics.IncInvoicesIssued(len(created))
	}
	s.logger.Sugar().Infow("payment setup complete", "student_id", studentID, "season_id", season.ID, "invoices", len(created))
	return created, nil
}
