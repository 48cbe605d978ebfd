package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/review-center-api/internal/models"
	appErrors "github.com/noah-isme/review-center-api/pkg/errors"
)

type enrollmentStore interface {
	FindOrCreate(ctx context.Context, seasonID, studentID string) (*models.SeasonEnrollment, error)
	Exists(ctx context.Context, seasonID, studentID string) (bool, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error)
	ExistsEnrolled(ctx context.Context, studentID string) (bool, error)
}

type invoiceReader interface {
	ListByEnrollment(ctx context.Context, enrollmentID string) ([]models.Invoice, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.Invoice, error)
	SumBalanceByStudent(ctx context.Context, studentID string) (float64, error)
}

// EnrollmentService answers lifecycle and ledger questions about a student's
// season enrollments. Status transitions themselves are driven by payment
// recording and by expiration, not by this API.
type EnrollmentService struct {
	enrollments enrollmentStore
	invoices    invoiceReader
	logger      *zap.Logger
}

// NewEnrollmentService constructs EnrollmentService.
func NewEnrollmentService(enrollments enrollmentStore, invoices invoiceReader, logger *zap.Logger) *EnrollmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{enrollments: enrollments, invoices: invoices, logger: logger}
}

// EnrollmentOn finds or creates the unique enrollment binding the student to
// the season. Idempotent: repeated calls return the same enrollment.
func (s *EnrollmentService) EnrollmentOn(ctx context.Context, studentID, seasonID string) (*models.SeasonEnrollment, error) {
	enrollment, err := s.enrollments.FindOrCreate(ctx, seasonID, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve enrollment")
	}
	return enrollment, nil
}

// HasEnrollmentOn reports whether the student already has an enrollment on
// the season.
func (s *EnrollmentService) HasEnrollmentOn(ctx context.Context, studentID, seasonID string) (bool, error) {
	exists, err := s.enrollments.Exists(ctx, seasonID, studentID)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment")
	}
	return exists, nil
}

// CurrentEnrollment returns the enrollment whose season starts latest, or nil
// when the student has none. Rows arrive sorted ascending by season start,
// then enrollment creation; the last row wins ties.
func (s *EnrollmentService) CurrentEnrollment(ctx context.Context, studentID string) (*models.EnrollmentDetail, error) {
	enrollments, err := s.enrollments.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	if len(enrollments) == 0 {
		return nil, nil
	}
	current := enrollments[len(enrollments)-1]
	return &current, nil
}

// EnrollmentStatus returns the status of the current enrollment, or Undefined
// when the student has no enrollment at all.
func (s *EnrollmentService) EnrollmentStatus(ctx context.Context, studentID string) (models.EnrollmentStatus, error) {
	current, err := s.CurrentEnrollment(ctx, studentID)
	if err != nil {
		return models.EnrollmentStatusUndefined, err
	}
	if current == nil {
		return models.EnrollmentStatusUndefined, nil
	}
	return current.Status, nil
}

// Enrolled reports whether the current enrollment reached the terminal state.
func (s *EnrollmentService) Enrolled(ctx context.Context, studentID string) (bool, error) {
	current, err := s.CurrentEnrollment(ctx, studentID)
	if err != nil {
		return false, err
	}
	if current == nil {
		return false, nil
	}
	return current.Enrolled(), nil
}

// Enrolling reports whether the current enrollment is still in progress.
func (s *EnrollmentService) Enrolling(ctx context.Context, studentID string) (bool, error) {
	current, err := s.CurrentEnrollment(ctx, studentID)
	if err != nil {
		return false, err
	}
	if current == nil {
		return false, nil
	}
	return current.Enrolling(), nil
}

// EnrolledOnce reports whether any historical enrollment ever completed.
func (s *EnrollmentService) EnrolledOnce(ctx context.Context, studentID string) (bool, error) {
	enrolled, err := s.enrollments.ExistsEnrolled(ctx, studentID)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment history")
	}
	return enrolled, nil
}

// Invoices returns the flattened invoice list across all enrollments.
func (s *EnrollmentService) Invoices(ctx context.Context, studentID string) ([]models.Invoice, error) {
	invoices, err := s.invoices.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list invoices")
	}
	return invoices, nil
}

// Balance sums the outstanding balance across every invoice the student has.
func (s *EnrollmentService) Balance(ctx context.Context, studentID string) (float64, error) {
	balance, err := s.invoices.SumBalanceByStudent(ctx, studentID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute balance")
	}
	return balance, nil
}

// HasBalance reports whether anything remains unpaid.
func (s *EnrollmentService) HasBalance(ctx context.Context, studentID string) (bool, error) {
	balance, err := s.Balance(ctx, studentID)
	if err != nil {
		return false, err
	}
	return balance > 0, nil
}

// CurrentInvoices returns the invoices on the current enrollment, or an
// empty list when there is none.
func (s *EnrollmentService) CurrentInvoices(ctx context.Context, studentID string) ([]models.Invoice, error) {
	current, err := s.CurrentEnrollment(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return []models.Invoice{}, nil
	}
	invoices, err := s.invoices.ListByEnrollment(ctx, current.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list current invoices")
	}
	return invoices, nil
}

// CurrentInvoice returns the first current invoice, or nil when none exist.
func (s *EnrollmentService) CurrentInvoice(ctx context.Context, studentID string) (*models.Invoice, error) {
	invoices, err := s.CurrentInvoices(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if len(invoices) == 0 {
		return nil, nil
	}
	return &invoices[0], nil
}

// TotalCurrentAmount sums the billed amount (not balance) on the current
// enrollment's invoices.
func (s *EnrollmentService) TotalCurrentAmount(ctx context.Context, studentID string) (float64, error) {
	invoices, err := s.CurrentInvoices(ctx, studentID)
	if err != nil {
		return 0, err
	}
	var total float64
	for _, invoice := range invoices {
		total += invoice.Amount
	}
	return total, nil
}
