package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/review-center-api/internal/models"
	appErrors "github.com/noah-isme/review-center-api/pkg/errors"
)

type mockSeasonSource struct {
	season *models.ReviewSeason
}

func (m *mockSeasonSource) Current(ctx context.Context) (*models.ReviewSeason, error) {
	return m.season, nil
}

type mockEnrollmentWorkflow struct {
	enrollment *models.SeasonEnrollment
	exists     bool
	calls      int
}

func (m *mockEnrollmentWorkflow) EnrollmentOn(ctx context.Context, studentID, seasonID string) (*models.SeasonEnrollment, error) {
	m.calls++
	if m.enrollment == nil {
		m.enrollment = &models.SeasonEnrollment{ID: "enr-1", SeasonID: seasonID, StudentID: studentID, Status: models.EnrollmentStatusEnrolling}
	}
	return m.enrollment, nil
}

func (m *mockEnrollmentWorkflow) HasEnrollmentOn(ctx context.Context, studentID, seasonID string) (bool, error) {
	return m.exists, nil
}

type mockInvoiceStore struct {
	created []models.Invoice
	updated []models.Invoice
	listed  []models.Invoice
	seq     int
}

func (m *mockInvoiceStore) Create(ctx context.Context, invoice *models.Invoice) error {
	m.seq++
	invoice.ID = fmt.Sprintf("inv-%d", m.seq)
	m.created = append(m.created, *invoice)
	return nil
}

func (m *mockInvoiceStore) Update(ctx context.Context, invoice *models.Invoice) error {
	m.updated = append(m.updated, *invoice)
	return nil
}

func (m *mockInvoiceStore) ListByEnrollment(ctx context.Context, enrollmentID string) ([]models.Invoice, error) {
	return m.listed, nil
}

func (m *mockInvoiceStore) CountByEnrollment(ctx context.Context, enrollmentID string) (int, error) {
	return len(m.listed), nil
}

type mockPaymentStudents struct {
	students map[string]*models.Student
}

func (m *mockPaymentStudents) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if s, ok := m.students[id]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

type mockExpirationArmer struct {
	scheduled []string
}

func (m *mockExpirationArmer) Schedule(studentID string) error {
	m.scheduled = append(m.scheduled, studentID)
	return nil
}

func paymentSeason(promoEnds time.Time) *models.ReviewSeason {
	return &models.ReviewSeason{
		ID:           "season-1",
		Label:        "Batch 2026",
		StartDate:    time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		PromoEndsOn:  promoEnds,
		StandardFee:  12000,
		DoubleFee:    18000,
		FirstTimer:   10000,
		DoubleReview: 18000,
		FullReview:   12000,
	}
}

func TestSetupPaymentStandardAfterPromo(t *testing.T) {
	now := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	invoices := &mockInvoiceStore{}
	armer := &mockExpirationArmer{}
	svc := NewPaymentService(
		&mockSeasonSource{season: paymentSeason(now.Add(-24 * time.Hour))},
		&mockEnrollmentWorkflow{},
		invoices,
		&mockPaymentStudents{students: map[string]*models.Student{"s1": {ID: "s1", PackageType: models.PackageStandard}}},
		armer,
		nil,
		zap.NewNop(),
	)
	svc.now = func() time.Time { return now }

	created, err := svc.SetupPayment(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, 12000.0, created[0].Amount)
	assert.Empty(t, created[0].Description)
	assert.Empty(t, invoices.updated)
	assert.Equal(t, []string{"s1"}, armer.scheduled)
}

func TestSetupPaymentStandardDuringPromo(t *testing.T) {
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	invoices := &mockInvoiceStore{}
	svc := NewPaymentService(
		&mockSeasonSource{season: paymentSeason(now.Add(24 * time.Hour))},
		&mockEnrollmentWorkflow{},
		invoices,
		&mockPaymentStudents{students: map[string]*models.Student{"s1": {ID: "s1", PackageType: models.PackageStandard}}},
		&mockExpirationArmer{},
		nil,
		zap.NewNop(),
	)
	svc.now = func() time.Time { return now }

	created, err := svc.SetupPayment(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, 10000.0, created[0].Amount)
	assert.Equal(t, "First Timer", created[0].Description)
	require.Len(t, invoices.updated, 1)
}

func TestSetupPaymentDoubleSplitsInvoices(t *testing.T) {
	now := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	invoices := &mockInvoiceStore{}
	svc := NewPaymentService(
		&mockSeasonSource{season: paymentSeason(now.Add(-24 * time.Hour))},
		&mockEnrollmentWorkflow{},
		invoices,
		&mockPaymentStudents{students: map[string]*models.Student{"s1": {ID: "s1", PackageType: models.PackageDouble}}},
		&mockExpirationArmer{},
		nil,
		zap.NewNop(),
	)
	svc.now = func() time.Time { return now }

	created, err := svc.SetupPayment(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.Equal(t, "Invoice 1 of 2", created[0].Description)
	assert.Equal(t, 18000.0, created[0].Amount)
	assert.Equal(t, "Invoice 2 of 2", created[1].Description)
	assert.Equal(t, 6000.0, created[1].Amount)
}

func TestSetupPaymentDoubleDuringPromoKeepsBothOverrides(t *testing.T) {
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	invoices := &mockInvoiceStore{}
	svc := NewPaymentService(
		&mockSeasonSource{season: paymentSeason(now.Add(24 * time.Hour))},
		&mockEnrollmentWorkflow{},
		invoices,
		&mockPaymentStudents{students: map[string]*models.Student{"s1": {ID: "s1", PackageType: models.PackageDouble}}},
		&mockExpirationArmer{},
		nil,
		zap.NewNop(),
	)
	svc.now = func() time.Time { return now }

	created, err := svc.SetupPayment(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, created, 2)
	// Promo only rewrites Standard packages; a Double keeps its split pricing.
	assert.Equal(t, "Invoice 1 of 2", created[0].Description)
	assert.Equal(t, 18000.0, created[0].Amount)
}

func TestSetupPaymentIdempotent(t *testing.T) {
	existing := []models.Invoice{{ID: "inv-1", EnrollmentID: "enr-1", Amount: 12000}}
	invoices := &mockInvoiceStore{listed: existing}
	svc := NewPaymentService(
		&mockSeasonSource{season: paymentSeason(time.Now().Add(-24 * time.Hour))},
		&mockEnrollmentWorkflow{exists: true, enrollment: &models.SeasonEnrollment{ID: "enr-1"}},
		invoices,
		&mockPaymentStudents{students: map[string]*models.Student{"s1": {ID: "s1", PackageType: models.PackageStandard}}},
		&mockExpirationArmer{},
		nil,
		zap.NewNop(),
	)

	got, err := svc.SetupPayment(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, existing, got)
	assert.Empty(t, invoices.created)
}

func TestSetupPaymentNoSeason(t *testing.T) {
	svc := NewPaymentService(
		&mockSeasonSource{},
		&mockEnrollmentWorkflow{},
		&mockInvoiceStore{},
		&mockPaymentStudents{students: map[string]*models.Student{"s1": {ID: "s1", PackageType: models.PackageStandard}}},
		&mockExpirationArmer{},
		nil,
		zap.NewNop(),
	)

	_, err := svc.SetupPayment(context.Background(), "s1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErr.Code)
}

func TestSetupPaymentUnknownPackage(t *testing.T) {
	enrollments := &mockEnrollmentWorkflow{}
	svc := NewPaymentService(
		&mockSeasonSource{season: paymentSeason(time.Now().Add(-24 * time.Hour))},
		enrollments,
		&mockInvoiceStore{},
		&mockPaymentStudents{students: map[string]*models.Student{"s1": {ID: "s1", PackageType: "Premium"}}},
		&mockExpirationArmer{},
		nil,
		zap.NewNop(),
	)

	_, err := svc.SetupPayment(context.Background(), "s1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrUnknownPackage.Code, appErr.Code)
	// Pricing fails before any enrollment is created.
	assert.Zero(t, enrollments.calls)
}

func TestSetupPaymentStudentNotFound(t *testing.T) {
	svc := NewPaymentService(
		&mockSeasonSource{season: paymentSeason(time.Now())},
		&mockEnrollmentWorkflow{},
		&mockInvoiceStore{},
		&mockPaymentStudents{},
		&mockExpirationArmer{},
		nil,
		zap.NewNop(),
	)

	_, err := svc.SetupPayment(context.Background(), "ghost")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}
