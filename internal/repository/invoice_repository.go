package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/review-center-api/internal/models"
)

// InvoiceRepository handles persistence of invoices.
type InvoiceRepository struct {
	db *sqlx.DB
}

// NewInvoiceRepository constructs the repository.
func NewInvoiceRepository(db *sqlx.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

const invoiceColumns = `id, enrollment_id, package, description, amount, paid, created_at, updated_at`

// Create persists a new invoice.
func (r *InvoiceRepository) Create(ctx context.Context, invoice *models.Invoice) error {
	if invoice.ID == "" {
		invoice.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if invoice.CreatedAt.IsZero() {
		invoice.CreatedAt = now
	}
	invoice.UpdatedAt = now
	const query = `INSERT INTO invoices (id, enrollment_id, package, description, amount, paid, created_at, updated_at)
        VALUES (:id, :enrollment_id, :package, :description, :amount, :paid, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, invoice); err != nil {
		return fmt.Errorf("create invoice: %w", err)
	}
	return nil
}

// Update rewrites the mutable invoice fields (amount and description).
func (r *InvoiceRepository) Update(ctx context.Context, invoice *models.Invoice) error {
	invoice.UpdatedAt = time.Now().UTC()
	const query = `UPDATE invoices SET amount = :amount, description = :description, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, invoice); err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}
	return nil
}

// ListByEnrollment returns an enrollment's invoices in creation order.
func (r *InvoiceRepository) ListByEnrollment(ctx context.Context, enrollmentID string) ([]models.Invoice, error) {
	query := fmt.Sprintf("SELECT %s FROM invoices WHERE enrollment_id = $1 ORDER BY created_at ASC", invoiceColumns)
	var invoices []models.Invoice
	if err := r.db.SelectContext(ctx, &invoices, query, enrollmentID); err != nil {
		return nil, fmt.Errorf("list enrollment invoices: %w", err)
	}
	return invoices, nil
}

// ListByStudent returns invoices across all of a student's enrollments.
func (r *InvoiceRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Invoice, error) {
	const query = `SELECT i.id, i.enrollment_id, i.package, i.description, i.amount, i.paid, i.created_at, i.updated_at
        FROM invoices i
        JOIN season_enrollments e ON e.id = i.enrollment_id
        WHERE e.student_id = $1
        ORDER BY i.created_at ASC`
	var invoices []models.Invoice
	if err := r.db.SelectContext(ctx, &invoices, query, studentID); err != nil {
		return nil, fmt.Errorf("list student invoices: %w", err)
	}
	return invoices, nil
}

// SumBalanceByStudent returns the outstanding balance across every invoice
// of every enrollment the student has.
func (r *InvoiceRepository) SumBalanceByStudent(ctx context.Context, studentID string) (float64, error) {
	const query = `SELECT COALESCE(SUM(i.amount - i.paid), 0)
        FROM invoices i
        JOIN season_enrollments e ON e.id = i.enrollment_id
        WHERE e.student_id = $1`
	var balance float64
	if err := r.db.GetContext(ctx, &balance, query, studentID); err != nil {
		return 0, fmt.Errorf("sum student balance: %w", err)
	}
	return balance, nil
}

// CountByEnrollment returns how many invoices an enrollment owns.
func (r *InvoiceRepository) CountByEnrollment(ctx context.Context, enrollmentID string) (int, error) {
	const query = `SELECT COUNT(*) FROM invoices WHERE enrollment_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, enrollmentID); err != nil {
		return 0, fmt.Errorf("count enrollment invoices: %w", err)
	}
	return count, nil
}
