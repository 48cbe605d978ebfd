package models

import "time"

// Invoice is a billable line item owned by exactly one enrollment. Payments
// are recorded externally; Paid reflects the amount received so far.
type Invoice struct {
	ID           string    `db:"id" json:"id"`
	EnrollmentID string    `db:"enrollment_id" json:"enrollment_id"`
	Package      string    `db:"package" json:"package"`
	Description  string    `db:"description" json:"description,omitempty"`
	Amount       float64   `db:"amount" json:"amount"`
	Paid         float64   `db:"paid" json:"paid"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Balance is the outstanding amount on the invoice.
func (i Invoice) Balance() float64 {
	return i.Amount - i.Paid
}
