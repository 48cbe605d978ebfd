package models

import "time"

// EnrollmentStatus represents the lifecycle of a season enrollment.
type EnrollmentStatus string

// Possible enrollment statuses. Undefined means no enrollment exists for a
// season; Reserved is an intermediate state between first contact and full
// payment.
const (
	EnrollmentStatusUndefined EnrollmentStatus = "UNDEFINED"
	EnrollmentStatusEnrolling EnrollmentStatus = "ENROLLING"
	EnrollmentStatusReserved  EnrollmentStatus = "RESERVED"
	EnrollmentStatusEnrolled  EnrollmentStatus = "ENROLLED"
)

// SeasonEnrollment binds one student to one review season. At most one
// enrollment exists per (season, student) pair; invoices cascade with it.
type SeasonEnrollment struct {
	ID        string           `db:"id" json:"id"`
	SeasonID  string           `db:"season_id" json:"season_id"`
	StudentID string           `db:"student_id" json:"student_id"`
	Status    EnrollmentStatus `db:"status" json:"status"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
}

// Enrolled reports whether the enrollment reached its terminal success state.
func (e SeasonEnrollment) Enrolled() bool {
	return e.Status == EnrollmentStatusEnrolled
}

// Enrolling reports whether the enrollment process is still underway.
func (e SeasonEnrollment) Enrolling() bool {
	return e.Status == EnrollmentStatusEnrolling
}

// EnrollmentDetail enriches SeasonEnrollment with its season for ordering and
// display.
type EnrollmentDetail struct {
	SeasonEnrollment
	SeasonLabel string    `db:"season_label" json:"season_label"`
	SeasonStart time.Time `db:"season_start" json:"season_start"`
}
