package models

import "time"

// User is the login account optionally linked to a student. Authentication
// itself lives outside this service; the link is only needed for exports.
type User struct {
	ID        string    `db:"id" json:"id"`
	StudentID string    `db:"student_id" json:"student_id"`
	Email     string    `db:"email" json:"email"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
