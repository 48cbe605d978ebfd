package dto

import "github.com/noah-isme/review-center-api/internal/models"

// StudentExport is the serialized representation handed to API consumers.
// user_id is an explicit null when the student has no linked account.
type StudentExport struct {
	models.Student
	MiddleInitial    string                  `json:"middle_initial"`
	DisplayName      string                  `json:"display_name"`
	EnrollmentStatus models.EnrollmentStatus `json:"enrollment_status"`
	CurrentSeason    string                  `json:"current_season,omitempty"`
	UserID           *string                 `json:"user_id"`
	Balance          float64                 `json:"balance"`
}
