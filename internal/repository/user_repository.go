package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/review-center-api/internal/models"
)

// UserRepository reads the login accounts linked to students. Account
// management lives in another service; this side only needs lookups.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository constructs the repository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByStudentID returns the linked account, or (nil, nil) when the student
// has none.
func (r *UserRepository) FindByStudentID(ctx context.Context, studentID string) (*models.User, error) {
	const query = `SELECT id, student_id, email, created_at FROM users WHERE student_id = $1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, studentID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}
