package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/review-center-api/internal/models"
)

// StudentRepository handles persistence of students.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs the repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

const studentColumns = `id, first_name, middle_name, last_name, birthdate, civil_status, sex, address, contact_no, email,
        parent_first_name, parent_last_name, parent_contact,
        last_attended, college_year, recognition, hs, hs_year, elem, elem_year,
        referrer_first_name, referrer_last_name, referrer_contact,
        why, facebook, twitter, linkedin,
        stage, agreed, finish_enrollment_on, package_type, profile_pic, created_at, updated_at`

// FindByID returns a student by ID.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE id = $1", studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// ExistsByEmail reports whether the (lowercased) email is already taken.
func (r *StudentRepository) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	query := "SELECT 1 FROM students WHERE email = $1"
	args := []interface{}{strings.ToLower(email)}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	query += " LIMIT 1"
	var one int
	if err := r.db.GetContext(ctx, &one, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check email: %w", err)
	}
	return true, nil
}

// Create persists a new student record.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now
	const query = `INSERT INTO students (id, first_name, middle_name, last_name, birthdate, civil_status, sex, address, contact_no, email,
        parent_first_name, parent_last_name, parent_contact,
        last_attended, college_year, recognition, hs, hs_year, elem, elem_year,
        referrer_first_name, referrer_last_name, referrer_contact,
        why, facebook, twitter, linkedin,
        stage, agreed, finish_enrollment_on, package_type, profile_pic, created_at, updated_at)
        VALUES (:id, :first_name, :middle_name, :last_name, :birthdate, :civil_status, :sex, :address, :contact_no, :email,
        :parent_first_name, :parent_last_name, :parent_contact,
        :last_attended, :college_year, :recognition, :hs, :hs_year, :elem, :elem_year,
        :referrer_first_name, :referrer_last_name, :referrer_contact,
        :why, :facebook, :twitter, :linkedin,
        :stage, :agreed, :finish_enrollment_on, :package_type, :profile_pic, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Update rewrites the full student record.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()
	const query = `UPDATE students SET first_name = :first_name, middle_name = :middle_name, last_name = :last_name,
        birthdate = :birthdate, civil_status = :civil_status, sex = :sex, address = :address,
        contact_no = :contact_no, email = :email,
        parent_first_name = :parent_first_name, parent_last_name = :parent_last_name, parent_contact = :parent_contact,
        last_attended = :last_attended, college_year = :college_year, recognition = :recognition,
        hs = :hs, hs_year = :hs_year, elem = :elem, elem_year = :elem_year,
        referrer_first_name = :referrer_first_name, referrer_last_name = :referrer_last_name, referrer_contact = :referrer_contact,
        why = :why, facebook = :facebook, twitter = :twitter, linkedin = :linkedin,
        stage = :stage, agreed = :agreed, finish_enrollment_on = :finish_enrollment_on,
        package_type = :package_type, profile_pic = :profile_pic, updated_at = :updated_at
        WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return nil
}

// Delete removes the student; enrollments and invoices cascade.
func (r *StudentRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM students WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	return nil
}

// SetFinishedAt stamps the enrollment-process completion time.
func (r *StudentRepository) SetFinishedAt(ctx context.Context, id string, finishedAt time.Time) error {
	const query = `UPDATE students SET finish_enrollment_on = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, finishedAt, time.Now().UTC()); err != nil {
		return fmt.Errorf("set finished at: %w", err)
	}
	return nil
}

// UpdateProfilePic stores the saved picture path.
func (r *StudentRepository) UpdateProfilePic(ctx context.Context, id, path string) error {
	const query = `UPDATE students SET profile_pic = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, path, time.Now().UTC()); err != nil {
		return fmt.Errorf("update profile pic: %w", err)
	}
	return nil
}

// List returns students filtered by search text and, optionally, by season
// and enrollment status. The search matches name, email, school and address
// at query time; no denormalised search column is kept.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	base := "FROM students st"
	var conditions []string
	var args []interface{}

	if filter.SeasonID != "" {
		join := "EXISTS (SELECT 1 FROM season_enrollments e WHERE e.student_id = st.id AND e.season_id = $%d"
		args = append(args, filter.SeasonID)
		cond := fmt.Sprintf(join, len(args))
		if filter.Status != "" && filter.Status != models.EnrollmentStatusUndefined {
			args = append(args, filter.Status)
			cond += fmt.Sprintf(" AND e.status = $%d", len(args))
		}
		cond += ")"
		conditions = append(conditions, cond)
	} else if filter.Status != "" && filter.Status != models.EnrollmentStatusUndefined {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("EXISTS (SELECT 1 FROM season_enrollments e WHERE e.student_id = st.id AND e.status = $%d)", len(args)))
	}

	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		idx := len(args)
		conditions = append(conditions, fmt.Sprintf(`(LOWER(st.first_name) LIKE $%d OR LOWER(st.last_name) LIKE $%d
            OR LOWER(st.middle_name) LIKE $%d OR st.email LIKE $%d
            OR LOWER(st.last_attended) LIKE $%d OR LOWER(st.address) LIKE $%d)`, idx, idx, idx, idx, idx, idx))
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	allowedSorts := map[string]string{
		"last_name":  "st.last_name",
		"email":      "st.email",
		"created_at": "st.created_at",
	}
	orderBy := allowedSorts[filter.SortBy]
	if orderBy == "" {
		orderBy = "st.last_name"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d",
		studentColumns, base+clause, orderBy, order, size, offset)

	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}
