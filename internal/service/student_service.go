package service

import (
	"context"
	"database/sql"
	"path"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/review-center-api/internal/dto"
	"github.com/noah-isme/review-center-api/internal/models"
	appErrors "github.com/noah-isme/review-center-api/pkg/errors"
	"github.com/noah-isme/review-center-api/pkg/export"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id string) error
	UpdateProfilePic(ctx context.Context, id, path string) error
}

type studentLedger interface {
	EnrollmentStatus(ctx context.Context, studentID string) (models.EnrollmentStatus, error)
	CurrentEnrollment(ctx context.Context, studentID string) (*models.EnrollmentDetail, error)
	CurrentInvoices(ctx context.Context, studentID string) ([]models.Invoice, error)
	Balance(ctx context.Context, studentID string) (float64, error)
}

type userReader interface {
	FindByStudentID(ctx context.Context, studentID string) (*models.User, error)
}

type mediaStore interface {
	Replace(filename, previous string, data []byte) (string, error)
}

type statementRenderer interface {
	Render(st export.Statement) ([]byte, error)
}

// StudentProfileRequest carries every editable profile field. Which fields
// are required depends on the student's enrollment stage.
type StudentProfileRequest struct {
	FirstName   string     `json:"first_name" validate:"required"`
	MiddleName  string     `json:"middle_name"`
	LastName    string     `json:"last_name" validate:"required"`
	Birthdate   *time.Time `json:"birthdate"`
	CivilStatus string     `json:"civil_status" validate:"omitempty,oneof=single married widowed separated"`
	Sex         string     `json:"sex"`
	Address     string     `json:"address"`
	ContactNo   string     `json:"contact_no"`
	Email       string     `json:"email" validate:"omitempty,email"`

	ParentFirstName string `json:"parent_first_name"`
	ParentLastName  string `json:"parent_last_name"`
	ParentContact   string `json:"parent_contact"`

	LastAttended string `json:"last_attended"`
	CollegeYear  *int   `json:"college_year"`
	Recognition  string `json:"recognition"`
	HS           string `json:"hs"`
	HSYear       *int   `json:"hs_year"`
	Elem         string `json:"elem"`
	ElemYear     *int   `json:"elem_year"`

	ReferrerFirstName string `json:"referrer_first_name"`
	ReferrerLastName  string `json:"referrer_last_name"`
	ReferrerContact   string `json:"referrer_contact"`

	Why      string `json:"why"`
	Facebook string `json:"facebook"`
	Twitter  string `json:"twitter"`
	LinkedIn string `json:"linkedin"`

	Stage       models.Stage `json:"stage" validate:"gte=0,lte=3"`
	Agreed      bool         `json:"agreed"`
	PackageType string       `json:"package_type" validate:"omitempty,oneof=Standard Double"`
}

// StudentService handles student profile use-cases: stage-gated validation,
// persistence, media, and the exported representation.
type StudentService struct {
	repo       studentRepository
	ledger     studentLedger
	users      userReader
	media      mediaStore
	statements statementRenderer
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, ledger studentLedger, users userReader, media mediaStore, statements statementRenderer, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{
		repo:       repo,
		ledger:     ledger,
		users:      users,
		media:      media,
		statements: statements,
		validator:  validate,
		logger:     logger,
	}
}

// List returns students and pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return students, pagination, nil
}

// Get returns a student by ID.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// Create registers a new student after stage-gated validation.
func (s *StudentService) Create(ctx context.Context, req StudentProfileRequest) (*models.Student, error) {
	student := s.apply(&models.Student{}, req)
	if err := s.validate(ctx, student, ""); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}
	return student, nil
}

// Update modifies an existing student after stage-gated validation.
func (s *StudentService) Update(ctx context.Context, id string, req StudentProfileRequest) (*models.Student, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	student := s.apply(existing, req)
	if err := s.validate(ctx, student, id); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}
	return student, nil
}

// Delete removes a student and, through cascade, all enrollments and
// invoices.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	return nil
}

// SaveProfilePicture stores the uploaded image unless keep is set, in which
// case the existing picture is left untouched.
func (s *StudentService) SaveProfilePicture(ctx context.Context, id, filename string, data []byte, keep bool) (string, error) {
	student, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if keep {
		return student.ProfilePic, nil
	}
	target := path.Join("students", id, filename)
	saved, err := s.media.Replace(target, student.ProfilePic, data)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store profile picture")
	}
	if err := s.repo.UpdateProfilePic(ctx, id, saved); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record profile picture")
	}
	return saved, nil
}

// Export builds the serialized student representation: profile fields plus
// derived identity, enrollment and balance data.
func (s *StudentService) Export(ctx context.Context, id string) (*dto.StudentExport, error) {
	student, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	status, err := s.ledger.EnrollmentStatus(ctx, id)
	if err != nil {
		return nil, err
	}
	current, err := s.ledger.CurrentEnrollment(ctx, id)
	if err != nil {
		return nil, err
	}
	balance, err := s.ledger.Balance(ctx, id)
	if err != nil {
		return nil, err
	}
	user, err := s.users.FindByStudentID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load linked account")
	}

	out := &dto.StudentExport{
		Student:          *student,
		MiddleInitial:    student.MiddleInitial(),
		DisplayName:      student.Person.String(),
		EnrollmentStatus: status,
		Balance:          balance,
	}
	if current != nil {
		out.CurrentSeason = current.SeasonLabel
	}
	if user != nil {
		out.UserID = &user.ID
	}
	return out, nil
}

// Statement renders a printable statement of account for the student's
// current enrollment.
func (s *StudentService) Statement(ctx context.Context, id string) ([]byte, error) {
	student, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	current, err := s.ledger.CurrentEnrollment(ctx, id)
	if err != nil {
		return nil, err
	}
	invoices, err := s.ledger.CurrentInvoices(ctx, id)
	if err != nil {
		return nil, err
	}

	st := export.Statement{
		StudentName: student.Person.String(),
		PackageType: student.PackageType,
	}
	if current != nil {
		st.Season = current.SeasonLabel
	}
	for _, invoice := range invoices {
		st.Lines = append(st.Lines, export.StatementLine{
			Description: invoice.Description,
			Package:     invoice.Package,
			Amount:      invoice.Amount,
			Paid:        invoice.Paid,
			Balance:     invoice.Balance(),
		})
		st.TotalAmount += invoice.Amount
		st.TotalDue += invoice.Balance()
	}

	data, err := s.statements.Render(st)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render statement")
	}
	return data, nil
}

// ExportCSV renders the filtered student list as CSV.
func (s *StudentService) ExportCSV(ctx context.Context, filter models.StudentFilter) ([]byte, error) {
	filter.PageSize = 100
	students, _, err := s.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	dataset := export.Dataset{
		Headers: []string{"ID", "Name", "Email", "Package", "Stage"},
	}
	for _, student := range students {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"ID":      student.ID,
			"Name":    student.Person.String(),
			"Email":   student.Email,
			"Package": student.PackageType,
			"Stage":   strconv.Itoa(int(student.Stage)),
		})
	}
	data, err := export.NewCSVExporter().Render(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
	}
	return data, nil
}

func (s *StudentService) apply(student *models.Student, req StudentProfileRequest) *models.Student {
	student.FirstName = req.FirstName
	student.MiddleName = req.MiddleName
	student.LastName = req.LastName
	student.Birthdate = req.Birthdate
	student.CivilStatus = req.CivilStatus
	student.Sex = req.Sex
	student.Address = req.Address
	student.ContactNo = req.ContactNo
	student.Email = req.Email
	student.ParentFirstName = req.ParentFirstName
	student.ParentLastName = req.ParentLastName
	student.ParentContact = req.ParentContact
	student.LastAttended = req.LastAttended
	student.CollegeYear = req.CollegeYear
	student.Recognition = req.Recognition
	student.HS = req.HS
	student.HSYear = req.HSYear
	student.Elem = req.Elem
	student.ElemYear = req.ElemYear
	student.ReferrerFirstName = req.ReferrerFirstName
	student.ReferrerLastName = req.ReferrerLastName
	student.ReferrerContact = req.ReferrerContact
	student.Why = req.Why
	student.Facebook = req.Facebook
	student.Twitter = req.Twitter
	student.LinkedIn = req.LinkedIn
	student.Stage = req.Stage
	student.Agreed = req.Agreed
	student.PackageType = req.PackageType
	student.NormalizeEmail()
	return student
}

// validate runs the struct-level format rules, then the stage-gated presence
// and ordering checks, then email uniqueness. Failures surface field by
// field.
func (s *StudentService) validate(ctx context.Context, student *models.Student, excludeID string) error {
	if err := s.validator.Struct(studentFormatView(student)); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	fields := stageFieldFailures(student)

	if student.Email != "" {
		taken, err := s.repo.ExistsByEmail(ctx, student.Email, excludeID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate email")
		}
		if taken {
			fields["email"] = "is already taken"
		}
	}

	if len(fields) > 0 {
		return appErrors.WithFields(appErrors.Clone(appErrors.ErrValidation, "student profile is incomplete"), fields)
	}
	return nil
}

type formatView struct {
	FirstName   string `validate:"required"`
	LastName    string `validate:"required"`
	Email       string `validate:"omitempty,email"`
	CivilStatus string `validate:"omitempty,oneof=single married widowed separated"`
	PackageType string `validate:"omitempty,oneof=Standard Double"`
	Stage       int    `validate:"gte=0,lte=3"`
}

func studentFormatView(student *models.Student) formatView {
	return formatView{
		FirstName:   student.FirstName,
		LastName:    student.LastName,
		Email:       student.Email,
		CivilStatus: student.CivilStatus,
		PackageType: student.PackageType,
		Stage:       int(student.Stage),
	}
}

// stageFieldFailures enforces the field groups required by the student's
// enrollment stage.
func stageFieldFailures(student *models.Student) map[string]string {
	fields := map[string]string{}
	groups := models.RequiredFieldGroups(student.Stage)

	if groups[models.FieldGroupInfo] {
		requirePresent(fields, "civil_status", student.CivilStatus)
		requirePresent(fields, "sex", student.Sex)
		requirePresent(fields, "address", student.Address)
		requirePresent(fields, "contact_no", student.ContactNo)
		requirePresent(fields, "email", student.Email)
	}

	if groups[models.FieldGroupEducation] {
		requirePresent(fields, "last_attended", student.LastAttended)
		requirePresent(fields, "hs", student.HS)
		requirePresent(fields, "elem", student.Elem)
		if student.CollegeYear == nil {
			fields["college_year"] = "can't be blank"
		}
		if student.HSYear == nil {
			fields["hs_year"] = "can't be blank"
		}
		if student.ElemYear == nil {
			fields["elem_year"] = "can't be blank"
		}
		if student.CollegeYear != nil && student.HSYear != nil && *student.CollegeYear <= *student.HSYear {
			fields["college_year"] = "must be later than High School Year"
		}
		if student.HSYear != nil && student.ElemYear != nil && *student.HSYear <= *student.ElemYear {
			fields["hs_year"] = "must be later than Elementary Year"
		}
	}

	// The others group is reserved; nothing additional is gated yet.
	return fields
}

func requirePresent(fields map[string]string, name, value string) {
	if value == "" {
		fields[name] = "can't be blank"
	}
}
