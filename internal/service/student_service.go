package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/student-registration-api/internal/models"
	"github.com/noah-isme/student-registration-api/internal/repository"
	appErrors "github.com/noah-isme/student-registration-api/pkg/errors"
)

// codeInsertRetries bounds how often registration regenerates a student code
// after losing the unique-index race to a concurrent registration.
const codeInsertRetries = 3

type studentRepository interface {
	CountByCodePrefix(ctx context.Context, prefix string) (int, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	CreateWithDocuments(ctx context.Context, student *models.Student, docs []models.StudentDocument) error
	FindByCode(ctx context.Context, code string) (*models.Student, error)
	FindViewByCode(ctx context.Context, code string) (*models.StudentView, error)
	ListViews(ctx context.Context, filter models.StudentFilter) ([]models.StudentView, error)
	ListDocuments(ctx context.Context, studentCode string) ([]models.StudentDocument, error)
	CountByYearDigit(ctx context.Context) (map[string]int, error)
	Update(ctx context.Context, student *models.Student) error
	DeleteWithDocuments(ctx context.Context, code string) error
}

type studentCourseRepository interface {
	ExistsByCode(ctx context.Context, code string) (bool, error)
	FindActiveByCode(ctx context.Context, code string) (*models.Course, error)
	Create(ctx context.Context, course *models.Course) error
}

// RegisterStudentRequest holds the multipart form fields for registration.
// Document files ride alongside as DocumentUpload values.
type RegisterStudentRequest struct {
	FirstName       string `form:"firstName" json:"firstName" validate:"required,max=200"`
	LastName        string `form:"lastName" json:"lastName" validate:"required,max=200"`
	MiddleName      string `form:"middleName" json:"middleName" validate:"max=200"`
	Birthdate       string `form:"birthdate" json:"birthdate" validate:"required"`
	Age             int    `form:"age" json:"age" validate:"gte=0"`
	Gender          string `form:"gender" json:"gender" validate:"max=10"`
	Address         string `form:"address" json:"address" validate:"max=255"`
	Contact         string `form:"contact" json:"contact" validate:"max=15"`
	GuardianName    string `form:"guardianName" json:"guardianName" validate:"max=100"`
	GuardianAddress string `form:"guardianAddress" json:"guardianAddress" validate:"max=255"`
	GuardianContact string `form:"guardianContact" json:"guardianContact" validate:"max=15"`
	Hobby           string `form:"hobby" json:"hobby" validate:"max=255"`
	Status          string `form:"status" json:"status" validate:"max=50"`
	CourseCode      string `form:"courseCode" json:"courseCode" validate:"required,max=10"`
	CourseName      string `form:"courseName" json:"courseName" validate:"max=100"`
}

// UpdateStudentRequest holds payload for overwriting a student's mutable
// fields.
type UpdateStudentRequest struct {
	FirstName       string `json:"firstName" validate:"required,max=200"`
	LastName        string `json:"lastName" validate:"required,max=200"`
	MiddleName      string `json:"middleName" validate:"max=200"`
	Birthdate       string `json:"birthdate" validate:"required"`
	Age             int    `json:"age" validate:"gte=0"`
	Gender          string `json:"gender" validate:"max=10"`
	Address         string `json:"address" validate:"max=255"`
	Contact         string `json:"contact" validate:"max=15"`
	GuardianName    string `json:"guardianName" validate:"max=100"`
	GuardianAddress string `json:"guardianAddress" validate:"max=255"`
	GuardianContact string `json:"guardianContact" validate:"max=15"`
	Hobby           string `json:"hobby" validate:"max=255"`
	Status          string `json:"status" validate:"max=50"`
	CourseCode      string `json:"courseCode" validate:"required,max=10"`
	CourseName      string `json:"courseName" validate:"max=100"`
}

// DocumentUpload is an in-memory file received with a registration.
type DocumentUpload struct {
	FileName string
	FileType string
	Data     []byte
}

// StudentService handles student use-cases.
type StudentService struct {
	repo             studentRepository
	courses          studentCourseRepository
	validator        *validator.Validate
	logger           *zap.Logger
	autoCreateCourse bool
	now              func() time.Time
}

// NewStudentService constructs the student service. autoCreateCourse keeps
// the historical update behaviour of creating a stub course for unknown
// references; registration always requires an existing course.
func NewStudentService(repo studentRepository, courses studentCourseRepository, validate *validator.Validate, logger *zap.Logger, autoCreateCourse bool) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{
		repo:             repo,
		courses:          courses,
		validator:        validate,
		logger:           logger,
		autoCreateCourse: autoCreateCourse,
		now:              time.Now,
	}
}

// GenerateUniqueCode produces the next free student code of the form
// SC{YY}-{NNNN}: count existing codes for the current two-digit year, propose
// count+1+attempt, and re-check while a collision exists.
func (s *StudentService) GenerateUniqueCode(ctx context.Context) (string, error) {
	year := s.now().UTC().Format("06")
	prefix := "SC" + year

	count, err := s.repo.CountByCodePrefix(ctx, prefix)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count student codes")
	}

	for attempt := 0; count+1+attempt <= 9999; attempt++ {
		code := fmt.Sprintf("%s-%04d", prefix, count+1+attempt)
		exists, err := s.repo.ExistsByCode(ctx, code)
		if err != nil {
			return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check student code")
		}
		if !exists {
			return code, nil
		}
	}
	return "", appErrors.Clone(appErrors.ErrConflict, "no free student code available for this year")
}

// Register creates a student with a fresh student code and persists any
// uploaded documents in the same transaction. The referenced course must
// already exist and not be deleted. Losing the student_code unique-index
// race triggers regeneration.
func (s *StudentService) Register(ctx context.Context, req RegisterStudentRequest, files []DocumentUpload) (*models.StudentView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	birthdate, err := parseBirthdate(req.Birthdate)
	if err != nil {
		return nil, err
	}

	if _, err := s.courses.FindActiveByCode(ctx, req.CourseCode); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "invalid course code")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	docs := make([]models.StudentDocument, 0, len(files))
	for _, f := range files {
		docs = append(docs, models.StudentDocument{
			FileName: f.FileName,
			FileType: f.FileType,
			Data:     f.Data,
		})
	}

	var lastErr error
	for attempt := 0; attempt < codeInsertRetries; attempt++ {
		code, err := s.GenerateUniqueCode(ctx)
		if err != nil {
			return nil, err
		}

		student := &models.Student{
			StudentCode:     &code,
			FirstName:       req.FirstName,
			LastName:        req.LastName,
			MiddleName:      optional(req.MiddleName),
			Birthdate:       birthdate,
			Age:             req.Age,
			Gender:          req.Gender,
			Address:         req.Address,
			Contact:         req.Contact,
			GuardianName:    req.GuardianName,
			GuardianAddress: req.GuardianAddress,
			GuardianContact: req.GuardianContact,
			Hobby:           req.Hobby,
			CourseCode:      req.CourseCode,
			Status:          req.Status,
			AccountStatus:   models.AccountStatusActive,
		}

		if err := s.repo.CreateWithDocuments(ctx, student, docs); err != nil {
			if repository.IsUniqueViolation(err) {
				s.logger.Warn("student code collision, regenerating", zap.String("student_code", code))
				lastErr = err
				continue
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to register student")
		}

		return s.GetByCode(ctx, code)
	}

	return nil, appErrors.Wrap(lastErr, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "could not reserve a unique student code")
}

// GetByCode returns the joined student view including attached documents.
func (s *StudentService) GetByCode(ctx context.Context, code string) (*models.StudentView, error) {
	view, err := s.repo.FindViewByCode(ctx, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	docs, err := s.repo.ListDocuments(ctx, code)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student documents")
	}
	view.Documents = make([]models.DocumentView, 0, len(docs))
	for _, d := range docs {
		view.Documents = append(view.Documents, models.DocumentView{
			FileName: d.FileName,
			FileType: d.FileType,
			Data:     d.Data,
		})
	}
	return view, nil
}

// List returns all students as joined views.
func (s *StudentService) List(ctx context.Context) ([]models.StudentView, error) {
	views, err := s.repo.ListViews(ctx, models.StudentFilter{})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	return views, nil
}

// Search filters students by name substring, exact course code, and year
// level inferred from the course code's first digit character.
func (s *StudentService) Search(ctx context.Context, filter models.StudentFilter) ([]models.StudentView, error) {
	if filter.YearLevel != nil && (*filter.YearLevel < 1 || *filter.YearLevel > 4) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "yearLevel must be between 1 and 4")
	}
	views, err := s.repo.ListViews(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to search students")
	}
	return views, nil
}

// CountEnrolledByYear buckets enrolled students into year levels 1-4 based on
// the first digit character of their course code. Absent buckets default to
// zero; codes with digits outside 1-4 are excluded.
func (s *StudentService) CountEnrolledByYear(ctx context.Context) (models.YearLevelCount, error) {
	raw, err := s.repo.CountByYearDigit(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count enrollments")
	}

	counts := models.YearLevelCount{1: 0, 2: 0, 3: 0, 4: 0}
	for digit, total := range raw {
		switch digit {
		case "1":
			counts[1] = total
		case "2":
			counts[2] = total
		case "3":
			counts[3] = total
		case "4":
			counts[4] = total
		}
	}
	return counts, nil
}

// Update overwrites a student's mutable fields. An unknown course reference
// either creates a stub course (historical behaviour, config-gated) or fails
// with a conflict.
func (s *StudentService) Update(ctx context.Context, code string, req UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	birthdate, err := parseBirthdate(req.Birthdate)
	if err != nil {
		return nil, err
	}

	student, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	exists, err := s.courses.ExistsByCode(ctx, req.CourseCode)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check course code")
	}
	if !exists {
		if !s.autoCreateCourse {
			return nil, appErrors.Clone(appErrors.ErrConflict, "invalid course code")
		}
		stub := &models.Course{CourseCode: req.CourseCode, CourseName: req.CourseName}
		if err := s.courses.Create(ctx, stub); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
		}
		s.logger.Info("stub course auto-created during student update",
			zap.String("course_code", req.CourseCode), zap.String("student_code", code))
	}

	student.FirstName = req.FirstName
	student.LastName = req.LastName
	student.MiddleName = optional(req.MiddleName)
	student.Birthdate = birthdate
	student.Age = req.Age
	student.Gender = req.Gender
	student.Address = req.Address
	student.Contact = req.Contact
	student.GuardianName = req.GuardianName
	student.GuardianAddress = req.GuardianAddress
	student.GuardianContact = req.GuardianContact
	student.Hobby = req.Hobby
	student.CourseCode = req.CourseCode
	student.Status = req.Status

	if err := s.repo.Update(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}
	return student, nil
}

// Delete hard-deletes a student and its documents.
func (s *StudentService) Delete(ctx context.Context, code string) error {
	if _, err := s.repo.FindByCode(ctx, code); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if err := s.repo.DeleteWithDocuments(ctx, code); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	s.logger.Info("student hard-deleted", zap.String("student_code", code))
	return nil
}

// SoftDeactivate hides a student, forcing the account inactive and stamping
// the deactivation time.
func (s *StudentService) SoftDeactivate(ctx context.Context, code string) (*models.Student, error) {
	student, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	stamp := s.now().UTC().Format(models.TimestampFormat)
	student.IsDeleted = true
	student.AccountStatus = models.AccountStatusInactive
	student.DeletedAt = &stamp
	if err := s.repo.Update(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate student")
	}
	return student, nil
}

// SoftReactivate reverses a deactivation. Reactivating a student that is not
// currently deactivated yields not-found.
func (s *StudentService) SoftReactivate(ctx context.Context, code string) (*models.Student, error) {
	student, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if !student.IsDeleted {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student is not deactivated")
	}

	stamp := s.now().UTC().Format(models.TimestampFormat)
	student.IsDeleted = false
	student.AccountStatus = models.AccountStatusActive
	student.DeletedAt = nil
	student.RestoredAt = &stamp
	if err := s.repo.Update(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reactivate student")
	}
	return student, nil
}

func parseBirthdate(raw string) (models.DateOnly, error) {
	t, err := time.Parse(models.DateFormat, raw)
	if err != nil {
		return models.DateOnly{}, appErrors.Clone(appErrors.ErrValidation, "invalid birthdate, expected yyyy-MM-dd")
	}
	return models.NewDateOnly(t), nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
