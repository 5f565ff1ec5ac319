package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/student-registration-api/internal/models"
	appErrors "github.com/noah-isme/student-registration-api/pkg/errors"
)

type courseRepository interface {
	ExistsByCode(ctx context.Context, code string) (bool, error)
	Create(ctx context.Context, course *models.Course) error
	ListActive(ctx context.Context) ([]models.Course, error)
	FindActiveByCode(ctx context.Context, code string) (*models.Course, error)
	FindByCode(ctx context.Context, code string) (*models.Course, error)
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, code string) error
	CountByStatus(ctx context.Context) (*models.CourseStatusCount, error)
}

// CreateCourseRequest holds payload for creating courses.
type CreateCourseRequest struct {
	CourseCode  string `json:"courseCode" validate:"required,max=10"`
	CourseName  string `json:"courseName" validate:"required,max=100"`
	Duration    int    `json:"durationInSemesters" validate:"gte=0"`
	Department  string `json:"department" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
	Status      string `json:"status" validate:"required,oneof=Active Inactive"`
}

// UpdateCourseRequest holds payload for overwriting a course's mutable
// fields. No partial-patch semantics: every field is applied.
type UpdateCourseRequest struct {
	CourseName  string `json:"courseName" validate:"required,max=100"`
	Duration    int    `json:"durationInSemesters" validate:"gte=0"`
	Department  string `json:"department" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
	Status      string `json:"status" validate:"required,oneof=Active Inactive"`
}

// CourseService handles course use-cases.
type CourseService struct {
	repo      courseRepository
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewCourseService constructs the course service.
func NewCourseService(repo courseRepository, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{repo: repo, validator: validate, logger: logger, now: time.Now}
}

// Add registers a new course, rejecting duplicate codes.
func (s *CourseService) Add(ctx context.Context, req CreateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}

	exists, err := s.repo.ExistsByCode(ctx, req.CourseCode)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check course code")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "a course with this course code already exists")
	}

	course := &models.Course{
		CourseCode:  req.CourseCode,
		CourseName:  req.CourseName,
		Duration:    req.Duration,
		Department:  req.Department,
		Description: req.Description,
		Status:      req.Status,
	}
	if err := s.repo.Create(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}
	return course, nil
}

// List returns all courses that are not soft-deleted.
func (s *CourseService) List(ctx context.Context) ([]models.Course, error) {
	courses, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	return courses, nil
}

// GetByCode returns a non-deleted course by code.
func (s *CourseService) GetByCode(ctx context.Context, code string) (*models.Course, error) {
	course, err := s.repo.FindActiveByCode(ctx, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return course, nil
}

// Update overwrites a course's mutable fields.
func (s *CourseService) Update(ctx context.Context, code string, req UpdateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}

	course, err := s.repo.FindActiveByCode(ctx, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	course.CourseName = req.CourseName
	course.Duration = req.Duration
	course.Department = req.Department
	course.Description = req.Description
	course.Status = req.Status
	if err := s.repo.Update(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course")
	}
	return course, nil
}

// SoftDelete hides a course from the active read paths, forcing it inactive
// and stamping the deletion time.
func (s *CourseService) SoftDelete(ctx context.Context, code string) (*models.Course, error) {
	course, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	stamp := s.now().UTC().Format(models.TimestampFormat)
	course.IsDeleted = true
	course.Status = models.CourseStatusInactive
	course.DeletedAt = &stamp
	if err := s.repo.Update(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to soft-delete course")
	}
	return course, nil
}

// SoftRestore reverses a soft delete. Restoring a course that is not
// currently deleted yields not-found.
func (s *CourseService) SoftRestore(ctx context.Context, code string) (*models.Course, error) {
	course, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	if !course.IsDeleted {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "course is not deleted")
	}

	stamp := s.now().UTC().Format(models.TimestampFormat)
	course.IsDeleted = false
	course.Status = models.CourseStatusActive
	course.DeletedAt = nil
	course.RestoredAt = &stamp
	if err := s.repo.Update(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to restore course")
	}
	return course, nil
}

// HardDelete removes the course row permanently.
func (s *CourseService) HardDelete(ctx context.Context, code string) error {
	if _, err := s.repo.FindByCode(ctx, code); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	if err := s.repo.Delete(ctx, code); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete course")
	}
	s.logger.Info("course hard-deleted", zap.String("course_code", code))
	return nil
}

// CountByStatus reports active and inactive counts over non-deleted courses.
func (s *CourseService) CountByStatus(ctx context.Context) (*models.CourseStatusCount, error) {
	count, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count courses")
	}
	return count, nil
}
