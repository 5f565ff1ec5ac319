package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/student-registration-api/internal/models"
)

const courseColumns = "course_code, course_name, duration, department, description, status, is_deleted, deleted_at, restored_at"

// CourseRepository manages persistence for course records.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs a CourseRepository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// ExistsByCode checks if a course with the given code exists, deleted or not.
func (r *CourseRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	const query = `SELECT 1 FROM courses WHERE course_code = $1 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, code); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check course code: %w", err)
	}
	return true, nil
}

// Create inserts a new course record.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	const query = `INSERT INTO courses (course_code, course_name, duration, department, description, status, is_deleted, deleted_at, restored_at)
        VALUES (:course_code, :course_name, :duration, :department, :description, :status, :is_deleted, :deleted_at, :restored_at)`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// ListActive returns all courses that are not soft-deleted.
func (r *CourseRepository) ListActive(ctx context.Context) ([]models.Course, error) {
	query := fmt.Sprintf(`SELECT %s FROM courses WHERE is_deleted = false ORDER BY course_code`, courseColumns)
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// FindActiveByCode fetches a non-deleted course by code.
func (r *CourseRepository) FindActiveByCode(ctx context.Context, code string) (*models.Course, error) {
	query := fmt.Sprintf(`SELECT %s FROM courses WHERE course_code = $1 AND is_deleted = false LIMIT 1`, courseColumns)
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, code); err != nil {
		return nil, err
	}
	return &course, nil
}

// FindByCode fetches a course by code regardless of deletion state.
func (r *CourseRepository) FindByCode(ctx context.Context, code string) (*models.Course, error) {
	query := fmt.Sprintf(`SELECT %s FROM courses WHERE course_code = $1 LIMIT 1`, courseColumns)
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, code); err != nil {
		return nil, err
	}
	return &course, nil
}

// Update overwrites all mutable course fields, including the soft-delete
// metadata, keyed by course code.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	const query = `UPDATE courses SET course_name = :course_name, duration = :duration, department = :department,
        description = :description, status = :status, is_deleted = :is_deleted, deleted_at = :deleted_at, restored_at = :restored_at
        WHERE course_code = :course_code`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	return nil
}

// Delete removes a course row permanently. Dependent students go with it via
// the foreign-key cascade.
func (r *CourseRepository) Delete(ctx context.Context, code string) error {
	const query = `DELETE FROM courses WHERE course_code = $1`
	if _, err := r.db.ExecContext(ctx, query, code); err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	return nil
}

// CountByStatus counts non-deleted courses grouped into active and inactive.
func (r *CourseRepository) CountByStatus(ctx context.Context) (*models.CourseStatusCount, error) {
	const query = `SELECT
        COUNT(*) FILTER (WHERE status = $1) AS active,
        COUNT(*) FILTER (WHERE status = $2) AS inactive
        FROM courses WHERE is_deleted = false`
	var count models.CourseStatusCount
	row := r.db.QueryRowxContext(ctx, query, models.CourseStatusActive, models.CourseStatusInactive)
	if err := row.Scan(&count.Active, &count.Inactive); err != nil {
		return nil, fmt.Errorf("count courses by status: %w", err)
	}
	return &count, nil
}
