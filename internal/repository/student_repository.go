package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/student-registration-api/internal/models"
)

const studentColumns = `id, student_code, first_name, last_name, middle_name, birthdate, age, gender, address, contact,
        guardian_name, guardian_address, guardian_contact, hobby, course_code, status, account_status, is_deleted, deleted_at, restored_at`

const studentViewColumns = `s.student_code, s.first_name, s.last_name, s.middle_name, s.birthdate, s.age, s.gender, s.address, s.contact,
        s.guardian_name, s.guardian_address, s.guardian_contact, s.hobby, s.account_status,
        c.course_code AS course_code, c.course_name AS course_name, c.status AS course_status`

// StudentRepository manages persistence for students and their documents.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// IsUniqueViolation reports whether err is a Postgres unique constraint
// violation. The student_code partial unique index surfaces the
// code-generation race through this check.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

// CountByCodePrefix counts students whose code starts with the given prefix.
func (r *StudentRepository) CountByCodePrefix(ctx context.Context, prefix string) (int, error) {
	const query = `SELECT COUNT(*) FROM students WHERE student_code LIKE $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, prefix+"%"); err != nil {
		return 0, fmt.Errorf("count students by code prefix: %w", err)
	}
	return count, nil
}

// ExistsByCode checks if a student with the given code exists.
func (r *StudentRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	const query = `SELECT 1 FROM students WHERE student_code = $1 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, code); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check student code: %w", err)
	}
	return true, nil
}

// CreateWithDocuments inserts a student and its uploaded documents in one
// transaction. A unique violation on student_code is returned unwrapped so
// callers can retry code generation.
func (r *StudentRepository) CreateWithDocuments(ctx context.Context, student *models.Student, docs []models.StudentDocument) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin registration tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const insertStudent = `INSERT INTO students (student_code, first_name, last_name, middle_name, birthdate, age, gender, address, contact,
        guardian_name, guardian_address, guardian_contact, hobby, course_code, status, account_status, is_deleted, deleted_at, restored_at)
        VALUES (:student_code, :first_name, :last_name, :middle_name, :birthdate, :age, :gender, :address, :contact,
        :guardian_name, :guardian_address, :guardian_contact, :hobby, :course_code, :status, :account_status, :is_deleted, :deleted_at, :restored_at)
        RETURNING id`

	rows, err := tx.NamedQuery(insertStudent, student)
	if err != nil {
		if IsUniqueViolation(err) {
			return err
		}
		return fmt.Errorf("create student: %w", err)
	}
	if rows.Next() {
		if err := rows.Scan(&student.ID); err != nil {
			rows.Close()
			return fmt.Errorf("scan student id: %w", err)
		}
	}
	rows.Close()

	const insertDoc = `INSERT INTO student_documents (student_code, file_name, file_type, data)
        VALUES (:student_code, :file_name, :file_type, :data)`
	for i := range docs {
		if student.StudentCode != nil {
			docs[i].StudentCode = *student.StudentCode
		}
		if _, err := tx.NamedExecContext(ctx, insertDoc, &docs[i]); err != nil {
			return fmt.Errorf("create student document: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit registration tx: %w", err)
	}
	return nil
}

// FindByCode fetches a student row by student code.
func (r *StudentRepository) FindByCode(ctx context.Context, code string) (*models.Student, error) {
	query := fmt.Sprintf(`SELECT %s FROM students WHERE student_code = $1 LIMIT 1`, studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, code); err != nil {
		return nil, err
	}
	return &student, nil
}

// FindViewByCode fetches the joined read model for a student.
func (r *StudentRepository) FindViewByCode(ctx context.Context, code string) (*models.StudentView, error) {
	query := fmt.Sprintf(`SELECT %s FROM students s LEFT JOIN courses c ON c.course_code = s.course_code
        WHERE s.student_code = $1 LIMIT 1`, studentViewColumns)
	var view models.StudentView
	if err := r.db.GetContext(ctx, &view, query, code); err != nil {
		return nil, err
	}
	return &view, nil
}

// ListViews returns joined student views matching the filter. The name match
// is a case-sensitive substring over first or last name; the year level
// compares the first digit character appearing in the course code.
func (r *StudentRepository) ListViews(ctx context.Context, filter models.StudentFilter) ([]models.StudentView, error) {
	base := "FROM students s LEFT JOIN courses c ON c.course_code = s.course_code"
	conditions := []string{"1=1"}
	var args []interface{}

	if filter.Name != "" {
		conditions = append(conditions, fmt.Sprintf("(s.first_name LIKE $%d OR s.last_name LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Name+"%")
	}
	if filter.CourseCode != "" {
		conditions = append(conditions, fmt.Sprintf("c.course_code = $%d", len(args)+1))
		args = append(args, filter.CourseCode)
	}
	if filter.YearLevel != nil {
		conditions = append(conditions, fmt.Sprintf("substring(c.course_code from '[0-9]') = $%d", len(args)+1))
		args = append(args, fmt.Sprintf("%d", *filter.YearLevel))
	}

	query := fmt.Sprintf(`SELECT %s %s WHERE %s ORDER BY s.id`, studentViewColumns, base, strings.Join(conditions, " AND "))

	var views []models.StudentView
	if err := r.db.SelectContext(ctx, &views, query, args...); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return views, nil
}

// ListDocuments returns all documents attached to a student.
func (r *StudentRepository) ListDocuments(ctx context.Context, studentCode string) ([]models.StudentDocument, error) {
	const query = `SELECT id, student_code, file_name, file_type, data FROM student_documents WHERE student_code = $1 ORDER BY id`
	var docs []models.StudentDocument
	if err := r.db.SelectContext(ctx, &docs, query, studentCode); err != nil {
		return nil, fmt.Errorf("list student documents: %w", err)
	}
	return docs, nil
}

// CountByYearDigit buckets students by the first digit character found in
// their course code. Rows without a digit in the code are not returned.
func (r *StudentRepository) CountByYearDigit(ctx context.Context) (map[string]int, error) {
	const query = `SELECT substring(course_code from '[0-9]') AS digit, COUNT(*) AS total
        FROM students WHERE course_code IS NOT NULL
        GROUP BY substring(course_code from '[0-9]')`
	rows, err := r.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("count students by year digit: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var digit sql.NullString
		var total int
		if err := rows.Scan(&digit, &total); err != nil {
			return nil, fmt.Errorf("scan year digit row: %w", err)
		}
		if digit.Valid {
			counts[digit.String] = total
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate year digit rows: %w", err)
	}
	return counts, nil
}

// Update overwrites all mutable student fields keyed by id.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	const query = `UPDATE students SET first_name = :first_name, last_name = :last_name, middle_name = :middle_name,
        birthdate = :birthdate, age = :age, gender = :gender, address = :address, contact = :contact,
        guardian_name = :guardian_name, guardian_address = :guardian_address, guardian_contact = :guardian_contact,
        hobby = :hobby, course_code = :course_code, status = :status, account_status = :account_status,
        is_deleted = :is_deleted, deleted_at = :deleted_at, restored_at = :restored_at
        WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return nil
}

// DeleteWithDocuments hard-deletes a student and its documents in one
// transaction.
func (r *StudentRepository) DeleteWithDocuments(ctx context.Context, code string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM student_documents WHERE student_code = $1`, code); err != nil {
		return fmt.Errorf("delete student documents: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM students WHERE student_code = $1`, code); err != nil {
		return fmt.Errorf("delete student: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete tx: %w", err)
	}
	return nil
}
