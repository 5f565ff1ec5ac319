package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/student-registration-api/internal/models"
)

func newStudentMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func studentViewRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"student_code", "first_name", "last_name", "middle_name", "birthdate", "age", "gender", "address", "contact",
		"guardian_name", "guardian_address", "guardian_contact", "hobby", "account_status", "course_code", "course_name", "course_status"})
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(&pq.Error{Code: "23505"}))
	assert.False(t, IsUniqueViolation(&pq.Error{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("plain")))
	assert.False(t, IsUniqueViolation(nil))
}

func TestStudentRepositoryCountByCodePrefix(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM students WHERE student_code LIKE $1")).
		WithArgs("SC26%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	count, err := repo.CountByCodePrefix(context.Background(), "SC26")
	require.NoError(t, err)
	assert.Equal(t, 12, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCreateWithDocuments(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO students").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))
	mock.ExpectExec("INSERT INTO student_documents").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	code := "SC26-0001"
	student := &models.Student{
		StudentCode:   &code,
		FirstName:     "Juan",
		LastName:      "Dela Cruz",
		Birthdate:     models.NewDateOnly(time.Date(2004, 5, 17, 0, 0, 0, 0, time.UTC)),
		CourseCode:    "BSCS1",
		AccountStatus: models.AccountStatusActive,
	}
	docs := []models.StudentDocument{{FileName: "birth_certificate.pdf", FileType: "application/pdf", Data: []byte("pdf")}}

	err := repo.CreateWithDocuments(context.Background(), student, docs)
	require.NoError(t, err)
	assert.Equal(t, int64(7), student.ID)
	assert.Equal(t, code, docs[0].StudentCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCreateWithDocumentsUniqueViolation(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO students").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "students_student_code_key"})
	mock.ExpectRollback()

	code := "SC26-0001"
	err := repo.CreateWithDocuments(context.Background(), &models.Student{StudentCode: &code}, nil)
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryFindViewByCode(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	rows := studentViewRows().
		AddRow("SC26-0001", "Juan", "Dela Cruz", nil, time.Date(2004, 5, 17, 0, 0, 0, 0, time.UTC), 22, "Male", "", "",
			"", "", "", "", "Active", "BSCS1", "Computer Science", "Active")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE s.student_code = $1 LIMIT 1")).
		WithArgs("SC26-0001").
		WillReturnRows(rows)

	view, err := repo.FindViewByCode(context.Background(), "SC26-0001")
	require.NoError(t, err)
	require.NotNil(t, view.CourseCode)
	assert.Equal(t, "BSCS1", *view.CourseCode)
	assert.Equal(t, "2004-05-17", view.Birthdate.Format(models.DateFormat))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryListViewsFilters(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	year := 1
	mock.ExpectQuery(regexp.QuoteMeta("(s.first_name LIKE $1 OR s.last_name LIKE $1) AND c.course_code = $2 AND substring(c.course_code from '[0-9]') = $3")).
		WithArgs("%Cruz%", "BSCS1", "1").
		WillReturnRows(studentViewRows().
			AddRow("SC26-0001", "Juan", "Dela Cruz", nil, time.Now(), 22, "Male", "", "", "", "", "", "", "Active", "BSCS1", "Computer Science", "Active"))

	views, err := repo.ListViews(context.Background(), models.StudentFilter{Name: "Cruz", CourseCode: "BSCS1", YearLevel: &year})
	require.NoError(t, err)
	assert.Len(t, views, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCountByYearDigit(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	rows := sqlmock.NewRows([]string{"digit", "total"}).
		AddRow("1", 10).
		AddRow("2", 4).
		AddRow(nil, 2)
	mock.ExpectQuery("GROUP BY substring").WillReturnRows(rows)

	counts, err := repo.CountByYearDigit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"1": 10, "2": 4}, counts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryDeleteWithDocuments(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM student_documents WHERE student_code = $1")).
		WithArgs("SC26-0001").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM students WHERE student_code = $1")).
		WithArgs("SC26-0001").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.DeleteWithDocuments(context.Background(), "SC26-0001"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
