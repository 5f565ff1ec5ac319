package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/student-registration-api/internal/models"
	"github.com/noah-isme/student-registration-api/internal/service"
)

type courseRepoStub struct {
	courses map[string]*models.Course
	count   *models.CourseStatusCount
}

func newCourseRepoStub(courses ...*models.Course) *courseRepoStub {
	stub := &courseRepoStub{courses: make(map[string]*models.Course)}
	for _, c := range courses {
		stub.courses[c.CourseCode] = c
	}
	return stub
}

func (s *courseRepoStub) ExistsByCode(ctx context.Context, code string) (bool, error) {
	_, ok := s.courses[code]
	return ok, nil
}

func (s *courseRepoStub) Create(ctx context.Context, course *models.Course) error {
	s.courses[course.CourseCode] = course
	return nil
}

func (s *courseRepoStub) ListActive(ctx context.Context) ([]models.Course, error) {
	var out []models.Course
	for _, c := range s.courses {
		if !c.IsDeleted {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (s *courseRepoStub) FindActiveByCode(ctx context.Context, code string) (*models.Course, error) {
	c, ok := s.courses[code]
	if !ok || c.IsDeleted {
		return nil, sql.ErrNoRows
	}
	clone := *c
	return &clone, nil
}

func (s *courseRepoStub) FindByCode(ctx context.Context, code string) (*models.Course, error) {
	c, ok := s.courses[code]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *c
	return &clone, nil
}

func (s *courseRepoStub) Update(ctx context.Context, course *models.Course) error {
	s.courses[course.CourseCode] = course
	return nil
}

func (s *courseRepoStub) Delete(ctx context.Context, code string) error {
	delete(s.courses, code)
	return nil
}

func (s *courseRepoStub) CountByStatus(ctx context.Context) (*models.CourseStatusCount, error) {
	return s.count, nil
}

func TestCourseHandlerAdd(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewCourseHandler(service.NewCourseService(newCourseRepoStub(), nil, nil))
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(t, http.MethodPost, "/api/course/add", service.CreateCourseRequest{
		CourseCode: "BSCS1",
		CourseName: "Computer Science",
		Duration:   8,
		Department: "Engineering",
		Status:     models.CourseStatusActive,
	})

	handler.Add(c)
	require.Equal(t, http.StatusCreated, w.Code)

	var envelope struct {
		Data models.Course `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "BSCS1", envelope.Data.CourseCode)
	assert.Equal(t, 8, envelope.Data.Duration)
}

func TestCourseHandlerAddDuplicate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewCourseHandler(service.NewCourseService(newCourseRepoStub(&models.Course{CourseCode: "BSCS1"}), nil, nil))
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(t, http.MethodPost, "/api/course/add", service.CreateCourseRequest{
		CourseCode: "BSCS1",
		CourseName: "Computer Science",
		Department: "Engineering",
		Status:     models.CourseStatusActive,
	})

	handler.Add(c)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCourseHandlerGetNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewCourseHandler(service.NewCourseService(newCourseRepoStub(), nil, nil))
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/api/course/GONE1", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "courseCode", Value: "GONE1"}}

	handler.Get(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCourseHandlerSoftRestoreNotDeleted(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewCourseHandler(service.NewCourseService(newCourseRepoStub(&models.Course{CourseCode: "BSCS1", Status: models.CourseStatusActive}), nil, nil))
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPut, "/api/course/Softrestore/BSCS1", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "courseCode", Value: "BSCS1"}}

	handler.SoftRestore(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "course is not deleted")
}

func TestCourseHandlerDelete(t *testing.T) {
	gin.SetMode(gin.TestMode)
	stub := newCourseRepoStub(&models.Course{CourseCode: "BSCS1"})
	handler := NewCourseHandler(service.NewCourseService(stub, nil, nil))
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodDelete, "/api/course/delete/BSCS1", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "courseCode", Value: "BSCS1"}}

	handler.Delete(c)
	c.Writer.WriteHeaderNow()
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.NotContains(t, stub.courses, "BSCS1")
}

func TestCourseHandlerCount(t *testing.T) {
	gin.SetMode(gin.TestMode)
	stub := newCourseRepoStub()
	stub.count = &models.CourseStatusCount{Active: 4, Inactive: 1}
	handler := NewCourseHandler(service.NewCourseService(stub, nil, nil))
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/api/course/count", nil)
	c.Request = req

	handler.Count(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data models.CourseStatusCount `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, 4, envelope.Data.Active)
	assert.Equal(t, 1, envelope.Data.Inactive)
}
