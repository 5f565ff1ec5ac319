package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/student-registration-api/internal/service"
	appErrors "github.com/noah-isme/student-registration-api/pkg/errors"
	"github.com/noah-isme/student-registration-api/pkg/response"
)

// CourseHandler exposes course endpoints.
type CourseHandler struct {
	courses *service.CourseService
}

// NewCourseHandler constructs CourseHandler.
func NewCourseHandler(courses *service.CourseService) *CourseHandler {
	return &CourseHandler{courses: courses}
}

// Add godoc
// @Summary Add course
// @Tags Courses
// @Accept json
// @Produce json
// @Param payload body service.CreateCourseRequest true "Course payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /course/add [post]
func (h *CourseHandler) Add(c *gin.Context) {
	var req service.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "course data is required"))
		return
	}
	course, err := h.courses.Add(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, course)
}

// List godoc
// @Summary List courses
// @Tags Courses
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /course/list [get]
func (h *CourseHandler) List(c *gin.Context) {
	courses, err := h.courses.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses)
}

// Count godoc
// @Summary Count courses by status
// @Tags Courses
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /course/count [get]
func (h *CourseHandler) Count(c *gin.Context) {
	count, err := h.courses.CountByStatus(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, count)
}

// Get godoc
// @Summary Get course by code
// @Tags Courses
// @Produce json
// @Param courseCode path string true "Course code"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /course/{courseCode} [get]
func (h *CourseHandler) Get(c *gin.Context) {
	course, err := h.courses.GetByCode(c.Request.Context(), c.Param("courseCode"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course)
}

// Update godoc
// @Summary Update course
// @Tags Courses
// @Accept json
// @Produce json
// @Param courseCode path string true "Course code"
// @Param payload body service.UpdateCourseRequest true "Course payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /course/update/{courseCode} [put]
func (h *CourseHandler) Update(c *gin.Context) {
	var req service.UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid course payload"))
		return
	}
	course, err := h.courses.Update(c.Request.Context(), c.Param("courseCode"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course)
}

// SoftDelete godoc
// @Summary Soft-delete course
// @Tags Courses
// @Produce json
// @Param courseCode path string true "Course code"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /course/Softdelete/{courseCode} [put]
func (h *CourseHandler) SoftDelete(c *gin.Context) {
	course, err := h.courses.SoftDelete(c.Request.Context(), c.Param("courseCode"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course)
}

// SoftRestore godoc
// @Summary Restore soft-deleted course
// @Tags Courses
// @Produce json
// @Param courseCode path string true "Course code"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /course/Softrestore/{courseCode} [put]
func (h *CourseHandler) SoftRestore(c *gin.Context) {
	course, err := h.courses.SoftRestore(c.Request.Context(), c.Param("courseCode"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course)
}

// Delete godoc
// @Summary Hard-delete course
// @Tags Courses
// @Produce json
// @Param courseCode path string true "Course code"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /course/delete/{courseCode} [delete]
func (h *CourseHandler) Delete(c *gin.Context) {
	if err := h.courses.HardDelete(c.Request.Context(), c.Param("courseCode")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
