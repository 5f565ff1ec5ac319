package handler

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/student-registration-api/internal/models"
	"github.com/noah-isme/student-registration-api/internal/service"
	appErrors "github.com/noah-isme/student-registration-api/pkg/errors"
	"github.com/noah-isme/student-registration-api/pkg/response"
)

// StudentHandler exposes student endpoints.
type StudentHandler struct {
	students *service.StudentService
	exports  *service.ExportService
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(students *service.StudentService, exports *service.ExportService) *StudentHandler {
	return &StudentHandler{students: students, exports: exports}
}

// Register godoc
// @Summary Register student
// @Description Register a student with optional document uploads
// @Tags Students
// @Accept multipart/form-data
// @Produce json
// @Param firstName formData string true "First name"
// @Param lastName formData string true "Last name"
// @Param birthdate formData string true "Birthdate (yyyy-MM-dd)"
// @Param courseCode formData string true "Course code"
// @Param documents formData file false "Attached documents"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /student/register [post]
func (h *StudentHandler) Register(c *gin.Context) {
	var req service.RegisterStudentRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid student data"))
		return
	}

	files, err := readDocumentUploads(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	view, err := h.students.Register(c.Request.Context(), req, files)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, view)
}

// Get godoc
// @Summary Get student by code
// @Tags Students
// @Produce json
// @Param studentCode path string true "Student code"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /student/{studentCode} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	view, err := h.students.GetByCode(c.Request.Context(), c.Param("studentCode"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view)
}

// List godoc
// @Summary List students
// @Tags Students
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /student/list [get]
func (h *StudentHandler) List(c *gin.Context) {
	views, err := h.students.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, views)
}

// Count godoc
// @Summary Count enrolled students by year level
// @Tags Students
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /student/count [get]
func (h *StudentHandler) Count(c *gin.Context) {
	counts, err := h.students.CountEnrolledByYear(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, counts)
}

// Search godoc
// @Summary Search students
// @Tags Students
// @Produce json
// @Param name query string false "Name substring (case-sensitive)"
// @Param courseCode query string false "Exact course code"
// @Param yearLevel query int false "Year level (1-4)"
// @Success 200 {object} response.Envelope
// @Router /student/search [get]
func (h *StudentHandler) Search(c *gin.Context) {
	var filter models.StudentFilter
	filter.Name = c.Query("name")
	filter.CourseCode = c.Query("courseCode")
	if raw := c.Query("yearLevel"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "yearLevel must be a number"))
			return
		}
		filter.YearLevel = &year
	}

	views, err := h.students.Search(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, views)
}

// Export godoc
// @Summary Export student roster
// @Tags Students
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf"
// @Success 200
// @Router /student/export [get]
func (h *StudentHandler) Export(c *gin.Context) {
	result, err := h.exports.Roster(c.Request.Context(), c.DefaultQuery("format", "csv"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+result.FileName+`"`)
	c.Data(http.StatusOK, result.ContentType, result.Content)
}

// Update godoc
// @Summary Update student
// @Tags Students
// @Accept json
// @Produce json
// @Param studentCode path string true "Student code"
// @Param payload body service.UpdateStudentRequest true "Student payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /student/update/{studentCode} [put]
func (h *StudentHandler) Update(c *gin.Context) {
	var req service.UpdateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid student payload"))
		return
	}
	student, err := h.students.Update(c.Request.Context(), c.Param("studentCode"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student)
}

// Delete godoc
// @Summary Hard-delete student
// @Tags Students
// @Produce json
// @Param studentCode path string true "Student code"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /student/delete/{studentCode} [delete]
func (h *StudentHandler) Delete(c *gin.Context) {
	if err := h.students.Delete(c.Request.Context(), c.Param("studentCode")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// SoftDeactivate godoc
// @Summary Soft-deactivate student
// @Tags Students
// @Produce json
// @Param studentCode path string true "Student code"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /student/Softdeactivate/{studentCode} [put]
func (h *StudentHandler) SoftDeactivate(c *gin.Context) {
	student, err := h.students.SoftDeactivate(c.Request.Context(), c.Param("studentCode"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student)
}

// SoftReactivate godoc
// @Summary Reactivate soft-deactivated student
// @Tags Students
// @Produce json
// @Param studentCode path string true "Student code"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /student/Softreactivate/{studentCode} [put]
func (h *StudentHandler) SoftReactivate(c *gin.Context) {
	student, err := h.students.SoftReactivate(c.Request.Context(), c.Param("studentCode"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student)
}

func readDocumentUploads(c *gin.Context) ([]service.DocumentUpload, error) {
	form, err := c.MultipartForm()
	if err != nil {
		if err == http.ErrNotMultipart {
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid multipart form")
	}

	headers := form.File["documents"]
	uploads := make([]service.DocumentUpload, 0, len(headers))
	for _, header := range headers {
		file, err := header.Open()
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "failed to open uploaded file")
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "failed to read uploaded file")
		}

		fileType := header.Header.Get("Content-Type")
		if fileType == "" {
			fileType = "application/octet-stream"
		}
		uploads = append(uploads, service.DocumentUpload{
			FileName: strings.TrimSpace(header.Filename),
			FileType: fileType,
			Data:     data,
		})
	}
	return uploads, nil
}
