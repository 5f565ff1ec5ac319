package service

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/noah-isme/student-registration-api/internal/models"
	appErrors "github.com/noah-isme/student-registration-api/pkg/errors"
	"github.com/noah-isme/student-registration-api/pkg/export"
)

type rosterSource interface {
	ListViews(ctx context.Context, filter models.StudentFilter) ([]models.StudentView, error)
}

// ExportResult carries rendered export bytes with HTTP metadata.
type ExportResult struct {
	Content     []byte
	ContentType string
	FileName    string
}

// ExportService renders the student roster as CSV or PDF, synchronously.
type ExportService struct {
	students rosterSource
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	logger   *zap.Logger
}

// NewExportService constructs the export service.
func NewExportService(students rosterSource, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		students: students,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		logger:   logger,
	}
}

var rosterHeaders = []string{"Student Code", "Last Name", "First Name", "Course", "Year", "Account Status"}

// Roster renders the full student roster in the requested format.
func (s *ExportService) Roster(ctx context.Context, format string) (*ExportResult, error) {
	views, err := s.students.ListViews(ctx, models.StudentFilter{})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}

	dataset := export.Dataset{Headers: rosterHeaders, Rows: make([]map[string]string, 0, len(views))}
	for _, v := range views {
		row := map[string]string{
			"Student Code":   deref(v.StudentCode),
			"Last Name":      v.LastName,
			"First Name":     v.FirstName,
			"Course":         deref(v.CourseCode),
			"Year":           yearLevelOf(deref(v.CourseCode)),
			"Account Status": v.AccountStatus,
		}
		dataset.Rows = append(dataset.Rows, row)
	}

	switch strings.ToLower(format) {
	case "csv", "":
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportResult{Content: content, ContentType: "text/csv", FileName: "students.csv"}, nil
	case "pdf":
		content, err := s.pdf.Render(dataset, "Student Roster")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportResult{Content: content, ContentType: "application/pdf", FileName: "students.pdf"}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}

// yearLevelOf returns the first digit character found in a course code, the
// same convention the search and count paths use.
func yearLevelOf(courseCode string) string {
	for _, r := range courseCode {
		if unicode.IsDigit(r) {
			return string(r)
		}
	}
	return ""
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
