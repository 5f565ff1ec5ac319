package models

// Course statuses. Soft-deleting a course forces it to Inactive,
// restoring it forces Active.
const (
	CourseStatusActive   = "Active"
	CourseStatusInactive = "Inactive"
)

// Course represents an academic programme. CourseCode is the externally
// assigned primary identity; soft-deleted courses stay referenced by
// historical students.
type Course struct {
	CourseCode  string  `db:"course_code" json:"courseCode"`
	CourseName  string  `db:"course_name" json:"courseName"`
	Duration    int     `db:"duration" json:"durationInSemesters"`
	Department  string  `db:"department" json:"department"`
	Description string  `db:"description" json:"description"`
	Status      string  `db:"status" json:"status"`
	IsDeleted   bool    `db:"is_deleted" json:"isDeleted"`
	DeletedAt   *string `db:"deleted_at" json:"deletedAt,omitempty"`
	RestoredAt  *string `db:"restored_at" json:"restoredAt,omitempty"`
}

// CourseStatusCount reports how many non-deleted courses are in each status.
type CourseStatusCount struct {
	Active   int `json:"active"`
	Inactive int `json:"inactive"`
}
