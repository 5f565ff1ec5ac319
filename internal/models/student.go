package models

// Student account statuses mirroring the course status pair.
const (
	AccountStatusActive   = "Active"
	AccountStatusInactive = "Inactive"
)

// Student represents a registered learner. StudentCode is system-generated
// (SC{YY}-{NNNN}) and nullable until assigned; CourseCode is a required
// reference to the courses table.
type Student struct {
	ID              int64    `db:"id" json:"id"`
	StudentCode     *string  `db:"student_code" json:"studentCode,omitempty"`
	FirstName       string   `db:"first_name" json:"firstName"`
	LastName        string   `db:"last_name" json:"lastName"`
	MiddleName      *string  `db:"middle_name" json:"middleName,omitempty"`
	Birthdate       DateOnly `db:"birthdate" json:"birthdate"`
	Age             int      `db:"age" json:"age"`
	Gender          string   `db:"gender" json:"gender"`
	Address         string   `db:"address" json:"address"`
	Contact         string   `db:"contact" json:"contact"`
	GuardianName    string   `db:"guardian_name" json:"guardianName"`
	GuardianAddress string   `db:"guardian_address" json:"guardianAddress"`
	GuardianContact string   `db:"guardian_contact" json:"guardianContact"`
	Hobby           string   `db:"hobby" json:"hobby"`
	CourseCode      string   `db:"course_code" json:"courseCode"`
	Status          string   `db:"status" json:"status"`
	AccountStatus   string   `db:"account_status" json:"accountStatus"`
	IsDeleted       bool     `db:"is_deleted" json:"isDeleted"`
	DeletedAt       *string  `db:"deleted_at" json:"deletedAt,omitempty"`
	RestoredAt      *string  `db:"restored_at" json:"restoredAt,omitempty"`
}

// StudentView is the fully materialized read model: student fields joined
// with course context and attached documents.
type StudentView struct {
	StudentCode     *string        `db:"student_code" json:"studentCode,omitempty"`
	FirstName       string         `db:"first_name" json:"firstName"`
	LastName        string         `db:"last_name" json:"lastName"`
	MiddleName      *string        `db:"middle_name" json:"middleName,omitempty"`
	Birthdate       DateOnly       `db:"birthdate" json:"birthdate"`
	Age             int            `db:"age" json:"age"`
	Gender          string         `db:"gender" json:"gender"`
	Address         string         `db:"address" json:"address"`
	Contact         string         `db:"contact" json:"contact"`
	GuardianName    string         `db:"guardian_name" json:"guardianName"`
	GuardianAddress string         `db:"guardian_address" json:"guardianAddress"`
	GuardianContact string         `db:"guardian_contact" json:"guardianContact"`
	Hobby           string         `db:"hobby" json:"hobby"`
	AccountStatus   string         `db:"account_status" json:"accountStatus"`
	CourseCode      *string        `db:"course_code" json:"courseCode,omitempty"`
	CourseName      *string        `db:"course_name" json:"courseName,omitempty"`
	CourseStatus    *string        `db:"course_status" json:"courseStatus,omitempty"`
	Documents       []DocumentView `json:"documents,omitempty"`
}

// StudentFilter captures the supported search parameters. Name is a
// case-sensitive substring match on first or last name; YearLevel compares
// the first digit character of the course code.
type StudentFilter struct {
	Name       string
	CourseCode string
	YearLevel  *int
}

// YearLevelCount buckets enrolled students by inferred year level (1-4).
type YearLevelCount map[int]int
