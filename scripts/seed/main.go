// Command seed provisions a local database with an admin account and a
// starter course catalogue so the API is usable immediately after first boot.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/student-registration-api/internal/models"
	"github.com/noah-isme/student-registration-api/internal/repository"
	"github.com/noah-isme/student-registration-api/pkg/config"
	"github.com/noah-isme/student-registration-api/pkg/database"
)

// The registration retry path relies on this index to surface student-code
// races as unique violations. Schema migrations are managed outside this
// repo, so seeding ensures the index on top of the provisioned tables.
const studentCodeIndex = `CREATE UNIQUE INDEX IF NOT EXISTS students_student_code_key
        ON students (student_code) WHERE student_code IS NOT NULL`

var starterCourses = []models.Course{
	{CourseCode: "BSCS1", CourseName: "BS Computer Science 1st Year", Duration: 8, Department: "College of Engineering", Status: models.CourseStatusActive},
	{CourseCode: "BSCS2", CourseName: "BS Computer Science 2nd Year", Duration: 8, Department: "College of Engineering", Status: models.CourseStatusActive},
	{CourseCode: "BSIT1", CourseName: "BS Information Technology 1st Year", Duration: 8, Department: "College of Engineering", Status: models.CourseStatusActive},
	{CourseCode: "BSBA1", CourseName: "BS Business Administration 1st Year", Duration: 8, Department: "College of Business", Status: models.CourseStatusActive},
}

func main() {
	var (
		username string
		password string
		timeout  time.Duration
	)
	flag.StringVar(&username, "admin-user", "admin", "username for the seeded admin account")
	flag.StringVar(&password, "admin-pass", "", "password for the seeded admin account (required)")
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "overall seeding timeout")
	flag.Parse()

	if password == "" {
		log.Fatal("-admin-pass is required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if _, err := db.ExecContext(ctx, studentCodeIndex); err != nil {
		log.Fatalf("failed to ensure student_code index: %v", err)
	}

	admins := repository.NewAdminRepository(db)
	courses := repository.NewCourseRepository(db)

	exists, err := admins.ExistsByUsername(ctx, username)
	if err != nil {
		log.Fatalf("failed to check admin: %v", err)
	}
	if exists {
		log.Printf("admin %q already present, skipping", username)
	} else {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("failed to hash password: %v", err)
		}
		if err := admins.Create(ctx, &models.Admin{Username: username, PasswordHash: string(hash)}); err != nil {
			log.Fatalf("failed to create admin: %v", err)
		}
		log.Printf("created admin %q", username)
	}

	seeded := 0
	for i := range starterCourses {
		course := starterCourses[i]
		exists, err := courses.ExistsByCode(ctx, course.CourseCode)
		if err != nil {
			log.Fatalf("failed to check course %s: %v", course.CourseCode, err)
		}
		if exists {
			continue
		}
		if err := courses.Create(ctx, &course); err != nil {
			log.Fatalf("failed to create course %s: %v", course.CourseCode, err)
		}
		seeded++
	}
	log.Printf("seeded %d of %d starter courses", seeded, len(starterCourses))
}
