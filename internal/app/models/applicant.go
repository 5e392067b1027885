package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CourseLevel is the program an applicant is interested in
type CourseLevel string

const (
	CourseBachelors CourseLevel = "Bachelors"
	CourseMasters   CourseLevel = "Masters"
	CoursePhd       CourseLevel = "Phd"
)

// Valid reports whether c is one of the known course levels.
func (c CourseLevel) Valid() bool {
	switch c {
	case CourseBachelors, CourseMasters, CoursePhd:
		return true
	}
	return false
}

// DegreeLevel is the level of a completed prior-education entry
type DegreeLevel string

const (
	DegreeIntermediate DegreeLevel = "Intermediate"
	DegreeBachelors    DegreeLevel = "Bachelors"
	DegreeMasters      DegreeLevel = "Masters"
)

// Valid reports whether d is one of the known degree levels.
func (d DegreeLevel) Valid() bool {
	switch d {
	case DegreeIntermediate, DegreeBachelors, DegreeMasters:
		return true
	}
	return false
}

// Applicant is one prospective-student application, based on the
// 'applicants' table. Email is unique across all applicants. Every
// applicant owns at least one AcademicRecord once created.
type Applicant struct {
	ID        int64 `db:"id"`
	CreatedBy int64 `db:"created_by"`

	// Populated from the users join, not stored on the row
	CreatedByEmail string `db:"created_by_email"`
	CreatedByName  string `db:"created_by_name"`

	// Personal information
	FullName         string      `db:"full_name"`
	Email            string      `db:"email"`
	PhoneNumber      string      `db:"phone_number"`
	InterestedCourse CourseLevel `db:"interested_course"`

	// Address
	Country string `db:"country"`
	City    string `db:"city"`
	State   string `db:"state"`
	Zipcode string `db:"zipcode"`
	Street  string `db:"street"`

	// Standardized test scores
	TestType       string          `db:"test_type"`
	OverallScore   decimal.Decimal `db:"overall_score"`
	ReadingScore   decimal.Decimal `db:"reading_score"`
	ListeningScore decimal.Decimal `db:"listening_score"`
	WritingScore   decimal.Decimal `db:"writing_score"`
	SpeakingScore  decimal.Decimal `db:"speaking_score"`
	AttendedDate   time.Time       `db:"attended_date"`

	// Uploaded PDF, stored as a path relative to the media root
	DocumentPath string `db:"document"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`

	Academics []*AcademicRecord
}

// AcademicRecord is one prior-education entry belonging to exactly one
// applicant, based on the 'academics' table. Cascade-deleted with its
// applicant.
type AcademicRecord struct {
	ID           int64           `db:"id"`
	ApplicantID  int64           `db:"applicant_id"`
	DegreeLevel  DegreeLevel     `db:"degree_level"`
	DegreeTitle  string          `db:"degree_title"`
	Institution  string          `db:"institution"`
	PassedYear   string          `db:"passed_year"`
	StartDate    time.Time       `db:"course_start_date"`
	EndDate      time.Time       `db:"course_end_date"`
	ObtainedMark decimal.Decimal `db:"obtained_mark"`
	CreatedAt    time.Time       `db:"created_at"`
}
