package dto

import (
	"encoding/json"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nishan/applygate/internal/app/models"
)

// MaxDocumentSize is the upper bound for an uploaded applicant document.
// A file of exactly this size is rejected.
const MaxDocumentSize = 10 * 1024 * 1024

const dateLayout = "2006-01-02"

// academicRequiredFields are the seven fields every academic entry must
// carry with a non-empty value.
var academicRequiredFields = []string{
	"degree_level",
	"degree_title",
	"institution",
	"passed_year",
	"course_start_date",
	"course_end_date",
	"obtained_mark",
}

// ValidateDocument checks the uploaded file's extension and size.
// Returns an empty string when the document is acceptable, otherwise the
// validation message for the 'document' field.
func ValidateDocument(fh *multipart.FileHeader) string {
	if !strings.HasSuffix(fh.Filename, ".pdf") {
		return "Only PDF files are allowed"
	}
	if fh.Size >= MaxDocumentSize {
		return "File size must be less than 10MB"
	}
	return ""
}

// ParseAcademics normalizes the polymorphic 'academics' form value into a
// typed, validated list. Returns the parsed records, or a validation
// message for the 'academics' field.
func ParseAcademics(raw string) ([]*models.AcademicRecord, string) {
	var items []map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		var probe interface{}
		if json.Unmarshal([]byte(raw), &probe) != nil {
			return nil, "Invalid JSON format for academics"
		}
		return nil, "Academics must be a list"
	}

	if len(items) < 1 {
		return nil, "At least one academic record is required"
	}

	records := make([]*models.AcademicRecord, 0, len(items))
	for idx, item := range items {
		for _, field := range academicRequiredFields {
			value, ok := item[field]
			if !ok || isEmptyValue(value) {
				return nil, fmt.Sprintf("Academic record %d: %s is required", idx+1, field)
			}
		}

		record, msg := academicFromMap(idx+1, item)
		if msg != "" {
			return nil, msg
		}
		records = append(records, record)
	}

	return records, ""
}

func isEmptyValue(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	}
	return false
}

func academicFromMap(pos int, item map[string]interface{}) (*models.AcademicRecord, string) {
	record := &models.AcademicRecord{}

	level := models.DegreeLevel(stringValue(item["degree_level"]))
	if !level.Valid() {
		return nil, fmt.Sprintf("Academic record %d: degree_level must be one of Intermediate, Bachelors, Masters", pos)
	}
	record.DegreeLevel = level
	record.DegreeTitle = stringValue(item["degree_title"])
	record.Institution = stringValue(item["institution"])
	record.PassedYear = stringValue(item["passed_year"])

	start, err := time.Parse(dateLayout, stringValue(item["course_start_date"]))
	if err != nil {
		return nil, fmt.Sprintf("Academic record %d: course_start_date must be a valid date in YYYY-MM-DD format", pos)
	}
	record.StartDate = start

	end, err := time.Parse(dateLayout, stringValue(item["course_end_date"]))
	if err != nil {
		return nil, fmt.Sprintf("Academic record %d: course_end_date must be a valid date in YYYY-MM-DD format", pos)
	}
	record.EndDate = end

	mark, err := decimal.NewFromString(stringValue(item["obtained_mark"]))
	if err != nil {
		return nil, fmt.Sprintf("Academic record %d: obtained_mark must be a valid number", pos)
	}
	record.ObtainedMark = mark

	return record, ""
}

// stringValue renders a decoded JSON scalar as its form-value string.
// Numbers arrive as float64 from encoding/json; years and marks are
// accepted either way.
func stringValue(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%v", t)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// ApplicantCreateRequest carries the multipart form fields for the
// create operation. Score and date fields come in as strings and are
// parsed during Normalize.
type ApplicantCreateRequest struct {
	FullName         string `form:"full_name" binding:"required"`
	Email            string `form:"email" binding:"required,email"`
	PhoneNumber      string `form:"phone_number" binding:"required"`
	InterestedCourse string `form:"interested_course" binding:"required"`

	Country string `form:"country" binding:"required"`
	City    string `form:"city" binding:"required"`
	State   string `form:"state" binding:"required"`
	Zipcode string `form:"zipcode" binding:"required"`
	Street  string `form:"street" binding:"required"`

	TestType       string `form:"test_type" binding:"required"`
	OverallScore   string `form:"overall_score" binding:"required"`
	ReadingScore   string `form:"reading_score" binding:"required"`
	ListeningScore string `form:"listening_score" binding:"required"`
	WritingScore   string `form:"writing_score" binding:"required"`
	SpeakingScore  string `form:"speaking_score" binding:"required"`
	AttendedDate   string `form:"attended_date" binding:"required"`

	Academics string `form:"academics" binding:"required"`
}

// Normalize validates and converts the raw form fields into an Applicant
// model with its academic records attached. The returned field errors are
// empty when the payload is valid.
func (r *ApplicantCreateRequest) Normalize() (*models.Applicant, FieldErrors) {
	fields := FieldErrors{}

	applicant := &models.Applicant{
		FullName:    r.FullName,
		Email:       r.Email,
		PhoneNumber: r.PhoneNumber,
		Country:     r.Country,
		City:        r.City,
		State:       r.State,
		Zipcode:     r.Zipcode,
		Street:      r.Street,
		TestType:    r.TestType,
	}

	course := models.CourseLevel(r.InterestedCourse)
	if !course.Valid() {
		fields.Add("interested_course", "Must be one of Bachelors, Masters, Phd")
	}
	applicant.InterestedCourse = course

	applicant.OverallScore = parseScore(fields, "overall_score", r.OverallScore)
	applicant.ReadingScore = parseScore(fields, "reading_score", r.ReadingScore)
	applicant.ListeningScore = parseScore(fields, "listening_score", r.ListeningScore)
	applicant.WritingScore = parseScore(fields, "writing_score", r.WritingScore)
	applicant.SpeakingScore = parseScore(fields, "speaking_score", r.SpeakingScore)

	attended, err := time.Parse(dateLayout, r.AttendedDate)
	if err != nil {
		fields.Add("attended_date", "Must be a valid date in YYYY-MM-DD format")
	}
	applicant.AttendedDate = attended

	academics, msg := ParseAcademics(r.Academics)
	if msg != "" {
		fields.Add("academics", msg)
	}
	applicant.Academics = academics

	if fields.HasErrors() {
		return nil, fields
	}
	return applicant, fields
}

func parseScore(fields FieldErrors, name, value string) decimal.Decimal {
	score, err := decimal.NewFromString(value)
	if err != nil {
		fields.Add(name, "A valid number is required")
		return decimal.Zero
	}
	return score
}

// ApplicantUpdateRequest carries the multipart form fields for full or
// partial updates. Nil fields were absent from the request and leave the
// stored values untouched.
type ApplicantUpdateRequest struct {
	FullName         *string `form:"full_name"`
	Email            *string `form:"email"`
	PhoneNumber      *string `form:"phone_number"`
	InterestedCourse *string `form:"interested_course"`

	Country *string `form:"country"`
	City    *string `form:"city"`
	State   *string `form:"state"`
	Zipcode *string `form:"zipcode"`
	Street  *string `form:"street"`

	TestType       *string `form:"test_type"`
	OverallScore   *string `form:"overall_score"`
	ReadingScore   *string `form:"reading_score"`
	ListeningScore *string `form:"listening_score"`
	WritingScore   *string `form:"writing_score"`
	SpeakingScore  *string `form:"speaking_score"`
	AttendedDate   *string `form:"attended_date"`

	Academics *string `form:"academics"`
}

// Apply mutates only the supplied scalar fields on the applicant and
// returns the replacement academic list when one was supplied. A nil
// academics result with empty field errors means "leave academics alone".
func (r *ApplicantUpdateRequest) Apply(applicant *models.Applicant) ([]*models.AcademicRecord, FieldErrors) {
	fields := FieldErrors{}

	if r.FullName != nil {
		applicant.FullName = *r.FullName
	}
	if r.Email != nil {
		applicant.Email = *r.Email
	}
	if r.PhoneNumber != nil {
		applicant.PhoneNumber = *r.PhoneNumber
	}
	if r.InterestedCourse != nil {
		course := models.CourseLevel(*r.InterestedCourse)
		if !course.Valid() {
			fields.Add("interested_course", "Must be one of Bachelors, Masters, Phd")
		} else {
			applicant.InterestedCourse = course
		}
	}
	if r.Country != nil {
		applicant.Country = *r.Country
	}
	if r.City != nil {
		applicant.City = *r.City
	}
	if r.State != nil {
		applicant.State = *r.State
	}
	if r.Zipcode != nil {
		applicant.Zipcode = *r.Zipcode
	}
	if r.Street != nil {
		applicant.Street = *r.Street
	}
	if r.TestType != nil {
		applicant.TestType = *r.TestType
	}
	if r.OverallScore != nil {
		applicant.OverallScore = parseScore(fields, "overall_score", *r.OverallScore)
	}
	if r.ReadingScore != nil {
		applicant.ReadingScore = parseScore(fields, "reading_score", *r.ReadingScore)
	}
	if r.ListeningScore != nil {
		applicant.ListeningScore = parseScore(fields, "listening_score", *r.ListeningScore)
	}
	if r.WritingScore != nil {
		applicant.WritingScore = parseScore(fields, "writing_score", *r.WritingScore)
	}
	if r.SpeakingScore != nil {
		applicant.SpeakingScore = parseScore(fields, "speaking_score", *r.SpeakingScore)
	}
	if r.AttendedDate != nil {
		attended, err := time.Parse(dateLayout, *r.AttendedDate)
		if err != nil {
			fields.Add("attended_date", "Must be a valid date in YYYY-MM-DD format")
		} else {
			applicant.AttendedDate = attended
		}
	}

	var academics []*models.AcademicRecord
	if r.Academics != nil {
		parsed, msg := ParseAcademics(*r.Academics)
		if msg != "" {
			fields.Add("academics", msg)
		} else {
			academics = parsed
		}
	}

	return academics, fields
}

// ApplicantFilter holds list query parameters
type ApplicantFilter struct {
	InterestedCourse string `form:"interested_course"`
	Search           string `form:"search"`
}

// AcademicResponse is the serialized form of one academic record
type AcademicResponse struct {
	ID           int64           `json:"id"`
	DegreeLevel  string          `json:"degree_level"`
	DegreeTitle  string          `json:"degree_title"`
	Institution  string          `json:"institution"`
	PassedYear   string          `json:"passed_year"`
	StartDate    string          `json:"course_start_date"`
	EndDate      string          `json:"course_end_date"`
	ObtainedMark decimal.Decimal `json:"obtained_mark"`
	CreatedAt    time.Time       `json:"created_at"`
}

// ApplicantResponse is the fully serialized applicant, including nested
// academics and a resolvable absolute document URL.
type ApplicantResponse struct {
	ID             int64  `json:"id"`
	CreatedBy      int64  `json:"created_by"`
	CreatedByEmail string `json:"created_by_email"`
	CreatedByName  string `json:"created_by_name"`

	FullName         string `json:"full_name"`
	Email            string `json:"email"`
	PhoneNumber      string `json:"phone_number"`
	InterestedCourse string `json:"interested_course"`

	Country string `json:"country"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zipcode string `json:"zipcode"`
	Street  string `json:"street"`

	TestType       string          `json:"test_type"`
	OverallScore   decimal.Decimal `json:"overall_score"`
	ReadingScore   decimal.Decimal `json:"reading_score"`
	ListeningScore decimal.Decimal `json:"listening_score"`
	WritingScore   decimal.Decimal `json:"writing_score"`
	SpeakingScore  decimal.Decimal `json:"speaking_score"`
	AttendedDate   string          `json:"attended_date"`

	Document    string `json:"document"`
	DocumentURL string `json:"document_url"`

	Academics []*AcademicResponse `json:"academics"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewApplicantResponse serializes an applicant, resolving the stored
// document path against the media base URL.
func NewApplicantResponse(a *models.Applicant, mediaBaseURL string) *ApplicantResponse {
	resp := &ApplicantResponse{
		ID:               a.ID,
		CreatedBy:        a.CreatedBy,
		CreatedByEmail:   a.CreatedByEmail,
		CreatedByName:    a.CreatedByName,
		FullName:         a.FullName,
		Email:            a.Email,
		PhoneNumber:      a.PhoneNumber,
		InterestedCourse: string(a.InterestedCourse),
		Country:          a.Country,
		City:             a.City,
		State:            a.State,
		Zipcode:          a.Zipcode,
		Street:           a.Street,
		TestType:         a.TestType,
		OverallScore:     a.OverallScore,
		ReadingScore:     a.ReadingScore,
		ListeningScore:   a.ListeningScore,
		WritingScore:     a.WritingScore,
		SpeakingScore:    a.SpeakingScore,
		AttendedDate:     a.AttendedDate.Format(dateLayout),
		Document:         a.DocumentPath,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
	}

	if a.DocumentPath != "" {
		resp.DocumentURL = strings.TrimRight(mediaBaseURL, "/") + "/" + strings.TrimLeft(a.DocumentPath, "/")
	}

	resp.Academics = make([]*AcademicResponse, 0, len(a.Academics))
	for _, record := range a.Academics {
		resp.Academics = append(resp.Academics, &AcademicResponse{
			ID:           record.ID,
			DegreeLevel:  string(record.DegreeLevel),
			DegreeTitle:  record.DegreeTitle,
			Institution:  record.Institution,
			PassedYear:   record.PassedYear,
			StartDate:    record.StartDate.Format(dateLayout),
			EndDate:      record.EndDate.Format(dateLayout),
			ObtainedMark: record.ObtainedMark,
			CreatedAt:    record.CreatedAt,
		})
	}

	return resp
}

// ApplicantListResponse is the list payload: a count plus the result set
type ApplicantListResponse struct {
	Count   int                  `json:"count"`
	Results []*ApplicantResponse `json:"results"`
}

// AnalyticsResponse reports applicant counts
type AnalyticsResponse struct {
	TotalApplicants       int64 `json:"total_applicants"`
	ThisMonth             int64 `json:"this_month"`
	CompletedApplications int64 `json:"completed_applications"`
	PendingApplications   int64 `json:"pending_applications"`
}
