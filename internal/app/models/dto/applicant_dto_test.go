package dto

import (
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validAcademicsJSON = `[{
	"degree_level": "Bachelors",
	"degree_title": "BSc Computer Science",
	"institution": "Tribhuvan University",
	"passed_year": "2020",
	"course_start_date": "2016-04-01",
	"course_end_date": "2020-03-31",
	"obtained_mark": "3.45"
}]`

func TestValidateDocument(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		size     int64
		want     string
	}{
		{"valid pdf", "transcript.pdf", 1024, ""},
		{"wrong extension", "transcript.docx", 1024, "Only PDF files are allowed"},
		{"no extension", "transcript", 1024, "Only PDF files are allowed"},
		{"just under the limit", "transcript.pdf", MaxDocumentSize - 1, ""},
		{"exactly at the limit", "transcript.pdf", MaxDocumentSize, "File size must be less than 10MB"},
		{"over the limit", "transcript.pdf", MaxDocumentSize + 1, "File size must be less than 10MB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fh := &multipart.FileHeader{Filename: tt.filename, Size: tt.size}
			assert.Equal(t, tt.want, ValidateDocument(fh))
		})
	}
}

func TestParseAcademicsInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"not json", "not-json", "Invalid JSON format for academics"},
		{"truncated", `[{"degree_level":`, "Invalid JSON format for academics"},
		{"object not list", `{"degree_level": "Bachelors"}`, "Academics must be a list"},
		{"string not list", `"Bachelors"`, "Academics must be a list"},
		{"empty list", `[]`, "At least one academic record is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, msg := ParseAcademics(tt.raw)
			assert.Nil(t, records)
			assert.Equal(t, tt.want, msg)
		})
	}
}

func TestParseAcademicsMissingFields(t *testing.T) {
	// Second record is missing its institution; positions are 1-based.
	raw := `[{
		"degree_level": "Bachelors",
		"degree_title": "BSc",
		"institution": "TU",
		"passed_year": "2020",
		"course_start_date": "2016-04-01",
		"course_end_date": "2020-03-31",
		"obtained_mark": "3.45"
	}, {
		"degree_level": "Masters",
		"degree_title": "MSc",
		"institution": "",
		"passed_year": "2022",
		"course_start_date": "2020-06-01",
		"course_end_date": "2022-05-31",
		"obtained_mark": "3.80"
	}]`

	records, msg := ParseAcademics(raw)
	assert.Nil(t, records)
	assert.Equal(t, "Academic record 2: institution is required", msg)
}

func TestParseAcademicsFieldValidation(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			"bad degree level",
			`[{"degree_level": "Diploma", "degree_title": "x", "institution": "x", "passed_year": "2020",
			  "course_start_date": "2016-04-01", "course_end_date": "2020-03-31", "obtained_mark": "3.45"}]`,
			"Academic record 1: degree_level must be one of Intermediate, Bachelors, Masters",
		},
		{
			"bad start date",
			`[{"degree_level": "Bachelors", "degree_title": "x", "institution": "x", "passed_year": "2020",
			  "course_start_date": "01/04/2016", "course_end_date": "2020-03-31", "obtained_mark": "3.45"}]`,
			"Academic record 1: course_start_date must be a valid date in YYYY-MM-DD format",
		},
		{
			"bad mark",
			`[{"degree_level": "Bachelors", "degree_title": "x", "institution": "x", "passed_year": "2020",
			  "course_start_date": "2016-04-01", "course_end_date": "2020-03-31", "obtained_mark": "high"}]`,
			"Academic record 1: obtained_mark must be a valid number",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, msg := ParseAcademics(tt.raw)
			assert.Nil(t, records)
			assert.Equal(t, tt.want, msg)
		})
	}
}

func TestParseAcademicsValid(t *testing.T) {
	// Numeric passed_year and obtained_mark are accepted as JSON numbers too
	raw := `[{
		"degree_level": "Intermediate",
		"degree_title": "Higher Secondary",
		"institution": "NIST",
		"passed_year": 2016,
		"course_start_date": "2014-04-01",
		"course_end_date": "2016-03-31",
		"obtained_mark": 3.2
	}, {
		"degree_level": "Bachelors",
		"degree_title": "BSc Computer Science",
		"institution": "Tribhuvan University",
		"passed_year": "2020",
		"course_start_date": "2016-04-01",
		"course_end_date": "2020-03-31",
		"obtained_mark": "3.45"
	}]`

	records, msg := ParseAcademics(raw)
	require.Empty(t, msg)
	require.Len(t, records, 2)

	assert.Equal(t, "Intermediate", string(records[0].DegreeLevel))
	assert.Equal(t, "2016", records[0].PassedYear)
	assert.Equal(t, "3.2", records[0].ObtainedMark.String())
	assert.Equal(t, "2014-04-01", records[0].StartDate.Format("2006-01-02"))

	assert.Equal(t, "Bachelors", string(records[1].DegreeLevel))
	assert.Equal(t, "Tribhuvan University", records[1].Institution)
	assert.Equal(t, "3.45", records[1].ObtainedMark.String())
}

func validCreateRequest() *ApplicantCreateRequest {
	return &ApplicantCreateRequest{
		FullName:         "Asha Sharma",
		Email:            "asha@example.com",
		PhoneNumber:      "+9779800000000",
		InterestedCourse: "Masters",
		Country:          "Nepal",
		City:             "Kathmandu",
		State:            "Bagmati",
		Zipcode:          "44600",
		Street:           "Durbar Marg",
		TestType:         "IELTS",
		OverallScore:     "7.5",
		ReadingScore:     "7.0",
		ListeningScore:   "8.0",
		WritingScore:     "7.0",
		SpeakingScore:    "7.5",
		AttendedDate:     "2026-01-15",
		Academics:        validAcademicsJSON,
	}
}

func TestApplicantCreateRequestNormalize(t *testing.T) {
	req := validCreateRequest()

	applicant, fields := req.Normalize()
	require.False(t, fields.HasErrors(), "unexpected field errors: %v", fields)
	require.NotNil(t, applicant)

	assert.Equal(t, "Asha Sharma", applicant.FullName)
	assert.Equal(t, "Masters", string(applicant.InterestedCourse))
	assert.Equal(t, "7.5", applicant.OverallScore.String())
	assert.Equal(t, "2026-01-15", applicant.AttendedDate.Format("2006-01-02"))
	require.Len(t, applicant.Academics, 1)
	assert.Equal(t, "BSc Computer Science", applicant.Academics[0].DegreeTitle)
}

func TestApplicantCreateRequestNormalizeCollectsErrors(t *testing.T) {
	req := validCreateRequest()
	req.InterestedCourse = "Diploma"
	req.OverallScore = "excellent"
	req.AttendedDate = "15-01-2026"
	req.Academics = `[]`

	applicant, fields := req.Normalize()
	assert.Nil(t, applicant)
	require.True(t, fields.HasErrors())

	assert.Equal(t, "Must be one of Bachelors, Masters, Phd", fields["interested_course"])
	assert.Equal(t, "A valid number is required", fields["overall_score"])
	assert.Equal(t, "Must be a valid date in YYYY-MM-DD format", fields["attended_date"])
	assert.Equal(t, "At least one academic record is required", fields["academics"])
}

func TestApplicantUpdateRequestApplyPartial(t *testing.T) {
	req := validCreateRequest()
	applicant, fields := req.Normalize()
	require.False(t, fields.HasErrors())

	city := "Pokhara"
	score := "8.5"
	update := &ApplicantUpdateRequest{City: &city, OverallScore: &score}

	academics, fields := update.Apply(applicant)
	require.False(t, fields.HasErrors())

	assert.Nil(t, academics, "academics absent from the request are left alone")
	assert.Equal(t, "Pokhara", applicant.City)
	assert.Equal(t, "8.5", applicant.OverallScore.String())
	assert.Equal(t, "Asha Sharma", applicant.FullName, "untouched fields keep their values")
}

func TestApplicantUpdateRequestApplyAcademics(t *testing.T) {
	req := validCreateRequest()
	applicant, fields := req.Normalize()
	require.False(t, fields.HasErrors())

	replacement := `[{
		"degree_level": "Masters",
		"degree_title": "MSc Data Science",
		"institution": "Kathmandu University",
		"passed_year": "2023",
		"course_start_date": "2021-06-01",
		"course_end_date": "2023-05-31",
		"obtained_mark": "3.90"
	}]`
	update := &ApplicantUpdateRequest{Academics: &replacement}

	academics, fields := update.Apply(applicant)
	require.False(t, fields.HasErrors())
	require.Len(t, academics, 1)
	assert.Equal(t, "MSc Data Science", academics[0].DegreeTitle)
}

func TestApplicantUpdateRequestApplyInvalid(t *testing.T) {
	req := validCreateRequest()
	applicant, fields := req.Normalize()
	require.False(t, fields.HasErrors())

	course := "Diploma"
	academics := "not-json"
	update := &ApplicantUpdateRequest{InterestedCourse: &course, Academics: &academics}

	parsed, fields := update.Apply(applicant)
	assert.Nil(t, parsed)
	require.True(t, fields.HasErrors())
	assert.Equal(t, "Must be one of Bachelors, Masters, Phd", fields["interested_course"])
	assert.Equal(t, "Invalid JSON format for academics", fields["academics"])
	assert.Equal(t, "Masters", string(applicant.InterestedCourse), "invalid values do not overwrite")
}

func TestNewApplicantResponseDocumentURL(t *testing.T) {
	req := validCreateRequest()
	applicant, fields := req.Normalize()
	require.False(t, fields.HasErrors())
	applicant.DocumentPath = "applicant_documents/abc.pdf"

	resp := NewApplicantResponse(applicant, "http://localhost:8080/uploads/")
	assert.Equal(t, "applicant_documents/abc.pdf", resp.Document)
	assert.Equal(t, "http://localhost:8080/uploads/applicant_documents/abc.pdf", resp.DocumentURL)
	assert.Equal(t, "2026-01-15", resp.AttendedDate)
	require.Len(t, resp.Academics, 1)
	assert.Equal(t, "2016-04-01", resp.Academics[0].StartDate)
}
