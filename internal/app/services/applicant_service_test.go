package services

import (
	"context"
	"errors"
	"mime/multipart"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nishan/applygate/internal/app/models"
	"github.com/nishan/applygate/internal/app/models/dto"
	"github.com/nishan/applygate/internal/pkg/apperrors"
)

type applicantFixture struct {
	service *ApplicantService
	repo    *fakeApplicantRepo
	storage *fakeStorage
	admin   *models.User
	officer *models.User
	other   *models.User
}

func newApplicantFixture() *applicantFixture {
	repo := newFakeApplicantRepo()
	storage := &fakeStorage{}

	return &applicantFixture{
		service: NewApplicantService(repo, storage, "http://localhost:8080/uploads", zerolog.Nop()),
		repo:    repo,
		storage: storage,
		admin:   &models.User{ID: 1, Email: "admin@example.com", FullName: "Admin", Role: models.RoleAdmin},
		officer: &models.User{ID: 2, Email: "officer@example.com", FullName: "Officer", Role: models.RoleDocumentationOfficer},
		other:   &models.User{ID: 3, Email: "other@example.com", FullName: "Other", Role: models.RoleDocumentationOfficer},
	}
}

func pdfDocument(name string) *multipart.FileHeader {
	return &multipart.FileHeader{Filename: name, Size: 2048}
}

func createRequest(email string) *dto.ApplicantCreateRequest {
	return &dto.ApplicantCreateRequest{
		FullName:         "Asha Sharma",
		Email:            email,
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
		Academics: `[{
			"degree_level": "Bachelors",
			"degree_title": "BSc Computer Science",
			"institution": "Tribhuvan University",
			"passed_year": "2020",
			"course_start_date": "2016-04-01",
			"course_end_date": "2020-03-31",
			"obtained_mark": "3.45"
		}]`,
	}
}

func (f *applicantFixture) createApplicant(t *testing.T, actor *models.User, email string) *dto.ApplicantResponse {
	t.Helper()
	resp, err := f.service.Create(context.Background(), actor, createRequest(email), pdfDocument("doc.pdf"))
	require.NoError(t, err)
	return resp
}

func validationFields(t *testing.T, err error) map[string]interface{} {
	t.Helper()
	require.ErrorIs(t, err, apperrors.ErrValidationFailed)
	var custom *apperrors.CustomError
	require.True(t, errors.As(err, &custom))
	return custom.Details
}

func TestApplicantCreate(t *testing.T) {
	f := newApplicantFixture()

	resp := f.createApplicant(t, f.officer, "asha@example.com")

	assert.Equal(t, "Asha Sharma", resp.FullName)
	assert.Equal(t, f.officer.ID, resp.CreatedBy)
	assert.Equal(t, "officer@example.com", resp.CreatedByEmail)
	require.Len(t, resp.Academics, 1)
	assert.Equal(t, "BSc Computer Science", resp.Academics[0].DegreeTitle)
	assert.Equal(t, "applicant_documents/stored-doc.pdf", resp.Document)
	assert.Equal(t, "http://localhost:8080/uploads/applicant_documents/stored-doc.pdf", resp.DocumentURL)

	stored, err := f.repo.GetByID(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Academics, 1, "academics are stored with the applicant")
}

func TestApplicantCreateMissingDocument(t *testing.T) {
	f := newApplicantFixture()

	_, err := f.service.Create(context.Background(), f.officer, createRequest("asha@example.com"), nil)
	fields := validationFields(t, err)
	assert.Equal(t, "No file was submitted.", fields["document"])
}

func TestApplicantCreateInvalidDocument(t *testing.T) {
	f := newApplicantFixture()

	doc := &multipart.FileHeader{Filename: "doc.docx", Size: 2048}
	_, err := f.service.Create(context.Background(), f.officer, createRequest("asha@example.com"), doc)
	fields := validationFields(t, err)
	assert.Equal(t, "Only PDF files are allowed", fields["document"])
	assert.Empty(t, f.storage.saved, "invalid uploads are never stored")
}

func TestApplicantCreateInvalidAcademics(t *testing.T) {
	f := newApplicantFixture()

	req := createRequest("asha@example.com")
	req.Academics = `[]`
	_, err := f.service.Create(context.Background(), f.officer, req, pdfDocument("doc.pdf"))
	fields := validationFields(t, err)
	assert.Equal(t, "At least one academic record is required", fields["academics"])
}

func TestApplicantCreateDuplicateEmail(t *testing.T) {
	f := newApplicantFixture()
	f.createApplicant(t, f.officer, "asha@example.com")

	_, err := f.service.Create(context.Background(), f.officer, createRequest("asha@example.com"), pdfDocument("doc.pdf"))
	assert.ErrorIs(t, err, apperrors.ErrApplicantEmailExists)
}

func TestApplicantCreateCleansUpOnFailure(t *testing.T) {
	f := newApplicantFixture()
	f.repo.createErr = errors.New("insert failed")

	_, err := f.service.Create(context.Background(), f.officer, createRequest("asha@example.com"), pdfDocument("doc.pdf"))
	require.Error(t, err)
	require.Len(t, f.storage.saved, 1)
	assert.Equal(t, f.storage.saved, f.storage.deleted, "the orphaned document is removed")
}

func TestApplicantGetByIDOwnership(t *testing.T) {
	f := newApplicantFixture()
	created := f.createApplicant(t, f.officer, "asha@example.com")
	ctx := context.Background()

	resp, err := f.service.GetByID(ctx, f.officer, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, resp.ID)

	_, err = f.service.GetByID(ctx, f.admin, created.ID)
	require.NoError(t, err, "admins can view any applicant")

	_, err = f.service.GetByID(ctx, f.other, created.ID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestApplicantGetByIDNotFound(t *testing.T) {
	f := newApplicantFixture()

	_, err := f.service.GetByID(context.Background(), f.admin, 9999)
	assert.ErrorIs(t, err, apperrors.ErrApplicantNotFound)
}

func TestApplicantList(t *testing.T) {
	f := newApplicantFixture()
	f.createApplicant(t, f.officer, "first@example.com")
	f.createApplicant(t, f.other, "second@example.com")

	resp, err := f.service.List(context.Background(), f.officer, &dto.ApplicantFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Count)
	assert.Len(t, resp.Results, 2, "officers see all applicants in the list")
}

func TestApplicantListFilterByCourse(t *testing.T) {
	f := newApplicantFixture()
	f.createApplicant(t, f.officer, "first@example.com")

	req := createRequest("second@example.com")
	req.InterestedCourse = "Phd"
	_, err := f.service.Create(context.Background(), f.officer, req, pdfDocument("doc.pdf"))
	require.NoError(t, err)

	resp, err := f.service.List(context.Background(), f.officer, &dto.ApplicantFilter{InterestedCourse: "Phd"})
	require.NoError(t, err)
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "Phd", resp.Results[0].InterestedCourse)
}

func TestApplicantListSearch(t *testing.T) {
	f := newApplicantFixture()
	ctx := context.Background()

	first := createRequest("asha@example.com")
	_, err := f.service.Create(ctx, f.officer, first, pdfDocument("doc.pdf"))
	require.NoError(t, err)

	second := createRequest("bikash@example.com")
	second.FullName = "Bikash Thapa"
	_, err = f.service.Create(ctx, f.officer, second, pdfDocument("doc.pdf"))
	require.NoError(t, err)

	// Case-insensitive substring over the full name
	resp, err := f.service.List(ctx, f.officer, &dto.ApplicantFilter{Search: "THAPA"})
	require.NoError(t, err)
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "Bikash Thapa", resp.Results[0].FullName)

	// Or over the email
	resp, err = f.service.List(ctx, f.officer, &dto.ApplicantFilter{Search: "asha@"})
	require.NoError(t, err)
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "asha@example.com", resp.Results[0].Email)

	resp, err = f.service.List(ctx, f.officer, &dto.ApplicantFilter{Search: "nobody"})
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Count)
}

func TestApplicantUpdatePartial(t *testing.T) {
	f := newApplicantFixture()
	created := f.createApplicant(t, f.officer, "asha@example.com")

	city := "Pokhara"
	resp, err := f.service.Update(context.Background(), f.officer, created.ID, &dto.ApplicantUpdateRequest{City: &city}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Pokhara", resp.City)
	assert.Equal(t, "Asha Sharma", resp.FullName)
	require.Len(t, resp.Academics, 1, "academics absent from the request are kept")
}

func TestApplicantUpdateReplacesAcademics(t *testing.T) {
	f := newApplicantFixture()
	created := f.createApplicant(t, f.officer, "asha@example.com")

	academics := `[{
		"degree_level": "Masters",
		"degree_title": "MSc Data Science",
		"institution": "Kathmandu University",
		"passed_year": "2023",
		"course_start_date": "2021-06-01",
		"course_end_date": "2023-05-31",
		"obtained_mark": "3.90"
	}]`
	resp, err := f.service.Update(context.Background(), f.officer, created.ID, &dto.ApplicantUpdateRequest{Academics: &academics}, nil)
	require.NoError(t, err)
	require.Len(t, resp.Academics, 1)
	assert.Equal(t, "MSc Data Science", resp.Academics[0].DegreeTitle, "a supplied list replaces the stored one")
}

func TestApplicantUpdateReplacesDocument(t *testing.T) {
	f := newApplicantFixture()
	created := f.createApplicant(t, f.officer, "asha@example.com")

	resp, err := f.service.Update(context.Background(), f.officer, created.ID, &dto.ApplicantUpdateRequest{}, pdfDocument("new.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "applicant_documents/stored-new.pdf", resp.Document)
	assert.Contains(t, f.storage.deleted, created.Document, "the replaced file is removed")
}

func TestApplicantUpdateKeepsDocumentOnFailure(t *testing.T) {
	f := newApplicantFixture()
	created := f.createApplicant(t, f.officer, "asha@example.com")
	f.repo.updateErr = errors.New("update failed")

	_, err := f.service.Update(context.Background(), f.officer, created.ID, &dto.ApplicantUpdateRequest{}, pdfDocument("new.pdf"))
	require.Error(t, err)
	assert.Contains(t, f.storage.deleted, "applicant_documents/stored-new.pdf", "the new file is removed")
	assert.NotContains(t, f.storage.deleted, created.Document, "the stored file survives a failed update")
}

func TestApplicantUpdateForbiddenForNonOwner(t *testing.T) {
	f := newApplicantFixture()
	created := f.createApplicant(t, f.officer, "asha@example.com")

	city := "Pokhara"
	_, err := f.service.Update(context.Background(), f.other, created.ID, &dto.ApplicantUpdateRequest{City: &city}, nil)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestApplicantDelete(t *testing.T) {
	f := newApplicantFixture()
	created := f.createApplicant(t, f.officer, "asha@example.com")
	ctx := context.Background()

	require.NoError(t, f.service.Delete(ctx, f.admin, created.ID))
	assert.Contains(t, f.storage.deleted, created.Document)

	_, err := f.service.GetByID(ctx, f.admin, created.ID)
	assert.ErrorIs(t, err, apperrors.ErrApplicantNotFound)
}

func TestApplicantDeleteRemovesDocumentFirst(t *testing.T) {
	f := newApplicantFixture()
	created := f.createApplicant(t, f.officer, "asha@example.com")
	f.repo.deleteErr = errors.New("delete failed")

	err := f.service.Delete(context.Background(), f.admin, created.ID)
	require.Error(t, err)
	assert.Contains(t, f.storage.deleted, created.Document, "the document is removed before the row")
}

func TestApplicantDeleteForbiddenForOfficer(t *testing.T) {
	f := newApplicantFixture()
	created := f.createApplicant(t, f.officer, "asha@example.com")

	// Not even the creating officer may delete
	err := f.service.Delete(context.Background(), f.officer, created.ID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestApplicantAnalytics(t *testing.T) {
	f := newApplicantFixture()
	f.createApplicant(t, f.officer, "first@example.com")
	f.createApplicant(t, f.officer, "second@example.com")

	resp, err := f.service.Analytics(context.Background(), f.officer)
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.TotalApplicants)
	assert.Equal(t, int64(0), resp.CompletedApplications)
	assert.Equal(t, int64(2), resp.PendingApplications)
}
