package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/rs/zerolog"

	appauth "github.com/nishan/applygate/internal/app/auth"
	"github.com/nishan/applygate/internal/app/models"
	"github.com/nishan/applygate/internal/app/models/dto"
	"github.com/nishan/applygate/internal/app/repositories"
	"github.com/nishan/applygate/internal/pkg/apperrors"
	"github.com/nishan/applygate/internal/pkg/filestorage"
	"github.com/nishan/applygate/internal/pkg/helpers"
)

// documentSubPath is the storage subdirectory for applicant documents
const documentSubPath = "applicant_documents"

// ApplicantService handles applicant CRUD and analytics
type ApplicantService struct {
	applicantRepo repositories.IApplicantRepository
	storage       filestorage.FileStorage
	mediaBaseURL  string
	logger        zerolog.Logger
}

// NewApplicantService creates a new ApplicantService
func NewApplicantService(
	applicantRepo repositories.IApplicantRepository,
	storage filestorage.FileStorage,
	mediaBaseURL string,
	logger zerolog.Logger,
) *ApplicantService {
	return &ApplicantService{
		applicantRepo: applicantRepo,
		storage:       storage,
		mediaBaseURL:  mediaBaseURL,
		logger:        logger,
	}
}

// Create validates and persists a new applicant with its academic records
// and uploaded document. The applicant and all academics are stored as a
// single unit.
func (s *ApplicantService) Create(ctx context.Context, actor *models.User, req *dto.ApplicantCreateRequest, document *multipart.FileHeader) (*dto.ApplicantResponse, error) {
	if !appauth.Can(actor, appauth.ActionCreate, nil) {
		return nil, apperrors.NewForbiddenError("You do not have permission to create applicants")
	}

	applicant, fields := req.Normalize()
	if document == nil {
		fields.Add("document", "No file was submitted.")
	} else if msg := dto.ValidateDocument(document); msg != "" {
		fields.Add("document", msg)
	}
	if fields.HasErrors() {
		return nil, apperrors.NewValidationError(fields)
	}

	exists, err := s.applicantRepo.EmailExists(ctx, applicant.Email, 0)
	if err != nil {
		return nil, fmt.Errorf("error checking applicant email: %w", err)
	}
	if exists {
		return nil, apperrors.ErrApplicantEmailExists
	}

	storedPath, err := s.storage.SaveFile(document, documentSubPath)
	if err != nil {
		return nil, fmt.Errorf("error saving document: %w", err)
	}
	applicant.DocumentPath = storedPath
	applicant.CreatedBy = actor.ID

	if err := s.applicantRepo.CreateWithAcademics(ctx, applicant); err != nil {
		// Remove the orphaned document when the insert fails
		if delErr := s.storage.DeleteFile(storedPath); delErr != nil {
			s.logger.Error().Err(delErr).Str("path", storedPath).Msg("Failed to remove document after create failure")
		}
		if errors.Is(err, apperrors.ErrApplicantEmailExists) {
			return nil, apperrors.ErrApplicantEmailExists
		}
		return nil, fmt.Errorf("error creating applicant: %w", err)
	}

	applicant.CreatedByEmail = actor.Email
	applicant.CreatedByName = actor.FullName

	return dto.NewApplicantResponse(applicant, s.mediaBaseURL), nil
}

// GetByID retrieves one applicant, enforcing ownership for non-admins
func (s *ApplicantService) GetByID(ctx context.Context, actor *models.User, id int64) (*dto.ApplicantResponse, error) {
	applicant, err := s.applicantRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrApplicantNotFound) {
			return nil, apperrors.ErrApplicantNotFound
		}
		return nil, fmt.Errorf("error retrieving applicant: %w", err)
	}

	if !appauth.Can(actor, appauth.ActionRead, applicant) {
		return nil, apperrors.NewForbiddenError("You do not have permission to view this applicant")
	}

	return dto.NewApplicantResponse(applicant, s.mediaBaseURL), nil
}

// List returns applicants matching the filter, newest first
func (s *ApplicantService) List(ctx context.Context, actor *models.User, filter *dto.ApplicantFilter) (*dto.ApplicantListResponse, error) {
	if !appauth.Can(actor, appauth.ActionList, nil) {
		return nil, apperrors.NewForbiddenError("You do not have permission to list applicants")
	}

	applicants, err := s.applicantRepo.List(ctx, repositories.ApplicantFilter{
		InterestedCourse: filter.InterestedCourse,
		Search:           filter.Search,
	})
	if err != nil {
		return nil, fmt.Errorf("error listing applicants: %w", err)
	}

	results := make([]*dto.ApplicantResponse, 0, len(applicants))
	for _, applicant := range applicants {
		results = append(results, dto.NewApplicantResponse(applicant, s.mediaBaseURL))
	}

	return &dto.ApplicantListResponse{
		Count:   len(results),
		Results: results,
	}, nil
}

// Update applies the supplied fields to an applicant. A supplied academics
// list replaces the stored one wholesale; a supplied document replaces the
// stored file.
func (s *ApplicantService) Update(ctx context.Context, actor *models.User, id int64, req *dto.ApplicantUpdateRequest, document *multipart.FileHeader) (*dto.ApplicantResponse, error) {
	applicant, err := s.applicantRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrApplicantNotFound) {
			return nil, apperrors.ErrApplicantNotFound
		}
		return nil, fmt.Errorf("error retrieving applicant: %w", err)
	}

	if !appauth.Can(actor, appauth.ActionUpdate, applicant) {
		return nil, apperrors.NewForbiddenError("You do not have permission to update this applicant")
	}

	academics, fields := req.Apply(applicant)
	if document != nil {
		if msg := dto.ValidateDocument(document); msg != "" {
			fields.Add("document", msg)
		}
	}
	if fields.HasErrors() {
		return nil, apperrors.NewValidationError(fields)
	}

	if req.Email != nil {
		exists, err := s.applicantRepo.EmailExists(ctx, applicant.Email, applicant.ID)
		if err != nil {
			return nil, fmt.Errorf("error checking applicant email: %w", err)
		}
		if exists {
			return nil, apperrors.ErrApplicantEmailExists
		}
	}

	oldDocument := ""
	if document != nil {
		storedPath, err := s.storage.SaveFile(document, documentSubPath)
		if err != nil {
			return nil, fmt.Errorf("error saving document: %w", err)
		}
		oldDocument = applicant.DocumentPath
		applicant.DocumentPath = storedPath
	}

	if err := s.applicantRepo.UpdateWithAcademics(ctx, applicant, academics); err != nil {
		if document != nil {
			if delErr := s.storage.DeleteFile(applicant.DocumentPath); delErr != nil {
				s.logger.Error().Err(delErr).Str("path", applicant.DocumentPath).Msg("Failed to remove document after update failure")
			}
		}
		if errors.Is(err, apperrors.ErrApplicantEmailExists) {
			return nil, apperrors.ErrApplicantEmailExists
		}
		return nil, fmt.Errorf("error updating applicant: %w", err)
	}

	// The replaced file is only removed once the update has committed
	if oldDocument != "" {
		if err := s.storage.DeleteFile(oldDocument); err != nil {
			s.logger.Warn().Err(err).Str("path", oldDocument).Msg("Failed to remove replaced document")
		}
	}

	// Reload to pick up the final academic list and ordering
	updated, err := s.applicantRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error reloading applicant: %w", err)
	}

	return dto.NewApplicantResponse(updated, s.mediaBaseURL), nil
}

// Delete removes an applicant and its stored document. Admin only.
func (s *ApplicantService) Delete(ctx context.Context, actor *models.User, id int64) error {
	applicant, err := s.applicantRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrApplicantNotFound) {
			return apperrors.ErrApplicantNotFound
		}
		return fmt.Errorf("error retrieving applicant: %w", err)
	}

	if !appauth.Can(actor, appauth.ActionDelete, applicant) {
		return apperrors.NewForbiddenError("You do not have permission to delete applicants")
	}

	// The stored document goes first; its removal is best-effort and must
	// not block deleting the row
	if applicant.DocumentPath != "" {
		if err := s.storage.DeleteFile(applicant.DocumentPath); err != nil {
			s.logger.Warn().Err(err).Str("path", applicant.DocumentPath).Msg("Failed to remove document of deleted applicant")
		}
	}

	if err := s.applicantRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("error deleting applicant: %w", err)
	}

	return nil
}

// Analytics reports applicant counts. Completed and pending application
// tracking is not wired to a workflow yet, so completed is always zero
// and pending equals the total.
func (s *ApplicantService) Analytics(ctx context.Context, actor *models.User) (*dto.AnalyticsResponse, error) {
	if !appauth.Can(actor, appauth.ActionAnalytics, nil) {
		return nil, apperrors.NewForbiddenError("You do not have permission to view analytics")
	}

	total, err := s.applicantRepo.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("error counting applicants: %w", err)
	}

	monthStart := helpers.StartOfMonth(time.Now())
	thisMonth, err := s.applicantRepo.CountCreatedSince(ctx, monthStart)
	if err != nil {
		return nil, fmt.Errorf("error counting recent applicants: %w", err)
	}

	return &dto.AnalyticsResponse{
		TotalApplicants:       total,
		ThisMonth:             thisMonth,
		CompletedApplications: 0,
		PendingApplications:   total,
	}, nil
}
