package controllers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nishan/applygate/internal/app/models/dto"
	"github.com/nishan/applygate/internal/app/services"
	"github.com/nishan/applygate/internal/middleware"
)

// ApplicantController handles applicant CRUD and analytics operations
type ApplicantController struct {
	applicantService *services.ApplicantService
	logger           zerolog.Logger
}

// NewApplicantController creates a new ApplicantController
func NewApplicantController(applicantService *services.ApplicantService, logger zerolog.Logger) *ApplicantController {
	return &ApplicantController{
		applicantService: applicantService,
		logger:           logger,
	}
}

// documentFromForm extracts the optional document file from the request.
// A missing file is not an error here; requiredness is decided per operation.
func documentFromForm(ctx *gin.Context) (*multipart.FileHeader, error) {
	fh, err := ctx.FormFile("document")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, err
	}
	return fh, nil
}

// Create handles applicant creation
// @Summary Create an applicant
// @Description Creates an applicant with academic records and a PDF document from a multipart form
// @Tags applicants
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Success 201 {object} dto.APIResponse{data=dto.ApplicantResponse} "Applicant created"
// @Failure 400 {object} dto.APIResponse "Validation failed"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Forbidden"
// @Failure 409 {object} dto.APIResponse "Applicant email already exists"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /applicants [post]
func (c *ApplicantController) Create(ctx *gin.Context) {
	actor := middleware.CurrentUser(ctx)

	var req dto.ApplicantCreateRequest
	if err := ctx.ShouldBind(&req); err != nil {
		c.logger.Warn().Err(err).Msg("Invalid applicant create payload")
		errorDetail := dto.HandleValidationError(err)
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	document, err := documentFromForm(ctx)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Invalid document upload")
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid document upload")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	applicant, err := c.applicantService.Create(ctx.Request.Context(), actor, &req, document)
	if err != nil {
		c.logger.Warn().Err(err).Int64("userID", actor.ID).Msg("Failed to create applicant")
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("applicantID", applicant.ID).Int64("userID", actor.ID).Msg("Applicant created")
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(applicant, "Applicant created successfully"))
}

// List handles applicant listing with filters
// @Summary List applicants
// @Description Lists applicants, newest first, optionally filtered by interested course and a name/email search
// @Tags applicants
// @Produce json
// @Security BearerAuth
// @Param interested_course query string false "Exact course filter (Bachelors, Masters, Phd)"
// @Param search query string false "Case-insensitive substring match on full name or email"
// @Success 200 {object} dto.APIResponse{data=dto.ApplicantListResponse} "Applicants"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /applicants [get]
func (c *ApplicantController) List(ctx *gin.Context) {
	actor := middleware.CurrentUser(ctx)

	var filter dto.ApplicantFilter
	if err := ctx.ShouldBindQuery(&filter); err != nil {
		errorDetail := dto.HandleValidationError(err)
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	list, err := c.applicantService.List(ctx.Request.Context(), actor, &filter)
	if err != nil {
		c.logger.Error().Err(err).Int64("userID", actor.ID).Msg("Failed to list applicants")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(list, ""))
}

// GetByID handles applicant detail retrieval
// @Summary Get an applicant
// @Tags applicants
// @Produce json
// @Security BearerAuth
// @Param id path int true "Applicant ID"
// @Success 200 {object} dto.APIResponse{data=dto.ApplicantResponse} "Applicant"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Forbidden"
// @Failure 404 {object} dto.APIResponse "Not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /applicants/{id} [get]
func (c *ApplicantController) GetByID(ctx *gin.Context) {
	actor := middleware.CurrentUser(ctx)

	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid applicant ID")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	applicant, err := c.applicantService.GetByID(ctx.Request.Context(), actor, id)
	if err != nil {
		c.logger.Warn().Err(err).Int64("applicantID", id).Msg("Failed to get applicant")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(applicant, ""))
}

// Update handles full and partial applicant updates
// @Summary Update an applicant
// @Description Updates the supplied fields. A supplied academics list replaces the stored records wholesale; a supplied document replaces the stored file.
// @Tags applicants
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Applicant ID"
// @Success 200 {object} dto.APIResponse{data=dto.ApplicantResponse} "Updated applicant"
// @Failure 400 {object} dto.APIResponse "Validation failed"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Forbidden"
// @Failure 404 {object} dto.APIResponse "Not found"
// @Failure 409 {object} dto.APIResponse "Applicant email already exists"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /applicants/{id} [patch]
func (c *ApplicantController) Update(ctx *gin.Context) {
	actor := middleware.CurrentUser(ctx)

	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid applicant ID")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	var req dto.ApplicantUpdateRequest
	if err := ctx.ShouldBind(&req); err != nil {
		c.logger.Warn().Err(err).Msg("Invalid applicant update payload")
		errorDetail := dto.HandleValidationError(err)
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	document, err := documentFromForm(ctx)
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid document upload")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	applicant, err := c.applicantService.Update(ctx.Request.Context(), actor, id, &req, document)
	if err != nil {
		c.logger.Warn().Err(err).Int64("applicantID", id).Msg("Failed to update applicant")
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("applicantID", id).Int64("userID", actor.ID).Msg("Applicant updated")
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(applicant, "Applicant updated successfully"))
}

// Delete handles applicant deletion
// @Summary Delete an applicant
// @Description Removes an applicant, its academic records, and its stored document. Admin only.
// @Tags applicants
// @Produce json
// @Security BearerAuth
// @Param id path int true "Applicant ID"
// @Success 200 {object} dto.APIResponse "Applicant deleted"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Forbidden"
// @Failure 404 {object} dto.APIResponse "Not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /applicants/{id} [delete]
func (c *ApplicantController) Delete(ctx *gin.Context) {
	actor := middleware.CurrentUser(ctx)

	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid applicant ID")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	if err := c.applicantService.Delete(ctx.Request.Context(), actor, id); err != nil {
		c.logger.Warn().Err(err).Int64("applicantID", id).Msg("Failed to delete applicant")
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("applicantID", id).Int64("userID", actor.ID).Msg("Applicant deleted")
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Applicant deleted successfully"))
}

// Analytics handles applicant count reporting
// @Summary Applicant analytics
// @Description Reports total applicants, applicants created this month, and completed/pending counts
// @Tags applicants
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.AnalyticsResponse} "Counts"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /applicants/analytics [get]
func (c *ApplicantController) Analytics(ctx *gin.Context) {
	actor := middleware.CurrentUser(ctx)

	analytics, err := c.applicantService.Analytics(ctx.Request.Context(), actor)
	if err != nil {
		c.logger.Error().Err(err).Int64("userID", actor.ID).Msg("Failed to compute analytics")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(analytics, ""))
}
